package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/metrics"
)

// AutoDetect asks the translator to detect the source language.
const AutoDetect = "auto"

// TranslateResult is the outcome of a translate call.
type TranslateResult struct {
	TranslatedText string `json:"translatedText"`
	Source         string `json:"source"`
	Target         string `json:"target"`
	Cached         bool   `json:"cached"`
}

// Translator resolves the source language, consults the cache and falls back to the upstream.
type Translator struct {
	cache    *TranslationCache
	upstream Upstream
	detect   func(string) string
	log      *zap.Logger
}

// NewTranslator creates a translator over the given cache and upstream.
func NewTranslator(cache *TranslationCache, upstream Upstream, log *zap.Logger) *Translator {
	return &Translator{
		cache:    cache,
		upstream: upstream,
		detect:   DetectLanguage,
		log:      log,
	}
}

// Translate translates text. source may be empty or "auto" to detect it.
// Fails with errs.ErrValidation for empty text or identical languages and errs.ErrUpstream
// when the upstream cannot answer.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (*TranslateResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", errs.ErrValidation)
	}

	if tl := strings.TrimSpace(strings.ToLower(target)); tl == "" || tl == AutoDetect {
		target = FallbackLanguage
	} else {
		code, err := parseLang(tl)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		target = code
	}

	if sl := strings.TrimSpace(strings.ToLower(source)); sl == "" || sl == AutoDetect {
		source = t.detect(text)
		t.log.Debug("detected source language", zap.String("source", source), zap.Int("text_len", len(text)))
	} else {
		code, err := parseLang(sl)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		source = code
	}

	if source == target {
		return nil, fmt.Errorf("%w: source and target languages are the same (%s)", errs.ErrValidation, source)
	}

	if cached, ok := t.cache.Get(source, target, text); ok {
		metrics.TranslationRequestsTotal.WithLabelValues("cache").Inc()
		return &TranslateResult{TranslatedText: cached, Source: source, Target: target, Cached: true}, nil
	}

	translated, err := t.upstream.Translate(ctx, text, source, target)
	if err != nil {
		t.log.Warn("translation upstream failed",
			zap.String("source", source),
			zap.String("target", target),
			zap.Error(err),
		)
		return nil, err
	}

	translated = unescapeEntities(translated)
	t.cache.Put(source, target, text, translated)
	metrics.TranslationRequestsTotal.WithLabelValues("api").Inc()

	return &TranslateResult{TranslatedText: translated, Source: source, Target: target}, nil
}

// CacheStats exposes the cache counters.
func (t *Translator) CacheStats() CacheStats {
	return t.cache.Stats()
}

// parseLang lowercases a language code and drops a region suffix ("pt-BR" -> "pt").
// Anything that is not then two ASCII letters fails with errs.ErrValidation.
func parseLang(code string) (string, error) {
	code = strings.TrimSpace(strings.ToLower(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	if !isLangCode(code) {
		return "", fmt.Errorf("%w: invalid language code %q", errs.ErrValidation, code)
	}
	return code, nil
}

func isLangCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'a' || code[i] > 'z' {
			return false
		}
	}
	return true
}

var entityReplacer = strings.NewReplacer("&quot;", `"`, "&#39;", "'", "&amp;", "&")

// unescapeEntities undoes the HTML escaping the upstream applies to quotes and ampersands.
func unescapeEntities(s string) string {
	return entityReplacer.Replace(s)
}
