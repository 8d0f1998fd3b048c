package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/metrics"
)

const (
	// DefaultMyMemoryURL is the public MyMemory translation endpoint.
	DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

	// Default timeout for translation requests
	translationTimeout = 10 * time.Second

	// maxResponseBytes caps how much of an upstream body is read.
	maxResponseBytes = 1 << 20
)

// errRequestRejected marks upstream answers that blame the request itself,
// such as an unsupported language pair. They do not count against the breaker.
var errRequestRejected = errors.New("request rejected by upstream")

// Upstream translates text through an external service.
type Upstream interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// MyMemoryOptions configures the MyMemory client.
type MyMemoryOptions struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32        // consecutive failures that open the breaker
	BreakerCooldown time.Duration // how long the breaker stays open
}

// TranslationService calls the MyMemory translation API behind a circuit breaker.
type TranslationService struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

// myMemoryResponse is the subset of the MyMemory response we use.
// responseStatus is a number on success but a string on some errors.
type myMemoryResponse struct {
	ResponseData *struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
	Matches         []struct {
		Translation string `json:"translation"`
	} `json:"matches"`
}

// NewTranslationService creates a MyMemory client.
func NewTranslationService(opts MyMemoryOptions, log *zap.Logger) *TranslationService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultMyMemoryURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = translationTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	svc := &TranslationService{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        log,
	}

	failures := opts.BreakerFailures
	svc.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mymemory",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpstreamBreakerState.Set(breakerStateValue(to))
			log.Warn("translation upstream breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return svc
}

// Translate translates text from source to target. All failures wrap errs.ErrUpstream.
func (s *TranslationService) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.call(ctx, text, source, target)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.TranslationErrorsTotal.WithLabelValues("breaker").Inc()
			return "", fmt.Errorf("%w: %v", errs.ErrUpstream, err)
		}
		return "", err
	}
	return out.(string), nil
}

func (s *TranslationService) call(ctx context.Context, text, source, target string) (string, error) {
	startTime := time.Now()

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", source+"|"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", errs.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		kind := "api"
		switch {
		case errors.Is(err, context.Canceled):
			kind = "canceled"
		case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
			kind = "timeout"
		}
		metrics.TranslationErrorsTotal.WithLabelValues(kind).Inc()
		return "", fmt.Errorf("%w: request failed: %w", errs.ErrUpstream, err)
	}
	defer resp.Body.Close()

	metrics.TranslationAPILatency.Observe(time.Since(startTime).Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.TranslationErrorsTotal.WithLabelValues("api").Inc()
		return "", fmt.Errorf("%w: failed to read response: %v", errs.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TranslationErrorsTotal.WithLabelValues("status").Inc()
		if isClientError(resp.StatusCode) {
			return "", fmt.Errorf("%w: upstream returned status %d: %w", errs.ErrUpstream, resp.StatusCode, errRequestRejected)
		}
		return "", fmt.Errorf("%w: upstream returned status %d", errs.ErrUpstream, resp.StatusCode)
	}

	var result myMemoryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		metrics.TranslationErrorsTotal.WithLabelValues("decode").Inc()
		return "", fmt.Errorf("%w: failed to parse response: %v", errs.ErrUpstream, err)
	}

	if status, ok := parseStatus(result.ResponseStatus); ok && (status < 200 || status > 299) {
		metrics.TranslationErrorsTotal.WithLabelValues("status").Inc()
		if isClientError(status) {
			return "", fmt.Errorf("%w: upstream status %d: %s: %w", errs.ErrUpstream, status, result.ResponseDetails, errRequestRejected)
		}
		return "", fmt.Errorf("%w: upstream status %d: %s", errs.ErrUpstream, status, result.ResponseDetails)
	}

	translated := ""
	if result.ResponseData != nil {
		translated = result.ResponseData.TranslatedText
	}
	if translated == "" && len(result.Matches) > 0 {
		translated = result.Matches[0].Translation
	}
	if translated == "" {
		metrics.TranslationErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("%w: no translation returned", errs.ErrUpstream)
	}

	return translated, nil
}

// parseStatus accepts responseStatus as either 200 or "200".
func parseStatus(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.Trim(string(raw), `"`))
	if err != nil {
		return 0, false
	}
	return n, true
}

// isClientError reports a 4xx status other than 429, which signals exhausted quota.
func isClientError(status int) bool {
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}

// breakerSuccess decides which outcomes leave the breaker's failure count alone:
// requests the upstream rejected as malformed and requests the caller abandoned.
func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, errRequestRejected) || errors.Is(err, context.Canceled)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
