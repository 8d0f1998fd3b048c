package services

import (
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

const (
	// FallbackLanguage is used when detection is impossible or inconclusive.
	FallbackLanguage = "en"

	// minDetectRunes is the shortest input the classifier is trusted with.
	minDetectRunes = 3
)

// DetectLanguage classifies text with a trigram model and returns an ISO 639-1 code.
// Returns FallbackLanguage for short text or when the detected language has no 2-letter code.
func DetectLanguage(text string) string {
	if utf8.RuneCountInString(text) < minDetectRunes {
		return FallbackLanguage
	}
	return iso6391(whatlanggo.Detect(text).Lang)
}

// iso6391 returns the 2-letter code for a classifier result.
// Bhojpuri is reported as "bh", a retired collective code translators do not accept.
func iso6391(lang whatlanggo.Lang) string {
	if lang < 0 || lang == whatlanggo.Bho {
		return FallbackLanguage
	}
	if code := lang.Iso6391(); isLangCode(code) {
		return code
	}
	return FallbackLanguage
}
