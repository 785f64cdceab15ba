// Package detect guesses the language of extracted text.
package detect

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/lehigh-university-libraries/imagetranslator/internal/languages"
)

// minLength is the rune count below which detection is not attempted.
const minLength = 12

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector for the given languages, or for every language
// lingua knows when none are given. Building is expensive; reuse the result.
func New(langs ...lingua.Language) *Detector {
	builder := lingua.NewLanguageDetectorBuilder()
	if len(langs) > 0 {
		builder = builder.FromLanguages(langs...)
	} else {
		builder = builder.FromAllLanguages()
	}
	return &Detector{detector: builder.WithLowAccuracyMode().Build()}
}

// DetectISO returns the lower-case ISO 639-1 code of text.
func (d *Detector) DetectISO(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minLength {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Detect returns the catalog entry for the language of text. Languages
// lingua recognises but the catalog lacks are reported as not found.
func (d *Detector) Detect(text string) (languages.Language, bool) {
	code, ok := d.DetectISO(text)
	if !ok {
		return languages.Language{}, false
	}
	return languages.ByCode(code)
}
