// Package detect identifies the language of content text.
package detect

import (
	"strings"

	"github.com/ZaguanLabs/tercume"
	"github.com/abadojack/whatlanggo"
)

// schwa letters only occur in Azerbaijani among the languages we handle,
// and trigram models frequently mistake short Azerbaijani text for Turkish.
const schwa = "əƏ"

// Detector maps statistical language identification onto the pipeline's
// language tags.
type Detector struct {
	minConfidence float64
	options       whatlanggo.Options
}

// Option configures a Detector.
type Option func(*Detector)

// WithMinConfidence discards detections below the given confidence.
func WithMinConfidence(c float64) Option {
	return func(d *Detector) {
		d.minConfidence = c
	}
}

// WithCandidates restricts identification to the given languages.
func WithCandidates(langs ...whatlanggo.Lang) Option {
	return func(d *Detector) {
		if len(langs) == 0 {
			return
		}
		d.options.Whitelist = make(map[whatlanggo.Lang]bool, len(langs))
		for _, l := range langs {
			d.options.Whitelist[l] = true
		}
	}
}

// New creates a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the language tag of text, or "" when it cannot be
// identified. Callers substitute their default language for "".
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if strings.ContainsAny(text, schwa) {
		return tercume.LangAzerbaijani
	}

	info := whatlanggo.DetectWithOptions(text, d.options)
	if info.Confidence < d.minConfidence {
		return ""
	}
	return Tag(info.Lang)
}

// Tag converts a whatlanggo language into a pipeline tag. Ukrainian and
// Belarusian are folded into Russian; languages outside the pipeline map to
// the default language.
func Tag(l whatlanggo.Lang) string {
	switch l {
	case whatlanggo.Eng:
		return tercume.LangEnglish
	case whatlanggo.Azj:
		return tercume.LangAzerbaijani
	case whatlanggo.Rus, whatlanggo.Ukr, whatlanggo.Bel:
		return tercume.LangRussian
	case whatlanggo.Tur:
		return tercume.LangTurkish
	case whatlanggo.Arb:
		return tercume.LangArabic
	default:
		return tercume.DefaultLanguage
	}
}

var _ tercume.LanguageDetector = (*Detector)(nil)
