package tercume

import (
	"fmt"
	"time"
)

// Language tags understood by the pipeline.
const (
	LangEnglish     = "en"
	LangAzerbaijani = "az"
	LangRussian     = "ru"

	// LangTurkish and LangArabic are reported by detection for diagnostics
	// only; they are never translation targets.
	LangTurkish = "tr"
	LangArabic  = "ar"

	// AutoSource is the cache source-language marker for text whose language
	// was detected at write time.
	AutoSource = "auto"

	// DefaultLanguage is the interface language and the detection fallback.
	DefaultLanguage = LangEnglish
)

// SupportedLanguages is the fixed set of translation languages.
var SupportedLanguages = []string{LangEnglish, LangAzerbaijani, LangRussian}

// DefaultTargetLanguages are the non-default languages every field is
// translated into. The default language is added when the source differs.
var DefaultTargetLanguages = []string{LangAzerbaijani, LangRussian}

// MinDetectLength is the rune count below which detection is not attempted.
const MinDetectLength = 10

// FallbackMarkerPrefix starts every fallback-tier annotation.
const FallbackMarkerPrefix = "[Translated to "

// TranslateRequest is a single text handed to a provider.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Translation is the outcome of running a provider chain.
type Translation struct {
	Text     string
	Provider string
	Fallback bool // produced by the deterministic fallback tier
}

// CacheEntry is one row of the global raw-text translation cache.
type CacheEntry struct {
	SourceText     string    `json:"source_text"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	TranslatedText string    `json:"translated_text"`
	Provider       string    `json:"provider"`
	CreatedAt      time.Time `json:"created_at"`
}

// FieldKey addresses one translated field of one content entity.
type FieldKey struct {
	ContentType string `json:"content_type"`
	ContentID   int64  `json:"content_id"`
	FieldPath   string `json:"field_path"`
	TargetLang  string `json:"target_lang"`
}

// FieldTranslation is the stored translation of a content field.
type FieldTranslation struct {
	FieldKey
	TranslatedText string    `json:"translated_text"`
	SourceLang     string    `json:"source_lang"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FieldResult reports what TranslateField produced.
type FieldResult struct {
	FieldPath    string            `json:"field_path"`
	SourceLang   string            `json:"source_lang"`
	Translations map[string]string `json:"translations"`
}

// PurgeFilter scopes an administrative purge. Empty fields match everything.
type PurgeFilter struct {
	TargetLang  string
	ContentType string
}

// PurgeResult counts the rows removed by a purge.
type PurgeResult struct {
	CacheDeleted  int64 `json:"cache_deleted"`
	FieldsDeleted int64 `json:"fields_deleted"`
}

// Add accumulates another result.
func (r PurgeResult) Add(o PurgeResult) PurgeResult {
	return PurgeResult{
		CacheDeleted:  r.CacheDeleted + o.CacheDeleted,
		FieldsDeleted: r.FieldsDeleted + o.FieldsDeleted,
	}
}

// FallbackText annotates untranslated text so it is recognisable in diagnostics.
func FallbackText(targetLang, text string) string {
	return fmt.Sprintf("%s%s] %s", FallbackMarkerPrefix, targetLang, text)
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// TranslatableAttributes are the HTML attributes holding human-readable text.
var TranslatableAttributes = map[string]bool{
	"alt":         true,
	"title":       true,
	"placeholder": true,
	"value":       true,
}
