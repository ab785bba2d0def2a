package tercume

import "strings"

// LanguageNames maps language tags to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	LangEnglish:     "English",
	LangAzerbaijani: "Azerbaijani",
	LangRussian:     "Russian",
	LangTurkish:     "Turkish",
	LangArabic:      "Arabic",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[NormalizeLang(langCode)]; ok {
		return name
	}
	return langCode
}

// NormalizeLang extracts the lower-cased base language code
// (e.g., "az" from "az_AZ" or "ru-RU").
func NormalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}

// IsSupported reports whether lang is one of the translation languages.
func IsSupported(lang string) bool {
	lang = NormalizeLang(lang)
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// SameLanguage reports whether two codes share a base language.
func SameLanguage(a, b string) bool {
	return NormalizeLang(a) == NormalizeLang(b)
}

// IsFallbackText reports whether text carries the fallback marker.
// Presentation layers should treat such text as untranslated.
func IsFallbackText(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), FallbackMarkerPrefix)
}
