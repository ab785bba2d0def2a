package tercume

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// Translator orchestrates detection, protection, the provider chain, the
// translation cache and the per-field store.
type Translator struct {
	chain       ProviderChain
	cache       TranslationCache
	fields      FieldStore
	detector    LanguageDetector
	protector   *Protector
	defaultLang string
	targetLangs []string
	logger      *slog.Logger
	now         func() time.Time
}

// Provider is the interface for a single translation backend.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// ProviderChain runs an ordered list of backends. Implementations never fail:
// the worst case is a fallback-marked Translation.
type ProviderChain interface {
	Translate(ctx context.Context, req TranslateRequest) Translation
}

// TranslationCache is the interface for the raw-text translation cache.
// Put is an upsert on (SourceText, SourceLang, TargetLang).
type TranslationCache interface {
	Get(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	Put(ctx context.Context, entry CacheEntry) error
}

// FieldStore persists translations of addressable content fields.
// PutField is an upsert on the FieldKey.
type FieldStore interface {
	GetField(ctx context.Context, key FieldKey) (string, bool, error)
	PutField(ctx context.Context, t FieldTranslation) error
}

// LanguageDetector identifies the language of a text.
type LanguageDetector interface {
	Detect(text string) string
}

// Purger removes cache and field rows for an administrative purge.
type Purger interface {
	Purge(ctx context.Context, filter PurgeFilter) (PurgeResult, error)
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithFieldStore sets the store for per-field translations.
func WithFieldStore(store FieldStore) TranslatorOption {
	return func(t *Translator) {
		t.fields = store
	}
}

// WithDetector sets the language detector. Without one every text is
// treated as DefaultLanguage.
func WithDetector(d LanguageDetector) TranslatorOption {
	return func(t *Translator) {
		t.detector = d
	}
}

// WithProtectedTerms sets terms that are never translated.
func WithProtectedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.protector = NewProtector(terms)
	}
}

// WithDefaultLanguage sets the interface language.
func WithDefaultLanguage(lang string) TranslatorOption {
	return func(t *Translator) {
		if lang = NormalizeLang(lang); lang != "" {
			t.defaultLang = lang
		}
	}
}

// WithTargetLanguages sets the non-default languages fields are translated into.
func WithTargetLanguages(langs []string) TranslatorOption {
	return func(t *Translator) {
		t.targetLangs = normalizeLangs(langs)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator creates a new Translator on top of the given provider chain.
func NewTranslator(chain ProviderChain, opts ...TranslatorOption) *Translator {
	t := &Translator{
		chain:       chain,
		defaultLang: DefaultLanguage,
		targetLangs: normalizeLangs(DefaultTargetLanguages),
		logger:      slog.Default(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// DetectLanguage returns the language tag of text. Short text, a missing
// detector or a failed detection all yield the default language.
func (t *Translator) DetectLanguage(text string) string {
	if t.detector == nil || utf8.RuneCountInString(strings.TrimSpace(text)) < MinDetectLength {
		return t.defaultLang
	}
	lang := NormalizeLang(t.detector.Detect(text))
	if lang == "" {
		return t.defaultLang
	}
	return lang
}

// TargetLanguages returns the languages a field written in sourceLang is
// translated into: the configured targets plus the default language when the
// source differs from it, never the source itself.
func (t *Translator) TargetLanguages(sourceLang string) []string {
	sourceLang = NormalizeLang(sourceLang)
	candidates := append([]string{}, t.targetLangs...)
	if sourceLang != t.defaultLang {
		candidates = append(candidates, t.defaultLang)
	}

	targets := make([]string, 0, len(candidates))
	seen := make(map[string]bool)
	for _, lang := range candidates {
		if lang == sourceLang || seen[lang] {
			continue
		}
		seen[lang] = true
		targets = append(targets, lang)
	}
	return targets
}

// TranslateText translates a single text into targetLang. An empty
// sourceLang triggers detection. The original text is returned unchanged
// when it is blank or already in the target language.
func (t *Translator) TranslateText(ctx context.Context, text, sourceLang, targetLang string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	src, keySrc := t.resolveSource(text, sourceLang)
	target := NormalizeLang(targetLang)
	if target == "" || target == src {
		return text
	}
	out, _ := t.translate(ctx, text, src, keySrc, target)
	return out
}

// TranslateField translates one field of a content entity into every target
// language and records each variant in the field store.
func (t *Translator) TranslateField(ctx context.Context, contentType string, contentID int64, fieldPath, text, sourceLang string) FieldResult {
	src, keySrc := t.resolveSource(text, sourceLang)
	return t.translateField(ctx, contentType, contentID, fieldPath, text, src, keySrc)
}

func (t *Translator) translateField(ctx context.Context, contentType string, contentID int64, fieldPath, text, src, keySrc string) FieldResult {
	result := FieldResult{
		FieldPath:    fieldPath,
		SourceLang:   src,
		Translations: make(map[string]string),
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	for _, target := range t.TargetLanguages(src) {
		translated, _ := t.translate(ctx, text, src, keySrc, target)
		result.Translations[target] = translated

		if t.fields == nil {
			continue
		}
		err := t.fields.PutField(ctx, FieldTranslation{
			FieldKey: FieldKey{
				ContentType: contentType,
				ContentID:   contentID,
				FieldPath:   fieldPath,
				TargetLang:  target,
			},
			TranslatedText: translated,
			SourceLang:     src,
			UpdatedAt:      t.now().UTC(),
		})
		if err != nil {
			t.logger.Error("field translation write failed",
				"content_type", contentType,
				"content_id", contentID,
				"field", fieldPath,
				"target_lang", target,
				"error", err,
			)
		}
	}

	return result
}

// GetTranslatedField returns the stored translation of a field, or
// originalText when none exists. It never returns an empty string for a
// non-empty original.
func (t *Translator) GetTranslatedField(ctx context.Context, contentType string, contentID int64, fieldPath, originalText, targetLang string) string {
	if t.fields == nil {
		return originalText
	}

	key := FieldKey{
		ContentType: contentType,
		ContentID:   contentID,
		FieldPath:   fieldPath,
		TargetLang:  NormalizeLang(targetLang),
	}
	translated, ok, err := t.fields.GetField(ctx, key)
	if err != nil {
		t.logger.Warn("field translation read failed",
			"content_type", contentType,
			"content_id", contentID,
			"field", fieldPath,
			"target_lang", key.TargetLang,
			"error", err,
		)
		return originalText
	}
	if !ok || strings.TrimSpace(translated) == "" {
		return originalText
	}
	return translated
}

// resolveSource returns the source language to translate from and the
// source tag to key the cache with.
func (t *Translator) resolveSource(text, sourceLang string) (src, keySrc string) {
	if src = NormalizeLang(sourceLang); src != "" && src != AutoSource {
		return src, src
	}
	return t.DetectLanguage(text), AutoSource
}

// translate runs cache read-through, protection, the provider chain and
// cache write-back. The bool reports whether the fallback tier answered.
func (t *Translator) translate(ctx context.Context, text, src, keySrc, target string) (string, bool) {
	if cached, ok := t.lookup(ctx, text, keySrc, target); ok {
		return cached, false
	}

	if t.chain == nil {
		return FallbackText(target, text), true
	}

	protected, repl := t.protector.Protect(text)
	result := t.chain.Translate(ctx, TranslateRequest{
		Text:       protected,
		SourceLang: src,
		TargetLang: target,
	})
	translated := repl.Restore(result.Text)

	if result.Fallback {
		t.logger.Debug("fallback translation not cached",
			"target_lang", target,
			"provider", result.Provider,
		)
		return translated, true
	}

	t.store(ctx, CacheEntry{
		SourceText:     text,
		SourceLang:     keySrc,
		TargetLang:     target,
		TranslatedText: translated,
		Provider:       result.Provider,
		CreatedAt:      t.now().UTC(),
	})
	return translated, false
}

func (t *Translator) lookup(ctx context.Context, text, keySrc, target string) (string, bool) {
	if t.cache == nil {
		return "", false
	}
	cached, ok, err := t.cache.Get(ctx, text, keySrc, target)
	if err != nil {
		t.logger.Warn("translation cache read failed", "target_lang", target, "error", err)
		return "", false
	}
	return cached, ok
}

func (t *Translator) store(ctx context.Context, entry CacheEntry) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Put(ctx, entry); err != nil {
		t.logger.Error("translation cache write failed",
			"target_lang", entry.TargetLang,
			"provider", entry.Provider,
			"error", err,
		)
	}
}

// DefaultLang returns the interface language.
func (t *Translator) DefaultLang() string {
	return t.defaultLang
}

// PurgeAll runs filter against every purger and sums the deleted rows.
// It stops at the first error.
func PurgeAll(ctx context.Context, filter PurgeFilter, purgers ...Purger) (PurgeResult, error) {
	var total PurgeResult
	for _, p := range purgers {
		if p == nil {
			continue
		}
		res, err := p.Purge(ctx, filter)
		if err != nil {
			return total, err
		}
		total = total.Add(res)
	}
	return total, nil
}

func normalizeLangs(langs []string) []string {
	out := make([]string, 0, len(langs))
	for _, lang := range langs {
		if lang = NormalizeLang(lang); lang != "" {
			out = append(out, lang)
		}
	}
	return out
}
