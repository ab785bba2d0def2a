package tercume

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// mockChain is a simple provider chain for testing
type mockChain struct {
	mu           sync.Mutex
	translations map[string]string // keyed by "target:text"
	fail         bool
	callCount    int
	lastRequest  TranslateRequest
}

func newMockChain() *mockChain {
	return &mockChain{
		translations: map[string]string{
			"az:Hello World":                "Salam Dünya",
			"ru:Hello World":                "Привет мир",
			"az:Welcome to __PROTECTED_0__": "__PROTECTED_0__-ə xoş gəlmisiniz",
			"ru:Welcome to __PROTECTED_0__": "Добро пожаловать в __PROTECTED_0__",
		},
	}
}

func (m *mockChain) Translate(ctx context.Context, req TranslateRequest) Translation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastRequest = req

	if m.fail {
		return Translation{Text: FallbackText(req.TargetLang, req.Text), Provider: "phrasebook", Fallback: true}
	}
	if out, ok := m.translations[req.TargetLang+":"+req.Text]; ok {
		return Translation{Text: out, Provider: "mock"}
	}
	return Translation{Text: "[" + req.TargetLang + "] " + req.Text, Provider: "mock"}
}

func (m *mockChain) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// mockCache is a simple mock cache for testing
type mockCache struct {
	data   map[string]CacheEntry
	puts   int
	getErr error
	putErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]CacheEntry)}
}

func (c *mockCache) Get(ctx context.Context, text, src, tgt string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	e, ok := c.data[CacheKey(text, src, tgt)]
	return e.TranslatedText, ok, nil
}

func (c *mockCache) Put(ctx context.Context, e CacheEntry) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.data[CacheKey(e.SourceText, e.SourceLang, e.TargetLang)] = e
	return nil
}

// mockFieldStore is a simple mock field store for testing
type mockFieldStore struct {
	data   map[FieldKey]FieldTranslation
	getErr error
}

func newMockFieldStore() *mockFieldStore {
	return &mockFieldStore{data: make(map[FieldKey]FieldTranslation)}
}

func (s *mockFieldStore) GetField(ctx context.Context, key FieldKey) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	ft, ok := s.data[key]
	return ft.TranslatedText, ok, nil
}

func (s *mockFieldStore) PutField(ctx context.Context, ft FieldTranslation) error {
	s.data[ft.FieldKey] = ft
	return nil
}

// mockDetector always reports the configured language
type mockDetector struct{ lang string }

func (d mockDetector) Detect(string) string { return d.lang }

func newTestTranslator(chain ProviderChain, c TranslationCache, fs FieldStore, opts ...TranslatorOption) *Translator {
	base := []TranslatorOption{
		WithCache(c),
		WithFieldStore(fs),
		WithProtectedTerms([]string{"Tercume"}),
	}
	return NewTranslator(chain, append(base, opts...)...)
}

func TestTranslator_DetectLanguage(t *testing.T) {
	tr := NewTranslator(nil, WithDetector(mockDetector{lang: "ru"}))

	if got := tr.DetectLanguage("short"); got != "en" {
		t.Errorf("short text should default to en, got %q", got)
	}
	if got := tr.DetectLanguage("Это достаточно длинный текст"); got != "ru" {
		t.Errorf("expected ru, got %q", got)
	}

	noDetector := NewTranslator(nil)
	if got := noDetector.DetectLanguage("This is long enough to detect"); got != "en" {
		t.Errorf("missing detector should default to en, got %q", got)
	}

	failing := NewTranslator(nil, WithDetector(mockDetector{lang: ""}))
	if got := failing.DetectLanguage("This is long enough to detect"); got != "en" {
		t.Errorf("failed detection should default to en, got %q", got)
	}
}

func TestTranslator_TargetLanguages(t *testing.T) {
	tr := NewTranslator(nil)

	tests := []struct {
		source   string
		expected []string
	}{
		{"en", []string{"az", "ru"}},
		{"ru", []string{"az", "en"}},
		{"az", []string{"ru", "en"}},
		{"tr", []string{"az", "ru", "en"}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := tr.TargetLanguages(tt.source)
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("TargetLanguages(%q) = %v, want %v", tt.source, got, tt.expected)
			}
		})
	}
}

func TestTranslator_TranslateField(t *testing.T) {
	chain := newMockChain()
	c := newMockCache()
	fs := newMockFieldStore()
	tr := newTestTranslator(chain, c, fs)

	res := tr.TranslateField(context.Background(), "course", 1, "title", "Hello World", "en")

	if res.SourceLang != "en" {
		t.Errorf("expected source en, got %q", res.SourceLang)
	}
	if res.Translations["az"] != "Salam Dünya" {
		t.Errorf("unexpected az translation: %q", res.Translations["az"])
	}
	if res.Translations["ru"] != "Привет мир" {
		t.Errorf("unexpected ru translation: %q", res.Translations["ru"])
	}
	if _, ok := res.Translations["en"]; ok {
		t.Error("source language must not be a target")
	}

	got := tr.GetTranslatedField(context.Background(), "course", 1, "title", "Hello World", "az")
	if got != "Salam Dünya" {
		t.Errorf("GetTranslatedField returned %q", got)
	}
}

func TestTranslator_TranslateField_IdempotentCaching(t *testing.T) {
	chain := newMockChain()
	c := newMockCache()
	tr := newTestTranslator(chain, c, newMockFieldStore())
	ctx := context.Background()

	tr.TranslateField(ctx, "course", 1, "title", "Hello World", "en")
	firstCalls := chain.calls()
	tr.TranslateField(ctx, "course", 1, "title", "Hello World", "en")

	if chain.calls() != firstCalls {
		t.Errorf("second call should be served from cache, provider calls %d -> %d", firstCalls, chain.calls())
	}
	if len(c.data) != 2 {
		t.Errorf("expected one cache row per target (2), got %d", len(c.data))
	}
}

func TestTranslator_DetectedSourceUsesAutoKey(t *testing.T) {
	chain := newMockChain()
	c := newMockCache()
	tr := newTestTranslator(chain, c, newMockFieldStore(), WithDetector(mockDetector{lang: "en"}))

	tr.TranslateField(context.Background(), "course", 1, "title", "Hello World", "")

	if _, ok := c.data[CacheKey("Hello World", AutoSource, "az")]; !ok {
		t.Error("detected source should be cached under the auto marker")
	}
	if chain.lastRequest.SourceLang != "en" {
		t.Errorf("provider should receive the detected source, got %q", chain.lastRequest.SourceLang)
	}
}

func TestTranslator_ProtectedTerms(t *testing.T) {
	chain := newMockChain()
	tr := newTestTranslator(chain, newMockCache(), newMockFieldStore())

	res := tr.TranslateField(context.Background(), "course", 1, "title", "Welcome to Tercume", "en")

	for lang, text := range res.Translations {
		if !strings.Contains(text, "Tercume") {
			t.Errorf("%s translation lost protected term: %q", lang, text)
		}
	}
	if strings.Contains(chain.lastRequest.Text, "Tercume") {
		t.Errorf("provider should never see the protected term, got %q", chain.lastRequest.Text)
	}
}

func TestTranslator_FallbackNotCached(t *testing.T) {
	chain := newMockChain()
	chain.fail = true
	c := newMockCache()
	fs := newMockFieldStore()
	tr := newTestTranslator(chain, c, fs)

	res := tr.TranslateField(context.Background(), "course", 1, "title", "Hello World", "en")

	if res.Translations["az"] != "[Translated to az] Hello World" {
		t.Errorf("expected fallback marker text, got %q", res.Translations["az"])
	}
	if c.puts != 0 {
		t.Errorf("fallback output must not be cached, got %d puts", c.puts)
	}
	if len(fs.data) != 2 {
		t.Errorf("field rows should still be written, got %d", len(fs.data))
	}
}

func TestTranslator_CacheErrorsAbsorbed(t *testing.T) {
	chain := newMockChain()
	c := newMockCache()
	c.getErr = errors.New("connection refused")
	c.putErr = errors.New("connection refused")
	tr := newTestTranslator(chain, c, newMockFieldStore())

	got := tr.TranslateText(context.Background(), "Hello World", "en", "az")
	if got != "Salam Dünya" {
		t.Errorf("cache failures must not affect the result, got %q", got)
	}
}

func TestTranslator_TranslateText_TargetEqualsSource(t *testing.T) {
	chain := newMockChain()
	tr := newTestTranslator(chain, newMockCache(), newMockFieldStore(), WithDetector(mockDetector{lang: "az"}))

	text := "Bu mətn artıq Azərbaycan dilindədir"
	got := tr.TranslateText(context.Background(), text, "", "az")

	if got != text {
		t.Errorf("expected original text, got %q", got)
	}
	if chain.calls() != 0 {
		t.Errorf("expected no provider call, got %d", chain.calls())
	}
}

func TestTranslator_TranslateText_Blank(t *testing.T) {
	chain := newMockChain()
	tr := newTestTranslator(chain, newMockCache(), newMockFieldStore())

	for _, text := range []string{"", "   ", "\t"} {
		if got := tr.TranslateText(context.Background(), text, "en", "az"); got != text {
			t.Errorf("blank text should pass through, got %q", got)
		}
	}
	if chain.calls() != 0 {
		t.Errorf("blank text should not reach the provider, got %d calls", chain.calls())
	}
}

func TestTranslator_GetTranslatedField_Fallback(t *testing.T) {
	fs := newMockFieldStore()
	tr := newTestTranslator(newMockChain(), newMockCache(), fs)
	ctx := context.Background()

	if got := tr.GetTranslatedField(ctx, "course", 99999, "title", "Sample", "az"); got != "Sample" {
		t.Errorf("missing translation should return original, got %q", got)
	}

	fs.data[FieldKey{ContentType: "course", ContentID: 5, FieldPath: "title", TargetLang: "az"}] = FieldTranslation{TranslatedText: "  "}
	if got := tr.GetTranslatedField(ctx, "course", 5, "title", "Sample", "az"); got != "Sample" {
		t.Errorf("blank stored translation should return original, got %q", got)
	}

	fs.getErr = errors.New("db down")
	if got := tr.GetTranslatedField(ctx, "course", 5, "title", "Sample", "az"); got != "Sample" {
		t.Errorf("store errors should return original, got %q", got)
	}

	noStore := NewTranslator(nil)
	if got := noStore.GetTranslatedField(ctx, "course", 5, "title", "Sample", "az"); got != "Sample" {
		t.Errorf("missing store should return original, got %q", got)
	}
}

func TestTranslator_NilChain(t *testing.T) {
	tr := NewTranslator(nil, WithFieldStore(newMockFieldStore()))

	got := tr.TranslateText(context.Background(), "Hello", "en", "ru")
	if got != "[Translated to ru] Hello" {
		t.Errorf("expected fallback marker without a chain, got %q", got)
	}
}

type stubPurger struct {
	res PurgeResult
	err error
}

func (p stubPurger) Purge(ctx context.Context, f PurgeFilter) (PurgeResult, error) {
	return p.res, p.err
}

func TestPurgeAll(t *testing.T) {
	total, err := PurgeAll(context.Background(), PurgeFilter{TargetLang: "az"},
		stubPurger{res: PurgeResult{CacheDeleted: 3}},
		nil,
		stubPurger{res: PurgeResult{FieldsDeleted: 2}},
	)
	if err != nil {
		t.Fatalf("PurgeAll failed: %v", err)
	}
	if total.CacheDeleted != 3 || total.FieldsDeleted != 2 {
		t.Errorf("unexpected totals: %+v", total)
	}

	_, err = PurgeAll(context.Background(), PurgeFilter{}, stubPurger{err: errors.New("boom")})
	if err == nil {
		t.Error("expected purge error to propagate")
	}
}
