package tercume_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ZaguanLabs/tercume"
	"github.com/ZaguanLabs/tercume/cache"
	"github.com/ZaguanLabs/tercume/processor"
	"github.com/ZaguanLabs/tercume/provider"
	"github.com/ZaguanLabs/tercume/store"
)

// Benchmarks for performance validation

const benchHTML = `<nav><a href="/">Home</a><a href="/courses">Courses</a></nav>
<main>
	<h1 title="Welcome">Welcome to Tercume</h1>
	<p>This is a paragraph with <b>some</b> text.</p>
	<p>Start now <button: [Open course]> https://example.com/c/1 </button></p>
	<ul>
		<li>Item one</li>
		<li>Item two</li>
	</ul>
	<pre>
	keep this
	</pre>
</main>`

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tercume.HashText(text)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tercume.CacheKey("Hello World", "en", "az")
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	ctx := context.Background()
	c := cache.NewInMemoryCache(3600)
	_ = c.Put(ctx, tercume.CacheEntry{SourceText: "Hello", SourceLang: "en", TargetLang: "az", TranslatedText: "Salam"})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = c.Get(ctx, "Hello", "en", "az")
	}
}

func BenchmarkInMemoryCache_Put(b *testing.B) {
	ctx := context.Background()
	c := cache.NewInMemoryCache(3600)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Put(ctx, tercume.CacheEntry{SourceText: "Hello", SourceLang: "en", TargetLang: "az", TranslatedText: "Salam"})
	}
}

func BenchmarkProtector(b *testing.B) {
	p := tercume.NewProtector([]string{"Tercume", "Go", "PostgreSQL"})
	text := "Learn Go and PostgreSQL with Tercume"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, repl := p.Protect(text)
		repl.Restore(out)
	}
}

func BenchmarkHTMLProcessor_Extract(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = proc.Extract(benchHTML)
	}
}

func BenchmarkLineProcessor_Cached(b *testing.B) {
	ctx := context.Background()
	chain := provider.NewChain(nil, provider.Tier{Provider: provider.NewMockProvider()})
	tr := tercume.NewTranslator(chain, tercume.WithCache(cache.NewInMemoryCache(0)))
	proc := processor.NewLineProcessor(tr)

	// Prime the cache
	proc.TranslateHTML(ctx, benchHTML, "az", "en")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.TranslateHTML(ctx, benchHTML, "az", "en")
	}
}

func BenchmarkTranslateField_Uncached(b *testing.B) {
	ctx := context.Background()
	chain := provider.NewChain(nil, provider.Tier{Provider: provider.NewMockProvider()})
	tr := tercume.NewTranslator(chain,
		tercume.WithCache(cache.NewInMemoryCache(0)),
		tercume.WithFieldStore(store.NewMemoryFieldStore()),
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.TranslateField(ctx, "course", int64(i+1), "title", fmt.Sprintf("Lesson %d", i), "en")
	}
}

func BenchmarkNormalizeLang(b *testing.B) {
	langs := []string{"en", "az-AZ", "ru_RU", "EN-us", "auto"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tercume.NormalizeLang(langs[i%len(langs)])
	}
}
