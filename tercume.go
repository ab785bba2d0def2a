// Package tercume provides a multilingual content-translation pipeline.
//
// Tercume detects the language of content fields, translates them into every
// configured target language through an ordered chain of providers, caches
// each (text, source, target) translation exactly once and serves
// translations back with a guaranteed fallback to the original text.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/tercume"
//	    "github.com/ZaguanLabs/tercume/cache"
//	    "github.com/ZaguanLabs/tercume/detect"
//	    "github.com/ZaguanLabs/tercume/provider"
//	    "github.com/ZaguanLabs/tercume/store"
//	)
//
//	func main() {
//	    chain := provider.NewChain(provider.DefaultPhrasebook(),
//	        provider.Tier{
//	            Provider: provider.NewOpenAIProvider(provider.OpenAIConfig{APIKey: os.Getenv("OPENAI_API_KEY")}),
//	            Timeout:  10 * time.Second,
//	        },
//	    )
//
//	    t := tercume.NewTranslator(chain,
//	        tercume.WithCache(cache.NewInMemoryCache(0)),
//	        tercume.WithFieldStore(store.NewMemoryFieldStore()),
//	        tercume.WithDetector(detect.New()),
//	        tercume.WithProtectedTerms([]string{"Tercume"}),
//	    )
//
//	    ctx := context.Background()
//	    t.TranslateField(ctx, "course", 42, "title", "Introduction to Tercume", "")
//	    fmt.Println(t.GetTranslatedField(ctx, "course", 42, "title", "Introduction to Tercume", "az"))
//	}
package tercume
