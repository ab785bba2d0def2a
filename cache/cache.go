// Package cache provides translation caching implementations.
package cache

import (
	"context"

	"github.com/ZaguanLabs/tercume"
)

// TranslationCache is the interface for translation caching.
type TranslationCache = tercume.TranslationCache

// EntryLister is implemented by caches whose contents can be enumerated
// for export.
type EntryLister interface {
	Entries(ctx context.Context) ([]tercume.CacheEntry, error)
}

// ExportableCache is a cache that supports both export and import.
type ExportableCache interface {
	TranslationCache
	EntryLister
}
