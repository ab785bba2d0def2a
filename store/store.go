// Package store persists translation cache rows and per-field content
// translations.
package store

import (
	"context"
	"errors"

	"github.com/ZaguanLabs/tercume"
)

// ErrNotFound is returned by lookups that address a missing row.
var ErrNotFound = errors.New("resource not found")

// Store is the full persistence surface: the raw-text cache, the field
// translation table and the administrative purge.
type Store interface {
	tercume.TranslationCache
	tercume.FieldStore
	tercume.Purger
	Ping(ctx context.Context) error
}

// Table names.
const (
	CacheTable  = "translation_cache"
	FieldsTable = "content_field_translations"
)
