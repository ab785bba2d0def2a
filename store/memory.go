package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/tercume"
)

// MemoryFieldStore keeps field translations in process memory.
type MemoryFieldStore struct {
	mu   sync.RWMutex
	rows map[tercume.FieldKey]tercume.FieldTranslation
}

// NewMemoryFieldStore creates an empty store.
func NewMemoryFieldStore() *MemoryFieldStore {
	return &MemoryFieldStore{rows: make(map[tercume.FieldKey]tercume.FieldTranslation)}
}

// GetField returns the stored translation for key.
func (s *MemoryFieldStore) GetField(ctx context.Context, key tercume.FieldKey) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[key]
	return row.TranslatedText, ok, nil
}

// PutField upserts a field translation.
func (s *MemoryFieldStore) PutField(ctx context.Context, ft tercume.FieldTranslation) error {
	if ft.UpdatedAt.IsZero() {
		ft.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[ft.FieldKey] = ft
	return nil
}

// ListFields returns every stored translation of one content entity,
// ordered by field path and target language.
func (s *MemoryFieldStore) ListFields(ctx context.Context, contentType string, contentID int64) ([]tercume.FieldTranslation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tercume.FieldTranslation
	for key, row := range s.rows {
		if key.ContentType == contentType && key.ContentID == contentID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FieldPath != out[j].FieldPath {
			return out[i].FieldPath < out[j].FieldPath
		}
		return out[i].TargetLang < out[j].TargetLang
	})
	return out, nil
}

// Purge deletes field translations matching the filter.
func (s *MemoryFieldStore) Purge(ctx context.Context, filter tercume.PurgeFilter) (tercume.PurgeResult, error) {
	lang := tercume.NormalizeLang(filter.TargetLang)

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key := range s.rows {
		if lang != "" && key.TargetLang != lang {
			continue
		}
		if filter.ContentType != "" && key.ContentType != filter.ContentType {
			continue
		}
		delete(s.rows, key)
		deleted++
	}
	return tercume.PurgeResult{FieldsDeleted: deleted}, nil
}

// Len returns the number of stored rows.
func (s *MemoryFieldStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

var (
	_ tercume.FieldStore = (*MemoryFieldStore)(nil)
	_ tercume.Purger     = (*MemoryFieldStore)(nil)
)
