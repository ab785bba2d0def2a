package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ZaguanLabs/tercume"
)

// ExportVersion is the version tag written into export files.
const ExportVersion = "1.0"

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string               `json:"version"`
	ExportedAt string               `json:"exported_at"`
	Entries    []tercume.CacheEntry `json:"entries"`
	Metadata   map[string]string    `json:"metadata,omitempty"`
}

// Exporter provides cache export functionality.
type Exporter struct {
	cache EntryLister
	now   func() time.Time
}

// NewExporter creates a new cache exporter.
func NewExporter(cache EntryLister) *Exporter {
	return &Exporter{cache: cache, now: time.Now}
}

// Export writes the cache contents to a writer in JSON format.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) (int, error) {
	entries, err := e.cache.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting cache entries: %w", err)
	}
	if entries == nil {
		entries = []tercume.CacheEntry{}
	}

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return 0, fmt.Errorf("encoding JSON: %w", err)
	}

	return len(entries), nil
}

// ExportToFile exports the cache to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, f, metadata)
}

// Importer provides cache import functionality.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads cache entries from a reader and upserts them into the cache.
// Entries without source text, target language or translation are counted
// as failed.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if entry.SourceText == "" || entry.TargetLang == "" || entry.TranslatedText == "" {
			result.Failed++
			continue
		}
		if err := i.cache.Put(ctx, entry); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}
