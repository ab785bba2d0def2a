package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ZaguanLabs/tercume"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using pgx/v5. It serves as both the
// translation cache and the field translation table.
type PostgresStore struct {
	pool *pgxpool.Pool
	sq   sq.StatementBuilderType
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		sq:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Translation cache ---

// Get looks up a cached translation.
func (s *PostgresStore) Get(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	query, args, err := s.sq.
		Select("translated_text").
		From(CacheTable).
		Where(sq.Eq{
			"source_hash": tercume.HashText(sourceText),
			"source_lang": sourceLang,
			"target_lang": targetLang,
			"source_text": sourceText,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build cache lookup: %w", err)
	}

	var translated string
	err = s.pool.QueryRow(ctx, query, args...).Scan(&translated)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &tercume.CacheError{Message: "get cache row", Cause: err}
	}
	return translated, true, nil
}

// Put upserts a cache row on (source_hash, source_lang, target_lang).
func (s *PostgresStore) Put(ctx context.Context, e tercume.CacheEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query, args, err := s.sq.
		Insert(CacheTable).
		Columns("source_hash", "source_text", "source_lang", "target_lang", "translated_text", "provider", "created_at").
		Values(tercume.HashText(e.SourceText), e.SourceText, e.SourceLang, e.TargetLang, e.TranslatedText, e.Provider, e.CreatedAt).
		Suffix(`ON CONFLICT (source_hash, source_lang, target_lang) DO UPDATE SET
			source_text = EXCLUDED.source_text,
			translated_text = EXCLUDED.translated_text,
			provider = EXCLUDED.provider,
			created_at = EXCLUDED.created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cache upsert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return &tercume.CacheError{Message: "put cache row", Cause: err}
	}
	return nil
}

// Entries returns every cache row, for export.
func (s *PostgresStore) Entries(ctx context.Context) ([]tercume.CacheEntry, error) {
	query, args, err := s.sq.
		Select("source_text", "source_lang", "target_lang", "translated_text", "provider", "created_at").
		From(CacheTable).
		OrderBy("target_lang", "source_text").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cache listing: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cache rows: %w", err)
	}
	defer rows.Close()

	var entries []tercume.CacheEntry
	for rows.Next() {
		var e tercume.CacheEntry
		if err := rows.Scan(&e.SourceText, &e.SourceLang, &e.TargetLang, &e.TranslatedText, &e.Provider, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- Field translations ---

// GetField returns the stored translation for key.
func (s *PostgresStore) GetField(ctx context.Context, key tercume.FieldKey) (string, bool, error) {
	query, args, err := s.sq.
		Select("translated_text").
		From(FieldsTable).
		Where(sq.Eq{
			"content_type": key.ContentType,
			"content_id":   key.ContentID,
			"field_path":   key.FieldPath,
			"target_lang":  key.TargetLang,
		}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build field lookup: %w", err)
	}

	var translated string
	err = s.pool.QueryRow(ctx, query, args...).Scan(&translated)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &tercume.FieldError{Op: "get", Key: key, Cause: err}
	}
	return translated, true, nil
}

// PutField upserts a field translation.
func (s *PostgresStore) PutField(ctx context.Context, ft tercume.FieldTranslation) error {
	if ft.UpdatedAt.IsZero() {
		ft.UpdatedAt = time.Now().UTC()
	}
	query, args, err := s.sq.
		Insert(FieldsTable).
		Columns("content_type", "content_id", "field_path", "target_lang", "translated_text", "source_lang", "updated_at").
		Values(ft.ContentType, ft.ContentID, ft.FieldPath, ft.TargetLang, ft.TranslatedText, ft.SourceLang, ft.UpdatedAt).
		Suffix(`ON CONFLICT (content_type, content_id, field_path, target_lang) DO UPDATE SET
			translated_text = EXCLUDED.translated_text,
			source_lang = EXCLUDED.source_lang,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build field upsert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return &tercume.FieldError{Op: "put", Key: ft.FieldKey, Cause: err}
	}
	return nil
}

// ListFields returns every stored translation of one content entity.
func (s *PostgresStore) ListFields(ctx context.Context, contentType string, contentID int64) ([]tercume.FieldTranslation, error) {
	query, args, err := s.sq.
		Select("content_type", "content_id", "field_path", "target_lang", "translated_text", "source_lang", "updated_at").
		From(FieldsTable).
		Where(sq.Eq{"content_type": contentType, "content_id": contentID}).
		OrderBy("field_path", "target_lang").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build field listing: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list field translations: %w", err)
	}
	defer rows.Close()

	var out []tercume.FieldTranslation
	for rows.Next() {
		var ft tercume.FieldTranslation
		if err := rows.Scan(&ft.ContentType, &ft.ContentID, &ft.FieldPath, &ft.TargetLang,
			&ft.TranslatedText, &ft.SourceLang, &ft.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan field translation: %w", err)
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}

// --- Purge ---

// Purge deletes cache and field rows matching the filter. Cache rows are not
// tied to a content type, so they are only deleted by unscoped or
// language-scoped purges.
func (s *PostgresStore) Purge(ctx context.Context, filter tercume.PurgeFilter) (tercume.PurgeResult, error) {
	var res tercume.PurgeResult
	lang := tercume.NormalizeLang(filter.TargetLang)

	if filter.ContentType == "" {
		del := s.sq.Delete(CacheTable)
		if lang != "" {
			del = del.Where(sq.Eq{"target_lang": lang})
		}
		n, err := s.execDelete(ctx, del)
		if err != nil {
			return res, fmt.Errorf("purge cache: %w", err)
		}
		res.CacheDeleted = n
	}

	del := s.sq.Delete(FieldsTable)
	if lang != "" {
		del = del.Where(sq.Eq{"target_lang": lang})
	}
	if filter.ContentType != "" {
		del = del.Where(sq.Eq{"content_type": filter.ContentType})
	}
	n, err := s.execDelete(ctx, del)
	if err != nil {
		return res, fmt.Errorf("purge field translations: %w", err)
	}
	res.FieldsDeleted = n

	return res, nil
}

func (s *PostgresStore) execDelete(ctx context.Context, del sq.DeleteBuilder) (int64, error) {
	query, args, err := del.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*PostgresStore)(nil)
