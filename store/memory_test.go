package store

import (
	"context"
	"testing"

	"github.com/ZaguanLabs/tercume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(ct string, id int64, path, lang, text string) tercume.FieldTranslation {
	return tercume.FieldTranslation{
		FieldKey:       tercume.FieldKey{ContentType: ct, ContentID: id, FieldPath: path, TargetLang: lang},
		TranslatedText: text,
		SourceLang:     "en",
	}
}

func TestMemoryFieldStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFieldStore()

	require.NoError(t, s.PutField(ctx, field("course", 1, "title", "az", "Salam")))

	got, ok, err := s.GetField(ctx, tercume.FieldKey{ContentType: "course", ContentID: 1, FieldPath: "title", TargetLang: "az"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Salam", got)

	_, ok, err = s.GetField(ctx, tercume.FieldKey{ContentType: "course", ContentID: 2, FieldPath: "title", TargetLang: "az"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryFieldStore_Upsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFieldStore()

	require.NoError(t, s.PutField(ctx, field("course", 1, "title", "az", "old")))
	require.NoError(t, s.PutField(ctx, field("course", 1, "title", "az", "new")))

	assert.Equal(t, 1, s.Len())
	got, _, _ := s.GetField(ctx, tercume.FieldKey{ContentType: "course", ContentID: 1, FieldPath: "title", TargetLang: "az"})
	assert.Equal(t, "new", got)
}

func TestMemoryFieldStore_ListFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryFieldStore()

	require.NoError(t, s.PutField(ctx, field("course", 1, "title", "ru", "a")))
	require.NoError(t, s.PutField(ctx, field("course", 1, "features[0].title", "az", "b")))
	require.NoError(t, s.PutField(ctx, field("course", 1, "title", "az", "c")))
	require.NoError(t, s.PutField(ctx, field("course", 2, "title", "az", "d")))

	rows, err := s.ListFields(ctx, "course", 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "features[0].title", rows[0].FieldPath)
	assert.Equal(t, "az", rows[1].TargetLang)
	assert.Equal(t, "ru", rows[2].TargetLang)
	assert.False(t, rows[0].UpdatedAt.IsZero())
}

func TestMemoryFieldStore_Purge(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		filter  tercume.PurgeFilter
		deleted int64
	}{
		{"all", tercume.PurgeFilter{}, 4},
		{"language", tercume.PurgeFilter{TargetLang: "az"}, 3},
		{"content type", tercume.PurgeFilter{ContentType: "resource"}, 1},
		{"both", tercume.PurgeFilter{TargetLang: "az", ContentType: "course"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryFieldStore()
			require.NoError(t, s.PutField(ctx, field("course", 1, "title", "az", "a")))
			require.NoError(t, s.PutField(ctx, field("course", 1, "title", "ru", "b")))
			require.NoError(t, s.PutField(ctx, field("course", 2, "title", "az", "c")))
			require.NoError(t, s.PutField(ctx, field("resource", 1, "title", "az", "d")))

			res, err := s.Purge(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.deleted, res.FieldsDeleted)
			assert.Zero(t, res.CacheDeleted)
			assert.Equal(t, 4-int(tt.deleted), s.Len())
		})
	}
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db?sslmode=disable", migrateURL("postgres://u:p@localhost:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("pgx5://localhost/db"))
}
