package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yocto-led-bridge/internal/domain/model"
)

func TestJSONEntryRepository_Missing(t *testing.T) {
	repo := NewJSONEntryRepository(filepath.Join(t.TempDir(), "entries.json"))
	cfg, err := repo.Get(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, cfg.Entries)
}

func TestJSONEntryRepository_UnrecognisedFileHasNoEntries(t *testing.T) {
	for name, content := range map[string]string{
		"empty":     "",
		"blank":     "  \n",
		"bare url":  `{"url": "hub.local"}`,
		"no fields": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "entries.json")
			require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

			cfg, err := NewJSONEntryRepository(tmpFile).Get(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, cfg.Entries)
			assert.Empty(t, cfg.Entries)
		})
	}
}

func TestJSONEntryRepository_NewFormat(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "entries.json")

	repo := NewJSONEntryRepository(tmpFile)
	cfg := &model.Config{
		Entries: []*model.Entry{
			{EntryID: "e1", UniqueID: "YHUBETH1-1", Title: "hall", Data: model.EntryData{URL: "hub.local", ColorMode: model.ColorModeRGB}},
		},
	}

	err := repo.Save(context.Background(), cfg)
	assert.NoError(t, err)

	loaded, err := repo.Get(context.Background())
	assert.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "hall", loaded.Entries[0].Title)
	assert.Equal(t, model.ColorModeRGB, loaded.Entries[0].Data.ColorMode)
	assert.Equal(t, model.EntryStateNotLoaded, loaded.Entries[0].State)
}

func TestJSONEntryRepository_Corrupt(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{not json`), 0644))

	_, err := NewJSONEntryRepository(tmpFile).Get(context.Background())
	assert.Error(t, err)
}
