package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"yocto-led-bridge/internal/domain/model"
)

type JSONEntryRepository struct {
	filepath string
	mu       sync.RWMutex
}

func NewJSONEntryRepository(filepath string) *JSONEntryRepository {
	return &JSONEntryRepository{filepath: filepath}
}

func (r *JSONEntryRepository) Get(ctx context.Context) (*model.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.Config{Entries: []*model.Entry{}}, nil
		}
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &model.Config{Entries: []*model.Entry{}}, nil
	}

	var cfg model.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Entries == nil {
		cfg.Entries = []*model.Entry{}
	}

	for _, e := range cfg.Entries {
		e.State = model.EntryStateNotLoaded
	}
	return &cfg, nil
}

// Save writes through a temp file so a crash never leaves a truncated file.
func (r *JSONEntryRepository) Save(ctx context.Context, config *model.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.filepath), ".entries-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.filepath)
}
