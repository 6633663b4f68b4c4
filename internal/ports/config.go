package ports

import (
	"context"

	"yocto-led-bridge/internal/domain/model"
)

type EntryRepository interface {
	Get(ctx context.Context) (*model.Config, error)
	Save(ctx context.Context, config *model.Config) error
}
