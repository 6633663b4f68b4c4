package ports

import (
	"context"

	"yocto-led-bridge/internal/domain/model"
)

// BridgePort is what the input adapters (Hue API, admin, MQTT) drive.
type BridgePort interface {
	Lights(ctx context.Context) []model.Light
	Light(ctx context.Context, id model.ModuleID) (model.Light, error)
	TurnOnLight(ctx context.Context, id model.ModuleID, req model.TurnOnRequest) error
	TurnOffLight(ctx context.Context, id model.ModuleID) error

	Texts(ctx context.Context) []model.Text
	SetText(ctx context.Context, id model.ModuleID, value string) error

	// Entry management
	Entries(ctx context.Context) []*model.Entry
	SubmitEntry(ctx context.Context, input model.UserInput) (*model.FlowResult, error)
	RemoveEntry(ctx context.Context, entryID string) error
	ReloadEntry(ctx context.Context, entryID string) error
	Diagnostics(ctx context.Context, entryID string) (*model.Diagnostics, error)

	// Subscribe registers fn for entity events and returns an unsubscribe func.
	Subscribe(fn func(model.EntityEvent)) func()
}
