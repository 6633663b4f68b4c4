package ports

import (
	"context"
	"time"

	"yocto-led-bridge/internal/domain/model"
)

type HubInfo struct {
	SerialNumber string
	LogicalName  string
}

// Align mirrors the Yoctopuce display anchor values.
type Align int

const (
	AlignTopLeft Align = iota
	AlignCenterLeft
	AlignBaselineLeft
	AlignBottomLeft
	AlignTopCenter
	AlignCenter
	AlignBaselineCenter
	AlignBottomCenter
)

// DeviceSDK registers hubs and hands out sessions.
type DeviceSDK interface {
	APIVersion() string
	// TestHub checks that url answers within timeout without registering it.
	TestHub(ctx context.Context, url string, timeout time.Duration) error
	// RegisterHub returns a usable session together with ErrDoubleAccess when
	// the hub is already registered by another live session.
	RegisterHub(ctx context.Context, url string) (Session, error)
}

// Session is one registered hub connection. Close releases it and is idempotent.
type Session interface {
	HubInfo(ctx context.Context) (HubInfo, error)
	Enumerate(ctx context.Context, kind model.ModuleKind) ([]model.ModuleID, error)
	IsOnline(ctx context.Context, id model.ModuleID) (bool, error)

	ActiveLedCount(ctx context.Context, id model.ModuleID) (int, error)
	RGBMove(ctx context.Context, id model.ModuleID, start, count int, color uint32, duration time.Duration) error
	HSLMove(ctx context.Context, id model.ModuleID, start, count int, color uint32, duration time.Duration) error

	DisplaySize(ctx context.Context, id model.ModuleID) (width, height int, err error)
	ResetAll(ctx context.Context, id model.ModuleID) error
	Layer(id model.ModuleID, layer int) DisplayLayer
	SwapLayerContent(ctx context.Context, id model.ModuleID, layerA, layerB int) error

	Close() error
}

type DisplayLayer interface {
	Clear(ctx context.Context) error
	Hide(ctx context.Context) error
	SelectFont(ctx context.Context, font string) error
	DrawText(ctx context.Context, x, y int, anchor Align, text string) error
}
