package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/ports"
)

const (
	DefaultTransition = 1000 * time.Millisecond

	textLayer    = 1
	visibleLayer = 2

	FontLarge  = "Large.yfm"
	FontMedium = "Medium.yfm"

	// Strings shorter than this many characters use FontLarge.
	largeFontMaxLen = 8
)

// Hub owns one device session and dispatches color and text operations by module ID.
type Hub struct {
	sdk        ports.DeviceSDK
	logger     *slog.Logger
	transition time.Duration

	mu      sync.RWMutex
	url     string
	session ports.Session
	leds    []model.ModuleID
	disp    []model.ModuleID
}

func NewHub(sdk ports.DeviceSDK, logger *slog.Logger, transition time.Duration) *Hub {
	if transition <= 0 {
		transition = DefaultTransition
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sdk:        sdk,
		logger:     logger.With("component", "hub"),
		transition: transition,
	}
}

// Connect registers url and rebuilds the module lists. Calling it again
// replaces the previous session and lists.
func (h *Hub) Connect(ctx context.Context, url string) error {
	h.logger.Info("using yoctopuce library", "version", h.sdk.APIVersion())
	h.logger.Debug("register hub", "url", url)

	session, err := h.sdk.RegisterHub(ctx, url)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrDoubleAccess) && session != nil:
		h.logger.Warn("register hub warning", "url", url, "error", err)
	default:
		if session != nil {
			_ = session.Close()
		}
		h.logger.Error("register hub failed", "url", url, "error", err)
		return fmt.Errorf("%w: %w", ErrEntryNotReady, err)
	}

	leds, err := session.Enumerate(ctx, model.ModuleKindColorLedCluster)
	if err != nil {
		_ = session.Close()
		return fmt.Errorf("%w: list color led clusters: %w", ErrEntryNotReady, err)
	}
	disp, err := session.Enumerate(ctx, model.ModuleKindDisplay)
	if err != nil {
		_ = session.Close()
		return fmt.Errorf("%w: list displays: %w", ErrEntryNotReady, err)
	}
	for _, id := range leds {
		h.logger.Debug("found color led cluster", "id", id)
	}
	for _, id := range disp {
		h.logger.Debug("found display", "id", id)
		if err := session.ResetAll(ctx, id); err != nil {
			h.logger.Warn("display reset failed", "id", id, "error", err)
		}
	}

	h.mu.Lock()
	previous := h.session
	h.url = url
	h.session = session
	h.leds = leds
	h.disp = disp
	h.mu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	return nil
}

// Disconnect releases the session. It is a no-op when not connected.
func (h *Hub) Disconnect() error {
	h.mu.Lock()
	session := h.session
	h.session = nil
	h.mu.Unlock()

	if session == nil {
		return nil
	}
	return session.Close()
}

func (h *Hub) URL() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.url
}

func (h *Hub) Connected() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session != nil
}

// Leds returns the color led clusters found by the last successful Connect.
func (h *Hub) Leds() []model.ModuleID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.ModuleID(nil), h.leds...)
}

// Disp returns the displays found by the last successful Connect.
func (h *Hub) Disp() []model.ModuleID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.ModuleID(nil), h.disp...)
}

func (h *Hub) SetColor(ctx context.Context, id model.ModuleID, rgb uint32) error {
	return h.move(ctx, id, rgb, false)
}

func (h *Hub) SetHSLColor(ctx context.Context, id model.ModuleID, hsl uint32) error {
	return h.move(ctx, id, hsl, true)
}

func (h *Hub) move(ctx context.Context, id model.ModuleID, color uint32, hsl bool) error {
	session, ok := h.onlineSession(ctx, id)
	if !ok {
		return nil
	}
	count, err := session.ActiveLedCount(ctx, id)
	if err != nil {
		return fmt.Errorf("active led count of %s: %w", id, err)
	}
	h.logger.Debug("set color", "id", id, "color", fmt.Sprintf("0x%x", color), "hsl", hsl, "leds", count)
	if hsl {
		err = session.HSLMove(ctx, id, 0, count, color, h.transition)
	} else {
		err = session.RGBMove(ctx, id, 0, count, color, h.transition)
	}
	if err != nil {
		return fmt.Errorf("move %s: %w", id, err)
	}
	return nil
}

// SetText renders text centered on layer 1 of a display and swaps it into view.
func (h *Hub) SetText(ctx context.Context, id model.ModuleID, text string) error {
	session, ok := h.onlineSession(ctx, id)
	if !ok {
		return nil
	}
	w, ht, err := session.DisplaySize(ctx, id)
	if err != nil {
		return fmt.Errorf("display size of %s: %w", id, err)
	}

	layer := session.Layer(id, textLayer)
	if err := layer.Clear(ctx); err != nil {
		return fmt.Errorf("clear layer: %w", err)
	}
	if err := layer.Hide(ctx); err != nil {
		return fmt.Errorf("hide layer: %w", err)
	}
	if err := layer.SelectFont(ctx, FontFor(text)); err != nil {
		return fmt.Errorf("select font: %w", err)
	}
	if err := layer.DrawText(ctx, w/2, ht/2, ports.AlignCenter, text); err != nil {
		return fmt.Errorf("draw text: %w", err)
	}
	if err := session.SwapLayerContent(ctx, id, textLayer, visibleLayer); err != nil {
		return fmt.Errorf("swap layers: %w", err)
	}
	return nil
}

// FontFor picks the display font for text.
func FontFor(text string) string {
	if utf8.RuneCountInString(text) < largeFontMaxLen {
		return FontLarge
	}
	return FontMedium
}

// onlineSession returns the session when id is reachable. Missing sessions
// and offline modules are logged and reported as not ok.
func (h *Hub) onlineSession(ctx context.Context, id model.ModuleID) (ports.Session, bool) {
	h.mu.RLock()
	session := h.session
	h.mu.RUnlock()

	if session == nil {
		h.logger.Warn("hub not connected, skipping", "id", id)
		return nil, false
	}
	online, err := session.IsOnline(ctx, id)
	if err != nil || !online {
		h.logger.Warn("module offline", "id", id, "error", err)
		return nil, false
	}
	return session, true
}
