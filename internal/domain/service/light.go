package service

import (
	"context"
	"sync"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/domain/translator"
)

// ColorSetter is the part of Hub a light needs.
type ColorSetter interface {
	SetColor(ctx context.Context, id model.ModuleID, rgb uint32) error
	SetHSLColor(ctx context.Context, id model.ModuleID, hsl uint32) error
}

// LightEntity is one color led cluster. Its state reflects the last request,
// not what the device confirmed.
type LightEntity struct {
	hub      ColorSetter
	id       model.ModuleID
	entryID  string
	onChange func(model.Light)

	mu    sync.Mutex
	state model.LightState
}

func NewLightEntity(hub ColorSetter, entryID string, id model.ModuleID, mode model.ColorMode) *LightEntity {
	return &LightEntity{
		hub:     hub,
		id:      id,
		entryID: entryID,
		state:   model.LightState{ColorMode: mode},
	}
}

func (l *LightEntity) ID() model.ModuleID { return l.id }

func (l *LightEntity) ColorMode() model.ColorMode { return l.State().ColorMode }

func (l *LightEntity) State() model.LightState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *LightEntity) View() model.Light {
	return model.Light{ID: l.id, EntryID: l.entryID, Name: string(l.id), State: l.State()}
}

// TurnOn merges req into the current state, marks the light on and sends the
// packed color matching the entity's color mode.
func (l *LightEntity) TurnOn(ctx context.Context, req model.TurnOnRequest) error {
	l.mu.Lock()
	l.state.On = true
	if req.RGB != nil {
		l.state.RGB = *req.RGB
	}
	if req.HS != nil {
		l.state.HS = translator.ClampHS(*req.HS)
	}
	if req.Brightness != nil {
		l.state.Brightness = *req.Brightness
	}
	state := l.state
	l.mu.Unlock()

	l.notify()
	if state.ColorMode == model.ColorModeRGB {
		return l.hub.SetColor(ctx, l.id, translator.PackRGB(state.RGB))
	}
	return l.hub.SetHSLColor(ctx, l.id, translator.PackHS(state.HS, state.Brightness))
}

// TurnOff always sends packed color 0, whatever the color mode.
func (l *LightEntity) TurnOff(ctx context.Context) error {
	l.mu.Lock()
	l.state.On = false
	l.mu.Unlock()

	l.notify()
	return l.hub.SetColor(ctx, l.id, 0)
}

func (l *LightEntity) notify() {
	if l.onChange != nil {
		l.onChange(l.View())
	}
}
