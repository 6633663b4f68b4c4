package service

import (
	"context"
	"sync"

	"yocto-led-bridge/internal/domain/model"
)

const DefaultText = "Yoctopuce"

type TextSetter interface {
	SetText(ctx context.Context, id model.ModuleID, text string) error
}

// TextEntity is one display.
type TextEntity struct {
	hub      TextSetter
	id       model.ModuleID
	entryID  string
	onChange func(model.Text)

	mu    sync.Mutex
	value string
}

func NewTextEntity(hub TextSetter, entryID string, id model.ModuleID) *TextEntity {
	return &TextEntity{hub: hub, id: id, entryID: entryID, value: DefaultText}
}

func (t *TextEntity) ID() model.ModuleID { return t.id }

func (t *TextEntity) Value() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *TextEntity) View() model.Text {
	return model.Text{ID: t.id, EntryID: t.entryID, Name: string(t.id), State: model.TextState{Value: t.Value()}}
}

// SetValue renders value and stores it even if rendering failed.
func (t *TextEntity) SetValue(ctx context.Context, value string) error {
	err := t.hub.SetText(ctx, t.id, value)

	t.mu.Lock()
	t.value = value
	t.mu.Unlock()

	if t.onChange != nil {
		t.onChange(t.View())
	}
	return err
}
