package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"yocto-led-bridge/internal/domain/model"
)

func TestTextEntity_Default(t *testing.T) {
	txt := NewTextEntity(&colorRecorder{}, "e1", disp1)
	assert.Equal(t, DefaultText, txt.Value())
	assert.Equal(t, "Yoctopuce", txt.View().State.Value)
}

func TestTextEntity_SetValue(t *testing.T) {
	rec := &colorRecorder{}
	txt := NewTextEntity(rec, "e1", disp1)

	var notified string
	txt.onChange = func(v model.Text) { notified = v.State.Value }

	assert.NoError(t, txt.SetValue(context.Background(), "Hello"))
	assert.Equal(t, []string{"text:Hello"}, rec.calls)
	assert.Equal(t, "Hello", txt.Value())
	assert.Equal(t, "Hello", notified)
}

func TestTextEntity_SetValue_StoresOnError(t *testing.T) {
	rec := &colorRecorder{err: errors.New("display offline")}
	txt := NewTextEntity(rec, "e1", disp1)

	assert.Error(t, txt.SetValue(context.Background(), "Bye"))
	assert.Equal(t, "Bye", txt.Value())
}
