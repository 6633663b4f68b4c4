package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yocto-led-bridge/internal/domain/model"
)

func TestPackRGB(t *testing.T) {
	for r := 0; r < 256; r += 51 {
		for g := 0; g < 256; g += 51 {
			for b := 0; b < 256; b += 51 {
				c := model.RGBColor{R: uint8(r), G: uint8(g), B: uint8(b)}
				assert.Equal(t, uint32(r)<<16|uint32(g)<<8|uint32(b), PackRGB(c))
			}
		}
	}
	assert.Equal(t, uint32(0xff0000), PackRGB(model.RGBColor{R: 255}))
}

func TestPackHS(t *testing.T) {
	for h := 0.0; h < 360; h += 15 {
		for s := 0.0; s <= 100; s += 10 {
			for b := 0; b < 256; b += 17 {
				want := uint32(h*255/360)<<16 | uint32(s*255/100)<<8 | uint32(b/2)
				assert.Equal(t, want, PackHS(model.HSColor{Hue: h, Saturation: s}, uint8(b)))
			}
		}
	}
	assert.Equal(t, uint32(0x55ff40), PackHS(model.HSColor{Hue: 120, Saturation: 100}, 128))
	assert.Equal(t, uint32(0x00ff7f), PackHS(model.HSColor{Saturation: 100}, 255))
}

func TestClampHS(t *testing.T) {
	assert.Equal(t, model.HSColor{Hue: 0, Saturation: 0}, ClampHS(model.HSColor{Hue: -1, Saturation: -5}))
	assert.Equal(t, model.HSColor{Hue: 360, Saturation: 100}, ClampHS(model.HSColor{Hue: 400, Saturation: 150}))
	assert.Equal(t, model.HSColor{Hue: 42, Saturation: 7}, ClampHS(model.HSColor{Hue: 42, Saturation: 7}))

	// out-of-range input saturates instead of wrapping
	assert.Equal(t, uint32(0x55ff64), PackHS(model.HSColor{Hue: 120, Saturation: 150}, 200))
	assert.Equal(t, uint32(0x007f64), PackHS(model.HSColor{Hue: -30, Saturation: 50}, 200))
}

func TestPackState(t *testing.T) {
	assert.Equal(t, uint32(0x00ff00), PackState(model.LightState{ColorMode: model.ColorModeRGB, RGB: model.RGBColor{G: 255}}))
	assert.Equal(t, uint32(0x55ff40), PackState(model.LightState{
		ColorMode: model.ColorModeHS, HS: model.HSColor{Hue: 120, Saturation: 100}, Brightness: 128,
	}))
}

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		hs   model.HSColor
		v    float64
		want model.RGBColor
	}{
		{model.HSColor{Hue: 0, Saturation: 100}, 1, model.RGBColor{R: 255}},
		{model.HSColor{Hue: 120, Saturation: 100}, 1, model.RGBColor{G: 255}},
		{model.HSColor{Hue: 240, Saturation: 100}, 1, model.RGBColor{B: 255}},
		{model.HSColor{Hue: 60, Saturation: 100}, 1, model.RGBColor{R: 255, G: 255}},
		{model.HSColor{Hue: 0, Saturation: 0}, 0.5, model.RGBColor{R: 128, G: 128, B: 128}},
		{model.HSColor{Hue: 360, Saturation: 100}, 1, model.RGBColor{R: 255}},
		{model.HSColor{Hue: 200, Saturation: 100}, 0, model.RGBColor{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HSVToRGB(tt.hs, tt.v), "hs=%v v=%v", tt.hs, tt.v)
	}
}

func TestRGBToHS(t *testing.T) {
	assert.Equal(t, model.HSColor{Hue: 0, Saturation: 100}, rgbToHS(model.RGBColor{R: 255}))
	assert.Equal(t, model.HSColor{Hue: 240, Saturation: 100}, rgbToHS(model.RGBColor{B: 255}))
	assert.Equal(t, model.HSColor{}, rgbToHS(model.RGBColor{R: 9, G: 9, B: 9}))
}
