package translator

import (
	"math"

	"github.com/amimof/huego"
	"yocto-led-bridge/internal/domain/model"
)

const (
	hueMax = 65536.0
	satMax = 254.0
)

type LightStrategy struct {
	ToHueFormula    Formula
	ToEntityFormula Formula
}

func (s *LightStrategy) ToHue(state model.LightState) *huego.State {
	hs := state.HS
	if state.ColorMode == model.ColorModeRGB {
		hs = rgbToHS(state.RGB)
	}
	return &huego.State{
		On:        state.On,
		Bri:       uint8(clampRange(s.ToHueFormula.Eval(float64(state.Brightness)), 0, 254)),
		Hue:       uint16(math.Mod(hs.Hue, 360) * hueMax / 360),
		Sat:       uint8(hs.Saturation * satMax / 100),
		ColorMode: "hs",
		Reachable: true,
	}
}

// ToEntity turns a Hue update into a turn-on request. Both an HS color and an
// RGB color are produced so either color mode gets a usable value.
func (s *LightStrategy) ToEntity(update HueUpdate, current model.LightState) (bool, model.TurnOnRequest) {
	on := current.On
	if update.On != nil {
		on = *update.On
	}
	var req model.TurnOnRequest

	brightness := current.Brightness
	if update.Bri != nil {
		brightness = clampByte(s.ToEntityFormula.Eval(float64(*update.Bri)))
		req.Brightness = &brightness
	}

	hs := current.HS
	colorChanged := false
	if update.Hue != nil {
		hs.Hue = float64(*update.Hue) * 360 / hueMax
		colorChanged = true
	}
	if update.Sat != nil {
		hs.Saturation = float64(*update.Sat) * 100 / satMax
		colorChanged = true
	}
	if colorChanged {
		req.HS = &hs
	}
	if colorChanged || update.Bri != nil {
		rgb := HSVToRGB(hs, float64(brightness)/255)
		req.RGB = &rgb
	}
	return on, req
}

func (s *LightStrategy) GetMetadata() HueMetadata {
	return HueMetadata{
		Type:             "Extended color light",
		ModelID:          "LCT015",
		ManufacturerName: "Yoctopuce",
	}
}

func rgbToHS(c model.RGBColor) model.HSColor {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC
	if maxC == 0 || delta == 0 {
		return model.HSColor{}
	}

	var h float64
	switch maxC {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return model.HSColor{Hue: h, Saturation: delta / maxC * 100}
}
