package translator

import (
	"math"

	"yocto-led-bridge/internal/domain/model"
)

// PackRGB packs red, green and blue into 0xRRGGBB.
func PackRGB(c model.RGBColor) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ClampHS bounds hue to [0,360] and saturation to [0,100].
func ClampHS(hs model.HSColor) model.HSColor {
	return model.HSColor{
		Hue:        math.Max(0, math.Min(360, hs.Hue)),
		Saturation: math.Max(0, math.Min(100, hs.Saturation)),
	}
}

// PackHS packs an HS color and a brightness into the 0xHHSSLL layout the
// LED cluster HSL primitives expect. Luminance is brightness halved.
func PackHS(hs model.HSColor, brightness uint8) uint32 {
	hs = ClampHS(hs)
	hue := uint32(hs.Hue * 255 / 360)
	sat := uint32(hs.Saturation * 255 / 100)
	lum := uint32(brightness / 2)
	return hue<<16 | sat<<8 | lum
}

// PackState picks the packing that matches the light's color mode.
func PackState(s model.LightState) uint32 {
	if s.ColorMode == model.ColorModeRGB {
		return PackRGB(s.RGB)
	}
	return PackHS(s.HS, s.Brightness)
}

// HSVToRGB converts hue [0,360), saturation [0,100] and value [0,1].
func HSVToRGB(hs model.HSColor, v float64) model.RGBColor {
	s := hs.Saturation / 100
	if s <= 0 {
		c := uint8(math.Round(v * 255))
		return model.RGBColor{R: c, G: c, B: c}
	}

	h := math.Mod(hs.Hue, 360)
	if h < 0 {
		h += 360
	}
	hh := h / 60.0
	i := int(hh)
	ff := hh - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - s*ff)
	t := v * (1.0 - s*(1.0-ff))

	var r, g, b float64
	switch i {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return model.RGBColor{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
	}
}
