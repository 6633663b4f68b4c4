package translator

import (
	"github.com/amimof/huego"
	"yocto-led-bridge/internal/domain/model"
)

type HueMetadata struct {
	Type             string
	ModelID          string
	ManufacturerName string
}

// HueUpdate holds the fields of a Hue "PUT /lights/<id>/state" body that the
// bridge understands. Nil means absent.
type HueUpdate struct {
	On  *bool
	Bri *uint8
	Hue *uint16
	Sat *uint8
}

// Translator defines the interface for translating between Hue and entity states
type Translator interface {
	ToHue(state model.LightState) *huego.State
	ToEntity(update HueUpdate, current model.LightState) (on bool, req model.TurnOnRequest)
	GetMetadata() HueMetadata
}

// ParseHueUpdate picks the known keys out of a decoded JSON body.
func ParseHueUpdate(body map[string]interface{}) HueUpdate {
	var u HueUpdate
	if on, ok := body["on"].(bool); ok {
		u.On = &on
	}
	if bri, ok := body["bri"].(float64); ok {
		b := uint8(clampRange(bri, 0, 254))
		u.Bri = &b
	}
	if hue, ok := body["hue"].(float64); ok {
		h := uint16(clampRange(hue, 0, 65535))
		u.Hue = &h
	}
	if sat, ok := body["sat"].(float64); ok {
		s := uint8(clampRange(sat, 0, 254))
		u.Sat = &s
	}
	return u
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
