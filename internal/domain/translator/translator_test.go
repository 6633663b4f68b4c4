package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yocto-led-bridge/internal/domain/model"
)

func TestLightStrategy_ToHue(t *testing.T) {
	s := &LightStrategy{}

	hue := s.ToHue(model.LightState{
		On:         true,
		ColorMode:  model.ColorModeHS,
		HS:         model.HSColor{Hue: 90, Saturation: 100},
		Brightness: 127,
	})
	assert.True(t, hue.On)
	assert.True(t, hue.Reachable)
	assert.Equal(t, uint8(127), hue.Bri)
	assert.Equal(t, uint16(16384), hue.Hue)
	assert.Equal(t, uint8(254), hue.Sat)
	assert.Equal(t, "hs", hue.ColorMode)

	// full brightness is capped at the Hue maximum
	hue = s.ToHue(model.LightState{Brightness: 255})
	assert.Equal(t, uint8(254), hue.Bri)
}

func TestLightStrategy_ToHue_RGBMode(t *testing.T) {
	s := &LightStrategy{}
	hue := s.ToHue(model.LightState{ColorMode: model.ColorModeRGB, RGB: model.RGBColor{B: 255}})

	assert.Equal(t, uint16(43690), hue.Hue)
	assert.Equal(t, uint8(254), hue.Sat)
}

func TestLightStrategy_ToHue_Formula(t *testing.T) {
	s := &LightStrategy{ToHueFormula: "x * 254 / 255"}
	hue := s.ToHue(model.LightState{Brightness: 255})
	assert.Equal(t, uint8(254), hue.Bri)
}

func TestLightStrategy_ToEntity(t *testing.T) {
	s := &LightStrategy{}
	current := model.LightState{On: false, HS: model.HSColor{Hue: 0, Saturation: 100}, Brightness: 255}

	on := true
	bri := uint8(200)
	hueVal := uint16(21845) // 120°
	gotOn, req := s.ToEntity(HueUpdate{On: &on, Bri: &bri, Hue: &hueVal}, current)

	assert.True(t, gotOn)
	require.NotNil(t, req.Brightness)
	assert.Equal(t, uint8(200), *req.Brightness)
	require.NotNil(t, req.HS)
	assert.InDelta(t, 120.0, req.HS.Hue, 0.01)
	assert.Equal(t, 100.0, req.HS.Saturation)
	require.NotNil(t, req.RGB)
	assert.Equal(t, model.RGBColor{G: 200}, *req.RGB)
}

func TestLightStrategy_ToEntity_OnlyOn(t *testing.T) {
	s := &LightStrategy{}
	on := false
	gotOn, req := s.ToEntity(HueUpdate{On: &on}, model.LightState{On: true})

	assert.False(t, gotOn)
	assert.Nil(t, req.Brightness)
	assert.Nil(t, req.HS)
	assert.Nil(t, req.RGB)
}

func TestLightStrategy_ToEntity_Formula(t *testing.T) {
	s := &LightStrategy{ToEntityFormula: "x * 255 / 254"}
	bri := uint8(254)
	_, req := s.ToEntity(HueUpdate{Bri: &bri}, model.LightState{})

	require.NotNil(t, req.Brightness)
	assert.Equal(t, uint8(255), *req.Brightness)
}

func TestParseHueUpdate(t *testing.T) {
	u := ParseHueUpdate(map[string]interface{}{
		"on":  true,
		"bri": 300.0,
		"hue": -5.0,
		"sat": 100.0,
		"ct":  250.0,
	})

	require.NotNil(t, u.On)
	assert.True(t, *u.On)
	assert.Equal(t, uint8(254), *u.Bri)
	assert.Equal(t, uint16(0), *u.Hue)
	assert.Equal(t, uint8(100), *u.Sat)

	empty := ParseHueUpdate(map[string]interface{}{"on": "yes"})
	assert.Nil(t, empty.On)
	assert.Nil(t, empty.Bri)
}

func TestFormula_Eval(t *testing.T) {
	assert.Equal(t, 10.0, Formula("x * 2").Eval(5))
	assert.Equal(t, 5.0, Formula("x / 2").Eval(10))
	assert.Equal(t, 15.0, Formula("x + 5").Eval(10))
	assert.Equal(t, 5.0, Formula("x - 5").Eval(10))
	assert.Equal(t, 20.0, Formula("x * 2 + 10").Eval(5))
	assert.Equal(t, 42.0, Formula("").Eval(42))

	// Error path
	assert.Equal(t, 5.0, Formula("invalid").Eval(5.0))
	assert.Equal(t, 5.0, Formula("x > 2").Eval(5.0))
}

func TestFormula_Validate(t *testing.T) {
	assert.NoError(t, Formula("").Validate())
	assert.NoError(t, Formula("x * 254 / 255").Validate())
	assert.Error(t, Formula("x * (").Validate())
}

func TestMetadata(t *testing.T) {
	ls := &LightStrategy{}
	assert.Equal(t, "Extended color light", ls.GetMetadata().Type)
	assert.Equal(t, "LCT015", ls.GetMetadata().ModelID)

	var _ Translator = ls
}
