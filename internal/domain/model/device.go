package model

// ModuleID is the hardware ID of a Yoctopuce function, e.g. "YRGBLED2-1A2B3.colorLedCluster".
type ModuleID string

type ModuleKind string

const (
	ModuleKindColorLedCluster ModuleKind = "ColorLedCluster"
	ModuleKindDisplay         ModuleKind = "Display"
)

type ColorMode string

const (
	ColorModeHS  ColorMode = "hs"
	ColorModeRGB ColorMode = "rgb"
)

// ParseColorMode defaults to HS for anything it does not recognise.
func ParseColorMode(s string) ColorMode {
	if ColorMode(s) == ColorModeRGB {
		return ColorModeRGB
	}
	return ColorModeHS
}

type HSColor struct {
	Hue        float64 `json:"h"` // [0, 360)
	Saturation float64 `json:"s"` // [0, 100]
}

type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type LightState struct {
	On         bool      `json:"on"`
	ColorMode  ColorMode `json:"color_mode"`
	HS         HSColor   `json:"hs_color"`
	RGB        RGBColor  `json:"rgb_color"`
	Brightness uint8     `json:"brightness"`
}

type TextState struct {
	Value string `json:"value"`
}

// TurnOnRequest carries the optional fields of a turn-on call. Nil fields keep
// the entity's previous value.
type TurnOnRequest struct {
	HS         *HSColor
	RGB        *RGBColor
	Brightness *uint8
}

// Light is a read-only view of a light entity.
type Light struct {
	ID      ModuleID   `json:"id"`
	EntryID string     `json:"entry_id"`
	Name    string     `json:"name"`
	State   LightState `json:"state"`
}

// Text is a read-only view of a text entity.
type Text struct {
	ID      ModuleID  `json:"id"`
	EntryID string    `json:"entry_id"`
	Name    string    `json:"name"`
	State   TextState `json:"state"`
}

type EntityKind string

const (
	EntityKindLight EntityKind = "light"
	EntityKindText  EntityKind = "text"
)

// EntityEvent is emitted whenever an entity is added, changed or removed.
type EntityEvent struct {
	Kind    EntityKind
	Removed bool
	Light   *Light
	Text    *Text
}
