package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/domain/translator"
	"yocto-led-bridge/internal/ports"
)

const (
	componentLight = "light"
	componentText  = "text"

	textMaxLength = 255
)

var ErrBadTopic = errors.New("unexpected command topic")

// Discovery exposes the bridge's entities to Home Assistant through MQTT
// discovery and routes command topics back to the bridge.
//
// Topics:
//
//	<prefix>/<component>/<node>/<object>/config   discovery, retained
//	<base>/<component>/<object>/state              state, retained
//	<base>/<component>/<object>/set                commands
type Discovery struct {
	broker Broker
	bridge ports.BridgePort
	logger *slog.Logger

	prefix string
	base   string
	node   string

	mu        sync.Mutex
	objects   map[string]model.ModuleID
	announced map[model.ModuleID]bool

	unsubscribe func()
}

func NewDiscovery(broker Broker, bridge ports.BridgePort, prefix, base string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		broker:    broker,
		bridge:    bridge,
		logger:    logger.With("component", "mqtt_discovery"),
		prefix:    prefix,
		base:      base,
		node:      ObjectID(base),
		objects:   make(map[string]model.ModuleID),
		announced: make(map[model.ModuleID]bool),
	}
}

// Start subscribes to command topics, announces every current entity and
// follows entity events until Stop.
func (d *Discovery) Start(ctx context.Context) error {
	if err := d.broker.Subscribe(d.base+"/+/+/set", d.handleCommand); err != nil {
		return fmt.Errorf("subscribe commands: %w", err)
	}
	d.unsubscribe = d.bridge.Subscribe(d.HandleEvent)

	for _, l := range d.bridge.Lights(ctx) {
		d.HandleEvent(model.EntityEvent{Kind: model.EntityKindLight, Light: &l})
	}
	for _, t := range d.bridge.Texts(ctx) {
		d.HandleEvent(model.EntityEvent{Kind: model.EntityKindText, Text: &t})
	}
	return nil
}

func (d *Discovery) Stop() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
}

// ObjectID turns a hardware ID into something usable in a topic and as a
// Home Assistant object id.
func ObjectID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (d *Discovery) configTopic(component, object string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", d.prefix, component, d.node, object)
}

func (d *Discovery) stateTopic(component, object string) string {
	return fmt.Sprintf("%s/%s/%s/state", d.base, component, object)
}

func (d *Discovery) commandTopic(component, object string) string {
	return fmt.Sprintf("%s/%s/%s/set", d.base, component, object)
}

// HandleEvent publishes discovery and state for added or changed entities
// and clears the discovery config of removed ones.
func (d *Discovery) HandleEvent(ev model.EntityEvent) {
	var err error
	switch {
	case ev.Kind == model.EntityKindLight && ev.Light != nil:
		err = d.publishEntity(componentLight, ev.Light.ID, ev.Removed, func(object string) (interface{}, []byte, error) {
			state, err := json.Marshal(lightStatePayload(ev.Light.State))
			return d.lightConfig(*ev.Light, object), state, err
		})
	case ev.Kind == model.EntityKindText && ev.Text != nil:
		err = d.publishEntity(componentText, ev.Text.ID, ev.Removed, func(object string) (interface{}, []byte, error) {
			return d.textConfig(*ev.Text, object), []byte(ev.Text.State.Value), nil
		})
	}
	if err != nil {
		d.logger.Warn("mqtt publish failed", "error", err)
	}
}

func (d *Discovery) publishEntity(component string, id model.ModuleID, removed bool,
	build func(object string) (interface{}, []byte, error)) error {
	object := ObjectID(string(id))

	if removed {
		d.mu.Lock()
		delete(d.objects, component+"/"+object)
		delete(d.announced, id)
		d.mu.Unlock()
		return d.broker.Publish(d.configTopic(component, object), []byte{}, true)
	}

	cfg, state, err := build(object)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.objects[component+"/"+object] = id
	fresh := !d.announced[id]
	d.announced[id] = true
	d.mu.Unlock()

	if fresh {
		payload, err := json.Marshal(cfg)
		if err != nil {
			return err
		}
		if err := d.broker.Publish(d.configTopic(component, object), payload, true); err != nil {
			return err
		}
		d.logger.Info("entity announced", "component", component, "id", id)
	}
	return d.broker.Publish(d.stateTopic(component, object), state, true)
}

type deviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
}

type lightConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	ObjectID            string     `json:"object_id"`
	Schema              string     `json:"schema"`
	CommandTopic        string     `json:"command_topic"`
	StateTopic          string     `json:"state_topic"`
	AvailabilityTopic   string     `json:"availability_topic"`
	Brightness          bool       `json:"brightness"`
	SupportedColorModes []string   `json:"supported_color_modes"`
	Device              deviceInfo `json:"device"`
}

type textConfig struct {
	Name              string     `json:"name"`
	UniqueID          string     `json:"unique_id"`
	ObjectID          string     `json:"object_id"`
	CommandTopic      string     `json:"command_topic"`
	StateTopic        string     `json:"state_topic"`
	AvailabilityTopic string     `json:"availability_topic"`
	Max               int        `json:"max"`
	Device            deviceInfo `json:"device"`
}

func (d *Discovery) device(entryID string) deviceInfo {
	name := entryID
	for _, e := range d.bridge.Entries(context.Background()) {
		if e.EntryID == entryID {
			name = e.Title
			break
		}
	}
	return deviceInfo{Identifiers: []string{entryID}, Name: name, Manufacturer: "Yoctopuce"}
}

func (d *Discovery) lightConfig(l model.Light, object string) lightConfig {
	return lightConfig{
		Name:                l.Name,
		UniqueID:            object,
		ObjectID:            object,
		Schema:              "json",
		CommandTopic:        d.commandTopic(componentLight, object),
		StateTopic:          d.stateTopic(componentLight, object),
		AvailabilityTopic:   AvailabilityTopic(d.base),
		Brightness:          true,
		SupportedColorModes: []string{string(l.State.ColorMode)},
		Device:              d.device(l.EntryID),
	}
}

func (d *Discovery) textConfig(t model.Text, object string) textConfig {
	return textConfig{
		Name:              t.Name,
		UniqueID:          object,
		ObjectID:          object,
		CommandTopic:      d.commandTopic(componentText, object),
		StateTopic:        d.stateTopic(componentText, object),
		AvailabilityTopic: AvailabilityTopic(d.base),
		Max:               textMaxLength,
		Device:            d.device(t.EntryID),
	}
}

type colorPayload struct {
	H *float64 `json:"h,omitempty"`
	S *float64 `json:"s,omitempty"`
	R *uint8   `json:"r,omitempty"`
	G *uint8   `json:"g,omitempty"`
	B *uint8   `json:"b,omitempty"`
}

type lightPayload struct {
	State      string        `json:"state"`
	Brightness *int          `json:"brightness,omitempty"`
	ColorMode  string        `json:"color_mode,omitempty"`
	Color      *colorPayload `json:"color,omitempty"`
}

func lightStatePayload(s model.LightState) lightPayload {
	p := lightPayload{State: "OFF", ColorMode: string(s.ColorMode)}
	if s.On {
		p.State = "ON"
	}
	bri := int(s.Brightness)
	p.Brightness = &bri
	if s.ColorMode == model.ColorModeRGB {
		r, g, b := s.RGB.R, s.RGB.G, s.RGB.B
		p.Color = &colorPayload{R: &r, G: &g, B: &b}
	} else {
		h, sat := s.HS.Hue, s.HS.Saturation
		p.Color = &colorPayload{H: &h, S: &sat}
	}
	return p
}

func (d *Discovery) handleCommand(topic string, payload []byte) error {
	rest, ok := strings.CutPrefix(topic, d.base+"/")
	parts := strings.Split(rest, "/")
	if !ok || len(parts) != 3 || parts[2] != "set" {
		return fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
	component, object := parts[0], parts[1]

	d.mu.Lock()
	id, known := d.objects[component+"/"+object]
	d.mu.Unlock()
	if !known {
		return fmt.Errorf("%w: unknown entity %s", ErrBadTopic, topic)
	}

	ctx := context.Background()
	switch component {
	case componentLight:
		return d.handleLightCommand(ctx, id, payload)
	case componentText:
		return d.bridge.SetText(ctx, id, string(payload))
	default:
		return fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
}

func (d *Discovery) handleLightCommand(ctx context.Context, id model.ModuleID, payload []byte) error {
	var cmd lightPayload
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decode light command: %w", err)
	}
	if strings.EqualFold(cmd.State, "OFF") {
		return d.bridge.TurnOffLight(ctx, id)
	}

	var req model.TurnOnRequest
	if cmd.Brightness != nil {
		b := uint8(max(0, min(255, *cmd.Brightness)))
		req.Brightness = &b
	}
	if c := cmd.Color; c != nil {
		if c.H != nil || c.S != nil {
			current, err := d.bridge.Light(ctx, id)
			if err != nil {
				return err
			}
			hs := current.State.HS
			if c.H != nil {
				hs.Hue = *c.H
			}
			if c.S != nil {
				hs.Saturation = *c.S
			}
			hs = translator.ClampHS(hs)
			req.HS = &hs
		}
		if c.R != nil && c.G != nil && c.B != nil {
			req.RGB = &model.RGBColor{R: *c.R, G: *c.G, B: *c.B}
		}
	}
	return d.bridge.TurnOnLight(ctx, id, req)
}
