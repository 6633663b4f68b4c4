package yoctopuce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/ports"
)

// ESC terminates string arguments in display layer commands.
const esc = "\x1b"

// maxTextLength is the longest string a display text command accepts.
const maxTextLength = 255

type session struct {
	client *Client
	ep     endpoint

	mu     sync.RWMutex
	closed bool
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.release(s.ep)
	return nil
}

func (s *session) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ports.ErrNoSession
	}
	return s.client.getJSON(ctx, s.ep, path, query, out)
}

func (s *session) HubInfo(ctx context.Context) (ports.HubInfo, error) {
	var root apiRoot
	if err := s.get(ctx, "/api.json", nil, &root); err != nil {
		return ports.HubInfo{}, err
	}
	return ports.HubInfo{
		SerialNumber: root.Module.SerialNumber,
		LogicalName:  root.Module.LogicalName,
	}, nil
}

// Enumerate lists the hardware IDs of kind in hub order.
func (s *session) Enumerate(ctx context.Context, kind model.ModuleKind) ([]model.ModuleID, error) {
	var root apiRoot
	if err := s.get(ctx, "/api.json", nil, &root); err != nil {
		return nil, err
	}
	pages := root.Services.YellowPages[string(kind)]
	ids := make([]model.ModuleID, 0, len(pages))
	for _, p := range pages {
		if p.HardwareID == "" {
			continue
		}
		ids = append(ids, model.ModuleID(p.HardwareID))
	}
	return ids, nil
}

func (s *session) IsOnline(ctx context.Context, id model.ModuleID) (bool, error) {
	serial, _, err := splitID(id)
	if err != nil {
		return false, err
	}
	err = s.get(ctx, "/bySerial/"+url.PathEscape(serial)+"/api/module.json", nil, nil)
	var se *statusError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &se) && se.code == http.StatusNotFound:
		return false, nil
	default:
		return false, err
	}
}

func functionPath(id model.ModuleID) (string, error) {
	serial, function, err := splitID(id)
	if err != nil {
		return "", err
	}
	return "/bySerial/" + url.PathEscape(serial) + "/api/" + url.PathEscape(function) + ".json", nil
}

func (s *session) attributes(ctx context.Context, id model.ModuleID, out interface{}) error {
	path, err := functionPath(id)
	if err != nil {
		return err
	}
	return s.get(ctx, path, nil, out)
}

func (s *session) sendCommand(ctx context.Context, id model.ModuleID, command string) error {
	path, err := functionPath(id)
	if err != nil {
		return err
	}
	return s.get(ctx, path, url.Values{"command": {command}}, nil)
}

func (s *session) ActiveLedCount(ctx context.Context, id model.ModuleID) (int, error) {
	var attrs struct {
		ActiveLedCount int `json:"activeLedCount"`
	}
	if err := s.attributes(ctx, id, &attrs); err != nil {
		return 0, err
	}
	return attrs.ActiveLedCount, nil
}

func (s *session) RGBMove(ctx context.Context, id model.ModuleID, start, count int, color uint32, duration time.Duration) error {
	return s.sendCommand(ctx, id, moveCommand("M", start, count, color, duration))
}

func (s *session) HSLMove(ctx context.Context, id model.ModuleID, start, count int, color uint32, duration time.Duration) error {
	return s.sendCommand(ctx, id, moveCommand("m", start, count, color, duration))
}

func moveCommand(op string, start, count int, color uint32, duration time.Duration) string {
	return fmt.Sprintf("%s%d,%d,%x,%d", op, start, count, color, duration.Milliseconds())
}

func (s *session) DisplaySize(ctx context.Context, id model.ModuleID) (int, int, error) {
	var attrs struct {
		DisplayWidth  int `json:"displayWidth"`
		DisplayHeight int `json:"displayHeight"`
	}
	if err := s.attributes(ctx, id, &attrs); err != nil {
		return 0, 0, err
	}
	return attrs.DisplayWidth, attrs.DisplayHeight, nil
}

func (s *session) ResetAll(ctx context.Context, id model.ModuleID) error {
	return s.sendCommand(ctx, id, "Z")
}

func (s *session) SwapLayerContent(ctx context.Context, id model.ModuleID, layerA, layerB int) error {
	return s.sendCommand(ctx, id, fmt.Sprintf("E%d,%d", layerA, layerB))
}

func (s *session) Layer(id model.ModuleID, layer int) ports.DisplayLayer {
	return &displayLayer{session: s, id: id, prefix: strconv.Itoa(layer)}
}

// displayLayer sends each drawing command right away, prefixed with the layer number.
type displayLayer struct {
	session *session
	id      model.ModuleID
	prefix  string
}

func (l *displayLayer) send(ctx context.Context, cmd string) error {
	return l.session.sendCommand(ctx, l.id, l.prefix+cmd)
}

func (l *displayLayer) Clear(ctx context.Context) error {
	return l.send(ctx, "X")
}

func (l *displayLayer) Hide(ctx context.Context) error {
	return l.send(ctx, "h")
}

func (l *displayLayer) SelectFont(ctx context.Context, font string) error {
	return l.send(ctx, "&"+font+esc)
}

func (l *displayLayer) DrawText(ctx context.Context, x, y int, anchor ports.Align, text string) error {
	return l.send(ctx, fmt.Sprintf("T%d,%d,%d,%s%s", x, y, int(anchor), displayText(text), esc))
}

// displayText drops control characters, esc included since it terminates the
// command, and cuts the result to maxTextLength runes.
func displayText(text string) string {
	var b strings.Builder
	n := 0
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		if n == maxTextLength {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
