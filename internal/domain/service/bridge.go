package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/ports"
)

type Options struct {
	Logger      *slog.Logger
	Transition  time.Duration
	TestTimeout time.Duration
}

type loadedEntry struct {
	entry  *model.Entry
	hub    *Hub
	lights []model.ModuleID
	texts  []model.ModuleID
}

// BridgeService hosts the configured hubs and their light and text entities.
type BridgeService struct {
	sdk        ports.DeviceSDK
	configRepo ports.EntryRepository
	flow       *ConfigFlow
	logger     *slog.Logger
	transition time.Duration

	mu      sync.RWMutex
	order   []string
	entries map[string]*loadedEntry
	lights  map[model.ModuleID]*LightEntity
	texts   map[model.ModuleID]*TextEntity

	subMu   sync.RWMutex
	nextSub int
	subs    map[int]func(model.EntityEvent)
}

func NewBridgeService(sdk ports.DeviceSDK, configRepo ports.EntryRepository, opts Options) *BridgeService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BridgeService{
		sdk:        sdk,
		configRepo: configRepo,
		flow:       NewConfigFlow(sdk, configRepo, logger, opts.TestTimeout),
		logger:     logger.With("component", "bridge"),
		transition: opts.Transition,
		entries:    make(map[string]*loadedEntry),
		lights:     make(map[model.ModuleID]*LightEntity),
		texts:      make(map[model.ModuleID]*TextEntity),
		subs:       make(map[int]func(model.EntityEvent)),
	}
}

// Start sets up every stored entry. Entries whose hub is unreachable stay
// registered in the not_ready state.
func (s *BridgeService) Start(ctx context.Context) error {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	for _, e := range cfg.Entries {
		if err := s.setupEntry(ctx, e); err != nil {
			s.logger.Error("entry setup failed", "entry_id", e.EntryID, "title", e.Title, "error", err)
		}
	}
	return nil
}

func (s *BridgeService) setupEntry(ctx context.Context, e *model.Entry) error {
	hub := NewHub(s.sdk, s.logger, s.transition)
	le := &loadedEntry{entry: e, hub: hub}

	s.mu.Lock()
	if _, ok := s.entries[e.EntryID]; !ok {
		s.order = append(s.order, e.EntryID)
	}
	s.entries[e.EntryID] = le
	s.mu.Unlock()

	if err := hub.Connect(ctx, e.Data.URL); err != nil {
		s.mu.Lock()
		e.State = model.EntryStateNotReady
		s.mu.Unlock()
		return err
	}

	mode := model.ParseColorMode(string(e.Data.ColorMode))
	var events []model.EntityEvent

	s.mu.Lock()
	for _, id := range hub.Leds() {
		if _, dup := s.lights[id]; dup {
			s.logger.Warn("light already provided by another entry", "id", id)
			continue
		}
		light := NewLightEntity(hub, e.EntryID, id, mode)
		light.onChange = func(v model.Light) {
			s.emit(model.EntityEvent{Kind: model.EntityKindLight, Light: &v})
		}
		s.lights[id] = light
		le.lights = append(le.lights, id)
		v := light.View()
		events = append(events, model.EntityEvent{Kind: model.EntityKindLight, Light: &v})
	}
	for _, id := range hub.Disp() {
		if _, dup := s.texts[id]; dup {
			s.logger.Warn("display already provided by another entry", "id", id)
			continue
		}
		text := NewTextEntity(hub, e.EntryID, id)
		text.onChange = func(v model.Text) {
			s.emit(model.EntityEvent{Kind: model.EntityKindText, Text: &v})
		}
		s.texts[id] = text
		le.texts = append(le.texts, id)
		v := text.View()
		events = append(events, model.EntityEvent{Kind: model.EntityKindText, Text: &v})
	}
	e.State = model.EntryStateLoaded
	s.mu.Unlock()

	s.logger.Info("entry loaded", "entry_id", e.EntryID, "title", e.Title,
		"lights", len(le.lights), "texts", len(le.texts))
	for _, ev := range events {
		s.emit(ev)
	}
	return nil
}

func (s *BridgeService) unloadEntry(entryID string) error {
	s.mu.Lock()
	le, ok := s.entries[entryID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	var events []model.EntityEvent
	for _, id := range le.lights {
		v := s.lights[id].View()
		delete(s.lights, id)
		events = append(events, model.EntityEvent{Kind: model.EntityKindLight, Removed: true, Light: &v})
	}
	for _, id := range le.texts {
		v := s.texts[id].View()
		delete(s.texts, id)
		events = append(events, model.EntityEvent{Kind: model.EntityKindText, Removed: true, Text: &v})
	}
	le.lights, le.texts = nil, nil
	le.entry.State = model.EntryStateNotLoaded
	s.mu.Unlock()

	for _, ev := range events {
		s.emit(ev)
	}
	return le.hub.Disconnect()
}

// SubmitEntry runs the config flow and, on success, stores and sets up the new entry.
func (s *BridgeService) SubmitEntry(ctx context.Context, input model.UserInput) (*model.FlowResult, error) {
	res, err := s.flow.StepUser(ctx, &input)
	if err != nil || res.Type != model.FlowResultCreateEntry {
		return res, err
	}

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Entries = append(cfg.Entries, res.Entry)
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.setupEntry(ctx, res.Entry); err != nil {
		s.logger.Error("entry setup failed", "entry_id", res.Entry.EntryID, "error", err)
	}
	return res, nil
}

func (s *BridgeService) RemoveEntry(ctx context.Context, entryID string) error {
	if err := s.unloadEntry(entryID); err != nil && !errors.Is(err, ErrEntryNotFound) {
		s.logger.Warn("entry unload failed", "entry_id", entryID, "error", err)
	}

	s.mu.Lock()
	_, known := s.entries[entryID]
	delete(s.entries, entryID)
	for i, id := range s.order {
		if id == entryID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return err
	}
	kept := cfg.Entries[:0]
	for _, e := range cfg.Entries {
		if e.EntryID == entryID {
			known = true
			continue
		}
		kept = append(kept, e)
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	cfg.Entries = kept
	return s.configRepo.Save(ctx, cfg)
}

// ReloadEntry unloads the entry and sets it up again, rediscovering modules.
func (s *BridgeService) ReloadEntry(ctx context.Context, entryID string) error {
	s.mu.RLock()
	le, ok := s.entries[entryID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	if err := s.unloadEntry(entryID); err != nil {
		s.logger.Warn("entry unload failed", "entry_id", entryID, "error", err)
	}
	return s.setupEntry(ctx, le.entry)
}

func (s *BridgeService) Entries(ctx context.Context) []*model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*model.Entry, 0, len(s.order))
	for _, id := range s.order {
		e := *s.entries[id].entry
		entries = append(entries, &e)
	}
	return entries
}

func (s *BridgeService) Diagnostics(ctx context.Context, entryID string) (*model.Diagnostics, error) {
	s.mu.RLock()
	le, ok := s.entries[entryID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	return buildDiagnostics(le.entry, le.hub), nil
}

func (s *BridgeService) Lights(ctx context.Context) []model.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lights []model.Light
	for _, entryID := range s.order {
		for _, id := range s.entries[entryID].lights {
			lights = append(lights, s.lights[id].View())
		}
	}
	return lights
}

func (s *BridgeService) Light(ctx context.Context, id model.ModuleID) (model.Light, error) {
	l, err := s.light(id)
	if err != nil {
		return model.Light{}, err
	}
	return l.View(), nil
}

func (s *BridgeService) TurnOnLight(ctx context.Context, id model.ModuleID, req model.TurnOnRequest) error {
	l, err := s.light(id)
	if err != nil {
		return err
	}
	return l.TurnOn(ctx, req)
}

func (s *BridgeService) TurnOffLight(ctx context.Context, id model.ModuleID) error {
	l, err := s.light(id)
	if err != nil {
		return err
	}
	return l.TurnOff(ctx)
}

func (s *BridgeService) light(id model.ModuleID) (*LightEntity, error) {
	s.mu.RLock()
	l, ok := s.lights[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: light %s", ErrEntityNotFound, id)
	}
	return l, nil
}

func (s *BridgeService) Texts(ctx context.Context) []model.Text {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var texts []model.Text
	for _, entryID := range s.order {
		for _, id := range s.entries[entryID].texts {
			texts = append(texts, s.texts[id].View())
		}
	}
	return texts
}

func (s *BridgeService) Text(ctx context.Context, id model.ModuleID) (model.Text, error) {
	s.mu.RLock()
	t, ok := s.texts[id]
	s.mu.RUnlock()
	if !ok {
		return model.Text{}, fmt.Errorf("%w: text %s", ErrEntityNotFound, id)
	}
	return t.View(), nil
}

func (s *BridgeService) SetText(ctx context.Context, id model.ModuleID, value string) error {
	s.mu.RLock()
	t, ok := s.texts[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: text %s", ErrEntityNotFound, id)
	}
	return t.SetValue(ctx, value)
}

func (s *BridgeService) Subscribe(fn func(model.EntityEvent)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *BridgeService) emit(ev model.EntityEvent) {
	s.subMu.RLock()
	subs := make([]func(model.EntityEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Close unloads every entry.
func (s *BridgeService) Close() error {
	s.mu.RLock()
	ids := append([]string(nil), s.order...)
	s.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if err := s.unloadEntry(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
