package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/ports"
)

type MockSDK struct {
	mock.Mock
}

func (m *MockSDK) APIVersion() string { return "test" }

func (m *MockSDK) TestHub(ctx context.Context, url string, timeout time.Duration) error {
	return m.Called(ctx, url, timeout).Error(0)
}

func (m *MockSDK) RegisterHub(ctx context.Context, url string) (ports.Session, error) {
	args := m.Called(ctx, url)
	s, _ := args.Get(0).(ports.Session)
	return s, args.Error(1)
}

type MockSession struct {
	mock.Mock
}

func (m *MockSession) HubInfo(ctx context.Context) (ports.HubInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(ports.HubInfo), args.Error(1)
}

func (m *MockSession) Enumerate(ctx context.Context, kind model.ModuleKind) ([]model.ModuleID, error) {
	args := m.Called(ctx, kind)
	ids, _ := args.Get(0).([]model.ModuleID)
	return ids, args.Error(1)
}

func (m *MockSession) IsOnline(ctx context.Context, id model.ModuleID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSession) ActiveLedCount(ctx context.Context, id model.ModuleID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockSession) RGBMove(ctx context.Context, id model.ModuleID, start, count int, color uint32, duration time.Duration) error {
	return m.Called(ctx, id, start, count, color, duration).Error(0)
}

func (m *MockSession) HSLMove(ctx context.Context, id model.ModuleID, start, count int, color uint32, duration time.Duration) error {
	return m.Called(ctx, id, start, count, color, duration).Error(0)
}

func (m *MockSession) DisplaySize(ctx context.Context, id model.ModuleID) (int, int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockSession) ResetAll(ctx context.Context, id model.ModuleID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSession) Layer(id model.ModuleID, layer int) ports.DisplayLayer {
	return m.Called(id, layer).Get(0).(ports.DisplayLayer)
}

func (m *MockSession) SwapLayerContent(ctx context.Context, id model.ModuleID, layerA, layerB int) error {
	return m.Called(ctx, id, layerA, layerB).Error(0)
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}

type MockLayer struct {
	mock.Mock
}

func (m *MockLayer) Clear(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockLayer) Hide(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockLayer) SelectFont(ctx context.Context, font string) error {
	return m.Called(ctx, font).Error(0)
}

func (m *MockLayer) DrawText(ctx context.Context, x, y int, anchor ports.Align, text string) error {
	return m.Called(ctx, x, y, anchor, text).Error(0)
}

// newHubSession returns a session exposing leds and disp that accepts Close
// and ResetAll.
func newHubSession(leds, disp []model.ModuleID) *MockSession {
	s := new(MockSession)
	s.On("Enumerate", mock.Anything, model.ModuleKindColorLedCluster).Return(leds, nil)
	s.On("Enumerate", mock.Anything, model.ModuleKindDisplay).Return(disp, nil)
	s.On("ResetAll", mock.Anything, mock.Anything).Return(nil)
	s.On("Close").Return(nil)
	return s
}

type memoryRepo struct {
	mu  sync.Mutex
	cfg model.Config
}

func (r *memoryRepo) Get(ctx context.Context) (*model.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]*model.Entry, 0, len(r.cfg.Entries))
	for _, e := range r.cfg.Entries {
		c := *e
		entries = append(entries, &c)
	}
	return &model.Config{Entries: entries}, nil
}

func (r *memoryRepo) Save(ctx context.Context, cfg *model.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Entries = cfg.Entries
	return nil
}

// colorRecorder is a ColorSetter and TextSetter that records calls.
type colorRecorder struct {
	err   error
	calls []string
	color uint32
}

func (c *colorRecorder) SetColor(ctx context.Context, id model.ModuleID, rgb uint32) error {
	c.calls = append(c.calls, "rgb")
	c.color = rgb
	return c.err
}

func (c *colorRecorder) SetHSLColor(ctx context.Context, id model.ModuleID, hsl uint32) error {
	c.calls = append(c.calls, "hsl")
	c.color = hsl
	return c.err
}

func (c *colorRecorder) SetText(ctx context.Context, id model.ModuleID, text string) error {
	c.calls = append(c.calls, "text:"+text)
	return c.err
}
