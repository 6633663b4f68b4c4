package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/ports"
)

const DefaultTestTimeout = 5000 * time.Millisecond

// Form error reasons.
const (
	ReasonInvalidURL        = "invalid_url"
	ReasonCannotConnect     = "cannot_connect"
	ReasonInvalidHub        = "invalid_hub"
	ReasonNoLeds            = "no_leds"
	ReasonAlreadyConfigured = "already_configured"
	ReasonUnknown           = "unknown"
)

const stepUser = "user"

// ConfigFlow validates a hub URL before an entry is created.
type ConfigFlow struct {
	sdk         ports.DeviceSDK
	repo        ports.EntryRepository
	logger      *slog.Logger
	testTimeout time.Duration
}

func NewConfigFlow(sdk ports.DeviceSDK, repo ports.EntryRepository, logger *slog.Logger, testTimeout time.Duration) *ConfigFlow {
	if testTimeout <= 0 {
		testTimeout = DefaultTestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigFlow{
		sdk:         sdk,
		repo:        repo,
		logger:      logger.With("component", "config_flow"),
		testTimeout: testTimeout,
	}
}

type hubValidation struct {
	leds []model.ModuleID
	hub  ports.HubInfo
}

// validate probes, registers and lists the hub. The probe session is always closed.
func (f *ConfigFlow) validate(ctx context.Context, url string) (*hubValidation, error) {
	f.logger.Info("using yoctopuce library", "version", f.sdk.APIVersion())
	f.logger.Debug("register hub", "url", url)

	if err := f.sdk.TestHub(ctx, url, f.testTimeout); err != nil {
		return nil, err
	}
	session, err := f.sdk.RegisterHub(ctx, url)
	if err != nil && !(errors.Is(err, ports.ErrDoubleAccess) && session != nil) {
		if session != nil {
			_ = session.Close()
		}
		return nil, err
	}
	defer session.Close()

	leds, err := session.Enumerate(ctx, model.ModuleKindColorLedCluster)
	if err != nil {
		return nil, fmt.Errorf("list color led clusters: %w", err)
	}
	for _, id := range leds {
		f.logger.Debug("found color led cluster", "id", id)
	}
	info, err := session.HubInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("hub info: %w", err)
	}
	return &hubValidation{leds: leds, hub: info}, nil
}

// StepUser handles the single user step. A nil input shows the empty form.
func (f *ConfigFlow) StepUser(ctx context.Context, input *model.UserInput) (*model.FlowResult, error) {
	if input == nil {
		return showForm(nil), nil
	}
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return showForm(map[string]string{"base": ReasonInvalidURL}), nil
	}

	res, err := f.validate(ctx, url)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrHubUnreachable):
		f.logger.Warn("hub unreachable", "url", url, "error", err)
		return showForm(map[string]string{"base": ReasonCannotConnect}), nil
	case errors.Is(err, ports.ErrRegistrationFailed):
		f.logger.Warn("hub registration rejected", "url", url, "error", err)
		return showForm(map[string]string{"base": ReasonInvalidHub}), nil
	default:
		f.logger.Error("unexpected exception", "url", url, "error", err)
		return showForm(map[string]string{"base": ReasonUnknown}), nil
	}

	if len(res.leds) == 0 {
		return showForm(map[string]string{"base": ReasonNoLeds}), nil
	}

	cfg, err := f.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range cfg.Entries {
		if e.UniqueID == res.hub.SerialNumber {
			return &model.FlowResult{Type: model.FlowResultAbort, Reason: ReasonAlreadyConfigured}, nil
		}
	}

	title := res.hub.LogicalName
	if title == "" {
		title = res.hub.SerialNumber
	}
	return &model.FlowResult{
		Type: model.FlowResultCreateEntry,
		Entry: &model.Entry{
			EntryID:  uuid.NewString(),
			UniqueID: res.hub.SerialNumber,
			Title:    title,
			Data: model.EntryData{
				URL:       url,
				ColorMode: model.ParseColorMode(string(input.ColorMode)),
			},
			State: model.EntryStateNotLoaded,
		},
	}, nil
}

func showForm(errs map[string]string) *model.FlowResult {
	if errs == nil {
		errs = map[string]string{}
	}
	return &model.FlowResult{Type: model.FlowResultForm, StepID: stepUser, Errors: errs}
}
