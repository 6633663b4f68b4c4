package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/ports"
)

func validatingSession(leds []model.ModuleID, info ports.HubInfo) *MockSession {
	s := newHubSession(leds, nil)
	s.On("HubInfo", mock.Anything).Return(info, nil)
	return s
}

func TestConfigFlow_ShowForm(t *testing.T) {
	flow := NewConfigFlow(new(MockSDK), &memoryRepo{}, nil, 0)

	res, err := flow.StepUser(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.FlowResultForm, res.Type)
	assert.Equal(t, "user", res.StepID)
	assert.Empty(t, res.Errors)
}

func TestConfigFlow_Errors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(sdk *MockSDK)
		url    string
		reason string
	}{
		{
			name:   "empty url",
			setup:  func(sdk *MockSDK) {},
			url:    "  ",
			reason: ReasonInvalidURL,
		},
		{
			name: "unreachable",
			setup: func(sdk *MockSDK) {
				sdk.On("TestHub", mock.Anything, "10.0.0.9", DefaultTestTimeout).
					Return(fmt.Errorf("%w: dial timeout", ports.ErrHubUnreachable))
			},
			url:    "10.0.0.9",
			reason: ReasonCannotConnect,
		},
		{
			name: "registration rejected",
			setup: func(sdk *MockSDK) {
				sdk.On("TestHub", mock.Anything, "10.0.0.9", DefaultTestTimeout).Return(nil)
				sdk.On("RegisterHub", mock.Anything, "10.0.0.9").
					Return(nil, fmt.Errorf("%w: 401", ports.ErrRegistrationFailed))
			},
			url:    "10.0.0.9",
			reason: ReasonInvalidHub,
		},
		{
			name: "unexpected",
			setup: func(sdk *MockSDK) {
				sdk.On("TestHub", mock.Anything, "10.0.0.9", DefaultTestTimeout).Return(errors.New("boom"))
			},
			url:    "10.0.0.9",
			reason: ReasonUnknown,
		},
		{
			name: "no leds",
			setup: func(sdk *MockSDK) {
				sdk.On("TestHub", mock.Anything, "10.0.0.9", DefaultTestTimeout).Return(nil)
				sdk.On("RegisterHub", mock.Anything, "10.0.0.9").
					Return(validatingSession(nil, ports.HubInfo{SerialNumber: "VIRTHUB0-1"}), nil)
			},
			url:    "10.0.0.9",
			reason: ReasonNoLeds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sdk := new(MockSDK)
			tt.setup(sdk)
			flow := NewConfigFlow(sdk, &memoryRepo{}, nil, 0)

			res, err := flow.StepUser(context.Background(), &model.UserInput{URL: tt.url})
			require.NoError(t, err)
			assert.Equal(t, model.FlowResultForm, res.Type)
			assert.Equal(t, map[string]string{"base": tt.reason}, res.Errors)
		})
	}
}

func TestConfigFlow_CreateEntry(t *testing.T) {
	session := validatingSession([]model.ModuleID{led1}, ports.HubInfo{SerialNumber: "YHUBETH1-1", LogicalName: "hall"})
	sdk := new(MockSDK)
	sdk.On("TestHub", mock.Anything, "hub.local", DefaultTestTimeout).Return(nil)
	sdk.On("RegisterHub", mock.Anything, "hub.local").Return(session, ports.ErrDoubleAccess)

	flow := NewConfigFlow(sdk, &memoryRepo{}, nil, 0)
	res, err := flow.StepUser(context.Background(), &model.UserInput{URL: " hub.local ", ColorMode: model.ColorModeRGB})
	require.NoError(t, err)

	assert.Equal(t, model.FlowResultCreateEntry, res.Type)
	require.NotNil(t, res.Entry)
	assert.NotEmpty(t, res.Entry.EntryID)
	assert.Equal(t, "YHUBETH1-1", res.Entry.UniqueID)
	assert.Equal(t, "hall", res.Entry.Title)
	assert.Equal(t, "hub.local", res.Entry.Data.URL)
	assert.Equal(t, model.ColorModeRGB, res.Entry.Data.ColorMode)
	// the probe session never outlives the flow
	session.AssertCalled(t, "Close")
}

func TestConfigFlow_TitleFallsBackToSerial(t *testing.T) {
	session := validatingSession([]model.ModuleID{led1}, ports.HubInfo{SerialNumber: "YHUBETH1-1"})
	sdk := new(MockSDK)
	sdk.On("TestHub", mock.Anything, "usb", DefaultTestTimeout).Return(nil)
	sdk.On("RegisterHub", mock.Anything, "usb").Return(session, nil)

	res, err := NewConfigFlow(sdk, &memoryRepo{}, nil, 0).StepUser(context.Background(), &model.UserInput{URL: "usb"})
	require.NoError(t, err)
	assert.Equal(t, "YHUBETH1-1", res.Entry.Title)
	assert.Equal(t, model.ColorModeHS, res.Entry.Data.ColorMode)
}

func TestConfigFlow_AlreadyConfigured(t *testing.T) {
	session := validatingSession([]model.ModuleID{led1}, ports.HubInfo{SerialNumber: "YHUBETH1-1"})
	sdk := new(MockSDK)
	sdk.On("TestHub", mock.Anything, "hub.local", DefaultTestTimeout).Return(nil)
	sdk.On("RegisterHub", mock.Anything, "hub.local").Return(session, nil)

	repo := &memoryRepo{cfg: model.Config{Entries: []*model.Entry{{EntryID: "e1", UniqueID: "YHUBETH1-1"}}}}
	res, err := NewConfigFlow(sdk, repo, nil, 0).StepUser(context.Background(), &model.UserInput{URL: "hub.local"})
	require.NoError(t, err)

	assert.Equal(t, model.FlowResultAbort, res.Type)
	assert.Equal(t, ReasonAlreadyConfigured, res.Reason)
}
