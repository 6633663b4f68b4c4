package service

import "errors"

var (
	// ErrEntryNotReady is returned by Hub.Connect and SetupEntry when the hub
	// cannot be registered. The entry stays configured but has no entities.
	ErrEntryNotReady = errors.New("entry not ready")

	ErrEntryNotFound     = errors.New("entry not found")
	ErrEntityNotFound    = errors.New("entity not found")
	ErrAlreadyConfigured = errors.New("hub already configured")
)
