package ports

import "errors"

var (
	// ErrHubUnreachable is returned when a hub does not answer the probe.
	ErrHubUnreachable = errors.New("yoctopuce: hub unreachable")

	// ErrRegistrationFailed is returned when a hub rejects registration.
	ErrRegistrationFailed = errors.New("yoctopuce: hub registration failed")

	// ErrDoubleAccess is returned alongside a usable session when the hub is
	// already registered elsewhere.
	ErrDoubleAccess = errors.New("yoctopuce: hub already registered")

	ErrModuleNotFound = errors.New("yoctopuce: module not found")

	// ErrNoSession is returned by a session used after Close.
	ErrNoSession = errors.New("yoctopuce: session closed")
)
