package domain

import "errors"

var (
	// ErrServiceNotFound is returned when no registered service has the requested name
	ErrServiceNotFound = errors.New("service not found")

	// ErrBackendUnavailable is returned when the registry backend cannot be reached
	ErrBackendUnavailable = errors.New("registry backend unavailable")

	// ErrMetricsUnavailable is returned when service metrics cannot be produced
	ErrMetricsUnavailable = errors.New("metrics unavailable")

	// ErrIntentionsUnsupported is returned by registries without mesh authorization data
	ErrIntentionsUnsupported = errors.New("intentions not supported by registry")

	// ErrUnknownBackend is returned for unrecognised registry backend names
	ErrUnknownBackend = errors.New("unknown registry backend")
)
