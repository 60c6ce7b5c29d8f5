package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrServiceNotFound, ErrServiceNotFound))
	assert.True(t, errors.Is(ErrBackendUnavailable, ErrBackendUnavailable))
	assert.True(t, errors.Is(ErrMetricsUnavailable, ErrMetricsUnavailable))
	assert.True(t, errors.Is(ErrIntentionsUnsupported, ErrIntentionsUnsupported))
	assert.True(t, errors.Is(ErrUnknownBackend, ErrUnknownBackend))

	// Ensure errors are distinct
	assert.False(t, errors.Is(ErrServiceNotFound, ErrMetricsUnavailable))
	assert.False(t, errors.Is(ErrBackendUnavailable, ErrIntentionsUnsupported))
}

func TestWrappedErrors(t *testing.T) {
	err := fmt.Errorf("analyze %q: %w", "checkout", ErrServiceNotFound)
	assert.True(t, errors.Is(err, ErrServiceNotFound))
	assert.Equal(t, `analyze "checkout": service not found`, err.Error())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "service not found", ErrServiceNotFound.Error())
	assert.Equal(t, "registry backend unavailable", ErrBackendUnavailable.Error())
	assert.Equal(t, "metrics unavailable", ErrMetricsUnavailable.Error())
}
