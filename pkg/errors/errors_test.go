// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "file not found",
			wantStr: "[NOT_FOUND] file not found",
		},
		{
			name:    "invalid_input_error",
			code:    errors.ErrInvalidInput,
			message: "instance name is required",
			wantStr: "[INVALID_INPUT] instance name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil_error_stays_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "ignored"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "ignored %d", 1))
	})

	t.Run("wrapped_error_is_reachable", func(t *testing.T) {
		base := stderrors.New("disk full")
		err := errors.Wrapf(base, errors.ErrFileWrite, "cannot write %s", "sites.toml")

		assert.Equal(t, "[FILE_WRITE] cannot write sites.toml: disk full", err.Error())
		assert.True(t, stderrors.Is(err, base))
	})
}

func TestIs(t *testing.T) {
	err := errors.New(errors.ErrStepExecute, "step failed")
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrStepExecute, "other message")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrNotFound, "step failed")))
}

func TestErrorCodeHelpers(t *testing.T) {
	inner := errors.New(errors.ErrPermission, "no full control")
	outer := errors.Wrap(inner, errors.ErrStepExecute, "step grant-permissions failed").
		WithDetail("pipeline", "install").
		WithDetails(map[string]interface{}{"step": "grant-permissions"})
	plain := fmt.Errorf("context: %w", outer)

	assert.True(t, errors.IsErrorCode(plain, errors.ErrStepExecute))
	assert.False(t, errors.IsErrorCode(plain, errors.ErrPermission))
	assert.True(t, errors.HasErrorCode(plain, errors.ErrPermission))
	assert.False(t, errors.HasErrorCode(plain, errors.ErrNotFound))

	assert.Equal(t, errors.ErrStepExecute, errors.GetErrorCode(plain))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))

	details := errors.GetErrorDetails(plain)
	require.NotNil(t, details)
	assert.Equal(t, "install", details["pipeline"])
	assert.Equal(t, "grant-permissions", details["step"])
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}
