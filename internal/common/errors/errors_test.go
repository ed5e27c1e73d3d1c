package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Error(t *testing.T) {
	err := NewRemoteWriteError("parse", stderrors.New("401 unauthorized"))
	assert.Equal(t, "REMOTE_WRITE_FAILED: batch save to parse failed: 401 unauthorized", err.Error())
	assert.True(t, err.Retryable)

	bare := &StandardError{Code: ErrCodeInternal, Message: "boom"}
	assert.Equal(t, "INTERNAL_ERROR: boom", bare.Error())
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("run: %w", NewUpstreamRequestError("randomuser", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, ErrCodeUpstreamRequestFailed))
	assert.False(t, IsCode(err, ErrCodeRemoteWriteFailed))
	assert.Equal(t, ErrCodeUpstreamRequestFailed, CodeOf(err))
}

func TestInvalidArgumentError(t *testing.T) {
	err := NewInvalidArgumentError("count", `"abc" is not an integer`)
	assert.Equal(t, ErrCodeInvalidArgument, err.Code)
	assert.Equal(t, "count", err.Metadata["argument"])
	assert.False(t, err.Retryable)
	assert.Nil(t, err.Unwrap())
	assert.Contains(t, err.Error(), "invalid count argument")
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	foreign := Normalize(stderrors.New("disk full"))
	require.NotNil(t, foreign)
	assert.Equal(t, ErrCodeInternal, foreign.Code)
	assert.Equal(t, "disk full", foreign.Details)

	own := NewConfigInvalidError(stderrors.New("bad yaml"))
	assert.Same(t, own, Normalize(own))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestWithMetadata(t *testing.T) {
	err := NewStoreNotConfiguredError("redis", stderrors.New("dial tcp")).WithMetadata("address", "localhost:6379")
	assert.Equal(t, "localhost:6379", err.Metadata["address"])
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeUpstreamRequestFailed:   "FETCH",
		ErrCodeUpstreamResponseInvalid: "FETCH",
		ErrCodeRemoteWriteFailed:       "PERSIST",
		ErrCodeStoreNotConfigured:      "PERSIST",
		ErrCodeInvalidArgument:         "VALIDATION",
		ErrCodeConfigInvalid:           "VALIDATION",
		ErrCodeInternal:                "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}
