package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"classifier failure retries", NewClassificationFailedError(cause), "CLASSIFICATION_FAILED", 3},
		{"classifier timeout retries less", NewClassifierTimeoutError(cause), "CLASSIFIER_TIMEOUT", 2},
		{"malformed result does not retry", NewMalformedClassificationError("intents missing"), "MALFORMED_CLASSIFICATION", 0},
		{"precondition does not retry", NewPreconditionViolationError(cause), "PRECONDITION_VIOLATION", 0},
		{"relay forward retries", NewRelayForwardFailedError("agents", cause), "RELAY_FORWARD_FAILED", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_UnknownCodeFallsBack(t *testing.T) {
	bpmn := ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Retryable: true})
	assert.Equal(t, "SOMETHING_ELSE", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
}

func TestNormalize(t *testing.T) {
	sentinel := stderrors.New("upstream 503")
	wrapped := fmt.Errorf("classify: %w", NewClassificationFailedError(sentinel))

	std := Normalize(wrapped)
	assert.Equal(t, ErrCodeClassificationFailed, std.Code)
	assert.ErrorIs(t, std, sentinel)

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
	assert.Equal(t, "boom", plain.Details)
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, 2, RemainingRetries(3, 3))
	assert.Equal(t, 2, RemainingRetries(5, 2))
	assert.Equal(t, 0, RemainingRetries(1, 3))
	assert.Equal(t, 0, RemainingRetries(0, 3))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CLASSIFIER", GetErrorCategory(ErrCodeClassifierTimeout))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMalformedEntity))
	assert.Equal(t, "RELAY", GetErrorCategory(ErrCodeUtilityRequestFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	require.True(t, IsRetryableErrorCode(ErrCodeRoundStartFailed))
}
