// Package errors provides standardized error handling for the gateway and its
// Zeebe job workers.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeClassificationFailed    ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeClassifierTimeout       ErrorCode = "CLASSIFIER_TIMEOUT"
	ErrCodeMalformedClassification ErrorCode = "MALFORMED_CLASSIFICATION"
	ErrCodeMalformedEntity         ErrorCode = "MALFORMED_ENTITY"
	ErrCodePreconditionViolation   ErrorCode = "PRECONDITION_VIOLATION"

	ErrCodeRelayForwardFailed   ErrorCode = "RELAY_FORWARD_FAILED"
	ErrCodeUtilityRequestFailed ErrorCode = "UTILITY_REQUEST_FAILED"
	ErrCodeRoundStartFailed     ErrorCode = "ROUND_START_FAILED"
	ErrCodeInvalidMessage       ErrorCode = "INVALID_MESSAGE"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so sentinel checks keep working.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewClassificationFailedError creates a retryable classifier error.
func NewClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeClassificationFailed, "Classifier request failed", err.Error(), true, err)
}

// NewClassifierTimeoutError creates a retryable classifier timeout error.
func NewClassifierTimeoutError(err error) *StandardError {
	return newError(ErrCodeClassifierTimeout, "Classifier request timed out", err.Error(), true, err)
}

// NewMalformedClassificationError creates a non-retryable schema error.
func NewMalformedClassificationError(details string) *StandardError {
	return newError(ErrCodeMalformedClassification, "Classification result failed validation", details, false, nil)
}

// NewMalformedEntityError reports an entity whose value could not be used.
func NewMalformedEntityError(err error) *StandardError {
	return newError(ErrCodeMalformedEntity, "Entity value is malformed", err.Error(), false, err)
}

func NewPreconditionViolationError(err error) *StandardError {
	return newError(ErrCodePreconditionViolation, "Precondition violated", err.Error(), false, err)
}

func NewInvalidMessageError(details string) *StandardError {
	return newError(ErrCodeInvalidMessage, "Invalid message", details, false, nil)
}

// NewRelayForwardFailedError reports a message that could not be delivered to target.
func NewRelayForwardFailedError(target string, err error) *StandardError {
	return newError(ErrCodeRelayForwardFailed, "Relay forward failed",
		fmt.Sprintf("target: %s, error: %s", target, err.Error()), true, err)
}

func NewUtilityRequestFailedError(path string, err error) *StandardError {
	return newError(ErrCodeUtilityRequestFailed, "Utility service request failed",
		fmt.Sprintf("path: %s, error: %s", path, err.Error()), true, err)
}

func NewRoundStartFailedError(err error) *StandardError {
	return newError(ErrCodeRoundStartFailed, "Round start failed", err.Error(), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeClassificationFailed:    "CLASSIFICATION_FAILED",
	ErrCodeClassifierTimeout:       "CLASSIFIER_TIMEOUT",
	ErrCodeMalformedClassification: "MALFORMED_CLASSIFICATION",
	ErrCodeMalformedEntity:         "MALFORMED_ENTITY",
	ErrCodePreconditionViolation:   "PRECONDITION_VIOLATION",
	ErrCodeRelayForwardFailed:      "RELAY_FORWARD_FAILED",
	ErrCodeUtilityRequestFailed:    "UTILITY_REQUEST_FAILED",
	ErrCodeRoundStartFailed:        "ROUND_START_FAILED",
	ErrCodeInvalidMessage:          "INVALID_MESSAGE",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClassificationFailed,
		ErrCodeRelayForwardFailed,
		ErrCodeUtilityRequestFailed,
		ErrCodeRoundStartFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeClassifierTimeout, ErrCodeTimeout:
		return 2

	default:
		return 0 // business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CLASSIF"):
		return "CLASSIFIER"
	case strings.Contains(codeStr, "MALFORMED") || strings.Contains(codeStr, "INVALID") ||
		strings.Contains(codeStr, "PRECONDITION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "RELAY") || strings.Contains(codeStr, "UTILITY") ||
		strings.Contains(codeStr, "ROUND"):
		return "RELAY"
	default:
		return "OTHER"
	}
}
