// internal/common/errors/handler.go
package errors

import (
	"fmt"
	"time"
)

// ErrorHandler normalizes and records stage failures for the pipeline.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision is what a stage does with a failure after normalization.
type Decision struct {
	Err       *StandardError
	Class     FailureClass
	Retryable bool
}

// HandleStageError normalizes any error raised inside a pipeline stage,
// logs it with full request context, and returns the retry decision.
func (h *ErrorHandler) HandleStageError(requestID, stage string, err error) Decision {
	stdErr := h.normalizeError(err)
	class := stdErr.Class()

	h.logError(requestID, stage, stdErr, class)

	return Decision{
		Err:       stdErr,
		Class:     class,
		Retryable: class == FailureTransient,
	}
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) logError(requestID, stage string, stdErr *StandardError, class FailureClass) {
	h.logger.Error("stage failed", map[string]interface{}{
		"requestId":     requestID,
		"stage":         stage,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"failureClass":  string(class),
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}

// Recovered converts a recovered panic value into a permanent StandardError.
func Recovered(v interface{}) *StandardError {
	return NewInternalError(fmt.Errorf("recovered panic: %v", v))
}
