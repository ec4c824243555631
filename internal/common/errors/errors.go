// Package errors provides standardized error handling for the request pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Routing outcomes
	ErrCodeUnrecognizedIntent ErrorCode = "UNRECOGNIZED_INTENT"
	ErrCodeMissingEntity      ErrorCode = "MISSING_ENTITY"

	// HRIS access
	ErrCodeHRISReadFailed   ErrorCode = "HRIS_READ_FAILED"
	ErrCodeHRISWriteFailed  ErrorCode = "HRIS_WRITE_FAILED"
	ErrCodeHRISTimeout      ErrorCode = "HRIS_TIMEOUT"
	ErrCodeEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeHRISFieldInvalid ErrorCode = "HRIS_FIELD_INVALID"

	// Document generation
	ErrCodeDocumentTemplateNotFound ErrorCode = "DOCUMENT_TEMPLATE_NOT_FOUND"
	ErrCodeDocumentValidationFailed ErrorCode = "DOCUMENT_VALIDATION_FAILED"
	ErrCodeDocumentRenderFailed     ErrorCode = "DOCUMENT_RENDER_FAILED"

	// Policy knowledge search
	ErrCodePolicySearchFailed  ErrorCode = "POLICY_SEARCH_FAILED"
	ErrCodePolicySearchTimeout ErrorCode = "POLICY_SEARCH_TIMEOUT"

	// Ticketing and notifications
	ErrCodeTicketUpdateFailed     ErrorCode = "TICKET_UPDATE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Process-level
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"
	ErrCodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Failure Classification
// ==========================

// FailureClass partitions errors by how the pipeline reacts to them.
// Transient failures are retried with backoff, permanent failures fail the
// request immediately, and reporting failures trigger bounded re-sends.
type FailureClass string

const (
	FailureTransient FailureClass = "TRANSIENT"
	FailurePermanent FailureClass = "PERMANENT"
	FailureReporting FailureClass = "REPORTING"
)

// Class reports which failure class this error belongs to.
func (e *StandardError) Class() FailureClass {
	switch e.Code {
	case ErrCodeTicketUpdateFailed:
		return FailureReporting
	default:
		if e.Retryable {
			return FailureTransient
		}
		return FailurePermanent
	}
}

// Classify maps any error to its failure class. Errors that carry no
// StandardError envelope are treated as permanent.
func Classify(err error) FailureClass {
	if se, ok := err.(*StandardError); ok {
		return se.Class()
	}
	return FailurePermanent
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMissingEntityError creates a non-retryable error naming every absent field.
func NewMissingEntityError(fields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingEntity,
		Message:   fmt.Sprintf("required entities absent: %s", strings.Join(fields, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingFields": fields},
		Timestamp: time.Now().UTC(),
	}
}

// NewHRISReadError creates a retryable HRIS read error.
func NewHRISReadError(field string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHRISReadFailed,
		Message:   fmt.Sprintf("HRIS read failed for field %s", field),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHRISWriteError creates a retryable HRIS write error.
func NewHRISWriteError(field string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHRISWriteFailed,
		Message:   fmt.Sprintf("HRIS write failed for field %s", field),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHRISTimeoutError creates a retryable timeout error for an HRIS operation.
func NewHRISTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHRISTimeout,
		Message:   fmt.Sprintf("HRIS %s timed out", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmployeeNotFoundError creates a non-retryable lookup error.
func NewEmployeeNotFoundError(employeeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmployeeNotFound,
		Message:   fmt.Sprintf("employee %s not found", employeeID),
		Retryable: false,
		Metadata:  map[string]interface{}{"employeeId": employeeID},
		Timestamp: time.Now().UTC(),
	}
}

// NewHRISFieldInvalidError creates a non-retryable error for a field that
// cannot be written through the self-service path.
func NewHRISFieldInvalidError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHRISFieldInvalid,
		Message:   fmt.Sprintf("HRIS field %s is not writable", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHRISValueInvalidError creates a non-retryable error for a value the
// named field cannot hold.
func NewHRISValueInvalidError(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHRISFieldInvalid,
		Message:   fmt.Sprintf("value rejected for HRIS field %s", field),
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentTemplateNotFoundError creates a non-retryable template lookup error.
func NewDocumentTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentTemplateNotFound,
		Message:   fmt.Sprintf("document template %s not found", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentValidationError creates a non-retryable schema rejection error.
func NewDocumentValidationError(templateID string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentValidationFailed,
		Message:   fmt.Sprintf("input rejected by template %s schema", templateID),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentRenderError creates a retryable render error.
func NewDocumentRenderError(templateID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentRenderFailed,
		Message:   fmt.Sprintf("rendering template %s failed", templateID),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPolicySearchError creates a retryable knowledge search error.
func NewPolicySearchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePolicySearchFailed,
		Message:   "policy knowledge search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPolicySearchTimeoutError creates a retryable knowledge search timeout.
func NewPolicySearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodePolicySearchTimeout,
		Message:   "policy knowledge search timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketUpdateError creates a reporting-class error for a failed ticket update.
func NewTicketUpdateError(ticketID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketUpdateFailed,
		Message:   fmt.Sprintf("updating ticket %s failed", ticketID),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"ticketId": ticketID},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendError creates a retryable notification delivery error.
func NewNotificationSendError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("%s notification send failed", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError creates a fatal startup configuration error.
func NewConfigurationError(detail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "invalid configuration",
		Details:   detail,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps recovered panics and unclassified faults.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "internal pipeline error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Classification Helpers
// ==========================

// IsRetryableErrorCode reports whether a stage may retry the operation
// that produced this code.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeHRISReadFailed, ErrCodeHRISWriteFailed, ErrCodeHRISTimeout,
		ErrCodeDocumentRenderFailed,
		ErrCodePolicySearchFailed, ErrCodePolicySearchTimeout,
		ErrCodeTicketUpdateFailed, ErrCodeNotificationSendFailed:
		return true
	default:
		return false
	}
}

// GetRetryCount returns the attempt budget associated with an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeHRISReadFailed, ErrCodeHRISWriteFailed, ErrCodePolicySearchFailed:
		return 3
	case ErrCodeHRISTimeout, ErrCodePolicySearchTimeout:
		return 2
	case ErrCodeTicketUpdateFailed, ErrCodeNotificationSendFailed:
		return 2
	case ErrCodeDocumentRenderFailed:
		return 1
	default:
		return 0
	}
}

// Is and As re-export the standard helpers so callers matching sentinels
// do not need a second errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	s := string(code)
	switch {
	case strings.HasPrefix(s, "HRIS_") || s == "EMPLOYEE_NOT_FOUND":
		return "hris"
	case strings.HasPrefix(s, "DOCUMENT_"):
		return "document"
	case strings.HasPrefix(s, "POLICY_"):
		return "policy"
	case strings.HasPrefix(s, "TICKET_") || strings.HasPrefix(s, "NOTIFICATION_"):
		return "reporting"
	case s == "UNRECOGNIZED_INTENT" || s == "MISSING_ENTITY":
		return "routing"
	default:
		return "internal"
	}
}
