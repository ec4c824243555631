// internal/actions/update-hris-record/handler.go
package updatehrisrecord

import (
	"context"
	"fmt"
	"strings"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/common/validation"
	"hrdesk-automation/internal/hris"
	"hrdesk-automation/internal/models"
)

const TaskType = "update-hris-record"

// RecordWriter is the slice of the HRIS store this handler writes through.
// The idempotency key makes reapplied writes no-ops at the store layer.
type RecordWriter interface {
	Write(ctx context.Context, employeeID, field, value, idempotencyKey string) error
}

// ==========================
// Handler
// ==========================

// Handler applies one employee record update. The request ID is the
// idempotency key, so a retried attempt after a timed-out write cannot
// apply the change twice.
type Handler struct {
	writer RecordWriter
	logger logger.Logger
}

func NewHandler(writer RecordWriter, log logger.Logger) *Handler {
	return &Handler{
		writer: writer,
		logger: log.WithFields(map[string]interface{}{"handler": TaskType}),
	}
}

func (h *Handler) TaskType() string {
	return TaskType
}

func (h *Handler) RequiredEntities() []models.EntityType {
	return []models.EntityType{
		models.EntityEmployeeID,
		models.EntityHRISField,
		models.EntityNewValue,
	}
}

func (h *Handler) Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error) {
	input := inputFromEntities(entities)

	if err := validation.FieldValue(input.Field, input.NewValue); err != nil {
		return nil, errors.NewHRISValueInvalidError(input.Field, err.Error())
	}

	if err := h.writer.Write(ctx, input.EmployeeID, input.Field, input.NewValue, req.RequestID); err != nil {
		return nil, mapWriteError(input, err)
	}

	h.logger.Info("record updated", map[string]interface{}{
		"requestId":  req.RequestID,
		"employeeId": input.EmployeeID,
		"field":      input.Field,
	})

	// The new value never echoes into the ticket: record values can be
	// bank details or home addresses, and ticket notes are widely visible.
	return &models.ActionOutput{
		Fields: map[string]string{
			"employee_id": input.EmployeeID,
			"field":       input.Field,
		},
		Summary: fmt.Sprintf("Updated %s for %s.",
			strings.ReplaceAll(input.Field, "_", " "), input.EmployeeID),
	}, nil
}

// mapWriteError translates store failures into the pipeline taxonomy.
// Timeouts stay retryable; the idempotent store makes the retry safe.
func mapWriteError(input Input, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.NewHRISTimeoutError("write")
	case errors.Is(err, hris.ErrEmployeeNotFound):
		return errors.NewEmployeeNotFoundError(input.EmployeeID)
	case errors.Is(err, hris.ErrFieldNotWritable):
		return errors.NewHRISFieldInvalidError(input.Field)
	default:
		return errors.NewHRISWriteError(input.Field, err)
	}
}
