// internal/actions/query-hris-record/handler.go
package queryhrisrecord

import (
	"context"
	"fmt"
	"strings"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/hris"
	"hrdesk-automation/internal/models"
)

const TaskType = "query-hris-record"

// RecordReader is the slice of the HRIS store this handler reads.
type RecordReader interface {
	Read(ctx context.Context, employeeID, field string) (string, error)
}

// ==========================
// Handler
// ==========================

// Handler answers "what is on file" questions about one record field.
type Handler struct {
	reader RecordReader
	masked map[string]bool
	logger logger.Logger
}

func NewHandler(reader RecordReader, config Config, log logger.Logger) *Handler {
	masked := make(map[string]bool, len(config.MaskedFields))
	for _, f := range config.MaskedFields {
		masked[f] = true
	}
	return &Handler{
		reader: reader,
		masked: masked,
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
	}
}

func (h *Handler) Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error) {
	input := inputFromEntities(entities)
	label := strings.ReplaceAll(input.Field, "_", " ")

	value, err := h.reader.Read(ctx, input.EmployeeID, input.Field)
	if err != nil {
		// An empty slot is an answer, not a failure: the requester asked
		// what is on file, and the truthful reply is nothing.
		if errors.Is(err, hris.ErrFieldNotFound) {
			return &models.ActionOutput{
				Fields: map[string]string{
					"employee_id": input.EmployeeID,
					"field":       input.Field,
					"value":       "(not on file)",
				},
				Summary: fmt.Sprintf("No %s on file for %s.", label, input.EmployeeID),
			}, nil
		}
		return nil, mapReadError(input, err)
	}

	if h.masked[input.Field] {
		value = maskValue(value)
	}

	h.logger.Info("record queried", map[string]interface{}{
		"requestId":  req.RequestID,
		"employeeId": input.EmployeeID,
		"field":      input.Field,
	})

	return &models.ActionOutput{
		Fields: map[string]string{
			"employee_id": input.EmployeeID,
			"field":       input.Field,
			"value":       value,
		},
		Summary: fmt.Sprintf("%s on file for %s: %s", label, input.EmployeeID, value),
	}, nil
}

func mapReadError(input Input, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.NewHRISTimeoutError("read")
	case errors.Is(err, hris.ErrEmployeeNotFound):
		return errors.NewEmployeeNotFoundError(input.EmployeeID)
	default:
		return errors.NewHRISReadError(input.Field, err)
	}
}

// maskValue redacts everything but the last four characters. Ticket notes
// are visible beyond the requester, so account numbers never appear whole.
func maskValue(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
