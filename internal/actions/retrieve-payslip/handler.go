// internal/actions/retrieve-payslip/handler.go
package retrievepayslip

import (
	"context"
	"fmt"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/docgen"
	"hrdesk-automation/internal/hris"
	"hrdesk-automation/internal/models"
)

const TaskType = "retrieve-payslip"

// PayslipSource is the slice of the HRIS store this handler reads.
type PayslipSource interface {
	Profile(ctx context.Context, employeeID string) (hris.Profile, error)
	Payslip(ctx context.Context, employeeID, payPeriod string) (hris.PayslipRow, error)
}

// DocumentGenerator renders the salary statement.
type DocumentGenerator interface {
	Generate(ctx context.Context, templateID string, fields map[string]string) (*docgen.Rendered, error)
}

// DocumentMailer delivers the rendered statement to the employee.
type DocumentMailer interface {
	SendDocument(ctx context.Context, to, subject, body string) error
}

// ==========================
// Handler
// ==========================

// Handler retrieves a salary statement for one pay period, renders it as
// a document and emails it to the employee.
type Handler struct {
	source    PayslipSource
	generator DocumentGenerator
	mailer    DocumentMailer
	config    Config
	logger    logger.Logger
}

func NewHandler(source PayslipSource, generator DocumentGenerator, mailer DocumentMailer, config Config, log logger.Logger) *Handler {
	if config.TemplateID == "" {
		config.TemplateID = DefaultConfig().TemplateID
	}
	return &Handler{
		source:    source,
		generator: generator,
		mailer:    mailer,
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"handler": TaskType}),
	}
}

func (h *Handler) TaskType() string {
	return TaskType
}

func (h *Handler) RequiredEntities() []models.EntityType {
	return []models.EntityType{
		models.EntityEmployeeID,
		models.EntityPayPeriod,
	}
}

func (h *Handler) Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error) {
	input := inputFromEntities(entities)

	profile, err := h.source.Profile(ctx, input.EmployeeID)
	if err != nil {
		return nil, mapStoreError("profile", input, err)
	}

	row, err := h.source.Payslip(ctx, input.EmployeeID, input.PayPeriod)
	if err != nil {
		return nil, mapStoreError("payslip", input, err)
	}

	fields := map[string]string{
		"employee_name": profile.FullName,
		"employee_id":   row.EmployeeID,
		"pay_period":    row.PayPeriod,
		"gross_pay":     row.GrossPay,
		"net_pay":       row.NetPay,
		"currency":      row.Currency,
		"paid_on":       row.PaidOn,
	}

	rendered, err := h.generator.Generate(ctx, h.config.TemplateID, fields)
	if err != nil {
		return nil, mapGenerateError(h.config.TemplateID, err)
	}

	if err := h.mailer.SendDocument(ctx, profile.Email, rendered.Subject, rendered.Body); err != nil {
		return nil, err
	}

	h.logger.Info("payslip delivered", map[string]interface{}{
		"requestId":  req.RequestID,
		"employeeId": row.EmployeeID,
		"payPeriod":  row.PayPeriod,
		"documentId": rendered.Ref.ID,
	})

	return &models.ActionOutput{
		Fields: map[string]string{
			"document_id":   rendered.Ref.ID,
			"document_path": rendered.Ref.Path,
			"pay_period":    row.PayPeriod,
			"delivered_to":  profile.Email,
		},
		Summary: fmt.Sprintf("Payslip for %s sent to %s (%s).",
			row.PayPeriod, profile.FullName, profile.Email),
	}, nil
}

// mapStoreError translates HRIS store failures into the pipeline taxonomy.
// A statement missing for the requested period is permanent: retrying will
// not make payroll history appear, a human has to check the period.
func mapStoreError(field string, input Input, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.NewHRISTimeoutError(field)
	case errors.Is(err, hris.ErrEmployeeNotFound):
		return errors.NewEmployeeNotFoundError(input.EmployeeID)
	case errors.Is(err, hris.ErrPayslipNotFound):
		return errors.NewDocumentValidationError("payslip",
			fmt.Sprintf("no salary statement on file for %s in %s", input.EmployeeID, input.PayPeriod))
	default:
		return errors.NewHRISReadError(field, err)
	}
}

func mapGenerateError(templateID string, err error) error {
	switch {
	case errors.Is(err, docgen.ErrTemplateNotFound):
		return errors.NewDocumentTemplateNotFoundError(templateID)
	case errors.Is(err, docgen.ErrTemplateValidationFailed):
		return errors.NewDocumentValidationError(templateID, err.Error())
	default:
		return errors.NewDocumentRenderError(templateID, err)
	}
}
