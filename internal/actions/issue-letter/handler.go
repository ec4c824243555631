// internal/actions/issue-letter/handler.go
package issueletter

import (
	"context"
	"fmt"
	"strings"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/docgen"
	"hrdesk-automation/internal/hris"
	"hrdesk-automation/internal/models"
)

const TaskType = "issue-letter"

// Document types double as template IDs in the letter registry; the
// address proof additionally embeds the address on file.
const addressProofType = "address_proof"

// EmployeeDirectory is the slice of the HRIS store this handler reads.
type EmployeeDirectory interface {
	Profile(ctx context.Context, employeeID string) (hris.Profile, error)
	Read(ctx context.Context, employeeID, field string) (string, error)
}

// DocumentGenerator renders a letter from the template registry.
type DocumentGenerator interface {
	Generate(ctx context.Context, templateID string, fields map[string]string) (*docgen.Rendered, error)
}

// DocumentMailer delivers the rendered letter to the employee.
type DocumentMailer interface {
	SendDocument(ctx context.Context, to, subject, body string) error
}

// ==========================
// Handler
// ==========================

// Handler issues HR letters: it assembles employee facts from the HRIS,
// renders the requested document and emails it to the address on file.
type Handler struct {
	directory EmployeeDirectory
	generator DocumentGenerator
	mailer    DocumentMailer
	logger    logger.Logger
}

func NewHandler(directory EmployeeDirectory, generator DocumentGenerator, mailer DocumentMailer, log logger.Logger) *Handler {
	return &Handler{
		directory: directory,
		generator: generator,
		mailer:    mailer,
		logger:    log.WithFields(map[string]interface{}{"handler": TaskType}),
	}
}

func (h *Handler) TaskType() string {
	return TaskType
}

func (h *Handler) RequiredEntities() []models.EntityType {
	return []models.EntityType{
		models.EntityDocumentType,
		models.EntityEmployeeID,
		models.EntityEffectiveDate,
	}
}

func (h *Handler) Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error) {
	input := inputFromEntities(entities)

	profile, err := h.directory.Profile(ctx, input.EmployeeID)
	if err != nil {
		return nil, mapStoreError("profile", input.EmployeeID, err)
	}

	fields := map[string]string{
		"employee_name":  profile.FullName,
		"employee_id":    profile.EmployeeID,
		"department":     profile.Department,
		"job_title":      profile.JobTitle,
		"effective_date": input.EffectiveDate,
	}
	if input.DocumentType == addressProofType {
		address, err := h.directory.Read(ctx, input.EmployeeID, "address")
		if err != nil {
			if errors.Is(err, hris.ErrFieldNotFound) {
				return nil, errors.NewDocumentValidationError(input.DocumentType,
					fmt.Sprintf("no address on file for %s", input.EmployeeID))
			}
			return nil, mapStoreError("address", input.EmployeeID, err)
		}
		fields["address"] = address
	}

	rendered, err := h.generator.Generate(ctx, input.DocumentType, fields)
	if err != nil {
		return nil, mapGenerateError(input.DocumentType, err)
	}

	if err := h.mailer.SendDocument(ctx, profile.Email, rendered.Subject, rendered.Body); err != nil {
		return nil, err
	}

	h.logger.Info("letter issued", map[string]interface{}{
		"requestId":    req.RequestID,
		"employeeId":   profile.EmployeeID,
		"documentType": input.DocumentType,
		"documentId":   rendered.Ref.ID,
	})

	return &models.ActionOutput{
		Fields: map[string]string{
			"document_id":   rendered.Ref.ID,
			"document_path": rendered.Ref.Path,
			"delivered_to":  profile.Email,
		},
		Summary: fmt.Sprintf("Issued %s for %s (%s), effective %s. Sent to %s.",
			strings.ReplaceAll(input.DocumentType, "_", " "),
			profile.FullName, profile.EmployeeID, input.EffectiveDate, profile.Email),
	}, nil
}

// mapStoreError translates HRIS store failures into the pipeline taxonomy.
// Deadline hits stay retryable; a missing employee never will be.
func mapStoreError(field, employeeID string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.NewHRISTimeoutError(field)
	case errors.Is(err, hris.ErrEmployeeNotFound):
		return errors.NewEmployeeNotFoundError(employeeID)
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
