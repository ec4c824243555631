// internal/actions/issue-letter/models.go
package issueletter

import "hrdesk-automation/internal/models"

// Input is the entity bundle this handler works from.
type Input struct {
	DocumentType  string
	EmployeeID    string
	EffectiveDate string
}

func inputFromEntities(entities models.EntitySet) Input {
	docType, _ := entities.Get(models.EntityDocumentType)
	employeeID, _ := entities.Get(models.EntityEmployeeID)
	effectiveDate, _ := entities.Get(models.EntityEffectiveDate)
	return Input{
		DocumentType:  docType,
		EmployeeID:    employeeID,
		EffectiveDate: effectiveDate,
	}
}

// Output is the handler's artifact set before translation to the shared
// action output.
type Output struct {
	DocumentID   string `json:"documentId"`
	DocumentPath string `json:"documentPath"`
	DeliveredTo  string `json:"deliveredTo"`
}
