// internal/actions/query-hris-record/models.go
package queryhrisrecord

import "hrdesk-automation/internal/models"

// Input is the entity bundle this handler works from.
type Input struct {
	EmployeeID string
	Field      string
}

func inputFromEntities(entities models.EntitySet) Input {
	employeeID, _ := entities.Get(models.EntityEmployeeID)
	field, _ := entities.Get(models.EntityHRISField)
	return Input{
		EmployeeID: employeeID,
		Field:      field,
	}
}
