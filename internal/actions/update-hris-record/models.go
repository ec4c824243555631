// internal/actions/update-hris-record/models.go
package updatehrisrecord

import "hrdesk-automation/internal/models"

// Input is the entity bundle this handler works from.
type Input struct {
	EmployeeID string
	Field      string
	NewValue   string
}

func inputFromEntities(entities models.EntitySet) Input {
	employeeID, _ := entities.Get(models.EntityEmployeeID)
	field, _ := entities.Get(models.EntityHRISField)
	newValue, _ := entities.Get(models.EntityNewValue)
	return Input{
		EmployeeID: employeeID,
		Field:      field,
		NewValue:   newValue,
	}
}
