// internal/actions/retrieve-payslip/models.go
package retrievepayslip

import "hrdesk-automation/internal/models"

// Input is the entity bundle this handler works from.
type Input struct {
	EmployeeID string
	PayPeriod  string
}

func inputFromEntities(entities models.EntitySet) Input {
	employeeID, _ := entities.Get(models.EntityEmployeeID)
	payPeriod, _ := entities.Get(models.EntityPayPeriod)
	return Input{
		EmployeeID: employeeID,
		PayPeriod:  payPeriod,
	}
}
