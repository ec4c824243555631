// internal/models/action.go
package models

// ActionStatus is the typed outcome of the execution stage.
type ActionStatus string

const (
	ActionSuccess          ActionStatus = "SUCCESS"
	ActionMissingEntity    ActionStatus = "MISSING_ENTITY"
	ActionUnrecognized     ActionStatus = "UNRECOGNIZED"
	ActionTransientFailure ActionStatus = "TRANSIENT_FAILURE"
	ActionPermanentFailure ActionStatus = "PERMANENT_FAILURE"
)

// ActionOutput is what a handler returns on success: artifact fields for
// the ticket (document references, record values) plus a human-readable
// summary line.
type ActionOutput struct {
	Fields  map[string]string `json:"fields,omitempty"`
	Summary string            `json:"summary"`
}

// ActionResult is what the executor hands to the reporter. Output carries
// handler artifacts such as document_reference; MissingFields is populated
// only for MISSING_ENTITY.
type ActionResult struct {
	Status        ActionStatus      `json:"status"`
	Output        map[string]string `json:"output,omitempty"`
	Summary       string            `json:"summary"`
	MissingFields []string          `json:"missingFields,omitempty"`
	ErrorCode     string            `json:"errorCode,omitempty"`
	Attempts      int               `json:"attempts"`
}

// Succeeded reports whether the run should transition to SUCCEEDED.
// UNRECOGNIZED counts as success: the pipeline worked, a human takes over.
func (r ActionResult) Succeeded() bool {
	return r.Status == ActionSuccess || r.Status == ActionUnrecognized
}
