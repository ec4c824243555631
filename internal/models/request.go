// internal/models/request.go
package models

import "time"

// Request is one HR service request delivered by the ITSM platform.
// RequestID is the deduplication and idempotency key for the whole run.
type Request struct {
	RequestID  string    `json:"requestId"`
	TicketID   string    `json:"ticketId"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Requester  Requester `json:"requester"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type Requester struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Text returns the free text the extraction and routing stages operate on.
func (r Request) Text() string {
	if r.Subject == "" {
		return r.Body
	}
	if r.Body == "" {
		return r.Subject
	}
	return r.Subject + "\n" + r.Body
}

// RunPhase is a state of the per-request pipeline state machine.
type RunPhase string

const (
	PhaseReceived          RunPhase = "RECEIVED"
	PhaseEntitiesExtracted RunPhase = "ENTITIES_EXTRACTED"
	PhaseClassified        RunPhase = "CLASSIFIED"
	PhaseExecuting         RunPhase = "EXECUTING"
	PhaseSucceeded         RunPhase = "SUCCEEDED"
	PhaseFailed            RunPhase = "FAILED"
	PhaseReported          RunPhase = "REPORTED"
)

// ReportStatus is the ticket status the reporter writes back.
type ReportStatus string

const (
	ReportResolved    ReportStatus = "RESOLVED"
	ReportNeedsReview ReportStatus = "NEEDS_REVIEW"
	ReportFailed      ReportStatus = "FAILED"
)
