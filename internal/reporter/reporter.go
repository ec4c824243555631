// internal/reporter/reporter.go

// Package reporter writes pipeline outcomes back to the service desk.
// Translation from action results to ticket statuses is pure; delivery is
// bounded best effort with an ops alert when every send fails.
package reporter

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"hrdesk-automation/internal/common/config"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/common/metrics"
	"hrdesk-automation/internal/models"
)

// TicketClient is the slice of the service desk client the reporter uses.
type TicketClient interface {
	UpdateTicket(ctx context.Context, ticketID, status, summary string, attachments []string) error
	AddNote(ctx context.Context, ticketID, contentHTML string) error
}

// OpsAlerter raises an operational alert when reporting exhausts its sends.
type OpsAlerter interface {
	Alert(ctx context.Context, subject, message string) error
}

// Outcome records how reporting went; the pipeline stores it with the run.
type Outcome struct {
	Status    models.ReportStatus
	Delivered bool
	Sends     int
}

// deskStatuses maps pipeline outcomes onto the service desk's workflow.
// Anything a human still has to look at stays Open.
var deskStatuses = map[models.ReportStatus]string{
	models.ReportResolved:    "Resolved",
	models.ReportNeedsReview: "Open",
	models.ReportFailed:      "Open",
}

// ==========================
// Reporter
// ==========================

type Reporter struct {
	tickets TicketClient
	alerter OpsAlerter
	resends int
	delay   time.Duration
	logger  logger.Logger
}

func New(tickets TicketClient, alerter OpsAlerter, cfg config.PipelineConfig, log logger.Logger) *Reporter {
	resends := cfg.ReportResends
	if resends < 0 {
		resends = 0
	}
	delay := time.Duration(cfg.ResendDelay) * time.Millisecond
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Reporter{
		tickets: tickets,
		alerter: alerter,
		resends: resends,
		delay:   delay,
		logger:  log.WithFields(map[string]interface{}{"component": "reporter"}),
	}
}

// StatusFor translates an action result into the ticket status. Pure: no
// I/O, no clock, covered directly by tests.
func StatusFor(result models.ActionResult) models.ReportStatus {
	switch result.Status {
	case models.ActionSuccess:
		return models.ReportResolved
	case models.ActionUnrecognized:
		return models.ReportNeedsReview
	default:
		return models.ReportFailed
	}
}

// Report delivers the outcome to the ticket, re-sending a bounded number of
// times. Exhausting every send raises an ops alert; the pipeline always
// gets an outcome back, never an error that could stall the run.
func (r *Reporter) Report(ctx context.Context, req models.Request, c models.Classification, result models.ActionResult) Outcome {
	status := StatusFor(result)
	summary := ticketSummary(status, result)
	note := noteHTML(req, c, result, status)

	var attachments []string
	if path := result.Output["document_path"]; path != "" {
		attachments = append(attachments, path)
	}

	maxSends := r.resends + 1
	var lastErr error
	for send := 1; send <= maxSends; send++ {
		err := r.deliver(ctx, req.TicketID, deskStatuses[status], summary, note, attachments)
		if err == nil {
			r.logger.Info("ticket updated", map[string]interface{}{
				"requestId": req.RequestID,
				"ticketId":  req.TicketID,
				"status":    string(status),
				"sends":     send,
			})
			return Outcome{Status: status, Delivered: true, Sends: send}
		}
		lastErr = err
		r.logger.Warn("ticket update failed", map[string]interface{}{
			"requestId": req.RequestID,
			"ticketId":  req.TicketID,
			"send":      send,
			"error":     err.Error(),
		})

		if send < maxSends {
			metrics.ReportResends.Inc()
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				r.raiseAlert(req, status, lastErr)
				return Outcome{Status: status, Delivered: false, Sends: send}
			}
		}
	}

	r.raiseAlert(req, status, lastErr)
	return Outcome{Status: status, Delivered: false, Sends: maxSends}
}

// deliver sends the status transition and then the note. A note failure
// retries the pair; a duplicated note on the ticket beats a lost outcome.
func (r *Reporter) deliver(ctx context.Context, ticketID, deskStatus, summary, note string, attachments []string) error {
	if err := r.tickets.UpdateTicket(ctx, ticketID, deskStatus, summary, attachments); err != nil {
		return err
	}
	return r.tickets.AddNote(ctx, ticketID, note)
}

// raiseAlert surfaces an undeliverable outcome to operations. It runs on
// its own deadline so a dead request context cannot swallow the alert.
func (r *Reporter) raiseAlert(req models.Request, status models.ReportStatus, cause error) {
	alertCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subject := fmt.Sprintf("hrdesk: ticket %s outcome undeliverable", req.TicketID)
	message := fmt.Sprintf("request %s finished with status %s but the service desk update failed after %d sends: %v",
		req.RequestID, status, r.resends+1, cause)

	if err := r.alerter.Alert(alertCtx, subject, message); err != nil {
		r.logger.Error("ops alert failed", map[string]interface{}{
			"requestId": req.RequestID,
			"ticketId":  req.TicketID,
			"error":     err.Error(),
		})
	}
}

// ==========================
// Formatting
// ==========================

func ticketSummary(status models.ReportStatus, result models.ActionResult) string {
	switch status {
	case models.ReportResolved:
		return result.Summary
	case models.ReportNeedsReview:
		return "Needs human review: " + result.Summary
	default:
		return "Automated processing failed: " + result.Summary
	}
}

func noteHTML(req models.Request, c models.Classification, result models.ActionResult, status models.ReportStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Automated processing: %s</b><br>", status)
	fmt.Fprintf(&b, "Request %s", html.EscapeString(req.RequestID))
	if c.Intent != "" {
		fmt.Fprintf(&b, " | Intent: %s (confidence %.2f)", c.Intent, c.Confidence)
	}
	b.WriteString("<br>")

	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(result.Summary))

	if len(result.MissingFields) > 0 {
		fmt.Fprintf(&b, "<p>Missing information: %s</p>",
			html.EscapeString(strings.Join(result.MissingFields, ", ")))
	}
	if result.ErrorCode != "" && status == models.ReportFailed {
		fmt.Fprintf(&b, "<p>Error code: %s (after %d attempt(s))</p>", result.ErrorCode, result.Attempts)
	}

	if len(result.Output) > 0 {
		keys := make([]string, 0, len(result.Output))
		for k := range result.Output {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("<ul>")
		for _, k := range keys {
			fmt.Fprintf(&b, "<li>%s: %s</li>", html.EscapeString(k), html.EscapeString(result.Output[k]))
		}
		b.WriteString("</ul>")
	}
	return b.String()
}
