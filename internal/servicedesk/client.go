// internal/servicedesk/client.go
package servicedesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hrdesk-automation/internal/common/errors"
	commonhttp "hrdesk-automation/internal/common/http"
)

// Client talks to the service desk's REST API. All calls carry a bearer
// token from the TokenProvider and honor the passed context.
type Client struct {
	baseURL    string
	tokens     *TokenProvider
	httpClient *commonhttp.Client
}

func NewClient(baseURL string, tokens *TokenProvider, timeout time.Duration) *Client {
	httpClient := commonhttp.NewClient(timeout)
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: httpClient,
	}
}

// UpdateTicketRequest is the body for a ticket status transition.
type UpdateTicketRequest struct {
	Status      string   `json:"status"`
	Summary     string   `json:"summary,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// NoteRequest is the body for appending a worklog note. The platform
// renders note content as HTML.
type NoteRequest struct {
	ContentHTML string `json:"content_html"`
}

// UpdateTicket transitions a ticket and records the outcome summary.
func (c *Client) UpdateTicket(ctx context.Context, ticketID, status, summary string, attachments []string) error {
	body := UpdateTicketRequest{
		Status:      status,
		Summary:     summary,
		Attachments: attachments,
	}
	url := fmt.Sprintf("%s/api/v1/requests/%s", c.baseURL, ticketID)
	return c.send(ctx, "PATCH", url, body, ticketID)
}

// AddNote appends an HTML note to the ticket's conversation.
func (c *Client) AddNote(ctx context.Context, ticketID, contentHTML string) error {
	body := NoteRequest{ContentHTML: contentHTML}
	url := fmt.Sprintf("%s/api/v1/requests/%s/notes", c.baseURL, ticketID)
	return c.send(ctx, "POST", url, body, ticketID)
}

func (c *Client) send(ctx context.Context, method, url string, body interface{}, ticketID string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &errors.StandardError{
			Code:      errors.ErrCodeTicketUpdateFailed,
			Message:   fmt.Sprintf("service desk request failed for ticket %s", ticketID),
			Details:   err.Error(),
			Retryable: true,
			Metadata:  map[string]interface{}{"ticketId": ticketID},
			Timestamp: time.Now().UTC(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &errors.StandardError{
			Code:      errors.ErrCodeTicketUpdateFailed,
			Message:   fmt.Sprintf("service desk returned %d for ticket %s", resp.StatusCode, ticketID),
			Details:   string(respBody),
			Retryable: isTransientHTTPError(resp.StatusCode) || resp.StatusCode == http.StatusUnauthorized,
			Metadata:  map[string]interface{}{"ticketId": ticketID, "status": resp.StatusCode},
			Timestamp: time.Now().UTC(),
		}
	}

	return nil
}
