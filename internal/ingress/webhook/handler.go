// internal/ingress/webhook/handler.go

// Package webhook receives HR service requests pushed by the ITSM
// platform. Payloads are signature-checked, schema-validated, normalized
// across the platform's field aliases and handed to the pipeline.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/models"
	"hrdesk-automation/internal/pipeline"
)

// maxBodyBytes caps inbound payloads at 1 MiB.
const maxBodyBytes = 1 << 20

// Submitter is the slice of the pipeline the webhook needs.
type Submitter interface {
	Submit(ctx context.Context, req models.Request) (bool, error)
}

// payloadSchema validates shape and types before normalization; the alias
// resolution below picks which of the equivalent fields to use.
var payloadSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"request_id":        map[string]interface{}{"type": "string"},
		"id":                map[string]interface{}{"type": "string"},
		"ticket_id":         map[string]interface{}{"type": "string"},
		"display_id":        map[string]interface{}{"type": "string"},
		"subject":           map[string]interface{}{"type": "string"},
		"description":       map[string]interface{}{"type": "string"},
		"issue_description": map[string]interface{}{"type": "string"},
		"requester": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"email": map[string]interface{}{"type": "string"},
				"name":  map[string]interface{}{"type": "string"},
			},
		},
	},
}

type inboundPayload struct {
	RequestID        string           `json:"request_id"`
	ID               string           `json:"id"`
	TicketID         string           `json:"ticket_id"`
	DisplayID        string           `json:"display_id"`
	Subject          string           `json:"subject"`
	Description      string           `json:"description"`
	IssueDescription string           `json:"issue_description"`
	Requester        inboundRequester `json:"requester"`
}

type inboundRequester struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ==========================
// Handler
// ==========================

type Handler struct {
	submitter Submitter
	secret    string
	logger    logger.Logger
}

func NewHandler(submitter Submitter, secret string, log logger.Logger) *Handler {
	h := &Handler{
		submitter: submitter,
		secret:    secret,
		logger:    log.WithFields(map[string]interface{}{"component": "webhook"}),
	}
	if secret == "" {
		h.logger.Warn("webhook signature verification disabled: no secret configured", nil)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}
	if len(body) > maxBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds 1 MiB"})
		return
	}

	if h.secret != "" && !VerifySignature(body, h.secret, r.Header.Get("X-Hub-Signature-256")) {
		h.logger.Warn("rejected webhook with bad signature", map[string]interface{}{
			"remoteAddr": r.RemoteAddr,
		})
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	if err := validatePayload(body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var payload inboundPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	req, err := normalize(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	accepted, err := h.submitter.Submit(r.Context(), req)
	switch {
	case errors.Is(err, pipeline.ErrSaturated), errors.Is(err, pipeline.ErrDraining):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "pipeline unavailable, retry later"})
	case err != nil:
		h.logger.Error("submit failed", map[string]interface{}{
			"requestId": req.RequestID,
			"error":     err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	case !accepted:
		writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

// ==========================
// Validation and normalization
// ==========================

func validatePayload(body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(payloadSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("invalid JSON payload")
	}
	if !result.Valid() {
		return fmt.Errorf("payload validation failed: %s", result.Errors()[0].String())
	}
	return nil
}

// normalize resolves the platform's field aliases into one Request. The
// ITSM export uses request_id/ticket_id, the legacy webhook id/display_id.
func normalize(payload inboundPayload) (models.Request, error) {
	requestID := firstNonEmpty(payload.RequestID, payload.ID)
	if requestID == "" {
		return models.Request{}, fmt.Errorf("request identifier is required")
	}

	body := firstNonEmpty(payload.Description, payload.IssueDescription)
	if payload.Subject == "" && body == "" {
		return models.Request{}, fmt.Errorf("request text is required")
	}

	return models.Request{
		RequestID: requestID,
		TicketID:  firstNonEmpty(payload.TicketID, payload.DisplayID, requestID),
		Subject:   payload.Subject,
		Body:      body,
		Requester: models.Requester{
			Email: payload.Requester.Email,
			Name:  payload.Requester.Name,
		},
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ==========================
// Signatures
// ==========================

// ComputeSignature returns the hex HMAC-SHA256 of body in the
// X-Hub-Signature-256 header format.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a "sha256=<hex>" signature in constant time.
func VerifySignature(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}
	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func writeJSON(w http.ResponseWriter, status int, payload map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
