// internal/ingress/webhook/handler_test.go
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/models"
	"hrdesk-automation/internal/pipeline"
)

const testSecret = "s3cret"

type stubSubmitter struct {
	accepted bool
	err      error
	requests []models.Request
}

func (s *stubSubmitter) Submit(_ context.Context, req models.Request) (bool, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return false, s.err
	}
	return s.accepted, nil
}

func newTestHandler(t *testing.T, submitter *stubSubmitter) *Handler {
	t.Helper()
	return NewHandler(submitter, testSecret, logger.NewTestLogger(t))
}

func postSigned(t *testing.T, h http.Handler, secret string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/hrdesk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Hub-Signature-256", ComputeSignature(secret, body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandler_AcceptsSignedRequest(t *testing.T) {
	submitter := &stubSubmitter{accepted: true}
	h := newTestHandler(t, submitter)

	body := []byte(`{
		"request_id": "req-1",
		"ticket_id": "TCK-100",
		"subject": "Employment verification letter",
		"description": "Please issue a letter for employee E123 effective 2024-06-01.",
		"requester": {"email": "jane.doe@example.org", "name": "Jane Doe"}
	}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, map[string]string{"status": "accepted"}, decodeBody(t, rec))

	require.Len(t, submitter.requests, 1)
	req := submitter.requests[0]
	assert.Equal(t, "req-1", req.RequestID)
	assert.Equal(t, "TCK-100", req.TicketID)
	assert.Equal(t, "Employment verification letter", req.Subject)
	assert.Equal(t, "jane.doe@example.org", req.Requester.Email)
	assert.False(t, req.ReceivedAt.IsZero())
}

func TestHandler_NormalizesLegacyAliases(t *testing.T) {
	submitter := &stubSubmitter{accepted: true}
	h := newTestHandler(t, submitter)

	body := []byte(`{
		"id": "req-2",
		"display_id": "TCK-200",
		"issue_description": "What is the parental leave policy?"
	}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, submitter.requests, 1)
	req := submitter.requests[0]
	assert.Equal(t, "req-2", req.RequestID)
	assert.Equal(t, "TCK-200", req.TicketID)
	assert.Equal(t, "What is the parental leave policy?", req.Body)
}

func TestHandler_TicketIDFallsBackToRequestID(t *testing.T) {
	submitter := &stubSubmitter{accepted: true}
	h := newTestHandler(t, submitter)

	body := []byte(`{"request_id": "req-3", "subject": "Payslip for E456"}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, submitter.requests, 1)
	assert.Equal(t, "req-3", submitter.requests[0].TicketID)
}

func TestHandler_DuplicateDelivery(t *testing.T) {
	submitter := &stubSubmitter{accepted: false}
	h := newTestHandler(t, submitter)

	body := []byte(`{"request_id": "req-1", "subject": "again"}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "duplicate"}, decodeBody(t, rec))
}

func TestHandler_RejectsNonPost(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})

	req := httptest.NewRequest(http.MethodGet, "/webhook/hrdesk", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_RejectsBadSignature(t *testing.T) {
	submitter := &stubSubmitter{accepted: true}
	h := newTestHandler(t, submitter)

	body := []byte(`{"request_id": "req-1", "subject": "hello"}`)

	req := httptest.NewRequest(http.MethodPost, "/webhook/hrdesk", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", ComputeSignature("wrong-secret", body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, submitter.requests)
}

func TestHandler_RejectsMissingSignature(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{accepted: true})

	body := []byte(`{"request_id": "req-1", "subject": "hello"}`)
	rec := postSigned(t, h, "", body)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_NoSecretDisablesVerification(t *testing.T) {
	submitter := &stubSubmitter{accepted: true}
	h := NewHandler(submitter, "", logger.NewTestLogger(t))

	body := []byte(`{"request_id": "req-1", "subject": "hello"}`)
	rec := postSigned(t, h, "", body)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, submitter.requests, 1)
}

func TestHandler_RejectsInvalidJSON(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{accepted: true})

	body := []byte(`{"request_id": `)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RejectsWrongFieldType(t *testing.T) {
	submitter := &stubSubmitter{accepted: true}
	h := newTestHandler(t, submitter)

	body := []byte(`{"request_id": 42, "subject": "hello"}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "validation failed")
	assert.Empty(t, submitter.requests)
}

func TestHandler_RejectsMissingRequestID(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{accepted: true})

	body := []byte(`{"subject": "hello"}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "request identifier")
}

func TestHandler_RejectsEmptyText(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{accepted: true})

	body := []byte(`{"request_id": "req-1"}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "request text")
}

func TestHandler_RejectsOversizedBody(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{accepted: true})

	body := []byte(strings.Repeat("a", maxBodyBytes+10))
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_SaturatedPipelineReturns503(t *testing.T) {
	submitter := &stubSubmitter{err: pipeline.ErrSaturated}
	h := newTestHandler(t, submitter)

	body := []byte(`{"request_id": "req-1", "subject": "hello"}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_DrainingPipelineReturns503(t *testing.T) {
	submitter := &stubSubmitter{err: pipeline.ErrDraining}
	h := newTestHandler(t, submitter)

	body := []byte(`{"request_id": "req-1", "subject": "hello"}`)
	rec := postSigned(t, h, testSecret, body)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"request_id": "req-1"}`)

	sig := ComputeSignature(testSecret, body)
	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.True(t, VerifySignature(body, testSecret, sig))

	assert.False(t, VerifySignature([]byte(`tampered`), testSecret, sig))
	assert.False(t, VerifySignature(body, "other", sig))
	assert.False(t, VerifySignature(body, testSecret, ""))
}
