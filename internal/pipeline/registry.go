// internal/pipeline/registry.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/models"
	"hrdesk-automation/internal/reporter"
)

const keyPrefix = "hrdesk:request:"

// RunRecord is the registry entry for one request.
type RunRecord struct {
	RequestID  string              `json:"requestId"`
	TicketID   string              `json:"ticketId"`
	Phase      models.RunPhase     `json:"phase"`
	Status     models.ReportStatus `json:"status,omitempty"`
	Delivered  bool                `json:"delivered,omitempty"`
	ReceivedAt time.Time           `json:"receivedAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// Registry tracks which request IDs have been seen and how far each run
// got. Entries are TTL-bound: the registry is a dedup window, not request
// storage.
type Registry struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRegistry(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Registry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Registry{
		rdb:    rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "registry"}),
	}
}

// Begin claims a request ID. A second delivery of the same ID returns
// false regardless of how far the first run got; at-least-once sources
// re-deliver both finished and in-flight requests.
func (r *Registry) Begin(ctx context.Context, req models.Request) (bool, error) {
	now := time.Now().UTC()
	record := RunRecord{
		RequestID:  req.RequestID,
		TicketID:   req.TicketID,
		Phase:      models.PhaseReceived,
		ReceivedAt: now,
		UpdatedAt:  now,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("marshal run record: %w", err)
	}

	claimed, err := r.rdb.SetNX(ctx, keyPrefix+req.RequestID, string(payload), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim request %s: %w", req.RequestID, err)
	}
	return claimed, nil
}

// Forget releases a claim for a request that never entered the queue, so
// the source's re-delivery is not mistaken for a duplicate.
func (r *Registry) Forget(ctx context.Context, requestID string) {
	if err := r.rdb.Del(ctx, keyPrefix+requestID).Err(); err != nil {
		r.logger.Error("failed to release claim", map[string]interface{}{
			"requestId": requestID,
			"error":     err.Error(),
		})
	}
}

// SetPhase records pipeline progress, keeping the entry's TTL.
func (r *Registry) SetPhase(ctx context.Context, requestID string, phase models.RunPhase) error {
	return r.update(ctx, requestID, func(record *RunRecord) {
		record.Phase = phase
	})
}

// Complete marks the run REPORTED with its final ticket status.
func (r *Registry) Complete(ctx context.Context, requestID string, outcome reporter.Outcome) error {
	return r.update(ctx, requestID, func(record *RunRecord) {
		record.Phase = models.PhaseReported
		record.Status = outcome.Status
		record.Delivered = outcome.Delivered
	})
}

// Lookup returns the recorded run, if any.
func (r *Registry) Lookup(ctx context.Context, requestID string) (RunRecord, bool, error) {
	raw, err := r.rdb.Get(ctx, keyPrefix+requestID).Result()
	if err == redis.Nil {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("lookup request %s: %w", requestID, err)
	}
	var record RunRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return RunRecord{}, false, fmt.Errorf("decode run record %s: %w", requestID, err)
	}
	return record, true, nil
}

func (r *Registry) update(ctx context.Context, requestID string, mutate func(*RunRecord)) error {
	record, found, err := r.Lookup(ctx, requestID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("run record %s expired or was never claimed", requestID)
	}

	mutate(&record)
	record.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+requestID, string(payload), redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("update run record %s: %w", requestID, err)
	}
	return nil
}
