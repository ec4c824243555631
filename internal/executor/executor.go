// internal/executor/executor.go

// Package executor dispatches classified requests to action handlers
// through a static table validated at startup, and owns the per-attempt
// timeout and retry policy.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hrdesk-automation/internal/common/config"
	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/common/metrics"
	"hrdesk-automation/internal/models"
	"hrdesk-automation/pkg/catalog"
)

// Handler is one executable action. Action packages satisfy it without
// importing this package.
type Handler interface {
	TaskType() string
	RequiredEntities() []models.EntityType
	Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error)
}

type dispatchEntry struct {
	handler     Handler
	timeout     time.Duration
	maxAttempts int
}

// Executor holds the intent dispatch table. It is immutable after New and
// safe for concurrent use.
type Executor struct {
	table          map[models.Intent]dispatchEntry
	initialBackoff time.Duration
	errHandler     *errors.ErrorHandler
	logger         logger.Logger
}

// New builds the dispatch table from the intent catalog and the registered
// handlers. Every catalog intent must have a handler, every handler must be
// referenced by the catalog, and required-entity declarations must agree on
// both sides; any mismatch fails startup.
func New(cat *catalog.Catalog, handlers []Handler, cfg config.PipelineConfig, log logger.Logger) (*Executor, error) {
	byTask := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		if _, dup := byTask[h.TaskType()]; dup {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("duplicate handler for task type %q", h.TaskType()))
		}
		byTask[h.TaskType()] = h
	}

	defaultTimeout := time.Duration(cfg.ExecutionTimeout) * time.Millisecond
	if defaultTimeout <= 0 {
		defaultTimeout = 10 * time.Second
	}
	defaultAttempts := cfg.MaxAttempts
	if defaultAttempts < 1 {
		defaultAttempts = 3
	}
	initialBackoff := time.Duration(cfg.InitialBackoff) * time.Millisecond
	if initialBackoff <= 0 {
		initialBackoff = 100 * time.Millisecond
	}

	execLog := log.WithFields(map[string]interface{}{"component": "executor"})

	table := make(map[models.Intent]dispatchEntry, len(cat.Intents))
	bound := make(map[string]bool, len(handlers))
	for _, def := range cat.Intents {
		h, ok := byTask[def.TaskType]
		if !ok {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("intent %s: no handler registered for task type %q", def.ID, def.TaskType))
		}
		if !entityDeclarationsAgree(def.RequiredEntities, h.RequiredEntities()) {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("intent %s: catalog requires %v but handler %q declares %v",
					def.ID, def.RequiredEntities, def.TaskType, h.RequiredEntities()))
		}
		bound[def.TaskType] = true

		entry := dispatchEntry{
			handler:     h,
			timeout:     def.TimeoutDuration(defaultTimeout),
			maxAttempts: def.AttemptBudget(defaultAttempts),
		}
		table[models.Intent(def.ID)] = entry

		execLog.Info("handler bound", map[string]interface{}{
			"intent":      def.ID,
			"taskType":    def.TaskType,
			"timeout":     entry.timeout.String(),
			"maxAttempts": entry.maxAttempts,
		})
	}

	for taskType := range byTask {
		if !bound[taskType] {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("handler %q is not referenced by the intent catalog", taskType))
		}
	}

	return &Executor{
		table:          table,
		initialBackoff: initialBackoff,
		errHandler:     errors.NewErrorHandler(execLog),
		logger:         execLog,
	}, nil
}

// entityDeclarationsAgree compares the two declarations as sets; the
// handler's slice order still decides how missing fields are named.
func entityDeclarationsAgree(catalogFields []string, handlerFields []models.EntityType) bool {
	if len(catalogFields) != len(handlerFields) {
		return false
	}
	set := make(map[string]bool, len(catalogFields))
	for _, f := range catalogFields {
		set[f] = true
	}
	for _, f := range handlerFields {
		if !set[string(f)] {
			return false
		}
	}
	return true
}

// ==========================
// Execution
// ==========================

// Execute runs the action for a classified request and always returns a
// result; failures are statuses, not errors. UNKNOWN intents and missing
// entities short-circuit before any handler runs.
func (e *Executor) Execute(ctx context.Context, req models.Request, c models.Classification, entities models.EntitySet) models.ActionResult {
	if c.Intent == models.IntentUnknown {
		return models.ActionResult{
			Status:    models.ActionUnrecognized,
			ErrorCode: string(errors.ErrCodeUnrecognizedIntent),
			Summary:   "The request could not be matched to a supported action.",
		}
	}

	entry, ok := e.table[c.Intent]
	if !ok {
		// Startup validation pins the table to the router's closed set,
		// so a miss here is a programming error.
		e.logger.Error("intent missing from dispatch table", map[string]interface{}{
			"requestId": req.RequestID,
			"intent":    string(c.Intent),
		})
		return models.ActionResult{
			Status:    models.ActionPermanentFailure,
			ErrorCode: string(errors.ErrCodeInternalError),
			Summary:   fmt.Sprintf("No handler is bound for intent %s.", c.Intent),
		}
	}

	if missing := entities.Missing(entry.handler.RequiredEntities()); len(missing) > 0 {
		fields := make([]string, len(missing))
		for i, m := range missing {
			fields[i] = string(m)
		}
		e.logger.Warn("required entities missing", map[string]interface{}{
			"requestId": req.RequestID,
			"intent":    string(c.Intent),
			"missing":   fields,
		})
		return models.ActionResult{
			Status:        models.ActionMissingEntity,
			MissingFields: fields,
			ErrorCode:     string(errors.ErrCodeMissingEntity),
			Summary: fmt.Sprintf("Cannot execute %s: the request does not specify %s.",
				c.Intent, strings.Join(fields, ", ")),
		}
	}

	return e.runWithRetry(ctx, req, c.Intent, entry, entities)
}

func (e *Executor) runWithRetry(ctx context.Context, req models.Request, intent models.Intent, entry dispatchEntry, entities models.EntitySet) models.ActionResult {
	var lastErr *errors.StandardError

	for attempt := 1; attempt <= entry.maxAttempts; attempt++ {
		out, err := e.attempt(ctx, req, entry, entities)
		if err == nil {
			metrics.ExecutorAttempts.WithLabelValues(string(intent), "success").Inc()
			e.logger.Info("action completed", map[string]interface{}{
				"requestId": req.RequestID,
				"intent":    string(intent),
				"attempt":   attempt,
			})
			return models.ActionResult{
				Status:   models.ActionSuccess,
				Output:   out.Fields,
				Summary:  out.Summary,
				Attempts: attempt,
			}
		}

		decision := e.errHandler.HandleStageError(req.RequestID, "execute", err)
		lastErr = decision.Err

		if !decision.Retryable {
			metrics.ExecutorAttempts.WithLabelValues(string(intent), "permanent").Inc()
			return models.ActionResult{
				Status:    models.ActionPermanentFailure,
				ErrorCode: string(lastErr.Code),
				Summary:   lastErr.Message,
				Attempts:  attempt,
			}
		}
		metrics.ExecutorAttempts.WithLabelValues(string(intent), "transient").Inc()

		if attempt == entry.maxAttempts {
			break
		}

		backoff := e.initialBackoff * time.Duration(1<<(attempt-1))
		e.logger.Warn("attempt failed, backing off", map[string]interface{}{
			"requestId": req.RequestID,
			"intent":    string(intent),
			"attempt":   attempt,
			"backoff":   backoff.String(),
			"errorCode": string(lastErr.Code),
		})
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return models.ActionResult{
				Status:    models.ActionTransientFailure,
				ErrorCode: string(lastErr.Code),
				Summary:   "Execution canceled while waiting to retry.",
				Attempts:  attempt,
			}
		}
	}

	return models.ActionResult{
		Status:    models.ActionTransientFailure,
		ErrorCode: string(lastErr.Code),
		Summary:   fmt.Sprintf("Gave up after %d attempts: %s", entry.maxAttempts, lastErr.Message),
		Attempts:  entry.maxAttempts,
	}
}

// attempt runs the handler once under its own deadline. A panicking
// handler fails the attempt instead of the worker.
func (e *Executor) attempt(ctx context.Context, req models.Request, entry dispatchEntry, entities models.EntitySet) (out *models.ActionOutput, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, entry.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.Recovered(r)
		}
	}()

	out, err = entry.handler.Execute(attemptCtx, req, entities)
	if err == nil && out == nil {
		err = errors.NewInternalError(fmt.Errorf("handler %s returned no output", entry.handler.TaskType()))
	}
	return out, err
}
