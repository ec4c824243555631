// internal/pipeline/pipeline.go

// Package pipeline runs the request state machine: RECEIVED through
// ENTITIES_EXTRACTED, CLASSIFIED and EXECUTING to SUCCEEDED or FAILED,
// then always REPORTED. Only execution repeats; classification is computed
// exactly once per request.
package pipeline

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/common/metrics"
	"hrdesk-automation/internal/common/observability"
	"hrdesk-automation/internal/models"
	"hrdesk-automation/internal/reporter"
)

var (
	ErrSaturated = stderrors.New("PIPELINE_SATURATED")
	ErrDraining  = stderrors.New("PIPELINE_DRAINING")
)

// Extractor turns request text into structured entities.
type Extractor interface {
	Extract(text string) models.EntitySet
}

// Classifier assigns the request an intent.
type Classifier interface {
	Classify(text string, entities models.EntitySet) models.Classification
}

// ActionExecutor runs the action for a classified request.
type ActionExecutor interface {
	Execute(ctx context.Context, req models.Request, c models.Classification, entities models.EntitySet) models.ActionResult
}

// TicketReporter writes the outcome back to the service desk.
type TicketReporter interface {
	Report(ctx context.Context, req models.Request, c models.Classification, result models.ActionResult) reporter.Outcome
}

// ==========================
// Pipeline
// ==========================

type Pipeline struct {
	extractor  Extractor
	classifier Classifier
	executor   ActionExecutor
	reporter   TicketReporter
	registry   *Registry
	tracing    *observability.Tracing
	obs        *observability.Observability
	logger     logger.Logger

	queue   chan models.Request
	workers int
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(extractor Extractor, classifier Classifier, executor ActionExecutor, rep TicketReporter,
	registry *Registry, tracing *observability.Tracing, workers, queueSize int, log logger.Logger) *Pipeline {
	if workers < 1 {
		workers = 4
	}
	if queueSize < 1 {
		queueSize = 64
	}
	return &Pipeline{
		extractor:  extractor,
		classifier: classifier,
		executor:   executor,
		reporter:   rep,
		registry:   registry,
		tracing:    tracing,
		logger:     log.WithFields(map[string]interface{}{"component": "pipeline"}),
		queue:      make(chan models.Request, queueSize),
		workers:    workers,
	}
}

// WithObservability attaches the OTel meter; end-to-end outcomes are then
// recorded there in addition to the prometheus counters.
func (p *Pipeline) WithObservability(o *observability.Observability) *Pipeline {
	p.obs = o
	return p
}

// Start launches the worker pool.
func (p *Pipeline) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for req := range p.queue {
				p.process(context.Background(), req)
			}
		}()
	}
	p.logger.Info("pipeline started", map[string]interface{}{
		"workers":   p.workers,
		"queueSize": cap(p.queue),
	})
}

// Submit claims the request ID and queues the request. A re-delivered ID
// is acknowledged as a duplicate no-op, whether the first run is still in
// flight or already REPORTED. A full queue releases the claim so the
// source's re-delivery gets a fresh chance.
func (p *Pipeline) Submit(ctx context.Context, req models.Request) (bool, error) {
	fresh, err := p.registry.Begin(ctx, req)
	if err != nil {
		return false, err
	}
	if !fresh {
		metrics.RequestsDeduplicated.Inc()
		p.logger.Info("duplicate delivery acknowledged", map[string]interface{}{
			"requestId": req.RequestID,
			"ticketId":  req.TicketID,
		})
		return false, nil
	}
	metrics.RequestsReceived.Inc()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.registry.Forget(ctx, req.RequestID)
		return false, ErrDraining
	}
	select {
	case p.queue <- req:
		return true, nil
	default:
		p.registry.Forget(ctx, req.RequestID)
		return false, ErrSaturated
	}
}

// Shutdown stops intake and drains queued requests until ctx expires.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("pipeline drained", nil)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ==========================
// State machine
// ==========================

func (p *Pipeline) process(ctx context.Context, req models.Request) {
	metrics.RunsActive.Inc()
	defer metrics.RunsActive.Dec()

	start := time.Now()
	ctx, span := p.tracing.StartStage(ctx, "process", req.RequestID)
	defer span.End()

	c, result := p.runStages(ctx, req)

	// REPORTED is always reached: the reporter returns an outcome even
	// when every send failed.
	outcome := p.reporter.Report(ctx, req, c, result)
	metrics.RequestsCompleted.WithLabelValues(string(outcome.Status)).Inc()
	if p.obs != nil {
		p.obs.RecordRequestProcessed(ctx, string(outcome.Status))
		p.obs.RecordRequestDuration(ctx, time.Since(start), string(outcome.Status))
	}
	if err := p.registry.Complete(ctx, req.RequestID, outcome); err != nil {
		p.logger.Error("failed to record completion", map[string]interface{}{
			"requestId": req.RequestID,
			"error":     err.Error(),
		})
	}

	p.logger.Info("request reported", map[string]interface{}{
		"requestId": req.RequestID,
		"ticketId":  req.TicketID,
		"intent":    string(c.Intent),
		"status":    string(outcome.Status),
		"delivered": outcome.Delivered,
		"attempts":  result.Attempts,
		"duration":  time.Since(start).String(),
	})
}

// runStages drives the request to SUCCEEDED or FAILED. A panic in any
// stage becomes a permanent failure so the run still reaches REPORTED.
func (p *Pipeline) runStages(ctx context.Context, req models.Request) (c models.Classification, result models.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			stdErr := errors.Recovered(r)
			p.logger.Error("stage panicked", map[string]interface{}{
				"requestId": req.RequestID,
				"error":     stdErr.Details,
			})
			p.setPhase(ctx, req.RequestID, models.PhaseFailed)
			result = models.ActionResult{
				Status:    models.ActionPermanentFailure,
				ErrorCode: string(stdErr.Code),
				Summary:   "An internal error interrupted processing.",
			}
		}
	}()

	entities := p.stageExtract(ctx, req)

	// Classified exactly once; execution retries never reenter the router.
	c = p.stageClassify(ctx, req, entities)

	result = p.stageExecute(ctx, req, c, entities)
	return c, result
}

func (p *Pipeline) stageExtract(ctx context.Context, req models.Request) models.EntitySet {
	ctx, span := p.tracing.StartStage(ctx, "extract", req.RequestID)
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	}()

	entities := p.extractor.Extract(req.Text())
	p.setPhase(ctx, req.RequestID, models.PhaseEntitiesExtracted)

	p.logger.Debug("entities extracted", map[string]interface{}{
		"requestId": req.RequestID,
		"entities":  entities.AsMap(),
	})
	return entities
}

func (p *Pipeline) stageClassify(ctx context.Context, req models.Request, entities models.EntitySet) models.Classification {
	ctx, span := p.tracing.StartStage(ctx, "classify", req.RequestID)
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())
	}()

	c := p.classifier.Classify(req.Text(), entities)
	p.setPhase(ctx, req.RequestID, models.PhaseClassified)

	p.logger.Info("request classified", map[string]interface{}{
		"requestId":  req.RequestID,
		"intent":     string(c.Intent),
		"confidence": c.Confidence,
		"rule":       c.RuleName,
	})
	return c
}

func (p *Pipeline) stageExecute(ctx context.Context, req models.Request, c models.Classification, entities models.EntitySet) models.ActionResult {
	ctx, span := p.tracing.StartStage(ctx, "execute", req.RequestID)
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("execute").Observe(time.Since(start).Seconds())
	}()

	p.setPhase(ctx, req.RequestID, models.PhaseExecuting)
	result := p.executor.Execute(ctx, req, c, entities)

	phase := models.PhaseSucceeded
	if !result.Succeeded() {
		phase = models.PhaseFailed
	}
	p.setPhase(ctx, req.RequestID, phase)
	return result
}

// setPhase is best effort: a registry hiccup is logged, never fatal to
// the run.
func (p *Pipeline) setPhase(ctx context.Context, requestID string, phase models.RunPhase) {
	if err := p.registry.SetPhase(ctx, requestID, phase); err != nil {
		p.logger.Warn("failed to record phase", map[string]interface{}{
			"requestId": requestID,
			"phase":     string(phase),
			"error":     err.Error(),
		})
	}
}
