// internal/executor/executor_test.go
package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk-automation/internal/common/config"
	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/models"
	"hrdesk-automation/pkg/catalog"
)

// ==========================
// Fakes
// ==========================

type attemptResult struct {
	out *models.ActionOutput
	err error
}

type fakeHandler struct {
	taskType string
	required []models.EntityType
	results  []attemptResult
	calls    int
	blocks   bool
	panics   bool
	ctxErrs  []error
}

func (f *fakeHandler) TaskType() string { return f.taskType }

func (f *fakeHandler) RequiredEntities() []models.EntityType { return f.required }

func (f *fakeHandler) Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error) {
	f.calls++
	if f.panics {
		panic("handler exploded")
	}
	if f.blocks {
		<-ctx.Done()
		f.ctxErrs = append(f.ctxErrs, ctx.Err())
		return nil, errors.NewHRISTimeoutError("write")
	}
	if len(f.results) == 0 {
		return &models.ActionOutput{Fields: map[string]string{"ok": "1"}, Summary: "done"}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.out, r.err
}

func updateHandler() *fakeHandler {
	return &fakeHandler{
		taskType: "update-hris-record",
		required: []models.EntityType{
			models.EntityEmployeeID,
			models.EntityHRISField,
			models.EntityNewValue,
		},
	}
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Version: "test",
		Intents: []catalog.IntentDefinition{
			{
				ID:               "UPDATE_HRIS_RECORD",
				DisplayName:      "Update HRIS Record",
				RequiredEntities: []string{"employee_id", "hris_field", "new_value"},
				TaskType:         "update-hris-record",
			},
		},
	}
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ExecutionTimeout: 50,
		MaxAttempts:      3,
		InitialBackoff:   1,
	}
}

func newTestExecutor(t *testing.T, cat *catalog.Catalog, handlers ...Handler) *Executor {
	t.Helper()
	e, err := New(cat, handlers, testConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return e
}

func fullEntities(t *testing.T) models.EntitySet {
	t.Helper()
	entities := models.NewEntitySet()
	require.True(t, entities.Set(models.EntityEmployeeID, "E123"))
	require.True(t, entities.Set(models.EntityHRISField, "address"))
	require.True(t, entities.Set(models.EntityNewValue, "42 Elm Street"))
	return entities
}

func classified(intent models.Intent) models.Classification {
	return models.Classification{Intent: intent, Confidence: 0.8, RuleName: "test-rule"}
}

// ==========================
// Construction
// ==========================

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		cat      *catalog.Catalog
		handlers []Handler
		wantErr  string
	}{
		{
			name:     "intent without handler",
			cat:      testCatalog(),
			handlers: nil,
			wantErr:  "no handler registered",
		},
		{
			name: "handler without intent",
			cat:  testCatalog(),
			handlers: []Handler{
				updateHandler(),
				&fakeHandler{taskType: "orphaned-task"},
			},
			wantErr: "not referenced by the intent catalog",
		},
		{
			name: "duplicate task types",
			cat:  testCatalog(),
			handlers: []Handler{
				updateHandler(),
				updateHandler(),
			},
			wantErr: "duplicate handler",
		},
		{
			name: "entity declarations disagree",
			cat:  testCatalog(),
			handlers: []Handler{
				&fakeHandler{
					taskType: "update-hris-record",
					required: []models.EntityType{models.EntityEmployeeID},
				},
			},
			wantErr: "declares",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cat, tt.handlers, testConfig(), logger.NewTestLogger(t))
			require.Error(t, err)

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, errors.ErrCodeConfigurationInvalid, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.wantErr)
		})
	}
}

func TestNew_EntityOrderDoesNotMatter(t *testing.T) {
	h := updateHandler()
	h.required = []models.EntityType{
		models.EntityNewValue,
		models.EntityEmployeeID,
		models.EntityHRISField,
	}
	_, err := New(testCatalog(), []Handler{h}, testConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)
}

// ==========================
// Dispatch
// ==========================

func TestExecute_UnknownIntentShortCircuits(t *testing.T) {
	h := updateHandler()
	e := newTestExecutor(t, testCatalog(), h)

	result := e.Execute(context.Background(), models.Request{RequestID: "req-1"},
		models.Classification{Intent: models.IntentUnknown}, models.NewEntitySet())

	assert.Equal(t, models.ActionUnrecognized, result.Status)
	assert.Zero(t, result.Attempts)
	assert.Zero(t, h.calls)
	assert.True(t, result.Succeeded())
}

func TestExecute_MissingEntitiesShortCircuit(t *testing.T) {
	h := updateHandler()
	e := newTestExecutor(t, testCatalog(), h)

	entities := models.NewEntitySet()
	require.True(t, entities.Set(models.EntityEmployeeID, "E999"))

	result := e.Execute(context.Background(), models.Request{RequestID: "req-2"},
		classified(models.IntentUpdateHRISRecord), entities)

	assert.Equal(t, models.ActionMissingEntity, result.Status)
	assert.Equal(t, []string{"hris_field", "new_value"}, result.MissingFields)
	assert.Contains(t, result.Summary, "hris_field")
	assert.Contains(t, result.Summary, "new_value")
	assert.Zero(t, h.calls, "handler must not run with entities missing")
}

func TestExecute_SucceedsFirstAttempt(t *testing.T) {
	h := updateHandler()
	h.results = []attemptResult{{out: &models.ActionOutput{
		Fields:  map[string]string{"field": "address"},
		Summary: "Updated address for E123.",
	}}}
	e := newTestExecutor(t, testCatalog(), h)

	result := e.Execute(context.Background(), models.Request{RequestID: "req-3"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))

	assert.Equal(t, models.ActionSuccess, result.Status)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "address", result.Output["field"])
	assert.Equal(t, "Updated address for E123.", result.Summary)
	assert.Equal(t, 1, h.calls)
}

// ==========================
// Retry policy
// ==========================

func TestExecute_RetriesTransientThenSucceeds(t *testing.T) {
	h := updateHandler()
	h.results = []attemptResult{
		{err: errors.NewHRISTimeoutError("write")},
		{err: errors.NewHRISTimeoutError("write")},
		{out: &models.ActionOutput{Summary: "Updated address for E123."}},
	}
	e := newTestExecutor(t, testCatalog(), h)

	result := e.Execute(context.Background(), models.Request{RequestID: "req-4"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))

	assert.Equal(t, models.ActionSuccess, result.Status)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, h.calls)
}

func TestExecute_PermanentFailureNeverRetries(t *testing.T) {
	h := updateHandler()
	h.results = []attemptResult{{err: errors.NewEmployeeNotFoundError("E999")}}
	e := newTestExecutor(t, testCatalog(), h)

	result := e.Execute(context.Background(), models.Request{RequestID: "req-5"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))

	assert.Equal(t, models.ActionPermanentFailure, result.Status)
	assert.Equal(t, string(errors.ErrCodeEmployeeNotFound), result.ErrorCode)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, h.calls)
}

func TestExecute_ExhaustedRetriesReturnTransient(t *testing.T) {
	h := updateHandler()
	h.results = []attemptResult{
		{err: errors.NewHRISTimeoutError("write")},
		{err: errors.NewHRISTimeoutError("write")},
		{err: errors.NewHRISTimeoutError("write")},
	}
	e := newTestExecutor(t, testCatalog(), h)

	result := e.Execute(context.Background(), models.Request{RequestID: "req-6"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))

	assert.Equal(t, models.ActionTransientFailure, result.Status)
	assert.Equal(t, string(errors.ErrCodeHRISTimeout), result.ErrorCode)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, h.calls)
	assert.Contains(t, result.Summary, "3 attempts")
}

func TestExecute_CatalogOverridesAttemptBudget(t *testing.T) {
	cat := testCatalog()
	cat.Intents[0].MaxAttempts = 2

	h := updateHandler()
	h.results = []attemptResult{
		{err: errors.NewHRISTimeoutError("write")},
		{err: errors.NewHRISTimeoutError("write")},
		{out: &models.ActionOutput{Summary: "never reached"}},
	}
	e := newTestExecutor(t, cat, h)

	result := e.Execute(context.Background(), models.Request{RequestID: "req-7"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))

	assert.Equal(t, models.ActionTransientFailure, result.Status)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 2, h.calls)
}

func TestExecute_AttemptDeadlineIsEnforced(t *testing.T) {
	cat := testCatalog()
	cat.Intents[0].Timeout = "20ms"

	h := updateHandler()
	h.blocks = true
	e := newTestExecutor(t, cat, h)

	start := time.Now()
	result := e.Execute(context.Background(), models.Request{RequestID: "req-8"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))
	elapsed := time.Since(start)

	assert.Equal(t, models.ActionTransientFailure, result.Status)
	assert.Equal(t, 3, h.calls)
	require.Len(t, h.ctxErrs, 3)
	for _, err := range h.ctxErrs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Less(t, elapsed, 2*time.Second)
}

func TestExecute_CancellationDuringBackoffStopsRetrying(t *testing.T) {
	cfg := testConfig()
	cfg.InitialBackoff = 5000

	h := updateHandler()
	h.results = []attemptResult{{err: errors.NewHRISTimeoutError("write")}}
	e, err := New(testCatalog(), []Handler{h}, cfg, logger.NewTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result := e.Execute(ctx, models.Request{RequestID: "req-9"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))

	assert.Equal(t, models.ActionTransientFailure, result.Status)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, h.calls)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExecute_PanickingHandlerIsContained(t *testing.T) {
	h := updateHandler()
	h.panics = true
	e := newTestExecutor(t, testCatalog(), h)

	result := e.Execute(context.Background(), models.Request{RequestID: "req-10"},
		classified(models.IntentUpdateHRISRecord), fullEntities(t))

	assert.Equal(t, models.ActionPermanentFailure, result.Status)
	assert.Equal(t, string(errors.ErrCodeInternalError), result.ErrorCode)
	assert.Equal(t, 1, h.calls)
}
