// internal/actions/policy-query/handler.go
package policyquery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/models"
)

const TaskType = "policy-query"

// PolicySearcher looks up policy passages for a topic.
type PolicySearcher interface {
	Search(ctx context.Context, topic string) ([]PolicyHit, error)
}

// ==========================
// Handler
// ==========================

// Handler answers policy questions from the knowledge index. An empty
// result set is still an answer: the ticket says nothing matched instead
// of failing the request.
type Handler struct {
	searcher PolicySearcher
	logger   logger.Logger
}

func NewHandler(searcher PolicySearcher, log logger.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"handler": TaskType}),
	}
}

func (h *Handler) TaskType() string {
	return TaskType
}

func (h *Handler) RequiredEntities() []models.EntityType {
	return []models.EntityType{models.EntityPolicyTopic}
}

func (h *Handler) Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error) {
	input := inputFromEntities(entities)
	topic := strings.ReplaceAll(input.Topic, "_", " ")

	hits, err := h.searcher.Search(ctx, topic)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewPolicySearchTimeoutError()
		}
		return nil, errors.NewPolicySearchError(err)
	}

	h.logger.Info("policy search completed", map[string]interface{}{
		"requestId": req.RequestID,
		"topic":     topic,
		"matches":   len(hits),
	})

	if len(hits) == 0 {
		return &models.ActionOutput{
			Fields: map[string]string{
				"topic":   topic,
				"matches": "0",
			},
			Summary: fmt.Sprintf("No published policy documentation matched %q. The HR team can answer directly.", topic),
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Policy guidance on %s:\n", topic)
	for _, hit := range hits {
		fmt.Fprintf(&b, "\n%s\n%s\n", hit.Title, hit.Summary)
	}

	return &models.ActionOutput{
		Fields: map[string]string{
			"topic":      topic,
			"matches":    strconv.Itoa(len(hits)),
			"top_source": hits[0].Title,
		},
		Summary: b.String(),
	}, nil
}
