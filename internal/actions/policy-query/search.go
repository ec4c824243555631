// internal/actions/policy-query/search.go
package policyquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Searcher runs policy lookups against the Elasticsearch knowledge index.
// It is the concrete PolicySearcher; handlers only see the interface.
type Searcher struct {
	client *elasticsearch.Client
	config Config
}

func NewSearcher(client *elasticsearch.Client, config Config) *Searcher {
	if config.Index == "" {
		config.Index = DefaultConfig().Index
	}
	if config.MaxResults < 1 {
		config.MaxResults = DefaultConfig().MaxResults
	}
	if config.MaxResults > 10 {
		config.MaxResults = 10
	}
	return &Searcher{client: client, config: config}
}

func (s *Searcher) Search(ctx context.Context, topic string) ([]PolicyHit, error) {
	body, err := json.Marshal(buildSearchBody(topic))
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	from := 0
	size := s.config.MaxResults
	req := esapi.SearchRequest{
		Index: []string{s.config.Index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search returned %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]PolicyHit, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if hit.Score < s.config.MinScore {
			continue
		}
		hits = append(hits, PolicyHit{
			Title:   hit.Source.Title,
			Summary: hit.Source.Summary,
			Score:   hit.Score,
		})
	}
	return hits, nil
}

func buildSearchBody(topic string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  topic,
				"fields": []string{"title^3", "summary^2", "body"},
				"type":   "best_fields",
			},
		},
	}
}
