// internal/actions/policy-query/models.go
package policyquery

import "hrdesk-automation/internal/models"

// Input is the entity bundle this handler works from.
type Input struct {
	Topic string
}

func inputFromEntities(entities models.EntitySet) Input {
	topic, _ := entities.Get(models.EntityPolicyTopic)
	return Input{Topic: topic}
}

// PolicyHit is one matching passage from the policy knowledge index.
type PolicyHit struct {
	Title   string
	Summary string
	Score   float64
}

// policyDocument mirrors the indexed document shape.
type policyDocument struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	UpdatedAt string `json:"updated_at"`
}

type searchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  float64        `json:"_score"`
			Source policyDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
