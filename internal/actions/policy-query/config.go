// internal/actions/policy-query/config.go
package policyquery

// Config holds the handler's knobs.
type Config struct {
	// Index is the Elasticsearch index holding policy documents.
	Index string
	// MaxResults bounds how many passages go into one answer.
	MaxResults int
	// MinScore drops weakly matching passages from the answer.
	MinScore float64
}

func DefaultConfig() Config {
	return Config{
		Index:      "hr-policies",
		MaxResults: 3,
		MinScore:   0,
	}
}
