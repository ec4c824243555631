// pkg/catalog/schema.go
package catalog

// Catalog is the on-disk intent catalog. It declares every automatable
// intent together with the entities its handler needs, so operations can
// review the automation surface without reading handler code.
type Catalog struct {
	Version     string             `json:"version"`
	LastUpdated string             `json:"lastUpdated"`
	Intents     []IntentDefinition `json:"intents"`
}

// IntentDefinition describes one automatable intent. TaskType is the
// handler key the executor binds to. Timeout and MaxAttempts override the
// pipeline defaults when set; zero values defer to configuration.
type IntentDefinition struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"displayName"`
	Description      string   `json:"description"`
	RequiredEntities []string `json:"requiredEntities"`
	TaskType         string   `json:"taskType"`
	Timeout          string   `json:"timeout,omitempty"`
	MaxAttempts      int      `json:"maxAttempts,omitempty"`
}
