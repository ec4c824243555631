// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// KnownEntityTypes mirrors the extraction vocabulary. A catalog entry may
// only require entities the extractor can actually produce.
var KnownEntityTypes = []string{
	"employee_id",
	"document_type",
	"effective_date",
	"pay_period",
	"hris_field",
	"new_value",
	"policy_topic",
}

const (
	minTimeout     = time.Second
	maxTimeout     = 5 * time.Minute
	maxAttemptsCap = 10
)

// Load reads and parses the catalog file. Callers should Validate before
// wiring the catalog into the executor.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	err = json.Unmarshal(data, &cat)
	return &cat, err
}

// Validate checks internal consistency: unique non-empty IDs, known entity
// types, and sane timeout and attempt bounds. The executor separately
// cross-checks the catalog against the registered handlers.
func (c *Catalog) Validate() error {
	if len(c.Intents) == 0 {
		return fmt.Errorf("catalog contains no intents")
	}

	known := make(map[string]bool, len(KnownEntityTypes))
	for _, t := range KnownEntityTypes {
		known[t] = true
	}

	ids := make(map[string]bool, len(c.Intents))
	taskTypes := make(map[string]bool, len(c.Intents))
	for _, def := range c.Intents {
		if def.ID == "" {
			return fmt.Errorf("intent missing required field: ID")
		}
		if ids[def.ID] {
			return fmt.Errorf("duplicate intent ID: %s", def.ID)
		}
		ids[def.ID] = true

		if def.DisplayName == "" {
			return fmt.Errorf("intent %s missing required field: DisplayName", def.ID)
		}
		if def.TaskType == "" {
			return fmt.Errorf("intent %s missing required field: TaskType", def.ID)
		}
		if taskTypes[def.TaskType] {
			return fmt.Errorf("intent %s reuses task type %s", def.ID, def.TaskType)
		}
		taskTypes[def.TaskType] = true

		for _, entity := range def.RequiredEntities {
			if !known[entity] {
				return fmt.Errorf("intent %s requires unknown entity type %q", def.ID, entity)
			}
		}

		if def.Timeout != "" {
			d, err := time.ParseDuration(def.Timeout)
			if err != nil {
				return fmt.Errorf("intent %s has invalid timeout %q: %w", def.ID, def.Timeout, err)
			}
			if d < minTimeout || d > maxTimeout {
				return fmt.Errorf("intent %s timeout %s outside [%s, %s]", def.ID, d, minTimeout, maxTimeout)
			}
		}

		if def.MaxAttempts < 0 || def.MaxAttempts > maxAttemptsCap {
			return fmt.Errorf("intent %s maxAttempts %d outside [0, %d]", def.ID, def.MaxAttempts, maxAttemptsCap)
		}
	}
	return nil
}

// Get returns the definition for an intent ID.
func (c *Catalog) Get(id string) (IntentDefinition, bool) {
	for _, def := range c.Intents {
		if def.ID == id {
			return def, true
		}
	}
	return IntentDefinition{}, false
}

// TimeoutDuration resolves the per-intent timeout, falling back to the
// pipeline default when the catalog leaves it unset. Validate has already
// rejected unparseable values.
func (d IntentDefinition) TimeoutDuration(fallback time.Duration) time.Duration {
	if d.Timeout == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return fallback
	}
	return parsed
}

// AttemptBudget resolves the per-intent attempt cap, falling back to the
// pipeline default when the catalog leaves it unset.
func (d IntentDefinition) AttemptBudget(fallback int) int {
	if d.MaxAttempts <= 0 {
		return fallback
	}
	return d.MaxAttempts
}
