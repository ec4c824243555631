// internal/models/entities.go
package models

// EntityType names a structured field recognizable in request text.
type EntityType string

const (
	EntityEmployeeID    EntityType = "employee_id"
	EntityDocumentType  EntityType = "document_type"
	EntityEffectiveDate EntityType = "effective_date"
	EntityPayPeriod     EntityType = "pay_period"
	EntityHRISField     EntityType = "hris_field"
	EntityNewValue      EntityType = "new_value"
	EntityPolicyTopic   EntityType = "policy_topic"
)

// AllEntityTypes lists every recognized entity type; the catalog validator
// checks handler requirements against it.
var AllEntityTypes = []EntityType{
	EntityEmployeeID,
	EntityDocumentType,
	EntityEffectiveDate,
	EntityPayPeriod,
	EntityHRISField,
	EntityNewValue,
	EntityPolicyTopic,
}

// EntitySet is the result of entity extraction. Every field is optional;
// an empty set is a valid extraction result, not a failure.
type EntitySet struct {
	values map[EntityType]string
}

func NewEntitySet() EntitySet {
	return EntitySet{values: make(map[EntityType]string)}
}

// Set records a value for a type unless one is already present. Extraction
// registers recognizers in a fixed order, so the first claim wins.
func (s EntitySet) Set(t EntityType, value string) bool {
	if _, exists := s.values[t]; exists {
		return false
	}
	s.values[t] = value
	return true
}

func (s EntitySet) Get(t EntityType) (string, bool) {
	v, ok := s.values[t]
	return v, ok
}

func (s EntitySet) Has(t EntityType) bool {
	_, ok := s.values[t]
	return ok
}

// Missing returns the subset of required types absent from the set, in the
// order given.
func (s EntitySet) Missing(required []EntityType) []EntityType {
	var missing []EntityType
	for _, t := range required {
		if !s.Has(t) {
			missing = append(missing, t)
		}
	}
	return missing
}

func (s EntitySet) Len() int {
	return len(s.values)
}

// AsMap returns a copy for logging and ticket summaries.
func (s EntitySet) AsMap() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[string(k)] = v
	}
	return out
}
