// internal/extraction/extractor.go
package extraction

import (
	"time"

	"hrdesk-automation/internal/models"
)

// Match is one entity claimed by a recognizer.
type Match struct {
	Type  models.EntityType
	Value string
}

// Recognizer finds zero or more entities in request text. Recognizers must
// be pure: no I/O, no shared state, identical output for identical input.
type Recognizer interface {
	Name() string
	Recognize(text string) []Match
}

// Extractor turns free text into an EntitySet. Extraction is total: any
// input, including empty or adversarial text, yields a result and never an
// error. Absent entities are a valid outcome.
//
// Recognizers run in registration order and the first recognizer to claim
// an entity type wins; later claims for the same type are dropped. The
// order fixed by NewExtractor is part of this package's contract.
type Extractor struct {
	recognizers []Recognizer
}

// NewExtractor builds the production recognizer chain. Registration order,
// which is also the conflict tie-break order:
//
//	1. employee IDs
//	2. document types
//	3. effective dates
//	4. pay periods
//	5. record update phrases (field and new value)
//	6. policy topics
func NewExtractor(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return newExtractor(
		&employeeIDRecognizer{},
		&documentTypeRecognizer{},
		&dateRecognizer{},
		&payPeriodRecognizer{now: now},
		&recordUpdateRecognizer{},
		&policyTopicRecognizer{},
	)
}

func newExtractor(recognizers ...Recognizer) *Extractor {
	return &Extractor{recognizers: recognizers}
}

// Extract runs every recognizer over the text and assembles the entity set.
func (e *Extractor) Extract(text string) models.EntitySet {
	set := models.NewEntitySet()
	for _, r := range e.recognizers {
		for _, m := range r.Recognize(text) {
			set.Set(m.Type, m.Value)
		}
	}
	return set
}
