// internal/docgen/models.go
package docgen

// TemplateDefinition is one entry in the letter template registry. Schema
// is a JSON Schema applied to the field map before rendering; Subject and
// Body carry {{field}} placeholders.
type TemplateDefinition struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Subject     string                 `json:"subject"`
	Body        string                 `json:"body"`
	Schema      map[string]interface{} `json:"schema"`
	Version     string                 `json:"version"`
}

type templateRegistry struct {
	Templates []TemplateDefinition `json:"templates"`
}

// DocumentRef points at a rendered document in the spool directory. ID is
// the stable reference reported on the ticket.
type DocumentRef struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
	Path       string `json:"path"`
}

// Rendered is a generated document: the spool reference plus the content
// for delivery.
type Rendered struct {
	Ref     DocumentRef `json:"ref"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
}
