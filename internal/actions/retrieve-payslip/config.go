// internal/actions/retrieve-payslip/config.go
package retrievepayslip

// Config holds the handler's knobs.
type Config struct {
	// TemplateID names the statement template in the document registry.
	TemplateID string
}

func DefaultConfig() Config {
	return Config{TemplateID: "payslip"}
}
