// internal/actions/query-hris-record/config.go
package queryhrisrecord

// Config holds the handler's knobs.
type Config struct {
	// MaskedFields lists record fields whose values are redacted down to
	// their last four characters before they reach a ticket note.
	MaskedFields []string
}

func DefaultConfig() Config {
	return Config{MaskedFields: []string{"bank_account"}}
}
