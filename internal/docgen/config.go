// internal/docgen/config.go
package docgen

import "time"

type Config struct {
	RegistryPath string
	SpoolDir     string
	CacheTTL     time.Duration
}
