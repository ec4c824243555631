// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. It is built once at
// startup, validated, and passed by reference; nothing mutates it afterwards.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Database    DatabaseConfig    `mapstructure:"database"`
	ServiceDesk ServiceDeskConfig `mapstructure:"servicedesk"`
	Documents   DocumentsConfig   `mapstructure:"documents"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	AWS         AWSConfig         `mapstructure:"aws"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig covers the inbound webhook listener and the ops endpoints.
type ServerConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
	WebhookPath   string `mapstructure:"webhook_path"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	OpsAddress    string `mapstructure:"ops_address"`
}

// PipelineConfig tunes the orchestrator and the action executor.
type PipelineConfig struct {
	Workers          int `mapstructure:"workers"`
	QueueSize        int `mapstructure:"queue_size"`
	ExecutionTimeout int `mapstructure:"execution_timeout"` // milliseconds, per attempt
	MaxAttempts      int `mapstructure:"max_attempts"`
	InitialBackoff   int `mapstructure:"initial_backoff"` // milliseconds
	DedupTTLHours    int `mapstructure:"dedup_ttl_hours"`
	ReportResends    int `mapstructure:"report_resends"`
	ResendDelay      int `mapstructure:"resend_delay"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	SSLEnabled  bool     `mapstructure:"ssl_enabled"`
	URL         string   `mapstructure:"url"` // Single URL for backwards compatibility
	PolicyIndex string   `mapstructure:"policy_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- External Service Configuration ---

// ServiceDeskConfig holds settings for the ITSM platform the tickets live on.
type ServiceDeskConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	TokenURL      string `mapstructure:"token_url"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
	WebhookSource string `mapstructure:"webhook_source"`
}

// DocumentsConfig holds settings for letter and payslip generation.
type DocumentsConfig struct {
	RegistryPath    string `mapstructure:"registry_path"`
	SpoolDir        string `mapstructure:"spool_dir"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"`
}

// CatalogConfig points at the intent catalog definition.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// AWSConfig holds settings for email delivery and ops alerting.
type AWSConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
	SNS struct {
		Enabled       bool   `mapstructure:"enabled"`
		AlertTopicARN string `mapstructure:"alert_topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
