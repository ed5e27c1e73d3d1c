// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Seed          SeedConfig         `mapstructure:"seed"`
	RandomUser    RandomUserConfig   `mapstructure:"randomuser"`
	Parse         ParseConfig        `mapstructure:"parse"`
	Store         StoreConfig        `mapstructure:"store"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Ledger        LedgerConfig       `mapstructure:"ledger"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Tracing       TracingConfig      `mapstructure:"tracing"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// SeedConfig holds the argument defaults and exit behaviour of a run.
type SeedConfig struct {
	DefaultCount     int    `mapstructure:"default_count"`
	DefaultClassName string `mapstructure:"default_class_name"`
	MaxCount         int    `mapstructure:"max_count"`
	FailExitCode     bool   `mapstructure:"fail_exit_code"`
}

// RandomUserConfig configures the upstream fake-user API.
type RandomUserConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds, 0 means the 30s default
	Seed        string `mapstructure:"seed"`
	Nationality string `mapstructure:"nationality"`
}

// ParseConfig holds the backend-as-a-service credentials.
type ParseConfig struct {
	ServerURL   string `mapstructure:"server_url"`
	MountPath   string `mapstructure:"mount_path"`
	AppID       string `mapstructure:"app_id"`
	ClientKey   string `mapstructure:"client_key"`   // javascript key
	RESTAPIKey  string `mapstructure:"rest_api_key"` // used when client_key is empty
	BatchSize   int    `mapstructure:"batch_size"`
	Transaction bool   `mapstructure:"transaction"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
	LevelDB       LevelDBConfig       `mapstructure:"leveldb"`
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
	Table          string `mapstructure:"table"`
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
	URL         string   `mapstructure:"url"` // Single URL for backwards compatibility
	IndexPrefix string   `mapstructure:"index_prefix"`
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
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type LevelDBConfig struct {
	Path string `mapstructure:"path"`
}

// LedgerConfig controls the redis run ledger.
type LedgerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // seconds
}

type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	JobName        string `mapstructure:"job_name"`
}

// Trace exporters.
const (
	TraceExporterStdout = "stdout"
	TraceExporterNone   = "none"
)

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Exporter    string `mapstructure:"exporter"`
	Output      string `mapstructure:"output"` // file for stdout spans, empty is stderr
}

// NotificationConfig holds settings for the run-summary notifier.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
