// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported store backends.
const (
	BackendParse         = "parse"
	BackendPostgres      = "postgres"
	BackendRedis         = "redis"
	BackendElasticsearch = "elasticsearch"
	BackendLevelDB       = "leveldb"
)

// Load reads configs/config.yaml (optional), the environment overlay and the
// process environment.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// AutomaticEnv only resolves keys viper already knows about, so every key we
// expect to be overridable is bound up front.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"seed.default_count", "seed.default_class_name", "seed.max_count", "seed.fail_exit_code",
		"randomuser.base_url", "randomuser.timeout", "randomuser.seed", "randomuser.nationality",
		"parse.server_url", "parse.mount_path", "parse.app_id", "parse.client_key",
		"parse.rest_api_key", "parse.batch_size", "parse.transaction", "parse.timeout",
		"store.backend",
		"database.postgres.host", "database.postgres.port", "database.postgres.database",
		"database.postgres.user", "database.postgres.password", "database.postgres.table",
		"database.redis.address", "database.redis.password", "database.redis.db",
		"database.elasticsearch.url", "database.leveldb.path",
		"ledger.enabled", "ledger.ttl", "metrics.enabled", "metrics.pushgateway_url",
		"tracing.enabled", "tracing.exporter", "tracing.output", "notifications.sns.enabled", "notifications.sns.topic_arn",
		"logging.level", "logging.format",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the conventional variable names
// when the YAML left them empty.
func overrideEmptyConfig(cfg *Config) {
	envOverride(&cfg.Parse.AppID, "PARSE_APP_ID")
	envOverride(&cfg.Parse.ClientKey, "PARSE_CLIENT_KEY")
	envOverride(&cfg.Parse.ClientKey, "PARSE_JAVASCRIPT_KEY")
	envOverride(&cfg.Parse.RESTAPIKey, "PARSE_REST_API_KEY")
	envOverride(&cfg.Parse.ServerURL, "PARSE_SERVER_URL")

	envOverride(&cfg.Database.Postgres.User, "DB_USER")
	envOverride(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	envOverride(&cfg.Database.Redis.Password, "REDIS_PASSWORD")

	envOverride(&cfg.Notifications.SNS.TopicARN, "SNS_TOPIC_ARN")
}

func envOverride(field *string, name string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(name); val != "" {
		*field = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "contact-seeder"
	}

	if cfg.Seed.MaxCount == 0 {
		cfg.Seed.MaxCount = 5000
	}
	if cfg.Seed.DefaultCount == 0 {
		cfg.Seed.DefaultCount = min(100, cfg.Seed.MaxCount)
	}
	if cfg.Seed.DefaultClassName == "" {
		cfg.Seed.DefaultClassName = "Contact"
	}

	if cfg.RandomUser.BaseURL == "" {
		cfg.RandomUser.BaseURL = "https://randomuser.me"
	}
	if cfg.RandomUser.Timeout == 0 {
		cfg.RandomUser.Timeout = 30000
	}

	if cfg.Parse.ServerURL == "" {
		cfg.Parse.ServerURL = "https://parseapi.back4app.com"
	}
	if cfg.Parse.BatchSize == 0 {
		cfg.Parse.BatchSize = 20
	}
	if cfg.Parse.Timeout == 0 {
		cfg.Parse.Timeout = 30000
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendParse
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.Table == "" {
		cfg.Database.Postgres.Table = "seed_objects"
	}

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL != "" {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}
	if cfg.Database.Elasticsearch.IndexPrefix == "" {
		cfg.Database.Elasticsearch.IndexPrefix = "seed"
	}

	if cfg.Database.Redis.KeyPrefix == "" {
		cfg.Database.Redis.KeyPrefix = "seed"
	}
	if cfg.Database.LevelDB.Path == "" {
		cfg.Database.LevelDB.Path = "./data/seed.db"
	}

	if cfg.Ledger.TTL == 0 {
		cfg.Ledger.TTL = 7 * 24 * 3600
	}

	if cfg.Metrics.JobName == "" {
		cfg.Metrics.JobName = "contact_seeder"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = cfg.App.Name
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = TraceExporterStdout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// validateConfig checks that the selected backend has what it needs.
func validateConfig(cfg *Config) error {
	if cfg.Seed.DefaultCount < 0 || cfg.Seed.DefaultCount > cfg.Seed.MaxCount {
		return fmt.Errorf("seed.default_count must be between 0 and %d", cfg.Seed.MaxCount)
	}
	if cfg.Parse.BatchSize < 1 || cfg.Parse.BatchSize > 50 {
		return fmt.Errorf("parse.batch_size must be between 1 and 50")
	}

	switch cfg.Store.Backend {
	case BackendParse:
		if cfg.Parse.AppID == "" {
			return fmt.Errorf("parse.app_id is required")
		}
		if cfg.Parse.ClientKey == "" && cfg.Parse.RESTAPIKey == "" {
			return fmt.Errorf("parse.client_key or parse.rest_api_key is required")
		}
	case BackendPostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case BackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required")
		}
	case BackendElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required")
		}
	case BackendLevelDB:
	default:
		return fmt.Errorf("unknown store.backend %q", cfg.Store.Backend)
	}

	if cfg.Ledger.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when ledger is enabled")
	}
	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}
	switch cfg.Tracing.Exporter {
	case TraceExporterStdout, TraceExporterNone:
	default:
		return fmt.Errorf("unknown tracing.exporter %q", cfg.Tracing.Exporter)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
