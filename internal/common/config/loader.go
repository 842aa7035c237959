// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("INVALID_CONFIG")

// Load reads config.yaml (plus config.<APP_ENVIRONMENT>.yaml when present)
// from the usual locations, applies environment overrides and defaults.
// A missing config file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return build(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that do
// not appear in any config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mock-data-forge")
	v.SetDefault("app.version", "1.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15000)
	v.SetDefault("server.write_timeout", 60000)
	v.SetDefault("server.shutdown_timeout", 10000)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("generator.seed", 0)
	v.SetDefault("generator.max_depth", 32)
	v.SetDefault("generator.max_string_length", 10000)
	v.SetDefault("generator.max_array_size", 10000)
	v.SetDefault("generator.max_count", 10000)
	v.SetDefault("generator.timeout", 30000)

	v.SetDefault("sinks.http.timeout", 10000)
	v.SetDefault("sinks.http.concurrency", 4)
	v.SetDefault("sinks.postgres.timeout", 30000)
	v.SetDefault("sinks.postgres.max_connections", 5)
	v.SetDefault("sinks.postgres.max_idle", 2)
	v.SetDefault("sinks.redis.timeout", 10000)
	v.SetDefault("sinks.elasticsearch.timeout", 30000)
	v.SetDefault("sinks.amqp.timeout", 10000)
	v.SetDefault("sinks.mongo.timeout", 30000)
	v.SetDefault("sinks.sns.timeout", 10000)
	v.SetDefault("sinks.sns.region", "us-east-1")

	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("camunda.max_jobs_active", 10)
	v.SetDefault("camunda.timeout", 30000)
	v.SetDefault("camunda.request_timeout", 30000)
	v.SetDefault("camunda.health_port", 8080)
	v.SetDefault("camunda.registry_path", "configs/activity-registry.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// loadEnvFile loads the first .env found walking up from the working
// directory to the module root.
func loadEnvFile() string {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
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

// applyDefaults fixes up values that were explicitly set to zero.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Generator.MaxDepth == 0 {
		cfg.Generator.MaxDepth = 32
	}
	if cfg.Sinks.HTTP.Concurrency == 0 {
		cfg.Sinks.HTTP.Concurrency = 1
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be between 1 and 65535, got %d", ErrInvalidConfig, cfg.Server.Port)
	}
	if cfg.Generator.MaxDepth < 1 {
		return fmt.Errorf("%w: generator.max_depth must be positive, got %d", ErrInvalidConfig, cfg.Generator.MaxDepth)
	}
	if cfg.Generator.MaxStringLength < 0 || cfg.Generator.MaxArraySize < 0 {
		return fmt.Errorf("%w: generator.max_string_length and generator.max_array_size must not be negative", ErrInvalidConfig)
	}
	if cfg.Generator.MaxCount < 0 {
		return fmt.Errorf("%w: generator.max_count must not be negative, got %d", ErrInvalidConfig, cfg.Generator.MaxCount)
	}
	if cfg.Sinks.HTTP.Concurrency < 1 {
		return fmt.Errorf("%w: sinks.http.concurrency must be positive, got %d", ErrInvalidConfig, cfg.Sinks.HTTP.Concurrency)
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, cfg.Logging.Level)
	}
	return nil
}

// RequireCamunda checks the settings the job worker cannot start without.
func (c *Config) RequireCamunda() error {
	if c.Camunda.BrokerAddress == "" {
		return fmt.Errorf("%w: camunda.broker_address is required", ErrInvalidConfig)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

