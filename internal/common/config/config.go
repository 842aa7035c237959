// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Server    ServerConfig            `mapstructure:"server"`
	Generator GeneratorConfig         `mapstructure:"generator"`
	Sinks     SinksConfig             `mapstructure:"sinks"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// GeneratorConfig controls the generation engine.
type GeneratorConfig struct {
	Seed     uint64 `mapstructure:"seed"` // 0 picks a seed from the clock
	MaxDepth int    `mapstructure:"max_depth"`
	// caps on the max_length and size constraints
	MaxStringLength int `mapstructure:"max_string_length"`
	MaxArraySize    int `mapstructure:"max_array_size"`
	MaxCount int    `mapstructure:"max_count"` // 0 means unlimited
	Timeout  int    `mapstructure:"timeout"`   // milliseconds, per batch
}

// SinksConfig holds settings shared by the delivery endpoints.
type SinksConfig struct {
	HTTP          HTTPSinkConfig     `mapstructure:"http"`
	Postgres      PostgresSinkConfig `mapstructure:"postgres"`
	Redis         TimeoutConfig      `mapstructure:"redis"`
	Elasticsearch TimeoutConfig      `mapstructure:"elasticsearch"`
	AMQP          TimeoutConfig      `mapstructure:"amqp"`
	Mongo         TimeoutConfig      `mapstructure:"mongo"`
	SNS           SNSSinkConfig      `mapstructure:"sns"`
}

type HTTPSinkConfig struct {
	Timeout     int `mapstructure:"timeout"` // milliseconds, per request
	Concurrency int `mapstructure:"concurrency"`
}

type PostgresSinkConfig struct {
	Timeout        int `mapstructure:"timeout"` // milliseconds
	MaxConnections int `mapstructure:"max_connections"`
	MaxIdle        int `mapstructure:"max_idle"`
}

type SNSSinkConfig struct {
	Timeout int    `mapstructure:"timeout"` // milliseconds
	Region  string `mapstructure:"region"`  // used when the request names none
}

type TimeoutConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	HealthPort     int    `mapstructure:"health_port"`
	RegistryPath   string `mapstructure:"registry_path"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
