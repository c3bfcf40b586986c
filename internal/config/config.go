package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Redis  RedisConfig  `mapstructure:"redis"  validate:"required"`
	Ingest IngestConfig `mapstructure:"ingest" validate:"required"`
	Worker WorkerConfig `mapstructure:"worker" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// RedisConfig contains connection settings for the Redis backing store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"   validate:"gte=0"`
}

// IngestConfig contains settings for the image ingestion path.
type IngestConfig struct {
	// PayloadTTLSeconds bounds how long raw image bytes are retained.
	// Metadata is never expired.
	PayloadTTLSeconds int `mapstructure:"payload_ttl_seconds" validate:"required,gt=0"`

	// MaxBatchSize caps the number of images accepted in one upload batch.
	MaxBatchSize int `mapstructure:"max_batch_size" validate:"required,gt=0"`

	// QueueName is the Redis list holding pending image IDs.
	QueueName string `mapstructure:"queue_name" validate:"required"`
}

// WorkerConfig contains settings for the analysis worker loop.
type WorkerConfig struct {
	// PopTimeoutSeconds is how long one blocking queue pop waits before the
	// loop re-checks its shutdown signal.
	PopTimeoutSeconds int `mapstructure:"pop_timeout_seconds" validate:"required,gt=0"`

	// ErrorBackoffSeconds is how long the loop pauses after a queue or
	// store transport failure before retrying.
	ErrorBackoffSeconds int `mapstructure:"error_backoff_seconds" validate:"required,gt=0"`
}

// LLMConfig contains all vision model integration related settings.
// Only the worker process requires it; the API server leaves it empty.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"     validate:"gte=0"`
}
