package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., EMBEDDING_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.minimodel
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the destination database URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/minimodel.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Verbose controls processor informational events.
	// Env: VERBOSE (default: true)
	Verbose bool `envconfig:"VERBOSE" default:"true"`

	// BatchSize is the default number of rows per batch.
	// Env: BATCH_SIZE (default: 500)
	BatchSize int `envconfig:"BATCH_SIZE" default:"500"`

	// SourceManifest is the path of the YAML dataset source manifest.
	// Env: SOURCE_MANIFEST
	SourceManifest string `envconfig:"SOURCE_MANIFEST"`

	// CORSAllowedOrigins is a comma-separated list of browser origins allowed
	// to call the HTTP API.
	// Env: CORS_ALLOWED_ORIGINS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// EmbeddingEndpoint configures the embedding API.
	EmbeddingEndpoint EndpointEnv `envconfig:"EMBEDDING_ENDPOINT"`

	// ObjectStore configures object storage sources.
	ObjectStore ObjectStoreEnv `envconfig:"OBJECT_STORE"`
}

// EndpointEnv holds environment configuration for an embedding endpoint.
type EndpointEnv struct {
	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier (e.g., text-embedding-3-small).
	// Env: *_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// Dimensions is the requested vector size; 0 keeps the model default.
	// Env: *_DIMENSIONS
	Dimensions int `envconfig:"DIMENSIONS"`

	// RequestsPerSecond caps the request rate; 0 disables the cap.
	// Env: *_REQUESTS_PER_SECOND
	RequestsPerSecond float64 `envconfig:"REQUESTS_PER_SECOND"`
}

// ObjectStoreEnv holds environment configuration for object storage.
type ObjectStoreEnv struct {
	// Endpoint is the host:port of the MinIO or S3 service.
	// Env: OBJECT_STORE_ENDPOINT
	Endpoint string `envconfig:"ENDPOINT"`

	// AccessKey is the access key ID.
	// Env: OBJECT_STORE_ACCESS_KEY
	AccessKey string `envconfig:"ACCESS_KEY"`

	// SecretKey is the secret access key.
	// Env: OBJECT_STORE_SECRET_KEY
	SecretKey string `envconfig:"SECRET_KEY"`

	// UseSSL connects over TLS.
	// Env: OBJECT_STORE_USE_SSL (default: true)
	UseSSL bool `envconfig:"USE_SSL" default:"true"`

	// Region is the bucket region.
	// Env: OBJECT_STORE_REGION
	Region string `envconfig:"REGION"`
}

// LoadFromEnv loads configuration from environment variables.
// It uses no prefix.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "MINIMODEL" would require MINIMODEL_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	cfg = applyOption(cfg, WithVerbose(e.Verbose))
	cfg = applyOption(cfg, WithBatchSize(e.BatchSize))

	if e.SourceManifest != "" {
		cfg = applyOption(cfg, WithSourceManifest(e.SourceManifest))
	}
	if len(e.CORSAllowedOrigins) > 0 {
		cfg = applyOption(cfg, WithCORSAllowedOrigins(e.CORSAllowedOrigins...))
	}

	if e.EmbeddingEndpoint.IsConfigured() {
		cfg = applyOption(cfg, WithEmbeddingEndpoint(e.EmbeddingEndpoint.ToEndpoint()))
	}

	if e.ObjectStore.Endpoint != "" {
		cfg = applyOption(cfg, WithObjectStore(e.ObjectStore.ToObjectStore()))
	}

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// IsConfigured returns true if the endpoint has a model configured.
func (e EndpointEnv) IsConfigured() bool {
	return e.Model != ""
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithModel(e.Model),
		WithTimeout(time.Duration(e.Timeout * float64(time.Second))),
		WithDimensions(e.Dimensions),
		WithRequestsPerSecond(e.RequestsPerSecond),
	}

	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}

	return NewEndpointWithOptions(opts...)
}

// ToObjectStore converts ObjectStoreEnv to ObjectStore.
func (o ObjectStoreEnv) ToObjectStore() ObjectStore {
	return NewObjectStore(o.Endpoint, o.AccessKey, o.SecretKey, o.Region, o.UseSSL)
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
