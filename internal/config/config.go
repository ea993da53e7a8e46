// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultBatchSize       = 500
	DefaultVerbose         = true
	DefaultDBFile          = "minimodel.db"
	DefaultModelSubdir     = "models"
	DefaultEndpointTimeout = 60 * time.Second
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures an OpenAI-compatible embedding service.
type Endpoint struct {
	baseURL           string
	model             string
	apiKey            string
	timeout           time.Duration
	dimensions        int
	requestsPerSecond float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{timeout: DefaultEndpointTimeout}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// Dimensions returns the requested vector size, or 0 for the model default.
func (e Endpoint) Dimensions() int { return e.dimensions }

// RequestsPerSecond returns the request rate cap, or 0 for no cap.
func (e Endpoint) RequestsPerSecond() float64 { return e.requestsPerSecond }

// IsConfigured returns true if the endpoint has required configuration.
func (e Endpoint) IsConfigured() bool {
	return e.model != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithDimensions sets the requested vector size.
func WithDimensions(n int) EndpointOption {
	return func(e *Endpoint) { e.dimensions = n }
}

// WithRequestsPerSecond caps the request rate.
func WithRequestsPerSecond(n float64) EndpointOption {
	return func(e *Endpoint) { e.requestsPerSecond = n }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// ObjectStore configures the MinIO or S3-compatible store object sources
// are read from.
type ObjectStore struct {
	endpoint  string
	accessKey string
	secretKey string
	region    string
	useSSL    bool
}

// NewObjectStore creates an ObjectStore.
func NewObjectStore(endpoint, accessKey, secretKey, region string, useSSL bool) ObjectStore {
	return ObjectStore{
		endpoint:  endpoint,
		accessKey: accessKey,
		secretKey: secretKey,
		region:    region,
		useSSL:    useSSL,
	}
}

// Endpoint returns the host:port of the store.
func (o ObjectStore) Endpoint() string { return o.endpoint }

// AccessKey returns the access key.
func (o ObjectStore) AccessKey() string { return o.accessKey }

// SecretKey returns the secret key.
func (o ObjectStore) SecretKey() string { return o.secretKey }

// Region returns the region.
func (o ObjectStore) Region() string { return o.region }

// UseSSL reports whether to connect over TLS.
func (o ObjectStore) UseSSL() bool { return o.useSSL }

// IsConfigured returns true if an endpoint is set.
func (o ObjectStore) IsConfigured() bool { return o.endpoint != "" }

// AppConfig holds the main application configuration.
type AppConfig struct {
	host              string
	port              int
	dataDir           string
	dbURL             string
	logLevel          string
	logFormat         LogFormat
	verbose           bool
	batchSize         int
	sourceManifest    string
	embeddingEndpoint *Endpoint
	objectStore       ObjectStore
	corsOrigins       []string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minimodel"
	}
	return filepath.Join(home, ".minimodel")
}

// DefaultDBURL returns the default SQLite URL inside dataDir.
func DefaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDBFile)
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:      DefaultHost,
		port:      DefaultPort,
		dataDir:   dataDir,
		dbURL:     DefaultDBURL(dataDir),
		logLevel:  DefaultLogLevel,
		logFormat: LogFormatPretty,
		verbose:   DefaultVerbose,
		batchSize: DefaultBatchSize,
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the destination database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Verbose reports whether the processor emits informational events.
func (c AppConfig) Verbose() bool { return c.verbose }

// BatchSize returns the default rows per batch.
func (c AppConfig) BatchSize() int { return c.batchSize }

// SourceManifest returns the path of the dataset source manifest.
func (c AppConfig) SourceManifest() string { return c.sourceManifest }

// EmbeddingEndpoint returns the embedding endpoint config, or nil when the
// local model is used.
func (c AppConfig) EmbeddingEndpoint() *Endpoint { return c.embeddingEndpoint }

// ObjectStore returns the object store config.
func (c AppConfig) ObjectStore() ObjectStore { return c.objectStore }

// CORSAllowedOrigins returns the origins browsers may call the HTTP API
// from. Empty disables CORS.
func (c AppConfig) CORSAllowedOrigins() []string { return c.corsOrigins }

// ModelDir returns the directory local embedding models are loaded from.
func (c AppConfig) ModelDir() string {
	return filepath.Join(c.dataDir, DefaultModelSubdir)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		// Keep the default database inside the data directory.
		if c.dbURL == "" || c.dbURL == DefaultDBURL(c.dataDir) {
			c.dbURL = DefaultDBURL(dir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithVerbose sets whether the processor emits informational events.
func WithVerbose(verbose bool) AppConfigOption {
	return func(c *AppConfig) { c.verbose = verbose }
}

// WithBatchSize sets the default rows per batch.
func WithBatchSize(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithSourceManifest sets the dataset source manifest path.
func WithSourceManifest(path string) AppConfigOption {
	return func(c *AppConfig) { c.sourceManifest = path }
}

// WithEmbeddingEndpoint sets the embedding endpoint.
func WithEmbeddingEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.embeddingEndpoint = &e }
}

// WithObjectStore sets the object store config.
func WithObjectStore(o ObjectStore) AppConfigOption {
	return func(c *AppConfig) { c.objectStore = o }
}

// WithCORSAllowedOrigins sets the origins allowed to call the HTTP API.
func WithCORSAllowedOrigins(origins ...string) AppConfigOption {
	return func(c *AppConfig) { c.corsOrigins = origins }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Credentials are never included.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.Int("batch_size", c.batchSize),
		slog.Bool("verbose", c.verbose),
		slog.String("source_manifest", c.sourceManifest),
		slog.String("embedding_base_url", c.endpointBaseURL()),
		slog.String("embedding_model", c.endpointModel()),
		slog.String("object_store", c.objectStore.endpoint),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

func (c AppConfig) endpointBaseURL() string {
	if c.embeddingEndpoint == nil {
		return "(not configured)"
	}
	return c.embeddingEndpoint.BaseURL()
}

func (c AppConfig) endpointModel() string {
	if c.embeddingEndpoint == nil {
		return "(local)"
	}
	return c.embeddingEndpoint.Model()
}
