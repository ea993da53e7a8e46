package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestDefaultConstants(t *testing.T) {
	if DefaultHost != "0.0.0.0" {
		t.Errorf("DefaultHost = %v, want '0.0.0.0'", DefaultHost)
	}
	if DefaultPort != 8080 {
		t.Errorf("DefaultPort = %v, want 8080", DefaultPort)
	}
	if DefaultLogLevel != "INFO" {
		t.Errorf("DefaultLogLevel = %v, want 'INFO'", DefaultLogLevel)
	}
	if DefaultBatchSize != 500 {
		t.Errorf("DefaultBatchSize = %v, want 500", DefaultBatchSize)
	}
	if !DefaultVerbose {
		t.Error("DefaultVerbose should be true")
	}
	if DefaultModelSubdir != "models" {
		t.Errorf("DefaultModelSubdir = %v, want 'models'", DefaultModelSubdir)
	}
	if DefaultEndpointTimeout != 60*time.Second {
		t.Errorf("DefaultEndpointTimeout = %v, want 60s", DefaultEndpointTimeout)
	}
}

func TestEndpoint_Defaults(t *testing.T) {
	e := NewEndpoint()

	if e.BaseURL() != "" {
		t.Errorf("BaseURL() = %v, want empty", e.BaseURL())
	}
	if e.Model() != "" {
		t.Errorf("Model() = %v, want empty", e.Model())
	}
	if e.Timeout() != DefaultEndpointTimeout {
		t.Errorf("Timeout() = %v, want %v", e.Timeout(), DefaultEndpointTimeout)
	}
	if e.Dimensions() != 0 {
		t.Errorf("Dimensions() = %v, want 0", e.Dimensions())
	}
	if e.RequestsPerSecond() != 0 {
		t.Errorf("RequestsPerSecond() = %v, want 0", e.RequestsPerSecond())
	}
	if e.IsConfigured() {
		t.Error("IsConfigured() should be false without a model")
	}
}

func TestEndpoint_WithOptions(t *testing.T) {
	e := NewEndpointWithOptions(
		WithBaseURL("https://api.openai.com/v1"),
		WithModel("text-embedding-3-small"),
		WithAPIKey("sk-test"),
		WithTimeout(10*time.Second),
		WithDimensions(256),
		WithRequestsPerSecond(2.5),
	)

	if e.BaseURL() != "https://api.openai.com/v1" {
		t.Errorf("BaseURL() = %v, want 'https://api.openai.com/v1'", e.BaseURL())
	}
	if e.Model() != "text-embedding-3-small" {
		t.Errorf("Model() = %v, want 'text-embedding-3-small'", e.Model())
	}
	if e.APIKey() != "sk-test" {
		t.Errorf("APIKey() = %v, want 'sk-test'", e.APIKey())
	}
	if e.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", e.Timeout())
	}
	if e.Dimensions() != 256 {
		t.Errorf("Dimensions() = %v, want 256", e.Dimensions())
	}
	if e.RequestsPerSecond() != 2.5 {
		t.Errorf("RequestsPerSecond() = %v, want 2.5", e.RequestsPerSecond())
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() should be true with a model")
	}
}

func TestObjectStore(t *testing.T) {
	o := NewObjectStore("localhost:9000", "access", "secret", "us-east-1", false)

	if o.Endpoint() != "localhost:9000" {
		t.Errorf("Endpoint() = %v, want 'localhost:9000'", o.Endpoint())
	}
	if o.AccessKey() != "access" || o.SecretKey() != "secret" {
		t.Errorf("credentials = %v/%v, want access/secret", o.AccessKey(), o.SecretKey())
	}
	if o.Region() != "us-east-1" {
		t.Errorf("Region() = %v, want 'us-east-1'", o.Region())
	}
	if o.UseSSL() {
		t.Error("UseSSL() should be false")
	}
	if !o.IsConfigured() {
		t.Error("IsConfigured() should be true with an endpoint")
	}
	if (ObjectStore{}).IsConfigured() {
		t.Error("zero ObjectStore should not be configured")
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.Host() != DefaultHost {
		t.Errorf("Host() = %v, want '%v'", cfg.Host(), DefaultHost)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %v, want %v", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %v, want '%v'", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.LogFormat() != LogFormatPretty {
		t.Errorf("LogFormat() = %v, want 'pretty'", cfg.LogFormat())
	}
	if !cfg.Verbose() {
		t.Error("Verbose() should be true by default")
	}
	if cfg.BatchSize() != DefaultBatchSize {
		t.Errorf("BatchSize() = %v, want %v", cfg.BatchSize(), DefaultBatchSize)
	}
	if cfg.SourceManifest() != "" {
		t.Errorf("SourceManifest() = %v, want empty", cfg.SourceManifest())
	}
	if cfg.EmbeddingEndpoint() != nil {
		t.Error("EmbeddingEndpoint() should be nil by default")
	}
	if cfg.ObjectStore().IsConfigured() {
		t.Error("ObjectStore() should not be configured by default")
	}
	if !strings.HasSuffix(cfg.DataDir(), ".minimodel") {
		t.Errorf("DataDir() = %v, want suffix '.minimodel'", cfg.DataDir())
	}
	if !strings.HasSuffix(cfg.DBURL(), "minimodel.db") {
		t.Errorf("DBURL() = %v, want suffix 'minimodel.db'", cfg.DBURL())
	}
}

func TestAppConfig_WithOptions(t *testing.T) {
	embeddingEndpoint := NewEndpointWithOptions(WithModel("embed-model"))

	cfg := NewAppConfigWithOptions(
		WithHost("127.0.0.1"),
		WithPort(9090),
		WithDataDir("/custom/data"),
		WithDBURL("postgres://localhost/minimodel"),
		WithLogLevel("DEBUG"),
		WithLogFormat(LogFormatJSON),
		WithVerbose(false),
		WithBatchSize(50),
		WithSourceManifest("/etc/minimodel/source.yaml"),
		WithEmbeddingEndpoint(embeddingEndpoint),
		WithObjectStore(NewObjectStore("minio:9000", "a", "b", "", true)),
	)

	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %v, want '127.0.0.1:9090'", cfg.Addr())
	}
	if cfg.DataDir() != "/custom/data" {
		t.Errorf("DataDir() = %v, want '/custom/data'", cfg.DataDir())
	}
	if cfg.DBURL() != "postgres://localhost/minimodel" {
		t.Errorf("DBURL() = %v, want 'postgres://localhost/minimodel'", cfg.DBURL())
	}
	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %v, want 'DEBUG'", cfg.LogLevel())
	}
	if cfg.LogFormat() != LogFormatJSON {
		t.Errorf("LogFormat() = %v, want 'json'", cfg.LogFormat())
	}
	if cfg.Verbose() {
		t.Error("Verbose() should be false")
	}
	if cfg.BatchSize() != 50 {
		t.Errorf("BatchSize() = %v, want 50", cfg.BatchSize())
	}
	if cfg.SourceManifest() != "/etc/minimodel/source.yaml" {
		t.Errorf("SourceManifest() = %v, want '/etc/minimodel/source.yaml'", cfg.SourceManifest())
	}
	if cfg.EmbeddingEndpoint() == nil || cfg.EmbeddingEndpoint().Model() != "embed-model" {
		t.Error("EmbeddingEndpoint() should carry 'embed-model'")
	}
	if cfg.ObjectStore().Endpoint() != "minio:9000" {
		t.Errorf("ObjectStore().Endpoint() = %v, want 'minio:9000'", cfg.ObjectStore().Endpoint())
	}
}

func TestAppConfig_NonPositiveBatchSizeKeepsDefault(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithBatchSize(0), WithBatchSize(-3))

	if cfg.BatchSize() != DefaultBatchSize {
		t.Errorf("BatchSize() = %v, want %v", cfg.BatchSize(), DefaultBatchSize)
	}
}

func TestAppConfig_ModelDir(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/data"))

	if cfg.ModelDir() != "/data/models" {
		t.Errorf("ModelDir() = %v, want '/data/models'", cfg.ModelDir())
	}
}

func TestAppConfig_DataDirUpdatesDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/custom"))

	expected := "sqlite:////custom/minimodel.db"
	if cfg.DBURL() != expected {
		t.Errorf("DBURL() = %v, want %v", cfg.DBURL(), expected)
	}
}

func TestAppConfig_DataDirKeepsExplicitDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithDBURL("postgres://db/minimodel"),
		WithDataDir("/custom"),
	)

	if cfg.DBURL() != "postgres://db/minimodel" {
		t.Errorf("DBURL() = %v, want 'postgres://db/minimodel'", cfg.DBURL())
	}
}

func TestAppConfig_Apply(t *testing.T) {
	base := NewAppConfig()
	updated := base.Apply(WithBatchSize(7))

	if base.BatchSize() != DefaultBatchSize {
		t.Errorf("base BatchSize() = %v, want %v", base.BatchSize(), DefaultBatchSize)
	}
	if updated.BatchSize() != 7 {
		t.Errorf("updated BatchSize() = %v, want 7", updated.BatchSize())
	}
}

func TestAppConfig_EnsureDataDir(t *testing.T) {
	dir := t.TempDir() + "/nested/data"
	cfg := NewAppConfigWithOptions(WithDataDir(dir))

	if err := cfg.EnsureDataDir(); err != nil {
		t.Fatalf("EnsureDataDir() error = %v", err)
	}
	got, err := PrepareDataDir(dir)
	if err != nil {
		t.Fatalf("PrepareDataDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("PrepareDataDir() = %v, want %v", got, dir)
	}
}

func TestAppConfig_LogAttrsMasksCredentials(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithDBURL("postgres://user:hunter2@db/minimodel"),
		WithEmbeddingEndpoint(NewEndpointWithOptions(WithModel("m"), WithAPIKey("sk-secret"))),
		WithObjectStore(NewObjectStore("minio:9000", "AKIA", "shh", "", true)),
	)

	for _, attr := range cfg.LogAttrs() {
		value := attr.Value.String()
		for _, secret := range []string{"hunter2", "sk-secret", "AKIA", "shh"} {
			if strings.Contains(value, secret) {
				t.Errorf("attr %s = %v leaks %q", attr.Key, value, secret)
			}
		}
	}

	attrs := map[string]slog.Value{}
	for _, attr := range cfg.LogAttrs() {
		attrs[attr.Key] = attr.Value
	}
	if attrs["db_url"].String() != "postgres://***@***" {
		t.Errorf("db_url = %v, want masked", attrs["db_url"])
	}
	if attrs["embedding_model"].String() != "m" {
		t.Errorf("embedding_model = %v, want 'm'", attrs["embedding_model"])
	}
}
