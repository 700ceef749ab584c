package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Storage: StorageConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
		},
		Embedding:  EmbeddingConfig{Model: "test-embedding"},
		Generation: GenerationConfig{Model: "test-chat"},
		Ingest:     IngestConfig{ChunkSize: 1200, ChunkOverlap: 200},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "s3"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}

	expected := `storage.driver must be "redis" or "fs", got "s3"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_FsDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage = StorageConfig{Driver: "fs", Root: "/var/lib/quizdex"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Storage.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for fs driver without root")
	}
}

func TestValidate_MissingModels(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}

	cfg = validConfig()
	cfg.Generation.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing generation model")
	}
}

func TestValidate_ChunkOverlap(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.ChunkOverlap = cfg.Ingest.ChunkSize

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= size")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 60 {
		t.Errorf("expected ReadTimeoutSec=60, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Storage.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "quizdex:" {
		t.Errorf("expected KeyPrefix='quizdex:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Storage.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Storage.ReadinessTimeout)
	}
	if cfg.Ingest.ChunkSize != 1200 {
		t.Errorf("expected ChunkSize=1200, got %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Ingest.ChunkOverlap)
	}
	if cfg.Ingest.MaxUploadBytes != 64<<20 {
		t.Errorf("expected MaxUploadBytes=64MiB, got %d", cfg.Ingest.MaxUploadBytes)
	}
	if cfg.Generation.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %f", cfg.Generation.Temperature)
	}
	if cfg.Extraction.TimeoutSec != 60 {
		t.Errorf("expected Extraction.TimeoutSec=60, got %d", cfg.Extraction.TimeoutSec)
	}
}

func TestApplyDefaults_GenerationProvider(t *testing.T) {
	// Unset generation provider inherits the embedding provider.
	cfg := Config{Embedding: EmbeddingConfig{Provider: "openai"}}
	cfg.ApplyDefaults()
	if cfg.Generation.Provider != "openai" {
		t.Errorf("expected Generation.Provider=openai, got %q", cfg.Generation.Provider)
	}

	// An explicit generation provider is kept.
	cfg = Config{
		Embedding:  EmbeddingConfig{Provider: "openai"},
		Generation: GenerationConfig{Provider: "groq"},
	}
	cfg.ApplyDefaults()
	if cfg.Generation.Provider != "groq" {
		t.Errorf("expected Generation.Provider=groq, got %q", cfg.Generation.Provider)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Storage: StorageConfig{Driver: "fs", KeyPrefix: "custom:", ReadinessTimeout: 15},
		Ingest:  IngestConfig{ChunkSize: 800, ChunkOverlap: 100, MaxUploadBytes: 1 << 20},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.Driver != "fs" {
		t.Errorf("expected Driver=fs, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Ingest.ChunkSize != 800 {
		t.Errorf("expected ChunkSize=800, got %d", cfg.Ingest.ChunkSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("QUIZDEX_TEST_KEY", "secret")

	in := []byte("api_key: ${QUIZDEX_TEST_KEY}\nbase_url: ${QUIZDEX_TEST_URL:-http://localhost:9999}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: secret\nbase_url: http://localhost:9999\n" {
		t.Errorf("unexpected expansion: %q", out)
	}
}
