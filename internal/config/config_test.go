package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"COLAB_CONFIG_FILE", "COLAB_MODE", "COLAB_PORT", "PORT", "COLAB_GCP_PROJECT",
	"COLAB_GCP_LOCATION", "GOOGLE_API_KEY", "COLAB_MODEL_NAME", "COLAB_STORAGE_BACKEND",
	"COLAB_USE_MOCK_LLM", "COLAB_RETRIEVAL_BACKEND", "COLAB_EMBEDDING_MODEL",
	"COLAB_LOG_LEVEL", "COLAB_TEMPERATURE", "COLAB_CHUNK_SIZE", "COLAB_CHUNK_OVERLAP",
	"COLAB_SEARCH_K", "COLAB_MAX_DOCUMENTS", "COLAB_MAX_UPLOAD_BYTES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.UseMockLLM)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, RetrievalLexical, cfg.RetrievalBackend)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 4, cfg.SearchK)
	assert.Equal(t, 5, cfg.MaxDocuments)
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-6)
}

func TestAPIKeyTurnsOffMockByDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.UseMockLLM)
}

func TestFileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "colab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
search_k: 6
chunk_size: 500
chunk_overlap: 50
use_mock_llm: true
log_level: debug
`), 0o600))

	t.Setenv("COLAB_CONFIG_FILE", path)
	t.Setenv("COLAB_SEARCH_K", "3")
	t.Setenv("GOOGLE_API_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 3, cfg.SearchK, "env overrides the file")
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.UseMockLLM, "explicit file value wins over the api-key default")
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("COLAB_SEARCH_K", "many")
	_, err := Load()
	assert.ErrorContains(t, err, "COLAB_SEARCH_K")

	clearEnv(t)
	t.Setenv("COLAB_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"gcp without project", func(c *Config) { c.Mode = ModeGCP }, "gcp mode"},
		{"firestore without project", func(c *Config) { c.StorageBackend = StorageFirestore }, "firestore"},
		{"real llm without credentials", func(c *Config) { c.UseMockLLM = false }, "GOOGLE_API_KEY"},
		{"embedding without credentials", func(c *Config) { c.RetrievalBackend = RetrievalEmbedding }, "embedding"},
		{"overlap too large", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, "overlap"},
		{"unknown storage", func(c *Config) { c.StorageBackend = "sqlite" }, "unknown storage"},
		{"zero k", func(c *Config) { c.SearchK = 0 }, "search k"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaults()
			cfg.UseMockLLM = true
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	ok := defaults()
	ok.UseMockLLM = true
	assert.NoError(t, ok.Validate())
}
