package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const (
	StorageMemory    = "memory"
	StorageFirestore = "firestore"

	RetrievalLexical   = "lexical"
	RetrievalEmbedding = "embedding"
)

type Config struct {
	Mode Mode   `yaml:"mode"`
	Port string `yaml:"port"`

	GCPProjectID string  `yaml:"gcp_project"`
	GCPLocation  string  `yaml:"gcp_location"`
	GoogleAPIKey string  `yaml:"-"`
	ModelName    string  `yaml:"model_name"`
	Temperature  float32 `yaml:"temperature"`

	StorageBackend string `yaml:"storage_backend"` // "memory" or "firestore"
	UseMockLLM     bool   `yaml:"use_mock_llm"`    // true = use mock even on GCP

	RetrievalBackend string `yaml:"retrieval_backend"` // "lexical" or "embedding"
	EmbeddingModel   string `yaml:"embedding_model"`
	ChunkSize        int    `yaml:"chunk_size"`
	ChunkOverlap     int    `yaml:"chunk_overlap"`
	SearchK          int    `yaml:"search_k"`
	MaxDocuments     int    `yaml:"max_documents"`
	MaxUploadBytes   int64  `yaml:"max_upload_bytes"`

	LogLevel string `yaml:"log_level"`
}

func defaults() *Config {
	return &Config{
		Mode:             ModeLocal,
		Port:             "8080",
		GCPLocation:      "us-central1",
		ModelName:        "gemini-2.5-flash",
		Temperature:      0.4,
		StorageBackend:   StorageMemory,
		RetrievalBackend: RetrievalLexical,
		EmbeddingModel:   "gemini-embedding-001",
		ChunkSize:        1000,
		ChunkOverlap:     200,
		SearchK:          4,
		MaxDocuments:     5,
		MaxUploadBytes:   32 << 20,
		LogLevel:         "info",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, def float32) (float32, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return float32(f), nil
}

// Load builds the config from defaults, then the YAML file named by
// COLAB_CONFIG_FILE (if any), then env vars. The result is validated.
func Load() (*Config, error) {
	cfg := defaults()
	mockSet := false

	if path := os.Getenv("COLAB_CONFIG_FILE"); path != "" {
		set, err := cfg.loadFile(path)
		if err != nil {
			return nil, err
		}
		mockSet = set
	}

	if err := cfg.applyEnv(mockSet); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML file on cfg. It reports whether the file set
// use_mock_llm explicitly.
func (c *Config) loadFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return false, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	var probe struct {
		UseMockLLM *bool `yaml:"use_mock_llm"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return probe.UseMockLLM != nil, nil
}

func (c *Config) applyEnv(mockSet bool) error {
	switch strings.ToLower(getEnv("COLAB_MODE", string(c.Mode))) {
	case "gcp":
		c.Mode = ModeGCP
	default:
		c.Mode = ModeLocal
	}

	c.Port = getEnv("COLAB_PORT", getEnv("PORT", c.Port))

	c.GCPProjectID = getEnv("COLAB_GCP_PROJECT", c.GCPProjectID)
	c.GCPLocation = getEnv("COLAB_GCP_LOCATION", c.GCPLocation)
	c.GoogleAPIKey = getEnv("GOOGLE_API_KEY", c.GoogleAPIKey)
	c.ModelName = getEnv("COLAB_MODEL_NAME", c.ModelName)

	c.StorageBackend = strings.ToLower(getEnv("COLAB_STORAGE_BACKEND", c.StorageBackend))

	mockDefault := c.UseMockLLM
	if !mockSet {
		mockDefault = c.Mode == ModeLocal && c.GoogleAPIKey == ""
	}
	c.UseMockLLM = getBoolEnv("COLAB_USE_MOCK_LLM", mockDefault)

	c.RetrievalBackend = strings.ToLower(getEnv("COLAB_RETRIEVAL_BACKEND", c.RetrievalBackend))
	c.EmbeddingModel = getEnv("COLAB_EMBEDDING_MODEL", c.EmbeddingModel)
	c.LogLevel = getEnv("COLAB_LOG_LEVEL", c.LogLevel)

	var errs []error
	var err error
	if c.Temperature, err = getFloatEnv("COLAB_TEMPERATURE", c.Temperature); err != nil {
		errs = append(errs, err)
	}
	if c.ChunkSize, err = getIntEnv("COLAB_CHUNK_SIZE", c.ChunkSize); err != nil {
		errs = append(errs, err)
	}
	if c.ChunkOverlap, err = getIntEnv("COLAB_CHUNK_OVERLAP", c.ChunkOverlap); err != nil {
		errs = append(errs, err)
	}
	if c.SearchK, err = getIntEnv("COLAB_SEARCH_K", c.SearchK); err != nil {
		errs = append(errs, err)
	}
	if c.MaxDocuments, err = getIntEnv("COLAB_MAX_DOCUMENTS", c.MaxDocuments); err != nil {
		errs = append(errs, err)
	}
	maxUpload, err := getIntEnv("COLAB_MAX_UPLOAD_BYTES", int(c.MaxUploadBytes))
	if err != nil {
		errs = append(errs, err)
	}
	c.MaxUploadBytes = int64(maxUpload)

	return errors.Join(errs...)
}

// HasCredentials reports whether a real Gemini backend can be built.
func (c *Config) HasCredentials() bool {
	return c.GoogleAPIKey != "" || c.GCPProjectID != ""
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		errs = append(errs, errors.New("COLAB_GCP_PROJECT must be set in gcp mode"))
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageFirestore:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("COLAB_GCP_PROJECT is required for the firestore storage backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	if !c.UseMockLLM && !c.HasCredentials() {
		errs = append(errs, errors.New("GOOGLE_API_KEY or COLAB_GCP_PROJECT is required unless COLAB_USE_MOCK_LLM is set"))
	}

	switch c.RetrievalBackend {
	case RetrievalLexical:
	case RetrievalEmbedding:
		if !c.HasCredentials() {
			errs = append(errs, errors.New("the embedding retrieval backend needs GOOGLE_API_KEY or COLAB_GCP_PROJECT"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown retrieval backend %q", c.RetrievalBackend))
	}

	if c.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunk size must be positive"))
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, errors.New("chunk overlap must be in [0, chunk size)"))
	}
	if c.SearchK <= 0 {
		errs = append(errs, errors.New("search k must be positive"))
	}
	if c.MaxDocuments <= 0 {
		errs = append(errs, errors.New("max documents must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}

	return errors.Join(errs...)
}
