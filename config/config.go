package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/pipeline"
)

// ModelsConfig configures the OpenAI-compatible model services.
type ModelsConfig struct {
	// Host is used for both services when the per-service hosts are empty.
	Host              string  `yaml:"host"`
	GeneratorHost     string  `yaml:"generator_host,omitempty"`
	EmbeddingHost     string  `yaml:"embedding_host,omitempty"`
	GeneratorModel    string  `yaml:"generator_model"`
	EmbeddingModel    string  `yaml:"embedding_model"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// RetrievalConfig tunes the retrieval loop. Zero values fall back to the
// pipeline defaults.
type RetrievalConfig struct {
	Limit          int     `yaml:"limit,omitempty"`
	MinScore       float32 `yaml:"min_score,omitempty"`
	VectorWeight   float32 `yaml:"vector_weight,omitempty"`
	TextWeight     float32 `yaml:"text_weight,omitempty"`
	MaxIterations  int     `yaml:"max_iterations,omitempty"`
	DedupThreshold float32 `yaml:"dedup_threshold,omitempty"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	IndexFile string          `yaml:"index_file"`
	CacheDir  string          `yaml:"cache_dir,omitempty"`
	Models    ModelsConfig    `yaml:"models"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Load reads a config from the given path. A missing file is not an error:
// defaults are returned.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./rgfe.yaml first, then ~/.config/rgfe/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "rgfe.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// AI converts the models section into the provider configuration.
func (c *AppConfig) AI() *ai.Config {
	opts := []ai.ConfigOption{}
	if c.Models.Host != "" {
		opts = append(opts, ai.WithHost(c.Models.Host))
	}
	if c.Models.GeneratorHost != "" {
		opts = append(opts, ai.WithGeneratorHost(c.Models.GeneratorHost))
	}
	if c.Models.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(c.Models.EmbeddingHost))
	}
	if c.Models.GeneratorModel != "" {
		opts = append(opts, ai.WithGeneratorModel(c.Models.GeneratorModel))
	}
	if c.Models.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(c.Models.EmbeddingModel))
	}
	if c.Models.RequestsPerSecond > 0 {
		opts = append(opts, ai.WithRequestsPerSecond(c.Models.RequestsPerSecond))
	}
	return ai.NewConfig(opts...)
}

// Pipeline converts the retrieval section into the engine configuration,
// filling unset fields from the pipeline defaults.
func (c *AppConfig) Pipeline() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	if c.Retrieval.Limit > 0 {
		cfg.Limit = c.Retrieval.Limit
	}
	if c.Retrieval.MinScore > 0 {
		cfg.MinScore = c.Retrieval.MinScore
	}
	if c.Retrieval.VectorWeight > 0 || c.Retrieval.TextWeight > 0 {
		cfg.VectorWeight = c.Retrieval.VectorWeight
		cfg.TextWeight = c.Retrieval.TextWeight
	}
	if c.Retrieval.MaxIterations > 0 {
		cfg.MaxIterations = c.Retrieval.MaxIterations
	}
	if c.Retrieval.DedupThreshold > 0 {
		cfg.DedupThreshold = c.Retrieval.DedupThreshold
	}
	return cfg
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rgfe", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	aiDefaults := ai.DefaultConfig()
	return &AppConfig{
		IndexFile: "smrthi-rgveda-qwen.bin",
		Models: ModelsConfig{
			Host:           aiDefaults.GeneratorHost,
			GeneratorModel: aiDefaults.GeneratorModel,
			EmbeddingModel: aiDefaults.EmbeddingModel,
		},
	}
}

func applyDefaults(cfg *AppConfig) {
	defaults := defaultConfig()
	if cfg.IndexFile == "" {
		cfg.IndexFile = defaults.IndexFile
	}
	if cfg.Models.Host == "" && cfg.Models.GeneratorHost == "" {
		cfg.Models.Host = defaults.Models.Host
	}
	if cfg.Models.GeneratorModel == "" {
		cfg.Models.GeneratorModel = defaults.Models.GeneratorModel
	}
	if cfg.Models.EmbeddingModel == "" {
		cfg.Models.EmbeddingModel = defaults.Models.EmbeddingModel
	}
}

// applyEnvOverrides lets the environment win over file values, so that a
// .env file or the shell can redirect a run without editing the config.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("RGFE_INDEX_FILE"); v != "" {
		cfg.IndexFile = v
	}
	if v := os.Getenv("RGFE_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("RGFE_MODELS_HOST"); v != "" {
		cfg.Models.Host = v
	}
	if v := os.Getenv("RGFE_GENERATOR_MODEL"); v != "" {
		cfg.Models.GeneratorModel = v
	}
	if v := os.Getenv("RGFE_EMBEDDING_MODEL"); v != "" {
		cfg.Models.EmbeddingModel = v
	}
	if v := os.Getenv("RGFE_REQUESTS_PER_SECOND"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Models.RequestsPerSecond = rps
		}
	}
}
