// Package config provides configuration loading for the question agent.
// Supports YAML files, .env files, environment variables, and flag overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported LLM providers.
const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

// Ollama defaults.
const (
	DefaultOllamaURL   = "http://127.0.0.1:11434"
	DefaultOllamaModel = "llama3.2:3b"
)

// Config holds all configuration for the question agent.
type Config struct {
	OCR           OCRConfig           `yaml:"ocr"`
	Preprocess    PreprocessConfig    `yaml:"preprocess"`
	LLM           LLMConfig           `yaml:"llm"`
	Notion        NotionConfig        `yaml:"notion"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// OCRConfig holds text recognition settings.
type OCRConfig struct {
	Languages      []string `yaml:"languages"`
	UseAccelerator bool     `yaml:"use_accelerator"`
}

// PreprocessConfig holds image cleanup parameters.
type PreprocessConfig struct {
	TargetWidth         int     `yaml:"target_width"`
	DarkMeanThreshold   float64 `yaml:"dark_mean_threshold"`
	BilateralDiameter   int     `yaml:"bilateral_diameter"`
	BilateralSigmaColor float64 `yaml:"bilateral_sigma_color"`
	BilateralSigmaSpace float64 `yaml:"bilateral_sigma_space"`
	ThresholdBlockSize  int     `yaml:"threshold_block_size"`
	ThresholdBias       int     `yaml:"threshold_bias"`
}

// LLMConfig holds language model settings.
type LLMConfig struct {
	Provider            string        `yaml:"provider"`
	Model               string        `yaml:"model"`
	BaseURL             string        `yaml:"base_url"`
	ExplanationLanguage string        `yaml:"explanation_language"`
	Timeout             time.Duration `yaml:"timeout"`
	APIKey              string        `yaml:"-"`
}

// NotionConfig holds publishing settings.
type NotionConfig struct {
	Enabled        bool          `yaml:"enabled"`
	ParentPageID   string        `yaml:"parent_page_id"`
	BaseURL        string        `yaml:"base_url"`
	Version        string        `yaml:"version"`
	CorrectLabel   string        `yaml:"correct_label"`
	IncorrectLabel string        `yaml:"incorrect_label"`
	Timeout        time.Duration `yaml:"timeout"`
	Token          string        `yaml:"-"`
}

// OutputConfig holds artifact settings.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	HTML     bool   `yaml:"html"`
	DebugDir string `yaml:"debug_dir"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads .env files, an optional YAML file, and environment overrides.
// overrides run last, before validation; the CLI uses them for flags.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	// Ignore errors: .env files are optional.
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Languages:      []string{"en"},
			UseAccelerator: true,
		},
		Preprocess: PreprocessConfig{
			TargetWidth:         1600,
			DarkMeanThreshold:   100,
			BilateralDiameter:   9,
			BilateralSigmaColor: 15,
			BilateralSigmaSpace: 15,
			ThresholdBlockSize:  15,
			ThresholdBias:       8,
		},
		LLM: LLMConfig{
			Provider:            ProviderOllama,
			Model:               DefaultOllamaModel,
			BaseURL:             DefaultOllamaURL,
			ExplanationLanguage: "Spanish",
			Timeout:             5 * time.Minute,
		},
		Notion: NotionConfig{
			Enabled:        true,
			BaseURL:        "https://api.notion.com",
			Version:        "2022-06-28",
			CorrectLabel:   "Correcto",
			IncorrectLabel: "Incorrecto",
			Timeout:        30 * time.Second,
		},
		Output: OutputConfig{
			Dir: "outputs",
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// credentials are checked when the model client is built; ocr-only runs never need them
	switch c.LLM.Provider {
	case ProviderOllama, ProviderOpenRouter:
	default:
		return fmt.Errorf("invalid llm provider: %s", c.LLM.Provider)
	}

	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("at least one OCR language is required")
	}

	if c.Notion.Enabled && c.Notion.ParentPageID == "" {
		return fmt.Errorf("notion publishing requires a parent page ID (NOTION_PARENT_PAGE_ID)")
	}

	p := c.Preprocess
	if p.TargetWidth < 1 {
		return fmt.Errorf("target_width must be positive, got %d", p.TargetWidth)
	}
	if p.BilateralDiameter < 1 {
		return fmt.Errorf("bilateral_diameter must be positive, got %d", p.BilateralDiameter)
	}
	if p.ThresholdBlockSize < 3 || p.ThresholdBlockSize%2 == 0 {
		return fmt.Errorf("threshold_block_size must be odd and >= 3, got %d", p.ThresholdBlockSize)
	}

	return nil
}

// DisableNotion turns publishing to Notion off and skips its validation.
func (c *Config) DisableNotion() {
	c.Notion.Enabled = false
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		cfg.Notion.Token = v
	}

	if v := os.Getenv("NOTION_PARENT_PAGE_ID"); v != "" {
		cfg.Notion.ParentPageID = v
	}

	if v := os.Getenv("NOTION_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Notion.Enabled = enabled
		}
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("OLLAMA_HOST"); v != "" && cfg.LLM.Provider == ProviderOllama {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		cfg.OCR.Languages = strings.Split(v, ",")
	}

	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
