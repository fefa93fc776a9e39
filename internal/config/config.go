// Package config layers defaults, an optional .env file, an optional YAML
// config file and the process environment into one Config, read once at
// startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgallion1/minutesdoc/internal/capability"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrConfigRead    = errors.New("config file unreadable")
)

type Config struct {
	Port string

	// Auth for the HTTP API
	MinutesdocAPIKey string

	// Remote service
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	RemoteTimeout    time.Duration

	AnalysisMaxTokens int
	PlanMaxTokens     int
	RenderMaxTokens   int

	// Capabilities
	CapabilityCatalog  string
	DocumentCapability string
	WordMCPURL         string
	DeepwikiURL        string

	// Output
	OutputDir      string
	OutputPrefix   string
	LocalRender    bool
	RequireToolUse bool

	// Upload limits and rate limiting
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int

	// Async job queue
	Workers      int
	MaxQueueSize int
	JobTTL       time.Duration

	// PDF
	PDFFallbackPdftotext bool

	Debug bool
}

var defaults = map[string]any{
	"port":                   "8090",
	"anthropic_model":        "claude-sonnet-4-20250514",
	"anthropic_base_url":     "https://api.anthropic.com",
	"remote_timeout":         "120s",
	"analysis_max_tokens":    2000,
	"plan_max_tokens":        3000,
	"render_max_tokens":      3000,
	"document_capability":    "word-mcp",
	"output_dir":             ".",
	"output_prefix":          "minutes",
	"local_render":           true,
	"require_tool_use":       false,
	"max_upload_bytes":       10485760, // 10MB
	"rate_limit_rps":         2.0,
	"rate_limit_burst":       5,
	"workers":                2,
	"max_queue_size":         50,
	"job_ttl":                "1h",
	"pdf_fallback_pdftotext": true,
	"debug":                  false,
}

// NewViper returns a viper instance with defaults set and the environment
// bound. Environment variables use the upper-case key, e.g. ANTHROPIC_API_KEY.
func NewViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFiles merges envFile (dotenv format) and then configFile (YAML) into v.
// Missing optional files are skipped; an explicitly named config file must
// exist.
func ReadFiles(v *viper.Viper, envFile, configFile string, configRequired bool) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.MergeInConfig(); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrConfigRead, envFile, err)
			}
		}
	}
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			if configRequired {
				return fmt.Errorf("%w: %s: %w", ErrConfigRead, configFile, err)
			}
			return nil
		}
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfigRead, configFile, err)
		}
	}
	return nil
}

func Load(v *viper.Viper) Config {
	return Config{
		Port: v.GetString("port"),

		MinutesdocAPIKey: v.GetString("minutesdoc_api_key"),

		AnthropicAPIKey:  v.GetString("anthropic_api_key"),
		AnthropicModel:   v.GetString("anthropic_model"),
		AnthropicBaseURL: v.GetString("anthropic_base_url"),
		RemoteTimeout:    v.GetDuration("remote_timeout"),

		AnalysisMaxTokens: v.GetInt("analysis_max_tokens"),
		PlanMaxTokens:     v.GetInt("plan_max_tokens"),
		RenderMaxTokens:   v.GetInt("render_max_tokens"),

		CapabilityCatalog:  v.GetString("capability_catalog"),
		DocumentCapability: v.GetString("document_capability"),
		WordMCPURL:         v.GetString("word_mcp_url"),
		DeepwikiURL:        v.GetString("deepwiki_api_url"),

		OutputDir:      v.GetString("output_dir"),
		OutputPrefix:   v.GetString("output_prefix"),
		LocalRender:    v.GetBool("local_render"),
		RequireToolUse: v.GetBool("require_tool_use"),

		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),

		Workers:      v.GetInt("workers"),
		MaxQueueSize: v.GetInt("max_queue_size"),
		JobTTL:       v.GetDuration("job_ttl"),

		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),

		Debug: v.GetBool("debug"),
	}
}

// Validate checks values every command depends on.
func (c Config) Validate() error {
	if c.AnalysisMaxTokens <= 0 || c.PlanMaxTokens <= 0 || c.RenderMaxTokens <= 0 {
		return fmt.Errorf("%w: max token settings must be positive", ErrInvalidConfig)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("%w: REMOTE_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.OutputPrefix == "" || strings.ContainsAny(c.OutputPrefix, `/\`) {
		return fmt.Errorf("%w: OUTPUT_PREFIX must be a plain file name prefix", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: OUTPUT_DIR is required", ErrInvalidConfig)
	}
	if c.DocumentCapability == "" {
		return fmt.Errorf("%w: DOCUMENT_CAPABILITY is required", ErrInvalidConfig)
	}
	return nil
}

// ValidateServe adds the checks only the HTTP server needs.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.MinutesdocAPIKey == "" {
		return fmt.Errorf("%w: MINUTESDOC_API_KEY is required", ErrInvalidConfig)
	}
	if c.Port == "" {
		return fmt.Errorf("%w: PORT is required", ErrInvalidConfig)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: MAX_UPLOAD_BYTES must be positive", ErrInvalidConfig)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%w: rate limit settings must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadCatalog reads the capability catalog and applies endpoint overrides.
func (c Config) LoadCatalog() (*capability.Catalog, error) {
	cat, err := capability.Load(c.CapabilityCatalog)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	overrides := map[string]string{
		"deepwiki": c.DeepwikiURL,
		"word-mcp": c.WordMCPURL,
	}
	for name, url := range overrides {
		if err := cat.SetURL(name, url); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return cat, nil
}
