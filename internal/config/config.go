package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emojilens/backend/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrontendOrigin = "http://localhost:8501"
	DefaultPort           = "8000"
	DefaultOpenAIModel    = "gpt-4.1-mini"
	DefaultOpenAITimeout  = 120 * time.Second

	configPathEnv       = "EMOJILENS_CONFIG"
	openAIAPIKeyEnv     = "OPENAI_API_KEY"
	openAIProjectKeyEnv = "OPENAI_PROJECT_KEY"
	openAIModelEnv      = "OPENAI_MODEL"
	openAIBaseURLEnv    = "OPENAI_BASE_URL"
	openAITimeoutEnv    = "OPENAI_TIMEOUT_SECONDS"
	databaseURLEnv      = "DATABASE_URL"
	frontendOriginEnv   = "FRONTEND_ORIGIN"
	portEnv             = "PORT"
	ginModeEnv          = "GIN_MODE"
	adminSecretEnv      = "ADMIN_JWT_SECRET"
)

// Config is the process-wide settings snapshot. It is built once by Load and
// passed by value; nothing mutates it afterwards.
type Config struct {
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// OpenAIConfig holds the server-side credentials and call settings.
type OpenAIConfig struct {
	APIKey         string `yaml:"apiKey"`
	ProjectKey     string `yaml:"projectKey"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout returns the per-call HTTP timeout for the provider.
func (o OpenAIConfig) Timeout() time.Duration {
	if o.TimeoutSeconds > 0 {
		return time.Duration(o.TimeoutSeconds) * time.Second
	}
	return DefaultOpenAITimeout
}

// DatabaseConfig describes the optional Postgres target. An empty URL
// disables persistence.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig groups HTTP server settings.
type ServerConfig struct {
	Port           string  `yaml:"port"`
	GinMode        string  `yaml:"ginMode"`
	FrontendOrigin *string `yaml:"frontendOrigin"`
	AdminJWTSecret string  `yaml:"adminJwtSecret"`
}

// AllowedOrigin is the CORS origin the server answers with. "*" when the
// origin was explicitly configured empty.
func (s ServerConfig) AllowedOrigin() string {
	if s.FrontendOrigin == nil {
		return DefaultFrontendOrigin
	}
	if origin := strings.TrimSpace(*s.FrontendOrigin); origin != "" {
		return origin
	}
	return "*"
}

// AdminEnabled reports whether the admin API group is mounted.
func (s ServerConfig) AdminEnabled() bool {
	return s.AdminJWTSecret != ""
}

// Load reads the optional YAML file named by EMOJILENS_CONFIG and then applies
// environment overrides. Missing values are valid; the components that need
// them decide what to do.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			logger.Warn("Ignoring config file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides(os.LookupEnv)
	return cfg
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.OpenAI.APIKey, openAIAPIKeyEnv)
	set(&c.OpenAI.ProjectKey, openAIProjectKeyEnv)
	set(&c.OpenAI.Model, openAIModelEnv)
	set(&c.OpenAI.BaseURL, openAIBaseURLEnv)
	set(&c.Database.URL, databaseURLEnv)
	set(&c.Server.Port, portEnv)
	set(&c.Server.GinMode, ginModeEnv)
	set(&c.Server.AdminJWTSecret, adminSecretEnv)

	if v, ok := lookup(openAITimeoutEnv); ok && v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.OpenAI.TimeoutSeconds = seconds
		}
	}

	// An explicitly empty FRONTEND_ORIGIN is meaningful (allow any origin).
	if v, ok := lookup(frontendOriginEnv); ok {
		origin := v
		c.Server.FrontendOrigin = &origin
	}
}

func mergeConfig(base, override Config) Config {
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.ProjectKey != "" {
		base.OpenAI.ProjectKey = override.OpenAI.ProjectKey
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}
	if override.OpenAI.TimeoutSeconds > 0 {
		base.OpenAI.TimeoutSeconds = override.OpenAI.TimeoutSeconds
	}

	if override.Database.URL != "" {
		base.Database.URL = override.Database.URL
	}

	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.GinMode != "" {
		base.Server.GinMode = override.Server.GinMode
	}
	if override.Server.FrontendOrigin != nil {
		base.Server.FrontendOrigin = override.Server.FrontendOrigin
	}
	if override.Server.AdminJWTSecret != "" {
		base.Server.AdminJWTSecret = override.Server.AdminJWTSecret
	}

	return base
}

func defaultConfig() Config {
	return Config{
		OpenAI: OpenAIConfig{
			Model: DefaultOpenAIModel,
		},
		Server: ServerConfig{
			Port: DefaultPort,
		},
	}
}
