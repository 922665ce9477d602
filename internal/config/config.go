package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds everything the service reads at startup. It is never mutated afterwards.
type Config struct {
	Port string `yaml:"port"`

	LLM struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
	} `yaml:"llm"`

	YouTube struct {
		APIKey          string   `yaml:"api_key"`
		TranscriptLangs []string `yaml:"transcript_langs"`
	} `yaml:"youtube"`

	// StrictTranscript turns a missing transcript into a request error instead of
	// summarizing the title and description.
	StrictTranscript bool `yaml:"strict_transcript"`

	ClientBaseURL   string        `yaml:"client_base_url"`
	CORSOrigin      string        `yaml:"cors_origin"`
	ServiceAPIKey   string        `yaml:"service_api_key"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	cfg := &Config{
		Port:            "5000",
		ClientBaseURL:   "http://localhost:5173",
		UpstreamTimeout: 60 * time.Second,
		LogLevel:        "info",
	}
	cfg.LLM.Provider = ProviderGemini
	cfg.LLM.Model = "gemini-2.0-flash"
	cfg.YouTube.TranscriptLangs = []string{"en"}
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file and the environment,
// in that order of precedence (environment wins). The YAML file is CONFIG_PATH, or
// config.yaml in the working directory when that exists.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setStr(&c.Port, "PORT")
	setStr(&c.LLM.Provider, "LLM_PROVIDER")
	// GEMINI_API_KEY is the historical name; LLM_API_KEY takes precedence when both are set.
	setStr(&c.LLM.APIKey, "GEMINI_API_KEY")
	setStr(&c.LLM.APIKey, "LLM_API_KEY")
	setStr(&c.LLM.BaseURL, "LLM_API_BASE")
	setStr(&c.LLM.Model, "LLM_MODEL")
	setStr(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	setStr(&c.ClientBaseURL, "CLIENT_BASE_URL")
	setStr(&c.CORSOrigin, "CORS_ORIGIN")
	setStr(&c.ServiceAPIKey, "SERVICE_API_KEY")
	setStr(&c.LogLevel, "LOG_LEVEL")

	if v := getenv("TRANSCRIPT_LANGS"); v != "" {
		var langs []string
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		c.YouTube.TranscriptLangs = langs
	}

	if v := getenv("STRICT_TRANSCRIPT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STRICT_TRANSCRIPT: %w", err)
		}
		c.StrictTranscript = b
	}

	if v := getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
		c.UpstreamTimeout = d
	}
	return nil
}

// Validate reports configuration that would make every request fail.
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY or LLM_API_KEY must be set"))
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.UpstreamTimeout < 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// MaskKey hides all but the last four characters of a credential for logging.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "[masked]"
	}
	return "[masked]" + key[len(key)-4:]
}
