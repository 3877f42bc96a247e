package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/server"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/session"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
	"github.com/DjordjeVuckovic/wiki-hunter/pkg/config/env"
	"github.com/DjordjeVuckovic/wiki-hunter/pkg/pagination"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDotEnvPath = "cmd/wikisearch/.env"
	defaultTimeout    = 30 * time.Second
)

type Config struct {
	Wiki     WikiConfig       `yaml:"wiki"`
	Messages session.Messages `yaml:"messages"`
	Server   server.Config    `yaml:"server"`
	Log      LogConfig        `yaml:"log"`
}

type WikiConfig struct {
	APIURL    string        `yaml:"api_url"`
	PageSize  int           `yaml:"page_size"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File receives logs instead of stdout; the terminal view needs this
	File string `yaml:"file"`
}

func Default() Config {
	return Config{
		Wiki: WikiConfig{
			APIURL:    wiki.DefaultBaseURL,
			PageSize:  pagination.PageDefaultSize,
			UserAgent: wiki.DefaultUserAgent,
			Timeout:   defaultTimeout,
		},
		Messages: session.DefaultMessages(),
		Server:   server.DefaultConfig(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load layers configuration: defaults, the YAML file named by WIKISEARCH_CONFIG,
// the .env file, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("WIKISEARCH_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.LoadDotEnv(os.Getenv("ENV"), DefaultDotEnvPath); err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	return c.Decode(f)
}

// Decode overlays YAML onto c; keys absent from the document keep their current values
func (c *Config) Decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.NewValidationWrap("invalid config file", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WIKI_API_URL"); v != "" {
		c.Wiki.APIURL = v
	}
	if v := os.Getenv("WIKI_USER_AGENT"); v != "" {
		c.Wiki.UserAgent = v
	}
	if v := os.Getenv("WIKI_PAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return apperr.NewValidationWrap("WIKI_PAGE_SIZE must be a number", err)
		}
		c.Wiki.PageSize = size
	}
	if v := os.Getenv("WIKI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperr.NewValidationWrap("WIKI_TIMEOUT must be a duration", err)
		}
		c.Wiki.Timeout = d
	}

	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("USE_HTTP2"); v != "" {
		c.Server.UseHttp2 = v == "true"
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CorsOrigins = server.ParseOrigins(v)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Wiki.PageSize < 1 || c.Wiki.PageSize > pagination.PageMaxSize {
		return apperr.NewValidation(fmt.Sprintf("page size must be between 1 and %d", pagination.PageMaxSize))
	}
	if c.Wiki.Timeout < 0 {
		return apperr.NewValidation("timeout must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if err := c.Server.Normalize(); err != nil {
		return apperr.NewValidationWrap("invalid server config", err)
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, apperr.NewValidationWrap("invalid log level", err)
	}
	return level, nil
}
