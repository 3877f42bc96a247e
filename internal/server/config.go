package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/wiki-hunter/pkg/stringsutil"
)

const DefaultPort = "8080"

type Config struct {
	Port        string   `yaml:"port"`
	UseHttp2    bool     `yaml:"use_http2"`
	CorsOrigins []string `yaml:"cors_origins"`
}

func DefaultConfig() Config {
	return Config{
		Port:        DefaultPort,
		CorsOrigins: []string{"*"},
	}
}

// ParseOrigins splits a comma separated CORS_ORIGINS value
func ParseOrigins(raw string) []string {
	origins := strings.Split(raw, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	return stringsutil.RemoveEmptyStrings(origins)
}

// Normalize fills defaults and validates the port
func (c *Config) Normalize() error {
	if c.Port == "" {
		c.Port = DefaultPort
	}

	if err := validatePort(c.Port); err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}

	c.CorsOrigins = stringsutil.RemoveEmptyStrings(c.CorsOrigins)
	if len(c.CorsOrigins) == 0 {
		c.CorsOrigins = []string{"*"}
	}

	return nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
