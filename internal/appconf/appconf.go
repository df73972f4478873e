// Package appconf holds the application configuration and environment
// handling shared by the API server and its components.
package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// EnvFlagToEnvironment converts an environment flag value ("development",
// "test", "production") into an Environment. Unknown values map to Development.
func EnvFlagToEnvironment(flag string) Environment {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Test:
		return "test"
	default:
		return "development"
	}
}

// Config holds all the runtime settings for the application.
type Config struct {
	Port      int
	Env       Environment
	ApiKeys   []string // admin API keys
	Verbose   bool
	RateLimit int // requests per second per client
	DBPath    string
	NATSURL   string // empty disables position fan-out
	WebUIPath string // directory with the passenger/driver static pages
	GTFSPath  string // optional GTFS zip used to seed lines and stops
}

// JSONConfig mirrors Config for file-based configuration.
type JSONConfig struct {
	Port      int      `json:"port"`
	Env       string   `json:"env"`
	ApiKeys   []string `json:"api-keys"`
	Verbose   bool     `json:"verbose"`
	RateLimit int      `json:"rate-limit"`
	DBPath    string   `json:"db-path"`
	NATSURL   string   `json:"nats-url"`
	WebUIPath string   `json:"webui-path"`
	GTFSPath  string   `json:"gtfs-path"`
}

// LoadFromFile reads and validates a JSON configuration file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *JSONConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Port)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate-limit must be non-negative, got %d", c.RateLimit)
	}
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "development", "test", "production":
	default:
		return fmt.Errorf("env must be one of development, test, production; got %q", c.Env)
	}
	return nil
}

// ToAppConfig converts the file representation into the runtime Config.
func (c *JSONConfig) ToAppConfig() Config {
	return Config{
		Port:      c.Port,
		Env:       EnvFlagToEnvironment(c.Env),
		ApiKeys:   c.ApiKeys,
		Verbose:   c.Verbose,
		RateLimit: c.RateLimit,
		DBPath:    c.DBPath,
		NATSURL:   c.NATSURL,
		WebUIPath: c.WebUIPath,
		GTFSPath:  c.GTFSPath,
	}
}
