package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	HTTP     HTTPConfig      `yaml:"http"`
	Keyboard KeyboardConfig  `yaml:"keyboard"`
	Bindings []BindingConfig `yaml:"bindings"`
	Sources  SourcesConfig   `yaml:"sources"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains UDP server configuration
type ServerConfig struct {
	UDPPort     int    `yaml:"udp_port"`
	BindAddress string `yaml:"bind_address"`
	BufferSize  int    `yaml:"buffer_size"`
	Workers     int    `yaml:"workers"`
	QueueSize   int    `yaml:"queue_size"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// KeyboardConfig selects how key presses reach the OS
type KeyboardConfig struct {
	Backend  string              `yaml:"backend"`
	Timeout  int                 `yaml:"timeout"` // seconds
	Commands map[string][]string `yaml:"commands"`
}

// BindingConfig maps a controller button to a key name
type BindingConfig struct {
	Button string `yaml:"button"`
	Left   bool   `yaml:"left"`
	Key    string `yaml:"key"`
}

// SourcesConfig controls tracking of OSC senders
type SourcesConfig struct {
	Timeout int `yaml:"timeout"` // seconds
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used for fields missing from the file.
// Port 39600 is the VMC protocol default.
func Default() Config {
	return Config{
		Server: ServerConfig{
			UDPPort:     39600,
			BindAddress: "0.0.0.0",
			BufferSize:  65535,
			Workers:     1,
			QueueSize:   1000,
		},
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "127.0.0.1",
			Enabled: false,
		},
		Keyboard: KeyboardConfig{
			Backend: "log",
			Timeout: 2,
		},
		Sources: SourcesConfig{
			Timeout: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Keyboard.Validate(); err != nil {
		return fmt.Errorf("keyboard config: %w", err)
	}

	for i := range c.Bindings {
		if err := c.Bindings[i].Validate(); err != nil {
			return fmt.Errorf("binding %d: %w", i, err)
		}
	}

	if err := c.Sources.Validate(); err != nil {
		return fmt.Errorf("sources config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.UDPPort < 1 || s.UDPPort > 65535 {
		return fmt.Errorf("udp_port must be between 1 and 65535, got %d", s.UDPPort)
	}

	if s.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty")
	}

	if s.BufferSize < 1024 || s.BufferSize > 65535 {
		return fmt.Errorf("buffer_size must be between 1024 and 65535 bytes, got %d", s.BufferSize)
	}

	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}

	if s.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", s.QueueSize)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

var validKeys = map[string]bool{"left": true, "right": true}

// Validate validates keyboard configuration
func (k *KeyboardConfig) Validate() error {
	switch k.Backend {
	case "log":
	case "command":
		for _, key := range []string{"left", "right"} {
			if len(k.Commands[key]) == 0 {
				return fmt.Errorf("command backend requires commands.%s", key)
			}
		}
	default:
		return fmt.Errorf("backend must be 'log' or 'command', got '%s'", k.Backend)
	}

	for key := range k.Commands {
		if !validKeys[key] {
			return fmt.Errorf("commands: unknown key '%s'", key)
		}
	}

	if k.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", k.Timeout)
	}

	return nil
}

// Validate validates a single button binding
func (b *BindingConfig) Validate() error {
	if b.Button == "" {
		return fmt.Errorf("button cannot be empty")
	}

	if !validKeys[b.Key] {
		return fmt.Errorf("key must be 'left' or 'right', got '%s'", b.Key)
	}

	return nil
}

// Validate validates source tracking configuration
func (s *SourcesConfig) Validate() error {
	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	// Output is stdout, stderr or a file path; anything non-empty is accepted.

	return nil
}

// GetTimeoutDuration returns the key command timeout as a time.Duration
func (k *KeyboardConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(k.Timeout) * time.Second
}

// GetTimeoutDuration returns the source expiry as a time.Duration
func (s *SourcesConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// Address returns the UDP listen address in host:port form
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.UDPPort)
}
