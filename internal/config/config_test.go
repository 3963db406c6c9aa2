package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid server port",
			mutate:      func(c *Config) { c.Server.UDPPort = 70000 },
			expectError: true,
			errorMsg:    "udp_port must be between 1 and 65535",
		},
		{
			name:        "buffer larger than a datagram",
			mutate:      func(c *Config) { c.Server.BufferSize = 131072 },
			expectError: true,
			errorMsg:    "buffer_size must be between",
		},
		{
			name:        "zero workers",
			mutate:      func(c *Config) { c.Server.Workers = 0 },
			expectError: true,
			errorMsg:    "workers must be at least 1",
		},
		{
			name: "http enabled without address",
			mutate: func(c *Config) {
				c.HTTP.Enabled = true
				c.HTTP.Address = ""
			},
			expectError: true,
			errorMsg:    "http address cannot be empty",
		},
		{
			name:        "unknown keyboard backend",
			mutate:      func(c *Config) { c.Keyboard.Backend = "uinput" },
			expectError: true,
			errorMsg:    "backend must be 'log' or 'command'",
		},
		{
			name: "command backend without right command",
			mutate: func(c *Config) {
				c.Keyboard.Backend = "command"
				c.Keyboard.Commands = map[string][]string{"left": {"xdotool", "key", "Left"}}
			},
			expectError: true,
			errorMsg:    "requires commands.right",
		},
		{
			name: "command backend complete",
			mutate: func(c *Config) {
				c.Keyboard.Backend = "command"
				c.Keyboard.Commands = map[string][]string{
					"left":  {"xdotool", "key", "Left"},
					"right": {"xdotool", "key", "Right"},
				}
			},
		},
		{
			name: "binding with unknown key",
			mutate: func(c *Config) {
				c.Bindings = []BindingConfig{{Button: "ClickBbutton", Key: "up"}}
			},
			expectError: true,
			errorMsg:    "binding 0: key must be 'left' or 'right'",
		},
		{
			name:        "zero source timeout",
			mutate:      func(c *Config) { c.Sources.Timeout = 0 },
			expectError: true,
			errorMsg:    "sources config",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "trace" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(&config)
			err := config.Validate()

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestConfigLoad(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		errorMsg    string
		validate    func(*Config) bool
	}{
		{
			name: "valid config file",
			configYAML: `
server:
  udp_port: 39539
  bind_address: "127.0.0.1"
  buffer_size: 65535
  workers: 2
  queue_size: 100
http:
  enabled: true
  address: "0.0.0.0"
  port: 9090
keyboard:
  backend: "command"
  timeout: 1
  commands:
    left: ["xdotool", "key", "Left"]
    right: ["xdotool", "key", "Right"]
bindings:
  - button: "ClickTrigger"
    left: true
    key: "left"
logging:
  level: "debug"
  format: "json"
  output: "stderr"
`,
			validate: func(c *Config) bool {
				return c.Server.UDPPort == 39539 &&
					c.Server.Workers == 2 &&
					c.HTTP.Port == 9090 &&
					c.Keyboard.Commands["right"][2] == "Right" &&
					len(c.Bindings) == 1 && c.Bindings[0].Left &&
					c.Sources.Timeout == 60 // default kept
			},
		},
		{
			name:       "empty file uses defaults",
			configYAML: "\n",
			validate: func(c *Config) bool {
				return c.Server.UDPPort == 39600 &&
					c.Server.BufferSize == 65535 &&
					c.Keyboard.Backend == "log" &&
					len(c.Bindings) == 0
			},
		},
		{
			name: "invalid YAML syntax",
			configYAML: `
server:
  udp_port: 4444
  buffer_size: invalid_number
`,
			expectError: true,
			errorMsg:    "failed to parse",
		},
		{
			name: "explicitly empty bind address",
			configYAML: `
server:
  bind_address: ""
`,
			expectError: true,
			errorMsg:    "bind_address cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(tempDir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.configYAML), 0644); err != nil {
				t.Fatalf("Failed to create test config file: %v", err)
			}

			config, err := Load(configPath)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if tt.validate != nil && !tt.validate(config) {
				t.Errorf("Loaded config does not match expectations: %+v", config)
			}
		})
	}
}

func TestConfigLoadNonexistentFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Fatalf("Expected error for nonexistent file but got none")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected error about reading file, got: %v", err)
	}
}

func TestDurationHelpers(t *testing.T) {
	keyboard := KeyboardConfig{Timeout: 3}
	if keyboard.GetTimeoutDuration() != 3*time.Second {
		t.Errorf("Expected 3 seconds, got %v", keyboard.GetTimeoutDuration())
	}

	sources := SourcesConfig{Timeout: 60}
	if sources.GetTimeoutDuration() != time.Minute {
		t.Errorf("Expected 60 seconds, got %v", sources.GetTimeoutDuration())
	}

	server := ServerConfig{BindAddress: "0.0.0.0", UDPPort: 39600}
	if server.Address() != "0.0.0.0:39600" {
		t.Errorf("Expected 0.0.0.0:39600, got %s", server.Address())
	}
}

func TestLoggingConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config LoggingConfig
		valid  bool
	}{
		{
			name:   "valid json to stdout",
			config: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
			valid:  true,
		},
		{
			name:   "valid text to file",
			config: LoggingConfig{Level: "debug", Format: "text", Output: "/var/log/vmc-keymap.log"},
			valid:  true,
		},
		{
			name:   "invalid format",
			config: LoggingConfig{Level: "info", Format: "xml", Output: "stdout"},
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config but got error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected invalid config but got no error")
			}
		})
	}
}
