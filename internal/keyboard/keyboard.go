package keyboard

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Key identifies a synthesized key press
type Key uint8

const (
	KeyLeftArrow Key = iota + 1
	KeyRightArrow
)

// Backend names
const (
	BackendLog     = "log"
	BackendCommand = "command"
)

// ParseKey converts a configuration name ("left", "right") to a Key
func ParseKey(name string) (Key, error) {
	switch strings.ToLower(name) {
	case "left":
		return KeyLeftArrow, nil
	case "right":
		return KeyRightArrow, nil
	default:
		return 0, errors.Errorf("unknown key %q", name)
	}
}

// String returns the configuration name of the key
func (k Key) String() string {
	switch k {
	case KeyLeftArrow:
		return "left"
	case KeyRightArrow:
		return "right"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Injector produces a key-down immediately followed by a key-up
type Injector interface {
	Press(ctx context.Context, key Key) error
}

// Config selects and configures the injector backend
type Config struct {
	Backend  string
	Timeout  time.Duration
	Commands map[Key][]string
}

// New creates the injector selected by cfg.Backend
func New(cfg Config, logger *slog.Logger) (Injector, error) {
	switch cfg.Backend {
	case BackendLog, "":
		return NewLogInjector(logger), nil
	case BackendCommand:
		return NewCommandInjector(cfg.Commands, cfg.Timeout, logger)
	default:
		return nil, errors.Errorf("unknown keyboard backend %q", cfg.Backend)
	}
}

// LogInjector records presses in the log without touching the OS
type LogInjector struct {
	logger *slog.Logger
}

// NewLogInjector creates a dry-run injector
func NewLogInjector(logger *slog.Logger) *LogInjector {
	return &LogInjector{logger: logger}
}

// Press logs the key press
func (l *LogInjector) Press(_ context.Context, key Key) error {
	l.logger.Info("Key press", slog.String("key", key.String()))
	return nil
}

// CommandInjector runs one external command per key press
type CommandInjector struct {
	commands map[Key][]string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewCommandInjector creates an injector running commands[key] on Press.
// Every key must map to a non-empty argv.
func NewCommandInjector(commands map[Key][]string, timeout time.Duration, logger *slog.Logger) (*CommandInjector, error) {
	for _, key := range []Key{KeyLeftArrow, KeyRightArrow} {
		if len(commands[key]) == 0 {
			return nil, errors.Errorf("no command configured for key %s", key)
		}
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &CommandInjector{
		commands: commands,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Press runs the command bound to key and waits for it to exit
func (c *CommandInjector) Press(ctx context.Context, key Key) error {
	argv, ok := c.commands[key]
	if !ok || len(argv) == 0 {
		return errors.Errorf("no command for key %s", key)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "run %s (output %q)", argv[0], strings.TrimSpace(string(out)))
	}

	c.logger.Debug("Key press injected",
		slog.String("key", key.String()),
		slog.String("command", argv[0]),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
