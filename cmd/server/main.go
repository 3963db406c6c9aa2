package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skypro1111/vmc-keymap/internal/config"
	"github.com/skypro1111/vmc-keymap/internal/keyboard"
	"github.com/skypro1111/vmc-keymap/internal/metrics"
	"github.com/skypro1111/vmc-keymap/internal/server"
	"github.com/skypro1111/vmc-keymap/internal/source"
	"github.com/skypro1111/vmc-keymap/internal/vmc"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", server.ServiceName),
		slog.String("version", server.ServiceVersion),
		slog.String("config_path", *configPath),
	)
	logger.Info("Configuration loaded",
		slog.String("udp_address", cfg.Server.Address()),
		slog.Int("workers", cfg.Server.Workers),
		slog.String("keyboard_backend", cfg.Keyboard.Backend),
		slog.Int("bindings", len(cfg.Bindings)),
		slog.String("log_level", cfg.Logging.Level),
	)

	appMetrics := metrics.NewMetrics()

	injector, err := keyboard.New(keyboardConfig(cfg.Keyboard), logger)
	if err != nil {
		logger.Error("Failed to create key injector", slog.String("error", err.Error()))
		os.Exit(1)
	}

	bindings, err := buildBindings(cfg.Bindings)
	if err != nil {
		logger.Error("Invalid bindings", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, b := range bindings {
		logger.Info("Button binding",
			slog.String("button", b.Button),
			slog.Bool("left", b.Left),
			slog.String("key", b.Key.String()),
		)
	}

	dispatcher := vmc.NewDispatcher(bindings, server.NewMeteredAction(injector, appMetrics), logger)

	sources := source.NewTracker(logger, cfg.Sources.GetTimeoutDuration(), 30*time.Second)

	udpServer := server.NewUDPServer(&cfg.Server, logger, dispatcher, sources, appMetrics)

	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, udpServer, sources, appMetrics)
	}

	if err := udpServer.Start(); err != nil {
		logger.Error("Failed to start UDP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if httpServer != nil {
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...")

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := udpServer.Stop(); err != nil {
		logger.Error("Error stopping UDP server", slog.String("error", err.Error()))
	}

	sources.Stop()

	stats := udpServer.GetStatistics()
	logger.Info("Final server statistics",
		slog.Uint64("packets_received", stats.PacketsReceived),
		slog.Uint64("packets_processed", stats.PacketsProcessed),
		slog.Uint64("parse_errors", stats.ParseErrors),
		slog.Uint64("key_presses", stats.KeyPresses),
	)

	logger.Info("Service stopped")
}

// loadConfig reads path, or falls back to defaults when the default path is missing
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg := config.Default()
			return &cfg, nil
		}
	}
	return config.Load(path)
}

// keyboardConfig converts the file configuration to injector settings
func keyboardConfig(cfg config.KeyboardConfig) keyboard.Config {
	commands := make(map[keyboard.Key][]string, len(cfg.Commands))
	for name, argv := range cfg.Commands {
		// Names were checked by config validation.
		if key, err := keyboard.ParseKey(name); err == nil {
			commands[key] = argv
		}
	}
	return keyboard.Config{
		Backend:  cfg.Backend,
		Timeout:  cfg.GetTimeoutDuration(),
		Commands: commands,
	}
}

// buildBindings converts configured bindings; none configured means defaults
func buildBindings(cfgs []config.BindingConfig) (vmc.Bindings, error) {
	if len(cfgs) == 0 {
		return vmc.DefaultBindings(), nil
	}

	bindings := make(vmc.Bindings, 0, len(cfgs))
	for _, c := range cfgs {
		key, err := keyboard.ParseKey(c.Key)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, vmc.Binding{Button: c.Button, Left: c.Left, Key: key})
	}

	if err := bindings.Validate(); err != nil {
		return nil, err
	}
	return bindings, nil
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
