// Package cli provides common initialization and prompt utilities for
// the command-line entrypoint.
package cli

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"monevo/internal/config"
	"monevo/internal/log"
	"monevo/internal/session"
)

// SetupLogger initializes structured logging at the given level and
// sets it as the default logger.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = parseLevel(level)
	cfg.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level})

	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSessionStore opens the durable session store under the state
// directory, or exits the process on failure.
func InitSessionStore(logger *log.Logger, stateDir string) *session.FileStore {
	store, err := session.NewFileStore(stateDir)
	if err != nil {
		logger.Error("failed to open session store", log.FieldError, err, "dir", stateDir)
		os.Exit(1)
	}
	return store
}

// ReadPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read otherwise.
func ReadPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	reader := bufio.NewReader(stdin)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadLine reads a single trimmed line from the reader.
func ReadLine(stdin io.Reader) (string, error) {
	reader := bufio.NewReader(stdin)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
