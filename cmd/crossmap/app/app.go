// Package app provides the application context and dependency management
// for the crossmap CLI. It centralizes configuration, logging, and client
// construction so commands stay small.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/crossmap"
)

// App represents the crossmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Client builds a crossmap client from the current configuration.
func (a *App) Client(opts ...crossmap.Option) (*crossmap.Client, error) {
	base := []crossmap.Option{crossmap.WithWorkers(a.config.Workers)}
	if a.config.GeminiAPIKey != "" {
		base = append(base, crossmap.WithGemini(a.config.GeminiAPIKey, a.config.GeminiModel))
	}
	return crossmap.New(append(base, opts...)...)
}
