package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/pixel/internal/config"
	"github.com/vk/pixel/internal/ctxlog"
	"github.com/vk/pixel/internal/notify"
	"github.com/vk/pixel/internal/palette"
)

// DialFunc opens a notifier for the given endpoint.
type DialFunc func(ctx context.Context, url string) (notify.Notifier, error)

// App encapsulates the application's dependencies, configuration, and the
// palettes loaded at startup.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	palettes  *palette.Store
	defaults  config.Defaults
	notifyURL string
	dial      DialFunc
}

// NewApp builds an App: it reads the optional settings file, configures the
// logger and loads every palette. User-facing output goes to outW, logs to
// logW.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	ctx := context.Background()

	settings := &config.File{}
	if appConfig.ConfigPath != "" {
		loaded, err := loader.Load(ctx, appConfig.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		settings = loaded
	}

	// Settings values are not validated by the loader; run them through the
	// same checks as command-line values.
	effective, err := NewConfig(Config{
		PalettesDir: firstNonEmpty(appConfig.PalettesDir, settings.PalettesDir),
		ConfigPath:  appConfig.ConfigPath,
		LogFormat:   firstNonEmpty(appConfig.LogFormat, settings.LogFormat),
		LogLevel:    firstNonEmpty(appConfig.LogLevel, settings.LogLevel),
		NotifyURL:   firstNonEmpty(appConfig.NotifyURL, settings.NotifyURL),
		Color:       appConfig.Color,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if effective.PalettesDir == "" {
		effective.PalettesDir = DefaultPalettesDir()
	}

	logger := newLogger(effective.LogLevel, effective.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	store, err := palette.Load(ctx, effective.PalettesDir)
	if err != nil {
		return nil, err
	}
	for _, p := range settings.Palettes {
		if err := store.Add(ctx, p); err != nil {
			return nil, fmt.Errorf("invalid palette in %s: %w", appConfig.ConfigPath, err)
		}
	}
	logger.Debug("Palettes loaded.", "dir", effective.PalettesDir, "count", store.Len())

	return &App{
		outW:      outW,
		logger:    logger,
		config:    effective,
		palettes:  store,
		defaults:  settings.Defaults,
		notifyURL: effective.NotifyURL,
		dial:      socketIODialer(settings.Notify),
	}, nil
}

// Palettes returns the loaded palette store. This is primarily for testing.
func (a *App) Palettes() *palette.Store {
	return a.palettes
}

// Config returns the effective configuration after merging the settings file.
func (a *App) Config() *Config {
	return a.config
}

// SetDialer replaces the notifier dialer.
func (a *App) SetDialer(dial DialFunc) {
	a.dial = dial
}

// withLogger attaches the app logger to ctx.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// socketIODialer dials socket.io with the connection settings from the
// settings file.
func socketIODialer(settings config.Notify) DialFunc {
	opts := notify.DialOptions{
		Namespace:          settings.Namespace,
		InsecureSkipVerify: settings.InsecureSkipVerify,
		Timeout:            settings.Timeout,
	}
	return func(ctx context.Context, url string) (notify.Notifier, error) {
		n, err := notify.Dial(ctx, url, opts)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}
