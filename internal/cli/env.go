// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jeranaias/greenchat-tui/internal/config"
	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/history"
	"github.com/jeranaias/greenchat-tui/internal/logging"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
	"github.com/jeranaias/greenchat-tui/internal/session"
)

// Env is the setup shared by every command: configuration and logger.
type Env struct {
	Config *config.Config
	Logger *slog.Logger

	// ConfigPath is the file that was loaded, or "" for the default lookup.
	ConfigPath string

	closer io.Closer
}

// LoadConfig loads the file named by --config, or the default files.
// A broken default file falls back to defaults and returns the error with
// the config so callers can warn.
func LoadConfig(args Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	return config.Load()
}

// NewEnv loads the config and builds the logger. --verbose logs to stderr at
// debug level.
func NewEnv(args Args) (*Env, error) {
	cfg, err := LoadConfig(args)
	if cfg == nil {
		return nil, err
	}
	loadErr := err

	lc := cfg.Log
	if args.Verbose {
		lc.Level = "debug"
		lc.Path = logging.StderrPath
	}
	logger, closer, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}
	if loadErr != nil {
		logger.Warn("config not loaded, using defaults", "error", loadErr)
	}
	config.SetGlobal(cfg)

	return &Env{Config: cfg, Logger: logger, ConfigPath: args.ConfigPath, closer: closer}, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Client builds the gateway client from the gateway section.
func (e *Env) Client() *gateway.Client {
	g := e.Config.Gateway
	return gateway.NewClient(g.APIURL).
		WithTimeout(g.Timeout()).
		WithRateLimit(g.RatePerSec, g.Burst).
		WithReceiveTimeout(g.ReceiveTimeoutSecs).
		WithLogger(e.Logger)
}

// Sequencer builds the onboarding handshake. The webhook target is pushed
// only when webhook.public_url is set.
func (e *Env) Sequencer(gw onboarding.Gateway, sessions *session.Store) *onboarding.Sequencer {
	opts := onboarding.OptionsFrom(e.Config.Onboarding)
	if url := e.Config.Webhook.PublicURL; url != "" {
		opts.WebhookURL = url
		opts.WebhookToken = e.Config.Webhook.Token
	}
	return onboarding.New(gw, sessions, opts).WithLogger(e.Logger)
}

// OpenHistory opens the history database, or returns nil when history is
// disabled.
func (e *Env) OpenHistory() (*history.Store, error) {
	if !e.Config.Chat.HistoryEnabled {
		return nil, nil
	}
	return history.Open(e.Config.Chat.HistoryPath)
}
