// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for greenchat.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, validation and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - GatewayConfig: Gateway endpoint, timeouts and pacing
//   - OnboardingConfig: Probe message and polling bounds used at login
//   - ChatConfig: Inbox polling and history storage
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (GREENCHAT_*), including values from a .env file
//   - ~/.greenchat/config.toml
//   - ~/.greenchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := gateway.NewClient(cfg.Gateway.APIURL)
package config
