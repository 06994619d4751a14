// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete greenchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Gateway    GatewayConfig    `toml:"gateway" json:"gateway"`
	Onboarding OnboardingConfig `toml:"onboarding" json:"onboarding"`
	Chat       ChatConfig       `toml:"chat" json:"chat"`
	Webhook    WebhookConfig    `toml:"webhook" json:"webhook"`
	Log        LogConfig        `toml:"log" json:"log"`
	UI         UIConfig         `toml:"ui" json:"ui"`
}

// GatewayConfig configures the HTTP client of the messaging gateway.
type GatewayConfig struct {
	// APIURL is the gateway base URL.
	APIURL string `toml:"api_url" json:"api_url"`
	// TimeoutSecs bounds one HTTP call.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RatePerSec paces outgoing calls (0 = no pacing).
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec"`
	// Burst is the number of calls allowed back-to-back.
	Burst int `toml:"burst" json:"burst"`
	// ReceiveTimeoutSecs is the receiveNotification long-poll window (5-60).
	ReceiveTimeoutSecs int `toml:"receive_timeout_secs" json:"receive_timeout_secs"`
}

// OnboardingConfig configures the login handshake.
type OnboardingConfig struct {
	// ProbeText is sent to the contact number to confirm it is reachable.
	ProbeText string `toml:"probe_text" json:"probe_text"`
	// SendDelayMs is pushed to the gateway as delaySendMessagesMilliseconds.
	SendDelayMs int `toml:"send_delay_ms" json:"send_delay_ms"`
	// DrainLimit caps how many stale notifications are discarded (0 = all).
	DrainLimit int `toml:"drain_limit" json:"drain_limit"`
	// ReceiptAttempts bounds the wait for the probe's notification.
	ReceiptAttempts int `toml:"receipt_attempts" json:"receipt_attempts"`
	// ReceiptInitialBackoffMs is the first delay between receipt polls.
	ReceiptInitialBackoffMs int `toml:"receipt_initial_backoff_ms" json:"receipt_initial_backoff_ms"`
	// ReceiptMaxBackoffMs caps the delay between receipt polls.
	ReceiptMaxBackoffMs int `toml:"receipt_max_backoff_ms" json:"receipt_max_backoff_ms"`
}

// ChatConfig configures the conversation screen.
type ChatConfig struct {
	PollIntervalMs int    `toml:"poll_interval_ms" json:"poll_interval_ms"`
	HistoryEnabled bool   `toml:"history_enabled" json:"history_enabled"`
	HistoryPath    string `toml:"history_path" json:"history_path"`
	// HistoryLoad is how many messages are loaded when the chat opens.
	HistoryLoad int `toml:"history_load" json:"history_load"`
	// DedupeSize is the number of recent message ids remembered by the inbox.
	DedupeSize int `toml:"dedupe_size" json:"dedupe_size"`
	// RemoteHistory also pulls getChatHistory from the gateway on open.
	RemoteHistory bool `toml:"remote_history" json:"remote_history"`
}

// WebhookConfig configures the webhook receiver started by `greenchat serve`.
type WebhookConfig struct {
	Addr string `toml:"addr" json:"addr"`
	// PublicURL is pushed to the gateway at login as the webhook target.
	PublicURL string `toml:"public_url" json:"public_url"`
	// Token, when set, must be sent as "Authorization: Bearer <token>".
	Token        string `toml:"token" json:"token"`
	MaxBodyBytes int64  `toml:"max_body_bytes" json:"max_body_bytes"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
	// Path is the log file; "-" writes to stderr.
	Path string `toml:"path" json:"path"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	Theme          string `toml:"theme" json:"theme"`
	Language       string `toml:"language" json:"language"`
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps"`
	WatchConfig    bool   `toml:"watch_config" json:"watch_config"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".greenchat"
	}
	return &Config{
		Version: CurrentVersion,
		Gateway: GatewayConfig{
			APIURL:             "https://api.green-api.com",
			TimeoutSecs:        30,
			RatePerSec:         5,
			Burst:              5,
			ReceiveTimeoutSecs: 5,
		},
		Onboarding: OnboardingConfig{
			ProbeText:               "Сообщение",
			SendDelayMs:             500,
			DrainLimit:              0,
			ReceiptAttempts:         20,
			ReceiptInitialBackoffMs: 500,
			ReceiptMaxBackoffMs:     5000,
		},
		Chat: ChatConfig{
			PollIntervalMs: 1000,
			HistoryEnabled: true,
			HistoryPath:    filepath.Join(dir, "history.db"),
			HistoryLoad:    50,
			DedupeSize:     1024,
			RemoteHistory:  true,
		},
		Webhook: WebhookConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Path:   filepath.Join(dir, "greenchat.log"),
		},
		UI: UIConfig{
			Theme:          "auto",
			Language:       "auto",
			ShowTimestamps: true,
			WatchConfig:    true,
		},
	}
}

// Timeout returns the per-call gateway timeout.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// SendDelay returns the gateway send delay.
func (o OnboardingConfig) SendDelay() time.Duration {
	return time.Duration(o.SendDelayMs) * time.Millisecond
}

// ReceiptInitialBackoff returns the first receipt poll delay.
func (o OnboardingConfig) ReceiptInitialBackoff() time.Duration {
	return time.Duration(o.ReceiptInitialBackoffMs) * time.Millisecond
}

// ReceiptMaxBackoff returns the receipt poll delay cap.
func (o OnboardingConfig) ReceiptMaxBackoff() time.Duration {
	return time.Duration(o.ReceiptMaxBackoffMs) * time.Millisecond
}

// PollInterval returns the inbox poll interval.
func (c ChatConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the greenchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".greenchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides (including a .env file) are applied last.
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg = Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	// Defaults, plus the load error for informational purposes.
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	LoadDotEnv()

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadDotEnv loads .env from the working directory and from the config
// directory. Variables already set in the environment win.
func LoadDotEnv() {
	paths := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// fillDefaults fills in any empty strings left by a partial file.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Gateway.APIURL == "" {
		cfg.Gateway.APIURL = defaults.Gateway.APIURL
	}
	if cfg.Onboarding.ProbeText == "" {
		cfg.Onboarding.ProbeText = defaults.Onboarding.ProbeText
	}
	if cfg.Chat.HistoryPath == "" {
		cfg.Chat.HistoryPath = defaults.Chat.HistoryPath
	}
	if cfg.Webhook.Addr == "" {
		cfg.Webhook.Addr = defaults.Webhook.Addr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = defaults.Log.Path
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.Language == "" {
		cfg.UI.Language = defaults.UI.Language
	}
	return nil
}

// SetDefaults replaces zero numeric settings with their defaults.
// DrainLimit is left alone: 0 means drain everything.
func (c *Config) SetDefaults() {
	d := Default()
	_ = fillDefaults(c)

	if c.Gateway.TimeoutSecs <= 0 {
		c.Gateway.TimeoutSecs = d.Gateway.TimeoutSecs
	}
	if c.Gateway.Burst <= 0 {
		c.Gateway.Burst = d.Gateway.Burst
	}
	if c.Gateway.ReceiveTimeoutSecs == 0 {
		c.Gateway.ReceiveTimeoutSecs = d.Gateway.ReceiveTimeoutSecs
	}
	if c.Onboarding.ReceiptAttempts == 0 {
		c.Onboarding.ReceiptAttempts = d.Onboarding.ReceiptAttempts
	}
	if c.Onboarding.ReceiptInitialBackoffMs == 0 {
		c.Onboarding.ReceiptInitialBackoffMs = d.Onboarding.ReceiptInitialBackoffMs
	}
	if c.Onboarding.ReceiptMaxBackoffMs == 0 {
		c.Onboarding.ReceiptMaxBackoffMs = d.Onboarding.ReceiptMaxBackoffMs
	}
	if c.Chat.PollIntervalMs == 0 {
		c.Chat.PollIntervalMs = d.Chat.PollIntervalMs
	}
	if c.Chat.DedupeSize == 0 {
		c.Chat.DedupeSize = d.Chat.DedupeSize
	}
	if c.Webhook.MaxBodyBytes == 0 {
		c.Webhook.MaxBodyBytes = d.Webhook.MaxBodyBytes
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML. The file is created with 0600
// permissions since it may hold the webhook token.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# greenchat configuration file\n")
	b.WriteString("# Generated by greenchat - edit with care\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeFileAtomic(path, []byte(b.String()), 0600)
}

// SaveJSON writes the configuration as indented JSON.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeFileAtomic(path, data, 0600)
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Gateway
	if u, err := url.Parse(c.Gateway.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("gateway.api_url", "invalid URL '%s', must be http(s)://host", c.Gateway.APIURL)
	}
	if c.Gateway.TimeoutSecs <= 0 {
		add("gateway.timeout_secs", "must be positive")
	}
	if c.Gateway.RatePerSec < 0 {
		add("gateway.rate_per_sec", "must not be negative")
	}
	if c.Gateway.Burst < 1 {
		add("gateway.burst", "must be at least 1")
	}
	if c.Gateway.ReceiveTimeoutSecs < 5 || c.Gateway.ReceiveTimeoutSecs > 60 {
		add("gateway.receive_timeout_secs", "must be between 5 and 60, got %d", c.Gateway.ReceiveTimeoutSecs)
	}
	if c.Gateway.TimeoutSecs > 0 && c.Gateway.TimeoutSecs <= c.Gateway.ReceiveTimeoutSecs {
		add("gateway.timeout_secs", "must exceed receive_timeout_secs (%d), got %d",
			c.Gateway.ReceiveTimeoutSecs, c.Gateway.TimeoutSecs)
	}

	// Onboarding
	if strings.TrimSpace(c.Onboarding.ProbeText) == "" {
		add("onboarding.probe_text", "must not be empty")
	}
	if c.Onboarding.SendDelayMs < 0 {
		add("onboarding.send_delay_ms", "must not be negative")
	}
	if c.Onboarding.DrainLimit < 0 {
		add("onboarding.drain_limit", "must not be negative (0 drains everything)")
	}
	if c.Onboarding.ReceiptAttempts < 1 {
		add("onboarding.receipt_attempts", "must be at least 1")
	}
	if c.Onboarding.ReceiptInitialBackoffMs < 0 {
		add("onboarding.receipt_initial_backoff_ms", "must not be negative")
	}
	if c.Onboarding.ReceiptMaxBackoffMs < c.Onboarding.ReceiptInitialBackoffMs {
		add("onboarding.receipt_max_backoff_ms", "must be at least receipt_initial_backoff_ms")
	}

	// Chat
	if c.Chat.PollIntervalMs < 100 {
		add("chat.poll_interval_ms", "must be at least 100")
	}
	if c.Chat.HistoryLoad < 0 {
		add("chat.history_load", "must not be negative")
	}
	if c.Chat.DedupeSize < 1 {
		add("chat.dedupe_size", "must be at least 1")
	}

	// Webhook
	if c.Webhook.MaxBodyBytes < 1024 {
		add("webhook.max_body_bytes", "must be at least 1024")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		add("log.format", "invalid format '%s', must be one of: text, json", c.Log.Format)
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}
	switch strings.ToLower(c.UI.Language) {
	case "auto", "en", "ru":
	default:
		add("ui.language", "invalid language '%s', must be one of: auto, en, ru", c.UI.Language)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - GREENCHAT_API_URL: overrides gateway.api_url
//   - GREENCHAT_LOG_LEVEL: overrides log.level
//   - GREENCHAT_LANGUAGE: overrides ui.language
//   - GREENCHAT_HISTORY_PATH: overrides chat.history_path
//   - GREENCHAT_WEBHOOK_ADDR: overrides webhook.addr
//   - GREENCHAT_WEBHOOK_TOKEN: overrides webhook.token
//   - GREENCHAT_PROBE_TEXT: overrides onboarding.probe_text
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GREENCHAT_API_URL"); v != "" {
		c.Gateway.APIURL = v
	}
	if v := os.Getenv("GREENCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GREENCHAT_LANGUAGE"); v != "" {
		c.UI.Language = v
	}
	if v := os.Getenv("GREENCHAT_HISTORY_PATH"); v != "" {
		c.Chat.HistoryPath = v
	}
	if v := os.Getenv("GREENCHAT_WEBHOOK_ADDR"); v != "" {
		c.Webhook.Addr = v
	}
	if v := os.Getenv("GREENCHAT_WEBHOOK_TOKEN"); v != "" {
		c.Webhook.Token = v
	}
	if v := os.Getenv("GREENCHAT_PROBE_TEXT"); v != "" {
		c.Onboarding.ProbeText = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "chat.poll_interval_ms").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent. "api_url" becomes "Apiurl", matched case-insensitively.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.New("nil value")
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"gateway.api_url",
		"gateway.timeout_secs",
		"gateway.rate_per_sec",
		"gateway.burst",
		"gateway.receive_timeout_secs",
		"onboarding.probe_text",
		"onboarding.send_delay_ms",
		"onboarding.drain_limit",
		"onboarding.receipt_attempts",
		"onboarding.receipt_initial_backoff_ms",
		"onboarding.receipt_max_backoff_ms",
		"chat.poll_interval_ms",
		"chat.history_enabled",
		"chat.history_path",
		"chat.history_load",
		"chat.dedupe_size",
		"chat.remote_history",
		"webhook.addr",
		"webhook.public_url",
		"webhook.token",
		"webhook.max_body_bytes",
		"log.level",
		"log.format",
		"log.path",
		"ui.theme",
		"ui.language",
		"ui.show_timestamps",
		"ui.watch_config",
	}
}

// Clone returns a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as JSON with the webhook token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Webhook.Token != "" {
		safe.Webhook.Token = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
// A later Global call returns cfg without loading from disk.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	globalConfig = cfg
	globalConfigMu.Unlock()
	globalConfigOnce.Do(func() {})
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
