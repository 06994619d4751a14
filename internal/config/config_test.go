// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Onboarding.SendDelayMs != 500 {
		t.Errorf("SendDelayMs = %d, want 500", cfg.Onboarding.SendDelayMs)
	}
	if cfg.Onboarding.DrainLimit != 0 {
		t.Errorf("DrainLimit = %d, want 0 (drain everything)", cfg.Onboarding.DrainLimit)
	}
	if cfg.Onboarding.ReceiptAttempts < 1 {
		t.Error("ReceiptAttempts must be bounded by default")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Gateway.APIURL = "ftp://example.com"
	cfg.Gateway.ReceiveTimeoutSecs = 90
	cfg.Onboarding.ProbeText = "  "
	cfg.Onboarding.ReceiptAttempts = 0
	cfg.Log.Level = "loud"
	cfg.UI.Language = "de"

	err := cfg.Validate()
	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() = %v, want ValidateErrors", err)
	}

	want := []string{
		"gateway.api_url",
		"gateway.receive_timeout_secs",
		"onboarding.probe_text",
		"onboarding.receipt_attempts",
		"log.level",
		"ui.language",
	}
	got := map[string]bool{}
	for _, e := range verrs {
		got[e.Field] = true
	}
	for _, field := range want {
		if !got[field] {
			t.Errorf("missing validation error for %s (got %v)", field, verrs)
		}
	}
}

func TestValidate_TimeoutCoversReceiveWindow(t *testing.T) {
	tests := []struct {
		name    string
		timeout int
		receive int
		wantErr bool
	}{
		{"default", 30, 5, false},
		{"shorter than window", 10, 60, true},
		{"equal to window", 20, 20, true},
		{"longer than window", 61, 60, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Gateway.TimeoutSecs = tc.timeout
			cfg.Gateway.ReceiveTimeoutSecs = tc.receive

			err := cfg.Validate()
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == "gateway.timeout_secs" {
					found = true
				}
			}
			if !found {
				t.Errorf("missing gateway.timeout_secs error (got %v)", verrs)
			}
		})
	}
}

func TestSetDefaults_KeepsDrainLimitZero(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	if cfg.Onboarding.DrainLimit != 0 {
		t.Errorf("DrainLimit = %d, want 0", cfg.Onboarding.DrainLimit)
	}
	if cfg.Gateway.APIURL == "" || cfg.Chat.PollIntervalMs == 0 {
		t.Error("SetDefaults should fill empty values")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after SetDefaults = %v", err)
	}
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[gateway]
api_url = "http://localhost:9000"

[onboarding]
probe_text = "ping"
drain_limit = 25

[ui]
language = "ru"
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Gateway.APIURL != "http://localhost:9000" {
		t.Errorf("APIURL = %q", cfg.Gateway.APIURL)
	}
	if cfg.Onboarding.ProbeText != "ping" || cfg.Onboarding.DrainLimit != 25 {
		t.Errorf("Onboarding = %+v", cfg.Onboarding)
	}
	if cfg.UI.Language != "ru" {
		t.Errorf("Language = %q", cfg.UI.Language)
	}
	// Untouched sections keep their defaults.
	if cfg.Chat.PollIntervalMs != Default().Chat.PollIntervalMs {
		t.Errorf("PollIntervalMs = %d", cfg.Chat.PollIntervalMs)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"log":{"level":"debug","format":"json"}}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nformat = \"xml\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("LoadFromPath() should reject log.format = xml")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GREENCHAT_API_URL", "http://gw.local")
	t.Setenv("GREENCHAT_WEBHOOK_TOKEN", "s3cret")
	t.Setenv("GREENCHAT_PROBE_TEXT", "hello")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Gateway.APIURL != "http://gw.local" {
		t.Errorf("APIURL = %q", cfg.Gateway.APIURL)
	}
	if cfg.Webhook.Token != "s3cret" {
		t.Errorf("Webhook.Token = %q", cfg.Webhook.Token)
	}
	if cfg.Onboarding.ProbeText != "hello" {
		t.Errorf("ProbeText = %q", cfg.Onboarding.ProbeText)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Onboarding.ReceiptAttempts = 7
	cfg.Webhook.Token = "tok"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Onboarding.ReceiptAttempts != 7 {
		t.Errorf("ReceiptAttempts = %d, want 7", loaded.Onboarding.ReceiptAttempts)
	}
}

// =============================================================================
// GET / SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
		want  interface{}
	}{
		{"gateway.api_url", "http://x.y", "http://x.y"},
		{"gateway.rate_per_sec", "2.5", 2.5},
		{"onboarding.drain_limit", "10", 10},
		{"chat.history_enabled", "no", false},
		{"ui.show_timestamps", "yes", true},
		{"webhook.max_body_bytes", "2048", int64(2048)},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			if err := cfg.Set(tc.key, tc.value); err != nil {
				t.Fatalf("Set(%q) error = %v", tc.key, err)
			}
			got, err := cfg.Get(tc.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tc.key, err)
			}
			if got != tc.want {
				t.Errorf("Get(%q) = %v (%T), want %v (%T)", tc.key, got, got, tc.want, tc.want)
			}
		})
	}
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()
	if _, err := cfg.Get("nope.key"); err == nil {
		t.Error("Get(unknown) should fail")
	}
	if _, err := cfg.Get("gateway"); err == nil {
		t.Error("Get(section) should fail")
	}
	if err := cfg.Set("chat.history_load", "many"); err == nil {
		t.Error("Set(int, non-number) should fail")
	}
	if _, err := cfg.Get(""); err == nil {
		t.Error("Get(\"\") should fail")
	}
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

func TestString_RedactsToken(t *testing.T) {
	cfg := Default()
	cfg.Webhook.Token = "super-secret"
	if strings.Contains(cfg.String(), "super-secret") {
		t.Error("String() must not include the webhook token")
	}
	if cfg.Webhook.Token != "super-secret" {
		t.Error("String() must not modify the original")
	}
}

// =============================================================================
// GLOBAL
// =============================================================================

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// called concurrently. Run with -race.
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()
	t.Setenv("HOME", t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	ResetGlobalForTesting()
	t.Setenv("HOME", t.TempDir())
	_ = Global()

	custom := Default()
	custom.Version = "custom"
	SetGlobal(custom)

	if Global().Version != "custom" {
		t.Errorf("Global().Version = %q, want custom", Global().Version)
	}
}

func TestConfig_SetGlobalSkipsLoad(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	custom := Default()
	custom.Version = "preset"
	SetGlobal(custom)

	globalConfigOnce.Do(func() {
		t.Error("Global() would still load from disk after SetGlobal")
	})
	if Global() != custom {
		t.Error("Global() should return the config passed to SetGlobal")
	}
}

// =============================================================================
// WATCH
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[chat]\npoll_interval_ms = 1000\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	err := Watch(ctx, path, 20*time.Millisecond, func(cfg *Config, err error) {
		if err == nil {
			got <- cfg
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[chat]\npoll_interval_ms = 2500\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-got:
		if cfg.Chat.PollIntervalMs != 2500 {
			t.Errorf("PollIntervalMs = %d, want 2500", cfg.Chat.PollIntervalMs)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within 3s")
	}
}
