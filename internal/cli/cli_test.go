// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/greenchat-tui/internal/config"
	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/i18n"
	"github.com/jeranaias/greenchat-tui/internal/logging"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
	"github.com/jeranaias/greenchat-tui/internal/session"
)

var en = i18n.Translator{Lang: i18n.English}

// =============================================================================
// PARSING
// =============================================================================

func TestParse(t *testing.T) {
	t.Setenv("GREENCHAT_INSTANCE_ID", "")
	t.Setenv("GREENCHAT_API_TOKEN", "")

	tests := []struct {
		name string
		argv []string
		cmd  Command
		// check inspects the parsed args.
		check func(t *testing.T, a Args)
	}{
		{"default is tui", nil, CmdTUI, nil},
		{"tui", []string{"tui"}, CmdTUI, nil},
		{"login with flags", []string{"login", "--id", "1101", "--token=abc", "--phone", "7900"}, CmdLogin,
			func(t *testing.T, a Args) {
				assert.Equal(t, "1101", a.ID)
				assert.Equal(t, "abc", a.Token)
				assert.Equal(t, "7900", a.Phone)
			}},
		{"status alias", []string{"s", "--json"}, CmdStatus,
			func(t *testing.T, a Args) { assert.True(t, a.JSON) }},
		{"send joins text", []string{"send", "--phone", "7900", "hello", "there"}, CmdSend,
			func(t *testing.T, a Args) {
				assert.Equal(t, "hello there", a.Text)
				assert.Equal(t, "7900", a.Phone)
			}},
		{"bool flag does not eat text", []string{"send", "--json", "hi"}, CmdSend,
			func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
				assert.Equal(t, "hi", a.Text)
			}},
		{"serve addr", []string{"serve", "--addr", ":9090"}, CmdServe,
			func(t *testing.T, a Args) { assert.Equal(t, ":9090", a.Addr) }},
		{"config set", []string{"config", "set", "ui.theme", "light"}, CmdConfig,
			func(t *testing.T, a Args) {
				assert.Equal(t, "set", a.Subcommand)
				assert.Equal(t, "ui.theme", a.ConfigKey)
				assert.Equal(t, "light", a.ConfigVal)
			}},
		{"config file", []string{"--config", "/tmp/x.toml", "status"}, CmdStatus,
			func(t *testing.T, a Args) { assert.Equal(t, "/tmp/x.toml", a.ConfigPath) }},
		{"version flag", []string{"--version"}, CmdVersion, nil},
		{"help flag", []string{"status", "-h"}, CmdHelp, nil},
		{"unknown", []string{"frobnicate"}, CmdUnknown,
			func(t *testing.T, a Args) { assert.Equal(t, "frobnicate", a.Name) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, args := Parse(tc.argv)
			assert.Equal(t, tc.cmd, cmd)
			if tc.check != nil {
				tc.check(t, args)
			}
		})
	}
}

func TestParse_EnvCredentials(t *testing.T) {
	t.Setenv("GREENCHAT_INSTANCE_ID", "1101000001")
	t.Setenv("GREENCHAT_API_TOKEN", "envtoken")

	_, args := Parse([]string{"status"})
	assert.Equal(t, "1101000001", args.ID)
	assert.Equal(t, "envtoken", args.Token)

	_, args = Parse([]string{"status", "--token", "flagtoken"})
	assert.Equal(t, "flagtoken", args.Token, "flag wins over env")
}

func TestArgParser_DoubleDash(t *testing.T) {
	p := NewArgParser([]string{"send", "--", "--not-a-flag"})
	assert.Equal(t, "--not-a-flag", p.Positional(1))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "Y", "on", "1", "true"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", usageErr("send", "bad"), ExitUsageError},
		{"tty", &TTYRequiredError{Operation: "log in"}, ExitUsageError},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "log.level", Message: "bad"}}), ExitConfigError},
		{"onboarding offline", &onboarding.Error{Kind: onboarding.KindConnectivity}, ExitNetworkError},
		{"onboarding unauthorized", &onboarding.Error{Kind: onboarding.KindUnauthorized}, ExitAuthError},
		{"onboarding canceled", &onboarding.Error{Kind: onboarding.KindCanceled}, ExitCanceled},
		{"gateway unauthorized", &CommandError{Command: "status", Err: &gateway.Error{Kind: gateway.KindUnauthorized}}, ExitAuthError},
		{"gateway unreachable", &gateway.Error{Kind: gateway.KindUnreachable}, ExitNetworkError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

// =============================================================================
// LOGIN
// =============================================================================

type fakeRunner struct {
	calls int
	steps []onboarding.Step
	rec   *session.Record
	err   error
}

func (f *fakeRunner) RunObserved(_ context.Context, _ onboarding.Form, observe onboarding.Observer) (*session.Record, error) {
	f.calls++
	for _, s := range f.steps {
		observe(s)
	}
	return f.rec, f.err
}

func TestRunLogin_InvalidFormNeverRuns(t *testing.T) {
	r := &fakeRunner{}
	var out bytes.Buffer

	_, err := runLogin(context.Background(), &out, en, r, onboarding.Form{ID: "abc", Token: "", Phone: "7900"})

	require.Error(t, err)
	assert.Zero(t, r.calls)
	oe, ok := onboarding.AsError(err)
	require.True(t, ok)
	assert.Equal(t, onboarding.KindInvalidInput, oe.Kind)
	assert.True(t, oe.Fields.Has(onboarding.FieldID))
	assert.True(t, oe.Fields.Has(onboarding.FieldToken))
	assert.Contains(t, out.String(), "token")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestRunLogin_PrintsSteps(t *testing.T) {
	rec := &session.Record{Credentials: session.Credentials{InstanceID: "1101"}, Phone: "7900"}
	r := &fakeRunner{steps: []onboarding.Step{onboarding.StepValidate, onboarding.StepProbe}, rec: rec}
	var out bytes.Buffer

	got, err := runLogin(context.Background(), &out, en, r, onboarding.Form{ID: " 1101 ", Token: "abc1", Phone: "7900"})

	require.NoError(t, err)
	assert.Same(t, rec, got)
	assert.Equal(t, 1, r.calls)
	assert.Contains(t, out.String(), en.T(i18n.StepValidate))
	assert.Contains(t, out.String(), en.T(i18n.StepProbe))
}

func TestRunLogin_ReportsFailure(t *testing.T) {
	r := &fakeRunner{err: &onboarding.Error{Kind: onboarding.KindConnectivity, Step: onboarding.StepValidate, Err: errors.New("dial tcp")}}
	var out bytes.Buffer

	_, err := runLogin(context.Background(), &out, en, r, onboarding.Form{ID: "1101", Token: "abc1", Phone: "7900"})

	require.Error(t, err)
	assert.Contains(t, out.String(), en.T(i18n.BannerOffline))
	assert.Equal(t, ExitNetworkError, ExitCode(err))
}

// =============================================================================
// STATUS / SEND
// =============================================================================

type fakeGateway struct {
	state    gateway.State
	settings *gateway.Settings
	err      error
	sentTo   string
	sentText string
}

func (f *fakeGateway) GetStateInstance(context.Context, gateway.Instance) (gateway.State, error) {
	return f.state, f.err
}

func (f *fakeGateway) GetSettings(context.Context, gateway.Instance) (*gateway.Settings, error) {
	if f.settings == nil {
		return nil, errors.New("no settings")
	}
	return f.settings, nil
}

func (f *fakeGateway) SendMessage(_ context.Context, _ gateway.Instance, phone, text string) (string, error) {
	f.sentTo, f.sentText = phone, text
	return "BAE5", f.err
}

var inst = gateway.Instance{ID: "1101000001", Token: "secrettoken"}

func TestRunStatus_JSON(t *testing.T) {
	gw := &fakeGateway{state: gateway.StateAuthorized, settings: &gateway.Settings{Wid: "79001234567@c.us", StateWebhook: "yes"}}
	var out bytes.Buffer

	require.NoError(t, runStatus(context.Background(), &out, gw, "http://gw", inst, true))

	var report StatusReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.Authorized)
	assert.Equal(t, gateway.StateAuthorized, report.State)
	require.NotNil(t, report.Settings)
	assert.NotContains(t, out.String(), "secrettoken")
}

func TestRunStatus_Text(t *testing.T) {
	gw := &fakeGateway{state: gateway.StateNotAuthorized}
	var out bytes.Buffer

	require.NoError(t, runStatus(context.Background(), &out, gw, "http://gw", inst, false))
	assert.Contains(t, out.String(), "notAuthorized")
	assert.NotContains(t, out.String(), "secrettoken")
}

func TestRunStatus_Error(t *testing.T) {
	gw := &fakeGateway{err: &gateway.Error{Kind: gateway.KindUnauthorized, Status: 401}}
	err := runStatus(context.Background(), &bytes.Buffer{}, gw, "http://gw", inst, false)
	require.Error(t, err)
	assert.Equal(t, ExitAuthError, ExitCode(err))
}

func TestRunSend(t *testing.T) {
	t.Run("sends", func(t *testing.T) {
		gw := &fakeGateway{}
		var out bytes.Buffer
		err := runSend(context.Background(), &out, gw, inst, Args{Phone: " 79001234567 ", Text: " hi ", JSON: true})
		require.NoError(t, err)
		assert.Equal(t, "79001234567", gw.sentTo)
		assert.Equal(t, "hi", gw.sentText)

		var res SendResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		assert.Equal(t, "79001234567@c.us", res.ChatID)
		assert.Equal(t, "BAE5", res.MessageID)
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		gw := &fakeGateway{}
		err := runSend(context.Background(), &bytes.Buffer{}, gw, inst, Args{Phone: "+7 900", Text: "hi"})
		assert.Equal(t, ExitUsageError, ExitCode(err))
		assert.Empty(t, gw.sentText)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		err := runSend(context.Background(), &bytes.Buffer{}, &fakeGateway{}, inst, Args{Phone: "7900", Text: "  "})
		assert.Equal(t, ExitUsageError, ExitCode(err))
	})
}

func TestInstanceFrom_RequiresCredentials(t *testing.T) {
	_, err := instanceFrom("status", Args{ID: "1101"})
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// CONFIG
// =============================================================================

func testEnv(t *testing.T) *Env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	require.NoError(t, config.SaveTOML(cfg, path))
	return &Env{Config: cfg, Logger: logging.Discard(), ConfigPath: path}
}

func TestRunConfig_SetPersists(t *testing.T) {
	env := testEnv(t)
	var out bytes.Buffer

	err := runConfig(&out, env, Args{Subcommand: "set", ConfigKey: "chat.poll_interval_ms", ConfigVal: "2500"})
	require.NoError(t, err)
	assert.Equal(t, 2500, env.Config.Chat.PollIntervalMs)

	loaded, err := config.LoadFromPath(env.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 2500, loaded.Chat.PollIntervalMs)
}

func TestRunConfig_SetRejectsInvalid(t *testing.T) {
	env := testEnv(t)

	err := runConfig(&bytes.Buffer{}, env, Args{Subcommand: "set", ConfigKey: "log.format", ConfigVal: "xml"})
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
	assert.Equal(t, "text", env.Config.Log.Format, "config unchanged")
}

func TestRunConfig_GetAndShowRedactToken(t *testing.T) {
	env := testEnv(t)
	env.Config.Webhook.Token = "hook-secret"

	var out bytes.Buffer
	require.NoError(t, runConfig(&out, env, Args{Subcommand: "get", ConfigKey: "webhook.token"}))
	assert.NotContains(t, out.String(), "hook-secret")

	out.Reset()
	require.NoError(t, runConfig(&out, env, Args{Subcommand: "show", JSON: true}))
	assert.NotContains(t, out.String(), "hook-secret")
	assert.Equal(t, "hook-secret", env.Config.Webhook.Token)
}

func TestRunConfig_Unknown(t *testing.T) {
	err := runConfig(&bytes.Buffer{}, testEnv(t), Args{Subcommand: "explode"})
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestHandleVersion_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, HandleVersion(&out, Args{JSON: true}))
	var info VersionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, Version, info.Version)
}
