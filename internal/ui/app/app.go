// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model. It shows the onboarding form until
// a session is committed, then the chat screen, and returns to the form when
// the user logs out.
package app

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/greenchat-tui/internal/config"
	"github.com/jeranaias/greenchat-tui/internal/i18n"
	"github.com/jeranaias/greenchat-tui/internal/logging"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
	"github.com/jeranaias/greenchat-tui/internal/session"
	"github.com/jeranaias/greenchat-tui/internal/ui/chat"
	"github.com/jeranaias/greenchat-tui/internal/ui/onboard"
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// Screen identifies the visible screen.
type Screen int

const (
	ScreenOnboard Screen = iota // credentials form
	ScreenChat                  // conversation
)

// ChatFactory builds the chat screen for a committed session.
type ChatFactory func(rec *session.Record, opts chat.Options) chat.Model

// Deps are the collaborators of the root model.
type Deps struct {
	Theme    *styles.Theme
	Config   *config.Config
	Runner   onboard.Runner
	Sessions *session.Store
	NewChat  ChatFactory
	Prefill  onboarding.Form
	Logger   *slog.Logger
}

// ConfigReloadedMsg carries the result of a config file reload.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// Model is the application model.
type Model struct {
	deps   Deps
	cfg    *config.Config
	tr     i18n.Translator
	logger *slog.Logger

	screen  Screen
	onboard onboard.Model
	chat    chat.Model

	width, height int
}

// New creates the root model showing the onboarding form.
func New(d Deps) *Model {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if d.Theme == nil {
		d.Theme = styles.NewTheme(cfg.UI.Theme)
	}
	tr := i18n.New(cfg.UI.Language)

	return &Model{
		deps:    d,
		cfg:     cfg,
		tr:      tr,
		logger:  logger,
		screen:  ScreenOnboard,
		onboard: onboard.New(d.Theme, tr, d.Runner, d.Prefill),
	}
}

// Screen returns the visible screen.
func (m *Model) Screen() Screen { return m.screen }

// ChatOptions derives the chat screen options from cfg.
func ChatOptions(cfg *config.Config) chat.Options {
	return chat.Options{
		PollInterval:   cfg.Chat.PollInterval(),
		HistoryLoad:    cfg.Chat.HistoryLoad,
		RemoteHistory:  cfg.Chat.RemoteHistory,
		ShowTimestamps: cfg.UI.ShowTimestamps,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("greenchat"), m.onboard.Init())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.onboard.SetSize(msg.Width, msg.Height)
		if m.screen == ScreenChat {
			m.chat.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.shutdown()
			return m, tea.Quit
		}

	case onboard.AuthorizedMsg:
		return m, m.openChat(msg.Record)

	case chat.LogoutMsg:
		return m, m.logout()

	case ConfigReloadedMsg:
		m.applyConfig(msg)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.screen {
	case ScreenChat:
		m.chat, cmd = m.chat.Update(msg)
	default:
		m.onboard, cmd = m.onboard.Update(msg)
	}
	return m, cmd
}

func (m *Model) openChat(rec *session.Record) tea.Cmd {
	if rec == nil || m.deps.NewChat == nil {
		return nil
	}
	m.logger.Info("session started", "session", rec.ID, "instance", rec.Credentials.InstanceID)
	m.chat = m.deps.NewChat(rec, ChatOptions(m.cfg))
	if m.width > 0 {
		m.chat.SetSize(m.width, m.height)
	}
	m.screen = ScreenChat
	return m.chat.Init()
}

func (m *Model) logout() tea.Cmd {
	if m.screen != ScreenChat {
		return nil
	}
	m.chat.Close()

	var prefill onboarding.Form
	if s := m.deps.Sessions; s != nil {
		if rec := s.Current(); rec != nil {
			m.logger.Info("session ended", "session", rec.ID, "duration", s.Duration())
			// The token is not kept after logout.
			prefill = onboarding.Form{ID: rec.Credentials.InstanceID, Phone: rec.Phone}
		}
		s.Clear()
	}

	m.onboard = onboard.New(m.deps.Theme, m.tr, m.deps.Runner, prefill)
	if m.width > 0 {
		m.onboard.SetSize(m.width, m.height)
	}
	m.screen = ScreenOnboard
	return m.onboard.Init()
}

// applyConfig takes the live-reloadable settings from a new config: theme,
// language for screens built later, timestamps and poll interval.
func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		m.logger.Warn("config reload failed", "error", msg.Err)
		return
	}
	if msg.Config == nil {
		return
	}
	old := m.cfg
	m.cfg = msg.Config
	m.logger.Info("config reloaded")

	if msg.Config.UI.Theme != old.UI.Theme {
		*m.deps.Theme = *styles.NewTheme(msg.Config.UI.Theme)
		m.deps.Theme.SetSize(m.width, m.height)
	}
	if msg.Config.UI.Language != old.UI.Language {
		m.tr = i18n.New(msg.Config.UI.Language)
	}
	if m.screen == ScreenChat {
		m.chat.SetOptions(ChatOptions(msg.Config))
	}
}

func (m *Model) shutdown() {
	m.onboard.Cancel()
	if m.screen == ScreenChat {
		m.chat.Close()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == ScreenChat {
		return m.chat.View()
	}
	return m.onboard.View()
}
