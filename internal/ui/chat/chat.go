// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the conversation screen shown after sign-in: the message
// thread, a composer, and a poll loop that pulls new notifications from the
// gateway.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/i18n"
	"github.com/jeranaias/greenchat-tui/internal/inbox"
	"github.com/jeranaias/greenchat-tui/internal/logging"
	"github.com/jeranaias/greenchat-tui/internal/model"
	"github.com/jeranaias/greenchat-tui/internal/session"
	"github.com/jeranaias/greenchat-tui/internal/ui/components"
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Sender is the part of the gateway client the screen needs.
type Sender interface {
	SendMessage(ctx context.Context, inst gateway.Instance, phone, text string) (string, error)
	GetChatHistory(ctx context.Context, inst gateway.Instance, chatID string, count int) ([]gateway.HistoryMessage, error)
}

// Poller consumes pending notifications.
type Poller interface {
	Poll(ctx context.Context) ([]inbox.Event, error)
}

// History persists the thread. It may be nil.
type History interface {
	Save(ctx context.Context, instanceID string, msg *model.Message) error
	List(ctx context.Context, instanceID, chatID string, limit int) ([]*model.Message, error)
}

// Options tune the screen.
type Options struct {
	PollInterval   time.Duration
	HistoryLoad    int
	RemoteHistory  bool
	ShowTimestamps bool
}

// DefaultPollInterval is used when Options leaves it unset.
const DefaultPollInterval = time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// LogoutMsg asks the app to end the session.
type LogoutMsg struct{}

type historyLoadedMsg struct {
	msgs []*model.Message
	err  error
}

type pollTickMsg struct{}

type polledMsg struct {
	events []inbox.Event
	err    error
}

type sentMsg struct {
	localID  string
	remoteID string
	err      error
}

type savedMsg struct{ err error }

// =============================================================================
// MODEL
// =============================================================================

// Model is the conversation screen.
type Model struct {
	theme   *styles.Theme
	tr      i18n.Translator
	gw      Sender
	poller  Poller
	history History
	logger  *slog.Logger
	opts    Options

	rec    *session.Record
	chatID string
	conv   *model.Conversation

	viewport viewport.Model
	composer textinput.Model
	banner   components.Banner

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
}

// New creates the screen for the committed session rec.
func New(theme *styles.Theme, tr i18n.Translator, rec *session.Record, gw Sender, poller Poller, history History, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	ti := textinput.New()
	ti.Placeholder = tr.T(i18n.ChatPlaceholder)
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Green).Bold(true)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ti.Focus()

	ctx, cancel := context.WithCancel(context.Background())
	chatID := gateway.ChatID(rec.Phone)

	m := Model{
		theme:    theme,
		tr:       tr,
		gw:       gw,
		poller:   poller,
		history:  history,
		logger:   logging.Discard(),
		opts:     opts,
		rec:      rec,
		chatID:   chatID,
		conv:     model.NewConversation(chatID),
		viewport: viewport.New(80, 20),
		composer: ti,
		ctx:      ctx,
		cancel:   cancel,
	}
	m.banner.Hint = tr.T(i18n.BannerDismiss)
	m.refresh(true)
	return m
}

// WithLogger sets the logger.
func (m Model) WithLogger(l *slog.Logger) Model {
	if l != nil {
		m.logger = l
	}
	return m
}

// Init loads the history and starts polling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadHistory(), m.tick(0))
}

// Close stops polling and in-flight calls.
func (m Model) Close() { m.cancel() }

// Conversation exposes the thread.
func (m Model) Conversation() *model.Conversation { return m.conv }

// ChatID returns the chat shown on this screen.
func (m Model) ChatID() string { return m.chatID }

// SetOptions applies reloaded settings. A changed poll interval takes
// effect on the next tick.
func (m *Model) SetOptions(opts Options) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	m.opts = opts
	m.refresh(false)
}

// SetSize updates the layout size.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.theme.SetSize(w, h)
	m.composer.Width = w - 6

	// Header, composer and help take five rows.
	vh := h - 5
	if m.banner.Visible() {
		vh--
	}
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = w
	m.viewport.Height = vh
	m.refresh(true)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles keys, polling and send results.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("load history", "error", msg.err)
		}
		m.conv.AddAll(msg.msgs)
		m.refresh(true)
		return m, nil

	case pollTickMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		return m, m.poll()

	case polledMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		cmd := m.applyEvents(msg.events)
		if msg.err != nil && m.ctx.Err() == nil {
			m.logger.Warn("poll notifications", "error", msg.err)
			m.showBanner(components.BannerWarning, m.tr.Tf(i18n.ChatPollFailed, msg.err.Error()))
		}
		return m, tea.Batch(cmd, m.tick(m.opts.PollInterval))

	case sentMsg:
		if msg.err != nil {
			m.conv.MarkFailed(msg.localID)
			m.logger.Warn("send message", "error", msg.err)
			m.showBanner(components.BannerError, m.tr.Tf(i18n.ChatSendFailed, msg.err.Error()))
			m.refresh(true)
			return m, nil
		}
		m.conv.Confirm(msg.localID, msg.remoteID)
		m.refresh(true)
		id := msg.remoteID
		if id == "" {
			id = msg.localID
		}
		return m, m.save(m.conv.Get(id))

	case savedMsg:
		if msg.err != nil {
			m.logger.Warn("save history", "error", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+l":
		m.cancel()
		return m, func() tea.Msg { return LogoutMsg{} }
	case "esc":
		m.hideBanner()
		return m, nil
	case "enter":
		return m.send()
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) send() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		return m, nil
	}
	m.composer.Reset()

	msg := model.NewOutgoing(m.chatID, text)
	m.conv.Add(msg)
	m.refresh(true)

	ctx, gw, inst, phone, localID := m.ctx, m.gw, m.rec.Instance(), m.rec.Phone, msg.ID
	return m, func() tea.Msg {
		id, err := gw.SendMessage(ctx, inst, phone, text)
		return sentMsg{localID: localID, remoteID: id, err: err}
	}
}

// applyEvents adds polled messages for this chat and reports state changes.
func (m *Model) applyEvents(events []inbox.Event) tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range events {
		switch {
		case ev.Message != nil:
			if ev.Message.ChatID != m.chatID {
				continue
			}
			if m.conv.Add(ev.Message) {
				cmds = append(cmds, m.save(ev.Message))
			}
		case ev.State != "":
			if !ev.State.Authorized() {
				m.showBanner(components.BannerWarning, m.tr.Tf(i18n.ChatStateChange, string(ev.State)))
			}
		}
	}
	m.refresh(false)
	return tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) tick(d time.Duration) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return pollTickMsg{} }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (m Model) poll() tea.Cmd {
	ctx, p := m.ctx, m.poller
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		events, err := p.Poll(ctx)
		return polledMsg{events: events, err: err}
	}
}

func (m Model) loadHistory() tea.Cmd {
	ctx, store, gw, opts := m.ctx, m.history, m.gw, m.opts
	inst, chatID := m.rec.Instance(), m.chatID
	return func() tea.Msg {
		var (
			out      []*model.Message
			firstErr error
		)
		if store != nil {
			msgs, err := store.List(ctx, inst.ID, chatID, opts.HistoryLoad)
			if err != nil {
				firstErr = err
			}
			out = append(out, msgs...)
		}
		if opts.RemoteHistory && gw != nil {
			remote, err := gw.GetChatHistory(ctx, inst, chatID, opts.HistoryLoad)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			for _, h := range remote {
				if msg := inbox.MessageFromHistory(h); msg.Content() != "" {
					out = append(out, msg)
				}
			}
		}
		return historyLoadedMsg{msgs: out, err: firstErr}
	}
}

func (m Model) save(msg *model.Message) tea.Cmd {
	if m.history == nil || msg == nil || msg.IsLocal() {
		return nil
	}
	ctx, store, instID := m.ctx, m.history, m.rec.Credentials.InstanceID
	cp := *msg
	return func() tea.Msg {
		return savedMsg{err: store.Save(ctx, instID, &cp)}
	}
}

// =============================================================================
// VIEW
// =============================================================================

func (m *Model) showBanner(kind components.BannerKind, text string) {
	wasVisible := m.banner.Visible()
	m.banner.Show(kind, text)
	if !wasVisible && m.height > 0 {
		m.SetSize(m.width, m.height)
	}
}

func (m *Model) hideBanner() {
	if !m.banner.Visible() {
		return
	}
	m.banner.Dismiss()
	if m.height > 0 {
		m.SetSize(m.width, m.height)
	}
}

// refresh re-renders the thread. The view follows new messages when it was
// already at the bottom or when force is set.
func (m *Model) refresh(force bool) {
	atBottom := m.viewport.AtBottom()
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	m.viewport.SetContent(components.RenderThread(
		m.conv.Messages(), m.theme, width, m.opts.ShowTimestamps, m.tr.T(i18n.ChatEmpty)))
	if force || atBottom {
		m.viewport.GotoBottom()
	}
}

// View renders the screen.
func (m Model) View() string {
	t := m.theme
	header := t.Header.Width(max(m.width, 1)).Render(m.tr.Tf(i18n.ChatTitle, m.rec.Phone))

	parts := []string{header}
	if b := m.banner.View(t, m.width); b != "" {
		parts = append(parts, b)
	}
	parts = append(parts,
		m.viewport.View(),
		t.Composer.Width(max(m.width, 1)).Render(m.composer.View()),
		t.Help.Render(m.tr.T(i18n.ChatHelp)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
