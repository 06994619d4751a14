// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package onboard is the sign-in screen: three inputs, a submit gate that
// refuses malformed values, and a progress line while the handshake runs.
package onboard

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/greenchat-tui/internal/i18n"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
	"github.com/jeranaias/greenchat-tui/internal/session"
	"github.com/jeranaias/greenchat-tui/internal/ui/components"
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// Runner runs the handshake.
type Runner interface {
	RunObserved(ctx context.Context, form onboarding.Form, observe onboarding.Observer) (*session.Record, error)
}

// =============================================================================
// MESSAGES
// =============================================================================

// AuthorizedMsg is emitted once the handshake committed a session.
type AuthorizedMsg struct {
	Record *session.Record
}

type stepMsg struct {
	step onboarding.Step
	ch   chan onboarding.Step
}

type doneMsg struct {
	rec *session.Record
	err error
}

// =============================================================================
// MODEL
// =============================================================================

const (
	focusID = iota
	focusToken
	focusPhone
	focusSubmit
	focusCount
)

// cancelManager guards the cancel func of the running handshake.
type cancelManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (cm *cancelManager) set(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancel = fn
}

func (cm *cancelManager) fire() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancel != nil {
		cm.cancel()
		cm.cancel = nil
	}
}

// Model is the sign-in screen.
type Model struct {
	theme  *styles.Theme
	tr     i18n.Translator
	runner Runner

	fields [3]*components.Field
	focus  int
	banner components.Banner

	spinner spinner.Model
	running bool
	step    onboarding.Step
	stepCh  chan onboarding.Step
	cancel  *cancelManager

	width, height int
}

// New creates the screen. prefill seeds the inputs.
func New(theme *styles.Theme, tr i18n.Translator, runner Runner, prefill onboarding.Form) Model {
	id := components.NewField(tr.T(i18n.FormID), tr.T(i18n.FormIDHint), 20)
	token := components.NewField(tr.T(i18n.FormToken), tr.T(i18n.FormTokenHint), 80)
	token.SetMasked(true)
	phone := components.NewField(tr.T(i18n.FormPhone), tr.T(i18n.FormPhoneHint), 20)

	id.SetValue(prefill.ID)
	token.SetValue(prefill.Token)
	phone.SetValue(prefill.Phone)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Progress

	m := Model{
		theme:   theme,
		tr:      tr,
		runner:  runner,
		fields:  [3]*components.Field{id, token, phone},
		spinner: sp,
		cancel:  &cancelManager{},
	}
	m.banner.Hint = tr.T(i18n.BannerDismiss)
	m.fields[focusID].Focus()
	return m
}

// Init focuses the first input.
func (m Model) Init() tea.Cmd {
	return m.fields[focusID].Focus()
}

// Running reports whether a handshake is in progress.
func (m Model) Running() bool { return m.running }

// Form returns the current input values.
func (m Model) Form() onboarding.Form {
	return onboarding.Form{
		ID:    m.fields[focusID].Value(),
		Token: m.fields[focusToken].Value(),
		Phone: m.fields[focusPhone].Value(),
	}
}

// Cancel aborts a running handshake.
func (m Model) Cancel() { m.cancel.fire() }

// SetSize updates the layout size.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	fw := w - 8
	if fw > 50 {
		fw = 50
	}
	for _, f := range m.fields {
		f.SetWidth(fw)
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles input and handshake progress.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepMsg:
		if msg.ch != m.stepCh {
			return m, nil
		}
		m.step = msg.step
		return m, listen(msg.ch)

	case doneMsg:
		return m.finish(msg)

	case tea.KeyMsg:
		if m.running {
			if msg.Type == tea.KeyEsc {
				m.cancel.fire()
			}
			return m, nil
		}
		return m.handleKey(msg)
	}

	if m.focus < focusSubmit {
		return m, m.fields[m.focus].Update(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.banner.Dismiss()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFocus((m.focus + 1) % focusCount)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case tea.KeyEnter:
		if m.focus < focusPhone {
			return m, m.setFocus(m.focus + 1)
		}
		return m.submit()
	}

	if m.focus < focusSubmit {
		return m, m.fields[m.focus].Update(msg)
	}
	return m, nil
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for idx, f := range m.fields {
		if idx == i {
			cmd = f.Focus()
		} else {
			f.Blur()
		}
	}
	return cmd
}

// submit checks the form and starts the handshake. A form with invalid
// fields never reaches the runner.
func (m Model) submit() (Model, tea.Cmd) {
	m.banner.Dismiss()
	form := m.Form().Normalize()

	if fe := form.Validate(); fe != nil {
		cmd := m.markFields(fe)
		return m, cmd
	}
	for _, f := range m.fields {
		f.SetError("")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel.set(cancel)

	ch := make(chan onboarding.Step, 16)
	m.stepCh = ch
	m.running = true
	m.step = onboarding.StepValidate

	runner := m.runner
	run := func() tea.Msg {
		defer close(ch)
		rec, err := runner.RunObserved(ctx, form, func(s onboarding.Step) {
			select {
			case ch <- s:
			default:
			}
		})
		return doneMsg{rec: rec, err: err}
	}

	return m, tea.Batch(m.spinner.Tick, run, listen(ch))
}

func listen(ch chan onboarding.Step) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stepMsg{step: s, ch: ch}
	}
}

func (m Model) finish(msg doneMsg) (Model, tea.Cmd) {
	m.running = false
	m.stepCh = nil
	m.cancel.fire()

	if msg.err == nil {
		rec := msg.rec
		return m, func() tea.Msg { return AuthorizedMsg{Record: rec} }
	}

	oerr, ok := onboarding.AsError(msg.err)
	if !ok {
		m.banner.Show(components.BannerError, m.tr.Tf(i18n.BannerServer, msg.err.Error()))
		return m, nil
	}

	var cmd tea.Cmd
	if len(oerr.Fields) > 0 {
		cmd = m.markFields(oerr.Fields)
	}

	switch oerr.Kind {
	case onboarding.KindConnectivity:
		m.banner.Show(components.BannerError, m.tr.T(i18n.BannerOffline))
	case onboarding.KindCanceled:
		m.banner.Show(components.BannerWarning, m.tr.T(i18n.BannerCanceled))
	case onboarding.KindUnauthorized:
		m.banner.Show(components.BannerWarning, m.tr.T(i18n.BannerUnauthorized))
	case onboarding.KindServer:
		detail := oerr.Err
		if detail == nil {
			detail = errors.New(oerr.Kind.String())
		}
		m.banner.Show(components.BannerError, m.tr.Tf(i18n.BannerServer, detail.Error()))
	}
	return m, cmd
}

// markFields shows fe inline and focuses the first marked field.
func (m *Model) markFields(fe onboarding.FieldErrors) tea.Cmd {
	first := -1
	for idx, field := range onboarding.Fields {
		reason, bad := fe[field]
		if !bad {
			m.fields[idx].SetError("")
			continue
		}
		m.fields[idx].SetError(m.reasonText(field, reason))
		if first < 0 {
			first = idx
		}
	}
	if first < 0 {
		return nil
	}
	return m.setFocus(first)
}

func (m Model) reasonText(field onboarding.Field, reason onboarding.Reason) string {
	return ReasonText(m.tr, field, reason)
}

// ReasonText is the alert shown under field for reason.
func ReasonText(tr i18n.Translator, field onboarding.Field, reason onboarding.Reason) string {
	switch reason {
	case onboarding.ReasonRequired:
		return tr.T(i18n.ReasonRequired)
	case onboarding.ReasonUnauthorized:
		return tr.T(i18n.ReasonUnauthorized)
	case onboarding.ReasonRejected:
		return tr.T(i18n.ReasonRejected)
	case onboarding.ReasonUnregistered:
		return tr.T(i18n.ReasonUnregistered)
	}
	switch field {
	case onboarding.FieldToken:
		return tr.T(i18n.ReasonFormatToken)
	case onboarding.FieldPhone:
		return tr.T(i18n.ReasonFormatPhone)
	default:
		return tr.T(i18n.ReasonFormatID)
	}
}

// =============================================================================
// VIEW
// =============================================================================

var stepKeys = map[onboarding.Step]i18n.Key{
	onboarding.StepValidate:    i18n.StepValidate,
	onboarding.StepState:       i18n.StepState,
	onboarding.StepDrain:       i18n.StepDrain,
	onboarding.StepProbe:       i18n.StepProbe,
	onboarding.StepReceipt:     i18n.StepReceipt,
	onboarding.StepAcknowledge: i18n.StepAcknowledge,
	onboarding.StepSettings:    i18n.StepSettings,
	onboarding.StepCommit:      i18n.StepCommit,
	onboarding.StepDone:        i18n.StepDone,
}

// StepLabel is the progress text for step.
func StepLabel(tr i18n.Translator, step onboarding.Step) string {
	if key, ok := stepKeys[step]; ok {
		return tr.T(key)
	}
	return step.String()
}

// View renders the screen.
func (m Model) View() string {
	t := m.theme
	parts := []string{t.Title.Render(m.tr.T(i18n.FormTitle)), ""}

	if b := m.banner.View(t, m.width); b != "" {
		parts = append(parts, b, "")
	}

	for _, f := range m.fields {
		parts = append(parts, f.View(t))
	}

	button := t.Button
	if m.focus == focusSubmit {
		button = t.ButtonFocused
	}
	parts = append(parts, "", button.Render(m.tr.T(i18n.FormSubmit)))

	if m.running {
		label := StepLabel(m.tr, m.step)
		parts = append(parts, "",
			m.spinner.View()+" "+t.Progress.Render(label)+"  "+t.Help.Render(m.tr.T(i18n.FormCancelHint)))
	}

	parts = append(parts, "",
		t.Subtitle.Render(m.tr.Tf(i18n.FormRegister, t.Link.Render(i18n.RegisterURL))),
		t.Help.Render(m.tr.T(i18n.FormHelp)),
	)

	return t.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
