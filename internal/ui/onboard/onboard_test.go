// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/greenchat-tui/internal/i18n"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
	"github.com/jeranaias/greenchat-tui/internal/session"
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []onboarding.Form
	steps []onboarding.Step
	rec   *session.Record
	err   error
	block bool
}

func (f *fakeRunner) RunObserved(ctx context.Context, form onboarding.Form, observe onboarding.Observer) (*session.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, form)
	steps, rec, err, block := f.steps, f.rec, f.err, f.block
	f.mu.Unlock()

	for _, s := range steps {
		observe(s)
	}
	if block {
		<-ctx.Done()
		return nil, &onboarding.Error{Kind: onboarding.KindCanceled, Step: onboarding.StepReceipt, Err: ctx.Err()}
	}
	return rec, err
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var en = i18n.Translator{Lang: i18n.English}

func newModel(r Runner, prefill onboarding.Form) Model {
	m := New(styles.NewTheme("dark"), en, r, prefill)
	m.SetSize(80, 40)
	return m
}

// collect runs cmd and every command nested in a batch, returning the
// messages they produce. Blocking commands are abandoned after timeout.
func collect(t *testing.T, cmd tea.Cmd, timeout time.Duration) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	out := make(chan tea.Msg, 16)
	var wg sync.WaitGroup
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			if msg != nil {
				out <- msg
			}
		}()
	}
	run(cmd)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(timeout):
	}

	var msgs []tea.Msg
	for {
		select {
		case m := <-out:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

var valid = onboarding.Form{ID: "1101000001", Token: "abc123def", Phone: "79994442211"}

// =============================================================================
// SUBMIT GATE
// =============================================================================

func TestSubmit_InvalidFormNeverRuns(t *testing.T) {
	r := &fakeRunner{}
	m := newModel(r, onboarding.Form{ID: "11x", Token: "ABC", Phone: ""})
	m.setFocus(focusSubmit)

	m, cmd := press(m, tea.KeyEnter)
	collect(t, cmd, 200*time.Millisecond)

	assert.Zero(t, r.callCount())
	assert.False(t, m.Running())
	assert.Equal(t, "Only digits are allowed", m.fields[focusID].Error())
	assert.Equal(t, "Only lowercase letters and digits are allowed", m.fields[focusToken].Error())
	assert.Equal(t, "Required field", m.fields[focusPhone].Error())
	assert.Equal(t, focusID, m.focus)
}

func TestSubmit_SuccessEmitsAuthorized(t *testing.T) {
	rec := &session.Record{Phone: valid.Phone, Authorized: true}
	r := &fakeRunner{rec: rec, steps: []onboarding.Step{onboarding.StepValidate, onboarding.StepDone}}
	m := newModel(r, valid)
	m.setFocus(focusPhone)

	m, cmd := press(m, tea.KeyEnter)
	require.True(t, m.Running())

	msgs := collect(t, cmd, time.Second)
	done, ok := find[doneMsg](msgs)
	require.True(t, ok, "handshake should finish")

	m, cmd = m.Update(done)
	assert.False(t, m.Running())

	auth, ok := find[AuthorizedMsg](collect(t, cmd, time.Second))
	require.True(t, ok)
	assert.Same(t, rec, auth.Record)
	assert.Equal(t, 1, r.callCount())
}

func TestSubmit_TrimsValues(t *testing.T) {
	r := &fakeRunner{rec: &session.Record{}}
	m := newModel(r, onboarding.Form{ID: " 1101000001 ", Token: "abc123def ", Phone: "79994442211"})
	m.setFocus(focusSubmit)

	_, cmd := press(m, tea.KeyEnter)
	collect(t, cmd, time.Second)

	require.Equal(t, 1, r.callCount())
	assert.Equal(t, valid, r.calls[0])
}

func TestStepMessagesUpdateProgress(t *testing.T) {
	r := &fakeRunner{block: true}
	m := newModel(r, valid)
	m.setFocus(focusSubmit)

	m, _ = press(m, tea.KeyEnter)
	m, _ = m.Update(stepMsg{step: onboarding.StepReceipt, ch: m.stepCh})
	assert.Equal(t, onboarding.StepReceipt, m.step)
	assert.Contains(t, m.View(), "Waiting for delivery receipt")

	// Messages from an earlier run are ignored.
	m, _ = m.Update(stepMsg{step: onboarding.StepDrain, ch: make(chan onboarding.Step)})
	assert.Equal(t, onboarding.StepReceipt, m.step)
}

func TestEscCancelsRunningHandshake(t *testing.T) {
	r := &fakeRunner{block: true}
	m := newModel(r, valid)
	m.setFocus(focusSubmit)

	m, cmd := press(m, tea.KeyEnter)
	results := make(chan []tea.Msg, 1)
	go func() { results <- collect(t, cmd, 2*time.Second) }()

	// Give the runner a moment to start.
	time.Sleep(20 * time.Millisecond)
	m, _ = press(m, tea.KeyEsc)

	done, ok := find[doneMsg](<-results)
	require.True(t, ok)
	m, _ = m.Update(done)

	assert.False(t, m.Running())
	assert.True(t, m.banner.Visible())
	assert.Equal(t, "Sign-in canceled", m.banner.Message)
}

// =============================================================================
// ERROR SURFACING
// =============================================================================

func TestFinish_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		banner     string
		fieldError map[int]string
	}{
		{
			name:   "offline",
			err:    &onboarding.Error{Kind: onboarding.KindConnectivity, Err: errors.New("dial tcp")},
			banner: "No internet connection",
		},
		{
			name:   "server",
			err:    &onboarding.Error{Kind: onboarding.KindServer, Err: errors.New("HTTP 500")},
			banner: "Server error: HTTP 500",
		},
		{
			name:       "bad token",
			err:        &onboarding.Error{Kind: onboarding.KindInvalidCredentials, Fields: onboarding.FieldErrors{onboarding.FieldToken: onboarding.ReasonUnauthorized}},
			fieldError: map[int]string{focusToken: "Invalid or unauthorized credentials"},
		},
		{
			name: "not authorized",
			err: &onboarding.Error{Kind: onboarding.KindUnauthorized, Fields: onboarding.FieldErrors{
				onboarding.FieldID: onboarding.ReasonUnauthorized, onboarding.FieldToken: onboarding.ReasonUnauthorized}},
			banner: "The instance is not authorized. Scan the QR code in the console first.",
			fieldError: map[int]string{
				focusID:    "Invalid or unauthorized credentials",
				focusToken: "Invalid or unauthorized credentials",
			},
		},
		{
			name:       "unregistered phone",
			err:        &onboarding.Error{Kind: onboarding.KindRejectedRecipient, Fields: onboarding.FieldErrors{onboarding.FieldPhone: onboarding.ReasonUnregistered}},
			fieldError: map[int]string{focusPhone: "Number is not registered in WhatsApp"},
		},
		{
			name:   "untyped",
			err:    errors.New("boom"),
			banner: "Server error: boom",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newModel(&fakeRunner{}, valid)
			m.running = true
			m, _ = m.Update(doneMsg{err: tc.err})

			if tc.banner == "" {
				assert.False(t, m.banner.Visible(), "no banner expected, got %q", m.banner.Message)
			} else {
				assert.True(t, m.banner.Visible())
				assert.Equal(t, tc.banner, m.banner.Message)
			}
			for idx, f := range m.fields {
				assert.Equal(t, tc.fieldError[idx], f.Error(), "field %d", idx)
			}
		})
	}
}

func TestEscDismissesBanner(t *testing.T) {
	m := newModel(&fakeRunner{}, valid)
	m, _ = m.Update(doneMsg{err: &onboarding.Error{Kind: onboarding.KindConnectivity}})
	require.True(t, m.banner.Visible())

	m, _ = press(m, tea.KeyEsc)
	assert.False(t, m.banner.Visible())
}

// =============================================================================
// FOCUS
// =============================================================================

func TestFocusCycle(t *testing.T) {
	m := newModel(&fakeRunner{}, onboarding.Form{})
	assert.Equal(t, focusID, m.focus)

	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, focusToken, m.focus)
	assert.True(t, m.fields[focusToken].Focused())
	assert.False(t, m.fields[focusID].Focused())

	m, _ = press(m, tea.KeyEnter)
	assert.Equal(t, focusPhone, m.focus)

	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, focusSubmit, m.focus)

	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, focusID, m.focus)

	m, _ = press(m, tea.KeyShiftTab)
	assert.Equal(t, focusSubmit, m.focus)
}

func TestTypingFillsFocusedField(t *testing.T) {
	m := newModel(&fakeRunner{}, onboarding.Form{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("42")})
	assert.Equal(t, "42", m.Form().ID)
}

func TestView_ShowsRegisterLink(t *testing.T) {
	m := newModel(&fakeRunner{}, onboarding.Form{})
	assert.Contains(t, m.View(), i18n.RegisterURL)
	assert.Contains(t, m.View(), "Instance ID")
}
