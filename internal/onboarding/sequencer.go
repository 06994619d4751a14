// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package onboarding validates the login form and runs the handshake that
// unlocks the chat: check credentials, check authorization, drain stale
// notifications, send a probe message, wait for its receipt, acknowledge it,
// push webhook settings and commit the session.
//
// Steps run strictly in order and the first failure ends the run. The two
// polling loops are bounded and every call honors the caller's context.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeranaias/greenchat-tui/internal/config"
	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/logging"
	"github.com/jeranaias/greenchat-tui/internal/metrics"
	"github.com/jeranaias/greenchat-tui/internal/poll"
	"github.com/jeranaias/greenchat-tui/internal/session"
)

// Step is one stage of the handshake.
type Step int

const (
	StepValidate Step = iota
	StepState
	StepDrain
	StepProbe
	StepReceipt
	StepAcknowledge
	StepSettings
	StepCommit
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepValidate:
		return "validate"
	case StepState:
		return "state"
	case StepDrain:
		return "drain"
	case StepProbe:
		return "probe"
	case StepReceipt:
		return "receipt"
	case StepAcknowledge:
		return "acknowledge"
	case StepSettings:
		return "settings"
	case StepCommit:
		return "commit"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Gateway is the subset of the gateway client used by the handshake.
type Gateway interface {
	GetSettings(ctx context.Context, inst gateway.Instance) (*gateway.Settings, error)
	GetStateInstance(ctx context.Context, inst gateway.Instance) (gateway.State, error)
	ReceiveNotification(ctx context.Context, inst gateway.Instance) (*gateway.Notification, error)
	DeleteNotification(ctx context.Context, inst gateway.Instance, receiptID int64) (bool, error)
	SendMessage(ctx context.Context, inst gateway.Instance, phone, text string) (string, error)
	SetSettings(ctx context.Context, inst gateway.Instance, update gateway.SettingsUpdate) (bool, error)
}

// Committer publishes the session once the handshake succeeded.
type Committer interface {
	Commit(ctx context.Context, creds session.Credentials, phone string) (*session.Record, error)
}

// Options tune the handshake.
type Options struct {
	ProbeText string
	// SendDelay is pushed as delaySendMessagesMilliseconds.
	SendDelay time.Duration
	// DrainLimit caps discarded notifications; 0 drains until empty.
	DrainLimit int
	// Receipt bounds the wait for the probe's notification.
	Receipt poll.Config
	// WebhookURL and WebhookToken are pushed with the settings when set.
	WebhookURL   string
	WebhookToken string
}

// DefaultOptions mirrors the built-in configuration.
func DefaultOptions() Options {
	return OptionsFrom(config.Default().Onboarding)
}

// OptionsFrom builds Options from the onboarding config section.
func OptionsFrom(c config.OnboardingConfig) Options {
	return Options{
		ProbeText:  c.ProbeText,
		SendDelay:  c.SendDelay(),
		DrainLimit: c.DrainLimit,
		Receipt: poll.Config{
			MaxAttempts:    c.ReceiptAttempts,
			InitialBackoff: c.ReceiptInitialBackoff(),
			MaxBackoff:     c.ReceiptMaxBackoff(),
			JitterFactor:   0.1,
		},
	}
}

// Observer is told about each step before it starts.
type Observer func(Step)

// Sequencer runs the handshake.
type Sequencer struct {
	gw       Gateway
	sessions Committer
	opts     Options
	logger   *slog.Logger
	observe  Observer
}

// New creates a sequencer.
func New(gw Gateway, sessions Committer, opts Options) *Sequencer {
	return &Sequencer{
		gw:       gw,
		sessions: sessions,
		opts:     opts,
		logger:   logging.Discard(),
		observe:  func(Step) {},
	}
}

// WithLogger sets the logger.
func (s *Sequencer) WithLogger(l *slog.Logger) *Sequencer {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithObserver sets the step observer.
func (s *Sequencer) WithObserver(fn Observer) *Sequencer {
	if fn != nil {
		s.observe = fn
	}
	return s
}

// Run executes the handshake for form and returns the committed session.
// Every failure is an *Error.
func (s *Sequencer) Run(ctx context.Context, form Form) (*session.Record, error) {
	return s.RunObserved(ctx, form, s.observe)
}

// RunObserved is Run with an observer for this run only.
func (s *Sequencer) RunObserved(ctx context.Context, form Form, observe Observer) (*session.Record, error) {
	if observe == nil {
		observe = s.observe
	}
	form = form.Normalize()
	log := s.logger.With("instance", form.ID, "token", form.Credentials().Fingerprint())

	rec, err := s.run(ctx, form, log, observe)
	if err != nil {
		oerr, ok := AsError(err)
		if !ok {
			oerr = classify(StepValidate, err)
		}
		metrics.OnboardingRunsTotal.WithLabelValues(oerr.Kind.String()).Inc()
		log.Warn("onboarding failed", "step", oerr.Step.String(), "kind", oerr.Kind.String(), "error", oerr.Err)
		return nil, oerr
	}

	metrics.OnboardingRunsTotal.WithLabelValues("ok").Inc()
	log.Info("onboarding complete", "session", rec.ID.String())
	return rec, nil
}

func (s *Sequencer) run(ctx context.Context, form Form, log *slog.Logger, observe Observer) (*session.Record, error) {
	if fe := form.Validate(); fe != nil {
		return nil, &Error{Kind: KindInvalidInput, Step: StepValidate, Fields: fe, Err: fe}
	}

	inst := form.Credentials().Instance()
	step := func(st Step) {
		log.Info("onboarding step", "step", st.String())
		observe(st)
	}

	// 1. Credentials.
	step(StepValidate)
	if _, err := s.gw.GetSettings(ctx, inst); err != nil {
		return nil, classify(StepValidate, err)
	}

	// 2. Authorization.
	step(StepState)
	state, err := s.gw.GetStateInstance(ctx, inst)
	if err != nil {
		return nil, classify(StepState, err)
	}
	if !state.Authorized() {
		return nil, &Error{
			Kind:   KindUnauthorized,
			Step:   StepState,
			Fields: FieldErrors{FieldID: ReasonUnauthorized, FieldToken: ReasonUnauthorized},
			Err:    fmt.Errorf("%w: state %q", ErrNotAuthorized, state),
		}
	}

	// 3. Stale notifications.
	step(StepDrain)
	drained, err := s.drain(ctx, inst)
	if err != nil {
		return nil, classify(StepDrain, err)
	}
	log.Debug("queue drained", "count", drained)

	// 4. Probe.
	step(StepProbe)
	msgID, err := s.gw.SendMessage(ctx, inst, form.Phone, s.opts.ProbeText)
	if err != nil {
		return nil, classify(StepProbe, err)
	}
	log.Debug("probe sent", "message_id", msgID)

	// 5. Receipt.
	step(StepReceipt)
	receipt, err := s.awaitReceipt(ctx, inst)
	if err != nil {
		return nil, classify(StepReceipt, err)
	}

	// 6. Acknowledge.
	step(StepAcknowledge)
	ok, err := s.gw.DeleteNotification(ctx, inst, receipt.ReceiptID)
	if err != nil {
		return nil, classify(StepAcknowledge, err)
	}
	if !ok {
		return nil, &Error{Kind: KindServer, Step: StepAcknowledge,
			Err: fmt.Errorf("%w: receipt %d", ErrNotAcknowledged, receipt.ReceiptID)}
	}

	// 7. Settings, then commit.
	step(StepSettings)
	saved, err := s.gw.SetSettings(ctx, inst, s.settingsUpdate())
	if err != nil {
		return nil, classify(StepSettings, err)
	}
	if !saved {
		return nil, &Error{Kind: KindServer, Step: StepSettings, Err: ErrSettingsNotSaved}
	}

	step(StepCommit)
	rec, err := s.sessions.Commit(ctx, form.Credentials(), form.Phone)
	if err != nil {
		return nil, classify(StepCommit, err)
	}

	step(StepDone)
	return rec, nil
}

// drain receives and deletes notifications until the queue is empty or
// DrainLimit notifications were discarded.
func (s *Sequencer) drain(ctx context.Context, inst gateway.Instance) (int, error) {
	count := 0
	err := poll.Until(ctx, poll.Config{MaxAttempts: s.opts.DrainLimit}, func(ctx context.Context, _ int) (bool, error) {
		n, err := s.gw.ReceiveNotification(ctx, inst)
		if err != nil {
			return false, err
		}
		if n == nil {
			return true, nil
		}
		if _, err := s.gw.DeleteNotification(ctx, inst, n.ReceiptID); err != nil {
			return false, err
		}
		count++
		return false, nil
	})
	if errors.Is(err, poll.ErrExhausted) {
		s.logger.Warn("drain limit reached, stale notifications remain", "limit", s.opts.DrainLimit)
		return count, nil
	}
	return count, err
}

// awaitReceipt polls until a notification arrives after the probe. The
// probe is not re-sent between attempts, so a slow receipt never produces
// duplicate probe messages in the recipient's chat.
func (s *Sequencer) awaitReceipt(ctx context.Context, inst gateway.Instance) (*gateway.Notification, error) {
	var receipt *gateway.Notification
	err := poll.Until(ctx, s.opts.Receipt, func(ctx context.Context, attempt int) (bool, error) {
		n, err := s.gw.ReceiveNotification(ctx, inst)
		if err != nil {
			return false, err
		}
		if n == nil {
			s.logger.Debug("waiting for probe receipt", "attempt", attempt)
			return false, nil
		}
		receipt = n
		return true, nil
	})
	return receipt, err
}

func (s *Sequencer) settingsUpdate() gateway.SettingsUpdate {
	return gateway.SettingsUpdate{
		WebhookURL:                    s.opts.WebhookURL,
		WebhookURLToken:               s.opts.WebhookToken,
		DelaySendMessagesMilliseconds: int(s.opts.SendDelay / time.Millisecond),
		OutgoingAPIMessageWebhook:     gateway.Yes,
		IncomingWebhook:               gateway.Yes,
		StateWebhook:                  gateway.Yes,
	}
}
