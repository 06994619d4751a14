// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/poll"
)

// Kind is the user-facing class of an onboarding failure.
type Kind int

const (
	// KindServer is the catch-all: shown in the banner with its detail.
	KindServer Kind = iota
	// KindConnectivity means the gateway could not be reached.
	KindConnectivity
	// KindInvalidCredentials means the gateway rejected the id or token.
	KindInvalidCredentials
	// KindUnauthorized means the instance exists but is not authorized.
	KindUnauthorized
	// KindRejectedRecipient means the gateway refused the probe's phone.
	KindRejectedRecipient
	// KindInvalidInput means the form failed its format check.
	KindInvalidInput
	// KindCanceled means the user aborted the run.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindRejectedRecipient:
		return "rejected_recipient"
	case KindInvalidInput:
		return "invalid_input"
	case KindCanceled:
		return "canceled"
	default:
		return "server"
	}
}

// Banner reports whether the kind is shown as a dismissable banner rather
// than inline on the fields.
func (k Kind) Banner() bool {
	return k == KindServer || k == KindConnectivity
}

var (
	// ErrNotAuthorized is wrapped when the instance state is not "authorized".
	ErrNotAuthorized = errors.New("instance is not authorized")

	// ErrNoReceipt is wrapped when no notification arrived after the probe.
	ErrNoReceipt = errors.New("no delivery receipt for the probe message")

	// ErrNotAcknowledged is wrapped when the gateway did not confirm deleting
	// the probe's notification.
	ErrNotAcknowledged = errors.New("probe receipt was not acknowledged")

	// ErrSettingsNotSaved is wrapped when setSettings reports saveSettings=false.
	ErrSettingsNotSaved = errors.New("gateway did not save the settings")
)

// Error is returned by Sequencer.Run.
type Error struct {
	Kind   Kind
	Step   Step
	Fields FieldErrors // fields to mark invalid; empty for banner errors
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("onboarding %s failed (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var oerr *Error
	ok := errors.As(err, &oerr)
	return oerr, ok
}

// classify turns a failure of step into an *Error. The kind is chosen from
// the gateway error kind and the step that failed.
func classify(step Step, err error) *Error {
	if oerr, ok := AsError(err); ok {
		return oerr
	}

	e := &Error{Kind: KindServer, Step: step, Err: err}

	switch {
	case errors.Is(err, context.Canceled):
		e.Kind = KindCanceled
		return e
	case errors.Is(err, context.DeadlineExceeded):
		e.Kind = KindConnectivity
		return e
	case errors.Is(err, poll.ErrExhausted):
		e.Err = fmt.Errorf("%w: %w", ErrNoReceipt, err)
		return e
	}

	switch gateway.KindOf(err) {
	case gateway.KindUnreachable:
		e.Kind = KindConnectivity

	case gateway.KindUnauthorized:
		e.Kind = KindInvalidCredentials
		e.Fields = FieldErrors{FieldToken: ReasonUnauthorized}

	case gateway.KindRejected:
		switch step {
		case StepValidate:
			e.Kind = KindInvalidCredentials
			e.Fields = FieldErrors{FieldID: ReasonRejected}
		case StepProbe:
			e.Kind = KindRejectedRecipient
			e.Fields = FieldErrors{FieldPhone: ReasonUnregistered}
		}
	}
	return e
}
