// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/greenchat-tui/internal/config"
	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitCanceled     = 130
)

// UsageError reports bad arguments.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Reason
	}
	return e.Command + ": " + e.Reason
}

// CommandError wraps a failed command.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func usageErr(cmd, format string, args ...any) error {
	return &UsageError{Command: cmd, Reason: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usage *UsageError
		tty   *TTYRequiredError
		verrs config.ValidateErrors
		onb   *onboarding.Error
		gwErr *gateway.Error
	)
	switch {
	case errors.As(err, &usage), errors.As(err, &tty):
		return ExitUsageError
	case errors.As(err, &verrs):
		return ExitConfigError
	case errors.As(err, &onb):
		switch onb.Kind {
		case onboarding.KindCanceled:
			return ExitCanceled
		case onboarding.KindConnectivity:
			return ExitNetworkError
		case onboarding.KindInvalidCredentials, onboarding.KindUnauthorized:
			return ExitAuthError
		case onboarding.KindInvalidInput:
			return ExitUsageError
		}
		return ExitGeneralError
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.As(err, &gwErr):
		switch gwErr.Kind {
		case gateway.KindUnreachable:
			return ExitNetworkError
		case gateway.KindUnauthorized:
			return ExitAuthError
		}
	}
	return ExitGeneralError
}
