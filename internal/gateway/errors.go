// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed gateway call. It is derived from the transport
// outcome and the HTTP status, never from the response text.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnreachable means the request never got a response.
	KindUnreachable
	// KindUnauthorized means the gateway refused the credentials (401/403).
	KindUnauthorized
	// KindRateLimited means the gateway throttled the call (429).
	KindRateLimited
	// KindRejected means any other client error (4xx).
	KindRejected
	// KindServer means the gateway failed (5xx).
	KindServer
	// KindMalformed means the response body could not be decoded.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindRejected:
		return "rejected"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by errors.Is against an *Error of the same kind.
var (
	ErrUnreachable  = errors.New("gateway unreachable")
	ErrUnauthorized = errors.New("gateway rejected credentials")
	ErrRateLimited  = errors.New("gateway rate limited")
	ErrRejected     = errors.New("gateway rejected request")
	ErrServer       = errors.New("gateway server error")
	ErrMalformed    = errors.New("gateway response malformed")
)

// Error is returned by every Client method when a call fails for a reason
// other than context cancellation.
type Error struct {
	Op      string // gateway method, e.g. "sendMessage"
	Status  int    // HTTP status, 0 when no response arrived
	Kind    Kind
	Message string // response body excerpt, for display only
	Err     error  // underlying transport or decode error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("gateway %s (HTTP %d): %s", e.Op, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("gateway %s (HTTP %d): %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("gateway %s: HTTP %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnreachable:
		return ErrUnreachable
	case KindUnauthorized:
		return ErrUnauthorized
	case KindRateLimited:
		return ErrRateLimited
	case KindRejected:
		return ErrRejected
	case KindServer:
		return ErrServer
	case KindMalformed:
		return ErrMalformed
	}
	return nil
}

// KindFromStatus maps an HTTP status to a Kind. Statuses below 400 map to
// KindUnknown.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 400 && status < 500:
		return KindRejected
	case status >= 500:
		return KindServer
	}
	return KindUnknown
}

// KindOf returns the Kind of a gateway error, or KindUnknown.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}
