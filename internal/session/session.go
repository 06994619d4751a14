// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the authenticated session: the credentials the user
// onboarded with and the authorization flag that unlocks the chat view.
//
// A Store is created once per process and passed explicitly to the views
// that need it. A record becomes visible only after Commit succeeds and
// disappears on Clear.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/greenchat-tui/internal/gateway"
)

var (
	// ErrAlreadyActive is returned by Commit while a session is active.
	ErrAlreadyActive = errors.New("session already active")

	// ErrNoPending is returned by the commit actions outside of Commit.
	ErrNoPending = errors.New("no session commit in progress")

	// ErrEmptyCredentials is returned when the instance id or token is empty.
	ErrEmptyCredentials = errors.New("instance id and token are required")
)

// =============================================================================
// RECORD
// =============================================================================

// Credentials are the instance id and access token entered by the user.
type Credentials struct {
	InstanceID string `json:"instance_id"`
	Token      string `json:"-"`
}

// Instance converts the credentials into a gateway address.
func (c Credentials) Instance() gateway.Instance {
	return gateway.Instance{ID: c.InstanceID, Token: c.Token}
}

// Fingerprint identifies the token in logs without revealing it.
func (c Credentials) Fingerprint() string {
	return c.Instance().Fingerprint()
}

// Empty reports whether either credential is missing.
func (c Credentials) Empty() bool {
	return c.InstanceID == "" || c.Token == ""
}

// Record is a committed session.
type Record struct {
	ID          uuid.UUID
	Credentials Credentials
	Phone       string // contact the probe was sent to; default chat
	Authorized  bool
	CommittedAt time.Time
}

// Instance returns the gateway address of the session.
func (r *Record) Instance() gateway.Instance {
	return r.Credentials.Instance()
}

// =============================================================================
// STORE
// =============================================================================

// Store holds at most one active Record.
type Store struct {
	mu       sync.RWMutex
	commitMu sync.Mutex

	current *Record
	pending *Record

	listeners []func(*Record)
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// OnChange registers fn to be called after every commit and clear. fn
// receives the new record, or nil after Clear.
func (s *Store) OnChange(fn func(*Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Current returns a copy of the active record, or nil.
func (s *Store) Current() *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	rec := *s.current
	return &rec
}

// IsAuthorized reports whether an authorized session is active.
func (s *Store) IsAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Authorized
}

// RecordUser stores the credentials and contact phone on the record being
// committed.
func (s *Store) RecordUser(creds Credentials, phone string) error {
	if creds.Empty() {
		return ErrEmptyCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ErrNoPending
	}
	s.pending.Credentials = creds
	s.pending.Phone = phone
	return nil
}

// ToggleAuthorization flips the authorization flag of the record being
// committed.
func (s *Store) ToggleAuthorization() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ErrNoPending
	}
	s.pending.Authorized = !s.pending.Authorized
	return nil
}

// Commit records the credentials and flips the authorization flag
// concurrently, then publishes the record once both actions finished. Nothing
// is published if either action fails.
func (s *Store) Commit(ctx context.Context, creds Credentials, phone string) (*Record, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.Current() != nil {
		return nil, ErrAlreadyActive
	}

	s.mu.Lock()
	s.pending = &Record{ID: uuid.New()}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return s.RecordUser(creds, phone)
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return s.ToggleAuthorization()
	})
	err := g.Wait()

	s.mu.Lock()
	rec := s.pending
	s.pending = nil
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	rec.CommittedAt = s.now()
	s.current = rec
	listeners := append([]func(*Record){}, s.listeners...)
	s.mu.Unlock()

	out := *rec
	for _, fn := range listeners {
		fn(&out)
	}
	return &out, nil
}

// Clear ends the active session. It is a no-op when none is active.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	listeners := append([]func(*Record){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
}

// Duration returns how long the active session has been committed.
func (s *Store) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return 0
	}
	return s.now().Sub(s.current.CommittedAt)
}
