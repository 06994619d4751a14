// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testCreds = Credentials{InstanceID: "1101000001", Token: "abc123"}

// =============================================================================
// COMMIT TESTS
// =============================================================================

func TestStore_Commit(t *testing.T) {
	s := NewStore()
	if s.IsAuthorized() {
		t.Fatal("new store should not be authorized")
	}

	rec, err := s.Commit(context.Background(), testCreds, "79994442211")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !rec.Authorized {
		t.Error("committed record should be authorized")
	}
	if rec.ID == uuid.Nil {
		t.Error("committed record should have an ID")
	}
	if rec.Credentials != testCreds {
		t.Errorf("Credentials = %+v, want %+v", rec.Credentials, testCreds)
	}
	if rec.Phone != "79994442211" {
		t.Errorf("Phone = %q", rec.Phone)
	}
	if rec.CommittedAt.IsZero() {
		t.Error("CommittedAt should be set")
	}
	if !s.IsAuthorized() {
		t.Error("store should be authorized after commit")
	}
	if got := s.Current(); got == nil || got.ID != rec.ID {
		t.Errorf("Current() = %+v, want record %s", got, rec.ID)
	}
}

func TestStore_CommitTwiceRefused(t *testing.T) {
	s := NewStore()
	if _, err := s.Commit(context.Background(), testCreds, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Commit(context.Background(), testCreds, "2"); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("second Commit() error = %v, want ErrAlreadyActive", err)
	}
	if s.Current().Phone != "1" {
		t.Error("second commit must not overwrite the active record")
	}
}

func TestStore_CommitFailureLeavesNothing(t *testing.T) {
	s := NewStore()
	_, err := s.Commit(context.Background(), Credentials{InstanceID: "1"}, "2")
	if !errors.Is(err, ErrEmptyCredentials) {
		t.Fatalf("Commit() error = %v, want ErrEmptyCredentials", err)
	}
	if s.Current() != nil || s.IsAuthorized() {
		t.Error("failed commit must not publish a record")
	}
}

func TestStore_CommitCanceled(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Commit(ctx, testCreds, "1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Commit() error = %v, want context.Canceled", err)
	}
	if s.Current() != nil {
		t.Error("canceled commit must not publish a record")
	}
}

func TestStore_ActionsOutsideCommit(t *testing.T) {
	s := NewStore()
	if err := s.RecordUser(testCreds, "1"); !errors.Is(err, ErrNoPending) {
		t.Errorf("RecordUser() error = %v, want ErrNoPending", err)
	}
	if err := s.ToggleAuthorization(); !errors.Is(err, ErrNoPending) {
		t.Errorf("ToggleAuthorization() error = %v, want ErrNoPending", err)
	}
}

func TestStore_ConcurrentCommitsPublishOnce(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Commit(context.Background(), testCreds, "1"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Errorf("successful commits = %d, want 1", ok)
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestStore_ClearAndListeners(t *testing.T) {
	s := NewStore()
	var events []*Record
	s.OnChange(func(r *Record) { events = append(events, r) })

	if _, err := s.Commit(context.Background(), testCreds, "1"); err != nil {
		t.Fatal(err)
	}
	s.Clear()
	s.Clear() // no-op

	if len(events) != 2 {
		t.Fatalf("listener calls = %d, want 2", len(events))
	}
	if events[0] == nil || !events[0].Authorized {
		t.Error("first event should carry the committed record")
	}
	if events[1] != nil {
		t.Error("second event should be nil after Clear")
	}
	if s.IsAuthorized() {
		t.Error("store should not be authorized after Clear")
	}

	if _, err := s.Commit(context.Background(), testCreds, "2"); err != nil {
		t.Errorf("Commit() after Clear error = %v", err)
	}
}

func TestStore_Duration(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	if s.Duration() != 0 {
		t.Error("Duration() without session should be 0")
	}
	if _, err := s.Commit(context.Background(), testCreds, "1"); err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return base.Add(5 * time.Minute) }
	if got := s.Duration(); got != 5*time.Minute {
		t.Errorf("Duration() = %v, want 5m", got)
	}
}

func TestCredentials_Fingerprint(t *testing.T) {
	if testCreds.Fingerprint() == testCreds.Token {
		t.Error("fingerprint must not equal the token")
	}
	if !(Credentials{}).Empty() {
		t.Error("zero credentials should be empty")
	}
}
