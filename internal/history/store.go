// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists chat messages in SQLite so a conversation survives
// restarts and the webhook receiver can record deliveries.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/greenchat-tui/internal/model"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("history store closed")

// Store is a SQLite-backed message log. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Store{db: db}, nil
}

// Save inserts msg, or updates its status and text when it already exists.
func (s *Store) Save(ctx context.Context, instanceID string, msg *model.Message) error {
	return s.SaveAll(ctx, instanceID, []*model.Message{msg})
}

// SaveAll saves messages in one transaction. Messages without an id are
// skipped.
func (s *Store) SaveAll(ctx context.Context, instanceID string, msgs []*model.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (instance_id, id, chat_id, direction, text, fallback, sender, status, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instance_id, id) DO UPDATE SET
			status   = excluded.status,
			text     = CASE WHEN excluded.text != '' THEN excluded.text ELSE messages.text END,
			fallback = CASE WHEN excluded.fallback != '' THEN excluded.fallback ELSE messages.fallback END`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		if m == nil || m.ID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			instanceID, m.ID, m.ChatID, string(m.Direction), m.Text, m.Fallback, m.Sender, string(m.Status),
			m.Timestamp.UnixMilli(),
		); err != nil {
			return fmt.Errorf("save message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns the newest limit messages of a chat, oldest first. limit <= 0
// returns every message.
func (s *Store) List(ctx context.Context, instanceID, chatID string, limit int) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chat_id, direction, text, fallback, sender, status, ts FROM (
			SELECT * FROM messages
			WHERE instance_id = ? AND chat_id = ?
			ORDER BY ts DESC, rowid DESC
			LIMIT ?
		) ORDER BY ts ASC, rowid ASC`, instanceID, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []*model.Message
	for rows.Next() {
		var (
			m         model.Message
			direction string
			status    string
			ts        int64
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &direction, &m.Text, &m.Fallback, &m.Sender, &status, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Direction = model.Direction(direction)
		m.Status = model.Status(status)
		if ts != 0 {
			m.Timestamp = time.UnixMilli(ts)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Count returns the number of stored messages of a chat.
func (s *Store) Count(ctx context.Context, instanceID, chatID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE instance_id = ? AND chat_id = ?`, instanceID, chatID).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
