// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/greenchat-tui/internal/model"
)

const (
	inst = "1101000001"
	chat = "79994442211@c.us"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func msg(id string, sec int64, dir model.Direction) *model.Message {
	return &model.Message{
		ID: id, ChatID: chat, Direction: dir, Text: "text " + id,
		Timestamp: time.Unix(sec, 0), Status: model.StatusReceived,
	}
}

func TestStore_SaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, inst, []*model.Message{
		msg("c", 300, model.Incoming),
		msg("a", 100, model.Outgoing),
		msg("b", 200, model.Incoming),
	}))

	got, err := s.List(ctx, inst, chat, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[2].ID)
	assert.Equal(t, model.Outgoing, got[0].Direction)
	assert.Equal(t, time.Unix(100, 0), got[0].Timestamp)
}

func TestStore_ListLimitKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Save(ctx, inst, msg(fmt.Sprintf("m%d", i), int64(i), model.Incoming)))
	}

	got, err := s.List(ctx, inst, chat, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"m7", "m8", "m9"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestStore_UpsertKeepsText(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m := msg("x", 1, model.Outgoing)
	m.Status = model.StatusPending
	require.NoError(t, s.Save(ctx, inst, m))

	require.NoError(t, s.Save(ctx, inst, &model.Message{ID: "x", ChatID: chat, Direction: model.Outgoing, Status: model.StatusSent, Timestamp: time.Unix(1, 0)}))

	got, err := s.List(ctx, inst, chat, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.StatusSent, got[0].Status)
	assert.Equal(t, "text x", got[0].Text)
}

func TestStore_ScopedByInstanceAndChat(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, inst, msg("a", 1, model.Incoming)))
	require.NoError(t, s.Save(ctx, "other", msg("b", 2, model.Incoming)))
	other := msg("c", 3, model.Incoming)
	other.ChatID = "1@c.us"
	require.NoError(t, s.Save(ctx, inst, other))

	n, err := s.Count(ctx, inst, chat)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_SkipsEmptyIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAll(ctx, inst, []*model.Message{nil, {ChatID: chat}}))

	n, err := s.Count(ctx, inst, chat)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Closed(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Save(context.Background(), inst, msg("a", 1, model.Incoming)), ErrClosed)
	_, err := s.List(context.Background(), inst, chat, 0)
	assert.ErrorIs(t, err, ErrClosed)
}
