// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package inbox

import (
	"time"

	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/model"
)

// MessageFromWebhook converts a message webhook into a chat message. It
// returns false for webhooks that carry no text.
func MessageFromWebhook(w *gateway.Webhook) (*model.Message, bool) {
	if w == nil || !w.IsMessage() {
		return nil, false
	}
	text, fallback := w.Text()
	if text == "" && fallback == "" {
		return nil, false
	}

	msg := &model.Message{
		ID:        w.IDMessage,
		ChatID:    w.SenderData.ChatID,
		Direction: model.Incoming,
		Text:      text,
		Fallback:  fallback,
		Timestamp: unixTime(w.Timestamp),
		Sender:    w.SenderData.SenderName,
		Status:    model.StatusReceived,
	}
	if w.Outgoing() {
		msg.Direction = model.Outgoing
		msg.Status = model.StatusSent
	}
	if msg.Sender == "" {
		msg.Sender = gateway.Phone(w.SenderData.Sender)
	}
	return msg, true
}

// MessageFromHistory converts a getChatHistory entry.
func MessageFromHistory(h gateway.HistoryMessage) *model.Message {
	text, fallback := h.Text()
	msg := &model.Message{
		ID:        h.IDMessage,
		ChatID:    h.ChatID,
		Direction: model.ParseDirection(h.Type),
		Text:      text,
		Fallback:  fallback,
		Timestamp: unixTime(h.Timestamp),
		Sender:    h.SenderName,
		Status:    model.StatusReceived,
	}
	if msg.Direction == model.Outgoing {
		msg.Status = model.StatusSent
	}
	return msg
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
