// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTION
// =============================================================================

// Direction tells whether a message was received or sent by the instance.
type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// ParseDirection maps a gateway "type" value to a Direction. Anything other
// than "outgoing" is incoming.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Outgoing)) {
		return Outgoing
	}
	return Incoming
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the delivery state of an outgoing message.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSent     Status = "sent"
	StatusFailed   Status = "failed"
	StatusReceived Status = "received"
)

// =============================================================================
// MESSAGE
// =============================================================================

// LocalIDPrefix marks ids assigned before the gateway returned its own.
const LocalIDPrefix = "local-"

// Message represents a single chat message.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Direction Direction `json:"direction"`
	// Text is the plain message text; Fallback is the extended text shown
	// when Text is empty.
	Text      string    `json:"text"`
	Fallback  string    `json:"fallback,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender,omitempty"`
	Status    Status    `json:"status"`
}

// NewOutgoing creates a pending outgoing message with a local id.
func NewOutgoing(chatID, text string) *Message {
	return &Message{
		ID:        LocalIDPrefix + uuid.NewString(),
		ChatID:    chatID,
		Direction: Outgoing,
		Text:      text,
		Timestamp: time.Now(),
		Status:    StatusPending,
	}
}

// Content returns the text to display: Text, or Fallback when Text is empty.
func (m *Message) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Fallback
}

// IsLocal reports whether the message still carries a local id.
func (m *Message) IsLocal() bool {
	return strings.HasPrefix(m.ID, LocalIDPrefix)
}

// Preview returns the first maxLen runes of the content on one line.
func (m *Message) Preview(maxLen int) string {
	s := strings.Join(strings.Fields(m.Content()), " ")
	r := []rune(s)
	if maxLen > 3 && len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}
