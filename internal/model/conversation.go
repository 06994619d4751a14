// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"sync"
	"time"
)

// MaxMessages is the maximum number of messages kept in memory. Older ones
// are pruned; the history store keeps the full thread.
const MaxMessages = 1000

// Conversation holds the messages of one chat ordered by timestamp. It is
// safe for concurrent use.
type Conversation struct {
	ChatID string

	mu       sync.RWMutex
	messages []*Message
	byID     map[string]*Message
	updated  time.Time
}

// NewConversation creates an empty conversation for chatID.
func NewConversation(chatID string) *Conversation {
	return &Conversation{
		ChatID: chatID,
		byID:   make(map[string]*Message),
	}
}

// Add inserts msg in timestamp order. It returns false when a message with
// the same id is already present.
func (c *Conversation) Add(msg *Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(msg)
}

// AddAll inserts every message and returns how many were new.
func (c *Conversation) AddAll(msgs []*Message) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range msgs {
		if c.addLocked(m) {
			n++
		}
	}
	return n
}

func (c *Conversation) addLocked(msg *Message) bool {
	if msg == nil {
		return false
	}
	if msg.ID != "" {
		if _, ok := c.byID[msg.ID]; ok {
			return false
		}
		c.byID[msg.ID] = msg
	}

	// Insert after every message with the same or an earlier timestamp so
	// arrival order is kept for equal times.
	i := sort.Search(len(c.messages), func(i int) bool {
		return c.messages[i].Timestamp.After(msg.Timestamp)
	})
	c.messages = append(c.messages, nil)
	copy(c.messages[i+1:], c.messages[i:])
	c.messages[i] = msg

	c.updated = time.Now()
	c.pruneLocked()
	return true
}

// Confirm replaces a local id with the id the gateway assigned and marks the
// message sent. If a message with remoteID already arrived (the outgoing
// webhook beat the send response), the local copy is dropped. An empty
// remoteID marks the message sent under its local id.
func (c *Conversation) Confirm(localID, remoteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, ok := c.byID[localID]
	if !ok {
		return
	}
	if remoteID == "" || remoteID == localID {
		msg.Status = StatusSent
		c.updated = time.Now()
		return
	}
	delete(c.byID, localID)

	if existing, dup := c.byID[remoteID]; dup {
		existing.Status = StatusSent
		c.removeLocked(msg)
		return
	}

	msg.ID = remoteID
	msg.Status = StatusSent
	c.byID[remoteID] = msg
	c.updated = time.Now()
}

// MarkFailed flags an outgoing message whose send failed.
func (c *Conversation) MarkFailed(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg, ok := c.byID[id]; ok {
		msg.Status = StatusFailed
		c.updated = time.Now()
	}
}

// Get returns the message with id, or nil.
func (c *Conversation) Get(id string) *Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// Messages returns a snapshot of the messages in order.
func (c *Conversation) Messages() []*Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the newest message, or nil.
func (c *Conversation) Last() *Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// UpdatedAt returns when the conversation last changed.
func (c *Conversation) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// Clear removes every message.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.byID = make(map[string]*Message)
	c.updated = time.Now()
}

func (c *Conversation) removeLocked(msg *Message) {
	for i, m := range c.messages {
		if m == msg {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return
		}
	}
}

// pruneLocked drops the oldest messages beyond MaxMessages.
func (c *Conversation) pruneLocked() {
	excess := len(c.messages) - MaxMessages
	if excess <= 0 {
		return
	}
	for _, m := range c.messages[:excess] {
		delete(c.byID, m.ID)
	}
	c.messages = append([]*Message(nil), c.messages[excess:]...)
}
