// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one chat message with direction, text, fallback text and time
//   - Conversation: the messages of one chat, ordered by time, without duplicates
//   - Direction: incoming or outgoing, as seen from the logged-in instance
//
// # Usage
//
//	conv := model.NewConversation("79994442211@c.us")
//	msg := model.NewOutgoing(conv.ChatID, "hello")
//	conv.Add(msg)
//	// after the gateway accepted it:
//	conv.Confirm(msg.ID, gatewayID)
package model
