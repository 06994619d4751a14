// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"encoding/json"
	"fmt"
)

// Webhook types delivered through the notification queue or pushed to the
// webhook receiver.
const (
	TypeIncomingMessage      = "incomingMessageReceived"
	TypeOutgoingMessage      = "outgoingMessageReceived"
	TypeOutgoingAPIMessage   = "outgoingAPIMessageReceived"
	TypeOutgoingMessageState = "outgoingMessageStatus"
	TypeStateInstanceChanged = "stateInstanceChanged"
)

// Message body types.
const (
	MessageText         = "textMessage"
	MessageExtendedText = "extendedTextMessage"
)

// Webhook is a decoded notification body.
type Webhook struct {
	TypeWebhook   string       `json:"typeWebhook"`
	InstanceData  InstanceData `json:"instanceData"`
	Timestamp     int64        `json:"timestamp"`
	IDMessage     string       `json:"idMessage,omitempty"`
	StateInstance State        `json:"stateInstance,omitempty"`
	Status        string       `json:"status,omitempty"`
	SenderData    SenderData   `json:"senderData"`
	MessageData   MessageData  `json:"messageData"`
}

// InstanceData identifies the instance that produced the webhook.
type InstanceData struct {
	IDInstance int64  `json:"idInstance"`
	Wid        string `json:"wid"`
}

// SenderData describes the chat and author of a message webhook.
type SenderData struct {
	ChatID     string `json:"chatId"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName"`
}

// MessageData holds the message payload.
type MessageData struct {
	TypeMessage             string               `json:"typeMessage"`
	TextMessageData         *TextMessageData     `json:"textMessageData,omitempty"`
	ExtendedTextMessageData *ExtendedTextMessage `json:"extendedTextMessageData,omitempty"`
}

// TextMessageData is the payload of a plain text message.
type TextMessageData struct {
	TextMessage string `json:"textMessage"`
}

// DecodeWebhook parses a notification body.
func DecodeWebhook(raw []byte) (*Webhook, error) {
	var w Webhook
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if w.TypeWebhook == "" {
		return nil, fmt.Errorf("decode webhook: missing typeWebhook")
	}
	return &w, nil
}

// IsMessage reports whether the webhook carries a chat message.
func (w *Webhook) IsMessage() bool {
	switch w.TypeWebhook {
	case TypeIncomingMessage, TypeOutgoingMessage, TypeOutgoingAPIMessage:
		return true
	}
	return false
}

// Outgoing reports whether the message was sent by this instance.
func (w *Webhook) Outgoing() bool {
	return w.TypeWebhook == TypeOutgoingMessage || w.TypeWebhook == TypeOutgoingAPIMessage
}

// Text returns the plain text and the extended text of a message webhook.
// Both are empty for media or non-message webhooks.
func (w *Webhook) Text() (text, fallback string) {
	if d := w.MessageData.TextMessageData; d != nil {
		text = d.TextMessage
	}
	if d := w.MessageData.ExtendedTextMessageData; d != nil {
		fallback = d.Text
	}
	return text, fallback
}
