// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Instance identifies a gateway account: the numeric instance id and its
// access token.
type Instance struct {
	ID    string
	Token string
}

// Fingerprint returns a short hash of the token, safe to log.
func (i Instance) Fingerprint() string {
	if i.Token == "" {
		return "none"
	}
	sum := sha256.Sum256([]byte(i.Token))
	return hex.EncodeToString(sum[:4])
}

// String never includes the token.
func (i Instance) String() string {
	return "instance " + i.ID + " [" + i.Fingerprint() + "]"
}

// State is the authorization status of an instance.
type State string

// Instance states reported by getStateInstance.
const (
	StateAuthorized    State = "authorized"
	StateNotAuthorized State = "notAuthorized"
	StateBlocked       State = "blocked"
	StateSleepMode     State = "sleepMode"
	StateStarting      State = "starting"
	StateYellowCard    State = "yellowCard"
)

// Authorized reports whether the instance may send and receive messages.
func (s State) Authorized() bool { return s == StateAuthorized }

// Notification is one queued event. It stays in the queue until deleted by
// its receipt id.
type Notification struct {
	ReceiptID int64           `json:"receiptId"`
	Body      json.RawMessage `json:"body"`
}

// Webhook decodes the notification body.
func (n *Notification) Webhook() (*Webhook, error) {
	return DecodeWebhook(n.Body)
}

// Settings is the subset of instance settings the client reads.
type Settings struct {
	Wid                           string `json:"wid"`
	WebhookURL                    string `json:"webhookUrl"`
	DelaySendMessagesMilliseconds int    `json:"delaySendMessagesMilliseconds"`
	IncomingWebhook               string `json:"incomingWebhook"`
	OutgoingWebhook               string `json:"outgoingWebhook"`
	OutgoingAPIMessageWebhook     string `json:"outgoingAPIMessageWebhook"`
	StateWebhook                  string `json:"stateWebhook"`
}

// Toggle values used by the settings endpoints.
const (
	Yes = "yes"
	No  = "no"
)

// SettingsUpdate is the body of setSettings. Empty fields are left unchanged
// on the gateway.
type SettingsUpdate struct {
	WebhookURL                    string `json:"webhookUrl,omitempty"`
	WebhookURLToken               string `json:"webhookUrlToken,omitempty"`
	DelaySendMessagesMilliseconds int    `json:"delaySendMessagesMilliseconds,omitempty"`
	OutgoingAPIMessageWebhook     string `json:"outgoingAPIMessageWebhook,omitempty"`
	IncomingWebhook               string `json:"incomingWebhook,omitempty"`
	StateWebhook                  string `json:"stateWebhook,omitempty"`
}

// HistoryMessage is one entry returned by getChatHistory.
type HistoryMessage struct {
	Type                string               `json:"type"` // "incoming" or "outgoing"
	IDMessage           string               `json:"idMessage"`
	Timestamp           int64                `json:"timestamp"`
	TypeMessage         string               `json:"typeMessage"`
	ChatID              string               `json:"chatId"`
	SenderID            string               `json:"senderId,omitempty"`
	SenderName          string               `json:"senderName,omitempty"`
	TextMessage         string               `json:"textMessage,omitempty"`
	ExtendedTextMessage *ExtendedTextMessage `json:"extendedTextMessage,omitempty"`
}

// Text returns the plain text and the extended text of the entry.
func (h HistoryMessage) Text() (text, fallback string) {
	if h.ExtendedTextMessage != nil {
		fallback = h.ExtendedTextMessage.Text
	}
	return h.TextMessage, fallback
}

// ExtendedTextMessage carries text sent with a link preview or a quote.
type ExtendedTextMessage struct {
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	Title       string `json:"title,omitempty"`
}

const personalSuffix = "@c.us"

// ChatID turns a phone number into a personal chat id. Values that already
// carry a domain are returned unchanged.
func ChatID(phone string) string {
	if strings.Contains(phone, "@") {
		return phone
	}
	return phone + personalSuffix
}

// Phone strips the domain from a chat id.
func Phone(chatID string) string {
	if i := strings.IndexByte(chatID, '@'); i >= 0 {
		return chatID[:i]
	}
	return chatID
}
