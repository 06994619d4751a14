// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWebhook(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		message      bool
		outgoing     bool
		text, extext string
	}{
		{
			name:    "incoming text",
			raw:     `{"typeWebhook":"incomingMessageReceived","messageData":{"typeMessage":"textMessage","textMessageData":{"textMessage":"hello"}}}`,
			message: true,
			text:    "hello",
		},
		{
			name:     "outgoing extended",
			raw:      `{"typeWebhook":"outgoingMessageReceived","messageData":{"typeMessage":"extendedTextMessage","extendedTextMessageData":{"text":"see https://x.y"}}}`,
			message:  true,
			outgoing: true,
			extext:   "see https://x.y",
		},
		{
			name:     "api message",
			raw:      `{"typeWebhook":"outgoingAPIMessageReceived","messageData":{"typeMessage":"textMessage","textMessageData":{"textMessage":"probe"}}}`,
			message:  true,
			outgoing: true,
			text:     "probe",
		},
		{
			name: "state change",
			raw:  `{"typeWebhook":"stateInstanceChanged","stateInstance":"notAuthorized"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := DecodeWebhook([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.message, w.IsMessage())
			assert.Equal(t, tc.outgoing, w.Outgoing())
			text, extext := w.Text()
			assert.Equal(t, tc.text, text)
			assert.Equal(t, tc.extext, extext)
		})
	}
}

func TestDecodeWebhook_Invalid(t *testing.T) {
	_, err := DecodeWebhook([]byte(`{"foo":1}`))
	assert.Error(t, err)

	_, err = DecodeWebhook([]byte(`not json`))
	assert.Error(t, err)
}
