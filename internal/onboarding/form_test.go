// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want FieldErrors
	}{
		{
			name: "valid",
			form: Form{ID: "1101000001", Token: "0a1b2c", Phone: "79994442211"},
			want: nil,
		},
		{
			name: "all empty",
			form: Form{},
			want: FieldErrors{FieldID: ReasonRequired, FieldToken: ReasonRequired, FieldPhone: ReasonRequired},
		},
		{
			name: "id with letters",
			form: Form{ID: "11a", Token: "abc", Phone: "1"},
			want: FieldErrors{FieldID: ReasonFormat},
		},
		{
			name: "signed id is not digits",
			form: Form{ID: "-11", Token: "abc", Phone: "1"},
			want: FieldErrors{FieldID: ReasonFormat},
		},
		{
			name: "token uppercase",
			form: Form{ID: "1", Token: "ABC123", Phone: "1"},
			want: FieldErrors{FieldToken: ReasonFormat},
		},
		{
			name: "token punctuation",
			form: Form{ID: "1", Token: "abc-123", Phone: "1"},
			want: FieldErrors{FieldToken: ReasonFormat},
		},
		{
			name: "phone with plus",
			form: Form{ID: "1", Token: "abc", Phone: "+79994442211"},
			want: FieldErrors{FieldPhone: ReasonFormat},
		},
		{
			name: "phone decimal",
			form: Form{ID: "1", Token: "abc", Phone: "7.5"},
			want: FieldErrors{FieldPhone: ReasonFormat},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.form.Validate())
		})
	}
}

func TestForm_ValidateField(t *testing.T) {
	f := Form{ID: "1", Token: "", Phone: "x"}

	_, ok := f.ValidateField(FieldID)
	assert.True(t, ok)

	reason, ok := f.ValidateField(FieldToken)
	assert.False(t, ok)
	assert.Equal(t, ReasonRequired, reason)

	reason, ok = f.ValidateField(FieldPhone)
	assert.False(t, ok)
	assert.Equal(t, ReasonFormat, reason)
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{FieldToken: ReasonFormat, FieldID: ReasonRequired}
	assert.Equal(t, "invalid fields: id: required, token: format", fe.Error())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		step   Step
		status int
		kind   Kind
		fields FieldErrors
	}{
		{"validate 401", StepValidate, 401, KindInvalidCredentials, FieldErrors{FieldToken: ReasonUnauthorized}},
		{"validate 400", StepValidate, 400, KindInvalidCredentials, FieldErrors{FieldID: ReasonRejected}},
		{"probe 400", StepProbe, 400, KindRejectedRecipient, FieldErrors{FieldPhone: ReasonUnregistered}},
		{"probe 403", StepProbe, 403, KindInvalidCredentials, FieldErrors{FieldToken: ReasonUnauthorized}},
		{"settings 400", StepSettings, 400, KindServer, nil},
		{"drain 500", StepDrain, 500, KindServer, nil},
		{"receipt 429", StepReceipt, 429, KindServer, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := classify(tc.step, statusErr("op", tc.status))
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.step, e.Step)
			assert.Equal(t, tc.fields, e.Fields)
		})
	}
}
