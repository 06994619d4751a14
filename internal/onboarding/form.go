// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboarding

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/greenchat-tui/internal/session"
)

// Field names a form input.
type Field string

const (
	FieldID    Field = "id"
	FieldToken Field = "token"
	FieldPhone Field = "phone"
)

// Fields lists the form inputs in display order.
var Fields = []Field{FieldID, FieldToken, FieldPhone}

// Reason explains why a field is marked invalid. The UI maps reasons to
// localized text.
type Reason string

const (
	ReasonRequired     Reason = "required"
	ReasonFormat       Reason = "format"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonRejected     Reason = "rejected"
	ReasonUnregistered Reason = "unregistered"
)

// FieldErrors maps invalid fields to the reason they are invalid.
type FieldErrors map[Field]Reason

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for f, r := range fe {
		parts = append(parts, string(f)+": "+string(r))
	}
	sort.Strings(parts)
	return "invalid fields: " + strings.Join(parts, ", ")
}

// Has reports whether f is marked.
func (fe FieldErrors) Has(f Field) bool {
	_, ok := fe[f]
	return ok
}

// Form is the onboarding input: instance id, access token and the phone
// number that receives the probe message.
type Form struct {
	ID    string `form:"id" validate:"required,digits"`
	Token string `form:"token" validate:"required,lowernum"`
	Phone string `form:"phone" validate:"required,digits"`
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		ID:    strings.TrimSpace(f.ID),
		Token: strings.TrimSpace(f.Token),
		Phone: strings.TrimSpace(f.Phone),
	}
}

// Credentials returns the instance credentials of the form.
func (f Form) Credentials() session.Credentials {
	return session.Credentials{InstanceID: f.ID, Token: f.Token}
}

// Validate checks every field's format. It returns nil when the form may be
// submitted.
func (f Form) Validate() FieldErrors {
	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{FieldID: ReasonFormat, FieldToken: ReasonFormat, FieldPhone: ReasonFormat}
	}

	out := FieldErrors{}
	for _, e := range verrs {
		field := Field(e.Field())
		if e.Tag() == "required" {
			out[field] = ReasonRequired
		} else {
			out[field] = ReasonFormat
		}
	}
	return out
}

// ValidateField checks a single field, for inline feedback while typing.
func (f Form) ValidateField(field Field) (Reason, bool) {
	reason, bad := f.Validate()[field]
	return reason, !bad
}

var (
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
	lowernumPattern = regexp.MustCompile(`^[0-9a-z]+$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			return sf.Tag.Get("form")
		})
		_ = v.RegisterValidation("digits", matchPattern(digitsPattern))
		_ = v.RegisterValidation("lowernum", matchPattern(lowernumPattern))
		validate = v
	})
	return validate
}

func matchPattern(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		// Empty values are reported by "required".
		return s == "" || re.MatchString(s)
	}
}
