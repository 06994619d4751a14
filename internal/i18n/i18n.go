// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package i18n holds the user-facing strings in English and Russian.
package i18n

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Key names a translatable string.
type Key string

// Form labels and hints.
const (
	FormTitle        Key = "form.title"
	FormID           Key = "form.id"
	FormToken        Key = "form.token"
	FormPhone        Key = "form.phone"
	FormIDHint       Key = "form.id.hint"
	FormTokenHint    Key = "form.token.hint"
	FormPhoneHint    Key = "form.phone.hint"
	FormSubmit       Key = "form.submit"
	FormHelp         Key = "form.help"
	FormRegister     Key = "form.register"
	FormCancelHint   Key = "form.cancel_hint"
	FormAlreadyInUse Key = "form.already_active"
)

// Field reasons.
const (
	ReasonRequired     Key = "reason.required"
	ReasonFormatID     Key = "reason.format.id"
	ReasonFormatToken  Key = "reason.format.token"
	ReasonFormatPhone  Key = "reason.format.phone"
	ReasonUnauthorized Key = "reason.unauthorized"
	ReasonRejected     Key = "reason.rejected"
	ReasonUnregistered Key = "reason.unregistered"
)

// Banners.
const (
	BannerOffline      Key = "banner.offline"
	BannerServer       Key = "banner.server"
	BannerCanceled     Key = "banner.canceled"
	BannerUnauthorized Key = "banner.unauthorized"
	BannerDismiss      Key = "banner.dismiss"
)

// Progress labels, one per handshake step.
const (
	StepValidate    Key = "step.validate"
	StepState       Key = "step.state"
	StepDrain       Key = "step.drain"
	StepProbe       Key = "step.probe"
	StepReceipt     Key = "step.receipt"
	StepAcknowledge Key = "step.acknowledge"
	StepSettings    Key = "step.settings"
	StepCommit      Key = "step.commit"
	StepDone        Key = "step.done"
)

// Chat screen.
const (
	ChatTitle       Key = "chat.title"
	ChatPlaceholder Key = "chat.placeholder"
	ChatHelp        Key = "chat.help"
	ChatEmpty       Key = "chat.empty"
	ChatSendFailed  Key = "chat.send_failed"
	ChatPollFailed  Key = "chat.poll_failed"
	ChatStateChange Key = "chat.state_changed"
)

// RegisterURL is where new gateway accounts are created.
const RegisterURL = "https://console.green-api.com/auth/register"

// Lang is a supported UI language.
type Lang string

const (
	English Lang = "en"
	Russian Lang = "ru"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// Resolve picks the UI language. "auto" (or empty) consults LC_ALL, LC_MESSAGES
// and LANG; anything unmatched falls back to English.
func Resolve(setting string) Lang {
	setting = strings.TrimSpace(strings.ToLower(setting))
	if setting != "" && setting != "auto" {
		return Match(setting)
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" && v != "C" && v != "POSIX" {
			return Match(v)
		}
	}
	return English
}

// Match maps a locale string such as "ru_RU.UTF-8" to a supported language.
func Match(locale string) Lang {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")

	tag, err := language.Parse(locale)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return English
	}
	if supported[idx] == language.Russian {
		return Russian
	}
	return English
}

// T returns the string for key in lang, falling back to English and then to
// the key itself.
func T(lang Lang, key Key) string {
	if s, ok := catalogs[lang][key]; ok {
		return s
	}
	if s, ok := catalogs[English][key]; ok {
		return s
	}
	return string(key)
}

// Tf formats the string for key with args.
func Tf(lang Lang, key Key, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}

// Translator binds a language.
type Translator struct {
	Lang Lang
}

// New returns a Translator for the resolved setting.
func New(setting string) Translator {
	return Translator{Lang: Resolve(setting)}
}

// T returns the string for key.
func (t Translator) T(key Key) string { return T(t.Lang, key) }

// Tf formats the string for key.
func (t Translator) Tf(key Key, args ...any) string { return Tf(t.Lang, key, args...) }
