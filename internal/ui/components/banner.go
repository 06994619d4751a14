// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// BannerKind selects the banner color.
type BannerKind int

const (
	BannerError BannerKind = iota
	BannerWarning
)

// Banner is a dismissable one-line notice above the form or thread, used for
// failures that belong to no single field.
type Banner struct {
	Kind    BannerKind
	Message string
	Hint    string // shown dimmed after the message, e.g. "esc: dismiss"
	visible bool
}

// Show displays message.
func (b *Banner) Show(kind BannerKind, message string) {
	b.Kind = kind
	b.Message = message
	b.visible = message != ""
}

// Dismiss hides the banner.
func (b *Banner) Dismiss() {
	b.visible = false
}

// Visible reports whether the banner is shown.
func (b *Banner) Visible() bool { return b.visible }

// View renders the banner, or "" when hidden.
func (b *Banner) View(theme *styles.Theme, width int) string {
	if !b.visible {
		return ""
	}

	style := theme.BannerError
	indicator := styles.StatusIndicators.Error
	if b.Kind == BannerWarning {
		style = theme.BannerWarning
		indicator = styles.StatusIndicators.Warning
	}

	text := indicator + " " + b.Message
	if b.Hint != "" {
		text += "  " + theme.Help.Render(b.Hint)
	}
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(text)
}
