// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces of the greenchat screens.

# Components

Bubble (bubble.go) renders one chat message. Outgoing messages sit on the
right and incoming messages on the left, each with its own colors; the text
is the message's plain text, or its extended text when the plain text is
empty, followed by a local-time label.

Banner (banner.go) is the dismissable strip used for connectivity and
server failures.

Field (field.go) is a labelled text input with a hint and an inline alert.

Wrap and Truncate (wrap.go) measure text in terminal cells.

# Usage

	theme := styles.NewTheme("auto")
	b := components.BubbleFromMessage(msg)
	view := b.Render(theme, 80, true)
*/
package components
