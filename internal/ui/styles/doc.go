// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the palette and theme used by the greenchat screens.

All colors are Lip Gloss AdaptiveColor values so they follow the terminal
background. The theme can be pinned to dark or light with the ui.theme
setting; "auto" asks the terminal.

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	bubble := theme.OutgoingBubble.Render("hello")
*/
package styles
