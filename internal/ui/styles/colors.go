// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Green - Brand color, focus ring, outgoing accents
var Green = lipgloss.AdaptiveColor{Light: "#128C7E", Dark: "#25D366"}

// GreenDeep - Darker green for headers
var GreenDeep = lipgloss.AdaptiveColor{Light: "#075E54", Dark: "#075E54"}

// Teal - Secondary accent, links and info
var Teal = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#34B7F1"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, invalid fields
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// RoseDeep - Error banner background
var RoseDeep = lipgloss.AdaptiveColor{Light: "#FFE4E6", Dark: "#881337"}

// Amber - Warnings, pending messages
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// AmberDeep - Warning banner background
var AmberDeep = lipgloss.AdaptiveColor{Light: "#FEF3C7", Dark: "#78350F"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

var (
	Surface    = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111B21"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#F0F2F5", Dark: "#202C33"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#D1D7DB", Dark: "#313D45"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#111B21", Dark: "#E9EDEF"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#54656F", Dark: "#AEBAC1"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#8696A0", Dark: "#667781"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111B21"}
)

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// Outgoing bubble - green tones
var (
	OutgoingBubbleBg     = lipgloss.AdaptiveColor{Light: "#D9FDD3", Dark: "#005C4B"}
	OutgoingBubbleFg     = lipgloss.AdaptiveColor{Light: "#111B21", Dark: "#E9EDEF"}
	OutgoingBubbleBorder = lipgloss.AdaptiveColor{Light: "#25D366", Dark: "#00A884"}
)

// Incoming bubble - neutral tones
var (
	IncomingBubbleBg     = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#202C33"}
	IncomingBubbleFg     = lipgloss.AdaptiveColor{Light: "#111B21", Dark: "#E9EDEF"}
	IncomingBubbleBorder = lipgloss.AdaptiveColor{Light: "#D1D7DB", Dark: "#8696A0"}
)

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains text indicators shown next to colored states so
// they stay distinguishable without color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
}

// StatusIndicators are ASCII-only for maximum terminal compatibility.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
}

// RenderSuccess renders a success line with its indicator.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Green).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error line with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning line with its indicator.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Amber).Bold(true).
		Render(StatusIndicators.Warning + " " + message)
}

// RenderLink renders text as an underlined link.
func RenderLink(text string) string {
	return lipgloss.NewStyle().Foreground(Teal).Underline(true).Render(text)
}
