// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by the ui.theme setting.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds the styled components of the application.
type Theme struct {
	Mode         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App       lipgloss.Style
	Header    lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Help      lipgloss.Style
	Separator lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLES
	// ==========================================================================

	OutgoingBubble lipgloss.Style
	IncomingBubble lipgloss.Style
	Timestamp      lipgloss.Style
	Sender         lipgloss.Style
	PendingMark    lipgloss.Style
	FailedMark     lipgloss.Style
	EmptyThread    lipgloss.Style

	// ==========================================================================
	// FORM
	// ==========================================================================

	FieldLabel        lipgloss.Style
	FieldLabelFocused lipgloss.Style
	FieldBox          lipgloss.Style
	FieldBoxFocused   lipgloss.Style
	FieldBoxInvalid   lipgloss.Style
	FieldHint         lipgloss.Style
	FieldError        lipgloss.Style
	Button            lipgloss.Style
	ButtonFocused     lipgloss.Style
	Progress          lipgloss.Style

	// ==========================================================================
	// BANNERS
	// ==========================================================================

	BannerError   lipgloss.Style
	BannerWarning lipgloss.Style
	Link          lipgloss.Style

	// Composer
	Composer lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Auto asks the
// terminal for its background.
func NewTheme(mode string) *Theme {
	mode = strings.ToLower(strings.TrimSpace(mode))

	profile := termenv.ColorProfile()
	isDark := true
	switch mode {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		mode = ModeAuto
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Green).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(Green)
	t.Subtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted)
	t.Separator = lipgloss.NewStyle().Foreground(Overlay)

	// Bubbles
	t.OutgoingBubble = lipgloss.NewStyle().
		Foreground(OutgoingBubbleFg).
		Background(OutgoingBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OutgoingBubbleBorder).
		Padding(0, 1)

	t.IncomingBubble = lipgloss.NewStyle().
		Foreground(IncomingBubbleFg).
		Background(IncomingBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(IncomingBubbleBorder).
		Padding(0, 1)

	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Sender = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.PendingMark = lipgloss.NewStyle().Foreground(Amber)
	t.FailedMark = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.EmptyThread = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	// Form
	t.FieldLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FieldLabelFocused = lipgloss.NewStyle().Foreground(Green).Bold(true)

	t.FieldBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.FieldBoxFocused = t.FieldBox.BorderForeground(Green)
	t.FieldBoxInvalid = t.FieldBox.BorderForeground(Rose)

	t.FieldHint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.FieldError = lipgloss.NewStyle().Foreground(Rose)

	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceDim).
		Padding(0, 3)
	t.ButtonFocused = t.Button.
		Foreground(TextInverse).
		Background(Green).
		Bold(true)

	t.Progress = lipgloss.NewStyle().Foreground(Teal)

	// Banners
	t.BannerError = lipgloss.NewStyle().
		Foreground(Rose).
		Background(RoseDeep).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		Padding(0, 1)
	t.BannerWarning = t.BannerError.
		Foreground(Amber).
		Background(AmberDeep).
		BorderForeground(Amber)

	t.Link = lipgloss.NewStyle().Foreground(Teal).Underline(true)

	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)
}

// SetSize updates the theme dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth is the widest a message bubble may be for the current width.
func (t *Theme) BubbleWidth() int {
	w := t.Width * 3 / 4
	if w < 20 {
		w = 20
	}
	return w
}
