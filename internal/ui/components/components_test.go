// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/greenchat-tui/internal/model"
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// =============================================================================
// BUBBLE
// =============================================================================

func TestBubble_ClassName(t *testing.T) {
	tests := []struct {
		dir  model.Direction
		want string
	}{
		{model.Outgoing, "outgoing-message"},
		{model.Incoming, "incoming-message"},
		{"", "incoming-message"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Bubble{Direction: tc.dir}.ClassName())
		})
	}
	assert.NotEqual(t,
		Bubble{Direction: model.Outgoing}.ClassName(),
		Bubble{Direction: model.Incoming}.ClassName())
}

func TestBubble_Content(t *testing.T) {
	tests := []struct {
		name           string
		text, fallback string
		want           string
	}{
		{"text wins", "hello", "see link", "hello"},
		{"fallback when empty", "", "see link", "see link"},
		{"both empty", "", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Bubble{Text: tc.text, Fallback: tc.fallback}.Content())
		})
	}
}

func TestTimeLabel(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, loc)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"today", time.Date(2025, 3, 14, 9, 5, 0, 0, loc), "09:05"},
		{"yesterday", time.Date(2025, 3, 13, 23, 59, 0, 0, loc), "13.03 23:59"},
		{"other zone same local day", time.Date(2025, 3, 14, 6, 30, 0, 0, time.UTC), "09:30"},
		{"last year", time.Date(2024, 3, 14, 9, 5, 0, 0, loc), "14.03 09:05"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeLabel(tc.ts, now))
		})
	}
}

func TestBubble_RenderAlignment(t *testing.T) {
	theme := styles.NewTheme("dark")
	const width = 60

	out := Bubble{Text: "hi", Direction: model.Outgoing}.Render(theme, width, false)
	in := Bubble{Text: "hi", Direction: model.Incoming}.Render(theme, width, false)

	firstOut := strings.Split(out, "\n")[0]
	firstIn := strings.Split(in, "\n")[0]
	assert.True(t, strings.HasPrefix(firstOut, " "), "outgoing bubble should be pushed right: %q", firstOut)
	assert.False(t, strings.HasPrefix(firstIn, " "), "incoming bubble should hug the left edge: %q", firstIn)
	assert.Equal(t, width, lipgloss.Width(out))
}

func TestBubble_RenderUsesFallback(t *testing.T) {
	theme := styles.NewTheme("dark")
	out := Bubble{Fallback: "extended body", Direction: model.Incoming}.Render(theme, 60, false)
	assert.Contains(t, out, "extended body")
}

func TestBubble_RenderMarks(t *testing.T) {
	theme := styles.NewTheme("dark")
	ts := time.Now()

	out := Bubble{Text: "x", Timestamp: ts, Direction: model.Outgoing, Status: model.StatusFailed}.Render(theme, 60, true)
	assert.Contains(t, out, ts.Format("15:04"))
	assert.Contains(t, out, styles.StatusIndicators.Error)

	out = Bubble{Text: "x", Timestamp: ts, Direction: model.Outgoing}.Render(theme, 60, false)
	assert.NotContains(t, out, ts.Format("15:04"))

	out = Bubble{Text: "x", Direction: model.Incoming, Sender: "Ann"}.Render(theme, 60, false)
	assert.Contains(t, out, "Ann")
}

func TestBubble_RenderWrapsLongText(t *testing.T) {
	theme := styles.NewTheme("dark")
	long := strings.Repeat("word ", 60)
	out := Bubble{Text: long, Direction: model.Incoming}.Render(theme, 40, false)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
}

func TestBubbleFromMessage(t *testing.T) {
	msg := &model.Message{Text: "a", Fallback: "b", Direction: model.Outgoing, Status: model.StatusSent}
	b := BubbleFromMessage(msg)
	assert.Equal(t, "a", b.Content())
	assert.Equal(t, "outgoing-message", b.ClassName())

	assert.Equal(t, "incoming-message", BubbleFromMessage(nil).ClassName())
}

func TestRenderThread(t *testing.T) {
	theme := styles.NewTheme("dark")
	assert.Contains(t, RenderThread(nil, theme, 40, false, "nothing here"), "nothing here")

	out := RenderThread([]*model.Message{
		{Text: "first", Direction: model.Incoming},
		{Text: "second", Direction: model.Outgoing},
	}, theme, 40, false, "")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}

// =============================================================================
// WRAP
// =============================================================================

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "hello world", 20, "hello world"},
		{"breaks at space", "hello world", 7, "hello\nworld"},
		{"hard break", "abcdefghij", 4, "abcd\nefgh\nij"},
		{"keeps newlines", "a\nb", 10, "a\nb"},
		{"zero width", "abc", 0, "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Wrap(tc.text, tc.width))
		})
	}
}

func TestWrap_WideRunes(t *testing.T) {
	out := Wrap("日本語のテキスト", 6)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 6)
	}
}

// =============================================================================
// BANNER / FIELD
// =============================================================================

func TestBanner(t *testing.T) {
	theme := styles.NewTheme("dark")
	var b Banner
	assert.Empty(t, b.View(theme, 60))

	b.Show(BannerError, "No internet connection")
	assert.True(t, b.Visible())
	assert.Contains(t, b.View(theme, 60), "No internet connection")

	b.Dismiss()
	assert.False(t, b.Visible())
	assert.Empty(t, b.View(theme, 60))

	b.Show(BannerWarning, "")
	assert.False(t, b.Visible())
}

func TestField_ErrorClearsOnEdit(t *testing.T) {
	theme := styles.NewTheme("dark")
	f := NewField("Instance ID", "digits only", 20)
	f.Focus()

	f.SetError("Only digits are allowed")
	assert.True(t, f.Invalid())
	assert.Contains(t, f.View(theme), "Only digits are allowed")

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	assert.Equal(t, "1", f.Value())
	assert.False(t, f.Invalid())
	assert.Contains(t, f.View(theme), "digits only")
}
