// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// =============================================================================
// LABELLED TEXT FIELD
// =============================================================================

// Field is a labelled single-line input with a hint and an inline error.
type Field struct {
	Label string
	Hint  string

	input textinput.Model
	err   string
}

// NewField creates a field. limit caps the number of characters.
func NewField(label, hint string, limit int) *Field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Width = 40

	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Green)

	return &Field{Label: label, Hint: hint, input: ti}
}

// Focus focuses the input.
func (f *Field) Focus() tea.Cmd { return f.input.Focus() }

// Blur removes focus.
func (f *Field) Blur() { f.input.Blur() }

// Focused reports whether the input has focus.
func (f *Field) Focused() bool { return f.input.Focused() }

// Value returns the current text.
func (f *Field) Value() string { return f.input.Value() }

// SetValue replaces the text.
func (f *Field) SetValue(s string) { f.input.SetValue(s) }

// SetMasked hides the typed characters.
func (f *Field) SetMasked(masked bool) {
	if masked {
		f.input.EchoMode = textinput.EchoPassword
		f.input.EchoCharacter = '•'
	} else {
		f.input.EchoMode = textinput.EchoNormal
	}
}

// SetPlaceholder sets the placeholder text.
func (f *Field) SetPlaceholder(s string) { f.input.Placeholder = s }

// SetError marks the field invalid with msg; "" clears it.
func (f *Field) SetError(msg string) { f.err = msg }

// Error returns the inline error.
func (f *Field) Error() string { return f.err }

// Invalid reports whether the field carries an error.
func (f *Field) Invalid() bool { return f.err != "" }

// SetWidth sets the input width in cells.
func (f *Field) SetWidth(w int) {
	if w < 10 {
		w = 10
	}
	f.input.Width = w
}

// Update forwards msg to the input. Editing clears the inline error.
func (f *Field) Update(msg tea.Msg) tea.Cmd {
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		f.err = ""
	}
	return cmd
}

// View renders label, input box and the hint or the error.
func (f *Field) View(theme *styles.Theme) string {
	label := theme.FieldLabel.Render(f.Label)
	box := theme.FieldBox
	if f.Focused() {
		label = theme.FieldLabelFocused.Render(f.Label)
		box = theme.FieldBoxFocused
	}
	if f.Invalid() {
		box = theme.FieldBoxInvalid
	}

	under := theme.FieldHint.Render(f.Hint)
	if f.Invalid() {
		under = theme.FieldError.Render(styles.StatusIndicators.Error + " " + f.err)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		label,
		box.Width(f.input.Width+3).Render(f.input.View()),
		under,
	)
}
