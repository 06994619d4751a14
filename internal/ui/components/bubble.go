// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/greenchat-tui/internal/model"
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// Bubble is one rendered chat message. Rendering never fails: whatever text
// and timestamp it is given are drawn as they are.
type Bubble struct {
	Text      string
	Fallback  string
	Timestamp time.Time
	Direction model.Direction
	Sender    string
	Status    model.Status
}

// BubbleFromMessage builds a bubble for msg.
func BubbleFromMessage(msg *model.Message) Bubble {
	if msg == nil {
		return Bubble{Direction: model.Incoming}
	}
	return Bubble{
		Text:      msg.Text,
		Fallback:  msg.Fallback,
		Timestamp: msg.Timestamp,
		Direction: msg.Direction,
		Sender:    msg.Sender,
		Status:    msg.Status,
	}
}

// ClassName names the styling variant: "outgoing-message" or
// "incoming-message".
func (b Bubble) ClassName() string {
	return b.direction().String() + "-message"
}

// Content is the text shown in the bubble: Text, or Fallback when Text is
// empty.
func (b Bubble) Content() string {
	if b.Text != "" {
		return b.Text
	}
	return b.Fallback
}

// TimeLabel formats the timestamp relative to now.
func (b Bubble) TimeLabel() string {
	return TimeLabel(b.Timestamp, time.Now())
}

// TimeLabel renders t as "15:04" when it falls on the same day as now and as
// "02.01 15:04" otherwise. The zero time has no label.
func TimeLabel(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}
	return t.Format("02.01 15:04")
}

func (b Bubble) direction() model.Direction {
	if b.Direction == model.Outgoing {
		return model.Outgoing
	}
	return model.Incoming
}

// Style returns the theme style for the bubble's direction.
func (b Bubble) Style(theme *styles.Theme) lipgloss.Style {
	if b.direction() == model.Outgoing {
		return theme.OutgoingBubble
	}
	return theme.IncomingBubble
}

// Render draws the bubble into a block width cells wide: outgoing bubbles
// hug the right edge, incoming ones the left.
func (b Bubble) Render(theme *styles.Theme, width int, showTime bool) string {
	if width < 12 {
		width = 12
	}
	style := b.Style(theme)

	// Border and padding take four cells.
	maxText := width*3/4 - 4
	if maxText < 8 {
		maxText = 8
	}
	body := Wrap(b.Content(), maxText)

	var footer []string
	if showTime {
		if label := b.TimeLabel(); label != "" {
			footer = append(footer, theme.Timestamp.Render(label))
		}
	}
	switch b.Status {
	case model.StatusPending:
		footer = append(footer, theme.PendingMark.Render(styles.StatusIndicators.Pending))
	case model.StatusFailed:
		footer = append(footer, theme.FailedMark.Render(styles.StatusIndicators.Error))
	}

	inner := body
	if len(footer) > 0 {
		meta := strings.Join(footer, " ")
		innerW := lineWidth(body)
		if mw := lipgloss.Width(meta); mw > innerW {
			innerW = mw
		}
		inner = lipgloss.JoinVertical(lipgloss.Right,
			lipgloss.NewStyle().Width(innerW).Render(body),
			lipgloss.NewStyle().Width(innerW).Align(lipgloss.Right).Render(meta),
		)
	}

	if b.direction() == model.Incoming && b.Sender != "" {
		inner = lipgloss.JoinVertical(lipgloss.Left, theme.Sender.Render(Truncate(b.Sender, maxText)), inner)
	}

	bubble := style.Render(inner)

	pos := lipgloss.Left
	if b.direction() == model.Outgoing {
		pos = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(width, pos, bubble)
}

// =============================================================================
// THREAD
// =============================================================================

// RenderThread renders msgs top to bottom, oldest first. empty is shown when
// there are no messages.
func RenderThread(msgs []*model.Message, theme *styles.Theme, width int, showTime bool, empty string) string {
	if len(msgs) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.EmptyThread.Render(empty))
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, BubbleFromMessage(m).Render(theme, width, showTime))
	}
	return strings.Join(parts, "\n")
}
