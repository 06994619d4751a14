// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// CONTENT WRAPPING WITH RUNEWIDTH SUPPORT
// =============================================================================

// Wrap breaks text into lines no wider than width terminal cells. Lines are
// broken at spaces when possible and hard-broken otherwise. Wide characters
// (CJK, emoji) count as two cells.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(wrapLine(line, width))
	}
	return out.String()
}

func wrapLine(line string, width int) string {
	if runewidth.StringWidth(line) <= width {
		return line
	}

	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(cur.String(), " "))
		cur.Reset()
		curW = 0
	}

	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)

		// A word longer than the line is hard-broken.
		if w > width {
			if curW > 0 {
				flush()
			}
			for _, r := range word {
				rw := runewidth.RuneWidth(r)
				if curW+rw > width {
					flush()
				}
				cur.WriteRune(r)
				curW += rw
			}
			continue
		}

		sep := 0
		if curW > 0 {
			sep = 1
		}
		if curW+sep+w > width {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
		curW += sep + w
	}
	if curW > 0 || len(lines) == 0 {
		flush()
	}
	return strings.Join(lines, "\n")
}

// lineWidth returns the width of the widest line.
func lineWidth(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}

// Truncate shortens s to width cells, ending with an ellipsis when cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
