package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"in-tune/scale"
	"in-tune/theme"
)

// RenderOctave draws the twelve pitch-classes with the ones cfg can produce
// marked. sounding marks pitch-classes currently held downstream.
func RenderOctave(cfg *scale.Config, sounding [12]bool, th *theme.Theme) string {
	nameStyle := lipgloss.NewStyle().Foreground(th.Muted())
	inStyle := lipgloss.NewStyle().Foreground(th.Accent())
	outStyle := lipgloss.NewStyle().Foreground(th.Muted())
	rootStyle := lipgloss.NewStyle().Foreground(th.Cursor()).Bold(true)
	heldStyle := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)

	var names, marks strings.Builder
	for pc := 0; pc < 12; pc++ {
		names.WriteString(nameStyle.Render(fmt.Sprintf("%-3s", scale.KeyName(pc))))

		sym, style := th.Symbols.OutOfScale, outStyle
		switch {
		case cfg.Bypass():
			sym, style = th.Symbols.InScale, outStyle
		case pc == cfg.Root():
			sym, style = th.Symbols.Root, rootStyle
		case cfg.Contains(pc):
			sym, style = th.Symbols.InScale, inStyle
		}
		if sounding[pc] {
			style = heldStyle
		}
		marks.WriteString(style.Render(fmt.Sprintf("%-3c", sym)))
	}
	return names.String() + "\n" + marks.String()
}

// RenderList draws a vertical list with the cursor row highlighted and the
// selected row marked. Only height rows around the cursor are shown.
func RenderList(items []string, cursor, selected int, focused bool, height int, th *theme.Theme) string {
	cursorStyle := lipgloss.NewStyle().Foreground(th.Cursor()).Bold(true)
	selStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.FG())
	if !focused {
		cursorStyle = lipgloss.NewStyle().Foreground(th.FG())
	}

	start := 0
	if height > 0 && len(items) > height {
		start = cursor - height/2
		if start < 0 {
			start = 0
		}
		if start > len(items)-height {
			start = len(items) - height
		}
	}
	end := len(items)
	if height > 0 && start+height < end {
		end = start + height
	}

	var lines []string
	for i := start; i < end; i++ {
		prefix := "  "
		if i == cursor {
			prefix = string(th.Symbols.Cursor) + " "
		}
		style := dimStyle
		switch {
		case i == cursor:
			style = cursorStyle
		case i == selected:
			style = selStyle
		}
		lines = append(lines, style.Render(prefix+items[i]))
	}
	return strings.Join(lines, "\n")
}
