package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/macrotrend/internal/trend"
)

type historyModel struct {
	book   *weightBook
	width  int
	height int

	cursor int
	offset int
}

func newHistoryModel(b *weightBook) historyModel {
	return historyModel{book: b}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

func (h historyModel) visibleRows() int {
	return max(h.height-8, 3)
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	entries := h.book.tracker.List(trend.Descending)

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(entries)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if h.cursor < len(entries) {
				cmd := h.book.remove(entries[h.cursor].ID)
				h.cursor = max(0, min(h.cursor, len(entries)-2))
				return h.scrolled(), cmd
			}
		}
	}
	return h.scrolled(), nil
}

// scrolled keeps the cursor inside the visible window.
func (h historyModel) scrolled() historyModel {
	n := h.visibleRows()
	if h.cursor < h.offset {
		h.offset = h.cursor
	}
	if h.cursor >= h.offset+n {
		h.offset = h.cursor - n + 1
	}
	return h
}

func (h historyModel) view() string {
	w := h.width - 4
	title := titleStyle.Render("History")
	entries := h.book.tracker.List(trend.Descending)
	unit := h.book.prefs.Unit

	if len(entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No weights logged yet. Press n to log one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title+mutedStyle.Render(fmt.Sprintf("  %d readings", len(entries))))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %12s %12s", "Day", "Weight", "Change")))

	end := min(h.offset+h.visibleRows(), len(entries))
	for i := h.offset; i < end; i++ {
		e := entries[i]
		change := ""
		if i+1 < len(entries) {
			change = formatDelta(e.Value-entries[i+1].Value, "")
		}
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-18s %12s %12s",
			cursor, e.Day.Time().Format("Mon Jan 02 2006"), formatValue(e.Value, unit), change)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ↑/↓: move  d: delete  n: log weight"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
