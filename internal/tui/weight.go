package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/macrotrend/internal/trend"
)

// Columns between the left screen edge and the first plot column: panel border,
// panel padding, then the value labels.
const plotLeft = 1 + 2 + yLabelWidth

type weightModel struct {
	book   *weightBook
	width  int
	height int

	rng trend.Range
}

func newWeightModel(b *weightBook) weightModel {
	return weightModel{book: b, rng: trend.Range1M}
}

func (m *weightModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m weightModel) chartSize() (int, int) {
	return max(m.width-8, 20), max(m.height-12, 6)
}

func (m weightModel) chart() trend.Chart {
	w, h := m.chartSize()
	return m.book.tracker.Chart(m.rng, chartGeometry(w, h))
}

func (m weightModel) update(msg tea.Msg) (weightModel, tea.Cmd) {
	scrub := m.book.tracker.Scrubber()

	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch {
		case msg.Action == tea.MouseActionRelease:
			scrub.Clear()
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft,
			msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonLeft:
			c := m.chart()
			w, h := m.chartSize()
			if top := m.chartTop(c); msg.Y < top || msg.Y >= top+h {
				break
			}
			scrub.Resolve(c.Points, plotX(msg.X-plotLeft, w-yLabelWidth, c.Geometry))
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			scrub.Step(m.chart().Points, -1)
		case key.Matches(msg, keys.Right):
			scrub.Step(m.chart().Points, 1)
		case key.Matches(msg, keys.Back):
			scrub.Clear()
		case key.Matches(msg, keys.NextRange):
			m.rng = cycleRange(m.rng, 1)
			scrub.Clear()
		case key.Matches(msg, keys.PrevRange):
			m.rng = cycleRange(m.rng, -1)
			scrub.Clear()
		}
	}
	return m, nil
}

func (m weightModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4
	unit := m.book.prefs.Unit

	header := m.header()

	if m.book.loadErr != nil {
		msg := errorStyle.Render("Could not load weights: " + m.book.loadErr.Error())
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", msg))
	}
	if !m.book.loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading...")))
	}

	c := m.chart()
	if c.Empty() {
		hint := "No weights logged yet. Press n to log one."
		if m.book.tracker.Len() > 0 {
			hint = fmt.Sprintf("No readings in the last %s.", m.rng.Label())
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render(hint)))
	}

	rows := []string{header, ""}
	if c.FellBack {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("Nothing in the last %s; showing all readings.", m.rng.Label())))
	}

	idx := -1
	if i, ok := m.book.tracker.Scrubber().Index(); ok {
		idx = i
	}
	cw, ch := m.chartSize()
	rows = append(rows, renderTrendChart(c, cw, ch, idx), "")
	rows = append(rows, m.renderReadout(c, idx, unit))
	rows = append(rows, "", m.renderInsight())
	rows = append(rows, "", mutedStyle.Render("  ←/→: scrub  drag: inspect  [/]: range  n: log weight"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m weightModel) header() string {
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Weight"), "  "}, rangeTabs(m.rng)...)...,
	)
}

// chartTop is the first chart row counted from the top of the view: panel border
// and padding, the header, a blank line and the fallback notice when shown.
func (m weightModel) chartTop(c trend.Chart) int {
	top := 2 + lipgloss.Height(m.header()) + 1
	if c.FellBack {
		top++
	}
	return top
}

// renderReadout shows the scrubbed reading, or the latest one when idle.
func (m weightModel) renderReadout(c trend.Chart, idx int, unit string) string {
	i := len(c.Points) - 1
	label := "Latest"
	if idx >= 0 {
		i = idx
		label = "Selected"
	}
	e := c.Points[i].Entry
	text := fmt.Sprintf("%s  %s  %s", label, e.Day.Time().Format("Mon Jan 02, 2006"), formatValue(e.Value, unit))
	if i > 0 {
		prev := c.Points[i-1].Entry
		text += "  " + formatDelta(e.Value-prev.Value, unit) + " vs previous"
		if gap := prev.Day.DaysUntil(e.Day); gap > 1 {
			text += fmt.Sprintf(" (%d days earlier)", gap)
		}
	}
	if idx >= 0 {
		return tooltipStyle.Render(text)
	}
	return highlightStyle.Render(text)
}

func (m weightModel) renderInsight() string {
	res, err := m.book.tracker.Insight(m.rng)
	switch {
	case errors.Is(err, trend.ErrInsufficientData):
		return mutedStyle.Render("Log at least two days in this range to see a trend.")
	case err != nil:
		return errorStyle.Render(err.Error())
	}
	return categoryStyle(res.Category).Render(res.Narrative)
}
