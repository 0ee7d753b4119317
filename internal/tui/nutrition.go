package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/macrotrend/internal/store"
	"github.com/sadopc/macrotrend/internal/trend"
)

// Daily intake swings far more than body weight, so nutrition series get their
// own thresholds.
const nutritionVolatility = 0.25

func nutritionStability(m store.Metric) float64 {
	if m == store.MetricCalories {
		return 100
	}
	return 10
}

// nutritionConfig tunes the engine for one metric. Calories follow the weight
// goal; macros have no direction.
func nutritionConfig(p store.Preferences, m store.Metric) trend.Config {
	goal := trend.GoalNeutral
	if m == store.MetricCalories {
		goal = trend.GoalFromIntent(p.Goal)
	}
	cfg := p.TrendConfig(goal, m.Unit())
	cfg.VolatilityThreshold = nutritionVolatility
	cfg.StabilityThreshold = nutritionStability(m)
	return cfg
}

type nutritionModel struct {
	store  *store.Store
	book   *weightBook
	width  int
	height int

	metric  store.Metric
	rng     trend.Range
	bars    bool
	tracker *trend.Tracker
	err     error

	chart barchart.Model
}

func newNutritionModel(s *store.Store, b *weightBook) nutritionModel {
	return nutritionModel{
		store:  s,
		book:   b,
		metric: store.MetricCalories,
		rng:    trend.Range1W,
		chart:  barchart.New(60, 12),
	}
}

func (n *nutritionModel) setSize(w, h int) {
	n.width = w
	n.height = h
}

type nutritionDataMsg struct {
	metric  store.Metric
	tracker *trend.Tracker
	err     error
}

func (n nutritionModel) refresh() tea.Cmd {
	s, metric, cfg := n.store, n.metric, nutritionConfig(n.book.prefs, n.metric)
	return func() tea.Msg {
		log := s.NutritionLog(metric, time.Now())
		tr, err := trend.LoadTracker(context.Background(), log, cfg)
		return nutritionDataMsg{metric: metric, tracker: tr, err: err}
	}
}

func (n nutritionModel) chartSize() (int, int) {
	return max(n.width-8, 20), max(n.height-13, 6)
}

func (n nutritionModel) update(msg tea.Msg) (nutritionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case nutritionDataMsg:
		if msg.metric != n.metric {
			return n, nil
		}
		n.tracker, n.err = msg.tracker, msg.err
		n.buildBars()
		return n, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Metric):
			all := store.Metrics()
			for i, m := range all {
				if m == n.metric {
					n.metric = all[(i+1)%len(all)]
					break
				}
			}
			n.tracker = nil
			return n, n.refresh()
		case key.Matches(msg, keys.NextRange):
			n.rng = cycleRange(n.rng, 1)
		case key.Matches(msg, keys.PrevRange):
			n.rng = cycleRange(n.rng, -1)
		case key.Matches(msg, keys.Mode):
			n.bars = !n.bars
		case key.Matches(msg, keys.Left):
			if n.tracker != nil {
				n.tracker.Scrubber().Step(n.chartData().Points, -1)
			}
			return n, nil
		case key.Matches(msg, keys.Right):
			if n.tracker != nil {
				n.tracker.Scrubber().Step(n.chartData().Points, 1)
			}
			return n, nil
		case key.Matches(msg, keys.Back):
			if n.tracker != nil {
				n.tracker.Scrubber().Clear()
			}
			return n, nil
		default:
			return n, nil
		}
		if n.tracker != nil {
			n.tracker.Scrubber().Clear()
		}
		n.buildBars()
	}
	return n, nil
}

func (n nutritionModel) chartData() trend.Chart {
	w, h := n.chartSize()
	return n.tracker.Chart(n.rng, chartGeometry(w, h))
}

// buildBars draws one bar per day of the current window, newest on the right.
func (n *nutritionModel) buildBars() {
	w, h := n.chartSize()
	n.chart = barchart.New(w, h)
	if n.tracker == nil {
		return
	}
	window, _ := n.tracker.Window(n.rng)
	if room := max(w/4, 1); len(window) > room {
		window = window[len(window)-room:]
	}

	target := 0.0
	if n.metric == store.MetricCalories {
		target = n.book.prefs.CalorieTarget
	}
	var bars []barchart.BarData
	for _, e := range window {
		bars = append(bars, barchart.BarData{
			Label:  e.Day.Time().Format("02"),
			Values: []barchart.BarValue{barValue(string(n.metric), e.Value, target > 0 && e.Value > target)},
		})
	}
	n.chart.PushAll(bars)
	n.chart.Draw()
}

func (n nutritionModel) view() string {
	w := n.width - 4

	var metricTabs []string
	for _, m := range store.Metrics() {
		if m == n.metric {
			metricTabs = append(metricTabs, activeTabStyle.Render(string(m)))
		} else {
			metricTabs = append(metricTabs, inactiveTabStyle.Render(string(m)))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Nutrition"), "  "}, metricTabs...)...,
	)
	ranges := lipgloss.JoinHorizontal(lipgloss.Bottom, rangeTabs(n.rng)...)
	rows := []string{header, ranges, ""}

	switch {
	case n.err != nil:
		rows = append(rows, errorStyle.Render(fmt.Sprintf("Could not load totals: %v", n.err)))
	case n.tracker == nil:
		rows = append(rows, mutedStyle.Render("Loading..."))
	default:
		rows = append(rows, n.renderBody()...)
	}

	rows = append(rows, "", mutedStyle.Render("  t: metric  [/]: range  b: line/bars  ←/→: scrub  m: log meal"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (n nutritionModel) renderBody() []string {
	c := n.chartData()
	unit := n.metric.Unit()
	if c.Empty() {
		return []string{mutedStyle.Render("No meals logged in this range. Press m to log one.")}
	}

	var rows []string
	if c.FellBack {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("Nothing in the last %s; showing all days.", n.rng.Label())))
	}

	idx := -1
	if i, ok := n.tracker.Scrubber().Index(); ok {
		idx = i
	}
	if n.bars {
		rows = append(rows, n.chart.View())
	} else {
		cw, ch := n.chartSize()
		rows = append(rows, renderTrendChart(c, cw, ch, idx))
	}

	values := make([]float64, len(c.Entries))
	for i, e := range c.Entries {
		values[i] = e.Value
	}
	stats := trend.Stats(values)
	summary := fmt.Sprintf("Average %s/day over %d days", formatValue(stats.Mean, unit), stats.Count)
	if n.metric == store.MetricCalories && n.book.prefs.CalorieTarget > 0 {
		summary += fmt.Sprintf("  (target %s)", formatValue(n.book.prefs.CalorieTarget, unit))
	}
	rows = append(rows, "", highlightStyle.Render(summary))

	if idx >= 0 {
		e := c.Points[idx].Entry
		rows = append(rows, tooltipStyle.Render(fmt.Sprintf("%s  %s", e.Day.Time().Format("Mon Jan 02"), formatValue(e.Value, unit))))
	}

	res, err := n.tracker.Insight(n.rng)
	switch {
	case errors.Is(err, trend.ErrInsufficientData):
		rows = append(rows, mutedStyle.Render("Log meals on at least two days to see a trend."))
	case err != nil:
		rows = append(rows, errorStyle.Render(err.Error()))
	default:
		rows = append(rows, categoryStyle(res.Category).Render(res.Narrative))
	}
	return rows
}
