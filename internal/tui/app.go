package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/macrotrend/internal/export"
	"github.com/sadopc/macrotrend/internal/store"
	"github.com/sadopc/macrotrend/internal/trend"
	"go.uber.org/zap"
)

var exportFormats = []string{"Weights (CSV)", "Weights (JSON)", "Weight chart (SVG)", "Calories per day (CSV)"}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	logger *zap.Logger
	book   *weightBook
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	weight    weightModel
	history   historyModel
	nutrition nutritionModel
	logView   logModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
	exportDir   string
}

func NewApp(s *store.Store, logger *zap.Logger) App {
	h := help.New()
	h.ShowAll = false
	if logger == nil {
		logger = zap.NewNop()
	}
	home, _ := os.UserHomeDir()

	b := newWeightBook(s)
	return App{
		store:      s,
		logger:     logger,
		book:       b,
		activeView: viewWeight,
		weight:     newWeightModel(b),
		history:    newHistoryModel(b),
		nutrition:  newNutritionModel(s, b),
		logView:    newLogModel(s, b),
		settings:   newSettingsModel(s),
		help:       h,
		exportDir:  home,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.book.load(),
		a.logView.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.weight.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.nutrition.setSize(a.width, contentHeight)
		a.logView.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.New):
			a.activeView = viewLog
			var cmd tea.Cmd
			a.logView, cmd = a.logView.showWeightForm()
			return a, cmd
		case key.Matches(msg, keys.Meal):
			a.activeView = viewLog
			var cmd tea.Cmd
			a.logView, cmd = a.logView.showMealForm()
			return a, cmd
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewWeight)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewHistory)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewNutrition)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewLog)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tea.MouseMsg:
		if a.activeView != viewWeight || a.exportPicking {
			return a, nil
		}
		// Rows are counted from the top of the weight view.
		msg.Y -= lipgloss.Height(a.renderHeader())
		var cmd tea.Cmd
		a.weight, cmd = a.weight.update(msg)
		return a, cmd

	case weightsLoadedMsg:
		if msg.err != nil {
			a.logger.Error("load weights", zap.Error(msg.err))
			a.book.loadErr = msg.err
			a.setStatus("Could not load weights: "+msg.err.Error(), true)
			return a, nil
		}
		a.book.reset(msg.entries, msg.prefs)
		a.weight.rng = a.book.defaultRange()
		a.logger.Info("loaded weights", zap.Int("count", a.book.tracker.Len()))
		return a, nil

	case weightsSavedMsg:
		if msg.err != nil {
			// The in-memory series stays authoritative; the next save retries.
			a.logger.Error("save weights", zap.Int("count", msg.count), zap.Error(msg.err))
			a.setStatus("Save failed: "+msg.err.Error(), true)
			return a, nil
		}
		a.logger.Debug("saved weights", zap.Int("count", msg.count))
		return a, nil

	case mealSavedMsg:
		if msg.err != nil {
			a.logger.Error("save meal", zap.Error(msg.err))
			a.setStatus("Meal not saved: "+msg.err.Error(), true)
		} else if msg.meal != nil {
			a.logger.Info("logged meal", zap.String("id", msg.meal.ID), zap.Float64("calories", msg.meal.Calories))
			a.setStatus(fmt.Sprintf("Logged %.0f kcal", msg.meal.Calories), false)
		}
		return a, tea.Batch(a.logView.refresh(), a.nutrition.refresh())

	case prefsSavedMsg:
		if msg.err != nil {
			a.logger.Error("save preferences", zap.Error(msg.err))
			a.setStatus("Settings not saved: "+msg.err.Error(), true)
			return a, nil
		}
		a.book.applyPrefs(msg.prefs)
		a.weight.rng = a.book.defaultRange()
		a.setStatus("Settings saved", false)
		return a, tea.Batch(a.settings.refresh(), a.nutrition.refresh())

	case statusMsg:
		if msg.isError {
			a.logger.Warn(msg.text)
		}
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.logger.Info("exported", zap.String("path", msg.path))
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusError = isError
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case nutritionDataMsg:
		a.nutrition, cmd = a.nutrition.update(msg)
		return a, cmd
	case mealsDataMsg:
		a.logView, cmd = a.logView.update(msg)
		return a, cmd
	case settingsDataMsg:
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	switch a.activeView {
	case viewWeight:
		a.weight, cmd = a.weight.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewNutrition:
		a.nutrition, cmd = a.nutrition.update(msg)
	case viewLog:
		a.logView, cmd = a.logView.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewLog:
		return a.logView.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewNutrition:
		return a.nutrition.refresh()
	case viewLog:
		return a.logView.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewWeight:
		content = a.weight.view()
	case viewHistory:
		content = a.history.view()
	case viewNutrition:
		content = a.nutrition.view()
	case viewLog:
		content = a.logView.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("macrotrend")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Latest reading in footer
	latest := ""
	if all := a.book.tracker.List(trend.Descending); len(all) > 0 {
		latest = successStyle.Render(" ● " + formatValue(all[0].Value, a.book.prefs.Unit))
	}

	left := footerStyle.Render(helpView)
	right := latest + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	s, dir, unit := a.store, a.exportDir, a.book.prefs.Unit
	weights := a.book.tracker.List(trend.Ascending)
	chart := a.book.tracker.Chart(a.weight.rng, export.SVGGeometry)
	return func() tea.Msg {
		now := time.Now()
		dateStr := now.Format("2006-01-02")

		var path string
		switch format {
		case 0:
			path = filepath.Join(dir, fmt.Sprintf("macrotrend-weights-%s.csv", dateStr))
			if err := export.WeightsToCSV(weights, unit, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		case 1:
			path = filepath.Join(dir, fmt.Sprintf("macrotrend-weights-%s.json", dateStr))
			if err := export.WeightsToJSON(weights, unit, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		case 2:
			path = filepath.Join(dir, fmt.Sprintf("macrotrend-weights-%s-%s.svg", chart.Range, dateStr))
			if err := export.ChartToSVG(chart, unit, path); err != nil {
				return statusMsg{text: fmt.Sprintf("SVG error: %v", err), isError: true}
			}
		default:
			totals, err := s.DailyTotals(store.MetricCalories, now.AddDate(-2, 0, -1), now)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			path = filepath.Join(dir, fmt.Sprintf("macrotrend-calories-%s.csv", dateStr))
			if err := export.TotalsToCSV(totals, string(store.MetricCalories), store.MetricCalories.Unit(), path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
