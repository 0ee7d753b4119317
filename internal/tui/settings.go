package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/macrotrend/internal/store"
	"github.com/sadopc/macrotrend/internal/trend"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	goal          *string
	unit          *string
	defaultRange  *string
	volatility    *string
	stability     *string
	fallback      *string
	calorieTarget *string
}

func newSettingsModel(s *store.Store) settingsModel {
	g, u, dr := "", "", ""
	v, st, fb, ct := "", "", "", ""
	return settingsModel{
		store:         s,
		goal:          &g,
		unit:          &u,
		defaultRange:  &dr,
		volatility:    &v,
		stability:     &st,
		fallback:      &fb,
		calorieTarget: &ct,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		settings, err := st.GetAllSettings()
		if err != nil {
			return statusMsg{text: "Could not load settings: " + err.Error(), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	p, err := s.store.LoadPreferences()
	if err != nil {
		return s, statusCmd("Could not load settings: "+err.Error(), true)
	}
	*s.goal = p.Goal
	*s.unit = p.Unit
	*s.defaultRange = p.DefaultRange
	*s.volatility = strconv.FormatFloat(p.VolatilityThreshold, 'f', -1, 64)
	*s.stability = strconv.FormatFloat(p.StabilityThreshold, 'f', -1, 64)
	*s.fallback = p.EmptyRangeFallback
	*s.calorieTarget = strconv.FormatFloat(p.CalorieTarget, 'f', -1, 64)

	rangeOptions := make([]huh.Option[string], 0, len(trend.Ranges()))
	for _, r := range trend.Ranges() {
		rangeOptions = append(rangeOptions, huh.NewOption(fmt.Sprintf("%s (%s)", r, r.Label()), r.String()))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Goal").
				Options(
					huh.NewOption("Lose weight", "lose"),
					huh.NewOption("Maintain", "maintain"),
					huh.NewOption("Gain weight", "gain"),
				).Value(s.goal),
			huh.NewSelect[string]().Title("Unit").
				Options(
					huh.NewOption("Kilograms", "kg"),
					huh.NewOption("Pounds", "lb"),
				).Value(s.unit),
			huh.NewInput().Title("Daily calorie target (kcal)").Value(s.calorieTarget).Validate(validatePositive),
		).Title("Goal"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default range").Options(rangeOptions...).Value(s.defaultRange),
			huh.NewSelect[string]().Title("When a range is empty").
				Options(
					huh.NewOption("Show all readings", trend.FallbackFullSeries.String()),
					huh.NewOption("Show nothing", trend.FallbackNone.String()),
				).Value(s.fallback),
			huh.NewInput().Title("Volatility threshold (coefficient of variation)").Value(s.volatility).Validate(validatePositive),
			huh.NewInput().Title("Stability threshold (unit change)").Value(s.stability).Validate(validatePositive),
		).Title("Trends"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.savePreferences(s.formPreferences())
	}

	return s, cmd
}

// formPreferences collects the form values. Fields were validated by the form.
func (s settingsModel) formPreferences() store.Preferences {
	p := store.DefaultPreferences()
	p.Goal = *s.goal
	p.Unit = *s.unit
	p.DefaultRange = *s.defaultRange
	p.EmptyRangeFallback = *s.fallback
	if v, err := parsePositive(*s.volatility); err == nil {
		p.VolatilityThreshold = v
	}
	if v, err := parsePositive(*s.stability); err == nil {
		p.StabilityThreshold = v
	}
	if v, err := parsePositive(*s.calorieTarget); err == nil {
		p.CalorieTarget = v
	}
	return p
}

func (s settingsModel) savePreferences(p store.Preferences) tea.Cmd {
	st := s.store
	return func() tea.Msg {
		if err := st.SavePreferences(p); err != nil {
			return prefsSavedMsg{err: err}
		}
		return prefsSavedMsg{prefs: p}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "default_range":
		if r, err := trend.ParseRange(v); err == nil {
			return fmt.Sprintf("%s (%s)", r, r.Label())
		}
	case "calorie_target":
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return fmt.Sprintf("%.0f kcal", f)
		}
	case "empty_range_fallback":
		if trend.ParseFallback(v) == trend.FallbackFullSeries {
			return "show all readings"
		}
		return "show nothing"
	}
	return v
}
