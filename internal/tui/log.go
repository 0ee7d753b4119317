package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/macrotrend/internal/store"
	"github.com/sadopc/macrotrend/internal/trend"
)

const (
	formWeight = "weight"
	formMeal   = "meal"
)

type logModel struct {
	store  *store.Store
	book   *weightBook
	width  int
	height int

	meals  []store.Meal
	cursor int

	formActive bool
	form       *huh.Form
	formType   string

	// Form field pointers (survive value copies)
	formDay     *string
	formWeight  *string
	formDesc    *string
	formKcal    *string
	formProtein *string
	formCarbs   *string
	formFat     *string

	now func() time.Time
}

func newLogModel(s *store.Store, b *weightBook) logModel {
	day, weight, desc, kcal, protein, carbs, fat := "", "", "", "", "", "", ""
	return logModel{
		store:       s,
		book:        b,
		formDay:     &day,
		formWeight:  &weight,
		formDesc:    &desc,
		formKcal:    &kcal,
		formProtein: &protein,
		formCarbs:   &carbs,
		formFat:     &fat,
		now:         time.Now,
	}
}

func (l *logModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

type mealsDataMsg struct {
	meals []store.Meal
}

func (l logModel) refresh() tea.Cmd {
	s := l.store
	return func() tea.Msg {
		meals, err := s.ListMeals(store.MealFilter{Limit: 20})
		if err != nil {
			return statusMsg{text: "Could not load meals: " + err.Error(), isError: true}
		}
		return mealsDataMsg{meals: meals}
	}
}

func (l logModel) update(msg tea.Msg) (logModel, tea.Cmd) {
	if l.formActive && l.form != nil {
		return l.updateForm(msg)
	}

	switch msg := msg.(type) {
	case mealsDataMsg:
		l.meals = msg.meals
		if l.cursor >= len(l.meals) {
			l.cursor = max(0, len(l.meals)-1)
		}
		return l, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if l.cursor > 0 {
				l.cursor--
			}
		case key.Matches(msg, keys.Down):
			if l.cursor < len(l.meals)-1 {
				l.cursor++
			}
		case key.Matches(msg, keys.New):
			return l.showWeightForm()
		case key.Matches(msg, keys.Meal):
			return l.showMealForm()
		case key.Matches(msg, keys.Delete):
			if len(l.meals) > 0 {
				s, id := l.store, l.meals[l.cursor].ID
				return l, func() tea.Msg {
					if err := s.DeleteMeal(id); err != nil {
						return mealSavedMsg{err: err}
					}
					return mealSavedMsg{}
				}
			}
		}
	}
	return l, nil
}

func validateDay(s string) error {
	d, err := trend.ParseDay(strings.TrimSpace(s))
	if err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	if d.After(trend.DayOf(time.Now())) {
		return errors.New("cannot be in the future")
	}
	return nil
}

func validatePositive(s string) error {
	_, err := parsePositive(s)
	return err
}

func validateNonNegative(s string) error {
	_, err := parseNonNegative(s)
	return err
}

func (l logModel) showWeightForm() (logModel, tea.Cmd) {
	today := trend.DayOf(l.now())
	*l.formDay = today.String()
	*l.formWeight = ""
	if e, ok := l.book.tracker.At(today); ok {
		*l.formWeight = fmt.Sprintf("%g", e.Value)
	}
	l.formType = formWeight

	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Day").Value(l.formDay).Validate(validateDay),
			huh.NewInput().Title(fmt.Sprintf("Weight (%s)", l.book.prefs.Unit)).Value(l.formWeight).Validate(validatePositive),
		),
	).WithShowHelp(true).WithShowErrors(true)

	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) showMealForm() (logModel, tea.Cmd) {
	*l.formDay = trend.DayOf(l.now()).String()
	*l.formDesc = ""
	*l.formKcal = ""
	*l.formProtein = ""
	*l.formCarbs = ""
	*l.formFat = ""
	l.formType = formMeal

	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Day").Value(l.formDay).Validate(validateDay),
			huh.NewInput().Title("Description").Value(l.formDesc),
			huh.NewInput().Title("Calories (kcal)").Value(l.formKcal).Validate(validateNonNegative),
		),
		huh.NewGroup(
			huh.NewInput().Title("Protein (g)").Value(l.formProtein).Validate(validateNonNegative),
			huh.NewInput().Title("Carbs (g)").Value(l.formCarbs).Validate(validateNonNegative),
			huh.NewInput().Title("Fat (g)").Value(l.formFat).Validate(validateNonNegative),
		).Title("Macros"),
	).WithShowHelp(true).WithShowErrors(true)

	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) updateForm(msg tea.Msg) (logModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			l.formActive = false
			l.form = nil
			return l, nil
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		l.formActive = false
		switch l.formType {
		case formWeight:
			return l, l.submitWeight()
		case formMeal:
			return l, l.submitMeal()
		}
	}

	return l, cmd
}

func (l logModel) submitWeight() tea.Cmd {
	day, err := trend.ParseDay(strings.TrimSpace(*l.formDay))
	if err != nil {
		return statusCmd("Invalid day: "+*l.formDay, true)
	}
	v, err := parsePositive(*l.formWeight)
	if err != nil {
		return statusCmd("Invalid weight: "+err.Error(), true)
	}
	save, err := l.book.record(day, v, l.now())
	if err != nil {
		return statusCmd(fmt.Sprintf("Could not log weight: %v", err), true)
	}
	return tea.Batch(save, statusCmd(fmt.Sprintf("Logged %s for %s", formatValue(v, l.book.prefs.Unit), day), false))
}

// mealTime places a meal logged for day at noon local time, or now for today.
func mealTime(day trend.Day, now time.Time) time.Time {
	if day == trend.DayOf(now) {
		return now
	}
	return time.Date(day.Year(), day.Month(), day.DayOfMonth(), 12, 0, 0, 0, now.Location())
}

func (l logModel) submitMeal() tea.Cmd {
	day, err := trend.ParseDay(strings.TrimSpace(*l.formDay))
	if err != nil {
		return statusCmd("Invalid day: "+*l.formDay, true)
	}
	m := store.Meal{
		EatenAt:     mealTime(day, l.now()),
		Description: strings.TrimSpace(*l.formDesc),
	}
	for _, f := range []struct {
		dst *float64
		src string
	}{
		{&m.Calories, *l.formKcal},
		{&m.ProteinG, *l.formProtein},
		{&m.CarbsG, *l.formCarbs},
		{&m.FatG, *l.formFat},
	} {
		v, err := parseNonNegative(f.src)
		if err != nil {
			return statusCmd("Invalid meal: "+err.Error(), true)
		}
		*f.dst = v
	}

	s := l.store
	return func() tea.Msg {
		saved, err := s.AddMeal(m)
		return mealSavedMsg{meal: saved, err: err}
	}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (l logModel) view() string {
	w := l.width - 4

	if l.formActive && l.form != nil {
		title := titleStyle.Render("Log Weight")
		if l.formType == formMeal {
			title = titleStyle.Render("Log Meal")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", l.form.View())
		return activePanelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Recent Meals")
	if len(l.meals) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No meals yet. Press m to log one, or n to log your weight."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-24s %8s %6s %6s %6s", "When", "Meal", "kcal", "P", "C", "F")))

	for i, m := range l.meals {
		cursor := "  "
		style := normalItemStyle
		if i == l.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		desc := m.Description
		if desc == "" {
			desc = "-"
		}
		if r := []rune(desc); len(r) > 24 {
			desc = string(r[:23]) + "…"
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %-24s %8.0f %6.0f %6.0f %6.0f",
			cursor, m.EatenAt.Local().Format("Jan 02 15:04"), desc, m.Calories, m.ProteinG, m.CarbsG, m.FatG)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: log weight  m: log meal  d: delete meal"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
