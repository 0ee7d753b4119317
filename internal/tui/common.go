package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sadopc/macrotrend/internal/store"
	"github.com/sadopc/macrotrend/internal/trend"
)

// viewState represents the currently active view.
type viewState int

const (
	viewWeight viewState = iota
	viewHistory
	viewNutrition
	viewLog
	viewSettings
)

var viewNames = []string{"Weight", "History", "Nutrition", "Log", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type weightsLoadedMsg struct {
	entries []trend.Entry
	prefs   store.Preferences
	err     error
}

type weightsSavedMsg struct {
	count int
	err   error
}

type mealSavedMsg struct {
	meal *store.Meal
	err  error
}

type prefsSavedMsg struct {
	prefs store.Preferences
	err   error
}

// --- Helpers ---

func formatValue(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func formatDelta(d float64, unit string) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return sign + formatValue(d, unit)
}

// parsePositive parses a form field as a strictly positive finite number.
func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if err := trend.ValidateValue(v); err != nil {
		return 0, errors.New("must be greater than zero")
	}
	return v, nil
}

// parseNonNegative parses an optional form field; blank means zero.
func parseNonNegative(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if v < 0 {
		return 0, errors.New("cannot be negative")
	}
	return v, nil
}

// cycleRange moves r by delta through the ordered range tokens, wrapping around.
func cycleRange(r trend.Range, delta int) trend.Range {
	all := trend.Ranges()
	for i, x := range all {
		if x == r {
			n := len(all)
			return all[((i+delta)%n+n)%n]
		}
	}
	return all[0]
}

func rangeTabs(active trend.Range) []string {
	var tabs []string
	for _, r := range trend.Ranges() {
		if r == active {
			tabs = append(tabs, activeTabStyle.Render(r.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(r.String()))
		}
	}
	return tabs
}
