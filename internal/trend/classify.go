package trend

import (
	"fmt"
	"math"
	"strings"
)

// Category is the outcome of trend classification.
type Category string

const (
	CategoryStable        Category = "stable"
	CategoryOnTrack       Category = "on-track"
	CategoryAdverse       Category = "adverse"
	CategoryVolatile      Category = "volatile"
	CategoryMinimalChange Category = "minimal-change"
)

// Goal is the direction the user wants the measurement to move.
type Goal string

const (
	GoalIncrease Goal = "increase"
	GoalDecrease Goal = "decrease"
	GoalNeutral  Goal = "neutral"
)

// GoalFromIntent maps a stated goal ("lose", "maintain", "gain") to a direction.
func GoalFromIntent(intent string) Goal {
	switch strings.ToLower(strings.TrimSpace(intent)) {
	case "lose", "cut", "decrease":
		return GoalDecrease
	case "gain", "bulk", "increase":
		return GoalIncrease
	default:
		return GoalNeutral
	}
}

const (
	DefaultVolatilityThreshold = 0.05
	DefaultStabilityThreshold  = 0.5
)

// Classification summarises a window of readings for the insight banner.
type Classification struct {
	Category  Category
	Delta     float64
	DeltaAbs  float64
	Narrative string
	Stats     Summary
}

// Summary holds population statistics over a window.
type Summary struct {
	Count    int
	Mean     float64
	Variance float64
	StdDev   float64
	CV       float64
}

// Stats computes population mean, variance, standard deviation and coefficient of
// variation. CV is zero when the mean is zero.
func Stats(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	variance := sq / float64(n)
	sd := math.Sqrt(variance)
	s := Summary{Count: n, Mean: mean, Variance: variance, StdDev: sd}
	if mean != 0 {
		s.CV = sd / math.Abs(mean)
	}
	return s
}

// Classifier assigns a Category to a window. The zero value uses the defaults.
type Classifier struct {
	VolatilityThreshold float64
	StabilityThreshold  float64
	Unit                string
	RangeLabel          string
}

func (c Classifier) thresholds() (vol, stab float64) {
	vol, stab = c.VolatilityThreshold, c.StabilityThreshold
	if vol <= 0 {
		vol = DefaultVolatilityThreshold
	}
	if stab <= 0 {
		stab = DefaultStabilityThreshold
	}
	return vol, stab
}

// Classify evaluates an ascending window. The first matching rule wins: volatile
// (CV above threshold), stable (|delta| below threshold), adverse (moving against
// the goal), on-track (moving with it), otherwise minimal-change.
func (c Classifier) Classify(window []Entry, goal Goal) (Classification, error) {
	if len(window) < 2 {
		return Classification{}, fmt.Errorf("classify %d readings: %w", len(window), ErrInsufficientData)
	}
	values := make([]float64, len(window))
	for i, e := range window {
		values[i] = e.Value
	}

	vol, stab := c.thresholds()
	delta := values[len(values)-1] - values[0]
	res := Classification{
		Delta:    delta,
		DeltaAbs: math.Abs(delta),
		Stats:    Stats(values),
	}

	switch {
	case res.Stats.CV > vol:
		res.Category = CategoryVolatile
	case res.DeltaAbs < stab:
		res.Category = CategoryStable
	case against(delta, goal):
		res.Category = CategoryAdverse
	case along(delta, goal):
		res.Category = CategoryOnTrack
	default:
		res.Category = CategoryMinimalChange
	}
	res.Narrative = Narrate(res, c.Unit, c.RangeLabel)
	return res, nil
}

func against(delta float64, g Goal) bool {
	return (g == GoalDecrease && delta > 0) || (g == GoalIncrease && delta < 0)
}

func along(delta float64, g Goal) bool {
	return (g == GoalDecrease && delta < 0) || (g == GoalIncrease && delta > 0)
}

// Narrate renders the one-line insight text for a classification.
func Narrate(c Classification, unit, rangeLabel string) string {
	period := "this period"
	if rangeLabel != "" {
		period = "the last " + rangeLabel
	}
	amount := fmt.Sprintf("%.1f", c.DeltaAbs)
	if unit != "" {
		amount += " " + unit
	}
	dir := "up"
	if c.Delta < 0 {
		dir = "down"
	}

	switch c.Category {
	case CategoryVolatile:
		return fmt.Sprintf("Readings swung a lot over %s (±%.1f%s around the average); look at the weekly shape, not single days.",
			period, c.Stats.StdDev, unitSuffix(unit))
	case CategoryStable:
		return fmt.Sprintf("Holding steady over %s, within %s.", period, amount)
	case CategoryAdverse:
		return fmt.Sprintf("Moving away from your goal: %s %s over %s.", dir, amount, period)
	case CategoryOnTrack:
		return fmt.Sprintf("On track: %s %s over %s.", dir, amount, period)
	default:
		return fmt.Sprintf("Little change over %s (%s %s).", period, dir, amount)
	}
}

func unitSuffix(unit string) string {
	if unit == "" {
		return ""
	}
	return " " + unit
}
