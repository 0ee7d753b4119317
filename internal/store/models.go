package store

import "time"

// Meal is one logged meal with its macro breakdown.
type Meal struct {
	ID          string
	EatenAt     time.Time
	Description string
	Calories    float64
	ProteinG    float64
	CarbsG      float64
	FatG        float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Setting struct {
	Key   string
	Value string
}

// MealFilter is used to filter meals in queries.
type MealFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// Metric selects which nutrition total is aggregated per day.
type Metric string

const (
	MetricCalories Metric = "calories"
	MetricProtein  Metric = "protein"
	MetricCarbs    Metric = "carbs"
	MetricFat      Metric = "fat"
)

// Metrics lists the metrics in display order.
func Metrics() []Metric {
	return []Metric{MetricCalories, MetricProtein, MetricCarbs, MetricFat}
}

func (m Metric) column() string {
	switch m {
	case MetricProtein:
		return "protein_g"
	case MetricCarbs:
		return "carbs_g"
	case MetricFat:
		return "fat_g"
	default:
		return "calories"
	}
}

// Unit is the display unit of the metric.
func (m Metric) Unit() string {
	if m == MetricCalories {
		return "kcal"
	}
	return "g"
}

// Preferences is the typed view of the settings table.
type Preferences struct {
	Goal                string // lose, maintain, gain
	Unit                string // kg, lb
	DefaultRange        string
	VolatilityThreshold float64
	StabilityThreshold  float64
	EmptyRangeFallback  string // full, none
	CalorieTarget       float64
}
