package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/macrotrend/internal/trend"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// addMeal is a test helper that logs a meal eaten at the given time.
func addMeal(t *testing.T, s *Store, at time.Time, kcal, protein float64) *Meal {
	t.Helper()
	m, err := s.AddMeal(Meal{EatenAt: at, Description: "test meal", Calories: kcal, ProteinG: protein})
	if err != nil {
		t.Fatalf("add meal: %v", err)
	}
	return m
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/macrotrend.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Weight log
// ============================================================

func TestWeightLogRoundTrip(t *testing.T) {
	s := newTestStore(t)
	log := s.WeightLog()
	ctx := context.Background()

	ts := time.Date(2026, 3, 2, 7, 15, 0, 123, time.UTC)
	in := []trend.Entry{
		{ID: "a", Day: trend.NewDay(2026, 3, 1), Value: 80.4, UpdatedAt: ts},
		{ID: "b", Day: trend.NewDay(2026, 3, 2), Value: 80.1, UpdatedAt: ts},
	}
	if err := log.Save(ctx, in); err != nil {
		t.Fatal(err)
	}
	out, err := log.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID || out[i].Day != in[i].Day || out[i].Value != in[i].Value || !out[i].UpdatedAt.Equal(in[i].UpdatedAt) {
			t.Fatalf("entry %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestWeightLogSaveReplaces(t *testing.T) {
	s := newTestStore(t)
	log := s.WeightLog()
	ctx := context.Background()
	now := time.Now().UTC()

	log.Save(ctx, []trend.Entry{{ID: "a", Day: trend.NewDay(2026, 1, 1), Value: 90, UpdatedAt: now}})
	log.Save(ctx, []trend.Entry{{ID: "b", Day: trend.NewDay(2026, 1, 2), Value: 89, UpdatedAt: now}})

	n, err := log.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestWeightLogSaveRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	log := s.WeightLog()
	ctx := context.Background()
	now := time.Now().UTC()

	log.Save(ctx, []trend.Entry{{ID: "keep", Day: trend.NewDay(2026, 1, 1), Value: 90, UpdatedAt: now}})
	err := log.Save(ctx, []trend.Entry{{ID: "bad", Day: trend.NewDay(2026, 1, 2), Value: 0, UpdatedAt: now}})
	if !errors.Is(err, trend.ErrInvalidValue) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
	out, _ := log.Load(ctx)
	if len(out) != 1 || out[0].ID != "keep" {
		t.Fatal("rejected save must leave stored data untouched")
	}
}

func TestWeightLogLoadRejectsBadTimestamp(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(
		`INSERT INTO weight_entries (id, day, value, updated_at) VALUES ('w1', '2026-03-01', 80, 'yesterday')`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WeightLog().Load(context.Background()); err == nil {
		t.Fatal("expected error for malformed updated_at")
	}
}

func TestWeightLogFeedsTracker(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var batch []trend.Entry
	for i, v := range []float64{82, 81.5, 81, 80.2} {
		d := trend.DayOf(now).AddDays(i - 3)
		batch = append(batch, trend.Entry{ID: d.String(), Day: d, Value: v, UpdatedAt: now})
	}
	s.WeightLog().Save(ctx, batch)

	tr, err := trend.LoadTracker(ctx, s.WeightLog(), trend.Config{Goal: trend.GoalDecrease},
		trend.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	res, err := tr.Insight(trend.Range1W)
	if err != nil {
		t.Fatal(err)
	}
	if res.Category != trend.CategoryOnTrack {
		t.Fatalf("category = %s, want on-track", res.Category)
	}
}

// ============================================================
// Meals
// ============================================================

func TestAddAndGetMeal(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	m := addMeal(t, s, at, 650, 40)
	if m.ID == "" {
		t.Fatal("expected generated ID")
	}
	if m.Calories != 650 || m.ProteinG != 40 || !m.EatenAt.Equal(at) {
		t.Fatalf("unexpected meal: %+v", m)
	}
	if m.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
}

func TestAddMealRejectsNegative(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddMeal(Meal{Calories: -5})
	if !errors.Is(err, trend.ErrInvalidValue) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
}

func TestGetMealNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetMeal("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListMealsFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	addMeal(t, s, base, 300, 10)
	addMeal(t, s, base.Add(4*time.Hour), 700, 30)
	addMeal(t, s, base.Add(48*time.Hour), 500, 20)

	from := base.Add(time.Hour)
	to := base.Add(24 * time.Hour)
	meals, err := s.ListMeals(MealFilter{From: &from, To: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(meals) != 1 || meals[0].Calories != 700 {
		t.Fatalf("filtered meals = %+v", meals)
	}

	all, _ := s.ListMeals(MealFilter{Limit: 2})
	if len(all) != 2 || all[0].Calories != 500 {
		t.Fatalf("expected newest first with limit, got %+v", all)
	}
}

func TestDeleteMeal(t *testing.T) {
	s := newTestStore(t)
	m := addMeal(t, s, time.Now(), 400, 25)
	if err := s.DeleteMeal(m.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteMeal(m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

// ============================================================
// Daily totals
// ============================================================

func TestDailyTotals(t *testing.T) {
	s := newTestStore(t)
	d1 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	d2 := d1.Add(24 * time.Hour)
	addMeal(t, s, d1, 400, 20)
	addMeal(t, s, d1.Add(6*time.Hour), 900, 45)
	addMeal(t, s, d2, 1800, 0)

	kcal, err := s.DailyTotals(MetricCalories, d1.Add(-time.Hour), d2.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(kcal) != 2 {
		t.Fatalf("got %d days, want 2", len(kcal))
	}
	if kcal[0].Day.String() != "2026-03-01" || kcal[0].Value != 1300 {
		t.Fatalf("day 1 = %s %v", kcal[0].Day, kcal[0].Value)
	}
	if kcal[1].Value != 1800 {
		t.Fatalf("day 2 = %v", kcal[1].Value)
	}

	protein, _ := s.DailyTotals(MetricProtein, d1.Add(-time.Hour), d2.Add(24*time.Hour))
	if len(protein) != 1 || protein[0].Value != 65 {
		t.Fatalf("protein totals = %+v (zero-protein day must be omitted)", protein)
	}
}

func TestNutritionLogIsReadOnly(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	addMeal(t, s, now.Add(-time.Hour), 500, 30)

	nl := s.NutritionLog(MetricCalories, now)
	entries, err := nl.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Value != 500 {
		t.Fatalf("entries = %+v", entries)
	}
	if err := nl.Save(context.Background(), entries); err == nil {
		t.Fatal("saving derived totals should fail")
	}
}

func TestMetricUnits(t *testing.T) {
	if MetricProtein.Unit() != "g" || MetricCalories.Unit() != "kcal" {
		t.Fatal("units are wrong")
	}
	if got := Metrics(); len(got) != 4 || got[0] != MetricCalories {
		t.Fatalf("metrics = %v", got)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"goal":                 "maintain",
		"unit":                 "kg",
		"default_range":        "1M",
		"volatility_threshold": "0.05",
		"stability_threshold":  "0.5",
		"empty_range_fallback": "full",
		"calorie_target":       "2000",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("goal", "lose")
	val, _ := s.GetSetting("goal")
	if val != "lose" {
		t.Fatalf("expected lose, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if p != DefaultPreferences() {
		t.Fatalf("fresh preferences = %+v, want defaults", p)
	}

	p.Goal = "lose"
	p.Unit = "lb"
	p.VolatilityThreshold = 0.08
	p.EmptyRangeFallback = "none"
	if err := s.SavePreferences(p); err != nil {
		t.Fatal(err)
	}
	got, _ := s.LoadPreferences()
	if got != p {
		t.Fatalf("reloaded = %+v, want %+v", got, p)
	}

	cfg := got.TrendConfig(trend.GoalFromIntent(got.Goal), got.Unit)
	if cfg.Goal != trend.GoalDecrease || cfg.Fallback != trend.FallbackNone || cfg.VolatilityThreshold != 0.08 {
		t.Fatalf("trend config = %+v", cfg)
	}
}

func TestLoadPreferencesIgnoresBadNumbers(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("stability_threshold", "abc")
	p, _ := s.LoadPreferences()
	if p.StabilityThreshold != 0.5 {
		t.Fatalf("stability = %v, want default 0.5", p.StabilityThreshold)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
