package trend

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memPersistence struct {
	entries []Entry
	loadErr error
	saves   int
}

func (m *memPersistence) Load(context.Context) ([]Entry, error) {
	return m.entries, m.loadErr
}

func (m *memPersistence) Save(_ context.Context, entries []Entry) error {
	m.saves++
	m.entries = entries
	return nil
}

func newTestTracker(t *testing.T, cfg Config, batch ...Entry) *Tracker {
	t.Helper()
	return NewTracker(batch, cfg, WithClock(fixedClock()))
}

// ============================================================
// End to end
// ============================================================

func TestTrackerSameDayUpsertsEndToEnd(t *testing.T) {
	tr := newTestTracker(t, Config{Goal: GoalDecrease})
	d := DayOf(baseTime).AddDays(-2)
	t1 := baseTime.Add(-time.Hour)
	t2 := baseTime

	if _, err := tr.Upsert(entry("first", d, 80, t1)); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Upsert(entry("second", d, 81, t2)); err != nil {
		t.Fatal(err)
	}

	asc := tr.List(Ascending)
	if len(asc) != 1 || asc[0].Value != 81 {
		t.Fatalf("asc = %+v, want one entry with value 81", asc)
	}
	for _, r := range Ranges() {
		w, fellBack := tr.Window(r)
		if len(w) != 1 || w[0].Value != 81 || fellBack {
			t.Fatalf("%s window = %+v (fellBack=%v)", r, w, fellBack)
		}
		if _, err := tr.Insight(r); !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("%s insight err = %v, want ErrInsufficientData", r, err)
		}
	}
}

func TestTrackerRejectsInvalidValues(t *testing.T) {
	tr := newTestTracker(t, Config{})
	d := DayOf(baseTime)
	if _, err := tr.Upsert(entry("a", d, 0, baseTime)); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err = %v", err)
	}
	if _, err := tr.Upsert(Entry{ID: "b", Value: 70, UpdatedAt: baseTime}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("missing day: err = %v", err)
	}
	if tr.Len() != 0 {
		t.Fatal("rejected values must not reach the series")
	}
}

func TestLoadTracker(t *testing.T) {
	p := &memPersistence{entries: series(80, 79, 78)}
	tr, err := LoadTracker(context.Background(), p, Config{}, WithClock(fixedClock()))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Len() != 3 {
		t.Fatalf("len = %d", tr.Len())
	}

	p.loadErr = errors.New("disk gone")
	if _, err := LoadTracker(context.Background(), p, Config{}); err == nil {
		t.Fatal("expected load error")
	}
}

// ============================================================
// Chart
// ============================================================

func TestTrackerChartEmpty(t *testing.T) {
	tr := newTestTracker(t, Config{})
	c := tr.Chart(Range1M, Geometry{Width: 100, Height: 50, Padding: 5})
	if !c.Empty() || len(c.Curve.Path) != 0 || c.Curve.LengthEstimate != 0 {
		t.Fatalf("empty chart = %+v", c)
	}
	if c.Axis.Min != 0 || c.Axis.Max != 5 {
		t.Fatalf("empty axis = %v..%v", c.Axis.Min, c.Axis.Max)
	}
}

func TestTrackerChartProjectsWindow(t *testing.T) {
	tr := newTestTracker(t, Config{}, series(80, 79.5, 79, 78.2)...)
	g := Geometry{Width: 300, Height: 100, Padding: 10}
	c := tr.Chart(Range1W, g)
	if len(c.Points) != 4 || len(c.Entries) != 4 {
		t.Fatalf("points = %d", len(c.Points))
	}
	if len(c.Curve.Path) != 4 || c.Curve.Path[3].Op != CubicTo {
		t.Fatalf("path = %+v", c.Curve.Path)
	}
	for _, p := range c.Points {
		if p.Y < g.Padding || p.Y > g.Height-g.Padding {
			t.Fatalf("point %d y=%v outside padded area", p.Index, p.Y)
		}
	}
}

func TestTrackerFallbackPolicy(t *testing.T) {
	old := DayOf(baseTime).AddDays(-60)
	batch := []Entry{entry("a", old, 80, baseTime), entry("b", old.AddDays(1), 79, baseTime)}

	none := newTestTracker(t, Config{Fallback: FallbackNone}, batch...)
	if w, fb := none.Window(Range1W); len(w) != 0 || fb {
		t.Fatalf("FallbackNone window = %d entries, fellBack=%v", len(w), fb)
	}

	full := newTestTracker(t, Config{Fallback: FallbackFullSeries}, batch...)
	c := full.Chart(Range1W, Geometry{Width: 100, Height: 50})
	if len(c.Entries) != 2 || !c.FellBack {
		t.Fatalf("FallbackFullSeries chart = %d entries, fellBack=%v", len(c.Entries), c.FellBack)
	}
}

func TestTrackerInsightUnderFallback(t *testing.T) {
	old := DayOf(baseTime).AddMonths(-3)
	batch := []Entry{entry("a", old, 80, baseTime), entry("b", old.AddDays(2), 76, baseTime)}
	tr := newTestTracker(t, Config{Goal: GoalDecrease, Unit: "kg", Fallback: FallbackFullSeries}, batch...)

	res, err := tr.Insight(Range1W)
	if err != nil {
		t.Fatal(err)
	}
	if res.Category != CategoryOnTrack {
		t.Fatalf("category = %v, want on track", res.Category)
	}
	want := "On track: down 4.0 kg over this period."
	if res.Narrative != want {
		t.Fatalf("narrative = %q, want %q", res.Narrative, want)
	}

	inRange := newTestTracker(t, Config{Goal: GoalDecrease, Unit: "kg"},
		entry("c", DayOf(baseTime).AddDays(-2), 80, baseTime), entry("d", DayOf(baseTime), 76, baseTime))
	res, err = inRange.Insight(Range1W)
	if err != nil {
		t.Fatal(err)
	}
	if res.Narrative != "On track: down 4.0 kg over the last week." {
		t.Fatalf("in-range narrative = %q", res.Narrative)
	}
}

// ============================================================
// Insight caching
// ============================================================

func TestTrackerInsightCachedAndInvalidated(t *testing.T) {
	tr := newTestTracker(t, Config{Goal: GoalDecrease}, series(80, 78, 76)...)

	first, err := tr.Insight(Range1W)
	if err != nil {
		t.Fatal(err)
	}
	if first.Category != CategoryOnTrack {
		t.Fatalf("category = %s", first.Category)
	}
	if tr.cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", tr.cache.Len())
	}

	// Flip the trend on the last day; the cached banner must not survive.
	last := DayOf(baseTime)
	if _, err := tr.Upsert(entry("late", last, 84, baseTime.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	if tr.cache.Len() != 0 {
		t.Fatal("upsert should invalidate the cache")
	}
	second, err := tr.Insight(Range1W)
	if err != nil {
		t.Fatal(err)
	}
	if second.Category != CategoryAdverse {
		t.Fatalf("after upsert category = %s, want adverse", second.Category)
	}

	tr.SetGoal(GoalIncrease)
	third, _ := tr.Insight(Range1W)
	if third.Category != CategoryOnTrack {
		t.Fatalf("after goal change category = %s, want on-track", third.Category)
	}
}

func TestTrackerInsightRecomputesNextDay(t *testing.T) {
	now := baseTime
	tr := NewTracker(series(80, 78, 76), Config{Goal: GoalDecrease}, WithClock(func() time.Time { return now }))
	if _, err := tr.Insight(Range1M); err != nil {
		t.Fatal(err)
	}
	today := DayOf(now)
	last := DayOf(baseTime)
	if _, ok := tr.cache.Get(Range1M, last, today); !ok {
		t.Fatal("expected cached insight for today")
	}
	now = now.Add(24 * time.Hour)
	if _, ok := tr.cache.Get(Range1M, last, DayOf(now)); ok {
		t.Fatal("cached insight should not be reused on the next calendar day")
	}
	if _, err := tr.Insight(Range1M); err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.cache.Get(Range1M, last, DayOf(now)); !ok {
		t.Fatal("insight should be recomputed and cached for the new day")
	}
}

func TestTrackerDeleteClearsScrub(t *testing.T) {
	tr := newTestTracker(t, Config{}, series(80, 79, 78)...)
	c := tr.Chart(Range1W, Geometry{Width: 100, Height: 40})
	tr.Scrubber().Resolve(c.Points, c.Points[1].X)
	if _, ok := tr.Scrubber().Index(); !ok {
		t.Fatal("scrub should be active")
	}
	if !tr.Delete(c.Entries[1].ID) {
		t.Fatal("delete failed")
	}
	if _, ok := tr.Scrubber().Index(); ok {
		t.Fatal("delete should clear the scrub")
	}
}
