package trend

import (
	"context"
	"fmt"
	"time"
)

// Config tunes a Tracker. The zero value is usable.
type Config struct {
	Goal                Goal
	Unit                string
	VolatilityThreshold float64
	StabilityThreshold  float64
	Fallback            Fallback
	TickCount           int
}

// Chart is everything the rendering layer needs to draw one range.
type Chart struct {
	Range    Range
	Entries  []Entry
	Points   []Point
	Axis     Axis
	Curve    Curve
	Geometry Geometry
	// FellBack is set when the window was empty and the full series is shown instead.
	FellBack bool
}

// Empty reports whether there is nothing to plot.
func (c Chart) Empty() bool { return len(c.Points) == 0 }

// Tracker is one trend engine instance: a deduplicated series with the derived
// views over it. It is synchronous and must be used from a single goroutine.
type Tracker struct {
	series *Series
	cfg    Config
	cache  *InsightCache
	scrub  Scrubber
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker builds a tracker over an unordered batch of entries.
func NewTracker(batch []Entry, cfg Config, opts ...Option) *Tracker {
	if cfg.Goal == "" {
		cfg.Goal = GoalNeutral
	}
	if cfg.TickCount <= 0 {
		cfg.TickCount = DefaultTickCount
	}
	t := &Tracker{
		series: NewSeries(batch),
		cfg:    cfg,
		cache:  NewInsightCache(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// LoadTracker reads the persisted batch and builds a tracker over it.
func LoadTracker(ctx context.Context, p Persistence, cfg Config, opts ...Option) (*Tracker, error) {
	batch, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	return NewTracker(batch, cfg, opts...), nil
}

func (t *Tracker) Config() Config { return t.cfg }

// SetConfig replaces the tuning and drops cached insights.
func (t *Tracker) SetConfig(cfg Config) {
	if cfg.Goal == "" {
		cfg.Goal = GoalNeutral
	}
	if cfg.TickCount <= 0 {
		cfg.TickCount = DefaultTickCount
	}
	t.cfg = cfg
	t.cache.Invalidate()
}

func (t *Tracker) SetGoal(g Goal) {
	if g == t.cfg.Goal {
		return
	}
	t.cfg.Goal = g
	t.cache.Invalidate()
}

// Upsert validates e and applies it with last-writer-wins by UpdatedAt. The
// in-memory series is authoritative from here on; persisting it is the caller's job.
func (t *Tracker) Upsert(e Entry) (bool, error) {
	if err := ValidateValue(e.Value); err != nil {
		return false, err
	}
	if e.Day.IsZero() {
		return false, fmt.Errorf("%w: entry %q has no day", ErrInvalidValue, e.ID)
	}
	changed := t.series.Upsert(e)
	if changed {
		t.cache.Invalidate()
		t.scrub.Clear()
	}
	return changed, nil
}

func (t *Tracker) Delete(id string) bool {
	ok := t.series.Delete(id)
	if ok {
		t.cache.Invalidate()
		t.scrub.Clear()
	}
	return ok
}

func (t *Tracker) List(o Order) []Entry { return t.series.List(o) }

func (t *Tracker) Len() int { return t.series.Len() }

func (t *Tracker) At(d Day) (Entry, bool) { return t.series.At(d) }

// Window returns the entries in r. The second result reports whether the empty
// window was replaced by the full series per the configured fallback.
func (t *Tracker) Window(r Range) ([]Entry, bool) {
	all := t.series.List(Ascending)
	w := Filter(all, r, t.now())
	if len(w) == 0 && len(all) > 0 && t.cfg.Fallback == FallbackFullSeries {
		return all, true
	}
	return w, false
}

// Chart projects r's window into g.
func (t *Tracker) Chart(r Range, g Geometry) Chart {
	entries, fellBack := t.Window(r)
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	axis := Scale(values, t.cfg.TickCount)
	pts := Project(entries, axis, g)
	return Chart{
		Range:    r,
		Entries:  entries,
		Points:   pts,
		Axis:     axis,
		Curve:    BuildCurveFromPoints(pts),
		Geometry: g,
		FellBack: fellBack,
	}
}

// Insight classifies r's window, reusing today's result for an unchanged window.
// Windows with fewer than two readings return ErrInsufficientData without running
// the classifier. A fallback window is narrated without r's period label.
func (t *Tracker) Insight(r Range) (Classification, error) {
	w, fellBack := t.Window(r)
	if len(w) < 2 {
		return Classification{}, fmt.Errorf("insight %s: %w", r, ErrInsufficientData)
	}
	today := DayOf(t.now())
	last := w[len(w)-1].Day
	if res, ok := t.cache.Get(r, last, today); ok {
		return res, nil
	}
	res, err := t.classifier(r, fellBack).Classify(w, t.cfg.Goal)
	if err != nil {
		return Classification{}, err
	}
	t.cache.Put(r, last, today, res)
	return res, nil
}

func (t *Tracker) classifier(r Range, fellBack bool) Classifier {
	c := Classifier{
		VolatilityThreshold: t.cfg.VolatilityThreshold,
		StabilityThreshold:  t.cfg.StabilityThreshold,
		Unit:                t.cfg.Unit,
		RangeLabel:          r.Label(),
	}
	if fellBack {
		c.RangeLabel = ""
	}
	return c
}

// Scrubber is the tracker's pointer inspection state.
func (t *Tracker) Scrubber() *Scrubber { return &t.scrub }
