package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sadopc/macrotrend/internal/store"
	"github.com/sadopc/macrotrend/internal/trend"
)

// weightBook is the weight series shared by the weight, history and log views.
// It is only touched from Update; persistence runs on snapshots.
type weightBook struct {
	store   *store.Store
	tracker *trend.Tracker
	prefs   store.Preferences
	loaded  bool
	loadErr error
}

// errNotLoaded guards writes while the stored series is unknown. A save then
// would replace it with whatever is in memory.
var errNotLoaded = errors.New("weights are not loaded")

func newWeightBook(s *store.Store) *weightBook {
	b := &weightBook{store: s, prefs: store.DefaultPreferences()}
	b.tracker = trend.NewTracker(nil, b.config())
	return b
}

func (b *weightBook) config() trend.Config {
	return b.prefs.TrendConfig(trend.GoalFromIntent(b.prefs.Goal), b.prefs.Unit)
}

func (b *weightBook) defaultRange() trend.Range {
	r, err := trend.ParseRange(b.prefs.DefaultRange)
	if err != nil {
		return trend.Range1M
	}
	return r
}

func (b *weightBook) load() tea.Cmd {
	s := b.store
	return func() tea.Msg {
		prefs, err := s.LoadPreferences()
		if err != nil {
			return weightsLoadedMsg{err: err}
		}
		entries, err := s.WeightLog().Load(context.Background())
		return weightsLoadedMsg{entries: entries, prefs: prefs, err: err}
	}
}

func (b *weightBook) reset(entries []trend.Entry, prefs store.Preferences) {
	b.prefs = prefs
	b.tracker = trend.NewTracker(entries, b.config())
	b.loaded = true
	b.loadErr = nil
}

func (b *weightBook) applyPrefs(p store.Preferences) {
	b.prefs = p
	b.tracker.SetConfig(b.config())
}

// record logs value for day. A reading for a day that already has one replaces
// it and keeps its id. The returned command persists the new state.
func (b *weightBook) record(day trend.Day, value float64, now time.Time) (tea.Cmd, error) {
	if !b.loaded {
		return nil, errNotLoaded
	}
	id := uuid.NewString()
	if prev, ok := b.tracker.At(day); ok && prev.ID != "" {
		id = prev.ID
	}
	changed, err := b.tracker.Upsert(trend.Entry{ID: id, Day: day, Value: value, UpdatedAt: now})
	if err != nil || !changed {
		return nil, err
	}
	return b.commit(), nil
}

func (b *weightBook) remove(id string) tea.Cmd {
	if !b.tracker.Delete(id) {
		return nil
	}
	return b.commit()
}

// commit snapshots the series and saves it in the background. A failed save is
// reported back as a message; the in-memory series stays as it is.
func (b *weightBook) commit() tea.Cmd {
	s := b.store
	snapshot := b.tracker.List(trend.Ascending)
	return func() tea.Msg {
		err := s.WeightLog().Save(context.Background(), snapshot)
		return weightsSavedMsg{count: len(snapshot), err: err}
	}
}
