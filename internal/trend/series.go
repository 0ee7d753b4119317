package trend

import "slices"

// Order selects how Series.List sorts its copy.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Series holds at most one Entry per Day, kept sorted by day ascending.
// It is not safe for concurrent use.
type Series struct {
	entries []Entry
}

// NewSeries builds a Series from an unordered batch, e.g. rows loaded from storage.
// Duplicate days are resolved with the same rule as Upsert, so a batch that was
// written by an older buggy client still yields one entry per day.
func NewSeries(batch []Entry) *Series {
	byDay := make(map[Day]Entry, len(batch))
	for _, e := range batch {
		cur, ok := byDay[e.Day]
		if !ok || e.UpdatedAt.After(cur.UpdatedAt) {
			byDay[e.Day] = e
		}
	}
	entries := make([]Entry, 0, len(byDay))
	for _, e := range byDay {
		entries = append(entries, e)
	}
	sortAscending(entries)
	return &Series{entries: entries}
}

func (s *Series) search(d Day) (int, bool) {
	return slices.BinarySearchFunc(s.entries, d, func(e Entry, d Day) int {
		return e.Day.Compare(d)
	})
}

// Upsert inserts e, or replaces the entry already on e.Day when e.UpdatedAt is
// strictly later. It reports whether the series changed.
func (s *Series) Upsert(e Entry) bool {
	i, found := s.search(e.Day)
	if found {
		if !e.UpdatedAt.After(s.entries[i].UpdatedAt) {
			return false
		}
		s.entries[i] = e
		return true
	}
	s.entries = slices.Insert(s.entries, i, e)
	return true
}

// Delete removes the entry with the given id.
func (s *Series) Delete(id string) bool {
	if id == "" {
		return false
	}
	i := slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// DeleteEntry removes e by id. Entries saved before ids existed have none; for
// those it falls back to matching day, value and timestamp.
func (s *Series) DeleteEntry(e Entry) bool {
	if e.ID != "" {
		return s.Delete(e.ID)
	}
	i, found := s.search(e.Day)
	if !found {
		return false
	}
	cur := s.entries[i]
	if cur.ID != "" || cur.Value != e.Value || !cur.UpdatedAt.Equal(e.UpdatedAt) {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// List returns a copy of the entries in the requested order.
func (s *Series) List(o Order) []Entry {
	out := slices.Clone(s.entries)
	if o == Descending {
		slices.Reverse(out)
	}
	return out
}

func (s *Series) Len() int { return len(s.entries) }

// At returns the entry recorded on d.
func (s *Series) At(d Day) (Entry, bool) {
	i, found := s.search(d)
	if !found {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Last returns the most recent entry.
func (s *Series) Last() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

func sortAscending(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int { return a.Day.Compare(b.Day) })
}
