package trend

import (
	"fmt"
	"strings"
	"time"
)

// Range is a lookback window selector.
type Range int

const (
	Range1W Range = iota
	Range1M
	Range3M
	Range6M
	Range1Y
	Range2Y
)

var rangeTokens = []string{"1W", "1M", "3M", "6M", "1Y", "2Y"}

var rangeLabels = []string{"week", "month", "3 months", "6 months", "year", "2 years"}

// Ranges returns every range in display order.
func Ranges() []Range {
	return []Range{Range1W, Range1M, Range3M, Range6M, Range1Y, Range2Y}
}

// ParseRange accepts a token such as "3M" (case-insensitive).
func ParseRange(s string) (Range, error) {
	for i, tok := range rangeTokens {
		if strings.EqualFold(tok, strings.TrimSpace(s)) {
			return Range(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRange, s)
}

func (r Range) valid() bool { return r >= Range1W && r <= Range2Y }

func (r Range) String() string {
	if !r.valid() {
		return fmt.Sprintf("Range(%d)", int(r))
	}
	return rangeTokens[r]
}

// Label is the human phrase used in narratives ("the last 3 months").
func (r Range) Label() string {
	if !r.valid() {
		return r.String()
	}
	return rangeLabels[r]
}

// Cutoff is the first day included in the window ending on now's calendar day.
func (r Range) Cutoff(now time.Time) Day {
	today := DayOf(now)
	switch r {
	case Range1W:
		return today.AddDays(-7)
	case Range1M:
		return today.AddMonths(-1)
	case Range3M:
		return today.AddMonths(-3)
	case Range6M:
		return today.AddMonths(-6)
	case Range1Y:
		return today.AddYears(-1)
	default:
		return today.AddYears(-2)
	}
}

// Filter returns the entries on or after r's cutoff, ascending by day.
// Comparison is by calendar day, so the time of day on now never drops an entry
// logged earlier the same day.
func Filter(entries []Entry, r Range, now time.Time) []Entry {
	cutoff := r.Cutoff(now)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Day.Before(cutoff) {
			out = append(out, e)
		}
	}
	sortAscending(out)
	return out
}

// Fallback decides what a chart shows when the selected window is empty.
type Fallback int

const (
	// FallbackNone renders the empty window as an empty state.
	FallbackNone Fallback = iota
	// FallbackFullSeries renders the whole series instead, flagged as such.
	FallbackFullSeries
)

func (f Fallback) String() string {
	if f == FallbackFullSeries {
		return "full"
	}
	return "none"
}

// ParseFallback accepts "full" or "none".
func ParseFallback(s string) Fallback {
	if strings.EqualFold(strings.TrimSpace(s), "full") {
		return FallbackFullSeries
	}
	return FallbackNone
}
