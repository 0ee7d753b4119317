package trend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidValue is returned for measurements that are NaN, infinite or not positive.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInsufficientData is returned when fewer than two samples are classified.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnknownRange is returned by ParseRange for an unrecognised token.
	ErrUnknownRange = errors.New("unknown range")
)

// Entry is one daily measurement: a weight reading or a day's summed nutrition total.
type Entry struct {
	ID        string
	Day       Day
	Value     float64
	UpdatedAt time.Time
}

// ValidateValue rejects values that cannot be plotted as a measurement.
func ValidateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidValue, v)
	}
	return nil
}

// Persistence is the storage collaborator behind a Tracker. Save receives the
// full ascending series and replaces whatever was stored before.
type Persistence interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}
