package trend

import "math"

// NearestIndex returns the index of the point horizontally closest to x, or -1 for
// no points. On equal distance the lower index wins. It runs on every pointer move,
// so it is a plain scan with no allocation.
func NearestIndex(points []Point, x float64) int {
	best := -1
	bestD := math.Inf(1)
	for i := range points {
		d := math.Abs(x - points[i].X)
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// Scrubber tracks pointer-driven inspection of a chart. The zero value is idle.
type Scrubber struct {
	index  int
	active bool
}

// Resolve selects the point nearest to x and makes it the active scrub index.
func (s *Scrubber) Resolve(points []Point, x float64) int {
	i := NearestIndex(points, x)
	if i < 0 {
		s.Clear()
		return -1
	}
	s.index, s.active = i, true
	return i
}

// Step moves the scrub by delta points, clamped to the series. An idle scrubber
// starts from the last point, where the most recent reading is.
func (s *Scrubber) Step(points []Point, delta int) int {
	if len(points) == 0 {
		s.Clear()
		return -1
	}
	i := len(points) - 1
	if s.active {
		i = min(max(s.index+delta, 0), len(points)-1)
	}
	return s.Resolve(points, points[i].X)
}

// Index returns the active index.
func (s *Scrubber) Index() (int, bool) {
	return s.index, s.active
}

// Clear ends the scrub; called on pointer release or gesture cancel.
func (s *Scrubber) Clear() {
	s.index, s.active = 0, false
}
