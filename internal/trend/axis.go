package trend

import "math"

// DefaultTickCount is the number of axis intervals Scale aims for.
const DefaultTickCount = 5

// Axis is a padded numeric domain with whole-number tick positions.
type Axis struct {
	Min   float64
	Max   float64
	Range float64
	Ticks []float64
}

// Scale computes the value axis for a chart. The raw extent is padded by 10% (at
// least one unit) on each side and snapped outward to whole numbers, so labels
// stay integral even when readings are fractional. An empty input yields the
// placeholder domain 0..5 so an empty grid can still be drawn.
func Scale(values []float64, targetTicks int) Axis {
	if targetTicks < 1 {
		targetTicks = DefaultTickCount
	}

	rawMin, rawMax := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		rawMin = math.Min(rawMin, v)
		rawMax = math.Max(rawMax, v)
	}
	if math.IsInf(rawMin, 1) {
		return newAxis(0, 5, targetTicks)
	}

	pad := math.Max(0.1*(rawMax-rawMin), 1)
	lo := math.Floor(rawMin - pad)
	hi := math.Ceil(rawMax + pad)
	if lo == hi {
		lo--
		hi++
	}
	return newAxis(lo, hi, targetTicks)
}

func newAxis(lo, hi float64, targetTicks int) Axis {
	span := hi - lo
	step := math.Max(1, math.Round(span/float64(targetTicks)))

	var ticks []float64
	for v := lo; v <= hi; v += step {
		ticks = append(ticks, v)
	}
	if ticks[len(ticks)-1] < hi {
		ticks = append(ticks, hi)
	}
	return Axis{Min: lo, Max: hi, Range: span, Ticks: ticks}
}

// Geometry is the drawing area supplied by the rendering layer.
type Geometry struct {
	Width   float64
	Height  float64
	Padding float64
}

func (g Geometry) innerWidth() float64  { return math.Max(g.Width-2*g.Padding, 0) }
func (g Geometry) innerHeight() float64 { return math.Max(g.Height-2*g.Padding, 0) }

// Point is an entry projected into pixel space. Y grows downward.
type Point struct {
	X     float64
	Y     float64
	Entry Entry
	Index int
}

// Project places entries evenly across the padded width in series order and maps
// values onto the padded height using axis. A single entry is centred.
func Project(entries []Entry, axis Axis, g Geometry) []Point {
	n := len(entries)
	if n == 0 {
		return nil
	}
	w := g.innerWidth()
	pts := make([]Point, n)
	for i, e := range entries {
		x := g.Padding + w/2
		if n > 1 {
			x = g.Padding + w*float64(i)/float64(n-1)
		}
		pts[i] = Point{
			X:     x,
			Y:     axis.YAt(e.Value, g),
			Entry: e,
			Index: i,
		}
	}
	return pts
}

// YAt projects v onto the padded height. Y grows downward.
func (a Axis) YAt(v float64, g Geometry) float64 {
	h := g.innerHeight()
	frac := 0.5
	if a.Range > 0 {
		frac = (v - a.Min) / a.Range
	}
	return g.Padding + h*(1-frac)
}
