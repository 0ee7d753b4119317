package tui

import (
	"math"
	"strconv"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/sadopc/macrotrend/internal/trend"
)

// Samples per cubic segment when flattening the curve for braille drawing.
const curveSteps = 8

// yLabelWidth is the column budget reserved left of the plot for value labels.
const yLabelWidth = 6

// chartGeometry is the engine drawing area for a plot of w×h cells. The line
// chart draws in its own data space, so the engine works directly in cells.
func chartGeometry(w, h int) trend.Geometry {
	return trend.Geometry{Width: float64(max(w-yLabelWidth, 1)), Height: float64(max(h-2, 1)), Padding: 0.5}
}

// flip converts an engine point (y down) to line chart data space (y up).
func flip(v trend.Vec, g trend.Geometry) canvas.Float64Point {
	return canvas.Float64Point{X: v.X, Y: g.Height - v.Y}
}

// renderTrendChart draws the chart's smoothed curve with value and day labels.
// scrub is the highlighted point index, or -1.
func renderTrendChart(c trend.Chart, w, h, scrub int) string {
	g := c.Geometry
	ticks := tickRows(c.Axis, g)
	lc := linechart.New(w, h, 0, g.Width, 0, g.Height,
		linechart.WithXYSteps(4, 1),
		linechart.WithYLabelFormatter(func(_ int, v float64) string {
			return ticks[int(math.Round(v))]
		}),
		linechart.WithXLabelFormatter(func(_ int, v float64) string {
			i := trend.NearestIndex(c.Points, v)
			if i < 0 {
				return ""
			}
			return c.Points[i].Entry.Day.Time().Format("Jan 02")
		}),
	)
	lc.DrawXYAxisAndLabel()

	line := c.Curve.Path.Flatten(curveSteps)
	for i := 1; i < len(line); i++ {
		lc.DrawBrailleLineWithStyle(flip(line[i-1], g), flip(line[i], g), lineStyle)
	}
	if len(c.Points) == 1 {
		p := c.Points[0]
		lc.DrawRuneWithStyle(flip(trend.Vec{X: p.X, Y: p.Y}, g), '●', markerStyle)
	}
	if scrub >= 0 && scrub < len(c.Points) {
		p := c.Points[scrub]
		lc.DrawRuneWithStyle(flip(trend.Vec{X: p.X, Y: p.Y}, g), '◆', markerStyle)
	}
	return lc.View()
}

// tickRows places each axis tick on the plot row its value projects to. When two
// ticks share a row the one closer to the row's centre keeps it.
func tickRows(a trend.Axis, g trend.Geometry) map[int]string {
	rows := make(map[int]string, len(a.Ticks))
	dist := make(map[int]float64, len(a.Ticks))
	for _, t := range a.Ticks {
		y := g.Height - a.YAt(t, g)
		row := int(math.Round(y))
		d := math.Abs(y - float64(row))
		if prev, ok := dist[row]; ok && prev <= d {
			continue
		}
		rows[row] = strconv.FormatFloat(t, 'f', -1, 64)
		dist[row] = d
	}
	return rows
}

// plotX maps a terminal column inside the plot area to engine x. Columns left of
// the plot clamp to its left edge.
func plotX(col, plotWidth int, g trend.Geometry) float64 {
	if plotWidth <= 0 {
		return 0
	}
	col = min(max(col, 0), plotWidth-1)
	return (float64(col) + 0.5) / float64(plotWidth) * g.Width
}
