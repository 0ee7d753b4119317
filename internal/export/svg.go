package export

import (
	"errors"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/sadopc/macrotrend/internal/trend"
)

// SVGGeometry is the drawing area used for chart exports.
var SVGGeometry = trend.Geometry{Width: 800, Height: 400, Padding: 40}

var errEmptyChart = errors.New("chart has no readings")

// ChartToSVG writes c as a standalone SVG document sized to its geometry, with a
// gridline per axis tick and a marker per reading under the smoothed curve.
func ChartToSVG(c trend.Chart, unit, path string) error {
	if c.Empty() {
		return errEmptyChart
	}
	g := c.Geometry

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		formatValue(g.Width), formatValue(g.Height), formatValue(g.Width), formatValue(g.Height))
	for _, t := range c.Axis.Ticks {
		y := formatValue(c.Axis.YAt(t, g))
		fmt.Fprintf(&sb, `  <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#ddd"/>`+"\n", formatValue(g.Padding), y, formatValue(g.Width-g.Padding), y)
		fmt.Fprintf(&sb, `  <text x="%s" y="%s" font-size="11" text-anchor="end">%s</text>`+"\n", formatValue(g.Padding-6), y, formatValue(t))
	}
	if d := c.Curve.Path.SVG(); d != "" {
		fmt.Fprintf(&sb, `  <path d="%s" fill="none" stroke="#7c3aed" stroke-width="2"/>`+"\n", d)
	}
	for _, p := range c.Points {
		fmt.Fprintf(&sb, `  <circle cx="%s" cy="%s" r="3" fill="#7c3aed"><title>%s %s %s</title></circle>`+"\n",
			formatValue(p.X), formatValue(p.Y), p.Entry.Day, formatValue(p.Entry.Value), html.EscapeString(unit))
	}
	sb.WriteString("</svg>\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write svg file: %w", err)
	}
	return nil
}
