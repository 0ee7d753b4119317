package trend

import (
	"math"
	"strconv"
	"strings"
)

// LengthOverhead scales the polyline length to cover the extra length of the curve
// bulges. The estimate only sizes a stroke-reveal animation.
const LengthOverhead = 1.5

// Vec is a 2D pixel coordinate.
type Vec struct {
	X, Y float64
}

func (v Vec) add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }
func (v Vec) dist(o Vec) float64  { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Op is a path drawing command.
type Op int

const (
	MoveTo Op = iota
	LineTo
	CubicTo
)

// Command is one path segment. MoveTo and LineTo carry one point; CubicTo carries
// two control points followed by the segment end point.
type Command struct {
	Op  Op
	Pts []Vec
}

// End is the point the pen rests on after the command.
func (c Command) End() Vec { return c.Pts[len(c.Pts)-1] }

// Path is a sequence of drawing commands starting with a MoveTo.
type Path []Command

// Curve is the visual encoding of a series line.
type Curve struct {
	Path           Path
	LengthEstimate float64
}

// BuildCurve turns projected points into a path through every point.
//
// Three or more points become a cubic Bézier chain with Catmull-Rom control points:
// for the segment i→i+1, cp1 = p[i] + (p[i+1]-p[i-1])/6 and
// cp2 = p[i+1] - (p[i+2]-p[i])/6, clamping the neighbours at both ends. Two points
// are joined by a straight line and a single point is just a MoveTo.
func BuildCurve(points []Vec) Curve {
	n := len(points)
	if n == 0 {
		return Curve{}
	}

	path := make(Path, 0, n)
	path = append(path, Command{Op: MoveTo, Pts: []Vec{points[0]}})

	switch {
	case n == 2:
		path = append(path, Command{Op: LineTo, Pts: []Vec{points[1]}})
	case n > 2:
		for i := 0; i < n-1; i++ {
			prev := points[max(i-1, 0)]
			cur := points[i]
			next := points[i+1]
			after := points[min(i+2, n-1)]

			cp1 := cur.add(next.sub(prev).scale(1.0 / 6))
			cp2 := next.sub(after.sub(cur).scale(1.0 / 6))
			path = append(path, Command{Op: CubicTo, Pts: []Vec{cp1, cp2, next}})
		}
	}

	var length float64
	for i := 1; i < n; i++ {
		length += points[i].dist(points[i-1])
	}
	return Curve{Path: path, LengthEstimate: length * LengthOverhead}
}

// BuildCurveFromPoints is BuildCurve over projected series points.
func BuildCurveFromPoints(pts []Point) Curve {
	vs := make([]Vec, len(pts))
	for i, p := range pts {
		vs[i] = Vec{p.X, p.Y}
	}
	return BuildCurve(vs)
}

// SVG renders the path as an SVG "d" attribute.
func (p Path) SVG() string {
	var sb strings.Builder
	for i, c := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch c.Op {
		case MoveTo:
			sb.WriteString("M")
		case LineTo:
			sb.WriteString("L")
		case CubicTo:
			sb.WriteString("C")
		}
		for j, v := range c.Pts {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(" ")
			sb.WriteString(formatCoord(v.X))
			sb.WriteString(" ")
			sb.WriteString(formatCoord(v.Y))
		}
	}
	return sb.String()
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Flatten samples the path into a polyline, using steps points per cubic segment.
// Terminal renderers that can only draw straight lines draw the result.
func (p Path) Flatten(steps int) []Vec {
	if steps < 1 {
		steps = 1
	}
	var out []Vec
	var pen Vec
	for _, c := range p {
		switch c.Op {
		case MoveTo, LineTo:
			pen = c.End()
			out = append(out, pen)
		case CubicTo:
			p0, p1, p2, p3 := pen, c.Pts[0], c.Pts[1], c.Pts[2]
			for s := 1; s <= steps; s++ {
				out = append(out, cubicAt(p0, p1, p2, p3, float64(s)/float64(steps)))
			}
			pen = p3
		}
	}
	return out
}

func cubicAt(p0, p1, p2, p3 Vec, t float64) Vec {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Vec{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
