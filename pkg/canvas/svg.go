// Package canvas implements the output surface the structural actions
// and the rendering rule set draw onto: an SVG canvas built on
// github.com/ajstarks/svgo.
package canvas

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/osm"
)

// Canvas draws projected OSM geometry onto an SVG document. All inputs
// are geographic (LatLon); Canvas applies the bound Frame's projection
// immediately before emitting page coordinates, so callers never
// handle pixel positions themselves.
type Canvas struct {
	svg   *svg.SVG
	frame *geo.Frame
	w, h  int
}

// New opens an SVG document on w sized to frame's rotated pixel extent
// and starts its root <svg> element.
func New(w io.Writer, frame *geo.Frame, pageW, pageH int) *Canvas {
	s := svg.New(w)
	s.Start(pageW, pageH)
	return &Canvas{svg: s, frame: frame, w: pageW, h: pageH}
}

// Close ends the SVG document. Callers must call this exactly once
// after all drawing is done.
func (c *Canvas) Close() {
	c.svg.End()
}

// Background fills the whole page with a solid color before any rule
// draws.
func (c *Canvas) Background(color string) {
	c.svg.Rect(0, 0, c.w, c.h, fmt.Sprintf("fill:%s", color))
}

// Style describes the subset of SVG presentation attributes the
// drawing actions need: stroke/fill color, stroke width in points, and
// an optional dash pattern, filled from a rule's
// "color"/"bcolor"/"bwidth" draw parameters.
type Style struct {
	Stroke      string
	StrokeWidth float64
	Fill        string
	FillOpacity float64
	Dash        string
}

func (s Style) css() string {
	css := fmt.Sprintf("stroke:%s;stroke-width:%.2f;fill:%s", orNone(s.Stroke), s.StrokeWidth, orNone(s.Fill))
	if s.FillOpacity > 0 {
		css += fmt.Sprintf(";fill-opacity:%.2f", s.FillOpacity)
	}
	if s.Dash != "" {
		css += fmt.Sprintf(";stroke-dasharray:%s", s.Dash)
	}
	return css
}

func orNone(c string) string {
	if c == "" {
		return "none"
	}
	return c
}

// Way draws a way's node ring as a closed polygon if the way is
// closed, or an open polyline otherwise, resolving refs through
// lookup. Unresolvable refs are skipped so partially loaded ways still
// render.
func (c *Canvas) Way(w *osm.Way, lookup func(id int64) (*osm.Node, bool), style Style) {
	xs := make([]int, 0, len(w.Refs))
	ys := make([]int, 0, len(w.Refs))
	for _, ref := range w.Refs {
		n, ok := lookup(ref)
		if !ok {
			continue
		}
		x, y := c.frame.GeoToPx(geo.LatLon{Lat: n.Lat, Lon: n.Lon})
		xs = append(xs, int(x))
		ys = append(ys, int(y))
	}
	if len(xs) < 2 {
		return
	}
	if w.Closed() {
		c.svg.Polygon(xs, ys, style.css())
	} else {
		c.svg.Polyline(xs, ys, style.css())
	}
}

// Node draws a point marker for a node, as a filled circle of the
// given radius in points.
func (c *Canvas) Node(n *osm.Node, radiusPt float64, style Style) {
	x, y := c.frame.GeoToPx(geo.LatLon{Lat: n.Lat, Lon: n.Lon})
	c.svg.Circle(int(x), int(y), int(radiusPt), style.css())
}

// Label draws a text string anchored at a projected position, offset
// by dx/dy points.
func (c *Canvas) Label(lat, lon float64, dx, dy float64, text string, css string) {
	x, y := c.frame.GeoToPx(geo.LatLon{Lat: lat, Lon: lon})
	c.svg.Text(int(x+dx), int(y+dy), text, css)
}

// Line draws a straight page-space line between two geographic points.
func (c *Canvas) Line(from, to geo.LatLon, style Style) {
	x0, y0 := c.frame.GeoToPx(from)
	x1, y1 := c.frame.GeoToPx(to)
	c.svg.Line(int(x0), int(y0), int(x1), int(y1), style.css())
}

// Rect draws an axis-aligned page-space rectangle.
func (c *Canvas) Rect(x, y, w, h float64, style Style) {
	c.svg.Rect(int(x), int(y), int(w), int(h), style.css())
}
