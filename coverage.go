// seehuhn.de/go/bandlist - band lists for banded page rendering
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package bandlist

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// edge is a line segment in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
}

// coverageScanner computes the anti-aliased coverage of a device-space
// path, one scanline at a time.  Buffers are reused between calls.
type coverageScanner struct {
	// Flatness is the curve flattening tolerance in device pixels.
	Flatness float64

	cover     []float32 // cover change per pixel; reused as output
	area      []float32 // area within pixel
	edges     []edge
	activeIdx []int
	crossings []float64

	hasEdges               bool
	xMin, xMax, yMin, yMax float64 // bounding box of the edges
	sorted                 bool
}

// setPath replaces the edge list by the edges of p.
func (s *coverageScanner) setPath(p *path.Data) {
	s.edges = s.edges[:0]
	s.hasEdges = false
	s.sorted = false

	var current, subpath vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			current = p.Coords[k]
			subpath = current
			k++
		case path.CmdLineTo:
			s.addEdge(current, p.Coords[k])
			current = p.Coords[k]
			k++
		case path.CmdQuadTo:
			s.flattenQuadratic(current, p.Coords[k], p.Coords[k+1])
			current = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			s.flattenCubic(current, p.Coords[k], p.Coords[k+1], p.Coords[k+2])
			current = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if current != subpath {
				s.addEdge(current, subpath)
			}
			current = subpath
		}
	}
	// subpaths are closed implicitly when filling
	if current != subpath {
		s.addEdge(current, subpath)
	}
}

func (s *coverageScanner) flattenQuadratic(p0, p1, p2 vec.Vec2) {
	e := p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)
	n := 1
	if d := e.Length(); d > s.Flatness {
		n = int(math.Ceil(math.Sqrt(d / s.Flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		omt := 1 - t
		pt := p0.Mul(omt * omt).Add(p1.Mul(2 * omt * t)).Add(p2.Mul(t * t))
		s.addEdge(prev, pt)
		prev = pt
	}
}

func (s *coverageScanner) flattenCubic(p0, p1, p2, p3 vec.Vec2) {
	d1 := p0.Sub(p1.Mul(2)).Add(p2)
	d2 := p1.Sub(p2.Mul(2)).Add(p3)

	// Wang's formula
	n := 1
	if m := max(d1.Length(), d2.Length()); m > 0 {
		if nf := math.Sqrt(3 * m / (4 * s.Flatness)); nf > 1 {
			n = int(math.Ceil(nf))
		}
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		omt := 1 - t
		pt := p0.Mul(omt * omt * omt).
			Add(p1.Mul(3 * omt * omt * t)).
			Add(p2.Mul(3 * omt * t * t)).
			Add(p3.Mul(t * t * t))
		s.addEdge(prev, pt)
		prev = pt
	}
}

func (s *coverageScanner) addEdge(p0, p1 vec.Vec2) {
	dy := p1.Y - p0.Y
	if dy > -horizontalEdgeThreshold && dy < horizontalEdgeThreshold {
		return
	}
	s.edges = append(s.edges, edge{
		x0: p0.X, y0: p0.Y,
		x1: p1.X, y1: p1.Y,
		dxdy: (p1.X - p0.X) / dy,
	})

	if !s.hasEdges {
		s.xMin, s.xMax = min(p0.X, p1.X), max(p0.X, p1.X)
		s.yMin, s.yMax = min(p0.Y, p1.Y), max(p0.Y, p1.Y)
		s.hasEdges = true
		return
	}
	s.xMin = min(s.xMin, p0.X, p1.X)
	s.xMax = max(s.xMax, p0.X, p1.X)
	s.yMin = min(s.yMin, p0.Y, p1.Y)
	s.yMax = max(s.yMax, p0.Y, p1.Y)
}

// Coverage model: every edge crossing a pixel adds its signed vertical
// extent to cover, and cover*(1-xFrac) to area.  Integrating along the
// scanline gives the signed area of the path inside each pixel.

// accumulateEdge adds the contribution of e in scanline y to the buffers,
// which are indexed by x - bboxXMin.
func (s *coverageScanner) accumulateEdge(e *edge, y int, cover, area []float32, bboxXMin, bboxXMax int) {
	yTop := max(float64(y), min(e.y0, e.y1))
	yBot := min(float64(y+1), max(e.y0, e.y1))
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xLeft := e.x0 + e.dxdy*(yTop-e.y0)
	xRight := e.x0 + e.dxdy*(yBot-e.y0)
	if xLeft > xRight {
		xLeft, xRight = xRight, xLeft
	}
	pixLeft := int(math.Floor(xLeft))
	pixRight := int(math.Floor(xRight))

	if pixRight < bboxXMin {
		c := sign * float32(yBot-yTop)
		cover[0] += c
		area[0] += c
		return
	}
	if pixLeft >= bboxXMax {
		return
	}

	// split the edge where it crosses pixel boundaries
	s.crossings = append(s.crossings[:0], yTop, yBot)
	if pixLeft != pixRight {
		dydx := 1 / e.dxdy
		for x := pixLeft + 1; x <= pixRight; x++ {
			if yx := e.y0 + dydx*(float64(x)-e.x0); yx > yTop && yx < yBot {
				s.crossings = append(s.crossings, yx)
			}
		}
		slices.Sort(s.crossings)
	}

	for i := range len(s.crossings) - 1 {
		y0, y1 := s.crossings[i], s.crossings[i+1]
		if y1 <= y0 {
			continue
		}
		c := sign * float32(y1-y0)
		xMid := e.x0 + e.dxdy*((y0+y1)/2-e.y0)
		pix := int(math.Floor(xMid))
		switch {
		case pix < bboxXMin:
			cover[0] += c
			area[0] += c
		case pix < bboxXMax:
			idx := pix - bboxXMin
			cover[idx] += c
			area[idx] += c * float32(1-(xMid-float64(pix)))
		}
	}
}

func integrateNonZero(cover, area []float32) {
	var accum float32
	for i := range cover {
		raw := accum + area[i]
		accum += cover[i]
		if raw < 0 {
			raw = -raw
		}
		cover[i] = min(raw, 1)
	}
}

func integrateEvenOdd(cover, area []float32) {
	var accum float32
	for i := range cover {
		raw := accum + area[i]
		accum += cover[i]
		if raw < 0 {
			raw = -raw
		}
		mod := raw - 2*float32(int(raw/2))
		d := 1 - mod
		if d < 0 {
			d = -d
		}
		cover[i] = 1 - d
	}
}

// scan computes the coverage of the rows y0 to y1-1 inside the window
// x0 to x1-1.  Rows which no edge reaches are skipped.  Each emitted row
// covers the full window.  Scanning stops early if emit returns false.
func (s *coverageScanner) scan(x0, x1, y0, y1 int, rule FillRule, emit func(y int, coverage []float32) bool) {
	width := x1 - x0
	if width <= 0 || y0 >= y1 || len(s.edges) == 0 {
		return
	}
	s.cover = slices.Grow(s.cover[:0], width)[:width]
	s.area = slices.Grow(s.area[:0], width)[:width]

	if !s.sorted {
		slices.SortFunc(s.edges, func(a, b edge) int {
			return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
		})
		s.sorted = true
	}

	s.activeIdx = s.activeIdx[:0]
	next := 0

	for y := y0; y < y1; y++ {
		yf, yfNext := float64(y), float64(y+1)

		for next < len(s.edges) && min(s.edges[next].y0, s.edges[next].y1) < yfNext {
			s.activeIdx = append(s.activeIdx, next)
			next++
		}

		clear(s.cover)
		clear(s.area)
		touched := false
		for i := 0; i < len(s.activeIdx); {
			e := &s.edges[s.activeIdx[i]]
			if max(e.y0, e.y1) <= yf {
				s.activeIdx[i] = s.activeIdx[len(s.activeIdx)-1]
				s.activeIdx = s.activeIdx[:len(s.activeIdx)-1]
				continue
			}
			s.accumulateEdge(e, y, s.cover, s.area, x0, x1)
			touched = true
			i++
		}
		if !touched {
			continue
		}

		if rule == EvenOdd {
			integrateEvenOdd(s.cover, s.area)
		} else {
			integrateNonZero(s.cover, s.area)
		}
		if !emit(y, s.cover) {
			return
		}
	}
}

// Numerical tolerances of the coverage scanner.
const (
	// horizontalEdgeThreshold is the minimum vertical extent for an edge
	// to contribute to coverage.
	horizontalEdgeThreshold = 1e-10

	// defaultFlatness is the curve flattening tolerance in device pixels.
	defaultFlatness = 0.25
)
