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
	"math"

	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
)

// FillRule specifies how the inside of a clip path is determined.
type FillRule int

// Supported fill rules.
const (
	NonZero FillRule = iota
	EvenOdd
)

// Clip is a clip region in device space.  A nil *Clip means that no
// clipping is applied.
//
// A Clip is either a rectangle, or a general path.  Clips are not modified
// by the writer.
type Clip struct {
	// ID identifies the clip.  Clips with equal IDs must describe the same
	// region.
	ID uint64

	// Outer is a bounding box of the region.  For rectangular clips, this
	// is the region itself.
	Outer fixed.Rectangle26_6

	path    *path.Data
	rule    FillRule
	scanner *coverageScanner
}

// NewRectClip returns a clip region consisting of the rectangle r.
func NewRectClip(id uint64, r fixed.Rectangle26_6) *Clip {
	return &Clip{ID: id, Outer: r}
}

// NewPathClip returns a clip region given by a device-space path.
// Open subpaths are closed implicitly.
func NewPathClip(id uint64, p *path.Data, rule FillRule) *Clip {
	s := &coverageScanner{Flatness: defaultFlatness}
	s.setPath(p)
	c := &Clip{ID: id, path: p, rule: rule, scanner: s}
	if s.hasEdges {
		c.Outer = fixed.Rectangle26_6{
			Min: fixed.Point26_6{X: floorFixed(s.xMin), Y: floorFixed(s.yMin)},
			Max: fixed.Point26_6{X: ceilFixed(s.xMax), Y: ceilFixed(s.yMax)},
		}
	}
	return c
}

// IsRect reports whether the clip region is a rectangle.
func (c *Clip) IsRect() bool {
	return c.path == nil
}

// IncludesRect reports whether every pixel of the device rectangle
// [x0, x1) × [y0, y1) lies fully inside the clip region.
func (c *Clip) IncludesRect(x0, y0, x1, y1 int) bool {
	if x0 >= x1 || y0 >= y1 {
		return true
	}
	o := c.Outer
	if o.Min.X > fixed.I(x0) || o.Min.Y > fixed.I(y0) ||
		o.Max.X < fixed.I(x1) || o.Max.Y < fixed.I(y1) {
		return false
	}
	if c.IsRect() {
		return true
	}

	const full = 1 - 1e-4
	rows := 0
	ok := true
	c.scanner.scan(x0, x1, y0, y1, c.rule, func(y int, coverage []float32) bool {
		if y != y0+rows {
			ok = false
			return false
		}
		for _, v := range coverage {
			if v < full {
				ok = false
				return false
			}
		}
		rows++
		return true
	})
	return ok && rows == y1-y0
}

// bounds returns the outer box in floating point.
func (c *Clip) bounds() rect.Rect {
	return rect.Rect{
		LLx: fixedToFloat(c.Outer.Min.X),
		LLy: fixedToFloat(c.Outer.Min.Y),
		URx: fixedToFloat(c.Outer.Max.X),
		URy: fixedToFloat(c.Outer.Max.Y),
	}
}

// trivialClip reports whether clipping an image with device bounding box
// [x0, x1) × [y0, y1) to c needs no more than a rectangle test.
func trivialClip(c *Clip, x0, y0, x1, y1 int) bool {
	if c == nil || c.IncludesRect(x0, y0, x1, y1) {
		return true
	}
	if c.IsRect() {
		// a rectangle which intersects the image
		o := c.Outer
		return o.Min.X < fixed.I(x1) && o.Max.X > fixed.I(x0) &&
			o.Min.Y < fixed.I(y1) && o.Max.Y > fixed.I(y0)
	}
	return false
}

func floorFixed(x float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Floor(x * 64))
}

func ceilFixed(x float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Ceil(x * 64))
}
