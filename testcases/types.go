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


// Package testcases holds image placements used to check band box
// computations.  The same cases drive the unit tests, the JSON export and
// the PDF visualisation in the sub-directories.
package testcases

import (
	"math"

	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// TestCase describes an image placed on a banded page.
type TestCase struct {
	Name string // lowercase a-z, 0-9 and _ only

	Width      int // page width in pixels
	Height     int // page height in pixels
	BandHeight int

	// Image is the image rectangle in image space.
	Image rect.IntRect

	// CTM maps image space to device space.
	CTM matrix.Matrix

	// Clip is the device clip rectangle.  The zero value means the whole
	// page.
	Clip rect.Rect

	// Support is the number of extra image pixels needed around each
	// band for interpolation.
	Support int
}

// DeviceClip returns the clip rectangle in fixed point device coordinates.
func (tc *TestCase) DeviceClip() fixed.Rectangle26_6 {
	c := tc.Clip
	if c == (rect.Rect{}) {
		c = rect.Rect{URx: float64(tc.Width), URy: float64(tc.Height)}
	}
	return fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: toFixed(c.LLx), Y: toFixed(c.LLy)},
		Max: fixed.Point26_6{X: toFixed(c.URx), Y: toFixed(c.URy)},
	}
}

// NumBands returns the number of bands of the page.
func (tc *TestCase) NumBands() int {
	return (tc.Height + tc.BandHeight - 1) / tc.BandHeight
}

func toFixed(x float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(x * 64))
}

func img(w, h int) rect.IntRect {
	return rect.IntRect{XMax: w, YMax: h}
}

func rectFrom(x0, y0, x1, y1 int) rect.IntRect {
	return rect.IntRect{XMin: x0, YMin: y0, XMax: x1, YMax: y1}
}
