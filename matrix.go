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

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Matrix entries use the PDF convention: a point (x, y) is mapped to
// (m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]).

// isXXYY reports whether m maps axis-parallel rectangles to axis-parallel
// rectangles without swapping the axes.
func isXXYY(m matrix.Matrix) bool {
	return m[1] == 0 && m[2] == 0
}

// isXYYX reports whether m swaps the axes, for example a rotation by 90
// degrees.
func isXYYX(m matrix.Matrix) bool {
	return m[0] == 0 && m[3] == 0
}

// invert returns the inverse of m.  The second return value is false if m
// is singular or if the inverse cannot be represented.
func invert(m matrix.Matrix) (matrix.Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return matrix.Matrix{}, false
	}
	inv := matrix.Matrix{m[3] / det, -m[1] / det, -m[2] / det, m[0] / det}
	inv[4] = -(m[4]*inv[0] + m[5]*inv[2])
	inv[5] = -(m[4]*inv[1] + m[5]*inv[3])
	for _, v := range inv {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxCoord {
			return matrix.Matrix{}, false
		}
	}
	return inv, true
}

// bboxTransform returns the bounding box of the image of r under m.
func bboxTransform(r rect.Rect, m matrix.Matrix) rect.Rect {
	var res pointBox
	for _, c := range [4][2]float64{{r.LLx, r.LLy}, {r.URx, r.LLy}, {r.URx, r.URy}, {r.LLx, r.URy}} {
		res.add(m.Apply(c[0], c[1]))
	}
	return res.Rect
}

// bboxTransformInverse returns the bounding box of the preimage of r
// under m.
func bboxTransformInverse(r rect.Rect, m matrix.Matrix) (rect.Rect, bool) {
	inv, ok := invert(m)
	if !ok {
		return rect.Rect{}, false
	}
	return bboxTransform(r, inv), true
}

// matrixOKToBand decides whether an image placed by m can be split into
// bands.
//
// Without allowNonRect, every invertible placement which keeps the image
// axis-parallel is accepted.  Otherwise axis-parallel placements must not
// shrink the image, and other placements must not shrink the image and
// must be close to an axis-parallel placement.
func matrixOKToBand(m matrix.Matrix, allowNonRect bool) bool {
	const one = 1 - 1e-5

	if math.Abs(m[0]*m[3]-m[1]*m[2]) < 0.001 {
		return false
	}
	if !allowNonRect {
		return isXXYY(m) || isXYYX(m)
	}
	if isXXYY(m) {
		return math.Abs(m[0]) >= one && math.Abs(m[3]) >= one
	}
	if isXYYX(m) {
		return math.Abs(m[1]) >= one && math.Abs(m[2]) >= one
	}
	if m[0]*m[0]+m[1]*m[1] < one || m[2]*m[2]+m[3]*m[3] < one {
		return false
	}
	t := (math.Abs(m[0]) + math.Abs(m[3])) / (math.Abs(m[1]) + math.Abs(m[2]))
	return t < 0.2 || t > 5
}

// maxCoord bounds the entries of inverted matrices.
const maxCoord = 1 << 30

// pointBox is the bounding box of a set of points.
type pointBox struct {
	rect.Rect
	found bool
}

func (b *pointBox) add(x, y float64) {
	if !b.found {
		b.Rect = rect.Rect{LLx: x, LLy: y, URx: x, URy: y}
		b.found = true
		return
	}
	b.Add(x, y)
}
