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
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Band is a range of device scanlines, from Y (inclusive) to Y+Height
// (exclusive).
type Band struct {
	Y, Height int
}

// BandBox returns the part of an image which can affect the given band.
//
// The image occupies img in image space and is placed on the page by the
// matrix m.  Only device pixels inside clip are considered.  If support is
// positive, the result is enlarged by support pixels in each direction, to
// allow for interpolation.  The result never extends outside img.
//
// The returned rectangle is conservative: every device pixel of the band
// whose centre maps into img maps into the returned rectangle.  The second
// return value is false if no part of the image affects the band, or if m
// cannot be inverted.
func BandBox(img rect.IntRect, m matrix.Matrix, clip fixed.Rectangle26_6, band Band, support int) (rect.IntRect, bool) {
	// No half-pixel padding: pixel centres already lie inside b.
	b := rect.Rect{
		LLx: fixedToFloat(clip.Min.X),
		LLy: max(fixedToFloat(clip.Min.Y), float64(band.Y)),
		URx: fixedToFloat(clip.Max.X),
		URy: min(fixedToFloat(clip.Max.Y), float64(band.Y+band.Height)),
	}
	return bandBox(img, m, b, support)
}

// bandBox computes the band box for the device region b.
//
// The pixel centres inside b lie at least half a pixel inside the
// boundary of b, which absorbs rounding errors of the transformation.
func bandBox(img rect.IntRect, m matrix.Matrix, b rect.Rect, support int) (rect.IntRect, bool) {
	if !(b.LLx < b.URx && b.LLy < b.URy) {
		return rect.IntRect{}, false
	}

	var acc pointBox
	if isXXYY(m) || isXYYX(m) {
		ib, ok := bboxTransformInverse(b, m)
		if !ok {
			return rect.IntRect{}, false
		}
		acc.add(ib.LLx, ib.LLy)
		acc.add(ib.URx, ib.URy)
	} else {
		inv, ok := invert(m)
		if !ok {
			return rect.IntRect{}, false
		}
		intersectQuads(&acc, img, m, inv, b)
	}
	if !acc.found {
		return rect.IntRect{}, false
	}

	res := rect.IntRect{
		XMin: max(floorInt(acc.LLx), img.XMin),
		YMin: max(floorInt(acc.LLy), img.YMin),
		XMax: min(ceilInt(acc.URx), img.XMax),
		YMax: min(ceilInt(acc.URy), img.YMax),
	}
	if res.XMin >= res.XMax || res.YMin >= res.YMax {
		return rect.IntRect{}, false
	}

	if support > 0 {
		res.XMin = max(res.XMin-support, img.XMin)
		res.YMin = max(res.YMin-support, img.YMin)
		res.XMax = min(res.XMax+support, img.XMax)
		res.YMax = min(res.YMax+support, img.YMax)
	}

	Logger().Debug("band box",
		"ymin", b.LLy, "ymax", b.URy,
		"box", [4]int{res.XMin, res.YMin, res.XMax, res.YMax})
	return res, true
}

// intersectQuads adds the vertices of the intersection of the image
// rectangle img with the preimage of the device rectangle b to acc.
//
// Both regions are convex quadrilaterals in image space, so the vertices
// of the intersection are the corners of one region which lie inside the
// other, together with the crossing points of their edges.
func intersectQuads(acc *pointBox, img rect.IntRect, m, inv matrix.Matrix, b rect.Rect) {
	px, py := float64(img.XMin), float64(img.YMin)
	qx, qy := float64(img.XMax), float64(img.YMax)

	// image corners inside b
	for _, c := range [4][2]float64{{px, py}, {qx, py}, {qx, qy}, {px, qy}} {
		x, y := m.Apply(c[0], c[1])
		if x >= b.LLx && x <= b.URx && y >= b.LLy && y <= b.URy {
			acc.add(c[0], c[1])
		}
	}

	// corners of b inside the image
	var corner [4][2]float64
	for i, c := range [4][2]float64{{b.LLx, b.LLy}, {b.URx, b.LLy}, {b.URx, b.URy}, {b.LLx, b.URy}} {
		x, y := inv.Apply(c[0], c[1])
		corner[i] = [2]float64{x, y}
		if x >= px && x <= qx && y >= py && y <= qy {
			acc.add(x, y)
		}
	}

	// edges of b crossing the edges of the image
	for i := range corner {
		ax, ay := corner[i][0], corner[i][1]
		dx := corner[(i+1)%4][0] - ax
		dy := corner[(i+1)%4][1] - ay
		if dx != 0 {
			for _, x := range [2]float64{px, qx} {
				t := (x - ax) / dx
				if t >= 0 && t <= 1 {
					if y := ay + t*dy; y >= py && y <= qy {
						acc.add(x, y)
					}
				}
			}
		}
		if dy != 0 {
			for _, y := range [2]float64{py, qy} {
				t := (y - ay) / dy
				if t >= 0 && t <= 1 {
					if x := ax + t*dx; x >= px && x <= qx {
						acc.add(x, y)
					}
				}
			}
		}
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// floorInt and ceilInt convert to int, saturating for huge values.
func floorInt(x float64) int {
	return clampInt(math.Floor(x))
}

func ceilInt(x float64) int {
	return clampInt(math.Ceil(x))
}

func clampInt(x float64) int {
	switch {
	case x < -maxCoord:
		return -maxCoord
	case x > maxCoord:
		return maxCoord
	}
	return int(x)
}
