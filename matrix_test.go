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
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

func TestMatrixOKToBand(t *testing.T) {
	rot := func(deg, scale float64) matrix.Matrix {
		s, c := math.Sincos(deg * math.Pi / 180)
		return matrix.Matrix{scale * c, scale * s, -scale * s, scale * c, 0, 0}
	}

	cases := []struct {
		name         string
		m            matrix.Matrix
		allowNonRect bool
		want         bool
	}{
		{"identity", matrix.Identity, false, true},
		{"enlarged", matrix.Matrix{3, 0, 0, -2, 10, 10}, false, true},
		{"reduced", matrix.Matrix{0.5, 0, 0, 1, 0, 0}, false, true},
		{"reduced_nonrect_allowed", matrix.Matrix{0.5, 0, 0, 1, 0, 0}, true, false},
		{"almost_one", matrix.Matrix{1 - 1e-6, 0, 0, 1, 0, 0}, false, true},
		{"swapped", matrix.Matrix{0, 1, -1, 0, 0, 0}, false, true},
		{"swapped_reduced", matrix.Matrix{0, 0.5, -1, 0, 0, 0}, false, true},
		{"swapped_reduced_nonrect_allowed", matrix.Matrix{0, 0.5, -1, 0, 0, 0}, true, false},
		{"enlarged_nonrect_allowed", matrix.Matrix{3, 0, 0, -2, 10, 10}, true, true},
		{"singular_axis", matrix.Matrix{1e-4, 0, 0, 1, 0, 0}, false, false},
		{"singular", matrix.Matrix{1, 1, 1, 1, 0, 0}, true, false},
		{"zero", matrix.Matrix{}, true, false},
		{"small_angle", rot(5, 2), true, true},
		{"small_angle_disabled", rot(5, 2), false, false},
		{"near_90", rot(87, 2), true, true},
		{"45_degrees", rot(45, 2), true, false},
		{"small_angle_reduced", rot(5, 0.8), true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matrixOKToBand(tc.m, tc.allowNonRect); got != tc.want {
				t.Errorf("matrixOKToBand(%v, %t) = %t, want %t",
					tc.m, tc.allowNonRect, got, tc.want)
			}
		})
	}
}

func TestInvert(t *testing.T) {
	ms := []matrix.Matrix{
		matrix.Identity,
		{2, 0, 0, 3, 5, 7},
		{0, 1, -1, 0, 100, 0},
		{1.5, 0.2, -0.3, 2.5, -4, 9},
	}
	for _, m := range ms {
		inv, ok := invert(m)
		if !ok {
			t.Fatalf("%v: not invertible", m)
		}
		for _, p := range [][2]float64{{0, 0}, {1, 0}, {3.5, -2}} {
			x, y := m.Apply(p[0], p[1])
			u, v := inv.Apply(x, y)
			if math.Abs(u-p[0]) > 1e-9 || math.Abs(v-p[1]) > 1e-9 {
				t.Errorf("%v: %v maps back to (%g, %g)", m, p, u, v)
			}
		}
	}

	if _, ok := invert(matrix.Matrix{1, 2, 2, 4, 0, 0}); ok {
		t.Error("singular matrix was inverted")
	}
	if _, ok := invert(matrix.Matrix{1e-300, 0, 0, 1e-300, 0, 0}); ok {
		t.Error("inverse with huge entries was accepted")
	}
}

func TestBBoxTransform(t *testing.T) {
	r := rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 20}
	got := bboxTransform(r, matrix.Matrix{0, 1, -1, 0, 0, 0})
	want := rect.Rect{LLx: -20, LLy: 0, URx: 0, URy: 10}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	back, ok := bboxTransformInverse(got, matrix.Matrix{0, 1, -1, 0, 0, 0})
	if !ok || back != r {
		t.Errorf("inverse: got %v %t, want %v", back, ok, r)
	}
}

func TestPointBox(t *testing.T) {
	var b pointBox
	for _, p := range [][2]float64{{5, 7}, {9, 6}, {6, 11}} {
		b.add(p[0], p[1])
	}
	want := rect.Rect{LLx: 5, LLy: 6, URx: 9, URy: 11}
	if !b.found || b.Rect != want {
		t.Errorf("got %v %t, want %v", b.Rect, b.found, want)
	}

	// boxes away from the origin must not grow to include it
	got := bboxTransform(rect.Rect{LLx: 1, LLy: 1, URx: 2, URy: 3}, matrix.Matrix{2, 0, 0, 2, 100, 200})
	want = rect.Rect{LLx: 102, LLy: 202, URx: 104, URy: 206}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
