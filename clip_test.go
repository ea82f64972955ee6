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
	"image"
	"image/color"
	"math"
	"testing"

	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// The triangle (0,0)→(10,0)→(10,1)→close has a diagonal edge y = x/10.
// Each pixel X should have coverage (2X+1)/20: 0.05, 0.15, ..., 0.95.
func TestTriangleCoverage(t *testing.T) {
	trianglePath := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 1}).
		Close()

	s := &coverageScanner{Flatness: defaultFlatness}
	s.setPath(trianglePath)

	coverage := make([]float32, 10)
	s.scan(0, 10, 0, 1, NonZero, func(y int, cov []float32) bool {
		if y == 0 {
			copy(coverage, cov)
		}
		return true
	})

	const epsilon = 1e-6
	for x := range 10 {
		expected := float32(2*x+1) / 20.0
		actual := coverage[x]
		if math.Abs(float64(actual-expected)) > epsilon {
			t.Errorf("pixel %d: expected coverage %.4f, got %.4f", x, expected, actual)
		}
	}
}

func polygon(pts ...vec.Vec2) *path.Data {
	p := (&path.Data{}).MoveTo(pts[0])
	for _, q := range pts[1:] {
		p = p.LineTo(q)
	}
	return p.Close()
}

func TestIncludesRect(t *testing.T) {
	diamond := NewPathClip(1, polygon(
		vec.Vec2{X: 50, Y: 0}, vec.Vec2{X: 100, Y: 50},
		vec.Vec2{X: 50, Y: 100}, vec.Vec2{X: 0, Y: 50}), NonZero)

	// two squares with the same orientation
	square := polygon(
		vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 100, Y: 0},
		vec.Vec2{X: 100, Y: 100}, vec.Vec2{X: 0, Y: 100})
	hole := polygon(
		vec.Vec2{X: 30, Y: 30}, vec.Vec2{X: 70, Y: 30},
		vec.Vec2{X: 70, Y: 70}, vec.Vec2{X: 30, Y: 70})
	both := &path.Data{
		Cmds:   append(append([]path.Command{}, square.Cmds...), hole.Cmds...),
		Coords: append(append([]vec.Vec2{}, square.Coords...), hole.Coords...),
	}
	nonZero := NewPathClip(2, both, NonZero)
	evenOdd := NewPathClip(3, both, EvenOdd)

	// an open subpath is closed implicitly
	open := NewPathClip(4, (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 10}).
		LineTo(vec.Vec2{X: 0, Y: 10}), NonZero)

	rc := NewRectClip(5, fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: fixed.I(10), Y: fixed.I(10)},
		Max: fixed.Point26_6{X: fixed.I(20), Y: fixed.I(20)},
	})

	cases := []struct {
		name           string
		clip           *Clip
		x0, y0, x1, y1 int
		want           bool
	}{
		{"diamond_centre", diamond, 40, 40, 60, 60, true},
		{"diamond_corner", diamond, 10, 10, 30, 30, false},
		{"diamond_outside", diamond, 90, 90, 110, 110, false},
		{"diamond_empty", diamond, 90, 90, 90, 110, true},
		{"nonzero_hole", nonZero, 40, 40, 60, 60, true},
		{"evenodd_hole", evenOdd, 40, 40, 60, 60, false},
		{"evenodd_ring", evenOdd, 5, 5, 25, 25, true},
		{"open_path", open, 1, 1, 9, 9, true},
		{"rect_inside", rc, 12, 12, 20, 20, true},
		{"rect_partial", rc, 5, 12, 15, 20, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.clip.IncludesRect(tc.x0, tc.y0, tc.x1, tc.y1)
			if got != tc.want {
				t.Errorf("got %t, want %t", got, tc.want)
			}
		})
	}
}

func TestPathClipOuter(t *testing.T) {
	c := NewPathClip(1, polygon(
		vec.Vec2{X: 1.5, Y: 2.25}, vec.Vec2{X: 7, Y: 2.25}, vec.Vec2{X: 3, Y: 9.75}), NonZero)
	want := fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: fixed.I(3) / 2, Y: fixed.I(9) / 4},
		Max: fixed.Point26_6{X: fixed.I(7), Y: fixed.I(39) / 4},
	}
	if c.Outer != want {
		t.Errorf("got %v, want %v", c.Outer, want)
	}
	if c.IsRect() {
		t.Error("path clip reported as rectangle")
	}
}

func TestTrivialClip(t *testing.T) {
	rc := NewRectClip(1, fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: fixed.I(10), Y: fixed.I(10)},
		Max: fixed.Point26_6{X: fixed.I(20), Y: fixed.I(20)},
	})
	diamond := NewPathClip(2, polygon(
		vec.Vec2{X: 50, Y: 0}, vec.Vec2{X: 100, Y: 50},
		vec.Vec2{X: 50, Y: 100}, vec.Vec2{X: 0, Y: 50}), NonZero)

	cases := []struct {
		name string
		clip *Clip
		want bool
	}{
		{"none", nil, true},
		{"rect_overlap", rc, true},
		{"path_partial", diamond, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := trivialClip(tc.clip, 0, 0, 15, 15); got != tc.want {
				t.Errorf("got %t, want %t", got, tc.want)
			}
		})
	}
	if trivialClip(rc, 30, 30, 40, 40) {
		t.Error("disjoint rectangle reported as trivial")
	}
	if !trivialClip(diamond, 45, 45, 55, 55) {
		t.Error("image inside the clip path reported as non-trivial")
	}
}

// TestCoverageAgainstVector compares the area covered by an "O" shape
// with the result of x/image/vector.
func TestCoverageAgainstVector(t *testing.T) {
	const size = 100
	center, outerR, innerR := 50.0, 45.0, 30.0

	clip := NewPathClip(1, makeOPath(center, center, outerR, innerR), NonZero)
	var ours float64
	clip.scanner.scan(0, size, 0, size, NonZero, func(y int, coverage []float32) bool {
		for _, c := range coverage {
			ours += float64(c)
		}
		return true
	})

	r := vector.NewRasterizer(size, size)
	addCircleToVector(r, float32(center), float32(center), float32(outerR), false)
	addCircleToVector(r, float32(center), float32(center), float32(innerR), true)
	dst := image.NewAlpha(image.Rect(0, 0, size, size))
	r.Draw(dst, dst.Bounds(), image.NewUniform(color.Alpha{255}), image.Point{})
	var theirs float64
	for _, a := range dst.Pix {
		theirs += float64(a) / 255
	}

	exact := math.Pi * (outerR*outerR - innerR*innerR)
	if math.Abs(ours-exact) > 0.02*exact {
		t.Errorf("covered area %.1f, expected %.1f", ours, exact)
	}
	if math.Abs(ours-theirs) > 0.02*exact {
		t.Errorf("covered area %.1f, x/image/vector gives %.1f", ours, theirs)
	}
}
