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
	"math/rand/v2"
	"testing"

	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

func pageClip(w, h int) fixed.Rectangle26_6 {
	return fixed.Rectangle26_6{Max: fixed.Point26_6{X: fixed.I(w), Y: fixed.I(h)}}
}

func TestBandBoxSimple(t *testing.T) {
	img := rect.IntRect{XMax: 50, YMax: 50}
	clip := pageClip(100, 100)

	cases := []struct {
		name    string
		m       matrix.Matrix
		band    Band
		support int
		want    rect.IntRect
		ok      bool
	}{
		{"identity", matrix.Identity, Band{20, 10}, 0, rect.IntRect{XMin: 0, YMin: 20, XMax: 50, YMax: 30}, true},
		{"rotated", matrix.Matrix{0, 1, 1, 0, 0, 0}, Band{20, 10}, 0, rect.IntRect{XMin: 20, YMin: 0, XMax: 30, YMax: 50}, true},
		{"support", matrix.Identity, Band{20, 10}, 4, rect.IntRect{XMin: 0, YMin: 16, XMax: 50, YMax: 34}, true},
		{"support_clamped", matrix.Identity, Band{0, 10}, 4, rect.IntRect{XMin: 0, YMin: 0, XMax: 50, YMax: 14}, true},
		{"scaled", matrix.Matrix{2, 0, 0, 2, 0, 0}, Band{20, 10}, 0, rect.IntRect{XMin: 0, YMin: 10, XMax: 50, YMax: 15}, true},
		{"flipped", matrix.Matrix{1, 0, 0, -1, 0, 50}, Band{0, 10}, 0, rect.IntRect{XMin: 0, YMin: 40, XMax: 50, YMax: 50}, true},
		{"below", matrix.Identity, Band{60, 10}, 0, rect.IntRect{}, false},
		{"singular", matrix.Matrix{1, 2, 2, 4, 0, 0}, Band{20, 10}, 0, rect.IntRect{}, false},
		{"zero", matrix.Matrix{}, Band{20, 10}, 0, rect.IntRect{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := BandBox(img, tc.m, clip, tc.band, tc.support)
			if ok != tc.ok {
				t.Fatalf("ok = %t, want %t", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBandBoxClip(t *testing.T) {
	img := rect.IntRect{XMax: 50, YMax: 50}
	clip := fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: fixed.I(10), Y: fixed.I(0)},
		Max: fixed.Point26_6{X: fixed.I(20), Y: fixed.I(25)},
	}

	got, ok := BandBox(img, matrix.Identity, clip, Band{20, 10}, 0)
	want := rect.IntRect{XMin: 10, YMin: 20, XMax: 20, YMax: 25}
	if !ok || got != want {
		t.Errorf("got %v %t, want %v", got, ok, want)
	}

	// the clip ends above the band
	_, ok = BandBox(img, matrix.Identity, clip, Band{30, 10}, 0)
	if ok {
		t.Error("band outside the clip box gave a result")
	}
}

// TestBandBoxSuperset checks that every device pixel of a band, whose
// centre maps into the image, maps into the band box.
func TestBandBoxSuperset(t *testing.T) {
	const (
		pageW, pageH = 200, 200
		bandHeight   = 16
	)
	img := rect.IntRect{XMin: 3, YMin: 2, XMax: 40, YMax: 30}
	clip := pageClip(pageW, pageH)
	rng := rand.New(rand.NewPCG(1, 2))

	for i := range 50 {
		phi := rng.Float64() * 2 * math.Pi
		sx := 1 + 3*rng.Float64()
		sy := 1 + 3*rng.Float64()
		shear := rng.Float64() - 0.5
		m := matrix.Matrix{
			sx * math.Cos(phi), sx * math.Sin(phi),
			sy * (shear*math.Cos(phi) - math.Sin(phi)), sy * (shear*math.Sin(phi) + math.Cos(phi)),
			100 + 20*rng.Float64(), 100 + 20*rng.Float64(),
		}
		inv, ok := invert(m)
		if !ok {
			t.Fatalf("%d: matrix %v not invertible", i, m)
		}

		for y := 0; y < pageH; y += bandHeight {
			box, ok := BandBox(img, m, clip, Band{y, bandHeight}, 0)
			for py := y; py < y+bandHeight; py++ {
				for px := range pageW {
					u, v := inv.Apply(float64(px)+0.5, float64(py)+0.5)
					if u < float64(img.XMin) || u >= float64(img.XMax) ||
						v < float64(img.YMin) || v >= float64(img.YMax) {
						continue
					}
					if !ok {
						t.Fatalf("%d: band %d empty, but pixel (%d,%d) maps to (%g,%g)",
							i, y, px, py, u, v)
					}
					const eps = 1e-9
					if u < float64(box.XMin)-eps || u > float64(box.XMax)+eps ||
						v < float64(box.YMin)-eps || v > float64(box.YMax)+eps {
						t.Fatalf("%d: pixel (%d,%d) maps to (%g,%g), outside %v",
							i, px, py, u, v, box)
					}
				}
			}
		}
	}
}

func TestBandBoxInsideImage(t *testing.T) {
	img := rect.IntRect{XMax: 10, YMax: 10}
	m := matrix.Matrix{30, 1, -1, 30, -50, -50}
	for y := -64; y < 400; y += 8 {
		box, ok := BandBox(img, m, pageClip(400, 400), Band{y, 8}, 4)
		if !ok {
			continue
		}
		if box.XMin < img.XMin || box.YMin < img.YMin || box.XMax > img.XMax || box.YMax > img.YMax {
			t.Errorf("band %d: box %v extends outside the image", y, box)
		}
		if box.XMin >= box.XMax || box.YMin >= box.YMax {
			t.Errorf("band %d: empty box %v reported as non-empty", y, box)
		}
	}
}

func BenchmarkBandBox(b *testing.B) {
	img := rect.IntRect{XMax: 1000, YMax: 800}
	m := matrix.Matrix{0.99, 0.1, -0.1, 0.99, 100, 50}
	clip := pageClip(2000, 2000)
	for b.Loop() {
		for y := 0; y < 2000; y += 64 {
			BandBox(img, m, clip, Band{y, 64}, 0)
		}
	}
}
