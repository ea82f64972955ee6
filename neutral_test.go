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
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf/graphics/color"
)

func TestIsRowNeutral(t *testing.T) {
	cases := []struct {
		name   string
		row    []byte
		class  ColorClass
		size   int
		pixels int
		want   bool
	}{
		{"gray", []byte{0, 255, 17}, ClassGray, 1, 3, true},
		{"rgb_equal", []byte{10, 10, 10, 200, 200, 200}, ClassRGB, 1, 2, true},
		{"rgb_close", []byte{10, 14, 12}, ClassRGB, 1, 1, true},
		{"rgb_threshold", []byte{10, 15, 12}, ClassRGB, 1, 1, false},
		{"rgb_second_pixel", []byte{0, 0, 0, 255, 0, 0}, ClassRGB, 1, 2, false},
		{"rgb_ignored_tail", []byte{0, 0, 0, 255, 0, 0}, ClassRGB, 1, 1, true},
		{"rgb16", []byte{0x12, 0x34, 0x12, 0x36, 0x12, 0x32}, ClassRGB, 2, 1, true},
		{"rgb16_color", []byte{0x12, 0x34, 0x13, 0x34, 0x12, 0x34}, ClassRGB, 2, 1, false},
		{"cmyk_black", []byte{0, 0, 0, 255}, ClassCMYK, 1, 1, true},
		{"cmyk_cyan", []byte{255, 0, 0, 0}, ClassCMYK, 1, 1, false},
		{"lab_gray", []byte{50, 0x80, 0x7e}, ClassLab, 1, 1, true},
		{"lab_red", []byte{50, 0xc0, 0x80}, ClassLab, 1, 1, false},
		{"lab16_gray", []byte{0x40, 0, 0x80, 0x02, 0x7f, 0xfe}, ClassLab, 2, 1, true},
		{"other", []byte{0, 0, 0}, ClassOther, 1, 1, false},
		{"short_row", []byte{0, 0}, ClassRGB, 1, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsRowNeutral(tc.row, tc.class, tc.size, tc.pixels)
			if got != tc.want {
				t.Errorf("got %t, want %t", got, tc.want)
			}
		})
	}
}

func TestPaletteHasColor(t *testing.T) {
	rgb := &ColorSpace{Family: color.FamilyDeviceRGB}
	gray := &ColorSpace{Family: color.FamilyDeviceGray}

	cases := []struct {
		name string
		cs   *ColorSpace
		bps  int
		want bool
	}{
		{"gray_palette", &ColorSpace{
			Family: color.FamilyIndexed, Base: rgb, HiVal: 1,
			Lookup: []byte{0, 0, 0, 255, 255, 255},
		}, 8, false},
		{"red_entry", &ColorSpace{
			Family: color.FamilyIndexed, Base: rgb, HiVal: 1,
			Lookup: []byte{0, 0, 0, 255, 0, 0},
		}, 8, true},
		{"red_entry_unreachable", &ColorSpace{
			Family: color.FamilyIndexed, Base: rgb, HiVal: 2,
			Lookup: []byte{0, 0, 0, 9, 9, 9, 255, 0, 0},
		}, 1, false},
		{"short_lookup", &ColorSpace{
			Family: color.FamilyIndexed, Base: rgb, HiVal: 3,
			Lookup: []byte{0, 0, 0},
		}, 8, true},
		{"gray_base", &ColorSpace{
			Family: color.FamilyIndexed, Base: gray, HiVal: 1,
			Lookup: []byte{0, 255},
		}, 8, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := paletteHasColor(tc.cs, tc.bps); got != tc.want {
				t.Errorf("got %t, want %t", got, tc.want)
			}
		})
	}
}

// rgbImage returns an RGB image with gray pixels, except for pixel (cx, cy)
// which is red if cx is not negative.  Components have bps bits, with
// bps being 8 or 16.
func rgbImage(width, height, bps, cx, cy int) []byte {
	size := bps / 8
	data := make([]byte, width*height*3*size)
	for y := range height {
		for x := range width {
			v := byte(x + 5*y)
			for c := range 3 * size {
				data[((y*width+x)*3)*size+c] = v
			}
			if x == cx && y == cy {
				data[((y*width+x)*3)*size] = 255
			}
		}
	}
	return data
}

func TestNeutralMonitor(t *testing.T) {
	cases := []struct {
		name    string
		bps     int
		cx, cy  int
		neutral bool
	}{
		{"gray8", 8, -1, 0, true},
		{"color8", 8, 10, 30, false},
		{"gray16", 16, -1, 0, true},
		{"color16", 16, 49, 49, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWriter(t, Config{DetectNeutralPage: true})
			req := &ImageRequest{
				Width:            50,
				Height:           50,
				BitsPerComponent: tc.bps,
				ColorSpace:       deviceRGB,
				Matrix:           matrix.Identity,
			}
			raster := 50 * 3 * tc.bps / 8
			data := rgbImage(50, 50, tc.bps, tc.cx, tc.cy)
			s := sendImage(t, w, req, nil, nil, []Plane{{Data: data, Raster: raster}}, 50, 10)

			if w.PageNeutral() != tc.neutral || s.Monitoring() != tc.neutral {
				t.Errorf("neutral %t, monitoring %t, want %t",
					w.PageNeutral(), s.Monitoring(), tc.neutral)
			}

			// once colour is found, the page stays coloured
			sendImage(t, w, grayRequest(50, 50, matrix.Identity), nil, nil,
				[]Plane{{Data: makeGray(50, 50), Raster: 50}}, 50, 50)
			page, err := w.EndPage()
			if err != nil {
				t.Fatal(err)
			}
			if page.Neutral != tc.neutral {
				t.Errorf("page neutral %t, want %t", page.Neutral, tc.neutral)
			}
		})
	}
}

func TestNeutralMonitorPlanar(t *testing.T) {
	for _, colored := range []bool{false, true} {
		w := newTestWriter(t, Config{DetectNeutralPage: true})
		req := &ImageRequest{
			Width:            20,
			Height:           20,
			BitsPerComponent: 8,
			ColorSpace:       deviceRGB,
			PlaneDepths:      []int{8, 8, 8},
			Matrix:           matrix.Identity,
		}
		gray := makeGray(20, 20)
		planes := []Plane{
			{Data: gray, Raster: 20},
			{Data: gray, Raster: 20},
			{Data: gray, Raster: 20},
		}
		if colored {
			blue := makeGray(20, 20)
			blue[15*20+7] += 100
			planes[2].Data = blue
		}
		sendImage(t, w, req, nil, nil, planes, 20, 20)
		if w.PageNeutral() == colored {
			t.Errorf("colored=%t: page neutral %t", colored, w.PageNeutral())
		}
	}
}

func TestNeutralPalette(t *testing.T) {
	cases := []struct {
		name    string
		lookup  []byte
		neutral bool
	}{
		{"gray", []byte{0, 0, 0, 128, 128, 128}, true},
		{"red", []byte{0, 0, 0, 255, 0, 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWriter(t, Config{DetectNeutralPage: true})
			cs := &ColorSpace{Family: color.FamilyIndexed, Base: deviceRGB, HiVal: 1, Lookup: tc.lookup, ID: 3}
			req := &ImageRequest{
				Width:            8,
				Height:           8,
				BitsPerComponent: 1,
				ColorSpace:       cs,
				Matrix:           matrix.Identity,
			}
			s, d, err := w.BeginImage(req, nil, nil)
			if err != nil || d != Proceed {
				t.Fatal(d, err)
			}
			// the palette is checked once, before any data arrives
			if w.PageNeutral() != tc.neutral || s.Monitoring() {
				t.Errorf("neutral %t, monitoring %t", w.PageNeutral(), s.Monitoring())
			}
			if err := s.End(false); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestNeutralDisabled(t *testing.T) {
	w := newTestWriter(t, Config{})
	if w.PageNeutral() {
		t.Error("page reported neutral without detection")
	}
	req := &ImageRequest{
		Width:            4,
		Height:           4,
		BitsPerComponent: 8,
		ColorSpace:       deviceRGB,
		Matrix:           matrix.Identity,
	}
	s := sendImage(t, w, req, nil, nil, []Plane{{Data: rgbImage(4, 4, 8, -1, 0), Raster: 12}}, 4, 4)
	if s.Monitoring() {
		t.Error("image monitored without detection")
	}
}
