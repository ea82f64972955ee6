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


package testcases

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

var clipCases = []TestCase{
	{
		Name:       "clip_inside",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(100, 100),
		CTM:        matrix.Translate(14, 14),
		Clip:       rect.Rect{LLx: 40, LLy: 40, URx: 80, URy: 90},
	},
	{
		Name:       "clip_fractional",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(30, 30),
		CTM:        matrix.Scale(3, 3).Translate(10, 10),
		Clip:       rect.Rect{LLx: 20.25, LLy: 33.5, URx: 70.75, URy: 64.125},
	},
	{
		Name:       "clip_rotated",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(40, 40),
		CTM:        matrix.Scale(2, 2).RotateDeg(30).Translate(60, 0),
		Clip:       rect.Rect{LLx: 0, LLy: 50, URx: 128, URy: 70},
	},
	{
		Name:       "clip_disjoint",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(20, 20),
		CTM:        matrix.Translate(10, 10),
		Clip:       rect.Rect{LLx: 60, LLy: 60, URx: 100, URy: 100},
	},
	{
		Name:       "clip_support",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(32, 32),
		CTM:        matrix.Scale(3, 3).Translate(16, 16),
		Clip:       rect.Rect{LLx: 30, LLy: 30, URx: 90, URy: 90},
		Support:    4,
	},
}
