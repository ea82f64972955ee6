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
)

// edgeCases place images partly outside the page, or close to band
// boundaries.
var edgeCases = []TestCase{
	{
		Name:       "off_top",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(50, 50),
		CTM:        matrix.Translate(20, -30),
	},
	{
		Name:       "off_bottom_right",
		Width:      128,
		Height:     100,
		BandHeight: 16,
		Image:      img(60, 60),
		CTM:        matrix.RotateDeg(20).Translate(90, 70),
	},
	{
		Name:       "band_aligned",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(16, 16),
		CTM:        matrix.Scale(2, 2).Translate(0, 32),
	},
	{
		Name:       "subpixel_rows",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(8, 200),
		CTM:        matrix.Scale(10, 0.3).Translate(30, 31.7),
	},
	{
		Name:       "single_pixel",
		Width:      64,
		Height:     64,
		BandHeight: 8,
		Image:      img(1, 1),
		CTM:        matrix.Scale(37, 21).Translate(13, 5),
	},
	{
		Name:       "support_at_border",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(20, 20),
		CTM:        matrix.Scale(6, 6).Translate(4, 4),
		Support:    4,
	},
	{
		Name:       "sub_rectangle",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      rectFrom(10, 20, 60, 50),
		CTM:        matrix.Translate(20, 10),
	},
}
