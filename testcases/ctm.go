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

var ctmCases = []TestCase{
	// ========================================
	// Axis aligned placements
	// ========================================
	{
		Name:       "identity",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(64, 64),
		CTM:        matrix.Identity.Translate(32, 32),
	},
	{
		Name:       "scale_up",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(10, 10),
		CTM:        matrix.Scale(9.5, 9.5).Translate(12, 12),
	},
	{
		Name:       "scale_down",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(400, 300),
		CTM:        matrix.Scale(0.25, 0.25).Translate(10, 20),
	},
	{
		Name:       "anisotropic",
		Width:      128,
		Height:     128,
		BandHeight: 8,
		Image:      img(16, 100),
		CTM:        matrix.Scale(7, 1.1).Translate(4, 6),
	},
	{
		Name:       "flip_y",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(50, 50),
		CTM:        matrix.Matrix{2, 0, 0, -2, 14, 114},
	},
	{
		Name:       "flip_x",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(50, 50),
		CTM:        matrix.Matrix{-2, 0, 0, 2, 114, 14},
	},

	// ========================================
	// Rotations
	// ========================================
	{
		Name:       "rotate_90",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(60, 30),
		CTM:        matrix.RotateDeg(90).Translate(90, 20),
	},
	{
		Name:       "rotate_45",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(40, 40),
		CTM:        matrix.Scale(2, 2).RotateDeg(45).Translate(64, 8),
	},
	{
		Name:       "rotate_5",
		Width:      128,
		Height:     128,
		BandHeight: 4,
		Image:      img(100, 20),
		CTM:        matrix.RotateDeg(5).Translate(10, 40),
	},
	{
		Name:       "rotate_185",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(100, 20),
		CTM:        matrix.RotateDeg(185).Translate(115, 80),
	},

	// ========================================
	// Skew
	// ========================================
	{
		Name:       "skew_x",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(50, 50),
		CTM:        matrix.Matrix{1, 0, 0.5, 1, 20, 30},
	},
	{
		Name:       "skew_y",
		Width:      128,
		Height:     128,
		BandHeight: 16,
		Image:      img(50, 50),
		CTM:        matrix.Matrix{1, 0.5, 0, 1, 30, 20},
	},
	{
		Name:       "skew_rotate",
		Width:      128,
		Height:     128,
		BandHeight: 10,
		Image:      img(40, 30),
		CTM:        matrix.Matrix{1.5, 0, 0.4, 1.5, 0, 0}.RotateDeg(30).Translate(60, 10),
	},
}
