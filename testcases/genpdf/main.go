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


package main

import (
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/bandlist"
	"seehuhn.de/go/bandlist/testcases"
)

const outDir = "testdata/visual"

var (
	bandShade  = color.DeviceGray(0.93)
	imageColor = color.DeviceRGB{0.75, 0.85, 1}
	boxColor   = color.DeviceRGB{0.85, 0.1, 0.1}
	clipColor  = color.DeviceRGB{0.1, 0.6, 0.1}
)

func main() {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		panic(err)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			pdfPath := filepath.Join(outDir, name+".pdf")
			if err := generatePDF(&tc, pdfPath); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
		}
	}
}

// generatePDF draws the bands of the page, the image and, for every band,
// the band box mapped back to device space.
func generatePDF(tc *testcases.TestCase, pdfPath string) error {
	paper := &pdf.Rectangle{
		URx: float64(tc.Width),
		URy: float64(tc.Height),
	}
	page, err := document.CreateSinglePage(pdfPath, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// device space has the origin at the top left
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, float64(tc.Height)})

	page.SetFillColor(bandShade)
	for i := 0; i < tc.NumBands(); i += 2 {
		page.Rectangle(0, float64(i*tc.BandHeight), float64(tc.Width), float64(tc.BandHeight))
	}
	page.Fill()

	lw := 0.5 / math.Sqrt(math.Abs(tc.CTM[0]*tc.CTM[3]-tc.CTM[1]*tc.CTM[2]))

	page.PushGraphicsState()
	page.Transform(tc.CTM)
	page.SetFillColor(imageColor)
	r := tc.Image
	page.Rectangle(float64(r.XMin), float64(r.YMin), float64(r.XMax-r.XMin), float64(r.YMax-r.YMin))
	page.Fill()

	clip := tc.DeviceClip()
	page.SetStrokeColor(boxColor)
	page.SetLineWidth(lw)
	for i := range tc.NumBands() {
		band := bandlist.Band{Y: i * tc.BandHeight, Height: tc.BandHeight}
		box, ok := bandlist.BandBox(tc.Image, tc.CTM, clip, band, tc.Support)
		if !ok {
			continue
		}
		page.Rectangle(float64(box.XMin), float64(box.YMin),
			float64(box.XMax-box.XMin), float64(box.YMax-box.YMin))
	}
	page.Stroke()
	page.PopGraphicsState()

	page.SetStrokeColor(clipColor)
	page.SetLineWidth(0.5)
	x0, y0 := float64(clip.Min.X)/64, float64(clip.Min.Y)/64
	x1, y1 := float64(clip.Max.X)/64, float64(clip.Max.Y)/64
	page.Rectangle(x0, y0, x1-x0, y1-y0)
	page.Stroke()

	return page.Close()
}
