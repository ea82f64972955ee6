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
	"encoding/json"
	"maps"
	"os"
	"slices"

	"seehuhn.de/go/bandlist"
	"seehuhn.de/go/bandlist/testcases"
)

func main() {
	var out struct {
		TestCases []jsonTestCase `json:"testcases"`
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			out.TestCases = append(out.TestCases, toJSON(category, &tc))
		}
	}

	if err := os.MkdirAll("testdata", 0755); err != nil {
		panic(err)
	}
	f, err := os.Create("testdata/bandboxes.json")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

type jsonTestCase struct {
	Name       string     `json:"name"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	BandHeight int        `json:"band_height"`
	Image      [4]int     `json:"image"`
	CTM        [6]float64 `json:"ctm"`
	Clip       [4]float64 `json:"clip"`
	Support    int        `json:"support,omitempty"`
	Bands      []jsonBand `json:"bands"`
}

type jsonBand struct {
	Y   int    `json:"y"`
	Box [4]int `json:"box"`
}

func toJSON(category string, tc *testcases.TestCase) jsonTestCase {
	clip := tc.DeviceClip()
	jtc := jsonTestCase{
		Name:       category + "_" + tc.Name,
		Width:      tc.Width,
		Height:     tc.Height,
		BandHeight: tc.BandHeight,
		Image:      [4]int{tc.Image.XMin, tc.Image.YMin, tc.Image.XMax, tc.Image.YMax},
		CTM:        [6]float64(tc.CTM),
		Clip: [4]float64{
			float64(clip.Min.X) / 64, float64(clip.Min.Y) / 64,
			float64(clip.Max.X) / 64, float64(clip.Max.Y) / 64,
		},
		Support: tc.Support,
	}

	// bands which the image does not reach are omitted
	for i := range tc.NumBands() {
		band := bandlist.Band{Y: i * tc.BandHeight, Height: tc.BandHeight}
		box, ok := bandlist.BandBox(tc.Image, tc.CTM, clip, band, tc.Support)
		if !ok {
			continue
		}
		jtc.Bands = append(jtc.Bands, jsonBand{
			Y:   band.Y,
			Box: [4]int{box.XMin, box.YMin, box.XMax, box.YMax},
		})
	}
	return jtc
}
