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

// IsRowNeutral reports whether the first pixelCount pixels of an unpacked
// row are gray, or close to gray.  componentSize is 1 for rows with one
// byte per component, and 2 for rows with big-endian 16-bit components.
//
// RGB and CMYK pixels are neutral if their first three components are
// nearly equal, Lab pixels if a* and b* are nearly zero.  Gray rows are
// always neutral; rows of any other class never are.
func IsRowNeutral(row []byte, class ColorClass, componentSize, pixelCount int) bool {
	var n int
	switch class {
	case ClassGray:
		return true
	case ClassRGB, ClassLab:
		n = 3
	case ClassCMYK:
		n = 4
	default:
		return false
	}
	stride := n * componentSize
	if pixelCount*stride > len(row) {
		return false
	}
	for i := range pixelCount {
		if !isPixelNeutral(row[i*stride:], class, componentSize) {
			return false
		}
	}
	return true
}

func isPixelNeutral(px []byte, class ColorClass, size int) bool {
	c0 := sampleAt(px, 0, size)
	c1 := sampleAt(px, 1, size)
	c2 := sampleAt(px, 2, size)
	switch class {
	case ClassRGB, ClassCMYK:
		return absInt(c0-c1) < neutralThreshold &&
			absInt(c0-c2) < neutralThreshold &&
			absInt(c1-c2) < neutralThreshold
	case ClassLab:
		mid := 0x80
		if size == 2 {
			mid = 0x8000
		}
		return absInt(c1-mid) < neutralThreshold && absInt(c2-mid) < neutralThreshold
	case ClassGray:
		return true
	}
	return false
}

func sampleAt(px []byte, i, size int) int {
	if size == 2 {
		return int(px[2*i])<<8 | int(px[2*i+1])
	}
	return int(px[i])
}

// paletteHasColor reports whether any of the first 2^bps entries of the
// Indexed colour space cs is not neutral.
func paletteHasColor(cs *ColorSpace, bps int) bool {
	class := cs.Class()
	if class == ClassGray {
		return false
	}
	n := min(1<<bps, cs.HiVal+1)
	for k := range n {
		entry, err := cs.paletteEntry(k)
		if err != nil || len(entry) < 3 || !isPixelNeutral(entry, class, 1) {
			return true
		}
	}
	return false
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// neutralThreshold is the largest difference between components of a
// pixel, plus one, for which the pixel still counts as neutral.  The same
// value is used for 8-bit and 16-bit components.
const neutralThreshold = 5
