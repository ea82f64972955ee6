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

import "math"

// UnpackFunc converts packed samples from src into one byte (for up to 8
// bits per component) or two big-endian bytes (for more than 8 bits per
// component) per component, using dst as the output buffer.
type UnpackFunc func(dst, src []byte, dm *DecodeMap) []byte

// DecodeMap describes the samples passed to an UnpackFunc.
type DecodeMap struct {
	// BitsPerComponent is 1, 2, 4, 8, 12 or 16.
	BitsPerComponent int

	// NumComponents is the number of components in each pixel of src.
	NumComponents int

	// FirstComponent is the index of the first component of src within the
	// pixels of the image.  This is non-zero for planes of planar images.
	FirstComponent int

	// Decode holds a pair of values for each component of src, mapping the
	// smallest and largest sample value.  If Decode is nil, the default for
	// Class is used.
	Decode []float64

	// Class is the colour model of the decoded values.
	Class ColorClass

	// Skip is the number of pixels to skip at the start of src, Pixels the
	// number of pixels to convert.
	Skip, Pixels int
}

// Unpack is the default UnpackFunc.
func Unpack(dst, src []byte, dm *DecodeMap) []byte {
	bps := dm.BitsPerComponent
	ncomp := dm.NumComponents
	maxSample := float64(uint32(1)<<bps - 1)
	wide := bps > 8
	outMax := 255.0
	if wide {
		outMax = 65535
	}

	dst = dst[:0]
	bit := dm.Skip * ncomp * bps
	for range dm.Pixels {
		for j := range ncomp {
			if (bit+bps+7)/8 > len(src) {
				return dst
			}
			s := readBits(src, bit, bps)
			bit += bps

			k := dm.FirstComponent + j
			d0, d1 := decodeRange(dm, k)
			v := d0 + (d1-d0)*float64(s)/maxSample

			var frac float64
			switch {
			case dm.Class == ClassLab && k == 0:
				frac = v / 100
			case dm.Class == ClassLab:
				// a* and b* are stored around the mid value
				unit := 1.0
				if wide {
					unit = 256
				}
				frac = (outMax/2 + 0.5 + v*unit) / outMax
			default:
				frac = v
			}
			out := math.Round(min(max(frac, 0), 1) * outMax)
			if u := uint16(out); wide {
				dst = append(dst, byte(u>>8), byte(u))
			} else {
				dst = append(dst, byte(u))
			}
		}
	}
	return dst
}

// decodeRange returns the decode pair for image component k.
func decodeRange(dm *DecodeMap, k int) (float64, float64) {
	if 2*(k-dm.FirstComponent)+1 < len(dm.Decode) {
		i := 2 * (k - dm.FirstComponent)
		return dm.Decode[i], dm.Decode[i+1]
	}
	if dm.Class == ClassLab {
		if k == 0 {
			return 0, 100
		}
		return -128, 127
	}
	return 0, 1
}

// readBits reads n bits, most significant first, starting at bit offset
// pos of buf.
func readBits(buf []byte, pos, n int) uint32 {
	var v uint32
	for n > 0 {
		b := uint32(buf[pos>>3])
		avail := 8 - pos&7
		take := min(avail, n)
		shift := avail - take
		v = v<<take | (b>>shift)&(1<<take-1)
		pos += take
		n -= take
	}
	return v
}
