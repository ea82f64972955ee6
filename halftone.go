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

// Halftone is a device halftone given by threshold arrays.
type Halftone struct {
	// ID identifies the halftone.  Halftones with equal IDs must be equal.
	ID uint64

	Components []HalftoneComponent
}

// HalftoneComponent is the threshold array for one colorant.
type HalftoneComponent struct {
	Colorant      string
	Width, Height int

	// Thresholds holds Width*Height threshold values, row by row.
	Thresholds []byte

	// Transfer is an optional transfer function applied before
	// thresholding.
	Transfer TransferFunc
}

// EncodeBlob implements the Blob interface.
func (h *Halftone) EncodeBlob(e *BlobEncoder) {
	e.Uvarint(h.ID)
	e.Uvarint(uint64(len(h.Components)))
	for i := range h.Components {
		c := &h.Components[i]
		e.String(c.Colorant)
		e.Uvarint(uint64(c.Width))
		e.Uvarint(uint64(c.Height))
		e.Uvarint(uint64(len(c.Thresholds)))
		e.Bytes(c.Thresholds)
		if c.Transfer == nil {
			e.Byte(byte(mapNone))
			continue
		}
		e.Byte(byte(mapSampled))
		for _, v := range sampleMap(c.Transfer) {
			e.Uint16(v)
		}
	}
}
