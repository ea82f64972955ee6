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

import "fmt"

// CropOp tells which bands a compositor applies to.
type CropOp int

// Cropping operations.
const (
	// AllBands applies the compositor to the whole page.
	AllBands CropOp = iota

	// PushCrop applies the compositor to the requested scanlines and
	// narrows the cropping range to them until the matching PopCrop.
	PushCrop

	// PopCrop applies the compositor to the current cropping range and
	// then restores the previous range.
	PopCrop

	// SameAsPushNoPush applies the compositor to the requested scanlines
	// within the cropping range, without changing the range.
	SameAsPushNoPush

	// CurrentBands applies the compositor to the current cropping range.
	CurrentBands
)

func (op CropOp) String() string {
	switch op {
	case AllBands:
		return "AllBands"
	case PushCrop:
		return "PushCrop"
	case PopCrop:
		return "PopCrop"
	case SameAsPushNoPush:
		return "SameAsPushNoPush"
	case CurrentBands:
		return "CurrentBands"
	}
	return fmt.Sprintf("CropOp(%d)", int(op))
}

// Compositor is a device-side compositing stage, for example for
// transparency or overprint simulation.
type Compositor interface {
	// EncodeBlob writes the parameters of the compositor.
	Blob

	// CompositorID identifies the type of the compositor.
	CompositorID() byte

	// Cropping decides which scanlines the compositor applies to, given
	// the current cropping range.  For PushCrop and SameAsPushNoPush the
	// range is given by y and height.
	Cropping(cropMin, cropMax int) (op CropOp, y, height int, err error)
}

// SelectRange resolves the band range of a compositor.  The bands first
// to last (inclusive) are affected.  If the range spans more than two
// thirds of the page, AllBands is returned instead of op.
func SelectRange(op CropOp, y, height, cropMin, cropMax, bandHeight, numBands int) (CropOp, int, int) {
	first, last := 0, numBands-1
	switch op {
	case PushCrop, SameAsPushNoPush:
		first = floorDiv(y, bandHeight)
		last = floorDiv(y+height-1, bandHeight)
	case PopCrop, CurrentBands:
		first = floorDiv(cropMin, bandHeight)
		last = floorDiv(cropMax-1, bandHeight)
	}
	if last-first > numBands*2/3 {
		op = AllBands
	}
	return op, first, last
}

// CreateCompositor records the creation of a compositor in the bands it
// applies to.
func (w *Writer) CreateCompositor(c Compositor) error {
	if w.err != nil {
		return w.err
	}

	op, y, height, err := c.Cropping(w.cropMin, w.cropMax)
	if err != nil {
		return err
	}
	op, first, last := SelectRange(op, y, height, w.cropMin, w.cropMax, w.cfg.BandHeight, len(w.bands))
	Logger().Debug("compositor", "id", c.CompositorID(), "op", op, "first", first, "last", last)

	e := &BlobEncoder{buf: make([]byte, 1+blobSize(c))}
	e.Byte(c.CompositorID())
	c.EncodeBlob(e)
	payload := e.buf

	if op == AllBands {
		return w.putAll(OpCompositor, payload)
	}

	if op == PushCrop {
		w.cropStack = append(w.cropStack, cropRange{w.cropMin, w.cropMax})
		w.cropMin = max(w.cropMin, y)
		w.cropMax = min(w.cropMax, y+height)
	}
	lo, hi := w.cropMin, w.cropMax
	if op == SameAsPushNoPush {
		lo = max(lo, y)
		hi = min(hi, y+height)
	}
	if lo < hi {
		bFirst, bLast := w.bandRange(lo, hi)
		for band := bFirst; band <= bLast; band++ {
			if err := w.put(band, OpCompositor, payload); err != nil {
				return err
			}
		}
	}
	if op == PopCrop {
		n := len(w.cropStack)
		if n == 0 {
			return w.fail(ErrCropStack)
		}
		w.cropMin, w.cropMax = w.cropStack[n-1].min, w.cropStack[n-1].max
		w.cropStack = w.cropStack[:n-1]
	}
	return nil
}

// CropRange returns the current cropping range of the page.
func (w *Writer) CropRange() (cropMin, cropMax int) {
	return w.cropMin, w.cropMax
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
