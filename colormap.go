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
	"math"

	"seehuhn.de/go/pdf/function"
)

// TransferFunc maps a colour value in [0, 1] to a new value in [0, 1].
// Functions from seehuhn.de/go/pdf/function can be used directly.
type TransferFunc interface {
	Apply(inputs ...float64) []float64
}

// TransferMap is a transfer, black generation or undercolour removal
// function together with an identifier.  Maps with equal IDs must be
// equal.
type TransferMap struct {
	ID uint64

	// F is the function.  A nil function means that no map is used.
	F TransferFunc
}

// mapSlot identifies which colour map a BlobTransfer blob replaces.
type mapSlot byte

const (
	slotBlackGeneration mapSlot = iota
	slotUnderColorRemoval
	slotTransferDefault // gray, and all channels
	slotTransfer0       // red, green, blue, gray follow
)

// mapEncoding selects how the values of a map are sent.
type mapEncoding byte

const (
	mapNone mapEncoding = iota
	mapIdentity
	mapSampled
)

// isIdentity reports whether f is the linear function from 0 to 1.
func isIdentity(f TransferFunc) bool {
	t, ok := f.(*function.Type2)
	if !ok || t.XMin != 0 || t.XMax != 1 || t.N != 1 {
		return false
	}
	if len(t.C0) != 1 || len(t.C1) != 1 || t.C0[0] != 0 || t.C1[0] != 1 {
		return false
	}
	return t.Range == nil || len(t.Range) == 2 && t.Range[0] <= 0 && t.Range[1] >= 1
}

// colorMapBlob is the serialized form of one colour map.
type colorMapBlob struct {
	slot mapSlot
	m    *TransferMap
}

func (b colorMapBlob) EncodeBlob(e *BlobEncoder) {
	e.Byte(byte(b.slot))
	switch {
	case b.m == nil || b.m.F == nil:
		e.Byte(byte(mapNone))
	case isIdentity(b.m.F):
		e.Byte(byte(mapIdentity))
	default:
		e.Byte(byte(mapSampled))
		for _, v := range sampleMap(b.m.F) {
			e.Uint16(v)
		}
	}
}

// sampleMap evaluates f at mapSamples equally spaced points.
func sampleMap(f TransferFunc) [mapSamples]uint16 {
	var res [mapSamples]uint16
	for i := range res {
		out := f.Apply(float64(i) / (mapSamples - 1))
		v := 0.0
		if len(out) > 0 {
			v = out[0]
		}
		if math.IsNaN(v) {
			v = 0
		}
		res[i] = uint16(math.Round(min(max(v, 0), 1) * 65535))
	}
	return res
}

func mapID(m *TransferMap) uint64 {
	if m == nil {
		return 0
	}
	return m.ID
}

// putColorMap sends m for slot to all bands, unless *last shows that the
// bands have it already.  Before the first colour mapping of a page, all
// maps are sent.
func (w *Writer) putColorMap(slot mapSlot, m *TransferMap, last *uint64) error {
	id := mapID(m)
	if w.colorMapKnown && id == *last {
		return nil
	}
	if err := w.putBlob(BlobTransfer, colorMapBlob{slot: slot, m: m}); err != nil {
		return err
	}
	*last = id
	return nil
}

// putColorMapping brings halftone, black generation, undercolour removal
// and transfer functions of all bands up to date with gs.
func (w *Writer) putColorMapping(gs *GState) error {
	if ht := gs.Halftone; ht != nil && ht.ID != w.halftoneID {
		if err := w.putBlob(BlobHalftone, ht); err != nil {
			return err
		}
		w.halftoneID = ht.ID
	}

	if err := w.putColorMap(slotBlackGeneration, gs.BlackGeneration, &w.blackGenID); err != nil {
		return err
	}
	if err := w.putColorMap(slotUnderColorRemoval, gs.UnderColorRemoval, &w.ucrID); err != nil {
		return err
	}

	// Transfer functions.  Channels without their own function use the
	// gray one.
	gray := gs.Transfer[3]
	defaultID := mapID(gray)
	var ids [4]uint64
	var maps [4]*TransferMap
	for i, m := range gs.Transfer {
		if m == nil {
			m = gray
		}
		maps[i], ids[i] = m, mapID(m)
	}
	changed := false
	sendDefault := false
	for i := range ids {
		if ids[i] != w.transferIDs[i] {
			changed = true
			if ids[i] == defaultID {
				sendDefault = true
			}
		}
	}
	if !changed {
		w.colorMapKnown = true
		return nil
	}
	if sendDefault {
		if err := w.putBlob(BlobTransfer, colorMapBlob{slot: slotTransferDefault, m: gray}); err != nil {
			return err
		}
		// the default replaces all channels
		for i := range w.transferIDs {
			w.transferIDs[i] = defaultID
		}
	}
	for i := range ids {
		if w.transferIDs[i] != ids[i] {
			err := w.putBlob(BlobTransfer, colorMapBlob{slot: slotTransfer0 + mapSlot(i), m: maps[i]})
			if err != nil {
				return err
			}
			w.transferIDs[i] = ids[i]
		}
	}
	w.colorMapKnown = true
	return nil
}

// mapSamples is the number of values sent for a sampled colour map.
const mapSamples = 256
