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
	"encoding/binary"
	"errors"
)

// ColorKind distinguishes the drawing colours of masked images.
type ColorKind int

// Drawing colour kinds.  Images using ColorOther are not stored in the
// band list.
const (
	ColorPure ColorKind = iota
	ColorPattern
	ColorOther
)

// DrawingColor is the colour used to paint masked images.
type DrawingColor struct {
	Kind ColorKind

	// Pure is the device colour index for ColorPure.
	Pure uint64

	// Tile is the pattern tile for ColorPattern.
	Tile *Tile
}

// Tile is a pattern tile, stored as packed device pixels.
type Tile struct {
	ID            uint64
	Width, Height int
	Bits          []byte
}

// tileCache keeps track of tiles defined in the band list.  A tile is
// defined in each band the first time it is used there.
type tileCache struct {
	limit, used int
	entries     map[uint64]*tileEntry
}

type tileEntry struct {
	size  int
	bands map[int]bool
}

// writeTile sends t to band, as a reference if the band knows the tile,
// as a cached definition if there is room in the cache, and as an
// uncached copy otherwise.
func (w *Writer) writeTile(band int, t *Tile) error {
	tc := &w.tiles
	if tc.entries == nil {
		tc.entries = make(map[uint64]*tileEntry)
	}

	e := tc.entries[t.ID]
	if e != nil && e.bands[band] {
		var buf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(buf[:], t.ID)
		return w.put(band, OpTileRef, buf[:n])
	}

	size := len(t.Bits)
	if e == nil && tc.used+size <= tc.limit {
		e = &tileEntry{size: size, bands: make(map[int]bool)}
		tc.entries[t.ID] = e
		tc.used += size
	}
	if e != nil {
		err := w.putTile(band, OpDefineTile, t)
		if err == nil {
			e.bands[band] = true
			return nil
		}
		if !errors.Is(err, ErrBandListFull) {
			return err
		}
	}

	Logger().Debug("tile not cached", "id", t.ID, "band", band)
	return w.putTile(band, OpTileCopy, t)
}

func (w *Writer) putTile(band int, op Opcode, t *Tile) error {
	size := 4*binary.MaxVarintLen64 + len(t.Bits)
	c := cursor{buf: make([]byte, size)}
	if op == OpDefineTile {
		c.putUvarint(t.ID)
	}
	c.putUvarint(uint64(t.Width))
	c.putUvarint(uint64(t.Height))
	c.putUvarint(uint64(len(t.Bits)))
	c.putBytes(t.Bits)
	return w.put(band, op, c.bytes())
}
