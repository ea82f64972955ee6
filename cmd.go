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
	"fmt"
	"math"
	"slices"
)

// Opcode identifies a band-list command.
//
// On the wire, every command is the opcode byte, followed by the payload
// length as an unsigned varint, followed by the payload.  A reader can
// therefore skip any command without understanding it.
type Opcode byte

// Band-list commands.
const (
	OpSetCTM          Opcode = iota + 1 // 6 float32 matrix entries
	OpSetColorSpace                     // family, components, id, ICC hash
	OpSetClip                           // clip id, outer box
	OpEnableClip                        // 0 or 1
	OpSetBlendState                     // overprint, blend mode, knockout, intent
	OpSetAlpha                          // opacity, shape and fill alpha
	OpSetLop                            // logical operation
	OpSetColor                          // pure drawing colour
	OpDefineTile                        // tile id, size, bits; cached
	OpTileRef                           // tile id
	OpTileCopy                          // size, bits; not cached
	OpBeginImage                        // image preimage
	OpBeginImageRect                    // image preimage, sub-rectangle
	OpSetDataX                          // leading pixels to skip in each row
	OpImageData                         // rows, bytes per plane, packed rows
	OpEndImage                          // end of the current image
	OpBlobWhole                         // blob kind, data
	OpBlobHeader                        // blob kind, total length
	OpBlobSegment                       // blob kind, data
	OpCompositor                        // compositor id, parameters

	opLimit
)

var opcodeNames = [...]string{
	OpSetCTM:         "SetCTM",
	OpSetColorSpace:  "SetColorSpace",
	OpSetClip:        "SetClip",
	OpEnableClip:     "EnableClip",
	OpSetBlendState:  "SetBlendState",
	OpSetAlpha:       "SetAlpha",
	OpSetLop:         "SetLop",
	OpSetColor:       "SetColor",
	OpDefineTile:     "DefineTile",
	OpTileRef:        "TileRef",
	OpTileCopy:       "TileCopy",
	OpBeginImage:     "BeginImage",
	OpBeginImageRect: "BeginImageRect",
	OpSetDataX:       "SetDataX",
	OpImageData:      "ImageData",
	OpEndImage:       "EndImage",
	OpBlobWhole:      "BlobWhole",
	OpBlobHeader:     "BlobHeader",
	OpBlobSegment:    "BlobSegment",
	OpCompositor:     "Compositor",
}

func (op Opcode) String() string {
	if op > 0 && op < opLimit {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// BlobKind identifies the contents of a blob sent by OpBlobWhole,
// OpBlobHeader and OpBlobSegment.
type BlobKind byte

// Blob kinds.
const (
	BlobHalftone BlobKind = iota + 1
	BlobTransfer
)

// maxCmdHeader is an upper bound for the opcode and length prefix of a
// command plus the row count and bytes-per-plane fields of an image data
// command.
const maxCmdHeader = 1 + binary.MaxVarintLen32 + 2*binary.MaxVarintLen32

// cursor is a bounds-checked writer into a fixed region of memory.
type cursor struct {
	buf []byte
	pos int
}

// reserve returns the next n bytes of the region and advances the cursor.
func (c *cursor) reserve(n int) ([]byte, error) {
	if n < 0 || n > len(c.buf)-c.pos {
		return nil, fmt.Errorf("%w: %d bytes requested, %d left",
			ErrRangeCheck, n, len(c.buf)-c.pos)
	}
	span := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return span, nil
}

func (c *cursor) putByte(b byte) error {
	span, err := c.reserve(1)
	if err != nil {
		return err
	}
	span[0] = b
	return nil
}

func (c *cursor) putBytes(b []byte) error {
	span, err := c.reserve(len(b))
	if err != nil {
		return err
	}
	copy(span, b)
	return nil
}

func (c *cursor) putUvarint(v uint64) error {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return c.putBytes(tmp[:n])
}

func (c *cursor) putVarint(v int64) error {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	return c.putBytes(tmp[:n])
}

func (c *cursor) putFloat32(f float64) error {
	span, err := c.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(span, math.Float32bits(float32(f)))
	return nil
}

// bytes returns the data written so far.
func (c *cursor) bytes() []byte {
	return c.buf[:c.pos]
}

// sizeUvarint returns the number of bytes used to encode v as a varint.
func sizeUvarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// appendCommand appends a complete command to dst and returns the
// extended slice together with the payload region inside it.
func appendCommand(dst []byte, op Opcode, size int) (out, payload []byte) {
	dst = append(dst, byte(op))
	dst = binary.AppendUvarint(dst, uint64(size))
	start := len(dst)
	dst = slices.Grow(dst, size)[:start+size]
	payload = dst[start : start+size : start+size]
	clear(payload)
	return dst, payload
}
