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
)

// Blob is auxiliary data which may be too large for a single command.
type Blob interface {
	// EncodeBlob writes the blob to e.  The method is called twice, once
	// to determine the size and once to write the data, and must write
	// the same bytes both times.
	EncodeBlob(e *BlobEncoder)
}

// BlobEncoder receives the serialized form of a Blob.  In sizing mode it
// only counts bytes.
type BlobEncoder struct {
	buf    []byte
	n      int
	sizing bool
}

// Bytes appends b.
func (e *BlobEncoder) Bytes(b []byte) {
	if !e.sizing {
		copy(e.buf[e.n:], b)
	}
	e.n += len(b)
}

// Byte appends a single byte.
func (e *BlobEncoder) Byte(b byte) {
	if !e.sizing {
		e.buf[e.n] = b
	}
	e.n++
}

// Uvarint appends v as an unsigned varint.
func (e *BlobEncoder) Uvarint(v uint64) {
	if e.sizing {
		e.n += sizeUvarint(v)
		return
	}
	e.n += binary.PutUvarint(e.buf[e.n:], v)
}

// Uint16 appends v in big-endian byte order.
func (e *BlobEncoder) Uint16(v uint16) {
	if !e.sizing {
		binary.BigEndian.PutUint16(e.buf[e.n:], v)
	}
	e.n += 2
}

// String appends the length of s followed by its bytes.
func (e *BlobEncoder) String(s string) {
	e.Uvarint(uint64(len(s)))
	if !e.sizing {
		copy(e.buf[e.n:], s)
	}
	e.n += len(s)
}

// blobSize returns the serialized size of b.
func blobSize(b Blob) int {
	e := &BlobEncoder{sizing: true}
	b.EncodeBlob(e)
	return e.n
}

// Serialize writes a blob as a sequence of commands, passing each payload
// to emit.
//
// A blob of at most maxSegmentSize bytes is sent as one OpBlobWhole
// command.  Larger blobs are sent as an OpBlobHeader command carrying the
// total size, followed by OpBlobSegment commands of at most maxSegmentSize
// bytes of data each.  All payloads start with the blob kind.
//
// If emit fails, the commands already emitted are left in place.  Readers
// discard sequences whose segments do not add up to the declared size.
func Serialize(kind BlobKind, b Blob, maxSegmentSize int, emit func(op Opcode, payload []byte) error) error {
	if maxSegmentSize <= 0 {
		return fmt.Errorf("%w: segment size %d", ErrRangeCheck, maxSegmentSize)
	}
	size := blobSize(b)

	e := &BlobEncoder{buf: make([]byte, 1+size)}
	e.Byte(byte(kind))
	b.EncodeBlob(e)
	if e.n != 1+size {
		return fmt.Errorf("%w: blob size changed from %d to %d", ErrRangeCheck, size, e.n-1)
	}
	data := e.buf[1:]

	if size <= maxSegmentSize {
		return emit(OpBlobWhole, e.buf)
	}

	var hdr [1 + binary.MaxVarintLen64]byte
	hdr[0] = byte(kind)
	n := binary.PutUvarint(hdr[1:], uint64(size))
	if err := emit(OpBlobHeader, hdr[:1+n]); err != nil {
		return err
	}

	seg := make([]byte, 1+maxSegmentSize)
	seg[0] = byte(kind)
	count := 0
	for len(data) > 0 {
		k := min(len(data), maxSegmentSize)
		copy(seg[1:], data[:k])
		if err := emit(OpBlobSegment, seg[:1+k]); err != nil {
			return err
		}
		data = data[k:]
		count++
	}
	Logger().Debug("blob split", "kind", kind, "size", size, "segments", count)
	return nil
}

// maxSegmentSize returns the largest blob segment which fits into one
// command payload.
func (w *Writer) maxSegmentSize() int {
	return w.cfg.BufferSize - maxCmdHeader - 1
}

// putBlob sends a blob to all bands.
func (w *Writer) putBlob(kind BlobKind, b Blob) error {
	return Serialize(kind, b, w.maxSegmentSize(), w.putAll)
}
