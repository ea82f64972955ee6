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
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Store holds the band list of one page: the command streams of all bands.
//
// Commands are kept in an ordered log of blocks.  Each block applies to a
// contiguous range of bands, so that a command sent to all bands is stored
// only once while the per-band order of commands is preserved.
type Store struct {
	numBands int
	blocks   []block
	cur      block

	size     int // bytes held, after compression
	limit    int // 0 means unlimited
	compress bool
	noLimit  int // >0 while low-memory warnings are ignored
}

type block struct {
	first, last int    // band range, inclusive
	data        []byte // commands, possibly compressed
	rawLen      int    // uncompressed length, 0 if data is not compressed
}

// NewStore allocates an empty band list for numBands bands.
// If limit is positive, the band list refuses to grow beyond limit bytes.
// If compress is set, sealed blocks are compressed using zstd.
func NewStore(numBands, limit int, compress bool) *Store {
	return &Store{
		numBands: numBands,
		limit:    limit,
		compress: compress,
	}
}

// NumBands returns the number of bands of the page.
func (s *Store) NumBands() int {
	return s.numBands
}

// Size returns the number of bytes used by the band list.
func (s *Store) Size() int {
	return s.size
}

// reserve appends a command with a payload of the given size for the bands
// first to last.  The returned payload is only valid until the next call.
func (s *Store) reserve(first, last int, op Opcode, size int) ([]byte, error) {
	if first < 0 || last >= s.numBands || first > last {
		return nil, fmt.Errorf("%w: bands %d-%d of %d", ErrRangeCheck, first, last, s.numBands)
	}
	need := 1 + sizeUvarint(uint64(size)) + size
	if s.limit > 0 && s.noLimit == 0 && s.size+need > s.limit {
		return nil, ErrBandListFull
	}

	if len(s.cur.data) >= maxBlockSize ||
		len(s.cur.data) > 0 && (s.cur.first != first || s.cur.last != last) {
		s.seal()
	}
	s.cur.first, s.cur.last = first, last

	var payload []byte
	s.cur.data, payload = appendCommand(s.cur.data, op, size)
	s.size += need
	return payload, nil
}

// seal closes the current block.
func (s *Store) seal() {
	if len(s.cur.data) == 0 {
		return
	}
	b := s.cur
	if s.compress && len(b.data) >= minCompressSize {
		z := compressBlock(b.data)
		if len(z) < len(b.data) {
			s.size -= len(b.data) - len(z)
			b.rawLen = len(b.data)
			b.data = z
		}
	}
	s.blocks = append(s.blocks, b)
	s.cur = block{}
}

// Flush closes the block which is currently being written.
func (s *Store) Flush() {
	s.seal()
}

// Band returns the command stream of band i.
func (s *Store) Band(i int) ([]byte, error) {
	if i < 0 || i >= s.numBands {
		return nil, fmt.Errorf("%w: band %d of %d", ErrRangeCheck, i, s.numBands)
	}
	var res []byte
	for _, b := range s.blocks {
		if i < b.first || i > b.last {
			continue
		}
		if b.rawLen == 0 {
			res = append(res, b.data...)
			continue
		}
		var err error
		res, err = decompressBlock(res, b.data)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", i, err)
		}
	}
	if len(s.cur.data) > 0 && i >= s.cur.first && i <= s.cur.last {
		res = append(res, s.cur.data...)
	}
	return res, nil
}

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(
			nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithLowerEncoderMem(true),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(
			nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

func compressBlock(data []byte) []byte {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, nil)
	zstdEncPool.Put(enc)
	return out
}

// decompressBlock appends the decompressed data to dst.
func decompressBlock(dst, data []byte) ([]byte, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, dst)
	zstdDecPool.Put(dec)
	return out, err
}

// Block sizes of the band list.
const (
	// maxBlockSize is the length above which a block is sealed before the
	// next command, even if that command goes to the same bands.
	maxBlockSize = 64 * 1024

	// minCompressSize is the smallest block which is compressed.
	minCompressSize = 512
)
