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
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// rawBlob is a blob holding a fixed byte string.
type rawBlob []byte

func (b rawBlob) EncodeBlob(e *BlobEncoder) {
	e.Bytes(b)
}

type emitted struct {
	op      Opcode
	payload []byte
}

func collect(kind BlobKind, b Blob, maxSegment int) ([]emitted, error) {
	var res []emitted
	err := Serialize(kind, b, maxSegment, func(op Opcode, payload []byte) error {
		res = append(res, emitted{op, bytes.Clone(payload)})
		return nil
	})
	return res, err
}

func TestSerializeSegments(t *testing.T) {
	data := make([]byte, 300000)
	for i := range data {
		data[i] = byte(i * 7)
	}

	cmds, err := collect(BlobHalftone, rawBlob(data), 65536)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 6 {
		t.Fatalf("got %d commands, want 6", len(cmds))
	}

	hdr := cmds[0]
	if hdr.op != OpBlobHeader || BlobKind(hdr.payload[0]) != BlobHalftone {
		t.Fatalf("first command is %v", hdr.op)
	}
	total, n := binary.Uvarint(hdr.payload[1:])
	if n <= 0 || total != 300000 {
		t.Errorf("declared size %d, want 300000", total)
	}

	var joined []byte
	for i, c := range cmds[1:] {
		if c.op != OpBlobSegment || BlobKind(c.payload[0]) != BlobHalftone {
			t.Fatalf("command %d is %v", i+1, c.op)
		}
		seg := c.payload[1:]
		if i < 4 && len(seg) != 65536 {
			t.Errorf("segment %d has %d bytes", i, len(seg))
		}
		joined = append(joined, seg...)
	}
	if !bytes.Equal(joined, data) {
		t.Error("segments do not add up to the blob")
	}
}

func TestSerializeWhole(t *testing.T) {
	for _, size := range []int{0, 1, 100} {
		data := bytes.Repeat([]byte{0x55}, size)
		cmds, err := collect(BlobTransfer, rawBlob(data), 100)
		if err != nil {
			t.Fatal(err)
		}
		if len(cmds) != 1 || cmds[0].op != OpBlobWhole {
			t.Fatalf("size %d: got %d commands", size, len(cmds))
		}
		if p := cmds[0].payload; BlobKind(p[0]) != BlobTransfer || !bytes.Equal(p[1:], data) {
			t.Errorf("size %d: wrong payload", size)
		}
	}

	cmds, err := collect(BlobTransfer, rawBlob(make([]byte, 101)), 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 3 {
		t.Errorf("101 bytes: got %d commands, want 3", len(cmds))
	}
}

func TestSerializeErrors(t *testing.T) {
	if _, err := collect(BlobHalftone, rawBlob{1}, 0); !errors.Is(err, ErrRangeCheck) {
		t.Errorf("zero segment size: got %v", err)
	}

	errStop := errors.New("stop")
	calls := 0
	err := Serialize(BlobHalftone, rawBlob(make([]byte, 1000)), 100, func(Opcode, []byte) error {
		calls++
		if calls == 3 {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) || calls != 3 {
		t.Errorf("got %v after %d calls", err, calls)
	}
}

// TestBlobReplay sends blobs through a writer and reassembles them from
// the band list.
func TestBlobReplay(t *testing.T) {
	w, err := NewWriter(Config{Width: 100, Height: 100, BandHeight: 50, BufferSize: 256})
	if err != nil {
		t.Fatal(err)
	}
	big := make([]byte, 1000)
	for i := range big {
		big[i] = byte(i)
	}
	if err := w.putBlob(BlobHalftone, rawBlob(big)); err != nil {
		t.Fatal(err)
	}
	if err := w.putBlob(BlobTransfer, rawBlob("small")); err != nil {
		t.Fatal(err)
	}

	page, err := w.EndPage()
	if err != nil {
		t.Fatal(err)
	}
	for i := range page.Bands.NumBands() {
		data, err := page.Bands.Band(i)
		if err != nil {
			t.Fatal(err)
		}
		sum, err := ReplayBand(data)
		if err != nil {
			t.Fatal(err)
		}
		if len(sum.Blobs) != 2 {
			t.Fatalf("band %d: %d blobs", i, len(sum.Blobs))
		}
		if sum.Blobs[0].Kind != BlobHalftone || !bytes.Equal(sum.Blobs[0].Data, big) {
			t.Errorf("band %d: halftone blob corrupted", i)
		}
		if sum.Blobs[1].Kind != BlobTransfer || string(sum.Blobs[1].Data) != "small" {
			t.Errorf("band %d: transfer blob corrupted", i)
		}
	}
}

// TestBlobIncomplete checks that a blob sequence which is cut short is
// discarded by the reader.
func TestBlobIncomplete(t *testing.T) {
	var data []byte
	cmds, err := collect(BlobHalftone, rawBlob(make([]byte, 300)), 100)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cmds[:3] { // header and two of three segments
		var payload []byte
		data, payload = appendCommand(data, c.op, len(c.payload))
		copy(payload, c.payload)
	}
	var payload []byte
	data, payload = appendCommand(data, OpBlobWhole, 3)
	copy(payload, []byte{byte(BlobTransfer), 1, 2})

	sum, err := ReplayBand(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Blobs) != 1 || sum.Blobs[0].Kind != BlobTransfer {
		t.Errorf("got %d blobs", len(sum.Blobs))
	}
}
