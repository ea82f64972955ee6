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
	"iter"
	"math"

	"seehuhn.de/go/geom/rect"
)

// Command is a single command of a band.
type Command struct {
	Op      Opcode
	Payload []byte
}

// Commands iterates over the commands of a band stream, as returned by
// Store.Band.  The payloads point into data.  If the stream ends in the
// middle of a command, the iteration stops with ErrTruncated.
func Commands(data []byte) iter.Seq2[Command, error] {
	return func(yield func(Command, error) bool) {
		for len(data) > 0 {
			op := Opcode(data[0])
			size, n := binary.Uvarint(data[1:])
			if n <= 0 || size > uint64(len(data)-1-n) {
				yield(Command{Op: op}, ErrTruncated)
				return
			}
			start := 1 + n
			end := start + int(size)
			if !yield(Command{Op: op, Payload: data[start:end:end]}, nil) {
				return
			}
			data = data[end:]
		}
	}
}

// ImageRecord describes an image as stored in one band.
type ImageRecord struct {
	Width, Height    int
	BitsPerComponent int
	NumComponents    int
	NumPlanes        int
	Mask             bool
	Interpolate      bool
	UsesColor        bool
	Decode           []float64

	// Rect is the part of the image stored in the band.
	Rect rect.IntRect

	// Rows is the number of image rows received.  Data holds the sample
	// data of all image data commands, in order.
	Rows int
	Data []byte

	// DataX is the number of pixels skipped at the start of each row, as
	// set by the last OpSetDataX command.
	DataX int
}

// BlobRecord is a reassembled blob.
type BlobRecord struct {
	Kind BlobKind
	Data []byte
}

// BandSummary is the result of replaying the commands of a band.
type BandSummary struct {
	Counts      map[Opcode]int
	Images      []ImageRecord
	Blobs       []BlobRecord
	Compositors [][]byte
}

// ReplayBand checks the command stream of a band and collects the images,
// blobs and compositors it contains.
//
// An error is returned if the stream is truncated, if images are not
// properly nested, or if image data appears outside an image.  Blob
// sequences whose segments do not add up to the announced length are
// discarded.
func ReplayBand(data []byte) (*BandSummary, error) {
	res := &BandSummary{Counts: make(map[Opcode]int)}

	var img *ImageRecord
	var pending *BlobRecord
	var pendingSize int

	for cmd, err := range Commands(data) {
		if err != nil {
			return nil, err
		}
		res.Counts[cmd.Op]++
		d := payloadReader{buf: cmd.Payload}

		switch cmd.Op {
		case OpBeginImage, OpBeginImageRect:
			if img != nil {
				return nil, fmt.Errorf("%w: image started inside an image", ErrUnfinishedImage)
			}
			rec, err := readPreimage(&d, cmd.Op == OpBeginImageRect)
			if err != nil {
				return nil, err
			}
			img = rec

		case OpImageData:
			if img == nil {
				return nil, fmt.Errorf("%w: image data outside an image", ErrImageMismatch)
			}
			rows := d.readUvarint()
			bytesPerPlane := d.readUvarint()
			if d.err != nil {
				return nil, d.err
			}
			n := int(rows) * int(bytesPerPlane) * img.NumPlanes
			if rows > math.MaxInt32 || bytesPerPlane > math.MaxInt32 || n != len(d.buf)-d.pos {
				return nil, fmt.Errorf("%w: image data length", ErrTruncated)
			}
			img.Rows += int(rows)
			img.Data = append(img.Data, d.readRest()...)

		case OpSetDataX:
			if img == nil {
				return nil, fmt.Errorf("%w: data_x outside an image", ErrImageMismatch)
			}
			img.DataX = int(d.readUvarint())
			if d.err != nil {
				return nil, d.err
			}

		case OpEndImage:
			if img == nil {
				return nil, fmt.Errorf("%w: end of image outside an image", ErrImageMismatch)
			}
			res.Images = append(res.Images, *img)
			img = nil

		case OpBlobWhole:
			pending = nil
			kind := BlobKind(d.readByte())
			if d.err != nil {
				return nil, d.err
			}
			res.Blobs = append(res.Blobs, BlobRecord{Kind: kind, Data: d.readRest()})

		case OpBlobHeader:
			kind := BlobKind(d.readByte())
			size := d.readUvarint()
			if d.err != nil {
				return nil, d.err
			}
			if size > math.MaxInt32 {
				return nil, fmt.Errorf("%w: blob of %d bytes", ErrRangeCheck, size)
			}
			pending = &BlobRecord{Kind: kind}
			pendingSize = int(size)

		case OpBlobSegment:
			kind := BlobKind(d.readByte())
			if d.err != nil {
				return nil, d.err
			}
			if pending == nil || pending.Kind != kind {
				pending = nil
				continue
			}
			seg := d.readRest()
			if len(pending.Data)+len(seg) > pendingSize {
				Logger().Debug("blob overflow discarded", "kind", kind)
				pending = nil
				continue
			}
			pending.Data = append(pending.Data, seg...)
			if len(pending.Data) == pendingSize {
				res.Blobs = append(res.Blobs, *pending)
				pending = nil
			}

		case OpCompositor:
			res.Compositors = append(res.Compositors, cmd.Payload)
		}
	}

	if img != nil {
		return nil, ErrUnfinishedImage
	}
	return res, nil
}

// readPreimage decodes the payload of a begin image command.
func readPreimage(d *payloadReader, withRect bool) (*ImageRecord, error) {
	flags := d.readByte()
	rec := &ImageRecord{
		Mask:        flags&1 != 0,
		Interpolate: flags&2 != 0,
		UsesColor:   flags&4 != 0,
	}
	rec.Width = int(d.readUvarint())
	rec.Height = int(d.readUvarint())
	rec.BitsPerComponent = int(d.readByte())
	rec.NumComponents = int(d.readByte())
	rec.NumPlanes = int(d.readByte())
	n := int(d.readByte())
	for range n {
		rec.Decode = append(rec.Decode, d.readFloat32())
	}
	if d.err != nil {
		return nil, d.err
	}
	if rec.Width <= 0 || rec.Height <= 0 || rec.NumPlanes <= 0 {
		return nil, fmt.Errorf("%w: image %dx%d with %d planes",
			ErrRangeCheck, rec.Width, rec.Height, rec.NumPlanes)
	}

	rec.Rect = rect.IntRect{XMax: rec.Width, YMax: rec.Height}
	if withRect {
		rec.Rect.XMin = int(d.readUvarint())
		rec.Rect.YMin = int(d.readUvarint())
		rec.Rect.XMax -= int(d.readUvarint())
		rec.Rect.YMax -= int(d.readUvarint())
		if d.err != nil {
			return nil, d.err
		}
	}
	return rec, nil
}

// payloadReader decodes the fields of a command payload.  The first
// decoding error is kept in err, and later reads return zero values.
type payloadReader struct {
	buf []byte
	pos int
	err error
}

func (d *payloadReader) readByte() byte {
	if d.err != nil {
		return 0
	}
	if d.pos >= len(d.buf) {
		d.err = ErrTruncated
		return 0
	}
	b := d.buf[d.pos]
	d.pos++
	return b
}

func (d *payloadReader) readUvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf[d.pos:])
	if n <= 0 {
		d.err = ErrTruncated
		return 0
	}
	d.pos += n
	return v
}

func (d *payloadReader) readFloat32() float64 {
	if d.err != nil {
		return 0
	}
	if len(d.buf)-d.pos < 4 {
		d.err = ErrTruncated
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(d.buf[d.pos:]))
	d.pos += 4
	return float64(v)
}

func (d *payloadReader) readRest() []byte {
	b := d.buf[d.pos:]
	d.pos = len(d.buf)
	return b
}
