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

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// ImageSession records one image into the band list.  Sessions are
// created by Writer.BeginImage.  The caller delivers the image data using
// PlaneData and finishes the image by calling End.
type ImageSession struct {
	w  *Writer
	id uint64

	rect          rect.IntRect // selected part of the image
	width, height int
	m             matrix.Matrix
	bps, ncomp    int
	numPlanes     int
	bitsPerPlane  int
	support       int
	decode        []float64

	y          int       // next image row
	ymin, ymax int       // device scanlines the image can touch
	devBox     rect.Rect // device region considered for band boxes

	clip      *Clip
	needsClip bool
	needKnown knownFlags
	lop       LogOp
	usesColor bool
	color     DrawingColor
	gs        GState
	usage     ColorUsage
	class     ColorClass

	colorMapKnown bool

	monitor bool
	unpack  UnpackFunc
	buffer  []byte

	preimage [maxPreimage]byte
	preLen   int

	ended bool
}

// Y returns the number of image rows received so far, counted from the
// top of the selected rectangle.
func (s *ImageSession) Y() int {
	return s.y - s.rect.YMin
}

// Monitoring reports whether the image data is still checked for colour.
func (s *ImageSession) Monitoring() bool {
	return s.monitor
}

// PlaneData records the next rows of the image.  Each plane holds rows
// rows of data, starting with the first row not yet delivered.  Rows below
// the selected rectangle are ignored.  The return value reports whether
// all rows of the selected rectangle have been received.
func (s *ImageSession) PlaneData(planes []Plane, rows int) (bool, error) {
	w := s.w
	if w.err != nil {
		return false, w.err
	}
	if s.ended || s.id != w.imageID {
		return false, w.fail(ErrImageMismatch)
	}
	if len(planes) != s.numPlanes {
		return false, fmt.Errorf("%w: %d planes, expected %d", ErrRangeCheck, len(planes), s.numPlanes)
	}
	dataX := planes[0].DataX
	for i := range planes[1:] {
		if planes[i+1].DataX != dataX {
			return false, fmt.Errorf("%w: planes have different data_x", ErrRangeCheck)
		}
	}

	y0 := s.y
	rows = min(rows, s.rect.YMax-y0)
	if rows <= 0 {
		return s.y >= s.rect.YMax, nil
	}
	y1 := y0 + rows

	need := (s.rect.XMax - s.rect.XMin + dataX) * s.bitsPerPlane
	need = (need + 7) >> 3
	for _, p := range planes {
		if dataX < 0 || p.Raster < 0 || (rows-1)*p.Raster+need > len(p.Data) {
			return false, fmt.Errorf("%w: plane data too short", ErrRangeCheck)
		}
	}

	if s.ymax > 0 && s.ymin < w.cfg.Height {
		sbox := bboxTransform(rect.Rect{
			LLx: float64(s.rect.XMin),
			LLy: float64(y0 - s.support),
			URx: float64(s.rect.XMax),
			URy: float64(y1 + s.support),
		}, s.m)
		ry0 := max(floorInt(sbox.LLy)-2, s.ymin)
		ry1 := min(ceilInt(sbox.URy)+2, s.ymax)
		if ry0 < ry1 {
			bh := w.cfg.BandHeight
			first := ry0 / bh
			last := (ry1 - 1) / bh
			for band := first; band <= last; band++ {
				lo := max(band*bh, ry0)
				hi := min((band+1)*bh, ry1, w.cfg.Height)
				if err := s.writeBand(band, lo, hi, planes, y0, y1); err != nil {
					// Earlier bands already hold these rows.
					return false, w.fail(err)
				}
			}
		}
	}

	s.y = y1
	return s.y >= s.rect.YMax, nil
}

// bandBox returns the part of the image which affects device scanlines
// y0 to y1-1.
func (s *ImageSession) bandBox(y0, y1 int) (rect.IntRect, bool) {
	b := s.devBox
	b.LLy = max(b.LLy, float64(y0), float64(s.ymin))
	b.URy = min(b.URy, float64(y1), float64(s.ymax))
	return bandBox(s.rect, s.m, b, s.support)
}

// writeBand sends the image rows y0 to y1-1 which affect device scanlines
// lo to hi-1 of band.
func (s *ImageSession) writeBand(band, lo, hi int, planes []Plane, y0, y1 int) error {
	w := s.w
	ibox, ok := s.bandBox(lo, hi)
	if !ok {
		return nil
	}
	b := &w.bands[band]
	b.usage.merge(s.usage)

	if b.known&beginImageKnown == 0 {
		if err := s.beginInBand(band); err != nil {
			return err
		}
	}

	by0 := max(ibox.YMin, y0)
	by1 := min(ibox.YMax, y1)
	if by0 >= by1 {
		return nil
	}

	bpp := s.bitsPerPlane
	srcPix := planes[0].DataX + ibox.XMin - s.rect.XMin
	aligned := srcPix &^ (pixelAlign[bpp&7] - 1)
	byteOff := aligned * bpp >> 3
	skip := srcPix - aligned
	bytesPerPlane := ((skip+ibox.XMax-ibox.XMin)*bpp + 7) >> 3
	bytesPerRow := bytesPerPlane * s.numPlanes

	if skip != b.dataX {
		var buf [binaryMaxVarint]byte
		c := cursor{buf: buf[:]}
		c.putUvarint(uint64(skip))
		if err := w.put(band, OpSetDataX, c.bytes()); err != nil {
			return err
		}
		b.dataX = skip
	}

	rowsPerCmd := max((w.cfg.BufferSize-maxCmdHeader)/bytesPerRow, 1)
	for r := by0; r < by1; {
		n := min(rowsPerCmd, by1-r)
		if s.monitor {
			s.checkRows(planes, r-y0, n, byteOff, bytesPerPlane, skip, ibox.XMax-ibox.XMin)
		}

		size := sizeUvarint(uint64(n)) + sizeUvarint(uint64(bytesPerPlane)) + n*bytesPerRow
		span, err := w.store.reserve(band, band, OpImageData, size)
		if err != nil {
			return err
		}
		c := cursor{buf: span}
		c.putUvarint(uint64(n))
		c.putUvarint(uint64(bytesPerPlane))
		for _, p := range planes {
			for i := range n {
				start := (r-y0+i)*p.Raster + byteOff
				c.putBytes(p.Data[start : start+bytesPerPlane])
			}
		}
		r += n
	}
	return nil
}

// beginInBand sends the state needed by the image, followed by the begin
// image command, to a band which has not seen the image yet.
func (s *ImageSession) beginInBand(band int) error {
	w := s.w
	if !s.colorMapKnown {
		if err := w.putColorMapping(&s.gs); err != nil {
			return err
		}
		s.colorMapKnown = true
	}
	if err := w.writeUnknown(band, s.needKnown); err != nil {
		return err
	}
	if err := w.writeClipEnable(band, s.needsClip); err != nil {
		return err
	}
	if err := w.writeLop(band, s.lop); err != nil {
		return err
	}
	if s.usesColor {
		if err := w.writeDrawingColor(band, &s.color); err != nil {
			return err
		}
	}

	bh := w.cfg.BandHeight
	entire, ok := s.bandBox(band*bh, (band+1)*bh)
	full := rect.IntRect{XMax: s.width, YMax: s.height}
	var err error
	if !ok || entire == full {
		err = w.put(band, OpBeginImage, s.preimage[:s.preLen])
	} else {
		var buf [maxPreimage]byte
		c := cursor{buf: buf[:]}
		c.putBytes(s.preimage[:s.preLen])
		c.putUvarint(uint64(entire.XMin))
		c.putUvarint(uint64(entire.YMin))
		c.putUvarint(uint64(s.width - entire.XMax))
		c.putUvarint(uint64(s.height - entire.YMax))
		err = w.put(band, OpBeginImageRect, c.bytes())
	}
	if err != nil {
		return err
	}
	w.bands[band].known |= beginImageKnown
	w.bands[band].dataX = 0
	return nil
}

// checkRows looks for colour in n rows of the image data, starting at row
// r of the planes.
func (s *ImageSession) checkRows(planes []Plane, r, n, byteOff, bytesPerPlane, skip, pixels int) {
	compSize := 1
	if s.bps > 8 {
		compSize = 2
	}
	for i := range n {
		row, ok := s.unpackRow(planes, r+i, byteOff, bytesPerPlane, skip, pixels)
		if !ok || !IsRowNeutral(row, s.class, compSize, pixels) {
			s.monitor = false
			s.w.setColorDetected("image data")
			return
		}
	}
}

// unpackRow converts one row of image data into pixels of s.ncomp
// components.
func (s *ImageSession) unpackRow(planes []Plane, r, byteOff, bytesPerPlane, skip, pixels int) ([]byte, bool) {
	dm := DecodeMap{
		BitsPerComponent: s.bps,
		NumComponents:    s.ncomp,
		Decode:           s.decode,
		Class:            s.class,
		Skip:             skip,
		Pixels:           pixels,
	}
	src := func(p Plane) []byte {
		start := r*p.Raster + byteOff
		return p.Data[start : start+bytesPerPlane]
	}

	if s.numPlanes == 1 {
		row := s.unpack(s.buffer[:0], src(planes[0]), &dm)
		return row, len(row) >= pixels*s.ncomp*compBytes(s.bps)
	}

	// planar data: each plane holds cpp components, interleaved afterwards
	cb := compBytes(s.bps)
	cpp := s.ncomp / s.numPlanes
	half := len(s.buffer) / 2
	out := s.buffer[:pixels*s.ncomp*cb]
	if len(out) > half {
		return nil, false
	}
	tmp := s.buffer[half:half]
	dm.NumComponents = cpp
	for j, p := range planes {
		dm.FirstComponent = j * cpp
		dm.Decode = nil
		if hi := 2 * (j + 1) * cpp; hi <= len(s.decode) {
			dm.Decode = s.decode[2*j*cpp : hi]
		}
		comp := s.unpack(tmp, src(p), &dm)
		if len(comp) < pixels*cpp*cb {
			return nil, false
		}
		for k := range pixels {
			copy(out[(k*s.ncomp+j*cpp)*cb:], comp[k*cpp*cb:(k+1)*cpp*cb])
		}
	}
	return out, true
}

func compBytes(bps int) int {
	if bps > 8 {
		return 2
	}
	return 1
}

// End finishes the image.  An end of image command is written to every
// band which has received the start of the image.  End may be called
// before all data has been delivered, to abandon the image.
func (s *ImageSession) End(drawLast bool) error {
	w := s.w
	if w.err != nil {
		return w.err
	}
	if s.ended {
		return nil
	}
	s.ended = true
	s.buffer = nil
	if s.id != w.imageID {
		return w.fail(ErrImageMismatch)
	}
	w.imageID = 0

	err := w.ignoringLowMemory(s.writeEndAll)
	if err != nil {
		return w.fail(err)
	}
	return nil
}

// writeEndAll ends the image in all bands which have seen its start.
func (s *ImageSession) writeEndAll() error {
	w := s.w
	if s.ymax < 0 || s.ymin >= w.cfg.Height {
		return nil
	}
	for i := range w.bands {
		b := &w.bands[i]
		if b.known&beginImageKnown == 0 {
			continue
		}
		if err := w.put(i, OpEndImage, nil); err != nil {
			return err
		}
		b.known &^= beginImageKnown
	}
	return nil
}

// pixelAlign, indexed by bits per pixel modulo 8, gives the number of
// pixels which make up a whole number of bytes.
var pixelAlign = [8]int{1, 8, 4, 8, 2, 8, 4, 8}
