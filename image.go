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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// ImageKind selects the kind of an image paint request.
type ImageKind int

// Image kinds.  Only ImageSimple and ImageSimpleWithSubRect can be
// stored in a band list.
const (
	// ImageSimple is a sampled image, painted in full.
	ImageSimple ImageKind = iota

	// ImageSimpleWithSubRect is a sampled image of which only the part
	// given by ImageRequest.SubRect is painted.
	ImageSimpleWithSubRect

	// ImageUnsupported stands for all other kinds of images.
	ImageUnsupported
)

// Plane is a horizontal slice of one plane of image data.  The memory is
// owned by the caller and not retained after a call returns.
type Plane struct {
	// Data holds the rows of the slice, Raster bytes apart.
	Data   []byte
	Raster int

	// DataX is the number of pixels preceding the image data in each row.
	DataX int
}

// ImageRequest describes an image to be painted.
type ImageRequest struct {
	Kind ImageKind

	// Width and Height give the size of the image in samples.
	Width, Height int

	// BitsPerComponent is 1, 2, 4, 8, 12 or 16.
	BitsPerComponent int

	// ColorSpace is the colour space of the samples.  It is ignored for
	// masks.
	ColorSpace *ColorSpace

	// ImageMask marks a stencil mask, painted with Color.
	ImageMask bool

	// HasAlpha marks images with an alpha channel.
	HasAlpha bool

	// PlaneDepths lists the bits per pixel of each plane of planar images.
	// For chunky images this is nil.
	PlaneDepths []int

	// Decode maps sample values to colour values, two entries per
	// component.  If Decode is nil, the default for the colour space is
	// used.
	Decode []float64

	Interpolate bool

	// CombineWithColor combines the image with Color using the raster
	// operation of the graphics state.
	CombineWithColor bool

	// Matrix maps image space to device space.
	Matrix matrix.Matrix

	// SubRect selects the part of the image to paint, for
	// ImageSimpleWithSubRect.
	SubRect rect.IntRect

	// Color is the drawing colour for masks and combined images.
	Color DrawingColor

	// Unpack converts samples for neutral colour detection.  If nil,
	// the package function Unpack is used.
	Unpack UnpackFunc
}

// numComponents returns the number of components per pixel.
func (req *ImageRequest) numComponents() int {
	if req.ImageMask || req.ColorSpace == nil {
		return 1
	}
	return req.ColorSpace.NumComponents()
}

// selectedRect returns the part of the image which is painted.
func (req *ImageRequest) selectedRect() rect.IntRect {
	full := rect.IntRect{XMax: req.Width, YMax: req.Height}
	if req.Kind != ImageSimpleWithSubRect {
		return full
	}
	r := req.SubRect
	return rect.IntRect{
		XMin: max(r.XMin, 0),
		YMin: max(r.YMin, 0),
		XMax: min(r.XMax, full.XMax),
		YMax: min(r.YMax, full.YMax),
	}
}

// Disposition is the outcome of starting an image.
type Disposition int

// Possible outcomes of BeginImage.
const (
	// Proceed means that the image is stored in the band list.
	Proceed Disposition = iota

	// Fallback means that the image must be painted without the band
	// list.
	Fallback

	// Abort means that the image cannot be stored in the band list, and
	// that it must not be painted by a fallback painter either, because
	// a transparency group is open.
	Abort
)

func (d Disposition) String() string {
	switch d {
	case Proceed:
		return "Proceed"
	case Fallback:
		return "Fallback"
	case Abort:
		return "Abort"
	}
	return fmt.Sprintf("Disposition(%d)", int(d))
}

// ImageSink receives the data of an image.
type ImageSink interface {
	// PlaneData delivers the next rows of the image.  The return value
	// reports whether all rows have been received.
	PlaneData(planes []Plane, rows int) (done bool, err error)

	// End finishes the image.
	End(drawLast bool) error
}

// Painter paints images which cannot be stored in the band list.
type Painter interface {
	BeginImage(req *ImageRequest, gs *GState, clip *Clip) (ImageSink, error)
}

// BeginTypedImage starts an image, using the band list if possible and
// fallback otherwise.  If the disposition is Abort, no sink is returned.
func (w *Writer) BeginTypedImage(req *ImageRequest, gs *GState, clip *Clip, fallback Painter) (ImageSink, Disposition, error) {
	s, d, err := w.BeginImage(req, gs, clip)
	if err != nil || d == Abort {
		return nil, d, err
	}
	if d == Proceed {
		return s, d, nil
	}
	sink, err := fallback.BeginImage(req, gs, clip)
	return sink, Fallback, err
}

// BeginImage starts recording an image into the band list.
//
// If the image cannot be stored in the band list, no session is returned
// and the disposition tells the caller how to continue.  Errors are only
// returned when the writer has failed.
func (w *Writer) BeginImage(req *ImageRequest, gs *GState, clip *Clip) (*ImageSession, Disposition, error) {
	if w.err != nil {
		return nil, Abort, w.err
	}
	if gs == nil {
		gs = &GState{}
	}

	s, reason := w.newSession(req, gs, clip)
	if reason != "" {
		Logger().Debug("image not banded", "reason", reason)
		if gs.HasTransparency {
			return nil, Abort, nil
		}
		return nil, Fallback, nil
	}
	return s, Proceed, nil
}

// newSession checks whether req can be stored in the band list and, if
// so, sets up a session.  Otherwise, the reason is returned.
func (w *Writer) newSession(req *ImageRequest, gs *GState, clip *Clip) (*ImageSession, string) {
	if req.Kind != ImageSimple && req.Kind != ImageSimpleWithSubRect {
		return nil, "unsupported image kind"
	}
	if w.imageID != 0 {
		return nil, "nested image"
	}
	switch req.BitsPerComponent {
	case 1, 2, 4, 8, 12, 16:
	default:
		return nil, "bits per component"
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, "empty image"
	}
	r := req.selectedRect()
	if r.XMin >= r.XMax || r.YMin >= r.YMax {
		return nil, "empty image"
	}

	cs := req.ColorSpace
	if req.ImageMask {
		cs = nil
	} else if cs == nil || !cs.bandable() {
		return nil, "colour space"
	}
	if req.HasAlpha {
		return nil, "alpha"
	}

	ncomp := req.numComponents()
	numPlanes := 1
	bitsPerPlane := req.BitsPerComponent * ncomp
	if len(req.PlaneDepths) > 0 {
		numPlanes = len(req.PlaneDepths)
		bitsPerPlane = req.PlaneDepths[0]
		total := 0
		for _, d := range req.PlaneDepths {
			if d != bitsPerPlane {
				return nil, "plane depths differ"
			}
			total += d
		}
		if total != req.BitsPerComponent*ncomp || bitsPerPlane <= 0 || bitsPerPlane%req.BitsPerComponent != 0 {
			return nil, "plane depths"
		}
	}

	m := req.Matrix
	if !matrixOKToBand(m, !w.cfg.DisableNonRectImages) {
		return nil, "matrix"
	}

	lop := gs.Lop
	if lop == 0 {
		lop = LopDefault
	}
	usesColor := req.CombineWithColor && (lop.usesT() || lop.usesS())
	if (req.ImageMask || usesColor) && req.Color.Kind != ColorPure && req.Color.Kind != ColorPattern {
		return nil, "drawing colour"
	}

	bytesPerPlane := (req.Width*bitsPerPlane + 7) >> 3
	bytesPerRow := bytesPerPlane * numPlanes
	if maxCmdHeader+bytesPerRow > w.cfg.BufferSize {
		return nil, "row too large"
	}

	support := 0
	if req.Interpolate {
		support = interpolationSupport
	}
	ext := rect.Rect{
		LLx: float64(r.XMin - support),
		LLy: float64(r.YMin - support),
		URx: float64(r.XMax + support),
		URy: float64(r.YMax + support),
	}
	dbox := bboxTransform(ext, m)
	devX0, devY0 := floorInt(dbox.LLx), floorInt(dbox.LLy)
	devX1, devY1 := ceilInt(dbox.URx), ceilInt(dbox.URy)

	if w.cfg.DisableComplexClip && !trivialClip(clip, devX0, devY0, devX1, devY1) {
		return nil, "complex clip"
	}

	s := &ImageSession{
		w:            w,
		rect:         r,
		width:        req.Width,
		height:       req.Height,
		m:            m,
		bps:          req.BitsPerComponent,
		ncomp:        ncomp,
		numPlanes:    numPlanes,
		bitsPerPlane: bitsPerPlane,
		support:      support,
		y:            r.YMin,
		clip:         clip,
		lop:          lop,
		usesColor:    usesColor || req.ImageMask,
		color:        req.Color,
		gs:           *gs,
		decode:       req.Decode,
	}
	if err := s.makePreimage(req); err != nil {
		return nil, err.Error()
	}

	s.ymin = max(0, floorInt(dbox.LLy-0.51))
	s.ymax = min(ceilInt(dbox.URy+0.51), w.cfg.Height)
	s.devBox = rect.Rect{URx: float64(w.cfg.Width), URy: float64(w.cfg.Height)}
	if clip != nil {
		s.ymin = max(s.ymin, clip.Outer.Min.Y.Floor())
		s.ymax = min(s.ymax, clip.Outer.Max.Y.Floor())
		cb := clip.bounds()
		s.devBox.LLx = max(s.devBox.LLx, cb.LLx)
		s.devBox.LLy = max(s.devBox.LLy, cb.LLy)
		s.devBox.URx = min(s.devBox.URx, cb.URx)
		s.devBox.URy = min(s.devBox.URy, cb.URy)
		s.needsClip = !clip.IncludesRect(devX0, devY0, devX1, devY1)
	}

	// everything below changes the state of the writer
	var iccHash uint64
	blend := blendState{
		overprint:     gs.Overprint,
		overprintMode: gs.OverprintMode,
		blendMode:     gs.BlendMode,
		knockout:      gs.TextKnockout,
		intent:        gs.RenderingIntent,
		blackPoint:    gs.BlackPoint,
	}
	s.needKnown = imageStateKnown
	if cs != nil {
		rc := w.resolveColor(cs, gs)
		if rc.profile != nil {
			iccHash = rc.profile.Hash()
		}
		blend.intent, blend.blackPoint = rc.intent, rc.blackPoint
		s.class = cs.Class()
	} else {
		s.needKnown &^= colorSpaceKnown
	}
	w.updateState(m, cs, iccHash, clip, blend, gs)

	s.usage = w.colorUsage(cs, req.ImageMask, lop)

	if w.pageNeutral && cs != nil && s.class != ClassGray {
		w.setupMonitor(s, req, cs)
	}

	w.lastID++
	s.id = w.lastID
	w.imageID = s.id
	return s, ""
}

// setupMonitor decides whether the pixels of the image need to be
// checked for colour.
func (w *Writer) setupMonitor(s *ImageSession, req *ImageRequest, cs *ColorSpace) {
	switch s.class {
	case ClassRGB, ClassCMYK, ClassLab:
	default:
		w.setColorDetected("colour space class")
		return
	}
	if cs.Family != cs.base().Family {
		// Indexed images are checked once, via the palette.
		if paletteHasColor(cs, req.BitsPerComponent) {
			w.setColorDetected("palette")
		}
		return
	}

	s.monitor = true
	s.unpack = req.Unpack
	if s.unpack == nil {
		s.unpack = Unpack
	}
	n := req.Width
	if req.BitsPerComponent > 8 {
		n *= 2
	}
	size := (n + 15) * s.ncomp
	if s.numPlanes > 1 {
		size *= 2
	}
	s.buffer = make([]byte, size)
}

// setColorDetected records that the page is not neutral.
func (w *Writer) setColorDetected(reason string) {
	if w.pageNeutral {
		Logger().Debug("colour detected", "reason", reason)
	}
	w.pageNeutral = false
}

// makePreimage builds the payload of the begin image command.
func (s *ImageSession) makePreimage(req *ImageRequest) error {
	c := cursor{buf: s.preimage[:]}
	var flags byte
	if req.ImageMask {
		flags |= 1
	}
	if req.Interpolate {
		flags |= 2
	}
	if s.usesColor {
		flags |= 4
	}
	if s.numPlanes > 1 {
		flags |= 8
	}
	if err := c.putByte(flags); err != nil {
		return err
	}
	if err := c.putUvarint(uint64(req.Width)); err != nil {
		return err
	}
	if err := c.putUvarint(uint64(req.Height)); err != nil {
		return err
	}
	n := min(len(req.Decode), 2*s.ncomp)
	for _, b := range []byte{byte(req.BitsPerComponent), byte(s.ncomp), byte(s.numPlanes), byte(n)} {
		if err := c.putByte(b); err != nil {
			return err
		}
	}
	for _, v := range req.Decode[:n] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: decode array", ErrRangeCheck)
		}
		if err := c.putFloat32(v); err != nil {
			return err
		}
	}
	s.preLen = c.pos
	return nil
}

// Image geometry constants.
const (
	// interpolationSupport is the number of pixels an interpolated image
	// sample can influence beyond its own area.
	interpolationSupport = 4

	// maxPreimage is the size of the begin image payload, including the
	// optional sub-rectangle.
	maxPreimage = 16 + 4*binaryMaxVarint + 2*maxComponents*4 + 4*binaryMaxVarint
)
