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
	"seehuhn.de/go/pdf"
)

// Config describes the page and the device which a Writer records for.
// Zero values select the defaults given below.
type Config struct {
	// Width and Height are the page size in device pixels.
	Width, Height int

	// BandHeight is the number of scanlines per band.
	// The default is 64.
	BandHeight int

	// BufferSize is the capacity of a command payload in bytes.  Image
	// data and halftones are split into commands of at most this size.
	// The default is 4096.
	BufferSize int

	// MaxSize, if positive, limits the memory used by the band list.
	MaxSize int

	// Compress enables zstd compression of the band list.
	Compress bool

	// ProcessClass is the colour model of the device, one of ClassGray,
	// ClassRGB and ClassCMYK.  NumChannels is the number of device colour
	// channels.  The defaults are ClassRGB and the number of components of
	// ProcessClass.
	ProcessClass ColorClass
	NumChannels  int

	// DisableNonRectImages keeps images which are not axis-parallel out of
	// the band list.  Axis-parallel images are then banded at any scale.
	DisableNonRectImages bool

	// DisableComplexClip keeps images out of the band list if they are
	// clipped by anything other than a rectangle.
	DisableComplexClip bool

	// DetectNeutralPage enables monitoring of image data for colour.
	// The result is reported in Page.Neutral.
	DetectNeutralPage bool

	// DeviceIntent and DeviceBlackPoint, if set, override the rendering
	// condition of images, unless the source requests its own.
	DeviceIntent     RenderingIntent
	DeviceBlackPoint BlackPoint

	// SourceProfiles lists profiles to use for images in device colour
	// spaces.
	SourceProfiles *SourceProfiles

	// TileCacheSize is the number of bytes of pattern tiles which can be
	// cached in the band list.  The default is 64 KiB.
	TileCacheSize int
}

// LogOp is a raster operation on source, texture and destination, using
// the usual 8-bit truth table encoding.  The zero value is replaced by
// LopDefault.
type LogOp uint8

// Common raster operations.
const (
	LopDefault LogOp = 0xf0 // texture only
	LopSource  LogOp = 0xcc
	LopDest    LogOp = 0xaa
)

func (op LogOp) usesS() bool { return ((op>>2)^op)&0x33 != 0 }
func (op LogOp) usesT() bool { return ((op>>4)^op)&0x0f != 0 }
func (op LogOp) usesD() bool { return ((op>>1)^op)&0x55 != 0 }

// GState is the part of the graphics state relevant for images.
type GState struct {
	Overprint     bool
	OverprintMode int
	BlendMode     pdf.Name
	TextKnockout  bool

	RenderingIntent RenderingIntent
	BlackPoint      BlackPoint

	// IntentOverride keeps RenderingIntent and BlackPoint even when the
	// device specifies a rendering condition.
	IntentOverride bool

	OpacityAlpha, ShapeAlpha, Alpha float64

	Lop LogOp

	// Transfer holds the transfer functions for red, green, blue and gray.
	// A nil entry for one of the colour channels uses the gray function.
	Transfer          [4]*TransferMap
	BlackGeneration   *TransferMap
	UnderColorRemoval *TransferMap
	Halftone          *Halftone

	// HasTransparency is set while a transparency group is open.
	HasTransparency bool
}

// ColorUsage records which device colour channels a band may use.
type ColorUsage struct {
	Channels uint64
	SlowRop  bool
}

func (u *ColorUsage) merge(v ColorUsage) {
	u.Channels |= v.Channels
	u.SlowRop = u.SlowRop || v.SlowRop
}

// knownFlags records which parts of the device state a band has seen.
type knownFlags uint16

const (
	ctmKnown knownFlags = 1 << iota
	colorSpaceKnown
	clipKnown
	blendKnown
	alphaKnown
	beginImageKnown

	imageStateKnown = ctmKnown | colorSpaceKnown | clipKnown | blendKnown | alphaKnown
)

type bandState struct {
	known       knownFlags
	usage       ColorUsage
	clipEnabled int8 // -1 unknown
	lop         LogOp
	lopKnown    bool
	color       uint64
	colorKnown  bool
	dataX       int // pixels skipped at the start of image rows
}

// deviceState holds the values most recently sent to the bands.
type deviceState struct {
	ctm        matrix.Matrix
	colorSpace *ColorSpace
	iccHash    uint64
	clip       *Clip
	blend      blendState
	alpha      [3]float64
}

type blendState struct {
	overprint     bool
	overprintMode int
	blendMode     pdf.Name
	knockout      bool
	intent        RenderingIntent
	blackPoint    BlackPoint
}

type cropRange struct {
	min, max int
}

// Writer records the band list of one page.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	cfg   Config
	store *Store
	bands []bandState
	cur   deviceState

	err         error  // latched error
	imageID     uint64 // image in progress, 0 if none
	lastID      uint64
	pageNeutral bool

	cropMin, cropMax int
	cropStack        []cropRange

	halftoneID    uint64
	transferIDs   [4]uint64
	blackGenID    uint64
	ucrID         uint64
	colorMapKnown bool

	icc      map[uint64]ICCEntry
	iccOrder []uint64

	tiles tileCache
}

// NewWriter allocates a Writer for a new page.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: page size %dx%d", ErrRangeCheck, cfg.Width, cfg.Height)
	}
	if cfg.BandHeight <= 0 {
		cfg.BandHeight = defaultBandHeight
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.BufferSize <= 2*maxCmdHeader {
		return nil, fmt.Errorf("%w: buffer size %d", ErrRangeCheck, cfg.BufferSize)
	}
	if cfg.ProcessClass == ClassOther {
		cfg.ProcessClass = ClassRGB
	}
	if cfg.NumChannels <= 0 {
		switch cfg.ProcessClass {
		case ClassGray:
			cfg.NumChannels = 1
		case ClassCMYK:
			cfg.NumChannels = 4
		default:
			cfg.NumChannels = 3
		}
	}
	if cfg.NumChannels > 64 {
		return nil, fmt.Errorf("%w: %d colour channels", ErrRangeCheck, cfg.NumChannels)
	}
	if cfg.TileCacheSize <= 0 {
		cfg.TileCacheSize = defaultTileCacheSize
	}

	w := &Writer{cfg: cfg}
	w.reset()
	return w, nil
}

// reset prepares the writer for a new page.
func (w *Writer) reset() {
	n := (w.cfg.Height + w.cfg.BandHeight - 1) / w.cfg.BandHeight
	w.store = NewStore(n, w.cfg.MaxSize, w.cfg.Compress)
	w.bands = make([]bandState, n)
	for i := range w.bands {
		w.bands[i].clipEnabled = -1
	}
	w.cur = deviceState{}
	w.err = nil
	w.imageID = 0
	w.pageNeutral = w.cfg.DetectNeutralPage
	w.cropMin, w.cropMax = 0, w.cfg.Height
	w.cropStack = w.cropStack[:0]
	w.halftoneID = 0
	w.transferIDs = [4]uint64{}
	w.blackGenID = 0
	w.ucrID = 0
	w.colorMapKnown = false
	w.icc = make(map[uint64]ICCEntry)
	w.iccOrder = nil
	w.tiles = tileCache{limit: w.cfg.TileCacheSize}
}

// NumBands returns the number of bands of the page.
func (w *Writer) NumBands() int {
	return len(w.bands)
}

// BandHeight returns the number of scanlines per band.
func (w *Writer) BandHeight() int {
	return w.cfg.BandHeight
}

// Err returns the latched error of the writer, if any.
func (w *Writer) Err() error {
	return w.err
}

// PageNeutral reports whether no colour has been found on the page so
// far.  This is always false unless Config.DetectNeutralPage is set.
func (w *Writer) PageNeutral() bool {
	return w.pageNeutral
}

// BandUsage returns the colour channels which band i may use.
func (w *Writer) BandUsage(i int) ColorUsage {
	return w.bands[i].usage
}

// fail latches err.  All later operations return the same error.
func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
		Logger().Warn("band list writer failed", "err", err)
	}
	return w.err
}

// ignoringLowMemory runs f with the memory limit of the band list lifted.
func (w *Writer) ignoringLowMemory(f func() error) error {
	w.store.noLimit++
	defer func() { w.store.noLimit-- }()
	return f()
}

// Page is the result of recording a page.
type Page struct {
	Bands *Store
	ICC   []ICCEntry
	Usage []ColorUsage

	// Neutral is set if neutral page detection was enabled and no colour
	// was found.
	Neutral bool
}

// EndPage finishes the page and returns its band list.  The writer is
// reset and can be used for the next page.  If an error was latched, the
// page is discarded and the error is returned.
func (w *Writer) EndPage() (*Page, error) {
	defer w.reset()
	if w.err != nil {
		return nil, w.err
	}
	if w.imageID != 0 {
		return nil, ErrUnfinishedImage
	}
	w.store.Flush()
	p := &Page{
		Bands:   w.store,
		Neutral: w.pageNeutral,
	}
	for _, h := range w.iccOrder {
		p.ICC = append(p.ICC, w.icc[h])
	}
	for i := range w.bands {
		p.Usage = append(p.Usage, w.bands[i].usage)
	}
	return p, nil
}

// bandRange returns the bands which contain scanlines y0 to y1-1.
func (w *Writer) bandRange(y0, y1 int) (first, last int) {
	y0 = max(y0, 0)
	y1 = min(y1, w.cfg.Height)
	if y0 >= y1 {
		return 0, -1
	}
	return y0 / w.cfg.BandHeight, (y1 - 1) / w.cfg.BandHeight
}

func (w *Writer) put(band int, op Opcode, payload []byte) error {
	return w.putRange(band, band, op, payload)
}

func (w *Writer) putAll(op Opcode, payload []byte) error {
	return w.putRange(0, len(w.bands)-1, op, payload)
}

func (w *Writer) putRange(first, last int, op Opcode, payload []byte) error {
	span, err := w.store.reserve(first, last, op, len(payload))
	if err != nil {
		return err
	}
	copy(span, payload)
	return nil
}

// clearKnown marks parts of the device state as unknown in all bands.
func (w *Writer) clearKnown(flags knownFlags) {
	for i := range w.bands {
		w.bands[i].known &^= flags
	}
}

// updateState records the state needed for an image, and marks the parts
// which changed as unknown in all bands.
func (w *Writer) updateState(m matrix.Matrix, cs *ColorSpace, iccHash uint64, clip *Clip, blend blendState, gs *GState) {
	var unknown knownFlags
	if w.cur.ctm != m {
		w.cur.ctm = m
		unknown |= ctmKnown
	}
	if cs != nil && (w.cur.colorSpace == nil || w.cur.colorSpace.ID != cs.ID || w.cur.iccHash != iccHash) {
		w.cur.colorSpace = cs
		w.cur.iccHash = iccHash
		unknown |= colorSpaceKnown
	}
	if clipID(w.cur.clip) != clipID(clip) {
		w.cur.clip = clip
		unknown |= clipKnown
	}
	if w.cur.blend != blend {
		w.cur.blend = blend
		unknown |= blendKnown
	}
	alpha := [3]float64{gs.OpacityAlpha, gs.ShapeAlpha, gs.Alpha}
	if w.cur.alpha != alpha {
		w.cur.alpha = alpha
		unknown |= alphaKnown
	}
	w.clearKnown(unknown)
}

func clipID(c *Clip) uint64 {
	if c == nil {
		return 0
	}
	return c.ID
}

// writeUnknown sends the parts of the device state in flags which band
// has not seen yet.
func (w *Writer) writeUnknown(band int, flags knownFlags) error {
	b := &w.bands[band]
	missing := flags &^ b.known
	var buf [64]byte

	if missing&ctmKnown != 0 {
		c := cursor{buf: buf[:]}
		for _, v := range w.cur.ctm {
			c.putFloat32(v)
		}
		if err := w.put(band, OpSetCTM, c.bytes()); err != nil {
			return err
		}
		b.known |= ctmKnown
	}
	if missing&colorSpaceKnown != 0 && w.cur.colorSpace != nil {
		if err := w.put(band, OpSetColorSpace, encodeColorSpace(w.cur.colorSpace, w.cur.iccHash)); err != nil {
			return err
		}
		b.known |= colorSpaceKnown
	}
	if missing&clipKnown != 0 {
		c := cursor{buf: buf[:]}
		c.putUvarint(clipID(w.cur.clip))
		if clip := w.cur.clip; clip != nil {
			c.putVarint(int64(clip.Outer.Min.X))
			c.putVarint(int64(clip.Outer.Min.Y))
			c.putVarint(int64(clip.Outer.Max.X))
			c.putVarint(int64(clip.Outer.Max.Y))
		}
		if err := w.put(band, OpSetClip, c.bytes()); err != nil {
			return err
		}
		b.known |= clipKnown
	}
	if missing&blendKnown != 0 {
		bs := w.cur.blend
		c := cursor{buf: buf[:]}
		var flags byte
		if bs.overprint {
			flags |= 1
		}
		if bs.knockout {
			flags |= 2
		}
		c.putByte(flags)
		c.putByte(byte(bs.overprintMode))
		c.putByte(byte(bs.intent))
		c.putByte(byte(bs.blackPoint))
		name := string(bs.blendMode)
		if len(name) > 32 {
			name = name[:32]
		}
		c.putByte(byte(len(name)))
		c.putBytes([]byte(name))
		if err := w.put(band, OpSetBlendState, c.bytes()); err != nil {
			return err
		}
		b.known |= blendKnown
	}
	if missing&alphaKnown != 0 {
		c := cursor{buf: buf[:]}
		for _, v := range w.cur.alpha {
			c.putFloat32(v)
		}
		if err := w.put(band, OpSetAlpha, c.bytes()); err != nil {
			return err
		}
		b.known |= alphaKnown
	}
	return nil
}

// encodeColorSpace returns the payload of an OpSetColorSpace command.
func encodeColorSpace(cs *ColorSpace, iccHash uint64) []byte {
	b := cs.base()
	name := string(b.Family)
	size := 1 + len(name) + 3*binaryMaxVarint + 1
	if cs != b {
		size += binaryMaxVarint + len(cs.Lookup)
	}
	c := cursor{buf: make([]byte, size)}
	c.putByte(byte(len(name)))
	c.putBytes([]byte(name))
	c.putUvarint(uint64(b.NumComponents()))
	c.putUvarint(cs.ID)
	c.putUvarint(iccHash)
	if cs != b {
		c.putByte(1)
		c.putUvarint(uint64(cs.HiVal))
		c.putBytes(cs.Lookup)
	} else {
		c.putByte(0)
	}
	return c.bytes()
}

// writeClipEnable switches clipping on or off for band.
func (w *Writer) writeClipEnable(band int, enable bool) error {
	b := &w.bands[band]
	want := int8(0)
	if enable {
		want = 1
	}
	if b.clipEnabled == want {
		return nil
	}
	if err := w.put(band, OpEnableClip, []byte{byte(want)}); err != nil {
		return err
	}
	b.clipEnabled = want
	return nil
}

// writeLop sends the raster operation to band, if it changed.
func (w *Writer) writeLop(band int, lop LogOp) error {
	b := &w.bands[band]
	if b.lopKnown && b.lop == lop {
		return nil
	}
	if err := w.put(band, OpSetLop, []byte{byte(lop)}); err != nil {
		return err
	}
	b.lop, b.lopKnown = lop, true
	return nil
}

// writeDrawingColor sends the drawing colour to band.
func (w *Writer) writeDrawingColor(band int, dc *DrawingColor) error {
	switch dc.Kind {
	case ColorPure:
		b := &w.bands[band]
		if b.colorKnown && b.color == dc.Pure {
			return nil
		}
		var buf [binaryMaxVarint]byte
		c := cursor{buf: buf[:]}
		c.putUvarint(dc.Pure)
		if err := w.put(band, OpSetColor, c.bytes()); err != nil {
			return err
		}
		b.color, b.colorKnown = dc.Pure, true
		return nil
	case ColorPattern:
		w.bands[band].colorKnown = false
		return w.writeTile(band, dc.Tile)
	}
	return fmt.Errorf("%w: drawing colour cannot be stored", ErrRangeCheck)
}

// colorUsage returns the device channels which an image in cs could
// touch.
func (w *Writer) colorUsage(cs *ColorSpace, mask bool, lop LogOp) ColorUsage {
	all := uint64(math.MaxUint64)
	if n := w.cfg.NumChannels; n < 64 {
		all = 1<<n - 1
	}
	u := ColorUsage{Channels: all, SlowRop: lop.usesD()}
	if mask || cs == nil || cs.NumComponents() > 1 {
		return u
	}
	if w.cfg.ProcessClass != ClassCMYK {
		return u
	}

	// single component images on a CMYK device
	b := cs.base()
	switch {
	case cs.Family != b.Family && b.Class() == ClassCMYK:
		u.Channels = 0
		for k := 0; k <= cs.HiVal; k++ {
			entry, err := cs.paletteEntry(k)
			if err != nil {
				return ColorUsage{Channels: all, SlowRop: u.SlowRop}
			}
			for j, v := range entry {
				if v != 0 && j < 64 {
					u.Channels |= 1 << j
				}
			}
		}
	case cs.Class() == ClassGray:
		u.Channels = 1 << 3 // black
	}
	return u
}

// Default configuration values.
const (
	defaultBandHeight    = 64
	defaultBufferSize    = 4096
	defaultTileCacheSize = 64 * 1024

	binaryMaxVarint = 10
)
