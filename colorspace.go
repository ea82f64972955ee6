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
	"errors"
	"fmt"
	"hash/fnv"

	"seehuhn.de/go/icc"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics/color"
)

// ColorClass classifies colour spaces by their colour model.
type ColorClass int

// Colour classes.
const (
	ClassOther ColorClass = iota
	ClassGray
	ClassRGB
	ClassCMYK
	ClassLab
)

func (c ColorClass) String() string {
	switch c {
	case ClassGray:
		return "Gray"
	case ClassRGB:
		return "RGB"
	case ClassCMYK:
		return "CMYK"
	case ClassLab:
		return "Lab"
	}
	return "Other"
}

// ColorSpace describes the colour space of an image.
// Colour spaces are shared between paint requests and never modified by
// the writer.
type ColorSpace struct {
	// Family is the PDF colour space family, for example
	// [color.FamilyDeviceRGB].
	Family pdf.Name

	// N is the number of components for families where this is not
	// implied by the family itself (Separation, DeviceN).
	N int

	// Base, HiVal and Lookup describe Indexed colour spaces.  Lookup holds
	// HiVal+1 entries with one byte per component of Base.
	Base   *ColorSpace
	HiVal  int
	Lookup []byte

	// ICC is the profile of an ICCBased colour space.
	ICC *ICCProfile

	// ID identifies the colour space.  Colour spaces with equal IDs must be
	// identical.
	ID uint64
}

// NumComponents returns the number of colour components of a pixel.
func (cs *ColorSpace) NumComponents() int {
	switch cs.Family {
	case color.FamilyDeviceGray, color.FamilyCalGray, color.FamilyIndexed:
		return 1
	case color.FamilyDeviceRGB, color.FamilyCalRGB, color.FamilyLab:
		return 3
	case color.FamilyDeviceCMYK:
		return 4
	case color.FamilyICCBased:
		if cs.ICC != nil {
			return cs.ICC.n
		}
	}
	return cs.N
}

// base returns the colour space which determines the pixel values seen
// by the device: the base space of an Indexed space, or cs itself.
func (cs *ColorSpace) base() *ColorSpace {
	if cs.Family == color.FamilyIndexed && cs.Base != nil {
		return cs.Base
	}
	return cs
}

// Class returns the colour model of cs.  For Indexed spaces, this is the
// class of the base space.
func (cs *ColorSpace) Class() ColorClass {
	b := cs.base()
	switch b.Family {
	case color.FamilyDeviceGray, color.FamilyCalGray:
		return ClassGray
	case color.FamilyDeviceRGB, color.FamilyCalRGB:
		return ClassRGB
	case color.FamilyDeviceCMYK:
		return ClassCMYK
	case color.FamilyLab:
		return ClassLab
	case color.FamilyICCBased:
		if b.ICC != nil {
			return b.ICC.class
		}
	}
	return ClassOther
}

// bandable reports whether images in cs can be stored in a band list.
// Device spaces and spaces with an ICC representation qualify.
func (cs *ColorSpace) bandable() bool {
	b := cs.base()
	switch b.Family {
	case color.FamilyDeviceGray, color.FamilyDeviceRGB, color.FamilyDeviceCMYK,
		color.FamilyCalGray, color.FamilyCalRGB, color.FamilyLab:
		return true
	case color.FamilyICCBased:
		return b.ICC != nil
	}
	return false
}

// RenderingIntent is an ICC rendering intent.
// The zero value means that no intent was specified.
type RenderingIntent int8

// Rendering intents.
const (
	IntentUnset RenderingIntent = iota
	Perceptual
	RelativeColorimetric
	Saturation
	AbsoluteColorimetric
)

// BlackPoint selects black point compensation.
// The zero value means that no choice was made.
type BlackPoint int8

// Black point compensation settings.
const (
	BlackPointUnset BlackPoint = iota
	BlackPointOff
	BlackPointOn
)

// ICCProfile is an ICC colour profile used by image data.
type ICCProfile struct {
	// Data is the encoded profile.
	Data []byte

	class ColorClass
	n     int

	hash      uint64
	hashValid bool
}

// NewICCProfile decodes the header of an ICC profile.  The data is not
// modified.
func NewICCProfile(data []byte) (*ICCProfile, error) {
	p, err := icc.Decode(bytes.Clone(data))
	if err != nil {
		return nil, err
	}
	res := &ICCProfile{Data: data, n: p.ColorSpace.NumComponents()}
	switch p.ColorSpace {
	case icc.GraySpace:
		res.class = ClassGray
	case icc.RGBSpace:
		res.class = ClassRGB
	case icc.CMYKSpace:
		res.class = ClassCMYK
	case icc.CIELabSpace:
		res.class = ClassLab
	}
	if res.n < 1 || res.n > maxComponents {
		return nil, fmt.Errorf("ICC profile: %d components not supported", res.n)
	}
	return res, nil
}

// Class returns the colour model of the profile's data space.
func (p *ICCProfile) Class() ColorClass {
	return p.class
}

// Hash returns a hash of the profile data.  The hash is computed on first
// use and cached.
func (p *ICCProfile) Hash() uint64 {
	if !p.hashValid {
		h := fnv.New64a()
		h.Write(p.Data)
		p.hash = h.Sum64()
		p.hashValid = true
	}
	return p.hash
}

// SourceOverride replaces the profile and rendering condition used for
// images in a device colour space.
type SourceOverride struct {
	Profile    *ICCProfile
	Intent     RenderingIntent
	BlackPoint BlackPoint

	// Override, if set, keeps Intent and BlackPoint even if the device
	// specifies its own rendering condition.
	Override bool
}

// SourceProfiles lists the source colour substitutions of a device.
type SourceProfiles struct {
	RGB  *SourceOverride
	CMYK *SourceOverride
}

// ICCEntry is an entry of the ICC profile table of a page.
type ICCEntry struct {
	Hash       uint64
	Profile    *ICCProfile
	Intent     RenderingIntent
	BlackPoint BlackPoint
}

// renderCond is the rendering condition used for one image.
type renderCond struct {
	profile    *ICCProfile
	intent     RenderingIntent
	blackPoint BlackPoint
}

// resolveColor determines the profile and rendering condition for an
// image in cs, and records the profile in the page's ICC table.
// The caller's graphics state is not modified.
func (w *Writer) resolveColor(cs *ColorSpace, gs *GState) renderCond {
	rc := renderCond{intent: gs.RenderingIntent, blackPoint: gs.BlackPoint}
	override := gs.IntentOverride

	b := cs.base()
	switch b.Family {
	case color.FamilyICCBased:
		rc.profile = b.ICC
	case color.FamilyDeviceRGB:
		if src := w.cfg.SourceProfiles; src != nil && src.RGB != nil && src.RGB.Profile != nil {
			rc.profile = src.RGB.Profile
			rc.intent, rc.blackPoint = src.RGB.Intent, src.RGB.BlackPoint
			override = override || src.RGB.Override
		}
	case color.FamilyDeviceCMYK:
		if src := w.cfg.SourceProfiles; src != nil && src.CMYK != nil && src.CMYK.Profile != nil {
			rc.profile = src.CMYK.Profile
			rc.intent, rc.blackPoint = src.CMYK.Intent, src.CMYK.BlackPoint
			override = override || src.CMYK.Override
		}
	}

	if !override {
		if w.cfg.DeviceIntent != IntentUnset {
			rc.intent = w.cfg.DeviceIntent
		}
		if w.cfg.DeviceBlackPoint != BlackPointUnset {
			rc.blackPoint = w.cfg.DeviceBlackPoint
		}
	}

	if rc.profile != nil {
		h := rc.profile.Hash()
		if _, seen := w.icc[h]; !seen {
			w.icc[h] = ICCEntry{
				Hash:       h,
				Profile:    rc.profile,
				Intent:     rc.intent,
				BlackPoint: rc.blackPoint,
			}
			w.iccOrder = append(w.iccOrder, h)
		}
	}
	return rc
}

// paletteEntry returns the base components of entry k of an Indexed
// colour space.
func (cs *ColorSpace) paletteEntry(k int) ([]byte, error) {
	n := cs.Base.NumComponents()
	k = min(k, cs.HiVal)
	if k < 0 || (k+1)*n > len(cs.Lookup) {
		return nil, errShortPalette
	}
	return cs.Lookup[k*n : (k+1)*n], nil
}

var errShortPalette = errors.New("palette too short")

// maxComponents is the largest number of colour components in one pixel.
const maxComponents = 8
