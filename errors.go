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

import "errors"

var (
	// ErrRangeCheck indicates invalid arguments from the caller, for
	// example plane data which is too short for the declared geometry.
	ErrRangeCheck = errors.New("bandlist: range check")

	// ErrImageMismatch is returned when image data is delivered to a
	// session which is not the current image of its writer.
	// The error is latched.
	ErrImageMismatch = errors.New("bandlist: image session is not current")

	// ErrBandListFull is returned when a command would grow the band list
	// beyond Config.MaxSize.  Bands written so far stay intact, and the
	// caller may fall back to a different way of painting.  When image
	// data runs out of memory the error is latched.
	ErrBandListFull = errors.New("bandlist: band list memory exhausted")

	// ErrCropStack is returned when a compositor pops a cropping range
	// which was never pushed.  The error is latched.
	ErrCropStack = errors.New("bandlist: cropping stack underflow")

	// ErrTruncated indicates a command which extends past the end of a
	// band stream.
	ErrTruncated = errors.New("bandlist: truncated command")

	// ErrUnfinishedImage indicates a band stream which starts an image
	// and never ends it.  The page must be rendered without the band list.
	ErrUnfinishedImage = errors.New("bandlist: image without end marker")
)
