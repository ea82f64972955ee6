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


// Package bandlist records images and related state into band lists.
//
// A band list splits a page into horizontal bands and keeps a separate
// command stream for every band, so that the page can later be rendered
// one band at a time.  A [Writer] decides for every image whether it can
// be stored in the band list.  If so, an [ImageSession] receives the image
// data and sends every band only the part of the image which can affect
// it, as computed by [BandBox].  Images which cannot be stored are handed
// to a fallback [Painter].
//
// Halftones and transfer functions are stored as blobs, which are split
// into several commands if needed, see [Serialize].  Compositors are sent
// to the band range they affect, see [SelectRange].
//
// The writer can optionally check image data for colour, to find pages
// which can be printed in black and white.
//
// Band contents can be inspected using [Commands] and [ReplayBand].
package bandlist

//go:generate go run ./testcases/export
