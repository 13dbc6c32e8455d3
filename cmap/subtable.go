// seehuhn.de/go/foundry - a toolkit for transforming font files
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

package cmap

import (
	"golang.org/x/text/encoding/charmap"
	"seehuhn.de/go/sfnt/glyph"
)

// Subtable represents a decoded cmap subtable.
type Subtable interface {
	Lookup(r rune) glyph.ID

	// Encode returns the binary form of the subtable.
	Encode(language uint16) []byte

	// CodeRange returns the smallest and largest code point in the subtable.
	CodeRange() (low, high rune)

	// Mapping returns the full unicode mapping of the subtable.
	Mapping() map[rune]glyph.ID
}

var decoders = map[uint16]func([]byte, func(int) rune) (Subtable, error){
	0:  notImplemented,
	2:  notImplemented,
	4:  decodeFormat4,
	6:  notImplemented,
	8:  notImplemented,
	10: notImplemented,
	12: decodeFormat12,
	13: notImplemented,
	14: notImplemented,
}

func notImplemented([]byte, func(int) rune) (Subtable, error) {
	return nil, errUnsupportedCmapFormat
}

func unicode(code int) rune {
	return rune(code)
}

func macRoman(code int) rune {
	return charmap.Macintosh.DecodeByte(byte(code))
}
