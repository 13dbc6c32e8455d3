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

// Package table defines the interface between the font object model and the
// per-table codecs.
package table

import "fmt"

// Tag is a 4-byte sfnt table tag, e.g. "cmap" or "glyf".
type Tag [4]byte

// MakeTag converts a 4-character string into a Tag.
// The function panics if the string does not have length 4.
func MakeTag(s string) Tag {
	if len(s) != 4 {
		panic("tag must be 4 characters: " + s)
	}
	return Tag{s[0], s[1], s[2], s[3]}
}

func (tag Tag) String() string {
	return string(tag[:])
}

// Kind classifies tables by the role they play in a font.
// Pipeline stages declare the kinds of tables they read and write.
type Kind int

// The table kinds.
const (
	KindOther Kind = iota // tables the toolkit treats as opaque
	KindHeader
	KindOutlines
	KindMetrics
	KindMapping
	KindNames
	KindHinting
	KindLayout
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindOutlines:
		return "outlines"
	case KindMetrics:
		return "metrics"
	case KindMapping:
		return "mapping"
	case KindNames:
		return "names"
	case KindHinting:
		return "hinting"
	case KindLayout:
		return "layout"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Table is the parsed form of one or more sfnt tables.
type Table interface {
	TableKind() Kind
}

// Opaque holds the raw bytes of a table which has no codec, or which
// failed to decode.  Opaque tables pass through the toolkit unchanged.
type Opaque struct {
	Data []byte
}

// TableKind implements the [Table] interface.
func (t *Opaque) TableKind() Kind { return KindOther }

// Context carries font-wide information which individual tables cannot
// decode without.  The font object model fills it in from the tables
// already decoded.
type Context struct {
	NumGlyphs   int    // from "maxp"
	UnitsPerEm  uint16 // from "head"
	HasLongLoca bool   // from "head" (indexToLocFormat)
}

// Codec translates between the binary form of a table family and its
// parsed representation.  A codec can cover more than one tag when the
// tags cannot be decoded independently, for example "glyf"+"loca" or
// "hhea"+"hmtx"; Tags lists them with the primary tag first.
//
// Decode must tolerate malformed input and return a [*DecodeError]
// rather than panic.  Encode must be deterministic: equal tables yield
// byte-identical output.
type Codec interface {
	Tags() []Tag
	Kind() Kind
	Decode(raw map[Tag][]byte, ctx *Context) (Table, error)
	Encode(t Table, ctx *Context) (map[Tag][]byte, error)
}
