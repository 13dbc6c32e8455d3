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

// Package cffglyphs adapts the CFF font format for the table registry.
// Parsing and serialization are delegated to seehuhn.de/go/sfnt/cff;
// this package only maps between the toolkit's table model and the
// cff.Font type.
package cffglyphs

import (
	"bytes"

	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/table"
)

// Tag is the table tag of the "CFF " table.
var Tag = table.MakeTag("CFF ")

// Outlines holds the glyph outlines of a font with CFF glyph data.
type Outlines struct {
	Font *cff.Font
}

// TableKind implements the [table.Table] interface.
func (o *Outlines) TableKind() table.Kind { return table.KindOutlines }

// Decode parses a "CFF " table.  CID-keyed fonts are reported as
// unsupported; the caller keeps the table as an opaque blob in this
// case.
func Decode(data []byte) (*Outlines, error) {
	font, err := cff.Read(bytes.NewReader(data))
	if err != nil {
		return nil, table.Malformedf(Tag, "%s", err)
	}
	if font.IsCIDKeyed() {
		return nil, table.Unsupportedf(Tag, "CID-keyed font")
	}
	return &Outlines{Font: font}, nil
}

// Encode returns the binary form of the "CFF " table.
func (o *Outlines) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	err := o.Font.Write(buf)
	if err != nil {
		return nil, &table.EncodeError{Tag: Tag, Msg: err.Error()}
	}
	return buf.Bytes(), nil
}

// NumGlyphs returns the number of glyphs in the font.
func (o *Outlines) NumGlyphs() int {
	return len(o.Font.Glyphs)
}

// Names returns the glyph names, in glyph ID order.
func (o *Outlines) Names() []string {
	res := make([]string, len(o.Font.Glyphs))
	for i, g := range o.Font.Glyphs {
		res[i] = g.Name
	}
	return res
}

// Widths returns the advance widths, in glyph ID order.
func (o *Outlines) Widths() []uint16 {
	res := make([]uint16, len(o.Font.Glyphs))
	for i, g := range o.Font.Glyphs {
		res[i] = uint16(g.Width)
	}
	return res
}

// Rename changes the name of the given glyph.
func (o *Outlines) Rename(gid glyph.ID, name string) {
	o.Font.Glyphs[gid].Name = name
}

// Extent returns the bounding box of a glyph, computed from the
// charstring path.  Control points are included, so the box can be
// slightly larger than the exact extent of the curves.
func (o *Outlines) Extent(gid glyph.ID) funit.Rect {
	var rect funit.Rect
	first := true
	for _, cmd := range o.Font.Glyphs[gid].Cmds {
		for i := 0; i+1 < len(cmd.Args); i += 2 {
			x := funit.Int16(cmd.Args[i])
			y := funit.Int16(cmd.Args[i+1])
			if first {
				rect = funit.Rect{LLx: x, LLy: y, URx: x, URy: y}
				first = false
				continue
			}
			if x < rect.LLx {
				rect.LLx = x
			}
			if y < rect.LLy {
				rect.LLy = y
			}
			if x > rect.URx {
				rect.URx = x
			}
			if y > rect.URy {
				rect.URy = y
			}
		}
	}
	return rect
}

// Subset returns a copy of the outlines restricted to the given
// glyphs, which must be sorted and include glyph 0.
func (o *Outlines) Subset(keep []glyph.ID) *Outlines {
	sub := &cff.Font{
		FontInfo: o.Font.FontInfo,
		Outlines: o.Font.Outlines.Subset(keep),
	}
	return &Outlines{Font: sub}
}

// RemoveHints drops the hinting information from the private
// dictionaries.
func (o *Outlines) RemoveHints() {
	for i := range o.Font.Private {
		o.Font.Private[i] = &type1.PrivateDict{}
	}
}

// Codec decodes and encodes the "CFF " table.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag} }
func (codec) Kind() table.Kind  { return table.KindOutlines }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return Decode(raw[Tag])
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	o, ok := t.(*Outlines)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	data, err := o.Encode()
	if err != nil {
		return nil, err
	}
	return map[table.Tag][]byte{Tag: data}, nil
}
