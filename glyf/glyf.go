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

// Package glyf reads and writes the "glyf" and "loca" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf
// https://docs.microsoft.com/en-us/typography/opentype/spec/loca
package glyf

import (
	"seehuhn.de/go/foundry/table"
)

// The table tags covered by this package.
var (
	Tag     = table.MakeTag("glyf")
	LocaTag = table.MakeTag("loca")
)

// Glyphs contains the information from a "glyf" table.
// A nil entry represents an empty glyph (no outline).
type Glyphs []*Glyph

// TableKind implements the [table.Table] interface.
func (gg Glyphs) TableKind() table.Kind { return table.KindOutlines }

// Encoded is the binary form of the "glyf" and "loca" table pair.
type Encoded struct {
	GlyfData   []byte
	LocaData   []byte
	LocaFormat int16
}

// Decode converts the data from the "glyf" and "loca" tables into a
// slice of Glyphs.  The value for LocaFormat is specified in the
// indexToLocFormat entry in the "head" table.
func Decode(enc *Encoded) (Glyphs, error) {
	offs, err := decodeLoca(enc)
	if err != nil {
		return nil, err
	}

	numGlyphs := len(offs) - 1

	gg := make(Glyphs, numGlyphs)
	for i := range gg {
		data := enc.GlyfData[offs[i]:offs[i+1]]
		g, err := decodeGlyph(data)
		if err != nil {
			return nil, err
		}
		gg[i] = g
	}

	return gg, nil
}

// Encode encodes the glyphs into a "glyf" and "loca" table.
func (gg Glyphs) Encode() (*Encoded, error) {
	n := len(gg)

	offs := make([]int, n+1)
	offs[0] = 0
	for i, g := range gg {
		l := g.encodeLen()
		offs[i+1] = offs[i] + l
	}
	locaData, locaFormat := encodeLoca(offs)

	glyfData := make([]byte, 0, offs[n])
	for _, g := range gg {
		glyfData = g.append(glyfData)
	}

	enc := &Encoded{
		GlyfData:   glyfData,
		LocaData:   locaData,
		LocaFormat: locaFormat,
	}

	return enc, nil
}

// RemoveInstructions strips the TrueType hinting programs from all
// glyphs.
func (gg Glyphs) RemoveInstructions() error {
	for i, g := range gg {
		if g == nil {
			continue
		}
		switch d := g.Data.(type) {
		case SimpleGlyph:
			info, err := d.Decode()
			if err != nil {
				return err
			}
			if len(info.Instructions) == 0 {
				continue
			}
			info.Instructions = nil
			d2, err := info.Encode()
			if err != nil {
				return err
			}
			gg[i] = &Glyph{Rect: g.Rect, Data: d2}
		case CompositeGlyph:
			if len(d.Instructions) == 0 {
				continue
			}
			d2 := CompositeGlyph{
				Components: make([]GlyphComponent, len(d.Components)),
			}
			for j, c := range d.Components {
				d2.Components[j] = GlyphComponent{
					Flags:      c.Flags &^ 0x0100, // WE_HAVE_INSTRUCTIONS
					GlyphIndex: c.GlyphIndex,
					Args:       c.Args,
				}
			}
			gg[i] = &Glyph{Rect: g.Rect, Data: d2}
		}
	}
	return nil
}

// Codec decodes and encodes the "glyf"/"loca" table pair.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag, LocaTag} }
func (codec) Kind() table.Kind  { return table.KindOutlines }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	enc := &Encoded{
		GlyfData: raw[Tag],
		LocaData: raw[LocaTag],
	}
	if ctx != nil && ctx.HasLongLoca {
		enc.LocaFormat = 1
	}
	return Decode(enc)
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	gg, ok := t.(Glyphs)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	enc, err := gg.Encode()
	if err != nil {
		return nil, err
	}
	return map[table.Tag][]byte{Tag: enc.GlyfData, LocaTag: enc.LocaData}, nil
}
