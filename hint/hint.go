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

// Package hint reads and writes the TrueType hinting tables
// "fpgm", "prep" and "cvt ".
package hint

import (
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/table"
)

// The table tags covered by this package.
var (
	FpgmTag = table.MakeTag("fpgm")
	PrepTag = table.MakeTag("prep")
	CvtTag  = table.MakeTag("cvt ")
)

// Program is a TrueType instruction program from the "fpgm" or "prep"
// table.  The instructions are not interpreted by the toolkit.
type Program []byte

// TableKind implements the [table.Table] interface.
func (p Program) TableKind() table.Kind { return table.KindHinting }

// ControlValues is the contents of the "cvt " table, a list of values
// referenced by TrueType instructions.
type ControlValues []funit.Int16

// TableKind implements the [table.Table] interface.
func (cv ControlValues) TableKind() table.Kind { return table.KindHinting }

// Encode returns the binary form of the "cvt " table.
func (cv ControlValues) Encode() []byte {
	res := make([]byte, 2*len(cv))
	for i, v := range cv {
		res[2*i] = byte(uint16(v) >> 8)
		res[2*i+1] = byte(v)
	}
	return res
}

// DecodeCvt parses the "cvt " table.
func DecodeCvt(data []byte) (ControlValues, error) {
	if len(data)%2 != 0 {
		return nil, table.Malformedf(CvtTag, "odd table length %d", len(data))
	}
	cv := make(ControlValues, len(data)/2)
	for i := range cv {
		cv[i] = funit.Int16(data[2*i])<<8 | funit.Int16(data[2*i+1])
	}
	return cv, nil
}

// The codecs for the hinting tables.
var (
	FpgmCodec table.Codec = programCodec{tag: FpgmTag}
	PrepCodec table.Codec = programCodec{tag: PrepTag}
	CvtCodec  table.Codec = cvtCodec{}
)

type programCodec struct {
	tag table.Tag
}

func (c programCodec) Tags() []table.Tag { return []table.Tag{c.tag} }
func (c programCodec) Kind() table.Kind  { return table.KindHinting }

func (c programCodec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return Program(raw[c.tag]), nil
}

func (c programCodec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	p, ok := t.(Program)
	if !ok {
		return nil, &table.EncodeError{Tag: c.tag, Msg: "wrong table type"}
	}
	return map[table.Tag][]byte{c.tag: []byte(p)}, nil
}

type cvtCodec struct{}

func (cvtCodec) Tags() []table.Tag { return []table.Tag{CvtTag} }
func (cvtCodec) Kind() table.Kind  { return table.KindHinting }

func (cvtCodec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return DecodeCvt(raw[CvtTag])
}

func (cvtCodec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	cv, ok := t.(ControlValues)
	if !ok {
		return nil, &table.EncodeError{Tag: CvtTag, Msg: "wrong table type"}
	}
	return map[table.Tag][]byte{CvtTag: cv.Encode()}, nil
}
