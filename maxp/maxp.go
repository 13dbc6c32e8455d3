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

// Package maxp reads and writes the "maxp" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/maxp
package maxp

import (
	"bytes"
	"encoding/binary"

	"seehuhn.de/go/foundry/table"
)

// Tag is the table tag of the "maxp" table.
var Tag = table.MakeTag("maxp")

// Info represents the information in the "maxp" table.
// TTF is nil for fonts with CFF outlines (table version 0.5).
type Info struct {
	NumGlyphs int
	TTF       *TTFInfo
}

// TTFInfo contains the additional fields of a version 1.0 "maxp" table,
// used by fonts with TrueType outlines.
type TTFInfo struct {
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

// TableKind implements the [table.Table] interface.
func (info *Info) TableKind() table.Kind { return table.KindHeader }

// Decode parses the binary representation of the maxp table.
func Decode(data []byte) (*Info, error) {
	if len(data) < 6 {
		return nil, table.Truncatedf(Tag, "%d bytes", len(data))
	}
	version := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	numGlyphs := int(data[4])<<8 | int(data[5])

	info := &Info{NumGlyphs: numGlyphs}
	switch version {
	case 0x00005000:
		// no TrueType maxima
	case 0x00010000:
		if len(data) < 32 {
			return nil, table.Truncatedf(Tag, "version 1.0 table with %d bytes", len(data))
		}
		ttf := &TTFInfo{}
		err := binary.Read(bytes.NewReader(data[6:32]), binary.BigEndian, ttf)
		if err != nil {
			return nil, table.Malformedf(Tag, "%s", err)
		}
		info.TTF = ttf
	default:
		return nil, table.Unsupportedf(Tag, "table version %08x", version)
	}
	return info, nil
}

// Encode returns the binary representation of the maxp table.
func (info *Info) Encode() []byte {
	numGlyphs := uint16(info.NumGlyphs)
	if info.TTF == nil {
		return []byte{
			0x00, 0x00, 0x50, 0x00,
			byte(numGlyphs >> 8), byte(numGlyphs),
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, 32))
	buf.Write([]byte{
		0x00, 0x01, 0x00, 0x00,
		byte(numGlyphs >> 8), byte(numGlyphs),
	})
	_ = binary.Write(buf, binary.BigEndian, info.TTF)
	return buf.Bytes()
}

// Codec decodes and encodes the "maxp" table.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag} }
func (codec) Kind() table.Kind  { return table.KindHeader }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return Decode(raw[Tag])
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	info, ok := t.(*Info)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	return map[table.Tag][]byte{Tag: info.Encode()}, nil
}
