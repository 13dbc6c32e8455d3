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

// Package post reads and writes the "post" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/post
package post

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/table"
)

// Tag is the table tag of the "post" table.
var Tag = table.MakeTag("post")

// Info contains information from the "post" table.
type Info struct {
	ItalicAngle        float64     // Italic angle in degrees
	UnderlinePosition  funit.Int16 // Underline position (negative)
	UnderlineThickness funit.Int16 // Underline thickness
	IsFixedPitch       bool

	Names []string // can be nil (version 3.0, no glyph names)
}

// TableKind implements the [table.Table] interface.
func (info *Info) TableKind() table.Kind { return table.KindNames }

// Read reads the "post" table from r.
func Read(r io.Reader) (*Info, error) {
	post := &postEnc{}
	if err := binary.Read(r, binary.BigEndian, post); err != nil {
		return nil, table.Truncatedf(Tag, "%s", err)
	}

	info := &Info{
		ItalicAngle:        float64(post.ItalicAngle) / 65536,
		UnderlinePosition:  post.UnderlinePosition,
		UnderlineThickness: post.UnderlineThickness,
		IsFixedPitch:       post.IsFixedPitch != 0,
	}

	switch post.Version {
	case 0x00010000:
		info.Names = macRoman

	case 0x00020000:
		r := bufio.NewReader(r)
		var buf [2]byte
		_, err := io.ReadFull(r, buf[:])
		if err != nil {
			return nil, table.Truncatedf(Tag, "%s", err)
		}
		numGlyphs := int(buf[0])<<8 | int(buf[1])
		indexBuf := make([]byte, 2*numGlyphs)
		_, err = io.ReadFull(r, indexBuf)
		if err != nil {
			return nil, table.Truncatedf(Tag, "%s", err)
		}

		var names []string

		info.Names = make([]string, numGlyphs)
		nameBuf := make([]byte, 255)
		nMac := len(macRoman)
		for i := 0; i < numGlyphs; i++ {
			idx := int(indexBuf[2*i])<<8 | int(indexBuf[2*i+1])
			if idx < nMac {
				info.Names[i] = macRoman[idx]
			} else {
				idx -= nMac
				for len(names) <= idx {
					l, err := r.ReadByte()
					if err != nil {
						return nil, table.Truncatedf(Tag, "%s", err)
					}
					_, err = io.ReadFull(r, nameBuf[:l])
					if err != nil {
						return nil, table.Truncatedf(Tag, "%s", err)
					}
					names = append(names, string(nameBuf[:l]))
				}
				info.Names[i] = names[idx]
			}
		}

	case 0x00030000:
		// no glyph name information

	case 0x00040000:
		// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6post.html
		// pass

	default:
		return nil, table.Unsupportedf(Tag, "table version %08x", post.Version)
	}

	return info, nil
}

// Encode encodes the "post" table.
// The version is chosen from the glyph names: 3.0 if no names are
// present, 1.0 if the names are exactly the standard Macintosh set,
// and 2.0 otherwise.
func (info *Info) Encode() []byte {
	var version uint32
	if info.Names == nil {
		version = 0x00030000
	} else if isMacRoman(info.Names) {
		version = 0x00010000
	} else {
		version = 0x00020000
	}

	header := &postEnc{
		Version:            version,
		ItalicAngle:        int32(math.Round(info.ItalicAngle * 65536)),
		UnderlinePosition:  info.UnderlinePosition,
		UnderlineThickness: info.UnderlineThickness,
	}
	if info.IsFixedPitch {
		header.IsFixedPitch = 1
	}
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, header)

	if version == 0x00020000 {
		numGlyphs := len(info.Names)
		buf.Write([]byte{byte(numGlyphs >> 8), byte(numGlyphs)})

		mac := make(map[string]int, len(macRoman))
		for i, name := range macRoman {
			mac[name] = i
		}
		var stringData []byte
		numStrings := 0

		for _, name := range info.Names {
			idx, ok := mac[name]
			if !ok {
				idx = len(macRoman) + numStrings
				if len(name) > 255 {
					name = name[:255]
				}
				stringData = append(stringData, byte(len(name)))
				stringData = append(stringData, name...)
				numStrings++
			}
			buf.Write([]byte{byte(idx >> 8), byte(idx)})
		}
		buf.Write(stringData)
	}

	return buf.Bytes()
}

type postEnc struct {
	Version            uint32
	ItalicAngle        int32
	UnderlinePosition  funit.Int16
	UnderlineThickness funit.Int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32
}

// Codec decodes and encodes the "post" table.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag} }
func (codec) Kind() table.Kind  { return table.KindNames }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return Read(bytes.NewReader(raw[Tag]))
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	info, ok := t.(*Info)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	if info.Names != nil && ctx != nil && ctx.NumGlyphs > 0 && len(info.Names) != ctx.NumGlyphs {
		return nil, &table.EncodeError{Tag: Tag, Msg: "glyph name count mismatch"}
	}
	return map[table.Tag][]byte{Tag: info.Encode()}, nil
}
