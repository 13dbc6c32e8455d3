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

// Package cmap reads and writes "cmap" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cmap
package cmap

import (
	"bytes"
	"errors"
	"math"
	"sort"

	"golang.org/x/exp/slices"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry/table"
)

// Tag is the table tag of the "cmap" table.
var Tag = table.MakeTag("cmap")

// Key selects a subtable of a cmap table.
type Key struct {
	PlatformID uint16 // Platform ID.
	EncodingID uint16 // Platform-specific encoding ID.
	Language   uint16
}

// Table contains all subtables of a cmap table, in binary form.
// Subtables in formats 4 and 12 can be decoded and re-encoded; all
// other formats are carried as raw bytes.
type Table map[Key][]byte

// TableKind implements the [table.Table] interface.
func (ss Table) TableKind() table.Kind { return table.KindMapping }

// Decode returns all subtables of the given "cmap" table.
// The returned subtables are guaranteed to be at least 10 bytes long
// and to have a valid format value (0, 2, 4, 6, 8, 10, 12, 13 or 14)
// in the first two bytes.
func Decode(data []byte) (Table, error) {
	const minLength = 10 // length of an empty format 6 subtable

	if len(data) < 4 || len(data) > math.MaxUint32 {
		return nil, table.Truncatedf(Tag, "%d bytes", len(data))
	}
	version := uint16(data[0])<<8 | uint16(data[1])
	if version != 0 {
		return nil, table.Unsupportedf(Tag, "table version %d", version)
	}
	numTables := int(data[2])<<8 | int(data[3])
	if len(data) < 4+8*numTables {
		return nil, table.Truncatedf(Tag, "%d subtable records", numTables)
	}

	endOfHeader := uint32(4 + 8*numTables)
	endOfData := uint32(len(data))

	type seg struct {
		start, end uint32
	}
	var segs []seg

	res := make(Table)
	for i := 0; i < numTables; i++ {
		platformID := uint16(data[4+i*8])<<8 | uint16(data[5+i*8])
		if platformID > 4 {
			return nil, table.Malformedf(Tag, "platform ID %d", platformID)
		}
		encodingID := uint16(data[6+i*8])<<8 | uint16(data[7+i*8])

		o := uint32(data[8+i*8])<<24 |
			uint32(data[9+i*8])<<16 |
			uint32(data[10+i*8])<<8 |
			uint32(data[11+i*8])
		if o < endOfHeader || o > endOfData-minLength {
			return nil, table.Malformedf(Tag, "subtable offset %d", o)
		}

		var language uint16
		var length uint32
		format := uint16(data[o])<<8 | uint16(data[o+1])
		checkLength := uint32(minLength)
		switch format {
		case 0, 2, 4, 6:
			length = uint32(data[o+2])<<8 | uint32(data[o+3])
			language = uint16(data[o+4])<<8 | uint16(data[o+5])
		case 8, 10, 12, 13:
			checkLength = 12
			if o > endOfData-checkLength {
				return nil, table.Truncatedf(Tag, "format %d subtable header", format)
			}
			length = uint32(data[o+4])<<24 |
				uint32(data[o+5])<<16 |
				uint32(data[o+6])<<8 |
				uint32(data[o+7])
			language = uint16(data[o+10])<<8 | uint16(data[o+11])
		case 14:
			length = uint32(data[o+2])<<24 |
				uint32(data[o+3])<<16 |
				uint32(data[o+4])<<8 |
				uint32(data[o+5])
		default:
			return nil, table.Malformedf(Tag, "subtable format %d", format)
		}
		if length < checkLength || length > endOfData-o {
			return nil, table.Malformedf(Tag, "subtable length %d", length)
		}

		if platformID != 1 {
			language = 0
		}

		// check that subtables are either disjoint or identical
		idx := sort.Search(len(segs), func(i int) bool {
			return o <= segs[i].start
		})
		if idx == len(segs) || o != segs[idx].start {
			if idx > 0 && o < segs[idx-1].end ||
				idx < len(segs) && o+length > segs[idx].start {
				return nil, table.Malformedf(Tag, "overlapping subtables")
			}
			segs = slices.Insert(segs, idx, seg{o, o + length})
		}

		key := Key{
			PlatformID: platformID,
			EncodingID: encodingID,
			Language:   language,
		}
		res[key] = data[o : o+length]
	}

	return res, nil
}

// Encode converts the cmap table into binary form.
// Subtable records are sorted and identical subtables share storage,
// so that equal tables always encode to identical bytes.
func (ss Table) Encode() []byte {
	type extended struct {
		Data []byte
		Offs uint32
		Key
	}
	ext := make([]extended, 0, len(ss))
	for key, data := range ss {
		ext = append(ext, extended{
			Data: data,
			Key:  key,
		})
	}
	sort.Slice(ext, func(i, j int) bool {
		if ext[i].PlatformID != ext[j].PlatformID {
			return ext[i].PlatformID < ext[j].PlatformID
		}
		if ext[i].EncodingID != ext[j].EncodingID {
			return ext[i].EncodingID < ext[j].EncodingID
		}
		return ext[i].Language < ext[j].Language
	})

	numTables := len(ext)
	endOfHeader := uint32(4 + 8*numTables)

	pos := endOfHeader
offsLoop:
	for i, e := range ext {
		for j := 0; j < i; j++ {
			if bytes.Equal(e.Data, ext[j].Data) {
				ext[i].Offs = ext[j].Offs
				ext[i].Data = nil
				continue offsLoop
			}
		}
		ext[i].Offs = pos
		pos += uint32(len(e.Data))
	}

	res := make([]byte, endOfHeader, pos)
	// header[0] = 0
	// header[1] = 0
	res[2] = byte(numTables >> 8)
	res[3] = byte(numTables)
	for i, e := range ext {
		res[4+i*8] = byte(e.PlatformID >> 8)
		res[5+i*8] = byte(e.PlatformID)
		res[6+i*8] = byte(e.EncodingID >> 8)
		res[7+i*8] = byte(e.EncodingID)
		res[8+i*8] = byte(e.Offs >> 24)
		res[9+i*8] = byte(e.Offs >> 16)
		res[10+i*8] = byte(e.Offs >> 8)
		res[11+i*8] = byte(e.Offs)
	}
	for _, e := range ext {
		res = append(res, e.Data...)
	}

	return res
}

// Get decodes the given cmap subtable.
func (ss Table) Get(key Key) (Subtable, error) {
	data, ok := ss[key]
	if !ok {
		return nil, errors.New("cmap: no such subtable")
	}

	var code2rune func(int) rune
	if key.PlatformID == 1 {
		if key.EncodingID != 0 {
			return nil, errors.New("cmap: unsupported Mac encoding")
		}
		code2rune = macRoman
	}

	format := uint16(data[0])<<8 | uint16(data[1])
	decode := decoders[format]
	return decode(data, code2rune)
}

// GetBest selects the best subtable from a cmap table.
func (ss Table) GetBest() (Subtable, error) {
	candidates := []struct {
		PlatformID uint16
		EncodingID uint16
	}{
		{3, 10}, // full unicode
		{0, 4},
		{3, 1}, // BMP
		{0, 3},
		{1, 0}, // vintage Apple format
	}

	for _, c := range candidates {
		if sub, err := ss.Get(Key{c.PlatformID, c.EncodingID, 0}); err == nil {
			return sub, nil
		}
	}
	return nil, errors.New("cmap: no suitable subtable found")
}

// Mapping extracts the unicode mapping from the best subtable.
func (ss Table) Mapping() (map[rune]glyph.ID, error) {
	sub, err := ss.GetBest()
	if err != nil {
		return nil, err
	}
	return sub.Mapping(), nil
}

// FromMapping builds a cmap table for the given unicode mapping.
// The table contains a format 4 subtable for the Windows BMP encoding
// (3, 1), and a format 12 subtable for the full Unicode encoding
// (3, 10) if the mapping has code points beyond the BMP.
func FromMapping(m map[rune]glyph.ID) Table {
	bmp := Format4{}
	needFull := false
	for r, gid := range m {
		if gid == 0 {
			continue
		}
		if r > 0xFFFF {
			needFull = true
			continue
		}
		if r >= 0xD800 && r < 0xE000 {
			continue // surrogates cannot be mapped
		}
		bmp[uint16(r)] = gid
	}

	res := Table{
		Key{PlatformID: 3, EncodingID: 1}: bmp.Encode(0),
	}
	if needFull {
		full := MakeFormat12(m)
		res[Key{PlatformID: 3, EncodingID: 10}] = full.Encode(0)
	}
	return res
}

var (
	errMalformedSubtable     = errors.New("cmap: malformed subtable")
	errUnsupportedCmapFormat = errors.New("cmap: unsupported subtable format")
)

// Codec decodes and encodes the "cmap" table.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag} }
func (codec) Kind() table.Kind  { return table.KindMapping }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return Decode(raw[Tag])
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	ss, ok := t.(Table)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	return map[table.Tag][]byte{Tag: ss.Encode()}, nil
}
