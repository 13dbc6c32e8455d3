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

// Package kern reads and writes the "kern" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/kern
package kern

import (
	"bytes"
	"math/bits"
	"sort"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/table"
)

// Tag is the table tag of the "kern" table.
var Tag = table.MakeTag("kern")

// Pair is a pair of glyphs for kerning.
type Pair struct {
	Left, Right glyph.ID
}

// Info contains the horizontal kerning pairs from the "kern" table.
// If the value for a glyph pair is greater than zero, the glyphs are
// moved apart; if it is less than zero, they are moved closer together.
type Info map[Pair]funit.Int16

// TableKind implements the [table.Table] interface.
func (info Info) TableKind() table.Kind { return table.KindLayout }

// Decode parses the "kern" table.  Only format 0 subtables for
// horizontal kerning are used; other subtables are skipped.
func Decode(data []byte) (Info, error) {
	if len(data) < 4 {
		return nil, table.Truncatedf(Tag, "%d bytes", len(data))
	}
	version := uint16(data[0])<<8 | uint16(data[1])
	if version != 0 {
		return nil, table.Unsupportedf(Tag, "table version %d", version)
	}
	nTables := int(data[2])<<8 | int(data[3])

	res := make(Info)

	pos := 4
	for i := 0; i < nTables; i++ {
		if pos+6 > len(data) {
			return nil, table.Truncatedf(Tag, "subtable %d header", i)
		}
		subtableVersion := uint16(data[pos])<<8 | uint16(data[pos+1])
		length := int(data[pos+2])<<8 | int(data[pos+3])
		format := data[pos+4]
		flags := data[pos+5]

		if length < 6+8 || pos+length > len(data) {
			return nil, table.Malformedf(Tag, "subtable %d length %d", i, length)
		}
		sub := data[pos+6 : pos+length]
		pos += length

		if subtableVersion != 0 || format != 0 || flags&0b11110101 != 1 {
			continue
		}
		isMinimum := flags&0b00000010 != 0
		isOverride := flags&0b00001000 != 0

		if len(sub) < 8 {
			return nil, table.Truncatedf(Tag, "subtable %d", i)
		}
		nPairs := int(sub[0])<<8 | int(sub[1])
		sub = sub[8:] // skip searchRange, entrySelector and rangeShift
		if len(sub) < 6*nPairs {
			return nil, table.Truncatedf(Tag, "subtable %d with %d pairs", i, nPairs)
		}
		for j := 0; j < nPairs; j++ {
			left := glyph.ID(sub[6*j])<<8 | glyph.ID(sub[6*j+1])
			right := glyph.ID(sub[6*j+2])<<8 | glyph.ID(sub[6*j+3])
			value := funit.Int16(sub[6*j+4])<<8 | funit.Int16(sub[6*j+5])
			key := Pair{Left: left, Right: right}
			if isMinimum {
				if res[key] < value {
					res[key] = value
				}
			} else if isOverride {
				res[key] = value
			} else {
				res[key] += value
			}
		}
	}

	return res, nil
}

// Encode converts the kerning pairs to their binary representation,
// a single format 0 subtable with the pairs in sorted order.
func (info Info) Encode() []byte {
	nPairs := len(info)
	headerLen := 4
	subHeaderLen := 14
	subTableLen := subHeaderLen + 6*nPairs
	buf := make([]byte, 0, headerLen+subTableLen)

	var entrySelector, searchRange, rangeShift int
	if nPairs > 0 {
		entrySelector = bits.Len(uint(nPairs)) - 1
		searchRange = 6 * (1 << entrySelector)
		rangeShift = 6 * (nPairs - 1<<entrySelector)
	}
	buf = append(buf,
		0, 0, // version
		0, 1, // numTables

		0, 0, // subtable version
		byte(subTableLen>>8), byte(subTableLen),
		0, 1, // coverage

		byte(nPairs>>8), byte(nPairs),
		byte(searchRange>>8), byte(searchRange),
		byte(entrySelector>>8), byte(entrySelector),
		byte(rangeShift>>8), byte(rangeShift),
	)
	for pair, val := range info {
		buf = append(buf,
			byte(pair.Left>>8), byte(pair.Left),
			byte(pair.Right>>8), byte(pair.Right),
			byte(val>>8), byte(val),
		)
	}
	sort.Sort(blocks(buf[headerLen+subHeaderLen:]))

	return buf
}

type blocks []byte

func (a blocks) Len() int { return len(a) / 6 }
func (a blocks) Swap(i, j int) {
	var tmp [6]byte
	copy(tmp[:], a[i*6:])
	copy(a[i*6:], a[j*6:(j+1)*6])
	copy(a[j*6:], tmp[:])
}
func (a blocks) Less(i, j int) bool {
	return bytes.Compare(a[i*6:(i+1)*6], a[j*6:(j+1)*6]) < 0
}

// Codec decodes and encodes the "kern" table.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag} }
func (codec) Kind() table.Kind  { return table.KindLayout }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return Decode(raw[Tag])
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	info, ok := t.(Info)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	return map[table.Tag][]byte{Tag: info.Encode()}, nil
}
