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

// Package name reads and writes OpenType "name" tables.
// These tables contain localized strings associated with a font.
// https://docs.microsoft.com/en-us/typography/opentype/spec/name
package name

import (
	"sort"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"

	"seehuhn.de/go/foundry/table"
)

// Tag is the table tag of the "name" table.
var Tag = table.MakeTag("name")

// ID identifies a name within the "name" table.
type ID uint16

// Predefined name IDs.
// https://docs.microsoft.com/en-us/typography/opentype/spec/name#name-ids
const (
	Copyright      ID = 0
	Family         ID = 1
	Subfamily      ID = 2
	UniqueID       ID = 3
	FullName       ID = 4
	Version        ID = 5
	PostScriptName ID = 6
	Trademark      ID = 7
	Manufacturer   ID = 8
	Designer       ID = 9
	Description    ID = 10
	VendorURL      ID = 11
	DesignerURL    ID = 12
	License        ID = 13
	LicenseURL     ID = 14
	TypoFamily     ID = 16
	TypoSubfamily  ID = 17
	SampleText     ID = 19
)

// Key identifies one record of the "name" table.
type Key struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	Name       ID
}

// The language IDs used when setting names.
const (
	winLangEnUS uint16 = 0x0409
	macLangEn   uint16 = 0
)

// Info contains the contents of a "name" table.
// Strings in Windows Unicode BMP (3, 1) and Macintosh Roman (1, 0)
// encodings are decoded; records in other encodings are carried as
// raw bytes so that no information is lost.
type Info struct {
	Records map[Key]string
	Raw     map[Key][]byte
}

// TableKind implements the [table.Table] interface.
func (info *Info) TableKind() table.Kind { return table.KindNames }

// New returns an empty name table.
func New() *Info {
	return &Info{Records: map[Key]string{}}
}

// Decode extracts the information from the "name" table.
func Decode(data []byte) (*Info, error) {
	if len(data) < 6 {
		return nil, table.Truncatedf(Tag, "%d bytes", len(data))
	}
	version := uint16(data[0])<<8 | uint16(data[1])
	numRec := int(data[2])<<8 | int(data[3])
	storageOffset := int(data[4])<<8 | int(data[5])

	if version > 1 {
		return nil, table.Unsupportedf(Tag, "table version %d", version)
	}

	recBase := 6
	endOfHeader := recBase + 12*numRec
	if endOfHeader > len(data) {
		return nil, table.Truncatedf(Tag, "%d records", numRec)
	}

	if version > 0 {
		if endOfHeader+2 > len(data) {
			return nil, table.Truncatedf(Tag, "language tag records")
		}
		numLang := int(data[endOfHeader])<<8 | int(data[endOfHeader+1])
		endOfHeader += 2 + numLang*4
	}
	if storageOffset < endOfHeader || storageOffset > len(data) {
		return nil, table.Malformedf(Tag, "storage offset %d", storageOffset)
	}

	info := &Info{Records: map[Key]string{}}
	for i := 0; i < numRec; i++ {
		pos := recBase + i*12
		key := Key{
			PlatformID: uint16(data[pos])<<8 | uint16(data[pos+1]),
			EncodingID: uint16(data[pos+2])<<8 | uint16(data[pos+3]),
			LanguageID: uint16(data[pos+4])<<8 | uint16(data[pos+5]),
			Name:       ID(data[pos+6])<<8 | ID(data[pos+7]),
		}
		nameLen := int(data[pos+8])<<8 | int(data[pos+9])
		nameOffset := int(data[pos+10])<<8 | int(data[pos+11])

		if storageOffset+nameOffset+nameLen > len(data) {
			return nil, table.Malformedf(Tag, "record %d outside string storage", i)
		}
		nameBytes := data[storageOffset+nameOffset : storageOffset+nameOffset+nameLen]

		switch {
		case key.PlatformID == 3 && key.EncodingID == 1, // Windows, Unicode BMP
			key.PlatformID == 3 && key.EncodingID == 10, // Windows, full Unicode
			key.PlatformID == 0: // Unicode platform
			info.Records[key] = utf16Decode(nameBytes)
		case key.PlatformID == 1 && key.EncodingID == 0: // Macintosh, Roman
			info.Records[key] = macDecode(nameBytes)
		default:
			if info.Raw == nil {
				info.Raw = map[Key][]byte{}
			}
			info.Raw[key] = nameBytes
		}
	}

	return info, nil
}

// Get returns the best available record for the given name ID,
// preferring US English Windows records.  It returns "" if no record
// is present.
func (info *Info) Get(nameID ID) string {
	candidates := []Key{
		{3, 1, winLangEnUS, nameID},
		{3, 10, winLangEnUS, nameID},
		{1, 0, macLangEn, nameID},
	}
	for _, key := range candidates {
		if val, ok := info.Records[key]; ok {
			return val
		}
	}
	for key, val := range info.Records {
		if key.Name == nameID {
			return val
		}
	}
	return ""
}

// Set installs a US English value for the given name ID, in both the
// Windows and the Macintosh naming conventions.
func (info *Info) Set(nameID ID, val string) {
	if info.Records == nil {
		info.Records = map[Key]string{}
	}
	info.Records[Key{3, 1, winLangEnUS, nameID}] = val
	info.Records[Key{1, 0, macLangEn, nameID}] = val
}

// Encode converts the "name" table into its binary form.
// Records are sorted and identical strings share storage, so that
// equal tables always encode to identical bytes.
func (info *Info) Encode() []byte {
	type recInfo struct {
		key    Key
		offset uint16
		length uint16
	}

	keys := make([]Key, 0, len(info.Records)+len(info.Raw))
	for key := range info.Records {
		keys = append(keys, key)
	}
	for key := range info.Raw {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].PlatformID != keys[j].PlatformID {
			return keys[i].PlatformID < keys[j].PlatformID
		}
		if keys[i].EncodingID != keys[j].EncodingID {
			return keys[i].EncodingID < keys[j].EncodingID
		}
		if keys[i].LanguageID != keys[j].LanguageID {
			return keys[i].LanguageID < keys[j].LanguageID
		}
		return keys[i].Name < keys[j].Name
	})

	b := newNameBuilder()
	records := make([]recInfo, 0, len(keys))
	for _, key := range keys {
		var enc []byte
		if raw, ok := info.Raw[key]; ok {
			enc = raw
		} else {
			val := info.Records[key]
			if key.PlatformID == 1 {
				enc = macEncode(val)
			} else {
				enc = utf16Encode(val)
			}
		}
		offset, length := b.Add(enc)
		records = append(records, recInfo{key: key, offset: offset, length: length})
	}

	numRec := len(records)
	startOfRecords := 6
	startOfStrings := startOfRecords + numRec*12
	res := make([]byte, startOfStrings+len(b.data))

	res[2] = byte(numRec >> 8)
	res[3] = byte(numRec)
	res[4] = byte(startOfStrings >> 8)
	res[5] = byte(startOfStrings)
	for i, rec := range records {
		base := startOfRecords + i*12
		res[base] = byte(rec.key.PlatformID >> 8)
		res[base+1] = byte(rec.key.PlatformID)
		res[base+2] = byte(rec.key.EncodingID >> 8)
		res[base+3] = byte(rec.key.EncodingID)
		res[base+4] = byte(rec.key.LanguageID >> 8)
		res[base+5] = byte(rec.key.LanguageID)
		res[base+6] = byte(rec.key.Name >> 8)
		res[base+7] = byte(rec.key.Name)
		res[base+8] = byte(rec.length >> 8)
		res[base+9] = byte(rec.length)
		res[base+10] = byte(rec.offset >> 8)
		res[base+11] = byte(rec.offset)
	}
	copy(res[startOfStrings:], b.data)

	return res
}

type nameBuilder struct {
	data []byte
	idx  map[string]uint16
}

func newNameBuilder() *nameBuilder {
	return &nameBuilder{
		idx: make(map[string]uint16),
	}
}

func (nb *nameBuilder) Add(b []byte) (offs, length uint16) {
	key := string(b)
	if idx, ok := nb.idx[key]; ok {
		return idx, uint16(len(b))
	}
	idx := uint16(len(nb.data))
	nb.idx[key] = idx
	nb.data = append(nb.data, b...)
	return idx, uint16(len(b))
}

func utf16Encode(s string) []byte {
	rr := utf16.Encode([]rune(s))
	res := make([]byte, len(rr)*2)
	for i, r := range rr {
		res[i*2] = byte(r >> 8)
		res[i*2+1] = byte(r)
	}
	return res
}

func utf16Decode(buf []byte) string {
	var nameWords []uint16
	for i := 0; i+1 < len(buf); i += 2 {
		nameWords = append(nameWords, uint16(buf[i])<<8|uint16(buf[i+1]))
	}
	return string(utf16.Decode(nameWords))
}

func macDecode(buf []byte) string {
	rr := make([]rune, len(buf))
	for i, b := range buf {
		rr[i] = charmap.Macintosh.DecodeByte(b)
	}
	return string(rr)
}

func macEncode(s string) []byte {
	var res []byte
	for _, r := range s {
		b, ok := charmap.Macintosh.EncodeRune(r)
		if !ok {
			b = '?'
		}
		res = append(res, b)
	}
	return res
}

// Codec decodes and encodes the "name" table.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag} }
func (codec) Kind() table.Kind  { return table.KindNames }

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
