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

// Package head reads and writes the "head" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/head
package head

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/table"
)

const headLength = 54

// Tag is the table tag of the "head" table.
var Tag = table.MakeTag("head")

// Info represents the information in the "head" table.
type Info struct {
	FontRevision   Version // set by font manufacturer
	HasYBaseAt0    bool    // baseline for font at y=0
	HasXBaseAt0    bool    // left sidebearing point at x=0 (only for TrueType)
	IsNonlinear    bool    // outline/advance width may change nonlinearly
	UnitsPerEm     uint16  // font design units per em square
	Created        time.Time
	Modified       time.Time
	FontBBox       funit.Rect
	IsBold         bool
	IsItalic       bool
	HasUnderline   bool
	IsOutline      bool
	HasShadow      bool
	IsCondensed    bool
	IsExtended     bool
	LowestRecPPEM  uint16 // smallest readable size in pixels
	HasLongOffsets bool   // "loca" table uses 32 bit offsets
}

// TableKind implements the [table.Table] interface.
func (info *Info) TableKind() table.Kind { return table.KindHeader }

// Decode parses the binary representation of the head table.
func (info *Info) Decode(data []byte) error {
	if len(data) < headLength {
		return table.Truncatedf(Tag, "%d bytes", len(data))
	}

	enc := &binaryHead{}
	err := binary.Read(bytes.NewReader(data), binary.BigEndian, enc)
	if err != nil {
		return table.Malformedf(Tag, "%s", err)
	}

	if enc.Version != 0x00010000 {
		return table.Unsupportedf(Tag, "table version %08x", enc.Version)
	}
	if enc.MagicNumber != 0x5F0F3CF5 {
		return table.Malformedf(Tag, "invalid magic number %08x", enc.MagicNumber)
	}

	info.FontRevision = Version(enc.FontRevision)

	flags := enc.Flags
	info.HasYBaseAt0 = flags&(1<<0) != 0
	info.HasXBaseAt0 = flags&(1<<1) != 0
	info.IsNonlinear = flags&(1<<2) != 0 || flags&(1<<4) != 0

	info.UnitsPerEm = enc.UnitsPerEm

	info.Created = decodeTime(enc.Created)
	info.Modified = decodeTime(enc.Modified)

	info.FontBBox = funit.Rect{
		LLx: funit.Int16(enc.XMin),
		LLy: funit.Int16(enc.YMin),
		URx: funit.Int16(enc.XMax),
		URy: funit.Int16(enc.YMax),
	}

	info.IsBold = enc.MacStyle&(1<<0) != 0
	info.IsItalic = enc.MacStyle&(1<<1) != 0
	info.HasUnderline = enc.MacStyle&(1<<2) != 0
	info.IsOutline = enc.MacStyle&(1<<3) != 0
	info.HasShadow = enc.MacStyle&(1<<4) != 0
	info.IsCondensed = enc.MacStyle&(1<<5) != 0
	info.IsExtended = enc.MacStyle&(1<<6) != 0

	info.LowestRecPPEM = enc.LowestRecPPEM
	info.HasLongOffsets = enc.IndexToLocFormat != 0

	return nil
}

// Encode returns the binary representation of the head table.
// The checkSumAdjustment field is written as zero; the container
// writer patches it after the whole font is assembled.
func (info *Info) Encode() []byte {
	var flags uint16
	if info.HasYBaseAt0 {
		flags |= 1 << 0
	}
	if info.HasXBaseAt0 {
		flags |= 1 << 1
	}
	if info.IsNonlinear {
		flags |= 1 << 2
		flags |= 1 << 4
	}
	flags |= 1 << 3
	flags |= 1 << 11
	flags |= 1 << 12
	flags |= 1 << 13

	var macStyle uint16
	if info.IsBold {
		macStyle |= 1 << 0
	}
	if info.IsItalic {
		macStyle |= 1 << 1
	}
	if info.HasUnderline {
		macStyle |= 1 << 2
	}
	if info.IsOutline {
		macStyle |= 1 << 3
	}
	if info.HasShadow {
		macStyle |= 1 << 4
	}
	if info.IsCondensed {
		macStyle |= 1 << 5
	}
	if info.IsExtended {
		macStyle |= 1 << 6
	}

	enc := &binaryHead{
		Version:           0x00010000,
		FontRevision:      uint32(info.FontRevision),
		MagicNumber:       0x5F0F3CF5,
		Flags:             flags,
		UnitsPerEm:        info.UnitsPerEm,
		Created:           encodeTime(info.Created),
		Modified:          encodeTime(info.Modified),
		XMin:              int16(info.FontBBox.LLx),
		YMin:              int16(info.FontBBox.LLy),
		XMax:              int16(info.FontBBox.URx),
		YMax:              int16(info.FontBBox.URy),
		MacStyle:          macStyle,
		LowestRecPPEM:     info.LowestRecPPEM,
		FontDirectionHint: 2,
	}

	if info.HasLongOffsets {
		enc.IndexToLocFormat = 1
	}

	buf := bytes.NewBuffer(make([]byte, 0, headLength))
	_ = binary.Write(buf, binary.BigEndian, enc)
	return buf.Bytes()
}

// PatchChecksum updates the checkSumAdjustment field in an encoded head
// table.  The argument is the checksum of the entire font, computed with
// checkSumAdjustment set to zero.
func PatchChecksum(head []byte, checksum uint32) {
	binary.BigEndian.PutUint32(head[8:12], 0xB1B0AFBA-checksum)
}

type binaryHead struct {
	Version            uint32
	FontRevision       uint32
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64
	Modified           int64

	XMin int16
	YMin int16
	XMax int16
	YMax int16

	MacStyle uint16

	LowestRecPPEM     uint16
	FontDirectionHint int16

	IndexToLocFormat int16
	GlyphDataFormat  int16
}

// Version represents the font revision in 16.16 fixed point format.
type Version uint32

func (v Version) String() string {
	return fmt.Sprintf("%.03f", float32(v)/65536)
}

var macEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func decodeTime(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return macEpoch.Add(time.Duration(secs) * time.Second)
}

func encodeTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return int64(t.Sub(macEpoch) / time.Second)
}

// Codec decodes and encodes the "head" table.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag} }
func (codec) Kind() table.Kind  { return table.KindHeader }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	info := &Info{}
	if err := info.Decode(raw[Tag]); err != nil {
		return nil, err
	}
	return info, nil
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	info, ok := t.(*Info)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	return map[table.Tag][]byte{Tag: info.Encode()}, nil
}
