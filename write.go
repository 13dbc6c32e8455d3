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

package foundry

import (
	"bytes"
	"io"
	"math/bits"
	"os"

	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/table"
)

// Write writes the font to w.  Modified tables are re-encoded, and the
// "head", "maxp" and "loca" tables are brought back in sync with the
// glyph outlines first.  Unmodified tables are written back unchanged,
// in their original file positions, so that a font which was read and
// not modified round-trips byte for byte.
func (f *Font) Write(w io.Writer) (int64, error) {
	err := f.syncDerived()
	if err != nil {
		return 0, err
	}
	err = f.CheckReferences()
	if err != nil {
		return 0, err
	}

	for _, tag := range f.Tags() {
		p := f.primary(tag)
		if f.dirty[p] {
			err := f.flush(p)
			if err != nil {
				return 0, err
			}
		}
	}

	numTables := len(f.order)
	entrySelector := bits.Len(uint(numTables)) - 1

	var headerBuf bytes.Buffer
	headerBuf.Write([]byte{
		byte(f.ScalerType >> 24), byte(f.ScalerType >> 16),
		byte(f.ScalerType >> 8), byte(f.ScalerType),
		byte(numTables >> 8), byte(numTables),
	})
	searchRange := 1 << (entrySelector + 4)
	rangeShift := 16*numTables - searchRange
	headerBuf.Write([]byte{
		byte(searchRange >> 8), byte(searchRange),
		byte(entrySelector >> 8), byte(entrySelector),
		byte(rangeShift >> 8), byte(rangeShift),
	})

	// Directory entries are sorted by tag; table bodies keep the
	// physical order recorded in f.order.
	bodies := make(map[table.Tag][]byte, numTables)
	offsets := make(map[table.Tag]uint32, numTables)
	var totalSum uint32
	offset := uint32(12 + 16*numTables)
	for _, tag := range f.order {
		body := f.raw[tag]
		if tag == head.Tag {
			// Do not modify the caller's copy when patching the
			// checksum below.
			body = append([]byte{}, body...)
			if len(body) >= 12 {
				body[8], body[9], body[10], body[11] = 0, 0, 0, 0
			}
		}
		bodies[tag] = body
		offsets[tag] = offset
		totalSum += checksum(body)
		offset += 4 * ((uint32(len(body)) + 3) / 4)
	}

	for _, tag := range sortTags(f.order) {
		body := bodies[tag]
		sum := checksum(body)
		headerBuf.Write([]byte{
			tag[0], tag[1], tag[2], tag[3],
			byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum),
			byte(offsets[tag] >> 24), byte(offsets[tag] >> 16),
			byte(offsets[tag] >> 8), byte(offsets[tag]),
			byte(len(body) >> 24), byte(len(body) >> 16),
			byte(len(body) >> 8), byte(len(body)),
		})
	}
	headerBytes := headerBuf.Bytes()
	totalSum += checksum(headerBytes)

	if body, ok := bodies[head.Tag]; ok && len(body) >= 12 {
		head.PatchChecksum(body, totalSum)
	}

	var totalSize int64
	n, err := w.Write(headerBytes)
	totalSize += int64(n)
	if err != nil {
		return totalSize, err
	}
	var pad [3]byte
	for _, tag := range f.order {
		body := bodies[tag]
		n, err := w.Write(body)
		totalSize += int64(n)
		if err != nil {
			return totalSize, err
		}
		if k := n % 4; k != 0 {
			l, err := w.Write(pad[:4-k])
			totalSize += int64(l)
			if err != nil {
				return totalSize, err
			}
		}
	}
	return totalSize, nil
}

// WriteFile writes the font to the file system.  The font is assembled
// in memory first, so a failed export does not leave a partially
// written file with the target name behind.
func (f *Font) WriteFile(fname string) error {
	buf := &bytes.Buffer{}
	_, err := f.Write(buf)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, buf.Bytes(), 0o644)
}

// syncDerived updates the "maxp", "head" and "loca" information which
// depends on the glyph outlines, after the outlines have been
// modified.
func (f *Font) syncDerived() error {
	if f.dirty[glyf.Tag] {
		gg, ok := f.parsed[glyf.Tag].(glyf.Glyphs)
		if !ok {
			return &table.EncodeError{Tag: glyf.Tag, Msg: "wrong table type"}
		}

		err := f.flush(glyf.Tag)
		if err != nil {
			return err
		}

		numGlyphs := len(gg)

		if f.Has(maxp.Tag) {
			maxpInfo, err := f.maxpInfo()
			if err != nil {
				return err
			}
			if maxpInfo.NumGlyphs != numGlyphs {
				maxpInfo.NumGlyphs = numGlyphs
				f.dirty[maxp.Tag] = true
			}
		}

		if f.Has(head.Tag) {
			headInfo, err := f.headInfo()
			if err != nil {
				return err
			}
			longLoca := len(f.raw[glyf.LocaTag]) == 4*(numGlyphs+1)
			var bbox funit.Rect
			for _, g := range gg {
				if g == nil {
					continue
				}
				bbox.Extend(g.Rect)
			}
			if headInfo.HasLongOffsets != longLoca || headInfo.FontBBox != bbox {
				headInfo.HasLongOffsets = longLoca
				headInfo.FontBBox = bbox
				f.dirty[head.Tag] = true
			}
		}
	}

	if f.dirty[cffglyphs.Tag] {
		o, ok := f.parsed[cffglyphs.Tag].(*cffglyphs.Outlines)
		if !ok {
			return &table.EncodeError{Tag: cffglyphs.Tag, Msg: "wrong table type"}
		}
		if f.Has(maxp.Tag) {
			maxpInfo, err := f.maxpInfo()
			if err != nil {
				return err
			}
			if maxpInfo.NumGlyphs != o.NumGlyphs() {
				maxpInfo.NumGlyphs = o.NumGlyphs()
				f.dirty[maxp.Tag] = true
			}
		}
	}

	return nil
}

// checksum computes the sfnt table checksum, the sum of the table
// contents interpreted as big-endian 32-bit words, with the table
// padded to a multiple of four bytes with zeros.
func checksum(data []byte) uint32 {
	var sum uint32
	n := len(data) &^ 3
	for i := 0; i < n; i += 4 {
		sum += uint32(data[i])<<24 | uint32(data[i+1])<<16 |
			uint32(data[i+2])<<8 | uint32(data[i+3])
	}
	var last uint32
	for i := n; i < len(data); i++ {
		last = last<<8 | uint32(data[i])
	}
	if k := len(data) - n; k > 0 {
		sum += last << (8 * (4 - k))
	}
	return sum
}
