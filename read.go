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
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/table"
)

// Read reads a binary font file.  Tables the toolkit has no codec for
// are kept as opaque byte blobs and written back out unchanged.
func Read(r io.ReaderAt) (*Font, error) {
	var buf [16]byte
	_, err := r.ReadAt(buf[:6], 0)
	if err != nil {
		return nil, err
	}
	scalerType := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	numTables := int(buf[4])<<8 | int(buf[5])

	if scalerType != ScalerTypeTrueType &&
		scalerType != ScalerTypeCFF &&
		scalerType != ScalerTypeApple {
		return nil, fmt.Errorf("sfnt: unsupported scaler type 0x%08x", scalerType)
	}
	if numTables > 280 {
		// the largest value observed in the wild is around 30
		return nil, errors.New("sfnt: too many tables")
	}

	type record struct {
		Tag    table.Tag
		Offset uint32
		Length uint32
	}
	records := make([]record, 0, numTables)
	endOfHeader := uint32(12 + 16*numTables)
	for i := 0; i < numTables; i++ {
		_, err := r.ReadAt(buf[:], int64(12+i*16))
		if err != nil {
			return nil, err
		}
		rec := record{
			Tag:    table.Tag{buf[0], buf[1], buf[2], buf[3]},
			Offset: uint32(buf[8])<<24 | uint32(buf[9])<<16 | uint32(buf[10])<<8 | uint32(buf[11]),
			Length: uint32(buf[12])<<24 | uint32(buf[13])<<16 | uint32(buf[14])<<8 | uint32(buf[15]),
		}
		if !isPrintableTag(rec.Tag) {
			continue
		}
		if rec.Offset < endOfHeader || rec.Offset+rec.Length < rec.Offset {
			return nil, fmt.Errorf("sfnt: invalid offset for table %q", rec.Tag)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.New("sfnt: no tables found")
	}

	// Tables must not overlap.  Order the records by file position;
	// this is also the physical order used when writing the font back
	// out, so that unchanged fonts round-trip byte for byte.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Offset != records[j].Offset {
			return records[i].Offset < records[j].Offset
		}
		return records[i].Offset+records[i].Length < records[j].Offset+records[j].Length
	})
	for i := 1; i < len(records); i++ {
		if records[i-1].Offset+records[i-1].Length > records[i].Offset {
			return nil, errors.New("sfnt: overlapping tables")
		}
	}

	f := New()
	f.ScalerType = scalerType
	for _, rec := range records {
		if _, seen := f.raw[rec.Tag]; seen {
			return nil, fmt.Errorf("sfnt: duplicate table %q", rec.Tag)
		}
		data := make([]byte, rec.Length)
		n, err := r.ReadAt(data, int64(rec.Offset))
		if n < len(data) {
			if err == io.EOF {
				return nil, fmt.Errorf("sfnt: table %q extends beyond EOF", rec.Tag)
			}
			return nil, err
		}
		f.raw[rec.Tag] = data
		f.order = append(f.order, rec.Tag)
	}

	// The font-wide context cannot be assembled without these, so a
	// corrupted "head" or "maxp" table makes the font unusable.
	if f.Has(head.Tag) {
		_, err = f.headInfo()
		if err != nil {
			return nil, err
		}
	}
	if f.Has(maxp.Tag) {
		_, err = f.maxpInfo()
		if err != nil {
			return nil, err
		}
	}

	return f, nil
}

// ReadFile reads a binary font file from the file system.
func ReadFile(fname string) (*Font, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data))
}

func isPrintableTag(tag table.Tag) bool {
	for _, c := range tag {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}
