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

package head

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/foundry/funit"
)

var testCases = []struct {
	name string
	info *Info
}{
	{
		name: "minimal",
		info: &Info{
			UnitsPerEm: 1000,
		},
	},
	{
		name: "full",
		info: &Info{
			FontRevision: 0x00018000, // 1.5
			HasYBaseAt0:  true,
			HasXBaseAt0:  true,
			IsNonlinear:  true,
			UnitsPerEm:   2048,
			Created:      time.Date(2020, time.March, 1, 12, 0, 0, 0, time.UTC),
			Modified:     time.Date(2024, time.July, 15, 8, 30, 0, 0, time.UTC),
			FontBBox: funit.Rect{
				LLx: -100, LLy: -300, URx: 1500, URy: 900,
			},
			IsBold:         true,
			IsItalic:       true,
			HasUnderline:   true,
			IsCondensed:    true,
			LowestRecPPEM:  7,
			HasLongOffsets: true,
		},
	},
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.info.Encode()
			got := &Info{}
			err := got.Decode(data)
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.info, got); d != "" {
				t.Errorf("round trip failed (-want +got):\n%s", d)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	info := &Info{}

	err := info.Decode(make([]byte, 10))
	if err == nil {
		t.Error("expected error for truncated table")
	}

	data := testCases[0].info.Encode()
	data[12]++ // break the magic number
	err = info.Decode(data)
	if err == nil {
		t.Error("expected error for invalid magic number")
	}
}

func TestPatchChecksum(t *testing.T) {
	data := testCases[0].info.Encode()
	PatchChecksum(data, 0x12345678)
	got := binary.BigEndian.Uint32(data[8:12])
	if got+0x12345678 != 0xB1B0AFBA {
		t.Errorf("wrong checksum adjustment 0x%08x", got)
	}
}

func TestVersionString(t *testing.T) {
	if s := Version(0x00018000).String(); s != "1.500" {
		t.Errorf("got %q", s)
	}
}
