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

package cmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/dijkstra"
	"seehuhn.de/go/sfnt/glyph"
)

var _ dijkstra.Graph[uint32, *segment, int] = makeSegments(nil)

var testMappings = []struct {
	name string
	m    map[rune]glyph.ID
}{
	{
		name: "basic_latin",
		m: map[rune]glyph.ID{
			'A': 1,
			'B': 2,
			'C': 3,
			' ': 4,
		},
	},
	{
		name: "contiguous_range",
		m: func() map[rune]glyph.ID {
			m := map[rune]glyph.ID{}
			for i := 0; i < 26; i++ {
				m['a'+rune(i)] = glyph.ID(10 + i)
			}
			return m
		}(),
	},
	{
		name: "sparse",
		m: map[rune]glyph.ID{
			0x20:   1,
			0x41:   17,
			0x1E9E: 5,
			0xFFFD: 2,
		},
	},
	{
		name: "beyond_bmp",
		m: map[rune]glyph.ID{
			'A':     1,
			0x1F600: 2,
			0x1F601: 3,
		},
	},
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range testMappings {
		t.Run(tc.name, func(t *testing.T) {
			ss := FromMapping(tc.m)
			ss2, err := Decode(ss.Encode())
			if err != nil {
				t.Fatal(err)
			}
			got, err := ss2.Mapping()
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.m, got); d != "" {
				t.Errorf("round trip failed (-want +got):\n%s", d)
			}
		})
	}
}

func TestSubtableSelection(t *testing.T) {
	bmp := map[rune]glyph.ID{'A': 1}
	ss := FromMapping(bmp)
	if _, ok := ss[Key{PlatformID: 3, EncodingID: 1}]; !ok {
		t.Error("missing Windows BMP subtable")
	}
	if _, ok := ss[Key{PlatformID: 3, EncodingID: 10}]; ok {
		t.Error("unexpected full Unicode subtable for BMP-only mapping")
	}

	full := map[rune]glyph.ID{'A': 1, 0x10000: 2}
	ss = FromMapping(full)
	if _, ok := ss[Key{PlatformID: 3, EncodingID: 10}]; !ok {
		t.Error("missing full Unicode subtable")
	}
}

func TestFormat4Lookup(t *testing.T) {
	sub := Format4{'A': 1, 'B': 2}
	data := sub.Encode(0)
	decoded, err := decodeFormat4(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if gid := decoded.Lookup('A'); gid != 1 {
		t.Errorf("Lookup('A') = %d", gid)
	}
	if gid := decoded.Lookup('z'); gid != 0 {
		t.Errorf("Lookup('z') = %d for unmapped rune", gid)
	}
}

func TestFormat12Lookup(t *testing.T) {
	m := map[rune]glyph.ID{0x1F600: 7, 0x1F601: 8, 0x1F700: 9}
	sub := MakeFormat12(m)
	decoded, err := decodeFormat12(sub.Encode(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if gid := decoded.Lookup(0x1F601); gid != 8 {
		t.Errorf("Lookup(0x1F601) = %d", gid)
	}
	if gid := decoded.Lookup(0x1F602); gid != 0 {
		t.Errorf("Lookup(0x1F602) = %d for unmapped rune", gid)
	}
}

func TestFormat4Segments(t *testing.T) {
	// A long run with a common glyph ID delta next to scattered glyph
	// IDs forces both segment kinds through the segmentation graph.
	sub := Format4{}
	for c := uint16('a'); c <= 'z'; c++ {
		sub[c] = glyph.ID(c - 'a' + 10)
	}
	scattered := []glyph.ID{90, 17, 63, 40, 77}
	for i, gid := range scattered {
		sub[uint16(0x100+i)] = gid
	}

	decoded, err := decodeFormat4(sub.Encode(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(sub.Mapping(), decoded.Mapping()); d != "" {
		t.Errorf("segmentation lost mappings (-want +got):\n%s", d)
	}
}

func TestDeterministicEncoding(t *testing.T) {
	m := testMappings[2].m
	b1 := FromMapping(m).Encode()
	b2 := FromMapping(m).Encode()
	if d := cmp.Diff(b1, b2); d != "" {
		t.Errorf("encoding is not deterministic:\n%s", d)
	}
}
