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

package post

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		info *Info
	}{
		{
			name: "no_names",
			info: &Info{
				ItalicAngle:        -12.5,
				UnderlinePosition:  -100,
				UnderlineThickness: 50,
			},
		},
		{
			name: "custom_names",
			info: &Info{
				UnderlinePosition:  -75,
				UnderlineThickness: 40,
				IsFixedPitch:       true,
				Names:              []string{".notdef", "A", "B", "alpha.sc"},
			},
		},
		{
			name: "mac_roman_names",
			info: &Info{
				UnderlinePosition:  -100,
				UnderlineThickness: 50,
				Names:              macRoman,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Read(bytes.NewReader(tc.info.Encode()))
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.info, got); d != "" {
				t.Errorf("round trip failed (-want +got):\n%s", d)
			}
		})
	}
}

func TestVersionSelection(t *testing.T) {
	version := func(info *Info) uint32 {
		return binary.BigEndian.Uint32(info.Encode()[:4])
	}

	if v := version(&Info{}); v != 0x00030000 {
		t.Errorf("no names: version %08x", v)
	}
	if v := version(&Info{Names: macRoman}); v != 0x00010000 {
		t.Errorf("standard names: version %08x", v)
	}
	if v := version(&Info{Names: []string{".notdef", "A.alt"}}); v != 0x00020000 {
		t.Errorf("custom names: version %08x", v)
	}
}

func TestSharedMacNames(t *testing.T) {
	// Names from the standard Macintosh set are stored by index and do
	// not appear in the string data.
	info := &Info{Names: []string{".notdef", "space", "A", "B"}}
	data := info.Encode()
	if bytes.Contains(data[32:], []byte("space")) {
		t.Error("standard name written to string storage")
	}

	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info.Names, got.Names); d != "" {
		t.Errorf("names changed (-want +got):\n%s", d)
	}
}

func TestReadErrors(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0, 1}))
	if err == nil {
		t.Error("expected error for truncated table")
	}

	data := (&Info{}).Encode()
	data[0] = 0x05
	_, err = Read(bytes.NewReader(data))
	if err == nil {
		t.Error("expected error for unsupported version")
	}
}
