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

package kern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		info Info
	}{
		{
			name: "empty",
			info: Info{},
		},
		{
			name: "pairs",
			info: Info{
				{Left: 1, Right: 2}:   -50,
				{Left: 1, Right: 3}:   -30,
				{Left: 7, Right: 2}:   15,
				{Left: 100, Right: 1}: -120,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.info.Encode())
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.info, got); d != "" {
				t.Errorf("round trip failed (-want +got):\n%s", d)
			}
		})
	}
}

func TestDeterministicEncoding(t *testing.T) {
	info := Info{
		{Left: 1, Right: 2}: -50,
		{Left: 2, Right: 1}: -40,
		{Left: 3, Right: 4}: 10,
	}
	b1 := info.Encode()
	b2 := info.Encode()
	if d := cmp.Diff(b1, b2); d != "" {
		t.Errorf("encoding is not deterministic:\n%s", d)
	}

	// Pairs are stored in sorted order.
	pairs := b1[18:]
	for i := 6; i < len(pairs); i += 6 {
		if string(pairs[i:i+4]) < string(pairs[i-6:i-2]) {
			t.Error("pairs are not sorted")
		}
	}
}

func TestSkipUnsupportedSubtables(t *testing.T) {
	// A vertical kerning subtable is skipped without error.
	data := []byte{
		0, 0, // version
		0, 1, // numTables

		0, 0, // subtable version
		0, 14, // length
		0, 0, // format 0, horizontal flag not set
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d pairs from skipped subtable", len(got))
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0, 0})
	if err == nil {
		t.Error("expected error for truncated table")
	}

	_, err = Decode([]byte{0, 1, 0, 0})
	if err == nil {
		t.Error("expected error for unsupported version")
	}
}
