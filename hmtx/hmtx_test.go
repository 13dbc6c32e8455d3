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

package hmtx

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/foundry/funit"
)

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		info *Info
	}{
		{
			name: "simple",
			info: &Info{
				Widths:  []uint16{500, 600, 600, 700},
				LSB:     []funit.Int16{50, 100, 100, 200},
				Ascent:  700,
				Descent: -300,
				LineGap: 200,
			},
		},
		{
			name: "shared_trailing_width",
			info: &Info{
				// The last three widths are equal, so only two long
				// metrics are stored.
				Widths:  []uint16{500, 600, 600, 600},
				LSB:     []funit.Int16{50, 100, -20, 0},
				Ascent:  800,
				Descent: -200,
				LineGap: 0,
			},
		},
		{
			name: "caret_offset",
			info: &Info{
				Widths:      []uint16{250},
				LSB:         []funit.Int16{0},
				Ascent:      1638,
				Descent:     -410,
				CaretOffset: 25,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hheaData, hmtxData, err := tc.info.Encode()
			if err != nil {
				t.Fatal(err)
			}
			got, err := Decode(hheaData, hmtxData)
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.info, got); d != "" {
				t.Errorf("round trip failed (-want +got):\n%s", d)
			}
		})
	}
}

func TestEncodeWithoutLSB(t *testing.T) {
	// Fonts converted from other formats have widths only; the left
	// side bearings are then stored as zero.
	info := &Info{Widths: []uint16{500, 600}}
	hheaData, hmtxData, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(hheaData, hmtxData)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info.Widths, got.Widths); d != "" {
		t.Errorf("widths changed (-want +got):\n%s", d)
	}
	for _, lsb := range got.LSB {
		if lsb != 0 {
			t.Errorf("expected zero LSB, got %d", lsb)
		}
	}
}

func TestLengthMismatch(t *testing.T) {
	info := &Info{
		Widths: []uint16{500, 600},
		LSB:    []funit.Int16{0},
	}
	_, _, err := info.Encode()
	if err == nil {
		t.Error("expected error for LSB length mismatch")
	}
}
