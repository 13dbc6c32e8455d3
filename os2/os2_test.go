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

package os2

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		info *Info
	}{
		{
			name: "regular",
			info: &Info{
				WeightClass: WeightNormal,
				WidthClass:  WidthNormal,
				IsRegular:   true,
				Ascent:      700,
				Descent:     -300,
				LineGap:     200,
				CapHeight:   700,
				XHeight:     480,
				Vendor:      "Shhn",
			},
		},
		{
			name: "bold_italic",
			info: &Info{
				WeightClass:       WeightBold,
				WidthClass:        WidthCondensed,
				IsBold:            true,
				IsItalic:          true,
				Ascent:            800,
				Descent:           -200,
				AvgGlyphWidth:     512,
				SubscriptXSize:    650,
				SubscriptYSize:    600,
				SubscriptYOffset:  75,
				StrikeoutSize:     50,
				StrikeoutPosition: 300,
				FamilyClass:       0x0805,
				Panose:            [10]byte{2, 0, 6, 3, 0, 0, 0, 0, 0, 0},
				Vendor:            "Shhn",
				PermUse:           PermView,
				PermNoSubsetting:  true,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Read(bytes.NewReader(tc.info.Encode(nil)))
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.info, got); d != "" {
				t.Errorf("round trip failed (-want +got):\n%s", d)
			}
		})
	}
}

func TestVendorPadding(t *testing.T) {
	// Vendor tags which are not exactly four bytes long are replaced by
	// spaces.
	info := &Info{Vendor: "toolong"}
	got, err := Read(bytes.NewReader(info.Encode(nil)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Vendor != "    " {
		t.Errorf("Vendor = %q", got.Vendor)
	}
}

func TestPermissions(t *testing.T) {
	for _, perm := range []Permissions{PermInstall, PermEdit, PermView, PermRestricted} {
		info := &Info{PermUse: perm}
		got, err := Read(bytes.NewReader(info.Encode(nil)))
		if err != nil {
			t.Fatal(err)
		}
		if got.PermUse != perm {
			t.Errorf("PermUse = %s, want %s", got.PermUse, perm)
		}
	}
}

func TestReadErrors(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0, 4, 0}))
	if err == nil {
		t.Error("expected error for truncated table")
	}

	data := (&Info{}).Encode(nil)
	data[1] = 6
	_, err = Read(bytes.NewReader(data))
	if err == nil {
		t.Error("expected error for unsupported version")
	}
}
