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

package glyf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry/funit"
)

var testContours = []struct {
	name string
	info *GlyphInfo
}{
	{
		name: "square",
		info: &GlyphInfo{
			Contours: []Contour{
				{
					{X: 100, Y: 0, OnCurve: true},
					{X: 500, Y: 0, OnCurve: true},
					{X: 500, Y: 700, OnCurve: true},
					{X: 100, Y: 700, OnCurve: true},
				},
			},
		},
	},
	{
		name: "off_curve_point",
		info: &GlyphInfo{
			Contours: []Contour{
				{
					{X: 100, Y: 0, OnCurve: true},
					{X: 500, Y: 0, OnCurve: true},
					{X: 300, Y: 350, OnCurve: false},
				},
			},
		},
	},
	{
		name: "two_contours_with_instructions",
		info: &GlyphInfo{
			Contours: []Contour{
				{
					{X: 0, Y: 0, OnCurve: true},
					{X: 1000, Y: 0, OnCurve: true},
					{X: 1000, Y: 1000, OnCurve: true},
					{X: 0, Y: 1000, OnCurve: true},
				},
				{
					{X: 200, Y: 200, OnCurve: true},
					{X: 200, Y: 800, OnCurve: true},
					{X: 800, Y: 800, OnCurve: true},
					{X: 800, Y: 200, OnCurve: true},
				},
			},
			Instructions: []byte{0x4B, 0x00},
		},
	},
	{
		name: "large_deltas",
		info: &GlyphInfo{
			Contours: []Contour{
				{
					{X: -2000, Y: -2000, OnCurve: true},
					{X: 2000, Y: -2000, OnCurve: true},
					{X: 0, Y: 2000, OnCurve: false},
				},
			},
		},
	},
}

func TestSimpleGlyphRoundTrip(t *testing.T) {
	for _, tc := range testContours {
		t.Run(tc.name, func(t *testing.T) {
			enc, err := tc.info.Encode()
			if err != nil {
				t.Fatal(err)
			}
			got, err := enc.Decode()
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.info, got, cmpopts.EquateEmpty()); d != "" {
				t.Errorf("round trip failed (-want +got):\n%s", d)
			}
		})
	}
}

func TestFlagRunCompression(t *testing.T) {
	// A contour of collinear, equally spaced points uses a single flag
	// byte with a repeat count.
	var c Contour
	for i := 0; i < 20; i++ {
		c = append(c, Point{X: funit.Int16(10 * i), Y: 0, OnCurve: true})
	}
	info := &GlyphInfo{Contours: []Contour{c}}
	enc, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}

	// 2 bytes endPts, 2 bytes instruction length, flags, x-deltas.
	// The first point has a different flag (zero deltas), the remaining
	// 19 points share one flag byte plus a repeat count.
	wantLen := 2 + 2 + 1 + 2 + 19
	if len(enc.Tail) != wantLen {
		t.Errorf("encoded length %d, want %d", len(enc.Tail), wantLen)
	}

	got, err := enc.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info, got, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}
}

func makeTestGlyphs(t *testing.T) Glyphs {
	t.Helper()

	square, err := testContours[0].info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	hinted, err := testContours[2].info.Encode()
	if err != nil {
		t.Fatal(err)
	}

	return Glyphs{
		&Glyph{
			Rect: funit.Rect{LLx: 100, URx: 500, URy: 700},
			Data: square,
		},
		nil, // empty glyph
		&Glyph{
			Rect: funit.Rect{URx: 1000, URy: 1000},
			Data: hinted,
		},
		&Glyph{
			Rect: funit.Rect{LLx: 200, URx: 600, URy: 700},
			Data: CompositeGlyph{
				Components: []GlyphComponent{
					{
						Flags:      FlagArg1And2AreWords | FlagArgsAreXYValues,
						GlyphIndex: 0,
						Args:       []byte{0, 100, 0, 0},
					},
				},
			},
		},
	}
}

func TestGlyphsRoundTrip(t *testing.T) {
	gg := makeTestGlyphs(t)

	enc, err := gg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if enc.LocaFormat != 0 {
		t.Errorf("LocaFormat = %d for a small font", enc.LocaFormat)
	}

	got, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gg, got); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}
}

func TestLongLoca(t *testing.T) {
	// Two glyphs with maximal instruction streams push the table size
	// beyond the reach of short loca offsets.
	tail := make([]byte, 2+0xFFFF)
	tail[0] = 0xFF
	tail[1] = 0xFF
	gg := Glyphs{
		&Glyph{Data: SimpleGlyph{NumContours: 0, Tail: tail}},
		&Glyph{Data: SimpleGlyph{NumContours: 0, Tail: tail}},
	}

	enc, err := gg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if enc.LocaFormat != 1 {
		t.Errorf("LocaFormat = %d, want 1", enc.LocaFormat)
	}

	got, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gg, got); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}
}

func TestRemoveInstructions(t *testing.T) {
	square, err := testContours[0].info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	hinted, err := testContours[2].info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	gg := Glyphs{
		&Glyph{Data: square},
		&Glyph{Data: hinted},
		&Glyph{
			Data: CompositeGlyph{
				Components: []GlyphComponent{
					{
						Flags:      FlagArgsAreXYValues | FlagWeHaveInstructions,
						GlyphIndex: 1,
						Args:       []byte{0, 0},
					},
				},
				Instructions: []byte{0x4B},
			},
		},
		nil,
	}

	err = gg.RemoveInstructions()
	if err != nil {
		t.Fatal(err)
	}

	for i, g := range gg[:2] {
		info, err := g.Data.(SimpleGlyph).Decode()
		if err != nil {
			t.Fatal(err)
		}
		if len(info.Instructions) != 0 {
			t.Errorf("glyph %d still has instructions", i)
		}
	}
	comp := gg[2].Data.(CompositeGlyph)
	if comp.Instructions != nil {
		t.Error("composite glyph still has instructions")
	}
	if comp.Components[0].Flags&FlagWeHaveInstructions != 0 {
		t.Error("composite glyph still has the instructions flag set")
	}
}

func TestComponents(t *testing.T) {
	gg := makeTestGlyphs(t)

	if cc := gg[0].Components(); cc != nil {
		t.Errorf("simple glyph has components %v", cc)
	}
	if cc := gg[3].Components(); len(cc) != 1 || cc[0] != 0 {
		t.Errorf("composite glyph components %v", cc)
	}

	g2 := gg[3].FixComponents(map[glyph.ID]glyph.ID{0: 5})
	if cc := g2.Components(); len(cc) != 1 || cc[0] != 5 {
		t.Errorf("remapped components %v", cc)
	}
	if cc := gg[3].Components(); cc[0] != 0 {
		t.Error("FixComponents modified the original glyph")
	}
}
