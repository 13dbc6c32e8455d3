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

package ufo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/internal/debug/makefont"
	"seehuhn.de/go/foundry/name"
)

// demoSource returns a three-glyph UFO source for conversion tests.
// "B" is built from a shifted component reference to "A".
func demoSource() *Font {
	f := New()
	f.Info = &Info{
		FamilyName:   "Demo",
		StyleName:    "Regular",
		UnitsPerEm:   1000,
		Ascender:     800,
		Descender:    -200,
		CapHeight:    700,
		VersionMajor: 1,
	}
	f.Glyphs[".notdef"] = &Glyph{Name: ".notdef", Width: 500}
	f.Glyphs["A"] = &Glyph{
		Name:     "A",
		Width:    600,
		Unicodes: []rune{'A'},
		Contours: []Contour{
			{
				{X: 100, Y: 0, Type: LineTo},
				{X: 100, Y: 700, Type: LineTo},
				{X: 500, Y: 700, Type: LineTo},
				{X: 500, Y: 0, Type: LineTo},
			},
		},
	}
	f.Glyphs["B"] = &Glyph{
		Name:  "B",
		Width: 700,
		Components: []Component{
			{Base: "A", Transform: [6]float64{1, 0, 0, 1, 100, 0}},
		},
	}
	f.Order = []string{".notdef", "A", "B"}
	return f
}

func extentOf(t *testing.T, f *foundry.Font, gid glyph.ID) funit.Rect {
	t.Helper()
	tbl, err := f.Table(cffglyphs.Tag)
	if err != nil {
		t.Fatal(err)
	}
	return tbl.(*cffglyphs.Outlines).Extent(gid)
}

func TestToFont(t *testing.T) {
	font, err := demoSource().ToFont()
	if err != nil {
		t.Fatal(err)
	}

	if !font.IsCFF() {
		t.Fatal("no CFF outlines in the converted font")
	}
	if n, err := font.NumGlyphs(); err != nil || n != 3 {
		t.Fatalf("NumGlyphs() = %d, %v", n, err)
	}
	names, err := font.GlyphNames()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{".notdef", "A", "B"}, names); d != "" {
		t.Errorf("wrong glyph names (-want +got):\n%s", d)
	}

	tbl, err := font.Table(hmtx.Tag)
	if err != nil {
		t.Fatal(err)
	}
	hmtxInfo := tbl.(*hmtx.Info)
	if d := cmp.Diff([]uint16{500, 600, 700}, hmtxInfo.Widths); d != "" {
		t.Errorf("wrong widths (-want +got):\n%s", d)
	}
	if hmtxInfo.Ascent != 800 || hmtxInfo.Descent != -200 {
		t.Errorf("wrong vertical metrics %d/%d",
			hmtxInfo.Ascent, hmtxInfo.Descent)
	}

	tbl, err = font.Table(head.Tag)
	if err != nil {
		t.Fatal(err)
	}
	headInfo := tbl.(*head.Info)
	if headInfo.UnitsPerEm != 1000 {
		t.Errorf("units per em %d", headInfo.UnitsPerEm)
	}
	wantBBox := funit.Rect{LLx: 100, LLy: 0, URx: 600, URy: 700}
	if d := cmp.Diff(wantBBox, headInfo.FontBBox); d != "" {
		t.Errorf("wrong bounding box (-want +got):\n%s", d)
	}

	// "A" has no code point assigned in the source, so the code point
	// is derived from the glyph name.
	tbl, err = font.Table(cmap.Tag)
	if err != nil {
		t.Fatal(err)
	}
	m, err := tbl.(cmap.Table).Mapping()
	if err != nil {
		t.Fatal(err)
	}
	wantMap := map[rune]glyph.ID{'A': 1, 'B': 2}
	if d := cmp.Diff(wantMap, m); d != "" {
		t.Errorf("wrong character map (-want +got):\n%s", d)
	}

	tbl, err = font.Table(name.Tag)
	if err != nil {
		t.Fatal(err)
	}
	nameInfo := tbl.(*name.Info)
	if got := nameInfo.Get(name.Family); got != "Demo" {
		t.Errorf("family name %q", got)
	}
	if got := nameInfo.Get(name.FullName); got != "Demo Regular" {
		t.Errorf("full name %q", got)
	}
	if got := nameInfo.Get(name.PostScriptName); got != "Demo-Regular" {
		t.Errorf("postscript name %q", got)
	}
	if got := nameInfo.Get(name.Version); got != "Version 1.000" {
		t.Errorf("version string %q", got)
	}

	// The component reference is flattened into the outline of "B".
	wantExt := funit.Rect{LLx: 200, LLy: 0, URx: 600, URy: 700}
	if d := cmp.Diff(wantExt, extentOf(t, font, 2)); d != "" {
		t.Errorf("wrong extent of glyph B (-want +got):\n%s", d)
	}
}

func TestToFontMissingComponent(t *testing.T) {
	f := demoSource()
	f.Glyphs["B"].Components[0].Base = "missing"
	_, err := f.ToFont()
	if err == nil {
		t.Error("dangling component reference accepted")
	}
}

func TestToFontBadUpem(t *testing.T) {
	f := demoSource()
	f.Info.UnitsPerEm = 4
	_, err := f.ToFont()
	if err == nil {
		t.Error("units per em 4 accepted")
	}
}

func TestToFontDeepNesting(t *testing.T) {
	f := New()
	f.Glyphs["g9"] = &Glyph{
		Name: "g9",
		Contours: []Contour{
			{
				{X: 0, Y: 0, Type: LineTo},
				{X: 10, Y: 0, Type: LineTo},
				{X: 10, Y: 10, Type: LineTo},
			},
		},
	}
	for i := 8; i >= 0; i-- {
		this := "g" + string(rune('0'+i))
		next := "g" + string(rune('0'+i+1))
		f.Glyphs[this] = &Glyph{
			Name:       this,
			Components: []Component{{Base: next, Transform: [6]float64{1, 0, 0, 1, 0, 0}}},
		}
	}
	_, err := f.ToFont()
	if err == nil {
		t.Error("component chain of depth 10 accepted")
	}
}

func TestToFontContourErrors(t *testing.T) {
	f := demoSource()
	f.Glyphs["A"].Contours = []Contour{
		{
			{X: 0, Y: 0, Type: LineTo},
			{X: 10, Y: 0, Type: MoveTo},
		},
	}
	_, err := f.ToFont()
	if err == nil {
		t.Error("move point inside a contour accepted")
	}
}

func TestTrueTypeConversionRoundTrip(t *testing.T) {
	u, err := FromFont(makefont.TrueType())
	if err != nil {
		t.Fatal(err)
	}
	font, err := u.ToFont()
	if err != nil {
		t.Fatal(err)
	}

	if !font.IsCFF() {
		t.Fatal("no CFF outlines in the converted font")
	}
	if n, err := font.NumGlyphs(); err != nil || n != 4 {
		t.Fatalf("NumGlyphs() = %d, %v", n, err)
	}

	tbl, err := font.Table(hmtx.Tag)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]uint16{500, 600, 600, 700}, tbl.(*hmtx.Info).Widths); d != "" {
		t.Errorf("wrong widths (-want +got):\n%s", d)
	}

	tbl, err = font.Table(cmap.Tag)
	if err != nil {
		t.Fatal(err)
	}
	m, err := tbl.(cmap.Table).Mapping()
	if err != nil {
		t.Fatal(err)
	}
	wantMap := map[rune]glyph.ID{'A': 1, 'B': 2, 'C': 3}
	if d := cmp.Diff(wantMap, m); d != "" {
		t.Errorf("wrong character map (-want +got):\n%s", d)
	}

	// Glyph shapes survive both conversions.
	wantA := funit.Rect{LLx: 100, LLy: 0, URx: 500, URy: 700}
	if d := cmp.Diff(wantA, extentOf(t, font, 1)); d != "" {
		t.Errorf("wrong extent of glyph A (-want +got):\n%s", d)
	}
	wantC := funit.Rect{LLx: 200, LLy: 0, URx: 600, URy: 700}
	if d := cmp.Diff(wantC, extentOf(t, font, 3)); d != "" {
		t.Errorf("wrong extent of glyph C (-want +got):\n%s", d)
	}
}
