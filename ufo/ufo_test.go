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
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGlyphOrder(t *testing.T) {
	f := New()
	for _, name := range []string{".notdef", "b", "a", "z"} {
		f.Glyphs[name] = &Glyph{Name: name}
	}
	f.Order = []string{"z", "b", "ghost"}

	// Listed glyphs keep their order, unlisted ones follow
	// alphabetically, and ".notdef" is forced to the front.
	want := []string{".notdef", "z", "b", "a"}
	if d := cmp.Diff(want, f.GlyphOrder()); d != "" {
		t.Errorf("wrong glyph order (-want +got):\n%s", d)
	}
}

func TestGlifFileName(t *testing.T) {
	testCases := []struct {
		name string
		want string
	}{
		{"a", "a.glif"},
		{"A", "A_.glif"},
		{".notdef", "_notdef.glif"},
		{"T_h", "T__h.glif"},
		{"F_A_B", "F__A__B_.glif"},
		{"a:b", "a_b.glif"},
		{"quote\"", "quote_.glif"},
		{strings.Repeat("x", 300), strings.Repeat("x", 250) + ".glif"},
	}
	for _, tc := range testCases {
		used := map[string]bool{}
		if got := glifFileName(tc.name, used); got != tc.want {
			t.Errorf("glifFileName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestGlifFileNameClash(t *testing.T) {
	used := map[string]bool{}
	got := []string{
		glifFileName("a*", used),
		glifFileName("a:", used),
		glifFileName("a+", used),
	}
	want := []string{"a_.glif", "a_1.glif", "a_2.glif"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("wrong clash resolution (-want +got):\n%s", d)
	}
}

func TestWriteRead(t *testing.T) {
	f := New()
	f.Info = &Info{
		FamilyName: "Demo",
		StyleName:  "Regular",

		UnitsPerEm:   2048,
		Ascender:     1638,
		Descender:    -410,
		CapHeight:    1430,
		XHeight:      1060,
		LineGap:      100,
		ItalicAngle:  -6.5,
		WeightClass:  400,
		WidthClass:   5,
		VersionMajor: 1,
		VersionMinor: 2,

		Copyright: "Copyright 2026",

		PostScriptFontName: "Demo-Regular",
		UnderlinePosition:  -150,
		UnderlineThickness: 70,
	}
	f.Glyphs[".notdef"] = &Glyph{Name: ".notdef", Width: 500}
	f.Glyphs["A"] = &Glyph{
		Name:     "A",
		Width:    1200,
		Unicodes: []rune{'A'},
		Contours: []Contour{
			{
				{X: 100, Y: 0, Type: LineTo},
				{X: 100, Y: 1400, Type: LineTo},
				{X: 1100, Y: 1400, Type: LineTo},
				{X: 1100, Y: 0, Type: LineTo},
			},
		},
	}
	f.Glyphs["Agrave"] = &Glyph{
		Name:     "Agrave",
		Width:    1200,
		Unicodes: []rune{0x00C0},
		Components: []Component{
			{Base: "A", Transform: [6]float64{1, 0, 0, 1, 0, 0}},
			{Base: "A", Transform: [6]float64{0.5, 0, 0, 0.5, 300, 1500}},
		},
	}
	f.Order = []string{".notdef", "A", "Agrave"}

	dir := filepath.Join(t.TempDir(), "Demo-Regular.ufo")
	err := f.Write(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	g, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(f.Info, g.Info); d != "" {
		t.Errorf("font info changed (-want +got):\n%s", d)
	}
	if d := cmp.Diff(f.GlyphOrder(), g.GlyphOrder()); d != "" {
		t.Errorf("glyph order changed (-want +got):\n%s", d)
	}
	if d := cmp.Diff(f.Glyphs, g.Glyphs); d != "" {
		t.Errorf("glyphs changed (-want +got):\n%s", d)
	}
}

func TestWriteCreator(t *testing.T) {
	f := New()
	dir := filepath.Join(t.TempDir(), "Empty.ufo")
	err := f.Write(dir, &WriterOptions{Creator: "com.example.test"})
	if err != nil {
		t.Fatal(err)
	}

	meta, err := readPlistFile(filepath.Join(dir, "metainfo.plist"))
	if err != nil {
		t.Fatal(err)
	}
	if got := plistString(meta, "creator"); got != "com.example.test" {
		t.Errorf("creator %q in metainfo.plist", got)
	}
	if got := plistInt(meta, "formatVersion", 0); got != 3 {
		t.Errorf("format version %d in metainfo.plist", got)
	}
}

func TestReadRejectsOldFormat(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Old.ufo")
	f := New()
	err := f.Write(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	meta := map[string]interface{}{
		"creator":       "test",
		"formatVersion": 2,
	}
	err = writePlistFile(filepath.Join(dir, "metainfo.plist"), meta)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Read(dir)
	if err == nil {
		t.Error("UFO2 directory accepted")
	}
}
