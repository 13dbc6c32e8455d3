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

package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/internal/debug/makefont"
	"seehuhn.de/go/foundry/maxp"
)

func TestDecompose(t *testing.T) {
	f := makefont.TrueType()
	runStages(t, f, StageDesc{Name: "decompose"})

	tbl, err := f.Table(glyf.Tag)
	if err != nil {
		t.Fatal(err)
	}
	gg := tbl.(glyf.Glyphs)

	d, ok := gg[3].Data.(glyf.SimpleGlyph)
	if !ok {
		t.Fatalf("glyph 3 is still a composite")
	}
	info, err := d.Decode()
	if err != nil {
		t.Fatal(err)
	}
	// The outline of glyph "A", shifted right by 100 units.
	wantContour := glyf.Contour{
		{X: 200, Y: 0, OnCurve: true},
		{X: 200, Y: 700, OnCurve: true},
		{X: 600, Y: 700, OnCurve: true},
		{X: 600, Y: 0, OnCurve: true},
	}
	if d := cmp.Diff([]glyf.Contour{wantContour}, info.Contours); d != "" {
		t.Errorf("wrong flattened contour (-want +got):\n%s", d)
	}
	wantRect := funit.Rect{LLx: 200, LLy: 0, URx: 600, URy: 700}
	if d := cmp.Diff(wantRect, gg[3].Rect); d != "" {
		t.Errorf("wrong bounding box (-want +got):\n%s", d)
	}

	// Simple glyphs are left alone.
	if _, ok := gg[1].Data.(glyf.SimpleGlyph); !ok {
		t.Error("glyph 1 changed type")
	}

	tbl, err = f.Table(maxp.Tag)
	if err != nil {
		t.Fatal(err)
	}
	ttf := tbl.(*maxp.Info).TTF
	if ttf.MaxComponentElements != 0 || ttf.MaxComponentDepth != 0 {
		t.Error("maxp still reports composite glyphs")
	}
	if ttf.MaxPoints != 4 || ttf.MaxContours != 1 {
		t.Errorf("maxp maxima %d/%d, want 4/1", ttf.MaxPoints, ttf.MaxContours)
	}
}

func TestDecomposeCFFNoop(t *testing.T) {
	f := makefont.CFF()
	runStages(t, f, StageDesc{Name: "decompose"})
	if n := numGlyphs(t, f); n != 4 {
		t.Errorf("%d glyphs, want 4", n)
	}
}
