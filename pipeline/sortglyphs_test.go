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
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/internal/debug/makefont"
	"seehuhn.de/go/foundry/name"
	"seehuhn.de/go/foundry/post"
	"seehuhn.de/go/foundry/table"
)

func TestRenameGlyphs(t *testing.T) {
	f := makefont.TrueType()
	runStages(t, f, StageDesc{
		Name:   "rename-glyphs",
		Config: Config{"names": map[string]string{"A": "Z"}},
	})
	want := []string{".notdef", "Z", "B", "C"}
	if d := cmp.Diff(want, glyphNames(t, f)); d != "" {
		t.Errorf("wrong glyph names (-want +got):\n%s", d)
	}
}

func TestRenameSwap(t *testing.T) {
	// The mapping is applied at once, so two glyphs can exchange names.
	f := makefont.TrueType()
	runStages(t, f, StageDesc{
		Name:   "rename-glyphs",
		Config: Config{"names": map[string]string{"A": "B", "B": "A"}},
	})
	want := []string{".notdef", "B", "A", "C"}
	if d := cmp.Diff(want, glyphNames(t, f)); d != "" {
		t.Errorf("wrong glyph names (-want +got):\n%s", d)
	}
}

func TestRenameDuplicate(t *testing.T) {
	f := makefont.TrueType()
	p, err := NewRegistry().NewPipeline(StageDesc{
		Name:   "rename-glyphs",
		Config: Config{"names": map[string]string{"A": "B"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = p.Run(context.Background(), f)
	var dupErr *table.DuplicateNameError
	if !errors.As(err, &dupErr) || dupErr.Name != "B" {
		t.Fatalf("got %v, want a DuplicateNameError for B", err)
	}

	want := []string{".notdef", "A", "B", "C"}
	if d := cmp.Diff(want, glyphNames(t, f)); d != "" {
		t.Errorf("glyph names changed by failed rename (-want +got):\n%s", d)
	}
}

func TestRenameNeedsNames(t *testing.T) {
	// Glyph names of a TrueType font live in the post table; without a
	// name-kind table the stage is not started.
	f := makefont.TrueType()
	f.RemoveTable(post.Tag)
	f.RemoveTable(name.Tag)

	p, err := NewRegistry().NewPipeline(StageDesc{
		Name:   "rename-glyphs",
		Config: Config{"names": map[string]string{"A": "Z"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = p.Run(context.Background(), f)
	var preErr *PreconditionError
	if !errors.As(err, &preErr) {
		t.Fatalf("got %v, want a PreconditionError", err)
	}
	if preErr.Kind != table.KindNames {
		t.Errorf("missing kind %s, want %s", preErr.Kind, table.KindNames)
	}
}

func TestRenameCFF(t *testing.T) {
	f := makefont.CFF()
	runStages(t, f, StageDesc{
		Name:   "rename-glyphs",
		Config: Config{"names": map[string]string{"B": "beta"}},
	})
	want := []string{".notdef", "A", "beta", "C"}
	if d := cmp.Diff(want, glyphNames(t, f)); d != "" {
		t.Errorf("wrong glyph names (-want +got):\n%s", d)
	}
}

func TestSortGlyphs(t *testing.T) {
	f := makefont.TrueType()
	runStages(t, f,
		StageDesc{
			Name:   "rename-glyphs",
			Config: Config{"names": map[string]string{"A": "Z"}},
		},
		StageDesc{Name: "sort-glyphs"},
	)

	want := []string{".notdef", "B", "C", "Z"}
	if d := cmp.Diff(want, glyphNames(t, f)); d != "" {
		t.Errorf("wrong glyph order (-want +got):\n%s", d)
	}

	// Character map entries follow the moved glyphs.
	wantMap := map[rune]glyph.ID{'A': 3, 'B': 1, 'C': 2}
	if d := cmp.Diff(wantMap, mappingOf(t, f)); d != "" {
		t.Errorf("wrong character map (-want +got):\n%s", d)
	}

	if d := cmp.Diff([]uint16{500, 600, 700, 600}, widthsOf(t, f)); d != "" {
		t.Errorf("wrong widths (-want +got):\n%s", d)
	}

	// The composite "C" now refers to "Z" at its new position.
	tbl, err := f.Table(glyf.Tag)
	if err != nil {
		t.Fatal(err)
	}
	gg := tbl.(glyf.Glyphs)
	if cc := gg[2].Components(); len(cc) != 1 || cc[0] != 3 {
		t.Errorf("composite components %v after sorting", cc)
	}
}

func TestSortGlyphsStable(t *testing.T) {
	f := makefont.TrueType()
	before, err := f.RawTable(glyf.Tag)
	if err != nil {
		t.Fatal(err)
	}
	runStages(t, f, StageDesc{Name: "sort-glyphs"})
	after, err := f.RawTable(glyf.Tag)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(before, after) {
		t.Error("sorting an already sorted font changed the glyf table")
	}
}

func TestRemoveUnusedGlyphs(t *testing.T) {
	f := makefont.TrueType()
	f.SetTable(cmap.Tag, cmap.FromMapping(map[rune]glyph.ID{
		'A': 1,
		'C': 3,
	}))
	runStages(t, f, StageDesc{Name: "remove-unused-glyphs"})

	want := []string{".notdef", "A", "C"}
	if d := cmp.Diff(want, glyphNames(t, f)); d != "" {
		t.Errorf("wrong glyph names (-want +got):\n%s", d)
	}
	wantMap := map[rune]glyph.ID{'A': 1, 'C': 2}
	if d := cmp.Diff(wantMap, mappingOf(t, f)); d != "" {
		t.Errorf("wrong character map (-want +got):\n%s", d)
	}
}

func TestRemoveUnusedKeepsComponents(t *testing.T) {
	// Glyph "A" is not mapped, but the composite "C" needs it.
	f := makefont.TrueType()
	f.SetTable(cmap.Tag, cmap.FromMapping(map[rune]glyph.ID{
		'C': 3,
	}))
	runStages(t, f, StageDesc{Name: "remove-unused-glyphs"})

	want := []string{".notdef", "A", "C"}
	if d := cmp.Diff(want, glyphNames(t, f)); d != "" {
		t.Errorf("wrong glyph names (-want +got):\n%s", d)
	}
}
