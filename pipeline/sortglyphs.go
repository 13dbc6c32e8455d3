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
	"sort"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/table"
)

// sortGlyphsStage brings the glyphs into a canonical order: glyph 0
// stays in place, the remaining glyphs are sorted by name.  Glyphs
// without a name keep their relative order and sort after the named
// ones.
type sortGlyphsStage struct{}

func newSortGlyphsStage(cfg Config) (Stage, error) {
	return sortGlyphsStage{}, nil
}

func (sortGlyphsStage) Name() string { return "sort-glyphs" }

func (sortGlyphsStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines}
}

func (sortGlyphsStage) Writes() []table.Kind {
	return []table.Kind{
		table.KindOutlines,
		table.KindMetrics,
		table.KindMapping,
		table.KindNames,
		table.KindLayout,
		table.KindHeader,
	}
}

func (sortGlyphsStage) Apply(f *foundry.Font) error {
	numGlyphs, err := f.NumGlyphs()
	if err != nil {
		return err
	}
	names, err := f.GlyphNames()
	if err != nil {
		return err
	}

	nameOf := func(gid glyph.ID) string {
		if int(gid) < len(names) {
			return names[gid]
		}
		return ""
	}

	order := make([]glyph.ID, numGlyphs)
	for i := range order {
		order[i] = glyph.ID(i)
	}
	rest := order[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		ni, nj := nameOf(rest[i]), nameOf(rest[j])
		if (ni == "") != (nj == "") {
			return ni != ""
		}
		return ni < nj
	})

	return applyGlyphOrder(f, order)
}
