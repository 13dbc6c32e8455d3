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
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/table"
)

// removeUnusedStage drops all glyphs which are not reachable from the
// character map, directly or through composite glyph components.
type removeUnusedStage struct{}

func newRemoveUnusedStage(cfg Config) (Stage, error) {
	return removeUnusedStage{}, nil
}

func (removeUnusedStage) Name() string { return "remove-unused-glyphs" }

func (removeUnusedStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindMapping}
}

func (removeUnusedStage) Writes() []table.Kind {
	return []table.Kind{
		table.KindOutlines,
		table.KindMetrics,
		table.KindMapping,
		table.KindNames,
		table.KindLayout,
		table.KindHeader,
	}
}

func (removeUnusedStage) Apply(f *foundry.Font) error {
	t, err := f.Table(cmap.Tag)
	if err != nil {
		return err
	}
	m, err := t.(cmap.Table).Mapping()
	if err != nil {
		return err
	}

	keep := make(map[glyph.ID]bool, len(m)+1)
	keep[0] = true
	for _, gid := range m {
		keep[gid] = true
	}
	err = closeOverComponents(f, keep)
	if err != nil {
		return err
	}

	order := make([]glyph.ID, 0, len(keep))
	for gid := range keep {
		order = append(order, gid)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	return applyGlyphOrder(f, order)
}
