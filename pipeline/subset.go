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
	"errors"
	"fmt"
	"sort"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/kern"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/post"
	"seehuhn.de/go/foundry/table"
)

// subsetStage reduces the glyph set to the requested glyphs, plus
// glyph 0 and all glyphs reachable from the requested ones through
// composite glyph components.  The surviving glyphs keep their
// relative order.
//
// Glyphs are selected by name or by code point.  Both selectors are
// stable under the renumbering the stage performs, so running the
// stage twice with the same configuration leaves the font unchanged
// the second time.
type subsetStage struct {
	names       []string
	unicodes    []rune
	keepHinting bool
}

func newSubsetStage(cfg Config) (Stage, error) {
	st := &subsetStage{}
	if v, ok := cfg["names"]; ok {
		names, ok := v.([]string)
		if !ok {
			return nil, &ConfigurationError{
				Stage: "subset",
				Msg:   "configuration key \"names\" must hold a []string",
			}
		}
		st.names = names
	}
	if v, ok := cfg["unicodes"]; ok {
		unicodes, ok := v.([]rune)
		if !ok {
			return nil, &ConfigurationError{
				Stage: "subset",
				Msg:   "configuration key \"unicodes\" must hold a []rune",
			}
		}
		st.unicodes = unicodes
	}
	if st.names == nil && st.unicodes == nil {
		return nil, &ConfigurationError{
			Stage: "subset",
			Msg:   "either \"names\" or \"unicodes\" must be set",
		}
	}
	if v, ok := cfg["keep-hinting"]; ok {
		keep, ok := v.(bool)
		if !ok {
			return nil, &ConfigurationError{
				Stage: "subset",
				Msg:   "configuration key \"keep-hinting\" must hold a bool",
			}
		}
		st.keepHinting = keep
	}
	return st, nil
}

func (st *subsetStage) Name() string { return "subset" }

func (st *subsetStage) Reads() []table.Kind {
	kinds := []table.Kind{table.KindOutlines}
	if st.unicodes != nil {
		kinds = append(kinds, table.KindMapping)
	}
	return kinds
}

func (st *subsetStage) Writes() []table.Kind {
	return []table.Kind{
		table.KindOutlines,
		table.KindMetrics,
		table.KindMapping,
		table.KindNames,
		table.KindLayout,
		table.KindHeader,
	}
}

func (st *subsetStage) Apply(f *foundry.Font) error {
	if f.IsGlyf() && isHinted(f) && !st.keepHinting {
		return errors.New("cannot subset a hinted font; " +
			"run a dehint stage first or set keep-hinting")
	}

	keep := make(map[glyph.ID]bool)
	keep[0] = true
	if st.unicodes != nil {
		t, err := f.Table(cmap.Tag)
		if err != nil {
			return err
		}
		m, err := t.(cmap.Table).Mapping()
		if err != nil {
			return err
		}
		for _, r := range st.unicodes {
			gid, ok := m[r]
			if !ok {
				return fmt.Errorf("no glyph mapped for U+%04X", r)
			}
			keep[gid] = true
		}
	}
	if st.names != nil {
		names, err := f.GlyphNames()
		if err != nil {
			return err
		}
		byName := make(map[string]glyph.ID, len(names))
		for gid, name := range names {
			byName[name] = glyph.ID(gid)
		}
		for _, name := range st.names {
			gid, ok := byName[name]
			if !ok {
				return fmt.Errorf("no glyph named %q", name)
			}
			keep[gid] = true
		}
	}

	err := closeOverComponents(f, keep)
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

// closeOverComponents extends the glyph set until all composite glyph
// components are included.
func closeOverComponents(f *foundry.Font, keep map[glyph.ID]bool) error {
	if !f.IsGlyf() {
		return nil
	}
	t, err := f.Table(glyf.Tag)
	if err != nil {
		return err
	}
	gg := t.(glyf.Glyphs)

	todo := make([]glyph.ID, 0, len(keep))
	for gid := range keep {
		todo = append(todo, gid)
	}
	for len(todo) > 0 {
		gid := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if int(gid) >= len(gg) {
			return &table.InconsistentError{
				Msg: fmt.Sprintf("composite references glyph %d out of range", gid),
			}
		}
		for _, comp := range gg[gid].Components() {
			if !keep[comp] {
				keep[comp] = true
				todo = append(todo, comp)
			}
		}
	}
	return nil
}

// applyGlyphOrder rebuilds all glyph-indexed tables for a new glyph
// order.  The entries of order are old glyph IDs; the glyph listed at
// position i becomes glyph i.  Glyphs not listed are dropped, and
// character map entries and kerning pairs for dropped glyphs are
// removed.
func applyGlyphOrder(f *foundry.Font, order []glyph.ID) error {
	newGid := make(map[glyph.ID]glyph.ID, len(order))
	for newIdx, old := range order {
		newGid[old] = glyph.ID(newIdx)
	}

	if f.IsGlyf() {
		t, err := f.Table(glyf.Tag)
		if err != nil {
			return err
		}
		gg := t.(glyf.Glyphs)
		gg2 := make(glyf.Glyphs, len(order))
		for newIdx, old := range order {
			if int(old) >= len(gg) {
				return &table.InconsistentError{
					Msg: fmt.Sprintf("glyph %d out of range", old),
				}
			}
			for _, comp := range gg[old].Components() {
				if _, ok := newGid[comp]; !ok {
					return &table.InconsistentError{
						Msg: fmt.Sprintf("glyph %d needs component glyph %d",
							old, comp),
					}
				}
			}
			gg2[newIdx] = gg[old].FixComponents(newGid)
		}
		f.SetTable(glyf.Tag, gg2)
	}

	if f.IsCFF() {
		t, err := f.Table(cffglyphs.Tag)
		if err != nil {
			return err
		}
		o := t.(*cffglyphs.Outlines)
		if n := o.NumGlyphs(); int(order[len(order)-1]) >= n {
			return &table.InconsistentError{
				Msg: fmt.Sprintf("glyph %d out of range", order[len(order)-1]),
			}
		}
		f.SetTable(cffglyphs.Tag, o.Subset(order))
	}

	if f.Has(hmtx.Tag) {
		t, err := f.Table(hmtx.Tag)
		if err != nil {
			return err
		}
		info := t.(*hmtx.Info)
		widths := make([]uint16, len(order))
		var lsb []funit.Int16
		var extents []funit.Rect
		if info.LSB != nil {
			lsb = make([]funit.Int16, len(order))
		}
		if info.GlyphExtent != nil {
			extents = make([]funit.Rect, len(order))
		}
		for newIdx, old := range order {
			if int(old) < len(info.Widths) {
				widths[newIdx] = info.Widths[old]
			}
			if lsb != nil && int(old) < len(info.LSB) {
				lsb[newIdx] = info.LSB[old]
			}
			if extents != nil && int(old) < len(info.GlyphExtent) {
				extents[newIdx] = info.GlyphExtent[old]
			}
		}
		info.Widths = widths
		info.LSB = lsb
		info.GlyphExtent = extents
		f.MarkDirty(hmtx.Tag)
	}

	if f.Has(post.Tag) {
		t, err := f.Table(post.Tag)
		if err == nil {
			info := t.(*post.Info)
			if info.Names != nil {
				names := make([]string, len(order))
				for newIdx, old := range order {
					if int(old) < len(info.Names) {
						names[newIdx] = info.Names[old]
					}
				}
				info.Names = names
				f.MarkDirty(post.Tag)
			}
		}
	}

	if f.Has(cmap.Tag) {
		t, err := f.Table(cmap.Tag)
		if err != nil {
			return err
		}
		m, err := t.(cmap.Table).Mapping()
		if err != nil {
			return err
		}
		m2 := make(map[rune]glyph.ID, len(m))
		for r, gid := range m {
			if gid2, ok := newGid[gid]; ok {
				m2[r] = gid2
			}
		}
		f.SetTable(cmap.Tag, cmap.FromMapping(m2))
	}

	if f.Has(kern.Tag) {
		t, err := f.Table(kern.Tag)
		if err == nil {
			info := t.(kern.Info)
			info2 := make(kern.Info, len(info))
			for pair, val := range info {
				left, okL := newGid[pair.Left]
				right, okR := newGid[pair.Right]
				if okL && okR {
					info2[kern.Pair{Left: left, Right: right}] = val
				}
			}
			f.SetTable(kern.Tag, info2)
		}
	}

	if f.Has(maxp.Tag) {
		t, err := f.Table(maxp.Tag)
		if err != nil {
			return err
		}
		t.(*maxp.Info).NumGlyphs = len(order)
		f.MarkDirty(maxp.Tag)
	}

	return nil
}
