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

	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/kern"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/post"
	"seehuhn.de/go/foundry/table"
)

// mergeStage appends the glyphs of a second font.  Glyph 0 of the
// source font is skipped.  Character map entries and kerning pairs of
// the source are carried over; where both fonts map the same code
// point the entry of the target font wins.  Glyph instructions of the
// source are dropped, since they refer to the source font's function
// and control value tables.
type mergeStage struct {
	source *foundry.Font
}

func newMergeStage(cfg Config) (Stage, error) {
	source, ok := cfg["source"].(*foundry.Font)
	if !ok {
		return nil, &ConfigurationError{
			Stage: "merge",
			Msg:   "configuration key \"source\" must hold a *foundry.Font",
		}
	}
	return &mergeStage{source: source}, nil
}

func (st *mergeStage) Name() string { return "merge" }

func (st *mergeStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindHeader}
}

func (st *mergeStage) Writes() []table.Kind {
	return []table.Kind{
		table.KindOutlines,
		table.KindMetrics,
		table.KindMapping,
		table.KindNames,
		table.KindLayout,
		table.KindHeader,
	}
}

func (st *mergeStage) Apply(f *foundry.Font) error {
	src := st.source

	if f.IsGlyf() != src.IsGlyf() || f.IsCFF() != src.IsCFF() {
		return errors.New("cannot merge fonts with different outline formats")
	}
	upem1, err := unitsPerEm(f)
	if err != nil {
		return err
	}
	upem2, err := unitsPerEm(src)
	if err != nil {
		return err
	}
	if upem1 != upem2 {
		return &table.InconsistentError{
			Msg: fmt.Sprintf("units per em differ: %d versus %d", upem1, upem2),
		}
	}

	numOld, err := f.NumGlyphs()
	if err != nil {
		return err
	}
	numSrc, err := src.NumGlyphs()
	if err != nil {
		return err
	}
	if numSrc < 1 {
		return nil
	}

	oldNames, err := f.GlyphNames()
	if err != nil {
		return err
	}
	srcNames, err := src.GlyphNames()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(oldNames))
	for _, n := range oldNames {
		if n != "" {
			seen[n] = true
		}
	}
	for gid := 1; gid < len(srcNames); gid++ {
		n := srcNames[gid]
		if n == "" {
			continue
		}
		if seen[n] {
			return &table.DuplicateNameError{Name: n}
		}
		seen[n] = true
	}

	// Source glyph i becomes glyph numOld+i-1, for i > 0.
	newGid := func(gid glyph.ID) glyph.ID {
		return glyph.ID(numOld + int(gid) - 1)
	}

	if f.IsGlyf() {
		err = mergeGlyf(f, src, numSrc, newGid)
	} else {
		err = mergeCFF(f, src)
	}
	if err != nil {
		return err
	}
	numNew := numOld + numSrc - 1

	err = mergeHmtx(f, src, numNew)
	if err != nil {
		return err
	}

	if f.Has(post.Tag) {
		t, err := f.Table(post.Tag)
		if err == nil {
			info := t.(*post.Info)
			if info.Names != nil {
				names := make([]string, numNew)
				copy(names, info.Names)
				for gid := 1; gid < len(srcNames); gid++ {
					names[newGid(glyph.ID(gid))] = srcNames[gid]
				}
				info.Names = names
				f.MarkDirty(post.Tag)
			}
		}
	}

	err = mergeCmap(f, src, newGid)
	if err != nil {
		return err
	}
	mergeKern(f, src, numSrc, newGid)

	if f.Has(maxp.Tag) {
		t, err := f.Table(maxp.Tag)
		if err != nil {
			return err
		}
		t.(*maxp.Info).NumGlyphs = numNew
		f.MarkDirty(maxp.Tag)
	}

	return nil
}

func unitsPerEm(f *foundry.Font) (uint16, error) {
	t, err := f.Table(head.Tag)
	if err != nil {
		return 0, err
	}
	return t.(*head.Info).UnitsPerEm, nil
}

func mergeGlyf(f, src *foundry.Font, numSrc int, newGid func(glyph.ID) glyph.ID) error {
	t, err := f.Table(glyf.Tag)
	if err != nil {
		return err
	}
	gg := t.(glyf.Glyphs)
	t, err = src.Table(glyf.Tag)
	if err != nil {
		return err
	}
	srcGlyphs := t.(glyf.Glyphs)

	gidMap := make(map[glyph.ID]glyph.ID, numSrc)
	for gid := 1; gid < numSrc; gid++ {
		gidMap[glyph.ID(gid)] = newGid(glyph.ID(gid))
	}

	gg2 := make(glyf.Glyphs, 0, len(gg)+numSrc-1)
	gg2 = append(gg2, gg...)
	for gid := 1; gid < numSrc; gid++ {
		var g *glyf.Glyph
		if gid < len(srcGlyphs) {
			g = srcGlyphs[gid]
		}
		for _, comp := range g.Components() {
			if comp == 0 || int(comp) >= numSrc {
				return &table.InconsistentError{
					Msg: fmt.Sprintf("glyph %d needs component glyph %d", gid, comp),
				}
			}
		}
		gg2 = append(gg2, g.FixComponents(gidMap))
	}
	err = gg2[len(gg):].RemoveInstructions()
	if err != nil {
		return err
	}
	f.SetTable(glyf.Tag, gg2)
	return nil
}

func mergeCFF(f, src *foundry.Font) error {
	t, err := f.Table(cffglyphs.Tag)
	if err != nil {
		return err
	}
	o := t.(*cffglyphs.Outlines)
	t, err = src.Table(cffglyphs.Tag)
	if err != nil {
		return err
	}
	srcOutlines := t.(*cffglyphs.Outlines)

	if len(o.Font.Private) != 1 || len(srcOutlines.Font.Private) != 1 {
		return errors.New("cannot merge CFF fonts with multiple private dicts")
	}

	glyphs := make([]*cff.Glyph, 0,
		len(o.Font.Glyphs)+len(srcOutlines.Font.Glyphs)-1)
	glyphs = append(glyphs, o.Font.Glyphs...)
	glyphs = append(glyphs, srcOutlines.Font.Glyphs[1:]...)

	merged := &cff.Font{
		FontInfo: o.Font.FontInfo,
		Outlines: &cff.Outlines{
			Glyphs:   glyphs,
			Private:  o.Font.Private,
			FDSelect: func(glyph.ID) int { return 0 },
			Encoding: o.Font.Encoding,
		},
	}
	f.SetTable(cffglyphs.Tag, &cffglyphs.Outlines{Font: merged})
	return nil
}

func mergeHmtx(f, src *foundry.Font, numNew int) error {
	if !f.Has(hmtx.Tag) {
		return nil
	}
	t, err := f.Table(hmtx.Tag)
	if err != nil {
		return err
	}
	info := t.(*hmtx.Info)

	var srcWidths []uint16
	var srcLSB []funit.Int16
	if src.Has(hmtx.Tag) {
		t, err := src.Table(hmtx.Tag)
		if err != nil {
			return err
		}
		srcInfo := t.(*hmtx.Info)
		srcWidths = srcInfo.Widths
		srcLSB = srcInfo.LSB
	} else if src.IsCFF() {
		t, err := src.Table(cffglyphs.Tag)
		if err != nil {
			return err
		}
		srcWidths = t.(*cffglyphs.Outlines).Widths()
	}

	widths := make([]uint16, numNew)
	copy(widths, info.Widths)
	for gid := 1; gid < len(srcWidths); gid++ {
		widths[len(info.Widths)+gid-1] = srcWidths[gid]
	}
	info.Widths = widths

	if info.LSB != nil {
		lsb := make([]funit.Int16, numNew)
		copy(lsb, info.LSB)
		for gid := 1; gid < len(srcLSB); gid++ {
			lsb[len(info.LSB)+gid-1] = srcLSB[gid]
		}
		info.LSB = lsb
	}
	info.GlyphExtent = nil
	f.MarkDirty(hmtx.Tag)
	return nil
}

func mergeCmap(f, src *foundry.Font, newGid func(glyph.ID) glyph.ID) error {
	if !src.Has(cmap.Tag) {
		return nil
	}
	t, err := src.Table(cmap.Tag)
	if err != nil {
		return err
	}
	srcMapping, err := t.(cmap.Table).Mapping()
	if err != nil {
		return err
	}

	var m map[rune]glyph.ID
	if f.Has(cmap.Tag) {
		t, err := f.Table(cmap.Tag)
		if err != nil {
			return err
		}
		m, err = t.(cmap.Table).Mapping()
		if err != nil {
			return err
		}
	} else {
		m = map[rune]glyph.ID{}
	}

	changed := false
	for r, gid := range srcMapping {
		if gid == 0 {
			continue
		}
		if _, ok := m[r]; ok {
			continue
		}
		m[r] = newGid(gid)
		changed = true
	}
	if changed {
		f.SetTable(cmap.Tag, cmap.FromMapping(m))
	}
	return nil
}

func mergeKern(f, src *foundry.Font, numSrc int, newGid func(glyph.ID) glyph.ID) {
	if !src.Has(kern.Tag) {
		return
	}
	t, err := src.Table(kern.Tag)
	if err != nil {
		return
	}
	srcKern := t.(kern.Info)
	if len(srcKern) == 0 {
		return
	}

	var info kern.Info
	if f.Has(kern.Tag) {
		t, err := f.Table(kern.Tag)
		if err != nil {
			return
		}
		info = t.(kern.Info)
	} else {
		info = kern.Info{}
	}

	for pair, val := range srcKern {
		if pair.Left == 0 || pair.Right == 0 {
			continue
		}
		if int(pair.Left) >= numSrc || int(pair.Right) >= numSrc {
			continue
		}
		p2 := kern.Pair{Left: newGid(pair.Left), Right: newGid(pair.Right)}
		if _, ok := info[p2]; !ok {
			info[p2] = val
		}
	}
	f.SetTable(kern.Tag, info)
}
