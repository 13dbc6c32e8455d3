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
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/table"
)

// metricsStage recomputes the metrics which are derived from the glyph
// outlines: left side bearings and glyph extents in "hmtx"/"hhea", and
// the font bounding box in "head".  Applying the stage twice gives the
// same result as applying it once.
type metricsStage struct{}

func newMetricsStage(cfg Config) (Stage, error) {
	return metricsStage{}, nil
}

func (metricsStage) Name() string { return "recalculate-metrics" }

func (metricsStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindMetrics}
}

func (metricsStage) Writes() []table.Kind {
	return []table.Kind{table.KindMetrics, table.KindHeader}
}

func (metricsStage) Apply(f *foundry.Font) error {
	extents, err := glyphExtents(f)
	if err != nil {
		return err
	}

	t, err := f.Table(hmtx.Tag)
	if err != nil {
		return err
	}
	info := t.(*hmtx.Info)
	if len(extents) != len(info.Widths) {
		return &table.InconsistentError{Msg: "metrics and outlines disagree on glyph count"}
	}
	info.GlyphExtent = extents
	lsb := make([]funit.Int16, len(extents))
	for i, ext := range extents {
		lsb[i] = ext.LLx
	}
	info.LSB = lsb
	f.MarkDirty(hmtx.Tag)

	if f.Has(head.Tag) {
		t, err := f.Table(head.Tag)
		if err != nil {
			return err
		}
		headInfo := t.(*head.Info)
		var bbox funit.Rect
		for _, ext := range extents {
			bbox.Extend(ext)
		}
		headInfo.FontBBox = bbox
		f.MarkDirty(head.Tag)
	}

	return nil
}

// glyphExtents returns the bounding boxes of all glyphs, in glyph ID
// order.
func glyphExtents(f *foundry.Font) ([]funit.Rect, error) {
	if f.IsGlyf() {
		t, err := f.Table(glyf.Tag)
		if err != nil {
			return nil, err
		}
		gg := t.(glyf.Glyphs)
		extents := make([]funit.Rect, len(gg))
		for i, g := range gg {
			if g == nil {
				continue
			}
			extents[i] = g.Rect
		}
		return extents, nil
	}

	t, err := f.Table(cffglyphs.Tag)
	if err != nil {
		return nil, err
	}
	o := t.(*cffglyphs.Outlines)
	extents := make([]funit.Rect, o.NumGlyphs())
	for i := range extents {
		extents[i] = o.Extent(glyph.ID(i))
	}
	return extents, nil
}
