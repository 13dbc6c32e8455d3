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
	"math"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/kern"
	"seehuhn.de/go/foundry/os2"
	"seehuhn.de/go/foundry/post"
	"seehuhn.de/go/foundry/table"
)

// scaleStage changes the units-per-em value of the font and scales all
// design-unit quantities accordingly: glyph coordinates, advance
// widths, vertical metrics and kerning values.
type scaleStage struct {
	upem uint16
}

func newScaleStage(cfg Config) (Stage, error) {
	upem, ok := cfg["upem"].(int)
	if !ok {
		return nil, &ConfigurationError{
			Stage: "scale-upem",
			Msg:   "configuration key \"upem\" must hold an int",
		}
	}
	if upem < 16 || upem > 16384 {
		return nil, &ConfigurationError{
			Stage: "scale-upem",
			Msg:   fmt.Sprintf("units per em %d out of range [16, 16384]", upem),
		}
	}
	return &scaleStage{upem: uint16(upem)}, nil
}

func (st *scaleStage) Name() string { return "scale-upem" }

func (st *scaleStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindHeader}
}

func (st *scaleStage) Writes() []table.Kind {
	return []table.Kind{
		table.KindOutlines,
		table.KindMetrics,
		table.KindHeader,
		table.KindLayout,
		table.KindNames,
	}
}

func (st *scaleStage) Apply(f *foundry.Font) error {
	if f.IsCFF() {
		// CFF glyph space is tied to the font matrix, not to a
		// units-per-em value.
		return errors.New("scale-upem requires TrueType outlines")
	}

	t, err := f.Table(head.Tag)
	if err != nil {
		return err
	}
	headInfo := t.(*head.Info)
	if headInfo.UnitsPerEm == st.upem {
		return nil
	}
	q := float64(st.upem) / float64(headInfo.UnitsPerEm)

	scale := func(x funit.Int16) funit.Int16 {
		return funit.Int16(math.Round(float64(x) * q))
	}
	scaleRect := func(r funit.Rect) funit.Rect {
		return funit.Rect{
			LLx: scale(r.LLx),
			LLy: scale(r.LLy),
			URx: scale(r.URx),
			URy: scale(r.URy),
		}
	}

	if f.IsGlyf() {
		t, err := f.Table(glyf.Tag)
		if err != nil {
			return err
		}
		gg := t.(glyf.Glyphs)
		gg2 := make(glyf.Glyphs, len(gg))
		for i, g := range gg {
			g2, err := scaleGlyph(g, q)
			if err != nil {
				return err
			}
			gg2[i] = g2
		}
		f.SetTable(glyf.Tag, gg2)
	}

	if f.Has(hmtx.Tag) {
		t, err := f.Table(hmtx.Tag)
		if err != nil {
			return err
		}
		info := t.(*hmtx.Info)
		for i, w := range info.Widths {
			info.Widths[i] = uint16(math.Round(float64(w) * q))
		}
		for i, lsb := range info.LSB {
			info.LSB[i] = scale(lsb)
		}
		for i, ext := range info.GlyphExtent {
			info.GlyphExtent[i] = scaleRect(ext)
		}
		info.Ascent = scale(info.Ascent)
		info.Descent = scale(info.Descent)
		info.LineGap = scale(info.LineGap)
		info.CaretOffset = scale(info.CaretOffset)
		f.MarkDirty(hmtx.Tag)
	}

	if f.Has(os2.Tag) {
		t, err := f.Table(os2.Tag)
		if err != nil {
			return err
		}
		info := t.(*os2.Info)
		info.Ascent = scale(info.Ascent)
		info.Descent = scale(info.Descent)
		info.LineGap = scale(info.LineGap)
		info.CapHeight = scale(info.CapHeight)
		info.XHeight = scale(info.XHeight)
		info.AvgGlyphWidth = int16(math.Round(float64(info.AvgGlyphWidth) * q))
		f.MarkDirty(os2.Tag)
	}

	if f.Has(post.Tag) {
		t, err := f.Table(post.Tag)
		if err == nil {
			info := t.(*post.Info)
			info.UnderlinePosition = scale(info.UnderlinePosition)
			info.UnderlineThickness = scale(info.UnderlineThickness)
			f.MarkDirty(post.Tag)
		}
	}

	if f.Has(kern.Tag) {
		t, err := f.Table(kern.Tag)
		if err == nil {
			info := t.(kern.Info)
			for pair, val := range info {
				info[pair] = scale(val)
			}
			f.MarkDirty(kern.Tag)
		}
	}

	headInfo.UnitsPerEm = st.upem
	headInfo.FontBBox = scaleRect(headInfo.FontBBox)
	f.MarkDirty(head.Tag)

	return nil
}

// scaleGlyph scales the coordinates of one glyph.  For composite
// glyphs only the placement offsets change; the component scale
// factors are dimensionless.
func scaleGlyph(g *glyf.Glyph, q float64) (*glyf.Glyph, error) {
	if g == nil {
		return nil, nil
	}

	scale := func(x funit.Int16) funit.Int16 {
		return funit.Int16(math.Round(float64(x) * q))
	}

	switch d := g.Data.(type) {
	case glyf.SimpleGlyph:
		info, err := d.Decode()
		if err != nil {
			return nil, err
		}
		for _, c := range info.Contours {
			for i, p := range c {
				c[i] = glyf.Point{
					X:       scale(p.X),
					Y:       scale(p.Y),
					OnCurve: p.OnCurve,
				}
			}
		}
		d2, err := info.Encode()
		if err != nil {
			return nil, err
		}
		return &glyf.Glyph{Rect: info.Bounds(), Data: d2}, nil

	case glyf.CompositeGlyph:
		d2 := glyf.CompositeGlyph{
			Components:   make([]glyf.GlyphComponent, len(d.Components)),
			Instructions: d.Instructions,
		}
		for i, comp := range d.Components {
			c2, err := scaleComponent(comp, q)
			if err != nil {
				return nil, err
			}
			d2.Components[i] = c2
		}
		g2 := &glyf.Glyph{
			Rect: funit.Rect{
				LLx: scale(g.LLx),
				LLy: scale(g.LLy),
				URx: scale(g.URx),
				URy: scale(g.URy),
			},
			Data: d2,
		}
		return g2, nil

	default:
		panic("unexpected glyph type")
	}
}

// scaleComponent scales the placement offset of a composite glyph
// component.  The offsets are re-encoded as 16-bit words, since the
// scaled values can leave the 8-bit range.
func scaleComponent(comp glyf.GlyphComponent, q float64) (glyf.GlyphComponent, error) {
	if comp.Flags&glyf.FlagArgsAreXYValues == 0 {
		// Point-matched components carry point numbers, which do not
		// scale.
		return comp, nil
	}

	args := comp.Args
	var dx, dy int
	var rest []byte
	if comp.Flags&glyf.FlagArg1And2AreWords != 0 {
		if len(args) < 4 {
			return comp, table.Truncatedf(glyf.Tag, "component arguments")
		}
		dx = int(int16(args[0])<<8 | int16(args[1]))
		dy = int(int16(args[2])<<8 | int16(args[3]))
		rest = args[4:]
	} else {
		if len(args) < 2 {
			return comp, table.Truncatedf(glyf.Tag, "component arguments")
		}
		dx = int(int8(args[0]))
		dy = int(int8(args[1]))
		rest = args[2:]
	}
	dx = int(math.Round(float64(dx) * q))
	dy = int(math.Round(float64(dy) * q))
	if dx < -32768 || dx > 32767 || dy < -32768 || dy > 32767 {
		return comp, &table.EncodeError{Tag: glyf.Tag, Msg: "component offset out of range"}
	}

	newArgs := make([]byte, 0, 4+len(rest))
	newArgs = append(newArgs,
		byte(dx>>8), byte(dx),
		byte(dy>>8), byte(dy))
	newArgs = append(newArgs, rest...)

	return glyf.GlyphComponent{
		Flags:      comp.Flags | glyf.FlagArg1And2AreWords,
		GlyphIndex: comp.GlyphIndex,
		Args:       newArgs,
	}, nil
}
