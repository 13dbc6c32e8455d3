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
	"fmt"
	"math"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/table"
)

const maxComponentDepth = 8

// decomposeStage replaces composite glyphs by simple glyphs with the
// component outlines copied in, with the component transformations
// applied.  The instructions of decomposed glyphs are dropped, since
// they refer to the points of the original components.
type decomposeStage struct{}

func newDecomposeStage(cfg Config) (Stage, error) {
	return decomposeStage{}, nil
}

func (decomposeStage) Name() string { return "decompose" }

func (decomposeStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines}
}

func (decomposeStage) Writes() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindHeader}
}

func (decomposeStage) Apply(f *foundry.Font) error {
	if !f.IsGlyf() {
		return nil
	}
	t, err := f.Table(glyf.Tag)
	if err != nil {
		return err
	}
	gg := t.(glyf.Glyphs)

	changed := false
	gg2 := make(glyf.Glyphs, len(gg))
	copy(gg2, gg)
	for gid, g := range gg {
		if g == nil {
			continue
		}
		if _, ok := g.Data.(glyf.CompositeGlyph); !ok {
			continue
		}
		contours, err := flattenGlyph(gg, gid, 0)
		if err != nil {
			return err
		}
		info := &glyf.GlyphInfo{Contours: contours}
		simple, err := info.Encode()
		if err != nil {
			return err
		}
		gg2[gid] = &glyf.Glyph{
			Rect: info.Bounds(),
			Data: simple,
		}
		changed = true
	}
	if !changed {
		return nil
	}
	f.SetTable(glyf.Tag, gg2)

	if f.Has(maxp.Tag) {
		t, err := f.Table(maxp.Tag)
		if err != nil {
			return err
		}
		info := t.(*maxp.Info)
		if info.TTF != nil {
			updateMaxima(info.TTF, gg2)
			f.MarkDirty(maxp.Tag)
		}
	}

	return nil
}

// flattenGlyph returns the contours of a glyph with all composite
// components resolved.
func flattenGlyph(gg glyf.Glyphs, gid int, depth int) ([]glyf.Contour, error) {
	if depth > maxComponentDepth {
		return nil, &table.InconsistentError{
			Msg: fmt.Sprintf("component nesting too deep at glyph %d", gid),
		}
	}
	if gid >= len(gg) {
		return nil, &table.InconsistentError{
			Msg: fmt.Sprintf("component references glyph %d out of range", gid),
		}
	}
	g := gg[gid]
	if g == nil {
		return nil, nil
	}

	switch d := g.Data.(type) {
	case glyf.SimpleGlyph:
		info, err := d.Decode()
		if err != nil {
			return nil, err
		}
		return info.Contours, nil
	case glyf.CompositeGlyph:
		var res []glyf.Contour
		for _, comp := range d.Components {
			m, err := componentTransform(comp)
			if err != nil {
				return nil, err
			}
			sub, err := flattenGlyph(gg, int(comp.GlyphIndex), depth+1)
			if err != nil {
				return nil, err
			}
			for _, c := range sub {
				c2 := make(glyf.Contour, len(c))
				for i, p := range c {
					x := m[0]*float64(p.X) + m[2]*float64(p.Y) + m[4]
					y := m[1]*float64(p.X) + m[3]*float64(p.Y) + m[5]
					c2[i] = glyf.Point{
						X:       funit.Int16(math.Round(x)),
						Y:       funit.Int16(math.Round(y)),
						OnCurve: p.OnCurve,
					}
				}
				res = append(res, c2)
			}
		}
		return res, nil
	default:
		panic("unexpected glyph type")
	}
}

// componentTransform decodes the placement arguments of a composite
// glyph component into the matrix [a b c d e f].
func componentTransform(comp glyf.GlyphComponent) ([6]float64, error) {
	m := [6]float64{1, 0, 0, 1, 0, 0}

	if comp.Flags&glyf.FlagArgsAreXYValues == 0 {
		return m, fmt.Errorf("cannot decompose point-matched component of glyph %d",
			comp.GlyphIndex)
	}

	args := comp.Args
	if comp.Flags&glyf.FlagArg1And2AreWords != 0 {
		if len(args) < 4 {
			return m, table.Truncatedf(glyf.Tag, "component arguments")
		}
		m[4] = float64(int16(args[0])<<8 | int16(args[1]))
		m[5] = float64(int16(args[2])<<8 | int16(args[3]))
		args = args[4:]
	} else {
		if len(args) < 2 {
			return m, table.Truncatedf(glyf.Tag, "component arguments")
		}
		m[4] = float64(int8(args[0]))
		m[5] = float64(int8(args[1]))
		args = args[2:]
	}

	f2dot14 := func(i int) float64 {
		return float64(int16(args[2*i])<<8|int16(args[2*i+1])) / 16384
	}
	switch {
	case comp.Flags&glyf.FlagWeHaveAScale != 0:
		if len(args) < 2 {
			return m, table.Truncatedf(glyf.Tag, "component scale")
		}
		s := f2dot14(0)
		m[0], m[3] = s, s
	case comp.Flags&glyf.FlagWeHaveAnXAndYScale != 0:
		if len(args) < 4 {
			return m, table.Truncatedf(glyf.Tag, "component scale")
		}
		m[0] = f2dot14(0)
		m[3] = f2dot14(1)
	case comp.Flags&glyf.FlagWeHaveATwoByTwo != 0:
		if len(args) < 8 {
			return m, table.Truncatedf(glyf.Tag, "component scale")
		}
		m[0] = f2dot14(0)
		m[1] = f2dot14(1)
		m[2] = f2dot14(2)
		m[3] = f2dot14(3)
	}
	return m, nil
}

// updateMaxima recomputes the outline-dependent fields of the "maxp"
// table after all composites have been flattened.
func updateMaxima(ttf *maxp.TTFInfo, gg glyf.Glyphs) {
	ttf.MaxPoints = 0
	ttf.MaxContours = 0
	ttf.MaxCompositePoints = 0
	ttf.MaxCompositeContours = 0
	ttf.MaxComponentElements = 0
	ttf.MaxComponentDepth = 0
	for _, g := range gg {
		if g == nil {
			continue
		}
		d, ok := g.Data.(glyf.SimpleGlyph)
		if !ok {
			continue
		}
		info, err := d.Decode()
		if err != nil {
			continue
		}
		points := 0
		for _, c := range info.Contours {
			points += len(c)
		}
		if uint16(points) > ttf.MaxPoints {
			ttf.MaxPoints = uint16(points)
		}
		if uint16(len(info.Contours)) > ttf.MaxContours {
			ttf.MaxContours = uint16(len(info.Contours))
		}
	}
}
