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

	"seehuhn.de/go/geom/matrix"
	psfunit "seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hint"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/name"
	"seehuhn.de/go/foundry/post"
	"seehuhn.de/go/foundry/table"
)

// convertStage changes the outline format of the font.  Converting
// TrueType outlines to CFF uses the standard quadratic-to-cubic
// substitution; the curves are preserved exactly.  The reverse
// direction approximates each cubic curve by two quadratic segments,
// so a CFF-glyf-CFF round trip does not reproduce the original
// curves.  Hinting information does not survive the conversion in
// either direction.
type convertStage struct {
	format string
}

func newConvertStage(cfg Config) (Stage, error) {
	format, ok := cfg["format"].(string)
	if !ok {
		return nil, &ConfigurationError{
			Stage: "convert-outlines",
			Msg:   "configuration key \"format\" must hold a string",
		}
	}
	switch format {
	case "cff", "glyf":
		// pass
	default:
		return nil, &ConfigurationError{
			Stage: "convert-outlines",
			Msg:   fmt.Sprintf("unknown outline format %q", format),
		}
	}
	return &convertStage{format: format}, nil
}

func (st *convertStage) Name() string { return "convert-outlines" }

func (st *convertStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindHeader}
}

func (st *convertStage) Writes() []table.Kind {
	return []table.Kind{
		table.KindOutlines,
		table.KindMetrics,
		table.KindNames,
		table.KindHeader,
		table.KindHinting,
	}
}

func (st *convertStage) Apply(f *foundry.Font) error {
	switch st.format {
	case "cff":
		if f.IsCFF() {
			return nil
		}
		return toCFF(f)
	case "glyf":
		if f.IsGlyf() {
			return nil
		}
		return toGlyf(f)
	}
	panic("unreachable")
}

// toCFF replaces the "glyf" and "loca" tables by a "CFF " table.
// Composite glyphs are flattened first, since CFF has no equivalent
// construct.  Hinting tables are removed.
func toCFF(f *foundry.Font) error {
	t, err := f.Table(glyf.Tag)
	if err != nil {
		return err
	}
	gg := t.(glyf.Glyphs)

	t, err = f.Table(head.Tag)
	if err != nil {
		return err
	}
	headInfo := t.(*head.Info)
	q := 1 / float64(headInfo.UnitsPerEm)

	names, err := f.GlyphNames()
	if err != nil {
		return err
	}
	var widths []uint16
	if f.Has(hmtx.Tag) {
		t, err := f.Table(hmtx.Tag)
		if err != nil {
			return err
		}
		widths = t.(*hmtx.Info).Widths
	}

	outlines := &cff.Outlines{
		Private:  []*type1.PrivateDict{{}},
		FDSelect: func(glyph.ID) int { return 0 },
	}
	for gid := range gg {
		var glyphName string
		if gid < len(names) {
			glyphName = names[gid]
		}
		var width float64
		if gid < len(widths) {
			width = float64(widths[gid])
		}
		g := cff.NewGlyph(glyphName, width)

		contours, err := flattenGlyph(gg, gid, 0)
		if err != nil {
			return err
		}
		for _, cc := range contours {
			appendContour(g, cc)
		}
		outlines.Glyphs = append(outlines.Glyphs, g)
	}

	cffFont := &cff.Font{
		FontInfo: makeFontInfo(f, q),
		Outlines: outlines,
	}

	f.RemoveTable(glyf.Tag)
	f.RemoveTable(hint.FpgmTag)
	f.RemoveTable(hint.PrepTag)
	f.RemoveTable(hint.CvtTag)
	f.SetTable(cffglyphs.Tag, &cffglyphs.Outlines{Font: cffFont})
	f.ScalerType = foundry.ScalerTypeCFF

	if f.Has(maxp.Tag) {
		t, err := f.Table(maxp.Tag)
		if err != nil {
			return err
		}
		info := t.(*maxp.Info)
		info.TTF = nil
		f.MarkDirty(maxp.Tag)
	}

	return nil
}

// appendContour adds one TrueType contour to a CFF glyph.  Quadratic
// segments become cubic ones with the control points at one and two
// thirds.  See https://pomax.github.io/bezierinfo/#reordering .
func appendContour(g *cff.Glyph, cc glyf.Contour) {
	if len(cc) == 0 {
		return
	}

	// Insert the implied on-curve points between consecutive
	// off-curve points.
	var ext glyf.Contour
	var prev glyf.Point
	onCurve := true
	for _, cur := range cc {
		if !onCurve && !cur.OnCurve {
			ext = append(ext, glyf.Point{
				X:       (cur.X + prev.X) / 2,
				Y:       (cur.Y + prev.Y) / 2,
				OnCurve: true,
			})
		}
		ext = append(ext, cur)
		prev = cur
		onCurve = cur.OnCurve
	}
	n := len(ext)

	offs := -1
	for i, p := range ext {
		if p.OnCurve {
			offs = i
			break
		}
	}
	if offs < 0 {
		// A contour without on-curve points has no start point.
		return
	}

	g.MoveTo(float64(ext[offs].X), float64(ext[offs].Y))
	i := 0
	for i < n {
		i0 := (i + offs) % n
		i1 := (i0 + 1) % n
		if ext[i1].OnCurve {
			if i == n-1 {
				break
			}
			g.LineTo(float64(ext[i1].X), float64(ext[i1].Y))
			i++
		} else {
			i2 := (i1 + 1) % n
			g.CurveTo(
				float64(ext[i0].X)/3+float64(ext[i1].X)*2/3,
				float64(ext[i0].Y)/3+float64(ext[i1].Y)*2/3,
				float64(ext[i1].X)*2/3+float64(ext[i2].X)/3,
				float64(ext[i1].Y)*2/3+float64(ext[i2].Y)/3,
				float64(ext[i2].X),
				float64(ext[i2].Y))
			i += 2
		}
	}
}

// makeFontInfo collects the CFF font dictionary entries from the
// "name" and "post" tables, as far as they are present.
func makeFontInfo(f *foundry.Font, q float64) *type1.FontInfo {
	fontInfo := &type1.FontInfo{
		FontMatrix: matrix.Matrix{q, 0, 0, q, 0, 0},
	}

	if f.Has(name.Tag) {
		t, err := f.Table(name.Tag)
		if err == nil {
			info := t.(*name.Info)
			fontInfo.FontName = info.Get(name.PostScriptName)
			fontInfo.FamilyName = info.Get(name.Family)
			fontInfo.FullName = info.Get(name.FullName)
			fontInfo.Version = info.Get(name.Version)
			fontInfo.Notice = info.Get(name.Trademark)
			fontInfo.Copyright = info.Get(name.Copyright)
			fontInfo.Weight = info.Get(name.Subfamily)
		}
	}
	if f.Has(post.Tag) {
		t, err := f.Table(post.Tag)
		if err == nil {
			info := t.(*post.Info)
			fontInfo.ItalicAngle = info.ItalicAngle
			fontInfo.IsFixedPitch = info.IsFixedPitch
			fontInfo.UnderlinePosition = psfunit.Float64(info.UnderlinePosition)
			fontInfo.UnderlineThickness = psfunit.Float64(info.UnderlineThickness)
		}
	}
	return fontInfo
}

// toGlyf replaces the "CFF " table by "glyf" and "loca" tables.  Each
// cubic curve is approximated by two quadratic segments.
func toGlyf(f *foundry.Font) error {
	t, err := f.Table(cffglyphs.Tag)
	if err != nil {
		return err
	}
	o := t.(*cffglyphs.Outlines)
	cffFont := o.Font

	gg := make(glyf.Glyphs, len(cffFont.Glyphs))
	for gid, cffGlyph := range cffFont.Glyphs {
		if cffGlyph == nil || len(cffGlyph.Cmds) == 0 {
			continue
		}
		contours := quadraticContours(cffGlyph)
		info := &glyf.GlyphInfo{Contours: contours}
		data, err := info.Encode()
		if err != nil {
			return err
		}
		gg[gid] = &glyf.Glyph{
			Rect: info.Bounds(),
			Data: data,
		}
	}

	f.RemoveTable(cffglyphs.Tag)
	f.SetTable(glyf.Tag, gg)
	f.ScalerType = foundry.ScalerTypeTrueType

	if f.Has(maxp.Tag) {
		t, err := f.Table(maxp.Tag)
		if err != nil {
			return err
		}
		info := t.(*maxp.Info)
		if info.TTF == nil {
			info.TTF = &maxp.TTFInfo{MaxZones: 1}
		}
		updateMaxima(info.TTF, gg)
		f.MarkDirty(maxp.Tag)
	}

	// TrueType rasterizers need glyph names from the "post" table.
	names := o.Names()
	haveNames := false
	for _, n := range names {
		if n != "" {
			haveNames = true
			break
		}
	}
	if haveNames {
		var info *post.Info
		if f.Has(post.Tag) {
			t, err := f.Table(post.Tag)
			if err == nil {
				info = t.(*post.Info)
			}
		}
		if info == nil {
			info = &post.Info{
				ItalicAngle:        cffFont.FontInfo.ItalicAngle,
				UnderlinePosition:  funit.Int16(cffFont.FontInfo.UnderlinePosition),
				UnderlineThickness: funit.Int16(cffFont.FontInfo.UnderlineThickness),
				IsFixedPitch:       cffFont.FontInfo.IsFixedPitch,
			}
		}
		info.Names = names
		f.SetTable(post.Tag, info)
	}

	if !f.Has(hmtx.Tag) {
		widths := o.Widths()
		info := &hmtx.Info{Widths: widths}
		f.SetTable(hmtx.Tag, info)
	}

	return nil
}

// quadraticContours converts the charstring path of a CFF glyph to
// TrueType contours.  Each cubic curve is split at the midpoint and
// the two halves are replaced by quadratic segments; the join point
// is left implied between the two off-curve control points.
func quadraticContours(g *cff.Glyph) []glyf.Contour {
	var contours []glyf.Contour
	var cur glyf.Contour
	var x, y float64

	pt := func(x, y float64, onCurve bool) glyf.Point {
		return glyf.Point{
			X:       funit.Int16(math.Round(x)),
			Y:       funit.Int16(math.Round(y)),
			OnCurve: onCurve,
		}
	}

	for _, cmd := range g.Cmds {
		switch cmd.Op {
		case cff.OpMoveTo:
			if len(cur) > 0 {
				contours = append(contours, cur)
				cur = nil
			}
			x, y = cmd.Args[0], cmd.Args[1]
			cur = append(cur, pt(x, y, true))
		case cff.OpLineTo:
			x, y = cmd.Args[0], cmd.Args[1]
			cur = append(cur, pt(x, y, true))
		case cff.OpCurveTo:
			x1, y1 := cmd.Args[0], cmd.Args[1]
			x2, y2 := cmd.Args[2], cmd.Args[3]
			x3, y3 := cmd.Args[4], cmd.Args[5]
			// Control points of the two quadratic halves.  The
			// implied on-curve point between them is the curve
			// midpoint.
			qx1 := x + 0.75*(x1-x)
			qy1 := y + 0.75*(y1-y)
			qx2 := x3 + 0.75*(x2-x3)
			qy2 := y3 + 0.75*(y2-y3)
			cur = append(cur,
				pt(qx1, qy1, false),
				pt(qx2, qy2, false),
				pt(x3, y3, true))
			x, y = x3, y3
		default:
			// hint masks carry no outline information
		}
	}
	if len(cur) > 0 {
		contours = append(contours, cur)
	}
	return contours
}
