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

package ufo

import (
	"fmt"
	"sort"

	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/name"
	"seehuhn.de/go/foundry/os2"
	"seehuhn.de/go/foundry/post"
)

// FromFont converts a binary font object to a UFO source.  TrueType
// outlines become quadratic glif contours, CFF outlines cubic ones.
func FromFont(src *foundry.Font) (*Font, error) {
	numGlyphs, err := src.NumGlyphs()
	if err != nil {
		return nil, err
	}

	res := New()
	res.Info = exportInfo(src)

	glyphNames, err := src.GlyphNames()
	if err != nil {
		return nil, err
	}
	order := make([]string, numGlyphs)
	used := make(map[string]bool, numGlyphs)
	for gid := 0; gid < numGlyphs; gid++ {
		var n string
		if gid < len(glyphNames) {
			n = glyphNames[gid]
		}
		if gid == 0 {
			n = ".notdef"
		}
		if n == "" || used[n] {
			n = fmt.Sprintf("glyph%05d", gid)
		}
		order[gid] = n
		used[n] = true
	}
	res.Order = order

	var widths []uint16
	if src.Has(hmtx.Tag) {
		t, err := src.Table(hmtx.Tag)
		if err != nil {
			return nil, err
		}
		widths = t.(*hmtx.Info).Widths
	}

	unicodes := make(map[glyph.ID][]rune)
	if src.Has(cmap.Tag) {
		t, err := src.Table(cmap.Tag)
		if err != nil {
			return nil, err
		}
		m, err := t.(cmap.Table).Mapping()
		if err != nil {
			return nil, err
		}
		rr := make([]rune, 0, len(m))
		for r := range m {
			rr = append(rr, r)
		}
		sort.Slice(rr, func(i, j int) bool { return rr[i] < rr[j] })
		for _, r := range rr {
			gid := m[r]
			unicodes[gid] = append(unicodes[gid], r)
		}
	}

	for gid := 0; gid < numGlyphs; gid++ {
		g := &Glyph{
			Name:     order[gid],
			Unicodes: unicodes[glyph.ID(gid)],
		}
		if gid < len(widths) {
			g.Width = float64(widths[gid])
		}
		res.Glyphs[g.Name] = g
	}

	switch {
	case src.IsCFF():
		t, err := src.Table(cffglyphs.Tag)
		if err != nil {
			return nil, err
		}
		o := t.(*cffglyphs.Outlines)
		for gid, cffGlyph := range o.Font.Glyphs {
			if cffGlyph == nil {
				continue
			}
			res.Glyphs[order[gid]].Contours = cubicContours(cffGlyph)
		}
	case src.IsGlyf():
		t, err := src.Table(glyf.Tag)
		if err != nil {
			return nil, err
		}
		gg := t.(glyf.Glyphs)
		for gid := 0; gid < numGlyphs && gid < len(gg); gid++ {
			err := exportGlyfGlyph(res.Glyphs[order[gid]], gg, gid, order)
			if err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// exportInfo collects the fontinfo entries from the metadata tables.
func exportInfo(src *foundry.Font) *Info {
	info := &Info{UnitsPerEm: 1000}

	if src.Has(head.Tag) {
		if t, err := src.Table(head.Tag); err == nil {
			h := t.(*head.Info)
			info.UnitsPerEm = int(h.UnitsPerEm)
			rev := uint32(h.FontRevision)
			info.VersionMajor = int(rev >> 16)
			info.VersionMinor = int(rev & 0xFFFF)
		}
	}
	if src.Has(hmtx.Tag) {
		if t, err := src.Table(hmtx.Tag); err == nil {
			h := t.(*hmtx.Info)
			info.Ascender = float64(h.Ascent)
			info.Descender = float64(h.Descent)
			info.LineGap = float64(h.LineGap)
		}
	}
	if src.Has(os2.Tag) {
		if t, err := src.Table(os2.Tag); err == nil {
			o := t.(*os2.Info)
			info.WeightClass = int(o.WeightClass)
			info.WidthClass = int(o.WidthClass)
			info.CapHeight = float64(o.CapHeight)
			info.XHeight = float64(o.XHeight)
		}
	}
	if src.Has(name.Tag) {
		if t, err := src.Table(name.Tag); err == nil {
			n := t.(*name.Info)
			info.FamilyName = n.Get(name.Family)
			info.StyleName = n.Get(name.Subfamily)
			info.PostScriptFontName = n.Get(name.PostScriptName)
			info.Copyright = n.Get(name.Copyright)
			info.Trademark = n.Get(name.Trademark)
		}
	}
	if src.Has(post.Tag) {
		if t, err := src.Table(post.Tag); err == nil {
			p := t.(*post.Info)
			info.ItalicAngle = p.ItalicAngle
			info.UnderlinePosition = float64(p.UnderlinePosition)
			info.UnderlineThickness = float64(p.UnderlineThickness)
			info.IsFixedPitch = p.IsFixedPitch
		}
	}
	return info
}

// cubicContours converts a CFF charstring path to glif contours.
// The charstring implicitly closes each contour; if the last segment
// ends at the start point, the duplicate point is dropped and its
// type carries over to the start point.
func cubicContours(g *cff.Glyph) []Contour {
	var res []Contour
	var cur Contour

	flush := func() {
		if len(cur) == 0 {
			return
		}
		n := len(cur)
		if n > 1 && cur[n-1].X == cur[0].X && cur[n-1].Y == cur[0].Y {
			cur[0].Type = cur[n-1].Type
			cur = cur[:n-1]
		}
		res = append(res, cur)
		cur = nil
	}

	for _, cmd := range g.Cmds {
		switch cmd.Op {
		case cff.OpMoveTo:
			flush()
			cur = append(cur, Point{
				X:    cmd.Args[0],
				Y:    cmd.Args[1],
				Type: LineTo,
			})
		case cff.OpLineTo:
			cur = append(cur, Point{
				X:    cmd.Args[0],
				Y:    cmd.Args[1],
				Type: LineTo,
			})
		case cff.OpCurveTo:
			cur = append(cur,
				Point{X: cmd.Args[0], Y: cmd.Args[1]},
				Point{X: cmd.Args[2], Y: cmd.Args[3]},
				Point{X: cmd.Args[4], Y: cmd.Args[5], Type: CurveTo})
		}
	}
	flush()
	return res
}

// exportGlyfGlyph fills in the contours or components of one glyph.
func exportGlyfGlyph(dst *Glyph, gg glyf.Glyphs, gid int, order []string) error {
	g := gg[gid]
	if g == nil {
		return nil
	}

	switch d := g.Data.(type) {
	case glyf.SimpleGlyph:
		info, err := d.Decode()
		if err != nil {
			return err
		}
		for _, c := range info.Contours {
			dst.Contours = append(dst.Contours, quadraticContour(c))
		}
	case glyf.CompositeGlyph:
		for _, comp := range d.Components {
			m, err := glyfComponentTransform(comp)
			if err != nil {
				return err
			}
			if int(comp.GlyphIndex) >= len(order) {
				return fmt.Errorf("component references glyph %d out of range",
					comp.GlyphIndex)
			}
			dst.Components = append(dst.Components, Component{
				Base:      order[comp.GlyphIndex],
				Transform: m,
			})
		}
	}
	return nil
}

// quadraticContour converts TrueType points to a closed glif contour.
// On-curve points following another on-curve point are line points,
// all other on-curve points are qcurve points.
func quadraticContour(c glyf.Contour) Contour {
	res := make(Contour, len(c))
	for i, p := range c {
		pt := Point{X: float64(p.X), Y: float64(p.Y)}
		if p.OnCurve {
			prev := c[(i+len(c)-1)%len(c)]
			if prev.OnCurve {
				pt.Type = LineTo
			} else {
				pt.Type = QCurveTo
			}
		}
		res[i] = pt
	}
	return res
}

// glyfComponentTransform converts composite placement arguments to the
// glif transform [xScale xyScale yxScale yScale xOffset yOffset].
func glyfComponentTransform(comp glyf.GlyphComponent) ([6]float64, error) {
	m := [6]float64{1, 0, 0, 1, 0, 0}

	if comp.Flags&glyf.FlagArgsAreXYValues == 0 {
		return m, fmt.Errorf("cannot export point-matched component of glyph %d",
			comp.GlyphIndex)
	}

	args := comp.Args
	if comp.Flags&glyf.FlagArg1And2AreWords != 0 {
		if len(args) < 4 {
			return m, fmt.Errorf("truncated component arguments")
		}
		m[4] = float64(int16(args[0])<<8 | int16(args[1]))
		m[5] = float64(int16(args[2])<<8 | int16(args[3]))
		args = args[4:]
	} else {
		if len(args) < 2 {
			return m, fmt.Errorf("truncated component arguments")
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
			return m, fmt.Errorf("truncated component scale")
		}
		s := f2dot14(0)
		m[0], m[3] = s, s
	case comp.Flags&glyf.FlagWeHaveAnXAndYScale != 0:
		if len(args) < 4 {
			return m, fmt.Errorf("truncated component scale")
		}
		m[0] = f2dot14(0)
		m[3] = f2dot14(1)
	case comp.Flags&glyf.FlagWeHaveATwoByTwo != 0:
		if len(args) < 8 {
			return m, fmt.Errorf("truncated component scale")
		}
		m[0] = f2dot14(0)
		m[1] = f2dot14(1)
		m[2] = f2dot14(2)
		m[3] = f2dot14(3)
	}
	return m, nil
}
