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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/postscript/type1/names"
	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/name"
	"seehuhn.de/go/foundry/os2"
	"seehuhn.de/go/foundry/post"
)

const maxComponentDepth = 8

// ToFont converts the UFO source to a binary font object with CFF
// outlines.  Components are flattened, since CFF has no component
// construct.
func (f *Font) ToFont() (*foundry.Font, error) {
	info := f.Info
	if info == nil {
		info = &Info{UnitsPerEm: 1000}
	}
	upem := info.UnitsPerEm
	if upem < 16 || upem > 16384 {
		return nil, fmt.Errorf("ufo: units per em %d out of range", upem)
	}
	q := 1 / float64(upem)

	order := f.GlyphOrder()
	if len(order) == 0 || order[0] != ".notdef" {
		order = append([]string{".notdef"}, order...)
	}

	outlines := &cff.Outlines{
		Private:  []*type1.PrivateDict{{}},
		FDSelect: func(glyph.ID) int { return 0 },
	}
	mapping := map[rune]glyph.ID{}
	widths := make([]uint16, len(order))
	for gid, glyphName := range order {
		src := f.Glyphs[glyphName]
		g := cff.NewGlyph(glyphName, 0)
		if src != nil {
			g.Width = src.Width
			widths[gid] = uint16(math.Round(src.Width))
			err := f.appendOutline(g, src, matrix.Identity, 0)
			if err != nil {
				return nil, err
			}
		}
		outlines.Glyphs = append(outlines.Glyphs, g)

		if gid == 0 {
			continue
		}
		uu := []rune(nil)
		if src != nil {
			uu = src.Unicodes
		}
		if len(uu) == 0 {
			uu = []rune(names.ToUnicode(glyphName, ""))
			if len(uu) != 1 {
				uu = nil
			}
		}
		for _, r := range uu {
			if _, ok := mapping[r]; !ok {
				mapping[r] = glyph.ID(gid)
			}
		}
	}

	fontName := info.PostScriptFontName
	if fontName == "" && info.FamilyName != "" {
		fontName = info.FamilyName
		if info.StyleName != "" {
			fontName += "-" + info.StyleName
		}
	}
	fullName := info.FamilyName
	if info.StyleName != "" && fullName != "" {
		fullName += " " + info.StyleName
	}

	cffFont := &cff.Font{
		FontInfo: &type1.FontInfo{
			FontName:     fontName,
			FamilyName:   info.FamilyName,
			FullName:     fullName,
			Weight:       info.StyleName,
			Copyright:    info.Copyright,
			Notice:       info.Trademark,
			ItalicAngle:  info.ItalicAngle,
			IsFixedPitch: info.IsFixedPitch,
			FontMatrix:   matrix.Matrix{q, 0, 0, q, 0, 0},
		},
		Outlines: outlines,
	}

	res := foundry.New()
	res.ScalerType = foundry.ScalerTypeCFF

	cffOutlines := &cffglyphs.Outlines{Font: cffFont}
	var bbox funit.Rect
	for gid := range outlines.Glyphs {
		ext := cffOutlines.Extent(glyph.ID(gid))
		if ext.IsZero() {
			continue
		}
		if bbox.IsZero() {
			bbox = ext
		} else {
			bbox.Extend(ext)
		}
	}

	headInfo := &head.Info{
		FontRevision: head.Version(uint32(info.VersionMajor)<<16 |
			uint32(info.VersionMinor)&0xFFFF),
		HasYBaseAt0: true,
		HasXBaseAt0: true,
		UnitsPerEm:  uint16(upem),
		FontBBox:    bbox,
	}
	res.SetTable(head.Tag, headInfo)

	res.SetTable(maxp.Tag, &maxp.Info{NumGlyphs: len(order)})

	res.SetTable(hmtx.Tag, &hmtx.Info{
		Widths:  widths,
		Ascent:  funit.Int16(math.Round(info.Ascender)),
		Descent: funit.Int16(math.Round(info.Descender)),
		LineGap: funit.Int16(math.Round(info.LineGap)),
	})

	os2Info := &os2.Info{
		WeightClass: os2.Weight(info.WeightClass),
		WidthClass:  os2.Width(info.WidthClass),
		Ascent:      funit.Int16(math.Round(info.Ascender)),
		Descent:     funit.Int16(math.Round(info.Descender)),
		LineGap:     funit.Int16(math.Round(info.LineGap)),
		CapHeight:   funit.Int16(math.Round(info.CapHeight)),
		XHeight:     funit.Int16(math.Round(info.XHeight)),
		Vendor:      "    ",
	}
	if os2Info.WeightClass == 0 {
		os2Info.WeightClass = os2.WeightNormal
	}
	if os2Info.WidthClass == 0 {
		os2Info.WidthClass = os2.WidthNormal
	}
	res.SetTable(os2.Tag, os2Info)

	nameInfo := name.New()
	if info.FamilyName != "" {
		nameInfo.Set(name.Family, info.FamilyName)
	}
	if info.StyleName != "" {
		nameInfo.Set(name.Subfamily, info.StyleName)
	}
	if fullName != "" {
		nameInfo.Set(name.FullName, fullName)
	}
	if fontName != "" {
		nameInfo.Set(name.PostScriptName, fontName)
	}
	if info.VersionMajor != 0 || info.VersionMinor != 0 {
		nameInfo.Set(name.Version,
			fmt.Sprintf("Version %d.%03d", info.VersionMajor, info.VersionMinor))
	}
	if info.Copyright != "" {
		nameInfo.Set(name.Copyright, info.Copyright)
	}
	if info.Trademark != "" {
		nameInfo.Set(name.Trademark, info.Trademark)
	}
	if len(nameInfo.Records) > 0 {
		res.SetTable(name.Tag, nameInfo)
	}

	res.SetTable(post.Tag, &post.Info{
		ItalicAngle:        info.ItalicAngle,
		UnderlinePosition:  funit.Int16(math.Round(info.UnderlinePosition)),
		UnderlineThickness: funit.Int16(math.Round(info.UnderlineThickness)),
		IsFixedPitch:       info.IsFixedPitch,
	})

	if len(mapping) > 0 {
		res.SetTable(cmap.Tag, cmap.FromMapping(mapping))
	}

	res.SetTable(cffglyphs.Tag, cffOutlines)

	return res, nil
}

// appendOutline adds the contours of a UFO glyph to a CFF glyph,
// transformed by m.  Components are resolved recursively.
func (f *Font) appendOutline(g *cff.Glyph, src *Glyph, m matrix.Matrix, depth int) error {
	if depth > maxComponentDepth {
		return fmt.Errorf("ufo: component nesting too deep in glyph %q", src.Name)
	}

	for _, contour := range src.Contours {
		err := appendGlifContour(g, contour, m)
		if err != nil {
			return fmt.Errorf("ufo: glyph %q: %w", src.Name, err)
		}
	}
	for _, comp := range src.Components {
		base, ok := f.Glyphs[comp.Base]
		if !ok {
			return fmt.Errorf("ufo: glyph %q references missing glyph %q",
				src.Name, comp.Base)
		}
		t := comp.Transform
		m2 := matrix.Matrix{t[0], t[1], t[2], t[3], t[4], t[5]}.Mul(m)
		err := f.appendOutline(g, base, m2, depth+1)
		if err != nil {
			return err
		}
	}
	return nil
}

// appendGlifContour converts one glif contour to charstring commands.
// Quadratic segments are promoted to cubic ones with the control
// points at one and two thirds.
func appendGlifContour(g *cff.Glyph, contour Contour, m matrix.Matrix) error {
	if len(contour) == 0 {
		return nil
	}

	apply := func(p Point) (float64, float64) {
		return m.Apply(p.X, p.Y)
	}

	// Implied on-curve points between consecutive off-curve points
	// make quadratic spline runs explicit.
	var ext Contour
	for i, p := range contour {
		if i > 0 && p.Type == OffCurve && contour[i-1].Type == OffCurve {
			prev := contour[i-1]
			ext = append(ext, Point{
				X:    (p.X + prev.X) / 2,
				Y:    (p.Y + prev.Y) / 2,
				Type: QCurveTo,
			})
		}
		ext = append(ext, p)
	}

	closed := ext[0].Type != MoveTo
	start := -1
	if closed {
		for i, p := range ext {
			if p.Type != OffCurve {
				start = i
				break
			}
		}
		if start < 0 {
			// TrueType-style contour of off-curve points only: close
			// the quadratic spline through the implied midpoint
			// between last and first point.
			last := ext[len(ext)-1]
			first := ext[0]
			ext = append(ext, Point{
				X:    (first.X + last.X) / 2,
				Y:    (first.Y + last.Y) / 2,
				Type: QCurveTo,
			})
			start = len(ext) - 1
		}
		rotated := make(Contour, 0, len(ext))
		rotated = append(rotated, ext[start:]...)
		rotated = append(rotated, ext[:start]...)
		// Append the start point again so that the final segment is
		// processed in the loop below.
		rotated = append(rotated, ext[start])
		ext = rotated
	}

	x0, y0 := apply(ext[0])
	g.MoveTo(x0, y0)

	var ctrl []Point
	for _, p := range ext[1:] {
		switch p.Type {
		case OffCurve:
			ctrl = append(ctrl, p)
			continue
		case MoveTo:
			return fmt.Errorf("move point inside contour")
		case LineTo:
			if len(ctrl) > 0 {
				return fmt.Errorf("control points before line point")
			}
			x, y := apply(p)
			g.LineTo(x, y)
		case CurveTo:
			switch len(ctrl) {
			case 2:
				x1, y1 := apply(ctrl[0])
				x2, y2 := apply(ctrl[1])
				x, y := apply(p)
				g.CurveTo(x1, y1, x2, y2, x, y)
			case 0:
				x, y := apply(p)
				g.LineTo(x, y)
			default:
				return fmt.Errorf("curve point with %d control points", len(ctrl))
			}
		case QCurveTo:
			if len(ctrl) > 1 {
				return fmt.Errorf("qcurve point with %d control points", len(ctrl))
			}
			x, y := apply(p)
			if len(ctrl) == 0 {
				g.LineTo(x, y)
			} else {
				cx, cy := apply(ctrl[0])
				px, py := currentPoint(g)
				g.CurveTo(
					px+2*(cx-px)/3, py+2*(cy-py)/3,
					x+2*(cx-x)/3, y+2*(cy-y)/3,
					x, y)
			}
		}
		ctrl = ctrl[:0]
	}
	if len(ctrl) > 0 {
		return fmt.Errorf("trailing control points")
	}
	return nil
}

// currentPoint returns the end point of the last charstring command.
func currentPoint(g *cff.Glyph) (float64, float64) {
	for i := len(g.Cmds) - 1; i >= 0; i-- {
		args := g.Cmds[i].Args
		switch g.Cmds[i].Op {
		case cff.OpMoveTo, cff.OpLineTo, cff.OpCurveTo:
			return args[len(args)-2], args[len(args)-1]
		}
	}
	return 0, 0
}
