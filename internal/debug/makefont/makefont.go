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

// Package makefont constructs small fonts for use in unit tests.
// Do not use these fonts in production code.
package makefont

import (
	"bytes"

	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hint"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/kern"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/name"
	"seehuhn.de/go/foundry/os2"
	"seehuhn.de/go/foundry/post"
)

// The glyph set of the test fonts:
//
//	gid 0: .notdef, an open box
//	gid 1: "A", a square
//	gid 2: "B", a triangle with one quadratic curve segment
//	gid 3: "C", a composite referencing "A", shifted right
var testWidths = []uint16{500, 600, 600, 700}

// TrueType returns a four-glyph font with "glyf" outlines.
func TrueType() *foundry.Font {
	gg := make(glyf.Glyphs, 4)
	gg[0] = mustEncodeSimple([]glyf.Contour{
		{
			{X: 50, Y: 0, OnCurve: true},
			{X: 50, Y: 700, OnCurve: true},
			{X: 450, Y: 700, OnCurve: true},
			{X: 450, Y: 0, OnCurve: true},
		},
	}, nil)
	gg[1] = mustEncodeSimple([]glyf.Contour{
		{
			{X: 100, Y: 0, OnCurve: true},
			{X: 100, Y: 700, OnCurve: true},
			{X: 500, Y: 700, OnCurve: true},
			{X: 500, Y: 0, OnCurve: true},
		},
	}, nil)
	gg[2] = mustEncodeSimple([]glyf.Contour{
		{
			{X: 100, Y: 0, OnCurve: true},
			{X: 300, Y: 700, OnCurve: true},
			{X: 400, Y: 350, OnCurve: false},
			{X: 500, Y: 0, OnCurve: true},
		},
	}, nil)
	gg[3] = &glyf.Glyph{
		Rect: funit.Rect{LLx: 200, LLy: 0, URx: 600, URy: 700},
		Data: glyf.CompositeGlyph{
			Components: []glyf.GlyphComponent{
				{
					Flags:      glyf.FlagArg1And2AreWords | glyf.FlagArgsAreXYValues,
					GlyphIndex: 1,
					Args:       []byte{0, 100, 0, 0},
				},
			},
		},
	}

	f := foundry.New()
	f.SetTable(glyf.Tag, gg)

	var bbox funit.Rect
	for _, g := range gg {
		bbox.Extend(g.Rect)
	}
	f.SetTable(head.Tag, &head.Info{
		FontRevision:  1 << 16,
		HasYBaseAt0:   true,
		HasXBaseAt0:   true,
		UnitsPerEm:    1000,
		FontBBox:      bbox,
		LowestRecPPEM: 7,
	})
	f.SetTable(maxp.Tag, &maxp.Info{
		NumGlyphs: len(gg),
		TTF: &maxp.TTFInfo{
			MaxPoints:            4,
			MaxContours:          1,
			MaxCompositePoints:   4,
			MaxCompositeContours: 1,
			MaxZones:             1,
			MaxComponentElements: 1,
			MaxComponentDepth:    1,
		},
	})
	addCommonTables(f)
	f.SetTable(post.Tag, &post.Info{
		UnderlinePosition:  -100,
		UnderlineThickness: 50,
		Names:              []string{".notdef", "A", "B", "C"},
	})
	return f
}

// TrueTypeHinted returns the TrueType test font with font-wide hinting
// tables and per-glyph instructions added.
func TrueTypeHinted() *foundry.Font {
	f := TrueType()

	t, err := f.Table(glyf.Tag)
	if err != nil {
		panic(err)
	}
	gg := t.(glyf.Glyphs)
	info, err := gg[1].Data.(glyf.SimpleGlyph).Decode()
	if err != nil {
		panic(err)
	}
	info.Instructions = []byte{0x4B, 0x00} // MPPEM, SVTCA
	d, err := info.Encode()
	if err != nil {
		panic(err)
	}
	gg[1] = &glyf.Glyph{Rect: gg[1].Rect, Data: d}
	f.SetTable(glyf.Tag, gg)

	f.SetTable(hint.FpgmTag, hint.Program{0x00, 0x2C})
	f.SetTable(hint.PrepTag, hint.Program{0x4B})
	f.SetTable(hint.CvtTag, hint.ControlValues{20, 700})
	return f
}

// CFF returns a four-glyph font with CFF outlines.  The composite glyph
// of the TrueType variant appears as a plain shifted square, since CFF
// has no composite construct.
func CFF() *foundry.Font {
	square := func(g *cff.Glyph, dx float64) {
		g.MoveTo(100+dx, 0)
		g.LineTo(100+dx, 700)
		g.LineTo(500+dx, 700)
		g.LineTo(500+dx, 0)
	}

	glyphs := make([]*cff.Glyph, 4)
	glyphs[0] = cff.NewGlyph(".notdef", float64(testWidths[0]))
	glyphs[0].MoveTo(50, 0)
	glyphs[0].LineTo(50, 700)
	glyphs[0].LineTo(450, 700)
	glyphs[0].LineTo(450, 0)
	glyphs[1] = cff.NewGlyph("A", float64(testWidths[1]))
	square(glyphs[1], 0)
	glyphs[2] = cff.NewGlyph("B", float64(testWidths[2]))
	glyphs[2].MoveTo(100, 0)
	glyphs[2].LineTo(300, 700)
	glyphs[2].CurveTo(366.67, 466.67, 433.33, 233.33, 500, 0)
	glyphs[3] = cff.NewGlyph("C", float64(testWidths[3]))
	square(glyphs[3], 100)

	font := &cff.Font{
		FontInfo: &type1.FontInfo{
			FontName:   "Test-Regular",
			FamilyName: "Test",
			Weight:     "Regular",
			FontMatrix: matrix.Matrix{0.001, 0, 0, 0.001, 0, 0},
		},
		Outlines: &cff.Outlines{
			Glyphs:   glyphs,
			Private:  []*type1.PrivateDict{{}},
			FDSelect: func(glyph.ID) int { return 0 },
		},
	}

	f := foundry.New()
	f.ScalerType = foundry.ScalerTypeCFF
	f.SetTable(cffglyphs.Tag, &cffglyphs.Outlines{Font: font})
	f.SetTable(head.Tag, &head.Info{
		FontRevision:  1 << 16,
		HasYBaseAt0:   true,
		HasXBaseAt0:   true,
		UnitsPerEm:    1000,
		FontBBox:      funit.Rect{LLx: 50, LLy: 0, URx: 600, URy: 700},
		LowestRecPPEM: 7,
	})
	f.SetTable(maxp.Tag, &maxp.Info{NumGlyphs: 4})
	addCommonTables(f)
	f.SetTable(post.Tag, &post.Info{
		UnderlinePosition:  -100,
		UnderlineThickness: 50,
	})
	return f
}

// addCommonTables installs the metadata tables shared by the TrueType
// and CFF test fonts.
func addCommonTables(f *foundry.Font) {
	f.SetTable(hmtx.Tag, &hmtx.Info{
		Widths:  append([]uint16{}, testWidths...),
		Ascent:  700,
		Descent: -300,
		LineGap: 200,
	})
	f.SetTable(cmap.Tag, cmap.FromMapping(map[rune]glyph.ID{
		'A': 1,
		'B': 2,
		'C': 3,
	}))
	f.SetTable(os2.Tag, &os2.Info{
		WeightClass: os2.WeightNormal,
		WidthClass:  os2.WidthNormal,
		IsRegular:   true,
		Ascent:      700,
		Descent:     -300,
		LineGap:     200,
		CapHeight:   700,
		Vendor:      "Shhn",
	})
	n := name.New()
	n.Set(name.Family, "Test")
	n.Set(name.Subfamily, "Regular")
	n.Set(name.FullName, "Test Regular")
	n.Set(name.PostScriptName, "Test-Regular")
	n.Set(name.Version, "Version 1.000")
	f.SetTable(name.Tag, n)
	f.SetTable(kern.Tag, kern.Info{
		{Left: 1, Right: 2}: -50,
	})
}

// Regular parses the Go Regular font which ships with
// golang.org/x/image.
func Regular() (*foundry.Font, error) {
	return foundry.Read(bytes.NewReader(goregular.TTF))
}

func mustEncodeSimple(contours []glyf.Contour, instructions []byte) *glyf.Glyph {
	info := &glyf.GlyphInfo{
		Contours:     contours,
		Instructions: instructions,
	}
	d, err := info.Encode()
	if err != nil {
		panic(err)
	}
	return &glyf.Glyph{Rect: info.Bounds(), Data: d}
}
