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
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PointType describes the role of a point in a glif contour.
type PointType uint8

// The point types of the glif format.
const (
	OffCurve PointType = iota // control point
	MoveTo                    // start of an open contour
	LineTo
	CurveTo  // cubic segment end point
	QCurveTo // quadratic segment end point
)

// Point is one point of a glif contour.  Coordinates are in font
// design units.
type Point struct {
	X, Y   float64
	Type   PointType
	Smooth bool
}

// Contour is a list of points.  Unless the first point has type
// [MoveTo], the contour is closed.
type Contour []Point

// Component is a reference to another glyph, placed with an affine
// transformation [xScale xyScale yxScale yScale xOffset yOffset].
type Component struct {
	Base      string
	Transform [6]float64
}

// Glyph is one glyph of a UFO layer.
type Glyph struct {
	Name       string
	Width      float64
	Unicodes   []rune
	Contours   []Contour
	Components []Component
}

// low-level XML form of a .glif file

type glifXML struct {
	XMLName  xml.Name     `xml:"glyph"`
	Name     string       `xml:"name,attr"`
	Format   int          `xml:"format,attr"`
	Advance  *advanceXML  `xml:"advance"`
	Unicodes []unicodeXML `xml:"unicode"`
	Outline  *outlineXML  `xml:"outline"`
}

type advanceXML struct {
	Width float64 `xml:"width,attr"`
}

type unicodeXML struct {
	Hex string `xml:"hex,attr"`
}

type outlineXML struct {
	Components []componentXML `xml:"component"`
	Contours   []contourXML   `xml:"contour"`
}

type contourXML struct {
	Points []pointXML `xml:"point"`
}

type pointXML struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Type   string  `xml:"type,attr,omitempty"`
	Smooth string  `xml:"smooth,attr,omitempty"`
}

type componentXML struct {
	Base    string `xml:"base,attr"`
	XScale  string `xml:"xScale,attr,omitempty"`
	XYScale string `xml:"xyScale,attr,omitempty"`
	YXScale string `xml:"yxScale,attr,omitempty"`
	YScale  string `xml:"yScale,attr,omitempty"`
	XOffset string `xml:"xOffset,attr,omitempty"`
	YOffset string `xml:"yOffset,attr,omitempty"`
}

// readGlif parses one .glif file (format 1 or 2).
func readGlif(r io.Reader) (*Glyph, error) {
	raw := &glifXML{}
	err := xml.NewDecoder(r).Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("glif: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("glif: missing glyph name")
	}
	if raw.Format > 2 {
		return nil, fmt.Errorf("glif: unsupported format %d", raw.Format)
	}

	g := &Glyph{Name: raw.Name}
	if raw.Advance != nil {
		g.Width = raw.Advance.Width
	}
	for _, u := range raw.Unicodes {
		x, err := strconv.ParseUint(strings.TrimSpace(u.Hex), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("glif %q: invalid unicode value %q",
				raw.Name, u.Hex)
		}
		g.Unicodes = append(g.Unicodes, rune(x))
	}
	if raw.Outline == nil {
		return g, nil
	}

	for _, c := range raw.Outline.Contours {
		contour := make(Contour, len(c.Points))
		for i, p := range c.Points {
			pt := Point{X: p.X, Y: p.Y, Smooth: p.Smooth == "yes"}
			switch p.Type {
			case "":
				pt.Type = OffCurve
			case "move":
				pt.Type = MoveTo
			case "line":
				pt.Type = LineTo
			case "curve":
				pt.Type = CurveTo
			case "qcurve":
				pt.Type = QCurveTo
			default:
				return nil, fmt.Errorf("glif %q: unknown point type %q",
					raw.Name, p.Type)
			}
			contour[i] = pt
		}
		g.Contours = append(g.Contours, contour)
	}

	for _, c := range raw.Outline.Components {
		if c.Base == "" {
			return nil, fmt.Errorf("glif %q: component without base glyph",
				raw.Name)
		}
		comp := Component{
			Base:      c.Base,
			Transform: [6]float64{1, 0, 0, 1, 0, 0},
		}
		fields := []struct {
			val string
			idx int
		}{
			{c.XScale, 0}, {c.XYScale, 1}, {c.YXScale, 2},
			{c.YScale, 3}, {c.XOffset, 4}, {c.YOffset, 5},
		}
		for _, fld := range fields {
			if fld.val == "" {
				continue
			}
			x, err := strconv.ParseFloat(strings.TrimSpace(fld.val), 64)
			if err != nil {
				return nil, fmt.Errorf("glif %q: invalid transform value %q",
					raw.Name, fld.val)
			}
			comp.Transform[fld.idx] = x
		}
		g.Components = append(g.Components, comp)
	}

	return g, nil
}

// writeGlif writes one glyph in glif format 2.
func writeGlif(w io.Writer, g *Glyph) error {
	raw := &glifXML{
		Name:   g.Name,
		Format: 2,
	}
	if g.Width != 0 {
		raw.Advance = &advanceXML{Width: g.Width}
	}
	for _, r := range g.Unicodes {
		raw.Unicodes = append(raw.Unicodes,
			unicodeXML{Hex: fmt.Sprintf("%04X", r)})
	}
	if len(g.Contours) > 0 || len(g.Components) > 0 {
		raw.Outline = &outlineXML{}
		for _, comp := range g.Components {
			c := componentXML{Base: comp.Base}
			m := comp.Transform
			if m[0] != 1 {
				c.XScale = formatFloat(m[0])
			}
			if m[1] != 0 {
				c.XYScale = formatFloat(m[1])
			}
			if m[2] != 0 {
				c.YXScale = formatFloat(m[2])
			}
			if m[3] != 1 {
				c.YScale = formatFloat(m[3])
			}
			if m[4] != 0 {
				c.XOffset = formatFloat(m[4])
			}
			if m[5] != 0 {
				c.YOffset = formatFloat(m[5])
			}
			raw.Outline.Components = append(raw.Outline.Components, c)
		}
		for _, contour := range g.Contours {
			c := contourXML{}
			for _, p := range contour {
				px := pointXML{X: p.X, Y: p.Y}
				switch p.Type {
				case MoveTo:
					px.Type = "move"
				case LineTo:
					px.Type = "line"
				case CurveTo:
					px.Type = "curve"
				case QCurveTo:
					px.Type = "qcurve"
				}
				if p.Smooth {
					px.Smooth = "yes"
				}
				c.Points = append(c.Points, px)
			}
			raw.Outline.Contours = append(raw.Outline.Contours, c)
		}
	}

	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	err = enc.Encode(raw)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
