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

package glyf

import (
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/table"
)

// SimpleGlyph is a simple glyph, with the point data in binary form.
type SimpleGlyph struct {
	NumContours int16
	Tail        []byte
}

// A Point is a point in a glyph outline.
type Point struct {
	X, Y    funit.Int16
	OnCurve bool
}

// A Contour describes a connected part of a glyph outline.
type Contour []Point

// GlyphInfo contains the decoded contours of a simple glyph.
type GlyphInfo struct {
	Contours     []Contour
	Instructions []byte
}

// Decode returns the contours of a glyph.
func (g SimpleGlyph) Decode() (*GlyphInfo, error) {
	buf := g.Tail

	numContours := int(g.NumContours)
	if len(buf) < 2*numContours+2 {
		return nil, errInvalidGlyphData
	}
	endPtsOfContours := make([]uint16, numContours)
	for i := 0; i < numContours; i++ {
		endPtsOfContours[i] = uint16(buf[2*i])<<8 | uint16(buf[2*i+1])
	}
	buf = buf[2*numContours:]
	numPoints := 0
	if numContours > 0 {
		numPoints = int(endPtsOfContours[numContours-1]) + 1
	}

	instructionLength := int(buf[0])<<8 | int(buf[1])
	if len(buf) < 2+instructionLength {
		return nil, errInvalidGlyphData
	}
	instructions := buf[2 : 2+instructionLength]
	buf = buf[2+instructionLength:]

	// decode the flags
	ff := make([]byte, numPoints)
	i := 0
	for i < numPoints {
		if len(buf) < 1 {
			return nil, errInvalidGlyphData
		}
		flags := buf[0]
		buf = buf[1:]
		ff[i] = flags
		i++
		if flags&0x08 != 0 {
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			count := buf[0]
			buf = buf[1:]
			for count > 0 && i < numPoints {
				ff[i] = flags
				i++
				count--
			}
		}
	}

	// decode the x-coordinates
	xx := make([]funit.Int16, numPoints)
	var x funit.Int16
	for i, flags := range ff {
		if flags&0x02 != 0 { // X_SHORT_VECTOR
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			dx := funit.Int16(buf[0])
			buf = buf[1:]
			if flags&0x10 != 0 { // X_IS_SAME_OR_POSITIVE_X_SHORT_VECTOR
				x += dx
			} else {
				x -= dx
			}
		} else if flags&0x10 == 0 { // !X_IS_SAME_OR_POSITIVE_X_SHORT_VECTOR
			if len(buf) < 2 {
				return nil, errInvalidGlyphData
			}
			dx := funit.Int16(buf[0])<<8 | funit.Int16(buf[1])
			buf = buf[2:]
			x += dx
		}
		xx[i] = x
	}

	// decode the y-coordinates
	yy := make([]funit.Int16, numPoints)
	var y funit.Int16
	for i, flags := range ff {
		if flags&0x04 != 0 { // Y_SHORT_VECTOR
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			dy := funit.Int16(buf[0])
			buf = buf[1:]
			if flags&0x20 != 0 { // Y_IS_SAME_OR_POSITIVE_Y_SHORT_VECTOR
				y += dy
			} else {
				y -= dy
			}
		} else if flags&0x20 == 0 { // !Y_IS_SAME_OR_POSITIVE_Y_SHORT_VECTOR
			if len(buf) < 2 {
				return nil, errInvalidGlyphData
			}
			dy := funit.Int16(buf[0])<<8 | funit.Int16(buf[1])
			buf = buf[2:]
			y += dy
		}
		yy[i] = y
	}

	cc := make([]Contour, numContours)
	start := 0
	for i := 0; i < numContours; i++ {
		end := int(endPtsOfContours[i]) + 1
		pp := make([]Point, end-start)
		for j := start; j < end; j++ {
			pp[j-start] = Point{xx[j], yy[j], ff[j]&0x01 != 0}
		}
		start = end

		cc[i] = pp
	}

	res := &GlyphInfo{
		Contours:     cc,
		Instructions: instructions,
	}

	return res, nil
}

// Encode converts the contours back into the binary glyph format.
// Coordinates are delta-encoded using the shortest representation, and
// runs of equal flag bytes are compressed using the repeat flag.
func (info *GlyphInfo) Encode() (SimpleGlyph, error) {
	numContours := len(info.Contours)
	if numContours > 0x7FFF {
		return SimpleGlyph{}, &table.EncodeError{Tag: Tag, Msg: "too many contours"}
	}

	var endPts []uint16
	var points []Point
	total := 0
	for _, c := range info.Contours {
		if len(c) == 0 {
			return SimpleGlyph{}, &table.EncodeError{Tag: Tag, Msg: "empty contour"}
		}
		total += len(c)
		if total > 0x10000 {
			return SimpleGlyph{}, &table.EncodeError{Tag: Tag, Msg: "too many points"}
		}
		endPts = append(endPts, uint16(total-1))
		points = append(points, c...)
	}
	if len(info.Instructions) > 0xFFFF {
		return SimpleGlyph{}, &table.EncodeError{Tag: Tag, Msg: "instructions too long"}
	}

	n := len(points)
	flags := make([]byte, n)
	xEnc := make([][]byte, n)
	yEnc := make([][]byte, n)
	var prevX, prevY int
	for i, p := range points {
		var flag byte
		if p.OnCurve {
			flag |= 0x01
		}

		dx := int(p.X) - prevX
		switch {
		case dx == 0:
			flag |= 0x10
		case dx >= -255 && dx <= 255:
			flag |= 0x02
			if dx > 0 {
				flag |= 0x10
				xEnc[i] = []byte{byte(dx)}
			} else {
				xEnc[i] = []byte{byte(-dx)}
			}
		case dx >= -32768 && dx <= 32767:
			xEnc[i] = []byte{byte(dx >> 8), byte(dx)}
		default:
			return SimpleGlyph{}, &table.EncodeError{Tag: Tag, Msg: "point delta out of range"}
		}

		dy := int(p.Y) - prevY
		switch {
		case dy == 0:
			flag |= 0x20
		case dy >= -255 && dy <= 255:
			flag |= 0x04
			if dy > 0 {
				flag |= 0x20
				yEnc[i] = []byte{byte(dy)}
			} else {
				yEnc[i] = []byte{byte(-dy)}
			}
		case dy >= -32768 && dy <= 32767:
			yEnc[i] = []byte{byte(dy >> 8), byte(dy)}
		default:
			return SimpleGlyph{}, &table.EncodeError{Tag: Tag, Msg: "point delta out of range"}
		}

		flags[i] = flag
		prevX = int(p.X)
		prevY = int(p.Y)
	}

	tail := make([]byte, 0, 2*numContours+2+len(info.Instructions)+4*n)
	for _, e := range endPts {
		tail = append(tail, byte(e>>8), byte(e))
	}
	L := len(info.Instructions)
	tail = append(tail, byte(L>>8), byte(L))
	tail = append(tail, info.Instructions...)

	for i := 0; i < n; {
		j := i + 1
		for j < n && flags[j] == flags[i] && j-i < 256 {
			j++
		}
		if j-i > 1 {
			tail = append(tail, flags[i]|0x08, byte(j-i-1))
		} else {
			tail = append(tail, flags[i])
		}
		i = j
	}
	for _, b := range xEnc {
		tail = append(tail, b...)
	}
	for _, b := range yEnc {
		tail = append(tail, b...)
	}

	return SimpleGlyph{
		NumContours: int16(numContours),
		Tail:        tail,
	}, nil
}

// Bounds returns the bounding box of the contours.
func (info *GlyphInfo) Bounds() funit.Rect {
	var rect funit.Rect
	first := true
	for _, c := range info.Contours {
		for _, p := range c {
			if first {
				rect = funit.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
				first = false
				continue
			}
			if p.X < rect.LLx {
				rect.LLx = p.X
			}
			if p.Y < rect.LLy {
				rect.LLy = p.Y
			}
			if p.X > rect.URx {
				rect.URx = p.X
			}
			if p.Y > rect.URy {
				rect.URy = p.Y
			}
		}
	}
	return rect
}

// removePadding trims trailing padding bytes from the glyph data, so
// that re-encoding a glyph reproduces it exactly.
func (g *SimpleGlyph) removePadding() error {
	buf := g.Tail
	numContours := int(g.NumContours)
	if len(buf) < 2*numContours+2 {
		return errInvalidGlyphData
	}
	numPoints := 0
	if numContours > 0 {
		numPoints = int(buf[2*numContours-2])<<8 | int(buf[2*numContours-1])
		numPoints++
	}
	pos := 2 * numContours
	instructionLength := int(buf[pos])<<8 | int(buf[pos+1])
	pos += 2 + instructionLength
	if len(buf) < pos {
		return errInvalidGlyphData
	}

	xBytes := 0
	yBytes := 0
	i := 0
	for i < numPoints {
		if pos >= len(buf) {
			return errInvalidGlyphData
		}
		flags := buf[pos]
		pos++
		repeat := 1
		if flags&0x08 != 0 {
			if pos >= len(buf) {
				return errInvalidGlyphData
			}
			repeat += int(buf[pos])
			pos++
		}
		if repeat > numPoints-i {
			repeat = numPoints - i
		}

		perX := 0
		if flags&0x02 != 0 {
			perX = 1
		} else if flags&0x10 == 0 {
			perX = 2
		}
		perY := 0
		if flags&0x04 != 0 {
			perY = 1
		} else if flags&0x20 == 0 {
			perY = 2
		}
		xBytes += repeat * perX
		yBytes += repeat * perY

		i += repeat
	}

	pos += xBytes + yBytes
	if pos > len(buf) {
		return errInvalidGlyphData
	}
	g.Tail = g.Tail[:pos]
	return nil
}

var errInvalidGlyphData = table.Malformedf(Tag, "invalid glyph data")
