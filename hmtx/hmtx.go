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

// Package hmtx reads and writes the "hhea" and "hmtx" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/hhea
// https://docs.microsoft.com/en-us/typography/opentype/spec/hmtx
package hmtx

import (
	"bytes"
	"encoding/binary"
	"math"

	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/table"
)

// The table tags covered by this package.
var (
	Tag     = table.MakeTag("hmtx")
	HheaTag = table.MakeTag("hhea")
)

// Info contains the information from the "hhea" and "hmtx" tables.
// The two tables cannot be decoded independently, so one parsed table
// covers both tags.
type Info struct {
	Widths      []uint16
	GlyphExtent []funit.Rect // optional, used to recompute hhea extremes
	LSB         []funit.Int16

	Ascent  funit.Int16
	Descent funit.Int16 // negative
	LineGap funit.Int16

	CaretAngle  float64 // in radians, 0 for vertical
	CaretOffset funit.Int16
}

// TableKind implements the [table.Table] interface.
func (info *Info) TableKind() table.Kind { return table.KindMetrics }

// NumGlyphs returns the number of glyphs covered by the metrics.
func (info *Info) NumGlyphs() int { return len(info.Widths) }

// Decode extracts the information from the "hhea" and "hmtx" tables.
func Decode(hheaData, hmtxData []byte) (*Info, error) {
	if len(hheaData) < hheaLength {
		return nil, table.Truncatedf(HheaTag, "%d bytes", len(hheaData))
	}
	hheaEnc := &binaryHhea{}
	err := binary.Read(bytes.NewReader(hheaData), binary.BigEndian, hheaEnc)
	if err != nil {
		return nil, table.Malformedf(HheaTag, "%s", err)
	}
	if hheaEnc.Version != 0x00010000 {
		return nil, table.Unsupportedf(HheaTag, "table version %08x", hheaEnc.Version)
	}
	if hheaEnc.MetricDataFormat != 0 {
		return nil, table.Unsupportedf(HheaTag, "metric data format %d", hheaEnc.MetricDataFormat)
	}

	info := &Info{
		Ascent:      funit.Int16(hheaEnc.Ascent),
		Descent:     funit.Int16(hheaEnc.Descent),
		LineGap:     funit.Int16(hheaEnc.LineGap),
		CaretAngle:  toAngle(hheaEnc.CaretSlopeRise, hheaEnc.CaretSlopeRun),
		CaretOffset: funit.Int16(hheaEnc.CaretOffset),
	}

	numHorMetrics := int(hheaEnc.NumOfLongHorMetrics)
	prevWidth := uint16(0)
	var widths []uint16
	var lsbs []funit.Int16
	for i := 0; len(hmtxData) > 0; i++ {
		width := prevWidth
		if i < numHorMetrics {
			if len(hmtxData) < 2 {
				return nil, table.Truncatedf(Tag, "glyph %d", i)
			}
			width = uint16(hmtxData[0])<<8 | uint16(hmtxData[1])
			hmtxData = hmtxData[2:]
			prevWidth = width
		}
		widths = append(widths, width)

		if len(hmtxData) < 2 {
			return nil, table.Truncatedf(Tag, "glyph %d", i)
		}
		lsb := funit.Int16(hmtxData[0])<<8 | funit.Int16(hmtxData[1])
		hmtxData = hmtxData[2:]
		lsbs = append(lsbs, lsb)
	}
	if len(widths) < numHorMetrics {
		return nil, table.Truncatedf(Tag, "%d of %d long metrics", len(widths), numHorMetrics)
	}
	info.Widths = widths
	info.LSB = lsbs

	return info, nil
}

// Encode creates the binary form of the "hhea" and "hmtx" tables.
// The numOfLongHorMetrics field and the hhea extremes are re-derived
// from the per-glyph data.
func (info *Info) Encode() (hheaData, hmtxData []byte, err error) {
	numGlyphs := len(info.Widths)
	if info.LSB != nil && len(info.LSB) != numGlyphs {
		return nil, nil, &table.EncodeError{Tag: Tag, Msg: "LSB length mismatch"}
	}
	if info.GlyphExtent != nil && len(info.GlyphExtent) != numGlyphs {
		return nil, nil, &table.EncodeError{Tag: Tag, Msg: "GlyphExtent length mismatch"}
	}

	numLong := numGlyphs
	for numLong > 1 && info.Widths[numLong-1] == info.Widths[numLong-2] {
		numLong--
	}

	rise, run := fromAngle(info.CaretAngle)

	hhea := &binaryHhea{
		Version: 0x00010000, // 1.0
		Ascent:  int16(info.Ascent),
		Descent: int16(info.Descent),
		LineGap: int16(info.LineGap),

		CaretSlopeRise: rise,
		CaretSlopeRun:  run,
		CaretOffset:    int16(info.CaretOffset),

		NumOfLongHorMetrics: uint16(numLong),
	}

	for _, w := range info.Widths {
		if w > hhea.AdvanceWidthMax {
			hhea.AdvanceWidthMax = w
		}
	}

	lsbs := info.LSB
	if lsbs == nil {
		lsbs = make([]funit.Int16, numGlyphs)
		if info.GlyphExtent != nil {
			for i := 0; i < numGlyphs; i++ {
				lsbs[i] = info.GlyphExtent[i].LLx
			}
		}
	}
	first := true
	for i, lsb := range lsbs {
		if info.GlyphExtent != nil && info.GlyphExtent[i].IsZero() {
			continue
		}
		if first || int16(lsb) < hhea.MinLeftSideBearing {
			hhea.MinLeftSideBearing = int16(lsb)
			first = false
		}
	}

	if info.GlyphExtent != nil {
		first = true
		for i, bbox := range info.GlyphExtent {
			if bbox.IsZero() {
				continue
			}

			rsb := int16(info.Widths[i]) - int16(bbox.URx)
			if first || rsb < hhea.MinRightSideBearing {
				hhea.MinRightSideBearing = rsb
			}
			if first || int16(bbox.URx) > hhea.XMaxExtent {
				hhea.XMaxExtent = int16(bbox.URx)
			}
			first = false
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, hheaLength))
	_ = binary.Write(buf, binary.BigEndian, hhea)
	hheaData = buf.Bytes()

	buf = bytes.NewBuffer(make([]byte, 0, 4*numLong+2*(numGlyphs-numLong)))
	for i := 0; i < numGlyphs; i++ {
		if i < numLong {
			buf.Write([]byte{
				byte(info.Widths[i] >> 8), byte(info.Widths[i]),
			})
		}
		buf.Write([]byte{
			byte(uint16(lsbs[i]) >> 8), byte(lsbs[i]),
		})
	}
	hmtxData = buf.Bytes()

	return hheaData, hmtxData, nil
}

const hheaLength = 36

func toAngle(rise, run int16) float64 {
	// slope = rise / run (rise = 1, run = 0 for vertical)
	// angle = 0 for vertical, angle<0 for italic

	// avoid numbers with no negative
	if rise == -32768 {
		rise = -32767
	}
	if run == -32768 {
		run = -32767
	}

	return math.Atan2(float64(rise), float64(run)) - math.Pi/2
}

func fromAngle(caretAngle float64) (rise, run int16) {
	phi := caretAngle + math.Pi/2
	s := math.Sin(phi)
	c := math.Cos(phi)
	if math.Abs(c) <= 0.5/32767.0 {
		if s >= 0 {
			return 1, 0
		}
		return -1, 0
	}
	rise0, run0 := bestRationalApproximation(s/c, 32767)
	if s*float64(rise0) < 0 {
		rise0, run0 = -rise0, -run0
	}
	return int16(rise0), int16(run0)
}

// bestRationalApproximation returns a rational approximation of x
// with abs(p)<=N and 0<q<=N and p/q ≈ x.
func bestRationalApproximation(x float64, N int) (p int, q int) {
	sign := 1
	if x < 0 {
		x = -x
		sign = -1
	}

	Nf := float64(N)
	if x < 0.5/Nf {
		return 0, sign
	} else if x > Nf-0.5 {
		return sign * N, 1
	}

	maxDenom := N
	if x > 1 {
		// we need round(x*maxDenom) <= N, i.e. x*maxDenom < N+0.5
		maxDenom = int(math.Floor((Nf + 0.5) / x))
	}
	bestDist := math.Inf(1)
	bestDenom := 0
	bestNumerator := 0
	for denom := 1; denom <= maxDenom; denom++ {
		numerator := int(math.Round(x * float64(denom)))
		if numerator > N {
			continue
		}
		y := float64(numerator) / float64(denom)
		dist := math.Abs(x - y)
		if dist < bestDist {
			bestDist = dist
			bestDenom = denom
			bestNumerator = numerator
		}
	}
	return sign * bestNumerator, bestDenom
}

type binaryHhea struct {
	Version             uint32
	Ascent              int16
	Descent             int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	_                   int16
	_                   int16
	_                   int16
	_                   int16
	MetricDataFormat    int16
	NumOfLongHorMetrics uint16
}

// Codec decodes and encodes the "hhea"/"hmtx" table pair.
var Codec table.Codec = codec{}

type codec struct{}

func (codec) Tags() []table.Tag { return []table.Tag{Tag, HheaTag} }
func (codec) Kind() table.Kind  { return table.KindMetrics }

func (codec) Decode(raw map[table.Tag][]byte, ctx *table.Context) (table.Table, error) {
	return Decode(raw[HheaTag], raw[Tag])
}

func (codec) Encode(t table.Table, ctx *table.Context) (map[table.Tag][]byte, error) {
	info, ok := t.(*Info)
	if !ok {
		return nil, &table.EncodeError{Tag: Tag, Msg: "wrong table type"}
	}
	hheaData, hmtxData, err := info.Encode()
	if err != nil {
		return nil, err
	}
	return map[table.Tag][]byte{HheaTag: hheaData, Tag: hmtxData}, nil
}
