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

// decodeFontInfo extracts the supported fontinfo.plist keys.
func decodeFontInfo(d map[string]interface{}) *Info {
	return &Info{
		FamilyName: plistString(d, "familyName"),
		StyleName:  plistString(d, "styleName"),

		UnitsPerEm:   plistInt(d, "unitsPerEm", 1000),
		Ascender:     plistFloat(d, "ascender", 0),
		Descender:    plistFloat(d, "descender", 0),
		CapHeight:    plistFloat(d, "capHeight", 0),
		XHeight:      plistFloat(d, "xHeight", 0),
		LineGap:      plistFloat(d, "openTypeHheaLineGap", 0),
		ItalicAngle:  plistFloat(d, "italicAngle", 0),
		WeightClass:  plistInt(d, "openTypeOS2WeightClass", 0),
		WidthClass:   plistInt(d, "openTypeOS2WidthClass", 0),
		VersionMajor: plistInt(d, "versionMajor", 0),
		VersionMinor: plistInt(d, "versionMinor", 0),

		Copyright: plistString(d, "copyright"),
		Trademark: plistString(d, "trademark"),

		PostScriptFontName: plistString(d, "postscriptFontName"),
		UnderlinePosition:  plistFloat(d, "postscriptUnderlinePosition", 0),
		UnderlineThickness: plistFloat(d, "postscriptUnderlineThickness", 0),
		IsFixedPitch:       plistBool(d, "postscriptIsFixedPitch", false),
	}
}

// encodeFontInfo converts the font information back to plist form.
// Zero values are omitted, except for the units per em.
func encodeFontInfo(info *Info) map[string]interface{} {
	d := map[string]interface{}{}

	setString := func(key, val string) {
		if val != "" {
			d[key] = val
		}
	}
	setInt := func(key string, val int) {
		if val != 0 {
			d[key] = val
		}
	}
	setFloat := func(key string, val float64) {
		if val != 0 {
			d[key] = val
		}
	}

	setString("familyName", info.FamilyName)
	setString("styleName", info.StyleName)

	upem := info.UnitsPerEm
	if upem == 0 {
		upem = 1000
	}
	d["unitsPerEm"] = upem

	setFloat("ascender", info.Ascender)
	setFloat("descender", info.Descender)
	setFloat("capHeight", info.CapHeight)
	setFloat("xHeight", info.XHeight)
	setFloat("openTypeHheaLineGap", info.LineGap)
	setFloat("italicAngle", info.ItalicAngle)
	setInt("openTypeOS2WeightClass", info.WeightClass)
	setInt("openTypeOS2WidthClass", info.WidthClass)
	setInt("versionMajor", info.VersionMajor)
	setInt("versionMinor", info.VersionMinor)

	setString("copyright", info.Copyright)
	setString("trademark", info.Trademark)

	setString("postscriptFontName", info.PostScriptFontName)
	setFloat("postscriptUnderlinePosition", info.UnderlinePosition)
	setFloat("postscriptUnderlineThickness", info.UnderlineThickness)
	if info.IsFixedPitch {
		d["postscriptIsFixedPitch"] = true
	}

	return d
}
