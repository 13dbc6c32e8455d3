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

// Package ufo reads and writes UFO3 font source directories.
// https://unifiedfontobject.org/versions/ufo3/
//
// Only the default layer is read; images, data and per-glyph libs are
// ignored.  The [Font.ToFont] and [FromFont] functions convert between
// the UFO source representation and the binary font object model of
// the root package.
package ufo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Info holds the fontinfo.plist entries used by the toolkit.
// Fields left at their zero value are omitted when writing.
type Info struct {
	FamilyName string
	StyleName  string

	UnitsPerEm   int
	Ascender     float64
	Descender    float64 // negative
	CapHeight    float64
	XHeight      float64
	LineGap      float64
	ItalicAngle  float64
	WeightClass  int
	WidthClass   int
	VersionMajor int
	VersionMinor int

	Copyright string
	Trademark string

	PostScriptFontName string
	UnderlinePosition  float64
	UnderlineThickness float64
	IsFixedPitch       bool
}

// Font is a UFO font source in memory.
type Font struct {
	Info   *Info
	Glyphs map[string]*Glyph

	// Order lists the glyph names in glyph ID order.  Names missing
	// from Order sort after the listed ones, in alphabetical order.
	Order []string
}

// New returns an empty UFO font.
func New() *Font {
	return &Font{
		Info:   &Info{UnitsPerEm: 1000},
		Glyphs: map[string]*Glyph{},
	}
}

// GlyphOrder returns the full glyph name list, starting with
// ".notdef" if present.
func (f *Font) GlyphOrder() []string {
	seen := make(map[string]bool, len(f.Glyphs))
	var order []string
	for _, name := range f.Order {
		if _, ok := f.Glyphs[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range f.Glyphs {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	// .notdef is glyph 0
	for i, name := range order {
		if name == ".notdef" {
			copy(order[1:i+1], order[:i])
			order[0] = ".notdef"
			break
		}
	}
	return order
}

// Read loads a UFO directory.
func Read(dir string) (*Font, error) {
	meta, err := readPlistFile(filepath.Join(dir, "metainfo.plist"))
	if err != nil {
		return nil, err
	}
	if v := plistInt(meta, "formatVersion", 0); v != 3 {
		return nil, fmt.Errorf("ufo: unsupported format version %d", v)
	}

	font := New()

	if d, err := readPlistFile(filepath.Join(dir, "fontinfo.plist")); err == nil {
		font.Info = decodeFontInfo(d)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	glyphDir, err := defaultLayerDir(dir)
	if err != nil {
		return nil, err
	}

	contents, err := readPlistFile(filepath.Join(dir, glyphDir, "contents.plist"))
	if err != nil {
		return nil, err
	}
	for name, v := range contents {
		fname, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("ufo: invalid contents.plist entry for %q", name)
		}
		fd, err := os.Open(filepath.Join(dir, glyphDir, fname))
		if err != nil {
			return nil, err
		}
		g, err := readGlif(fd)
		fd.Close()
		if err != nil {
			return nil, err
		}
		if g.Name != name {
			return nil, fmt.Errorf("ufo: glyph %q stored under name %q",
				g.Name, name)
		}
		font.Glyphs[name] = g
	}

	if d, err := readPlistFile(filepath.Join(dir, "lib.plist")); err == nil {
		if order, ok := d["public.glyphOrder"].([]interface{}); ok {
			for _, v := range order {
				if name, ok := v.(string); ok {
					font.Order = append(font.Order, name)
				}
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return font, nil
}

// defaultLayerDir returns the directory of the default glyph layer.
func defaultLayerDir(dir string) (string, error) {
	layers, err := readPlistArrayFile(filepath.Join(dir, "layercontents.plist"))
	if os.IsNotExist(err) {
		return "glyphs", nil
	} else if err != nil {
		return "", err
	}
	for _, v := range layers {
		entry, ok := v.([]interface{})
		if !ok || len(entry) != 2 {
			return "", fmt.Errorf("ufo: malformed layercontents.plist")
		}
		layerDir, ok := entry[1].(string)
		if !ok {
			return "", fmt.Errorf("ufo: malformed layercontents.plist")
		}
		// The first entry is the default layer.
		return layerDir, nil
	}
	return "glyphs", nil
}

// WriterOptions controls the output of [Font.Write].
type WriterOptions struct {
	// Creator is stored in metainfo.plist.  The default is
	// "seehuhn.de/go/foundry".
	Creator string
}

// Write stores the font as a UFO3 directory.  Existing glyph files in
// the target directory are not removed; callers should write into a
// fresh directory.
func (f *Font) Write(dir string, opt *WriterOptions) error {
	creator := ""
	if opt != nil {
		creator = opt.Creator
	}
	if creator == "" {
		creator = "seehuhn.de/go/foundry"
	}

	err := os.MkdirAll(filepath.Join(dir, "glyphs"), 0o755)
	if err != nil {
		return err
	}

	meta := map[string]interface{}{
		"creator":       creator,
		"formatVersion": 3,
	}
	err = writePlistFile(filepath.Join(dir, "metainfo.plist"), meta)
	if err != nil {
		return err
	}

	if f.Info != nil {
		err = writePlistFile(filepath.Join(dir, "fontinfo.plist"),
			encodeFontInfo(f.Info))
		if err != nil {
			return err
		}
	}

	layers := []interface{}{
		[]interface{}{"public.default", "glyphs"},
	}
	err = writePlistFile(filepath.Join(dir, "layercontents.plist"), layers)
	if err != nil {
		return err
	}

	order := f.GlyphOrder()
	orderVal := make([]interface{}, len(order))
	for i, name := range order {
		orderVal[i] = name
	}
	lib := map[string]interface{}{
		"public.glyphOrder": orderVal,
	}
	err = writePlistFile(filepath.Join(dir, "lib.plist"), lib)
	if err != nil {
		return err
	}

	contents := map[string]interface{}{}
	used := map[string]bool{}
	for _, name := range order {
		fname := glifFileName(name, used)
		contents[name] = fname

		fd, err := os.Create(filepath.Join(dir, "glyphs", fname))
		if err != nil {
			return err
		}
		err = writeGlif(fd, f.Glyphs[name])
		if err2 := fd.Close(); err == nil {
			err = err2
		}
		if err != nil {
			return err
		}
	}
	return writePlistFile(filepath.Join(dir, "glyphs", "contents.plist"),
		contents)
}

// glifFileName converts a glyph name to a file name, following the
// UFO3 user name to file name algorithm: upper case letters get a
// trailing underscore, illegal characters are replaced, and clashes
// are resolved with a numeric suffix.
func glifFileName(name string, used map[string]bool) string {
	var sb strings.Builder
	if strings.HasPrefix(name, ".") {
		sb.WriteByte('_')
		name = name[1:]
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
			sb.WriteByte('_')
		case r < 0x20 || r == 0x7F || strings.ContainsRune(`"*+/:<>?[\]|`, r):
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}
	base := sb.String()
	if len(base) > 250 {
		base = base[:250]
	}

	fname := base + ".glif"
	for i := 1; used[fname]; i++ {
		fname = fmt.Sprintf("%s%d.glif", base, i)
	}
	used[fname] = true
	return fname
}

func readPlistFile(fname string) (map[string]interface{}, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	val, err := decodePlist(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	d, ok := val.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: not a dict", fname)
	}
	return d, nil
}

func readPlistArrayFile(fname string) ([]interface{}, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	val, err := decodePlist(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	a, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: not an array", fname)
	}
	return a, nil
}

func writePlistFile(fname string, val interface{}) error {
	fd, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = encodePlist(fd, val)
	if err2 := fd.Close(); err == nil {
		err = err2
	}
	return err
}
