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

// Package foundry implements a font object model for reading,
// transforming and writing font files.
//
// A [Font] is a registry of sfnt tables.  Tables are kept in binary
// form until a caller asks for the parsed representation, and parsed
// tables are re-encoded only if they have been modified, so that fonts
// which are read and written without changes round-trip byte for byte.
package foundry

import (
	"fmt"
	"sort"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/head"
	"seehuhn.de/go/foundry/hint"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/kern"
	"seehuhn.de/go/foundry/maxp"
	"seehuhn.de/go/foundry/name"
	"seehuhn.de/go/foundry/os2"
	"seehuhn.de/go/foundry/post"
	"seehuhn.de/go/foundry/table"
)

// The sfnt scaler types understood by this package.
const (
	ScalerTypeTrueType = 0x00010000
	ScalerTypeCFF      = 0x4F54544F
	ScalerTypeApple    = 0x74727565
)

// defaultCodecs lists the codecs wired into every Font.
var defaultCodecs = []table.Codec{
	head.Codec,
	maxp.Codec,
	hmtx.Codec,
	cmap.Codec,
	name.Codec,
	post.Codec,
	os2.Codec,
	kern.Codec,
	glyf.Codec,
	cffglyphs.Codec,
	hint.FpgmCodec,
	hint.PrepCodec,
	hint.CvtCodec,
}

// Font is an in-memory font.  Tables are stored in binary form and
// decoded on demand; modified tables are re-encoded when the font is
// written.
type Font struct {
	ScalerType uint32

	raw    map[table.Tag][]byte
	order  []table.Tag // physical table order for the output file
	codecs map[table.Tag]table.Codec
	parsed map[table.Tag]table.Table // keyed by the codec's primary tag
	dirty  map[table.Tag]bool        // keyed by the codec's primary tag
}

// New creates an empty font.
func New() *Font {
	f := &Font{
		ScalerType: ScalerTypeTrueType,
		raw:        make(map[table.Tag][]byte),
		parsed:     make(map[table.Tag]table.Table),
		dirty:      make(map[table.Tag]bool),
		codecs:     make(map[table.Tag]table.Codec),
	}
	for _, c := range defaultCodecs {
		for _, tag := range c.Tags() {
			f.codecs[tag] = c
		}
	}
	return f
}

// ErrNoTable indicates that a required table is not present in the font.
type ErrNoTable struct {
	Tag table.Tag
}

func (e *ErrNoTable) Error() string {
	return fmt.Sprintf("table %q not found", e.Tag)
}

// IsMissing returns true if err indicates a missing table.
func IsMissing(err error) bool {
	_, isMissing := err.(*ErrNoTable)
	return isMissing
}

// primary returns the primary tag of the codec family tag belongs to.
// For tags without a codec the tag is its own primary.
func (f *Font) primary(tag table.Tag) table.Tag {
	if c, ok := f.codecs[tag]; ok {
		return c.Tags()[0]
	}
	return tag
}

// Has returns true if all the given tables are present.
func (f *Font) Has(tags ...table.Tag) bool {
	for _, tag := range tags {
		p := f.primary(tag)
		if _, ok := f.raw[tag]; ok {
			continue
		}
		if _, ok := f.parsed[p]; ok {
			continue
		}
		return false
	}
	return true
}

// Tags returns the tags of all tables in the font, in the physical
// order they will be written to the output file.
func (f *Font) Tags() []table.Tag {
	res := make([]table.Tag, len(f.order))
	copy(res, f.order)
	return res
}

// SetOrder changes the physical order in which the tables are written
// to the output file.  Tags not present in the font are ignored;
// present tables missing from the argument keep their current relative
// order after the listed ones.
func (f *Font) SetOrder(tags []table.Tag) {
	present := make(map[table.Tag]bool, len(f.order))
	for _, tag := range f.order {
		present[tag] = true
	}
	order := make([]table.Tag, 0, len(f.order))
	listed := make(map[table.Tag]bool, len(tags))
	for _, tag := range tags {
		if present[tag] && !listed[tag] {
			order = append(order, tag)
			listed[tag] = true
		}
	}
	for _, tag := range f.order {
		if !listed[tag] {
			order = append(order, tag)
		}
	}
	f.order = order
}

// Kind returns the role the given table plays in the font.
// Tables without a codec are [table.KindOther].
func (f *Font) Kind(tag table.Tag) table.Kind {
	if c, ok := f.codecs[tag]; ok {
		return c.Kind()
	}
	return table.KindOther
}

// TagsOfKind returns the tags of all present tables of the given kind.
func (f *Font) TagsOfKind(k table.Kind) []table.Tag {
	var res []table.Tag
	for _, tag := range f.order {
		if f.Kind(tag) == k {
			res = append(res, tag)
		}
	}
	return res
}

// Table returns the parsed form of the given table.  The result is
// cached; repeated calls return the same value until the table is
// replaced or removed.  Tables without a codec are returned as
// [*table.Opaque].
func (f *Font) Table(tag table.Tag) (table.Table, error) {
	c, ok := f.codecs[tag]
	if !ok {
		data, ok := f.raw[tag]
		if !ok {
			if t, ok := f.parsed[tag]; ok {
				return t, nil
			}
			return nil, &ErrNoTable{Tag: tag}
		}
		t := &table.Opaque{Data: data}
		f.parsed[tag] = t
		return t, nil
	}

	p := c.Tags()[0]
	if t, ok := f.parsed[p]; ok {
		return t, nil
	}

	raw := make(map[table.Tag][]byte)
	any := false
	for _, t := range c.Tags() {
		if data, ok := f.raw[t]; ok {
			raw[t] = data
			any = true
		}
	}
	if !any {
		return nil, &ErrNoTable{Tag: tag}
	}

	ctx, err := f.context()
	if err != nil {
		return nil, err
	}
	t, err := c.Decode(raw, ctx)
	if err != nil {
		return nil, err
	}
	f.parsed[p] = t
	return t, nil
}

// SetTable installs a parsed table in the font, replacing any previous
// table with the same tag.  The table is re-encoded when the font is
// written.
func (f *Font) SetTable(tag table.Tag, t table.Table) {
	p := f.primary(tag)
	c, hasCodec := f.codecs[tag]

	f.parsed[p] = t
	f.dirty[p] = true

	if hasCodec {
		for _, t := range c.Tags() {
			f.addTag(t)
		}
	} else {
		f.addTag(tag)
	}
}

// MarkDirty records that a parsed table obtained from [Font.Table] has
// been modified in place, so that it is re-encoded on output.
func (f *Font) MarkDirty(tag table.Tag) {
	p := f.primary(tag)
	if _, ok := f.parsed[p]; ok {
		f.dirty[p] = true
	}
}

// SetRawTable installs the binary form of a table, discarding any
// parsed representation.
func (f *Font) SetRawTable(tag table.Tag, data []byte) {
	p := f.primary(tag)
	delete(f.parsed, p)
	delete(f.dirty, p)
	f.raw[tag] = data
	f.addTag(tag)
}

// RawTable returns the current binary form of the given table.  If the
// parsed form has been modified, the table is encoded first.
func (f *Font) RawTable(tag table.Tag) ([]byte, error) {
	p := f.primary(tag)
	if f.dirty[p] {
		err := f.flush(p)
		if err != nil {
			return nil, err
		}
	}
	data, ok := f.raw[tag]
	if !ok {
		return nil, &ErrNoTable{Tag: tag}
	}
	return data, nil
}

// RemoveTable removes a table from the font.  For codecs covering more
// than one tag, for example "glyf"+"loca", the whole family is removed.
func (f *Font) RemoveTable(tag table.Tag) {
	p := f.primary(tag)
	delete(f.parsed, p)
	delete(f.dirty, p)
	if c, ok := f.codecs[tag]; ok {
		for _, t := range c.Tags() {
			delete(f.raw, t)
			f.removeTag(t)
		}
	} else {
		delete(f.raw, tag)
		f.removeTag(tag)
	}
}

// flush re-encodes the dirty table family with primary tag p and
// stores the result as the new binary form.
func (f *Font) flush(p table.Tag) error {
	c, ok := f.codecs[p]
	if !ok {
		t := f.parsed[p]
		if op, ok := t.(*table.Opaque); ok {
			f.raw[p] = op.Data
			delete(f.dirty, p)
			return nil
		}
		return &table.EncodeError{Tag: p, Msg: "no codec"}
	}
	ctx, err := f.context()
	if err != nil {
		return err
	}
	enc, err := c.Encode(f.parsed[p], ctx)
	if err != nil {
		return err
	}
	for tag, data := range enc {
		f.raw[tag] = data
		f.addTag(tag)
	}
	for _, tag := range c.Tags() {
		if _, ok := enc[tag]; !ok {
			delete(f.raw, tag)
			f.removeTag(tag)
		}
	}
	delete(f.dirty, p)
	return nil
}

func (f *Font) addTag(tag table.Tag) {
	for _, t := range f.order {
		if t == tag {
			return
		}
	}
	f.order = append(f.order, tag)
}

func (f *Font) removeTag(tag table.Tag) {
	for i, t := range f.order {
		if t == tag {
			f.order = append(f.order[:i], f.order[i+1:]...)
			return
		}
	}
}

// context assembles the font-wide decode context from the "head" and
// "maxp" tables.
func (f *Font) context() (*table.Context, error) {
	ctx := &table.Context{}

	if f.Has(head.Tag) {
		headInfo, err := f.headInfo()
		if err != nil {
			return nil, err
		}
		ctx.UnitsPerEm = headInfo.UnitsPerEm
		ctx.HasLongLoca = headInfo.HasLongOffsets
	}
	if f.Has(maxp.Tag) {
		maxpInfo, err := f.maxpInfo()
		if err != nil {
			return nil, err
		}
		ctx.NumGlyphs = maxpInfo.NumGlyphs
	}
	return ctx, nil
}

// headInfo decodes the "head" table without going through Table, to
// avoid recursion from context().
func (f *Font) headInfo() (*head.Info, error) {
	if t, ok := f.parsed[head.Tag]; ok {
		info, ok := t.(*head.Info)
		if !ok {
			return nil, table.Malformedf(head.Tag, "wrong table type")
		}
		return info, nil
	}
	data, ok := f.raw[head.Tag]
	if !ok {
		return nil, &ErrNoTable{Tag: head.Tag}
	}
	info := &head.Info{}
	err := info.Decode(data)
	if err != nil {
		return nil, err
	}
	f.parsed[head.Tag] = info
	return info, nil
}

func (f *Font) maxpInfo() (*maxp.Info, error) {
	if t, ok := f.parsed[maxp.Tag]; ok {
		info, ok := t.(*maxp.Info)
		if !ok {
			return nil, table.Malformedf(maxp.Tag, "wrong table type")
		}
		return info, nil
	}
	data, ok := f.raw[maxp.Tag]
	if !ok {
		return nil, &ErrNoTable{Tag: maxp.Tag}
	}
	info, err := maxp.Decode(data)
	if err != nil {
		return nil, err
	}
	f.parsed[maxp.Tag] = info
	return info, nil
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() (int, error) {
	if f.Has(maxp.Tag) {
		info, err := f.maxpInfo()
		if err != nil {
			return 0, err
		}
		return info.NumGlyphs, nil
	}
	if f.Has(cffglyphs.Tag) {
		t, err := f.Table(cffglyphs.Tag)
		if err != nil {
			return 0, err
		}
		return t.(*cffglyphs.Outlines).NumGlyphs(), nil
	}
	return 0, &ErrNoTable{Tag: maxp.Tag}
}

// IsGlyf returns true if the font contains TrueType glyph outlines.
func (f *Font) IsGlyf() bool {
	return f.Has(glyf.Tag)
}

// IsCFF returns true if the font contains CFF glyph outlines.
func (f *Font) IsCFF() bool {
	return f.Has(cffglyphs.Tag)
}

// GlyphNames returns the glyph names of the font, in glyph ID order.
// For fonts without glyph names, nil is returned.
func (f *Font) GlyphNames() ([]string, error) {
	if f.IsCFF() {
		t, err := f.Table(cffglyphs.Tag)
		if err != nil {
			return nil, err
		}
		return t.(*cffglyphs.Outlines).Names(), nil
	}
	if f.Has(post.Tag) {
		t, err := f.Table(post.Tag)
		if err != nil {
			return nil, err
		}
		return t.(*post.Info).Names, nil
	}
	return nil, nil
}

// RenameGlyph changes the name of one glyph.  The new name must be
// different from the names of all other glyphs.
func (f *Font) RenameGlyph(gid glyph.ID, newName string) error {
	names, err := f.GlyphNames()
	if err != nil {
		return err
	}
	if int(gid) >= len(names) {
		return &table.InconsistentError{
			Msg: fmt.Sprintf("glyph %d out of range", gid),
		}
	}
	for i, n := range names {
		if n == newName && i != int(gid) {
			return &table.DuplicateNameError{Name: newName}
		}
	}

	if f.IsCFF() {
		t, err := f.Table(cffglyphs.Tag)
		if err != nil {
			return err
		}
		t.(*cffglyphs.Outlines).Rename(gid, newName)
		f.MarkDirty(cffglyphs.Tag)
		return nil
	}
	t, err := f.Table(post.Tag)
	if err != nil {
		return err
	}
	t.(*post.Info).Names[gid] = newName
	f.MarkDirty(post.Tag)
	return nil
}

// CheckReferences verifies that every glyph referenced from the
// character map, the kerning table and composite glyphs exists in the
// glyph set.
func (f *Font) CheckReferences() error {
	numGlyphs, err := f.NumGlyphs()
	if err != nil {
		return err
	}

	if f.Has(cmap.Tag) {
		t, err := f.Table(cmap.Tag)
		if err == nil {
			m, err := t.(cmap.Table).Mapping()
			if err == nil {
				for r, gid := range m {
					if int(gid) >= numGlyphs {
						return &table.InconsistentError{
							Msg: fmt.Sprintf("cmap maps %q to missing glyph %d", r, gid),
						}
					}
				}
			}
		}
	}

	if f.Has(kern.Tag) {
		t, err := f.Table(kern.Tag)
		if err == nil {
			for pair := range t.(kern.Info) {
				if int(pair.Left) >= numGlyphs || int(pair.Right) >= numGlyphs {
					return &table.InconsistentError{
						Msg: fmt.Sprintf("kern pair (%d, %d) references missing glyph",
							pair.Left, pair.Right),
					}
				}
			}
		}
	}

	if f.Has(glyf.Tag) {
		t, err := f.Table(glyf.Tag)
		if err == nil {
			for gid, g := range t.(glyf.Glyphs) {
				for _, comp := range g.Components() {
					if int(comp) >= numGlyphs {
						return &table.InconsistentError{
							Msg: fmt.Sprintf("glyph %d references missing glyph %d",
								gid, comp),
						}
					}
				}
			}
		}
	}

	return nil
}

// RepairReferences removes character map entries and kerning pairs
// which reference glyphs outside the glyph set.  Composite glyphs with
// missing components cannot be repaired and are reported as an error.
func (f *Font) RepairReferences() error {
	numGlyphs, err := f.NumGlyphs()
	if err != nil {
		return err
	}

	if f.Has(cmap.Tag) {
		t, err := f.Table(cmap.Tag)
		if err == nil {
			m, err := t.(cmap.Table).Mapping()
			if err == nil {
				changed := false
				for r, gid := range m {
					if int(gid) >= numGlyphs {
						delete(m, r)
						changed = true
					}
				}
				if changed {
					f.SetTable(cmap.Tag, cmap.FromMapping(m))
				}
			}
		}
	}

	if f.Has(kern.Tag) {
		t, err := f.Table(kern.Tag)
		if err == nil {
			info := t.(kern.Info)
			for pair := range info {
				if int(pair.Left) >= numGlyphs || int(pair.Right) >= numGlyphs {
					delete(info, pair)
					f.MarkDirty(kern.Tag)
				}
			}
		}
	}

	if f.Has(glyf.Tag) {
		t, err := f.Table(glyf.Tag)
		if err == nil {
			for gid, g := range t.(glyf.Glyphs) {
				for _, comp := range g.Components() {
					if int(comp) >= numGlyphs {
						return &table.InconsistentError{
							Msg: fmt.Sprintf("glyph %d references missing glyph %d",
								gid, comp),
						}
					}
				}
			}
		}
	}

	return nil
}

// sortTags returns the given tags in alphabetical order.
func sortTags(tags []table.Tag) []table.Tag {
	res := make([]table.Tag, len(tags))
	copy(res, tags)
	sort.Slice(res, func(i, j int) bool {
		return res[i].String() < res[j].String()
	})
	return res
}
