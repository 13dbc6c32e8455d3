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
	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/glyf"
	"seehuhn.de/go/foundry/hint"
	"seehuhn.de/go/foundry/table"
)

// dehintStage removes all hinting information: the font-wide hinting
// tables and the per-glyph instructions or charstring hints.
type dehintStage struct{}

func newDehintStage(cfg Config) (Stage, error) {
	return dehintStage{}, nil
}

func (dehintStage) Name() string { return "dehint" }

func (dehintStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines}
}

func (dehintStage) Writes() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindHinting}
}

func (dehintStage) Apply(f *foundry.Font) error {
	if f.IsGlyf() {
		t, err := f.Table(glyf.Tag)
		if err != nil {
			return err
		}
		gg := t.(glyf.Glyphs)
		err = gg.RemoveInstructions()
		if err != nil {
			return err
		}
		f.SetTable(glyf.Tag, gg)
	}
	if f.IsCFF() {
		t, err := f.Table(cffglyphs.Tag)
		if err != nil {
			return err
		}
		o := t.(*cffglyphs.Outlines)
		o.RemoveHints()
		f.MarkDirty(cffglyphs.Tag)
	}

	f.RemoveTable(hint.FpgmTag)
	f.RemoveTable(hint.PrepTag)
	f.RemoveTable(hint.CvtTag)

	return nil
}

// isHinted reports whether the font carries font-wide TrueType hinting
// tables.
func isHinted(f *foundry.Font) bool {
	return f.Has(hint.FpgmTag) || f.Has(hint.PrepTag) || f.Has(hint.CvtTag)
}
