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
	"errors"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cffglyphs"
	"seehuhn.de/go/foundry/post"
	"seehuhn.de/go/foundry/table"
)

// renameStage renames glyphs according to an old-name to new-name
// mapping.  The whole mapping is applied at once, so exchanging the
// names of two glyphs is possible.
type renameStage struct {
	names map[string]string
}

func newRenameStage(cfg Config) (Stage, error) {
	names, ok := cfg["names"].(map[string]string)
	if !ok {
		return nil, &ConfigurationError{
			Stage: "rename-glyphs",
			Msg:   "configuration key \"names\" must hold a map[string]string",
		}
	}
	return &renameStage{names: names}, nil
}

func (st *renameStage) Name() string { return "rename-glyphs" }

func (st *renameStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindNames}
}

func (st *renameStage) Writes() []table.Kind {
	return []table.Kind{table.KindNames, table.KindOutlines}
}

func (st *renameStage) Apply(f *foundry.Font) error {
	oldNames, err := f.GlyphNames()
	if err != nil {
		return err
	}
	if oldNames == nil {
		return errors.New("font has no glyph names")
	}

	newNames := make([]string, len(oldNames))
	seen := make(map[string]bool, len(oldNames))
	for gid, name := range oldNames {
		if repl, ok := st.names[name]; ok {
			name = repl
		}
		if name != "" && seen[name] {
			return &table.DuplicateNameError{Name: name}
		}
		seen[name] = true
		newNames[gid] = name
	}

	if f.IsCFF() {
		t, err := f.Table(cffglyphs.Tag)
		if err != nil {
			return err
		}
		o := t.(*cffglyphs.Outlines)
		for gid, name := range newNames {
			o.Rename(glyph.ID(gid), name)
		}
		f.MarkDirty(cffglyphs.Tag)
		return nil
	}

	t, err := f.Table(post.Tag)
	if err != nil {
		return err
	}
	t.(*post.Info).Names = newNames
	f.MarkDirty(post.Tag)
	return nil
}
