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
	"seehuhn.de/go/foundry/table"
)

// A Hinter adds hinting information to a font.  Hinting algorithms are
// not part of this toolkit; callers plug in an implementation, for
// example a wrapper around an external autohinter.
type Hinter interface {
	Hint(f *foundry.Font) error
}

// hintStage applies a caller-supplied Hinter to the font.
type hintStage struct {
	hinter Hinter
}

func newHintStage(cfg Config) (Stage, error) {
	h, ok := cfg["hinter"].(Hinter)
	if !ok {
		return nil, &ConfigurationError{
			Stage: "hint",
			Msg:   "configuration key \"hinter\" must hold a pipeline.Hinter",
		}
	}
	return &hintStage{hinter: h}, nil
}

func (st *hintStage) Name() string { return "hint" }

func (st *hintStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines}
}

func (st *hintStage) Writes() []table.Kind {
	return []table.Kind{table.KindOutlines, table.KindHinting}
}

func (st *hintStage) Apply(f *foundry.Font) error {
	return st.hinter.Hint(f)
}
