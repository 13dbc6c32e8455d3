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
	"seehuhn.de/go/foundry/funit"
	"seehuhn.de/go/foundry/kern"
	"seehuhn.de/go/foundry/table"
)

// A FeatureCompiler turns a feature description into layout tables of
// a font.  Full feature-language compilation is left to external
// implementations; the toolkit ships [KernCompiler] for plain kerning
// pairs.
type FeatureCompiler interface {
	Compile(f *foundry.Font) error
}

// KernCompiler writes a "kern" table from a list of horizontal kerning
// pairs, merging with pairs already in the font.  New values override
// existing ones.
type KernCompiler struct {
	Pairs map[kern.Pair]funit.Int16
}

// Compile implements the [FeatureCompiler] interface.
func (c KernCompiler) Compile(f *foundry.Font) error {
	var info kern.Info
	if f.Has(kern.Tag) {
		t, err := f.Table(kern.Tag)
		if err != nil {
			return err
		}
		info = t.(kern.Info)
	} else {
		info = make(kern.Info)
	}
	for pair, val := range c.Pairs {
		info[pair] = val
	}
	f.SetTable(kern.Tag, info)
	return nil
}

// featuresStage applies a FeatureCompiler to the font.
type featuresStage struct {
	compiler FeatureCompiler
}

func newFeaturesStage(cfg Config) (Stage, error) {
	if c, ok := cfg["compiler"]; ok {
		compiler, ok := c.(FeatureCompiler)
		if !ok {
			return nil, &ConfigurationError{
				Stage: "compile-features",
				Msg:   "configuration key \"compiler\" must hold a pipeline.FeatureCompiler",
			}
		}
		return &featuresStage{compiler: compiler}, nil
	}

	pairs, ok := cfg["kerning"].(map[kern.Pair]funit.Int16)
	if !ok {
		return nil, &ConfigurationError{
			Stage: "compile-features",
			Msg:   "either \"compiler\" or \"kerning\" must be set",
		}
	}
	return &featuresStage{compiler: KernCompiler{Pairs: pairs}}, nil
}

func (st *featuresStage) Name() string { return "compile-features" }

func (st *featuresStage) Reads() []table.Kind {
	return []table.Kind{table.KindOutlines}
}

func (st *featuresStage) Writes() []table.Kind {
	return []table.Kind{table.KindLayout}
}

func (st *featuresStage) Apply(f *foundry.Font) error {
	return st.compiler.Compile(f)
}
