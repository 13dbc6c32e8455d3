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

// The built-in stage types.
var builtinStages = map[string]stageSpec{
	"hint": {
		build: newHintStage,
		keys:  keySet("hinter"),
	},
	"dehint": {
		build: newDehintStage,
		keys:  keySet(),
	},
	"subset": {
		build: newSubsetStage,
		keys:  keySet("names", "unicodes", "keep-hinting"),
	},
	"convert-outlines": {
		build: newConvertStage,
		keys:  keySet("format"),
	},
	"merge": {
		build: newMergeStage,
		keys:  keySet("source"),
	},
	"rename-glyphs": {
		build: newRenameStage,
		keys:  keySet("names"),
	},
	"recalculate-metrics": {
		build: newMetricsStage,
		keys:  keySet(),
	},
	"compile-features": {
		build: newFeaturesStage,
		keys:  keySet("compiler", "kerning"),
	},
	"scale-upem": {
		build: newScaleStage,
		keys:  keySet("upem"),
	},
	"decompose": {
		build: newDecomposeStage,
		keys:  keySet(),
	},
	"remove-unused-glyphs": {
		build: newRemoveUnusedStage,
		keys:  keySet(),
	},
	"sort-glyphs": {
		build: newSortGlyphsStage,
		keys:  keySet(),
	},
}

func keySet(keys ...string) map[string]bool {
	res := make(map[string]bool, len(keys))
	for _, k := range keys {
		res[k] = true
	}
	return res
}
