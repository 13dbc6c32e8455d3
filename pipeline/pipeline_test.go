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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/cmap"
	"seehuhn.de/go/foundry/hint"
	"seehuhn.de/go/foundry/hmtx"
	"seehuhn.de/go/foundry/internal/debug/makefont"
	"seehuhn.de/go/foundry/kern"
	"seehuhn.de/go/foundry/table"
)

func glyphNames(t *testing.T, f *foundry.Font) []string {
	t.Helper()
	names, err := f.GlyphNames()
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func numGlyphs(t *testing.T, f *foundry.Font) int {
	t.Helper()
	n, err := f.NumGlyphs()
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func mappingOf(t *testing.T, f *foundry.Font) map[rune]glyph.ID {
	t.Helper()
	tbl, err := f.Table(cmap.Tag)
	if err != nil {
		t.Fatal(err)
	}
	m, err := tbl.(cmap.Table).Mapping()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func widthsOf(t *testing.T, f *foundry.Font) []uint16 {
	t.Helper()
	tbl, err := f.Table(hmtx.Tag)
	if err != nil {
		t.Fatal(err)
	}
	return tbl.(*hmtx.Info).Widths
}

func kernOf(t *testing.T, f *foundry.Font) kern.Info {
	t.Helper()
	tbl, err := f.Table(kern.Tag)
	if err != nil {
		t.Fatal(err)
	}
	return tbl.(kern.Info)
}

func runStages(t *testing.T, f *foundry.Font, descs ...StageDesc) {
	t.Helper()
	p, err := NewRegistry().NewPipeline(descs...)
	if err != nil {
		t.Fatal(err)
	}
	err = p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
}

func TestUnknownStage(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewStage("frobnicate", nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want a ConfigurationError", err)
	}
}

func TestUnknownConfigKey(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewStage("dehint", Config{"level": 3})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want a ConfigurationError", err)
	}
}

func TestConfigErrorsBeforeRun(t *testing.T) {
	// NewPipeline reports configuration errors for later stages before
	// anything runs.
	r := NewRegistry()
	_, err := r.NewPipeline(
		StageDesc{Name: "dehint"},
		StageDesc{Name: "scale-upem", Config: Config{"upem": 8}},
	)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want a ConfigurationError", err)
	}
}

func TestPrecondition(t *testing.T) {
	f := makefont.TrueType()
	f.RemoveTable(cmap.Tag)

	p, err := NewRegistry().NewPipeline(StageDesc{Name: "remove-unused-glyphs"})
	if err != nil {
		t.Fatal(err)
	}
	err = p.Run(context.Background(), f)
	var preErr *PreconditionError
	if !errors.As(err, &preErr) {
		t.Fatalf("got %v, want a PreconditionError", err)
	}
	if preErr.Kind != table.KindMapping {
		t.Errorf("missing kind %s, want %s", preErr.Kind, table.KindMapping)
	}
	if state, _, _ := p.State(); state != StateFailed {
		t.Errorf("state %s, want %s", state, StateFailed)
	}
}

var errExplode = errors.New("boom")

type explodingStage struct{}

func (explodingStage) Name() string         { return "explode" }
func (explodingStage) Reads() []table.Kind  { return nil }
func (explodingStage) Writes() []table.Kind { return []table.Kind{table.KindLayout} }

func (explodingStage) Apply(f *foundry.Font) error {
	f.SetTable(kern.Tag, kern.Info{{Left: 9, Right: 9}: 1})
	return errExplode
}

func TestRollback(t *testing.T) {
	f := makefont.TrueType()
	before, err := f.RawTable(kern.Tag)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	r.Register("explode", func(cfg Config) (Stage, error) {
		return explodingStage{}, nil
	})
	p, err := r.NewPipeline(StageDesc{Name: "explode"})
	if err != nil {
		t.Fatal(err)
	}

	err = p.Run(context.Background(), f)
	if !errors.Is(err, errExplode) {
		t.Fatalf("got %v, want errExplode", err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != "explode" {
		t.Fatalf("got %v, want a StageError for the explode stage", err)
	}
	if state, _, _ := p.State(); state != StateRolledBack {
		t.Errorf("state %s, want %s", state, StateRolledBack)
	}

	after, err := f.RawTable(kern.Tag)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("kern table not restored after rollback")
	}
}

func TestRollbackRemovesNewTables(t *testing.T) {
	// The failed stage created a kern table where there was none; the
	// rollback removes it again.
	f := makefont.TrueType()
	f.RemoveTable(kern.Tag)

	r := NewRegistry()
	r.Register("explode", func(cfg Config) (Stage, error) {
		return explodingStage{}, nil
	})
	p, err := r.NewPipeline(StageDesc{Name: "explode"})
	if err != nil {
		t.Fatal(err)
	}

	err = p.Run(context.Background(), f)
	if !errors.Is(err, errExplode) {
		t.Fatalf("got %v, want errExplode", err)
	}
	if f.Has(kern.Tag) {
		t.Error("table created by the failed stage survived the rollback")
	}
}

type removingStage struct{}

func (removingStage) Name() string         { return "drop-kern" }
func (removingStage) Reads() []table.Kind  { return nil }
func (removingStage) Writes() []table.Kind { return []table.Kind{table.KindLayout} }

func (removingStage) Apply(f *foundry.Font) error {
	f.RemoveTable(kern.Tag)
	return errExplode
}

func TestRollbackKeepsTableOrder(t *testing.T) {
	// The failed stage removed the kern table; the rollback puts it
	// back at its original position in the output file.
	f := makefont.TrueType()
	before := f.Tags()

	r := NewRegistry()
	r.Register("drop-kern", func(cfg Config) (Stage, error) {
		return removingStage{}, nil
	})
	p, err := r.NewPipeline(StageDesc{Name: "drop-kern"})
	if err != nil {
		t.Fatal(err)
	}

	err = p.Run(context.Background(), f)
	if !errors.Is(err, errExplode) {
		t.Fatalf("got %v, want errExplode", err)
	}
	if d := cmp.Diff(before, f.Tags()); d != "" {
		t.Errorf("table order changed by rollback (-want +got):\n%s", d)
	}
}

type idleStage struct{}

func (idleStage) Name() string                { return "idle" }
func (idleStage) Reads() []table.Kind         { return nil }
func (idleStage) Writes() []table.Kind        { return []table.Kind{table.KindOther} }
func (idleStage) Apply(f *foundry.Font) error { return nil }

func TestSnapshotFailure(t *testing.T) {
	// The "Zzzz" table has no codec, so encoding it for the snapshot
	// fails before the stage runs.
	f := makefont.TrueType()
	f.SetTable(table.MakeTag("Zzzz"), kern.Info{})

	r := NewRegistry()
	r.Register("idle", func(cfg Config) (Stage, error) {
		return idleStage{}, nil
	})
	p, err := r.NewPipeline(StageDesc{Name: "idle"})
	if err != nil {
		t.Fatal(err)
	}

	err = p.Run(context.Background(), f)
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("got %v, want a StageError", err)
	}
	state, _, cause := p.State()
	if state != StateFailed {
		t.Errorf("state %s, want %s", state, StateFailed)
	}
	if cause != err {
		t.Errorf("State reports %v, but Run returned %v", cause, err)
	}
}

func TestContextCancellation(t *testing.T) {
	f := makefont.TrueTypeHinted()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := NewRegistry().NewPipeline(StageDesc{Name: "dehint"})
	if err != nil {
		t.Fatal(err)
	}
	err = p.Run(ctx, f)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if !f.Has(hint.FpgmTag) {
		t.Error("stage ran despite cancelled context")
	}
}

func TestStateSucceeded(t *testing.T) {
	f := makefont.TrueTypeHinted()
	p, err := NewRegistry().NewPipeline(StageDesc{Name: "dehint"})
	if err != nil {
		t.Fatal(err)
	}
	err = p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	state, _, cause := p.State()
	if state != StateSucceeded || cause != nil {
		t.Errorf("state %s (%v), want %s", state, cause, StateSucceeded)
	}
}

type testHinter struct{}

func (testHinter) Hint(f *foundry.Font) error {
	f.SetTable(hint.CvtTag, hint.ControlValues{50})
	return nil
}

func TestHintStage(t *testing.T) {
	f := makefont.TrueType()
	runStages(t, f, StageDesc{
		Name:   "hint",
		Config: Config{"hinter": testHinter{}},
	})
	if !f.Has(hint.CvtTag) {
		t.Error("hinter output missing")
	}
}
