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

// Package pipeline runs configurable sequences of font transformations.
//
// A [Stage] transforms the tables of a font in place.  Stages declare
// the table kinds they read and write; before a stage runs, the
// orchestrator snapshots the tables of the declared writable kinds, so
// that a failing stage can be rolled back and the font is never left
// in a half-transformed state.
package pipeline

import (
	"context"
	"fmt"

	"seehuhn.de/go/foundry"
	"seehuhn.de/go/foundry/table"
)

// Config holds the configuration values for one stage.
type Config map[string]interface{}

// A Stage is a single step of a transformation pipeline.
type Stage interface {
	// Name identifies the stage in error messages.
	Name() string

	// Reads lists the table kinds the stage needs as input.  If a
	// kind has no table in the font, the stage is not started.
	Reads() []table.Kind

	// Writes lists the table kinds the stage may modify.  Only these
	// are snapshotted and rolled back on failure.
	Writes() []table.Kind

	// Apply transforms the font in place.
	Apply(f *foundry.Font) error
}

// ConfigurationError indicates an invalid pipeline description, for
// example an unknown stage name or an unrecognized configuration key.
// Configuration errors are reported before any stage runs.
type ConfigurationError struct {
	Stage string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Msg)
}

// PreconditionError indicates that a stage could not be started
// because a table kind it reads is not present in the font.
type PreconditionError struct {
	Stage string
	Kind  table.Kind
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("stage %s: no %s table in font", e.Stage, e.Kind)
}

// StageError wraps the error returned by a failing stage.
type StageError struct {
	Stage string
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v", e.Index, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// A factory builds a stage from its configuration.
type factory func(cfg Config) (Stage, error)

type stageSpec struct {
	build factory
	keys  map[string]bool
}

// Registry maps stage names to stage factories.
type Registry struct {
	specs map[string]stageSpec
}

// NewRegistry creates a registry containing the built-in stages.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]stageSpec)}
	for name, spec := range builtinStages {
		r.specs[name] = spec
	}
	return r
}

// Register adds a custom stage type to the registry.  The keys
// arguments list the configuration keys the factory accepts.
func (r *Registry) Register(name string, build func(cfg Config) (Stage, error), keys ...string) {
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}
	r.specs[name] = stageSpec{build: build, keys: keySet}
}

// NewStage builds a single stage.  Unknown stage names and
// configuration keys the stage does not understand are rejected.
func (r *Registry) NewStage(name string, cfg Config) (Stage, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, &ConfigurationError{Stage: name, Msg: "unknown stage"}
	}
	for key := range cfg {
		if !spec.keys[key] {
			return nil, &ConfigurationError{
				Stage: name,
				Msg:   fmt.Sprintf("unknown configuration key %q", key),
			}
		}
	}
	return spec.build(cfg)
}

// A StageDesc names one stage of a pipeline together with its
// configuration.
type StageDesc struct {
	Name   string
	Config Config
}

// NewPipeline builds a pipeline from stage descriptions.  All
// configuration errors are detected here, before anything runs.
func (r *Registry) NewPipeline(descs ...StageDesc) (*Pipeline, error) {
	stages := make([]Stage, len(descs))
	for i, d := range descs {
		st, err := r.NewStage(d.Name, d.Config)
		if err != nil {
			return nil, err
		}
		stages[i] = st
	}
	return New(stages...), nil
}

// State describes the progress of a pipeline run.
type State int

// The pipeline states.
const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateRolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Pipeline is an ordered sequence of stages.
type Pipeline struct {
	stages []Stage

	state   State
	current int
	cause   error
}

// New creates a pipeline from the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// State returns the state of the last (or current) run, together with
// the index of the stage the state refers to and the error which ended
// the run, if any.
func (p *Pipeline) State() (State, int, error) {
	return p.state, p.current, p.cause
}

// Run applies the stages to the font, in order.
//
// If a stage fails, the tables of its declared writable kinds are
// restored from the snapshot taken before the stage started, and the
// error is returned as a [*StageError]; stages are not retried.
// Cancelling the context stops the run between stages; a stage which
// has already started always runs to completion.
func (p *Pipeline) Run(ctx context.Context, f *foundry.Font) error {
	p.state = StateRunning
	p.cause = nil

	for i, st := range p.stages {
		p.current = i

		if err := ctx.Err(); err != nil {
			p.state = StateFailed
			p.cause = err
			return err
		}

		for _, kind := range st.Reads() {
			if len(f.TagsOfKind(kind)) == 0 {
				err := &PreconditionError{Stage: st.Name(), Kind: kind}
				p.state = StateFailed
				p.cause = err
				return err
			}
		}

		snap, err := takeSnapshot(f, st.Writes())
		if err != nil {
			wrapped := &StageError{Stage: st.Name(), Index: i, Err: err}
			p.state = StateFailed
			p.cause = wrapped
			return wrapped
		}

		err = st.Apply(f)
		if err != nil {
			wrapped := &StageError{Stage: st.Name(), Index: i, Err: err}
			p.state = StateFailed
			p.cause = wrapped
			restoreSnapshot(f, st.Writes(), snap)
			p.state = StateRolledBack
			return wrapped
		}
	}

	p.state = StateSucceeded
	return nil
}

// A snapshot holds the binary form of the tables a stage may write,
// together with the physical table order at the time it was taken.
type snapshot struct {
	tables map[table.Tag][]byte
	order  []table.Tag
}

// takeSnapshot captures the current binary form of all tables of the
// given kinds.  Using the encoded bytes makes the snapshot independent
// of later in-place mutation of parsed tables.
func takeSnapshot(f *foundry.Font, kinds []table.Kind) (*snapshot, error) {
	snap := &snapshot{
		tables: make(map[table.Tag][]byte),
		order:  f.Tags(),
	}
	for _, kind := range kinds {
		for _, tag := range f.TagsOfKind(kind) {
			data, err := f.RawTable(tag)
			if err != nil {
				return nil, err
			}
			snap.tables[tag] = data
		}
	}
	return snap, nil
}

// restoreSnapshot puts the snapshotted tables back, removes tables of
// the snapshotted kinds which the failed stage created, and restores
// the physical table order.
func restoreSnapshot(f *foundry.Font, kinds []table.Kind, snap *snapshot) {
	for _, kind := range kinds {
		for _, tag := range f.TagsOfKind(kind) {
			if _, ok := snap.tables[tag]; !ok {
				f.RemoveTable(tag)
			}
		}
	}
	for tag, data := range snap.tables {
		f.SetRawTable(tag, data)
	}
	f.SetOrder(snap.order)
}
