// Package migration evolves snapshots from one schema version to
// another. Each step carries a unique version number above the base
// version; the engine applies pending steps in ascending order and can
// roll them back in descending order.
package migration

import (
	"fmt"
	"sort"
	"time"

	"stayvault/internal/state"
	"stayvault/pkg/logger"
	"stayvault/pkg/model"
)

// Step is one schema migration. Up mutates the container forward,
// Down reverses it, Validate checks the post-Up state.
type Step interface {
	Version() uint64
	Description() string
	Up(c *state.Container) error
	Down(c *state.Container) error
	Validate(c *state.Container) error
}

// Phase names the stage of a step that failed.
type Phase string

const (
	PhaseUp       Phase = "up"
	PhaseDown     Phase = "down"
	PhaseValidate Phase = "validate"
)

// StepError reports a failed migration step. When Phase is
// PhaseValidate the step's mutation has already been applied; the
// snapshot must not be saved over the previous one without review.
type StepError struct {
	Version uint64
	Phase   Phase
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration %d failed in %s phase: %v", e.Version, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Engine holds the registered steps in ascending version order.
type Engine struct {
	steps []Step
	log   *logger.Logger
}

func NewEngine(log *logger.Logger, steps ...Step) (*Engine, error) {
	e := &Engine{log: log}
	for _, s := range steps {
		if err := e.Register(s); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Register adds a step. Versions must be unique and above the base
// schema version.
func (e *Engine) Register(s Step) error {
	if s.Version() <= model.BaseSchemaVersion {
		return fmt.Errorf("migration version %d must be above base version %d", s.Version(), model.BaseSchemaVersion)
	}
	for _, existing := range e.steps {
		if existing.Version() == s.Version() {
			return fmt.Errorf("duplicate migration version %d", s.Version())
		}
	}
	e.steps = append(e.steps, s)
	sort.Slice(e.steps, func(i, j int) bool { return e.steps[i].Version() < e.steps[j].Version() })
	return nil
}

// Latest returns the highest registered version, or the base version
// when no steps are registered.
func (e *Engine) Latest() uint64 {
	if len(e.steps) == 0 {
		return model.BaseSchemaVersion
	}
	return e.steps[len(e.steps)-1].Version()
}

// Pending lists the steps above the container's current version, in
// the order they would run.
func (e *Engine) Pending(c *state.Container) []Step {
	var out []Step
	for _, s := range e.steps {
		if s.Version() > c.Schema.CurrentVersion {
			out = append(out, s)
		}
	}
	return out
}

// Applied returns the container's migration history, oldest first.
func (e *Engine) Applied(c *state.Container) []model.AppliedMigration {
	out := make([]model.AppliedMigration, len(c.Schema.AppliedMigrations))
	copy(out, c.Schema.AppliedMigrations)
	return out
}

// Apply runs every pending step up to and including target. A target
// of zero means the latest registered version. Each step runs Up then
// Validate; the first failure stops the run and is returned as a
// StepError. Steps already applied before the failure stay applied,
// and the container's version reflects the last successful step.
func (e *Engine) Apply(c *state.Container, target uint64) (int, error) {
	if target == 0 {
		target = e.Latest()
	}
	if target < c.Schema.CurrentVersion {
		return 0, fmt.Errorf("target version %d is below current version %d", target, c.Schema.CurrentVersion)
	}
	if target < e.Latest() {
		pinned := target
		c.Schema.TargetVersion = &pinned
	} else {
		c.Schema.TargetVersion = nil
	}

	applied := 0
	for _, s := range e.steps {
		v := s.Version()
		if v <= c.Schema.CurrentVersion || v > target {
			continue
		}
		if e.log != nil {
			e.log.Info("applying migration", "version", v, "description", s.Description())
		}
		if err := s.Up(c); err != nil {
			return applied, &StepError{Version: v, Phase: PhaseUp, Err: err}
		}
		if err := s.Validate(c); err != nil {
			return applied, &StepError{Version: v, Phase: PhaseValidate, Err: err}
		}
		c.Schema.CurrentVersion = v
		c.Schema.AppliedMigrations = append(c.Schema.AppliedMigrations, model.AppliedMigration{
			Version:     v,
			AppliedAt:   time.Now().UTC(),
			Description: s.Description(),
		})
		applied++
	}
	return applied, nil
}

// RollbackTo reverses applied steps down to target, newest first.
// Target must be at or above the base version and at or below the
// current version.
func (e *Engine) RollbackTo(c *state.Container, target uint64) (int, error) {
	if target < model.BaseSchemaVersion {
		return 0, fmt.Errorf("target version %d is below base version %d", target, model.BaseSchemaVersion)
	}
	if target >= c.Schema.CurrentVersion {
		return 0, fmt.Errorf("target version %d is not below current version %d", target, c.Schema.CurrentVersion)
	}

	byVersion := make(map[uint64]Step, len(e.steps))
	for _, s := range e.steps {
		byVersion[s.Version()] = s
	}

	rolled := 0
	for c.Schema.CurrentVersion > target {
		v := c.Schema.CurrentVersion
		s, ok := byVersion[v]
		if !ok {
			return rolled, fmt.Errorf("no registered migration for version %d", v)
		}
		if e.log != nil {
			e.log.Info("rolling back migration", "version", v, "description", s.Description())
		}
		if err := s.Down(c); err != nil {
			return rolled, &StepError{Version: v, Phase: PhaseDown, Err: err}
		}
		c.Schema.AppliedMigrations = trimApplied(c.Schema.AppliedMigrations, v)
		// A target between two registered versions still lands exactly
		// where the caller asked, not at the next step below it.
		prev := previousVersion(e.steps, v)
		if prev < target {
			prev = target
		}
		c.Schema.CurrentVersion = prev
		rolled++
	}
	return rolled, nil
}

func trimApplied(history []model.AppliedMigration, version uint64) []model.AppliedMigration {
	out := history[:0]
	for _, m := range history {
		if m.Version != version {
			out = append(out, m)
		}
	}
	return out
}

func previousVersion(steps []Step, version uint64) uint64 {
	prev := model.BaseSchemaVersion
	for _, s := range steps {
		if s.Version() < version && s.Version() > prev {
			prev = s.Version()
		}
	}
	return prev
}
