package executor

import (
	"time"

	"github.com/google/uuid"
	"github.com/pseudomuto/swellow/pkg/migrator"
)

type (
	// Plan is the set of versions a run will execute.
	Plan struct {
		// Direction of the run.
		Direction migrator.Direction

		// Current is the resolved current version.
		Current int64

		// From and To bound the versions run: From < id <= To.
		From int64
		To   int64

		// Migrations holds the loaded scripts in execution order.
		Migrations *migrator.Collection
	}

	// Result describes a finished (or failed) run.
	Result struct {
		RunID     uuid.UUID
		Direction migrator.Direction
		State     State
		DryRun    bool
		Plan      *Plan
		Versions  []VersionResult
		Duration  time.Duration
	}

	// VersionResult describes a version that was executed in full.
	VersionResult struct {
		Version    int64
		Path       string
		Statements int
		Records    int
		Duration   time.Duration
	}
)

// Destructive returns the versions that drop at least one object.
func (p *Plan) Destructive() []int64 {
	var out []int64
	for id, mig := range p.Migrations.All() {
		if mig.Resources().HasDestructive() {
			out = append(out, id)
		}
	}

	return out
}

// Statements is the total number of statements executed by the run.
func (r *Result) Statements() int {
	n := 0
	for _, v := range r.Versions {
		n += v.Statements
	}

	return n
}

// LastVersion returns the last version executed, if any.
func (r *Result) LastVersion() (int64, bool) {
	if len(r.Versions) == 0 {
		return 0, false
	}

	return r.Versions[len(r.Versions)-1].Version, true
}
