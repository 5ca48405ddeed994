package output

import (
	"github.com/pseudomuto/swellow/pkg/executor"
)

type (
	// MigrationReport is the data of an up or down envelope.
	MigrationReport struct {
		Direction  string          `json:"direction"`
		State      string          `json:"state"`
		DryRun     bool            `json:"dry_run"`
		Plan       *PlanReport     `json:"plan,omitempty"`
		Versions   []VersionReport `json:"versions"`
		DurationMS int64           `json:"duration_ms"`
	}

	// PlanReport lists the versions selected for a run.
	PlanReport struct {
		Current  int64            `json:"current_version_id"`
		From     int64            `json:"from_version_id"`
		To       int64            `json:"to_version_id"`
		Versions []PlannedVersion `json:"versions"`
	}

	// PlannedVersion is one version of a plan with the resources it changes.
	PlannedVersion struct {
		Version     int64            `json:"version_id"`
		Path        string           `json:"path"`
		Destructive bool             `json:"destructive"`
		Resources   []ResourceReport `json:"resources"`
	}

	// ResourceReport is a single object changed by a version.
	ResourceReport struct {
		ObjectType string   `json:"object_type"`
		NameBefore string   `json:"object_name_before"`
		NameAfter  string   `json:"object_name_after"`
		Operations []string `json:"operations"`
	}

	// VersionReport is a version that was executed in full.
	VersionReport struct {
		Version    int64  `json:"version_id"`
		Path       string `json:"path"`
		Statements int    `json:"statements"`
		Records    int    `json:"records"`
	}

	// SnapshotReport is the data of a snapshot envelope.
	SnapshotReport struct {
		Version int64  `json:"version_id"`
		Path    string `json:"path"`
		Bytes   int    `json:"bytes"`
	}
)

// NewMigrationReport summarises res. It returns nil for a nil result.
func NewMigrationReport(res *executor.Result) *MigrationReport {
	if res == nil {
		return nil
	}

	report := &MigrationReport{
		Direction:  res.Direction.String(),
		State:      res.State.String(),
		DryRun:     res.DryRun,
		Plan:       NewPlanReport(res.Plan),
		Versions:   make([]VersionReport, 0, len(res.Versions)),
		DurationMS: res.Duration.Milliseconds(),
	}

	for _, v := range res.Versions {
		report.Versions = append(report.Versions, VersionReport{
			Version:    v.Version,
			Path:       v.Path,
			Statements: v.Statements,
			Records:    v.Records,
		})
	}

	return report
}

// NewPlanReport summarises a plan in execution order.
func NewPlanReport(plan *executor.Plan) *PlanReport {
	if plan == nil {
		return nil
	}

	report := &PlanReport{Current: plan.Current, From: plan.From, To: plan.To}
	for id, mig := range plan.Migrations.All() {
		resources := mig.Resources()
		pv := PlannedVersion{
			Version:     id,
			Path:        mig.Path,
			Destructive: resources.HasDestructive(),
			Resources:   make([]ResourceReport, 0, resources.Len()),
		}

		for _, res := range resources.Resources() {
			pv.Resources = append(pv.Resources, ResourceReport{
				ObjectType: res.ObjectType.String(),
				NameBefore: res.NameBefore,
				NameAfter:  res.NameAfter,
				Operations: res.Operations,
			})
		}

		report.Versions = append(report.Versions, pv)
	}

	return report
}

// NewSnapshotReport summarises a snapshot.
func NewSnapshotReport(res *executor.SnapshotResult) *SnapshotReport {
	if res == nil {
		return nil
	}

	return &SnapshotReport{Version: res.Version, Path: res.Path, Bytes: res.Bytes}
}
