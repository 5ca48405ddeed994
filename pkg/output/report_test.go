package output_test

import (
	"testing"
	"time"

	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/migrator"
	. "github.com/pseudomuto/swellow/pkg/output"
	"github.com/stretchr/testify/require"
)

func TestNewMigrationReport(t *testing.T) {
	require.Nil(t, NewMigrationReport(nil))
	require.Nil(t, NewPlanReport(nil))
	require.Nil(t, NewSnapshotReport(nil))

	res := &executor.Result{
		Direction: migrator.Up,
		State:     executor.Committed,
		Plan:      loadPlan(t, migrator.Up),
		Duration:  250 * time.Millisecond,
		Versions: []executor.VersionResult{
			{Version: 1, Path: "001_create_users/up.sql", Statements: 1, Records: 1},
		},
	}

	report := NewMigrationReport(res)
	require.Equal(t, "up", report.Direction)
	require.Equal(t, "committed", report.State)
	require.Equal(t, int64(250), report.DurationMS)
	require.Equal(t, []VersionReport{{Version: 1, Path: "001_create_users/up.sql", Statements: 1, Records: 1}}, report.Versions)

	require.Len(t, report.Plan.Versions, 2)
	require.False(t, report.Plan.Versions[0].Destructive)
	require.True(t, report.Plan.Versions[1].Destructive)
	require.Equal(t, ResourceReport{
		ObjectType: "TABLE",
		NameBefore: "legacy",
		NameAfter:  "-1",
		Operations: []string{"DROP"},
	}, report.Plan.Versions[1].Resources[1])
}
