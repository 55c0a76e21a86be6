package output_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/output"
)

func TestWriteTrajectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	w, err := output.Open(path, 2, "road: {}", 2)
	require.NoError(t, err)
	assert.NotEmpty(t, w.RunID())

	ctx := context.Background()
	for step := int32(0); step < 5; step++ {
		snaps := []*entity.VehicleSnapshot{
			{ID: 1, Lane: 0, S: float64(step), V: 10, A: 0.5, LaneChange: entity.NONE},
			{ID: 2, Lane: 1, S: 100 + float64(step), V: 12, A: -0.5, LaneChange: entity.LEFT},
		}
		require.NoError(t, w.Write(ctx, step, float64(step)*0.5, snaps))
	}

	rows, err := w.Trajectory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int32{0, 2, 4}, []int32{rows[0].Step, rows[1].Step, rows[2].Step})
	assert.Equal(t, output.Row{Step: 4, T: 2, VehicleID: 2, Lane: 1, S: 104, V: 12, A: -0.5, LaneChange: entity.LEFT}, rows[2])

	// 重复写入同一步违反主键
	assert.Error(t, w.Write(ctx, 4, 2, []*entity.VehicleSnapshot{{ID: 1}}))

	runID := w.RunID()
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var steps, vehicles int
	var finished sql.NullString
	require.NoError(t, db.QueryRow(`SELECT steps, vehicles, finished_at FROM runs WHERE run_id = ?`, runID).Scan(&steps, &vehicles, &finished))
	assert.Equal(t, 3, steps)
	assert.Equal(t, 2, vehicles)
	assert.True(t, finished.Valid)
}

func TestWriteFinalIgnoresInterval(t *testing.T) {
	w, err := output.Open(filepath.Join(t.TempDir(), "out.db"), 5, "", 1)
	require.NoError(t, err)
	defer w.Close()

	ctx := context.Background()
	snaps := []*entity.VehicleSnapshot{{ID: 1, V: 10}}
	for step := int32(0); step < 7; step++ {
		require.NoError(t, w.Write(ctx, step, float64(step), snaps))
	}
	require.NoError(t, w.WriteFinal(ctx, 7, 7, snaps))

	rows, err := w.Trajectory(ctx, 1)
	require.NoError(t, err)
	steps := make([]int32, 0, len(rows))
	for _, r := range rows {
		steps = append(steps, r.Step)
	}
	assert.Equal(t, []int32{0, 5, 7}, steps)
}

func TestOpenRejectsInvalidInterval(t *testing.T) {
	_, err := output.Open(filepath.Join(t.TempDir(), "out.db"), 0, "", 0)
	assert.Error(t, err)
}
