package persistence

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndReadBack(t *testing.T) {
	db := openMemory(t)
	run, err := db.StartRun("blindspot")
	require.NoError(t, err)

	require.NoError(t, db.RecordSamples(run, 1, 0.5, map[string]float64{"CamDist": 1.5, "ObjDist": 0}))
	require.NoError(t, db.RecordSamples(run, 2, 1.0, map[string]float64{"CamDist": 3, "ObjDist": 0.25}))

	samples, err := db.Samples(run, "CamDist")
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, Sample{Step: 1, Time: 0.5, Value: 1.5}, samples[0])
	assert.Equal(t, 3.0, samples[1].Value)

	cols, err := db.Columns(run)
	require.NoError(t, err)
	assert.Equal(t, []string{"CamDist", "ObjDist"}, cols)

	mean, n, err := db.Mean(run, "CamDist")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 2.25, mean, 1e-12)
}

func TestNaNRoundTrip(t *testing.T) {
	db := openMemory(t)
	run, err := db.StartRun("empty")
	require.NoError(t, err)
	require.NoError(t, db.RecordSamples(run, 0, 0, map[string]float64{"1-coverage": math.NaN()}))

	samples, err := db.Samples(run, "1-coverage")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.True(t, math.IsNaN(samples[0].Value))

	mean, n, err := db.Mean(run, "1-coverage")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, math.IsNaN(mean))
}

func TestRunsAreSeparate(t *testing.T) {
	db := openMemory(t)
	a, _ := db.StartRun("a")
	b, _ := db.StartRun("b")
	require.NoError(t, db.RecordSamples(a, 0, 0, map[string]float64{"x": 1}))

	samples, err := db.Samples(b, "x")
	require.NoError(t, err)
	assert.Empty(t, samples)

	runs, err := db.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	none, err := db.Samples(uuid.New(), "x")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.db")
	db, err := Open(path)
	require.NoError(t, err)
	run, _ := db.StartRun("file")
	require.NoError(t, db.RecordSamples(run, 0, 0, map[string]float64{"x": 7}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	samples, err := db.Samples(run, "x")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 7.0, samples[0].Value)
}
