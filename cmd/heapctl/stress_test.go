package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStressCommand(t *testing.T) {
	resetFlags(t)
	stressWorkers = 6
	stressOps = 500
	arenaSize = 1 << 15

	output, err := captureOutput(t, func() error { return runStress(context.Background()) })
	require.NoError(t, err)
	assert.Contains(t, output, "6 workers finished")
	assert.Contains(t, output, "arena drained")
	assert.Contains(t, output, "Allocated: 0")
}

func TestStressCommand_TightArena(t *testing.T) {
	resetFlags(t)
	stressWorkers = 4
	stressOps = 400
	stressFreePct = 20
	arenaSize = 2048
	jsonOut = true

	output, err := captureOutput(t, func() error { return runStress(context.Background()) })
	require.NoError(t, err)

	var sum stressSummary
	require.NoError(t, json.Unmarshal([]byte(output), &sum))
	assert.Equal(t, 4, sum.Workers)
	assert.Positive(t, sum.Rejected, "a 2 KiB arena should turn some allocations away")
	assert.Equal(t, sum.Rejected, sum.Stats.FailedAllocs)
	assert.Zero(t, sum.Stats.BytesInUse)
}

func TestStressCommand_Canceled(t *testing.T) {
	resetFlags(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := captureOutput(t, func() error { return runStress(ctx) })
	require.ErrorIs(t, err, context.Canceled)
}

func TestStressCommand_InvalidWorkers(t *testing.T) {
	resetFlags(t)
	stressWorkers = 0
	_, err := captureOutput(t, func() error { return runStress(context.Background()) })
	require.Error(t, err)
}
