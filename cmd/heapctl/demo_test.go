package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/chunk"
)

func TestDemoCommand(t *testing.T) {
	resetFlags(t)

	output, err := captureOutput(t, func() error { return runDemo(nil) })
	require.NoError(t, err)

	assert.Contains(t, output, "Allocated 26 bytes at offset 0: abcdefghijklmnopqrstuvwxyz")
	assert.Contains(t, output, "Allocated Chunks (1):\n  start: 0, size: 26\n")
	assert.Contains(t, output, "Reuse walkthrough: [0 20 0]")
	assert.Contains(t, output, "Allocated Chunks (2):\n  start: 0, size: 20\n  start: 20, size: 30\n")
	assert.Contains(t, output, "Free Chunks (1):\n  start: 50, size: 639950\n")
}

func TestDemoCommand_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	arenaSize = 100

	output, err := captureOutput(t, func() error { return runDemo(nil) })
	require.NoError(t, err)

	var res demoResult
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz", res.Alphabet.Text)
	assert.Equal(t, []alloc.Ptr{0, 20, 0}, res.Reuse.Pointers)
	assert.Equal(t, []chunk.Chunk{{Start: 0, Size: 20}, {Start: 20, Size: 30}}, res.Reuse.Allocated)
	assert.Equal(t, []chunk.Chunk{{Start: 50, Size: 50}}, res.Reuse.Free)
}

func TestDemoCommand_Quiet(t *testing.T) {
	resetFlags(t)
	quiet = true

	output, err := captureOutput(t, func() error { return runDemo(nil) })
	require.NoError(t, err)
	assert.Empty(t, output)
}

func TestDemoCommand_ArenaTooSmall(t *testing.T) {
	resetFlags(t)
	arenaSize = 16

	_, err := captureOutput(t, func() error { return runDemo(nil) })
	require.ErrorIs(t, err, alloc.ErrOutOfSpace)
}
