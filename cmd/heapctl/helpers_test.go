package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/chunk"
)

// resetFlags restores every global flag to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut = false, false, false
	arenaSize, capacity = alloc.DefaultArenaSize, chunk.DefaultCapacity
	logLevel, logJSON, logDir = "", false, ""

	recordSeed, recordOps, recordMaxSize, recordFreePct, recordDump = 1, 1000, 256, 45, false
	replayVerify, replayDump, replayStats = false, false, false
	stressWorkers, stressOps, stressMaxSize, stressFreePct, stressSeed = 8, 1000, 256, 50, 1
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Drain the pipe concurrently so large outputs cannot block fn.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}
