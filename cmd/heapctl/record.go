package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	recordSeed    int64
	recordOps     int
	recordMaxSize int
	recordFreePct int
	recordDump    bool
)

func init() {
	cmd := newRecordCmd()
	cmd.Flags().Int64Var(&recordSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&recordOps, "ops", 1000, "Number of operations to generate")
	cmd.Flags().IntVar(&recordMaxSize, "max-size", 256, "Largest allocation size in bytes")
	cmd.Flags().IntVar(&recordFreePct, "free-pct", 45, "Chance in percent that a step releases a live allocation")
	cmd.Flags().BoolVar(&recordDump, "dump", false, "End the trace with a dump op")
	rootCmd.AddCommand(cmd)
}

func newRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <trace>",
		Short: "Generate a random workload trace",
		Long: `The record command runs a seeded random mix of allocations and releases
against an allocator sized by the global flags and writes the operations as a
trace. Files ending in .zst or .lz4 are compressed.

Example:
  heapctl record workload.trace
  heapctl record workload.trace.zst --seed 7 --ops 50000 --max-size 4096`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(args)
		},
	}
}

func runRecord(args []string) error {
	path := args[0]

	if recordOps < 0 {
		return fmt.Errorf("ops must not be negative, got %d", recordOps)
	}
	w, err := newWorkload(recordSeed, recordMaxSize, recordFreePct)
	if err != nil {
		return err
	}

	a, err := newAllocator()
	if err != nil {
		return err
	}
	defer a.Close()

	ops, err := w.generate(a, recordOps)
	if err != nil {
		return fmt.Errorf("failed to generate workload: %w", err)
	}
	if recordDump {
		ops = append(ops, trace.Dump())
	}

	header := []string{
		"heapctl record",
		fmt.Sprintf("seed=%d ops=%d max-size=%d free-pct=%d", recordSeed, recordOps, recordMaxSize, recordFreePct),
		fmt.Sprintf("arena-size=%d capacity=%d", arenaSize, capacity),
	}
	if err := trace.WriteFile(path, header, ops); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}

	s := a.Stats()
	if jsonOut {
		return printJSON(map[string]any{
			"path":         path,
			"ops":          len(ops),
			"out_of_space": s.FailedAllocs,
			"live":         s.AllocatedChunks,
		})
	}
	printInfo("Wrote %s ops to %s\n", formatNumber(len(ops)), path)
	printVerbose("  out of space: %s, live at end: %s\n", formatNumber(s.FailedAllocs), formatNumber(s.AllocatedChunks))
	return nil
}
