package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	replayVerify bool
	replayDump   bool
	replayStats  bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayVerify, "verify", false, "Check layout invariants after every op")
	cmd.Flags().BoolVar(&replayDump, "dump", false, "Dump both registries when the replay ends")
	cmd.Flags().BoolVar(&replayStats, "stats", false, "Show allocator statistics when the replay ends")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace",
		Long: `The replay command runs every op in a trace against a fresh allocator.
Allocations that run out of space are counted and the replay continues; any
other failure stops it.

Example:
  heapctl replay workload.trace --verify
  heapctl replay workload.trace.zst --dump --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
}

type replaySummary struct {
	Path       string       `json:"path"`
	Ops        int          `json:"ops"`
	Allocs     int          `json:"allocs"`
	Frees      int          `json:"frees"`
	OutOfSpace int          `json:"out_of_space"`
	Verified   bool         `json:"verified"`
	Stats      *alloc.Stats `json:"stats,omitempty"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	printVerbose("Reading trace: %s\n", path)
	ops, err := trace.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	a, err := newAllocator()
	if err != nil {
		return err
	}
	defer a.Close()

	var dumpTo io.Writer = os.Stdout
	if quiet || jsonOut {
		dumpTo = io.Discard
	}
	opts := trace.Options{DumpTo: dumpTo, Logger: logger.L}
	if replayVerify {
		opts.Check = func() error { return verify.AllInvariants(a) }
	}

	res, err := trace.Replay(ctx, a, ops, opts)
	if err != nil {
		return fmt.Errorf("replay of %s failed: %w", path, err)
	}

	sum := replaySummary{
		Path:       path,
		Ops:        len(res.Outcomes),
		Allocs:     res.Allocs,
		Frees:      res.Frees,
		OutOfSpace: res.OutOfSpace,
		Verified:   replayVerify,
	}
	if replayStats {
		st := a.Stats()
		sum.Stats = &st
	}
	if jsonOut {
		return printJSON(sum)
	}

	printInfo("Replayed %s ops: %s allocs (%s out of space), %s frees\n",
		formatNumber(sum.Ops), formatNumber(sum.Allocs), formatNumber(sum.OutOfSpace), formatNumber(sum.Frees))
	if replayVerify {
		printInfo("Layout invariants held after every op\n")
	}
	if replayDump && !quiet {
		if err := a.Dump(os.Stdout); err != nil {
			return err
		}
	}
	if replayStats {
		printInfo("\n")
		printStats(*sum.Stats)
	}
	return nil
}
