package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	stressWorkers int
	stressOps     int
	stressMaxSize int
	stressFreePct int
	stressSeed    int64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressWorkers, "workers", 8, "Number of concurrent workers")
	cmd.Flags().IntVar(&stressOps, "ops", 1000, "Operations per worker")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 256, "Largest allocation size in bytes")
	cmd.Flags().IntVar(&stressFreePct, "free-pct", 50, "Chance in percent that a step releases a live allocation")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Base random seed; worker i uses seed+i")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run concurrent workers against one shared allocator",
		Long: `The stress command starts several goroutines that allocate, fill, check
and release memory from one synchronized allocator. Each worker fills its
allocations with its own byte and checks it before release, so overlapping
allocations are caught. When all workers finish the arena must be a single
free chunk again.

Example:
  heapctl stress
  heapctl stress --workers 32 --ops 100000 --arena-size 1048576`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
}

type stressSummary struct {
	Workers  int         `json:"workers"`
	Rejected int         `json:"rejected"`
	Stats    alloc.Stats `json:"stats"`
}

func runStress(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if stressWorkers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", stressWorkers)
	}

	a, err := newAllocator()
	if err != nil {
		return err
	}
	s := alloc.NewSynchronized(a)
	defer s.Close()

	rejected := make([]int, stressWorkers)
	g, ctx := errgroup.WithContext(ctx)
	for id := range stressWorkers {
		w, err := newWorkload(stressSeed+int64(id), stressMaxSize, stressFreePct)
		if err != nil {
			return err
		}
		g.Go(func() error {
			n, err := stressWorker(ctx, s, w, byte(id+1), stressOps)
			rejected[id] = n
			if err != nil {
				return fmt.Errorf("worker %d: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := verify.AllInvariants(s); err != nil {
		return err
	}
	size, allocated, free := s.Snapshot()
	if len(allocated) != 0 || len(free) != 1 || free[0].Size != size {
		return fmt.Errorf("arena did not drain: %d allocated, %d free chunks", len(allocated), len(free))
	}

	sum := stressSummary{Workers: stressWorkers, Stats: s.Stats()}
	for _, n := range rejected {
		sum.Rejected += n
	}
	logger.Info("stress finished", "workers", sum.Workers, "rejected", sum.Rejected)

	if jsonOut {
		return printJSON(sum)
	}
	printInfo("%d workers finished, %s allocations rejected, arena drained\n\n",
		sum.Workers, formatNumber(sum.Rejected))
	printStats(sum.Stats)
	return nil
}

// stressWorker runs ops workload steps on s and releases everything it still
// holds before returning. It returns the number of allocations rejected for
// lack of space or registry room.
func stressWorker(ctx context.Context, s *alloc.Synchronized, w *workload, mark byte, ops int) (int, error) {
	var live []alloc.Ptr
	rejected := 0

	release := func(i int) error {
		p := live[i]
		buf, err := s.Bytes(p)
		if err != nil {
			return err
		}
		for off, b := range buf {
			if b != mark {
				return fmt.Errorf("allocation at %d overwritten at byte %d", p, off)
			}
		}
		live = slices.Delete(live, i, i+1)
		return s.Release(p)
	}

	for range ops {
		if err := ctx.Err(); err != nil {
			return rejected, err
		}
		rel, idx, size := w.step(len(live))
		if rel {
			if err := release(idx); err != nil {
				return rejected, err
			}
			continue
		}

		p, err := s.Allocate(size)
		if errors.Is(err, alloc.ErrOutOfSpace) || errors.Is(err, alloc.ErrCapacityExceeded) {
			rejected++
			continue
		}
		if err != nil {
			return rejected, err
		}
		buf, err := s.Bytes(p)
		if err != nil {
			return rejected, err
		}
		for i := range buf {
			buf[i] = mark
		}
		live = append(live, p)
	}

	for len(live) > 0 {
		if err := release(len(live) - 1); err != nil {
			return rejected, err
		}
	}
	return rejected, nil
}
