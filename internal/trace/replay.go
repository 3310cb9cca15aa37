package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	// ErrUnknownLabel is returned when a free names a label no alloc bound.
	ErrUnknownLabel = errors.New("trace: unknown label")

	// ErrLabelInUse is returned when an alloc reuses a label that is still live.
	ErrLabelInUse = errors.New("trace: label already live")
)

// Heap is the allocator surface a trace drives. Both *alloc.Allocator and
// *alloc.Synchronized satisfy it.
type Heap interface {
	Allocate(size int) (alloc.Ptr, error)
	Release(p alloc.Ptr) error
	Dump(w io.Writer) error
}

// Options controls Replay.
type Options struct {
	// DumpTo receives the output of dump ops. Nil discards it.
	DumpTo io.Writer

	// Check, if set, runs after every op. A non-nil result stops the replay.
	Check func() error

	Logger *slog.Logger
}

// Outcome is the result of one replayed op.
type Outcome struct {
	Op  Op
	Ptr alloc.Ptr // pointer returned by an alloc, alloc.Nil otherwise
	Err error
}

// Result summarizes a replay.
type Result struct {
	Outcomes   []Outcome
	Allocs     int
	Frees      int
	OutOfSpace int
}

// Replay runs ops against h in order.
//
// An alloc that fails with alloc.ErrOutOfSpace binds its label to alloc.Nil
// and the replay continues, so a later free of that label is a no-op. Any
// other error stops the replay and is returned along with the partial result.
// ctx is checked between ops.
func Replay(ctx context.Context, h Heap, ops []Op, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dumpTo := opts.DumpTo
	if dumpTo == nil {
		dumpTo = io.Discard
	}

	res := &Result{Outcomes: make([]Outcome, 0, len(ops))}
	labels := make(map[string]alloc.Ptr)

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		out := Outcome{Op: op, Ptr: alloc.Nil}
		switch op.Kind {
		case KindAlloc:
			if _, live := labels[op.Label]; live {
				out.Err = fmt.Errorf("%w: %q", ErrLabelInUse, op.Label)
				break
			}
			out.Ptr, out.Err = h.Allocate(op.Size)
			res.Allocs++
			if errors.Is(out.Err, alloc.ErrOutOfSpace) {
				res.OutOfSpace++
				log.Debug("replay: out of space", "line", op.Line, "label", op.Label, "size", op.Size)
			}
			if !alloc.IsFatal(out.Err) {
				labels[op.Label] = out.Ptr
			}

		case KindFree:
			p := alloc.Ptr(op.Offset)
			if op.Label != "" {
				var ok bool
				if p, ok = labels[op.Label]; !ok {
					out.Err = fmt.Errorf("%w: %q", ErrUnknownLabel, op.Label)
					break
				}
				delete(labels, op.Label)
			}
			out.Err = h.Release(p)
			res.Frees++

		case KindDump:
			out.Err = h.Dump(dumpTo)

		default:
			out.Err = fmt.Errorf("%w: kind %d", ErrSyntax, op.Kind)
		}

		res.Outcomes = append(res.Outcomes, out)
		if alloc.IsFatal(out.Err) {
			log.Warn("replay stopped", "line", op.Line, "op", op.String(), "error", out.Err)
			return res, fmt.Errorf("%s: %w", describe(op), out.Err)
		}
		if err := check(opts.Check, op); err != nil {
			return res, err
		}
	}
	return res, nil
}

func check(fn func() error, op Op) error {
	if fn == nil {
		return nil
	}
	if err := fn(); err != nil {
		return fmt.Errorf("after %s: %w", describe(op), err)
	}
	return nil
}

func describe(op Op) string {
	if op.Line > 0 {
		return fmt.Sprintf("line %d (%s)", op.Line, op)
	}
	return op.String()
}
