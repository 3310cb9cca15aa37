// Package trace reads, writes and replays allocator workload scripts.
//
// A script has one operation per line:
//
//	alloc <label> <size>
//	free <label>
//	free nil
//	free @<offset>
//	dump
//
// Blank lines and lines starting with '#' are ignored. Labels name the
// pointer returned by an alloc so later frees can refer to it.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies a trace operation.
type Kind int

const (
	KindAlloc Kind = iota + 1
	KindFree
	KindDump
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindFree:
		return "free"
	case KindDump:
		return "dump"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NilOffset is the Offset of a "free nil" operation.
const NilOffset = -1

// Op is one trace operation.
//
// A free names its target either by Label or, when Label is empty, by raw
// Offset. Offset NilOffset releases the nil pointer.
type Op struct {
	Kind   Kind
	Label  string
	Size   int
	Offset int
	Line   int // 1-based source line, 0 for ops built in code
}

// Alloc returns an alloc op.
func Alloc(label string, size int) Op { return Op{Kind: KindAlloc, Label: label, Size: size} }

// Free returns a free-by-label op.
func Free(label string) Op { return Op{Kind: KindFree, Label: label} }

// FreeOffset returns a free of a raw offset.
func FreeOffset(off int) Op { return Op{Kind: KindFree, Offset: off} }

// FreeNil returns a free of the nil pointer.
func FreeNil() Op { return Op{Kind: KindFree, Offset: NilOffset} }

// Dump returns a dump op.
func Dump() Op { return Op{Kind: KindDump} }

// String renders op in script syntax.
func (op Op) String() string {
	switch op.Kind {
	case KindAlloc:
		return fmt.Sprintf("alloc %s %d", op.Label, op.Size)
	case KindFree:
		switch {
		case op.Label != "":
			return "free " + op.Label
		case op.Offset == NilOffset:
			return "free nil"
		default:
			return fmt.Sprintf("free @%d", op.Offset)
		}
	case KindDump:
		return "dump"
	default:
		return op.Kind.String()
	}
}

var (
	// ErrSyntax is returned for a malformed script line.
	ErrSyntax = errors.New("trace: syntax error")
)

// Parse reads a script from r.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		op, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		op.Line = line
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func parseLine(text string) (Op, error) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "alloc":
		if len(fields) != 3 {
			return Op{}, fmt.Errorf("%w: alloc wants <label> <size>", ErrSyntax)
		}
		if err := checkLabel(fields[1]); err != nil {
			return Op{}, err
		}
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			return Op{}, fmt.Errorf("%w: size %q", ErrSyntax, fields[2])
		}
		return Alloc(fields[1], size), nil

	case "free":
		if len(fields) != 2 {
			return Op{}, fmt.Errorf("%w: free wants one target", ErrSyntax)
		}
		target := fields[1]
		switch {
		case target == "nil":
			return FreeNil(), nil
		case strings.HasPrefix(target, "@"):
			off, err := strconv.Atoi(target[1:])
			if err != nil || off < 0 {
				return Op{}, fmt.Errorf("%w: offset %q", ErrSyntax, target)
			}
			return FreeOffset(off), nil
		default:
			if err := checkLabel(target); err != nil {
				return Op{}, err
			}
			return Free(target), nil
		}

	case "dump":
		if len(fields) != 1 {
			return Op{}, fmt.Errorf("%w: dump takes no arguments", ErrSyntax)
		}
		return Dump(), nil
	}
	return Op{}, fmt.Errorf("%w: unknown op %q", ErrSyntax, fields[0])
}

func checkLabel(label string) error {
	if label == "nil" || strings.HasPrefix(label, "@") || strings.HasPrefix(label, "#") {
		return fmt.Errorf("%w: reserved label %q", ErrSyntax, label)
	}
	return nil
}

// Write renders ops to w, one per line.
func Write(w io.Writer, ops []Op) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		if _, err := bw.WriteString(op.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
