package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/chunk"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in allocation walkthrough",
		Long: `The demo command allocates 26 bytes, writes the alphabet into them and
dumps the allocated registry. It then runs a reuse walkthrough on a fresh
arena: allocate 20, allocate 30, release the first block and allocate 20
again, which lands back at offset 0.

Example:
  heapctl demo
  heapctl demo --arena-size 100 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(args)
		},
	}
}

type demoResult struct {
	Alphabet struct {
		Ptr  alloc.Ptr `json:"ptr"`
		Text string    `json:"text"`
	} `json:"alphabet"`
	Reuse struct {
		Pointers  []alloc.Ptr   `json:"pointers"`
		Allocated []chunk.Chunk `json:"allocated"`
		Free      []chunk.Chunk `json:"free"`
	} `json:"reuse"`
}

func runDemo(args []string) error {
	var res demoResult

	a, err := newAllocator()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Allocate(26)
	if err != nil {
		return fmt.Errorf("alphabet allocation: %w", err)
	}
	buf, err := a.Bytes(p)
	if err != nil {
		return err
	}
	for i := range buf {
		buf[i] = 'a' + byte(i)
	}
	res.Alphabet.Ptr = p
	res.Alphabet.Text = string(buf)

	if !jsonOut {
		printInfo("Allocated 26 bytes at offset %d: %s\n", p, buf)
		if !quiet {
			if err := a.DumpAllocated(os.Stdout); err != nil {
				return err
			}
		}
		printInfo("\n")
	}

	r, err := newAllocator()
	if err != nil {
		return err
	}
	defer r.Close()

	steps := []struct {
		desc string
		run  func() (alloc.Ptr, error)
	}{
		{"allocate 20", func() (alloc.Ptr, error) { return r.Allocate(20) }},
		{"allocate 30", func() (alloc.Ptr, error) { return r.Allocate(30) }},
		{"release first", func() (alloc.Ptr, error) { return alloc.Nil, r.Release(res.Reuse.Pointers[0]) }},
		{"allocate 20", func() (alloc.Ptr, error) { return r.Allocate(20) }},
	}
	for _, step := range steps {
		q, err := step.run()
		if err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
		if q != alloc.Nil {
			res.Reuse.Pointers = append(res.Reuse.Pointers, q)
			printVerbose("%s -> %d\n", step.desc, q)
		} else {
			printVerbose("%s\n", step.desc)
		}
	}
	res.Reuse.Allocated = r.Allocated()
	res.Reuse.Free = r.Free()

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Reuse walkthrough: %v\n", res.Reuse.Pointers)
	if quiet {
		return nil
	}
	return r.Dump(os.Stdout)
}
