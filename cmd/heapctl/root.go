package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/chunk"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	arenaSize int
	capacity  int
	logLevel  string
	logJSON   bool
	logDir    string
)

// closeLog releases the log file opened by initLogging, if any.
var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect a best-fit arena allocator",
	Long: `heapctl runs workloads against a fixed-size arena allocator and reports
the resulting chunk layout. It can replay allocation traces, record seeded
random workloads, and stress the allocator from concurrent goroutines.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		IntVar(&arenaSize, "arena-size", alloc.DefaultArenaSize, "Arena size in bytes")
	rootCmd.PersistentFlags().
		IntVar(&capacity, "capacity", chunk.DefaultCapacity, "Maximum chunks per registry")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Enable allocator logging at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write log records as JSON")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write logs to a dated file in this directory")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logEnabled reports whether the logging flags asked for log output.
func logEnabled() bool {
	return logLevel != "" || logDir != ""
}

func initLogging() error {
	level := logger.ParseLevel(logLevel)
	if logLevel == "" && verbose {
		level = logger.ParseLevel("debug")
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: logEnabled(),
		Level:   level,
		JSON:    logJSON,
		LogDir:  logDir,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	closeLog = closeFn
	return nil
}

// config builds the allocator configuration from the global flags.
func config() alloc.Config {
	return alloc.Config{ArenaSize: arenaSize, RegistryCapacity: capacity}
}

// newAllocator creates an allocator from the global flags. Allocator logs go
// to the heapctl logger only when logging was requested, so HEAP_LOG_ALLOC
// still works on its own.
func newAllocator() (*alloc.Allocator, error) {
	var opts []alloc.Option
	if logEnabled() {
		opts = append(opts, alloc.WithLogger(logger.L.With("component", "alloc")))
	}
	a, err := alloc.New(config(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create allocator: %w", err)
	}
	return a, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
