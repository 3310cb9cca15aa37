package main

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// numbers formats counts with thousands separators.
var numbers = message.NewPrinter(language.English)

func printStats(s alloc.Stats) {
	if quiet {
		return
	}
	used := s.ArenaSize - s.FreeBytes

	printInfo("Arena:\n")
	printInfo("  Size: %s (%s bytes)\n", formatBytes(s.ArenaSize), formatNumber(s.ArenaSize))
	printInfo("  In use: %s (%.1f%%)\n", formatBytes(used), percent(used, s.ArenaSize))
	printInfo("  Peak in use: %s\n\n", formatBytes(s.PeakBytesInUse))

	printInfo("Chunks:\n")
	printInfo("  Allocated: %s\n", formatNumber(s.AllocatedChunks))
	printInfo("  Free: %s (%s total, largest %s)\n\n",
		formatNumber(s.FreeChunks), formatBytes(s.FreeBytes), formatBytes(s.LargestFree))

	printInfo("Operations:\n")
	printInfo("  Allocate calls: %s (%s out of space)\n", formatNumber(s.AllocCalls), formatNumber(s.FailedAllocs))
	printInfo("  Release calls: %s\n", formatNumber(s.ReleaseCalls))
	printInfo("  Splits: %s\n", formatNumber(s.SplitCount))
	printInfo("  Merges: %s\n", formatNumber(s.CoalesceMerges))
	if s.FreeChunks > 1 {
		printInfo("  Fragmentation: %.1f%% of free bytes outside the largest chunk\n",
			percent(s.FreeBytes-s.LargestFree, s.FreeBytes))
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

func formatBytes(bytes int) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatNumber(n int) string {
	return numbers.Sprintf("%d", n)
}
