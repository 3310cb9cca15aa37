package alloc

import (
	"io"
	"log/slog"
	"os"
)

// logEnv enables stderr debug logging when no logger is supplied.
const logEnv = "HEAP_LOG_ALLOC"

func defaultLogger() *slog.Logger {
	if os.Getenv(logEnv) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
