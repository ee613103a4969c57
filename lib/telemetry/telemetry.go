package telemetry

import (
	"log/slog"
	"os"
)

// Installs the default slog handler for the process. Debug level
// logging is enabled when verbose is true.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
