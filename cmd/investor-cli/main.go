package main

import (
	"context"
	"log/slog"
	"time"

	"investor-parser/cmd/investor-cli/commands"
	"investor-parser/lib/serviceutil"
	"investor-parser/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "investor-cli")
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := telemetry.Shutdown(shutdownCtx)
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}
