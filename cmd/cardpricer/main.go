package main

import (
	"context"
	"log/slog"

	"cardpricer/cmd/cardpricer/commands"
	"cardpricer/lib/cliutil"
	"cardpricer/lib/telemetry"
)

func main() {
	ctx := cliutil.SignalContext()

	telemetry.InitSlog(true)
	t, err := telemetry.SetupFromEnv(ctx, "cardpricer")
	if err != nil {
		slog.Warn("telemetry disabled", "err", err.Error())
	} else {
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	commands.ExecuteContext(ctx)
}
