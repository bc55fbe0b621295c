// Command strangle backtests the SENSEX intraday short strangle.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sensex-strangle/internal/cli"
	"sensex-strangle/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{Logger: logging.NewLogger()}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Warn().Err(err).Msg("Closing run store")
		}
	}()

	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
