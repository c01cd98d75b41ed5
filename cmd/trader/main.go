// Command trader runs the trading console.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"trading-console/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Replaced by the configured logger once config.toml is loaded.
	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	app := cli.NewApp(nil, bootstrap)
	err := app.RootCmd().ExecuteContext(ctx)
	if closeErr := app.Close(); closeErr != nil {
		app.Logger.Warn().Err(closeErr).Msg("Failed to close trade journal")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
