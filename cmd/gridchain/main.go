// Command gridchain runs one cache command through the full stage pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/gridchain/internal/app"
	"github.com/unkn0wn-root/gridchain/internal/config"
)

func main() {
	cfg, err := app.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, app.ErrUsage) {
			flag.Usage()
		}
		stop()
		config.Exitf("Error: %v", err)
	}
}
