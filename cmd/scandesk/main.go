package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	scandeskcmd "github.com/opencourts/scandesk/internal/cmd/scandesk"
	"github.com/opencourts/scandesk/internal/platform/config"
)

func main() {
	cfg, err := scandeskcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scandeskcmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
