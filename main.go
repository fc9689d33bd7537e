package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohanthewiz/logger"

	"itlalogin/commands"
)

func main() {
	logger.SetLogLevel("info")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.App().RunContext(ctx, os.Args); err != nil {
		logger.LogErr(err, "itla failed")
		stop()
		os.Exit(1)
	}
}
