package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dokanload/internal/client/cli"
	"github.com/dmitrijs2005/dokanload/internal/client/config"
	"github.com/dmitrijs2005/dokanload/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	app.Run(ctx)
}
