package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/chris/wallet-payout-engine/pkg/bootstrap"
	"github.com/chris/wallet-payout-engine/pkg/scheduler"
	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run reconcile, reward distribution and payout processing once and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer app.Close()

	if *once {
		if err := app.Jobs.RunAll(ctx); err != nil {
			app.Logger.Error("run failed", zap.Error(err))
			app.Close()
			log.Fatal(err)
		}
		return
	}

	s, err := scheduler.New(app.Jobs, app.Config.Scheduler, app.Logger.Named("scheduler"))
	if err != nil {
		app.Logger.Fatal("failed to build scheduler", zap.Error(err))
	}
	app.Logger.Info("scheduler started", zap.Int("jobs", s.Entries()))
	s.Run(ctx)
	app.Logger.Info("scheduler stopped")
}
