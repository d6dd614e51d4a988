package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/wallet-payout-engine/pkg/bootstrap"
	"github.com/chris/wallet-payout-engine/pkg/reconcile"
	"go.uber.org/zap"
)

var app *bootstrap.App

func init() {
	var err error
	app, err = bootstrap.Init(context.TODO())
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
}

// HandleRequest is triggered by an EventBridge Schedule. It releases stale
// payout claims, resumes stuck referrals, retries pending refunds and repairs
// campaign counters.
func HandleRequest(ctx context.Context) (*reconcile.Report, error) {
	defer app.Logger.Sync()

	report, err := app.Jobs.Reconcile(ctx)
	if err != nil {
		app.Logger.Error("reconciliation failed", zap.Error(err))
		return nil, err
	}
	if len(report.Errors) > 0 {
		app.Logger.Warn("reconciliation finished with errors", zap.Strings("errors", report.Errors))
	}
	return report, nil
}

func main() {
	lambda.Start(HandleRequest)
}
