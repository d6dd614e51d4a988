package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/wallet-payout-engine/pkg/bootstrap"
	"github.com/chris/wallet-payout-engine/pkg/payouts"
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

// HandleRequest is triggered by an EventBridge Schedule and validates every
// pending payout.
func HandleRequest(ctx context.Context) (*payouts.BatchResult, error) {
	defer app.Logger.Sync()

	res, err := app.Jobs.ProcessPayouts(ctx)
	if err != nil {
		app.Logger.Error("payout processing failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}

func main() {
	lambda.Start(HandleRequest)
}
