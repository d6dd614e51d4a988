package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/wallet-payout-engine/pkg/bootstrap"
	"github.com/chris/wallet-payout-engine/pkg/campaigns"
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

// HandleRequest is triggered by an EventBridge Schedule and rewards every
// completed campaign referral.
func HandleRequest(ctx context.Context) (*campaigns.DistributionResult, error) {
	defer app.Logger.Sync()

	res, err := app.Jobs.DistributeRewards(ctx)
	if err != nil {
		app.Logger.Error("reward distribution failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}

func main() {
	lambda.Start(HandleRequest)
}
