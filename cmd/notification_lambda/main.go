package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/wallet-payout-engine/pkg/bootstrap"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
)

var consumer *outbox.Consumer

func init() {
	ctx := context.TODO()
	app, err := bootstrap.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	dedup, err := app.Deduper(ctx)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	consumer = outbox.NewConsumer(app.Store, dedup, app.Logger.Named("outbox"))
}

func main() {
	// Failed records are reported individually so only they are retried.
	lambda.Start(consumer.HandleSQSEvent)
}
