// Command reviewsense-lambda is the AWS Lambda entry point: it scores review
// objects named in S3 event notifications.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/tsawler/reviewsense/internal/app"
	"github.com/tsawler/reviewsense/internal/config"
	"github.com/tsawler/reviewsense/internal/handler"
	"github.com/tsawler/reviewsense/internal/logging"
)

func main() {
	path := os.Getenv("REVIEWSENSE_CONFIG")
	if path == "" {
		path = "reviewsense.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("unable to build logger: %v", err)
	}
	defer logger.Sync()

	engine, closeSource, err := app.NewEngine(cfg, logger)
	if err != nil {
		logger.Fatal("unable to open corpus", zap.Error(err))
	}
	defer closeSource()

	proc, err := app.NewS3Processor(context.Background(), cfg, engine, logger)
	if err != nil {
		logger.Fatal("unable to create S3 client", zap.Error(err))
	}

	lambda.Start(newHandler(proc, logger))
}

// newHandler adapts a Processor to the Lambda S3 event signature.
func newHandler(proc *handler.Processor, logger *zap.Logger) func(context.Context, events.S3Event) (string, error) {
	return func(ctx context.Context, event events.S3Event) (string, error) {
		logger.Info("received event", zap.Int("records", len(event.Records)))

		outputs, err := proc.HandleEvent(ctx, event)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Ok: %d processed", len(outputs)), nil
	}
}
