package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	adapterlogger "backoffice-api/internal/adapters/logger"
	"backoffice-api/internal/app"
	"backoffice-api/internal/config"
	"backoffice-api/internal/platform/lambda"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		adapterlogger.New("error").Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New(cfg.LogLevel)
	if cfg.EphemeralSecret {
		logger.Error(ctx, "JWT_SECRET must be set for lambda deployments")
		os.Exit(1)
	}

	core, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to open database", "error", err)
		os.Exit(1)
	}
	if err := core.Seed(ctx); err != nil {
		logger.Error(ctx, "failed to seed catalog", "error", err)
		os.Exit(1)
	}
	e, err := core.Router(ctx, lambda.SourceIPExtractor())
	if err != nil {
		logger.Error(ctx, "failed to build router", "error", err)
		os.Exit(1)
	}
	awslambda.Start(lambda.NewLambdaHandler(e, logger))
}
