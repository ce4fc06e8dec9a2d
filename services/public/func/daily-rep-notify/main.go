package main

import (
	"context"
	"daily-rep/internal/app"
	"daily-rep/internal/config"
	"daily-rep/internal/utils"

	"github.com/aws/aws-lambda-go/lambda"
)

const SERVICENAME = "daily-rep-notify"

func main() {
	logger := utils.NewLogger(SERVICENAME)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Error("Failed to load config")
		panic(err)
	}

	a, err := app.New(ctx, logger, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize clients")
		panic(err)
	}

	dispatcher, err := a.Dispatcher(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to create dispatcher")
		panic(err)
	}

	handler, err := NewHandler(logger, dispatcher)
	if err != nil {
		logger.WithError(err).Error("Failed to create handler")
		panic(err)
	}

	lambda.Start(handler.HandleNotify)
}
