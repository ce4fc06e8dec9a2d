package main

import (
	"context"
	"daily-rep/internal/app"
	"daily-rep/internal/auth"
	"daily-rep/internal/config"
	"daily-rep/internal/utils"

	"github.com/aws/aws-lambda-go/lambda"
)

const SERVICENAME = "daily-rep-settings"

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

	service, err := a.Service(ctx, false)
	if err != nil {
		logger.WithError(err).Error("Failed to create service")
		panic(err)
	}

	handler, err := NewHandler(logger, auth.NewAuthenticator(cfg.JWTSecret), service)
	if err != nil {
		logger.WithError(err).Error("Failed to create handler")
		panic(err)
	}

	lambda.Start(handler.EventHandler)
}
