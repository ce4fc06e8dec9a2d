package main

import (
	"daily-rep/internal/utils"

	"github.com/aws/aws-lambda-go/lambda"
)

const SERVICENAME = "daily-rep-health"

func main() {
	handler := NewHandler(utils.NewLogger(SERVICENAME), SERVICENAME)
	lambda.Start(handler.EventHandler)
}
