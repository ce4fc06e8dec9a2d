package main

import (
	"daily-rep/internal/httpapi"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	logger  *logrus.Entry
	service string
}

func NewHandler(logger *logrus.Entry, service string) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) EventHandler(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.WithField("requestId", request.RequestContext.RequestID).Info("Processing health check")

	return httpapi.JSON(http.StatusOK, map[string]string{
		"service": h.service,
		"status":  "ok",
	}), nil
}
