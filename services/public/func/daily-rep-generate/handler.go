package main

import (
	"context"
	"daily-rep/internal/auth"
	"daily-rep/internal/dailyrep"
	"daily-rep/internal/httpapi"
	"daily-rep/internal/models"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type RepGenerator interface {
	Generate(ctx context.Context, userID string) (*dailyrep.Result, error)
}

type Handler struct {
	logger  *logrus.Entry
	auth    *auth.Authenticator
	service RepGenerator
}

func NewHandler(logger *logrus.Entry, authenticator *auth.Authenticator, service RepGenerator) (*Handler, error) {
	if authenticator == nil || service == nil {
		return nil, errors.New("authenticator and service are required")
	}
	return &Handler{
		logger:  logger,
		auth:    authenticator,
		service: service,
	}, nil
}

type GenerateResponse struct {
	Success    bool                       `json:"success"`
	Rep        *models.Rep                `json:"rep"`
	Assignment *models.DailyRepAssignment `json:"assignment"`
	FocusArea  string                     `json:"focusArea,omitempty"`
	Access     dailyrep.Access            `json:"access"`
}

// EventHandler serves POST /daily-rep/generate.
func (h *Handler) EventHandler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return httpapi.JSON(http.StatusOK, map[string]string{}), nil
	}

	userID, err := h.auth.UserID(request)
	if err != nil {
		return httpapi.Error(h.logger, err), nil
	}
	logger := h.logger.WithField("userId", userID)
	logger.Info("Received generate request")

	result, err := h.service.Generate(ctx, userID)
	if err != nil {
		return httpapi.Error(logger, err), nil
	}

	return httpapi.JSON(http.StatusOK, GenerateResponse{
		Success:    true,
		Rep:        result.Rep,
		Assignment: result.Assignment,
		FocusArea:  result.FocusArea,
		Access:     result.Access,
	}), nil
}
