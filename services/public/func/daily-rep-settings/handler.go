package main

import (
	"context"
	"daily-rep/internal/auth"
	"daily-rep/internal/httpapi"
	"daily-rep/internal/models"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type SettingsService interface {
	UpdateSettings(ctx context.Context, userID string, settings models.ProfileSettings) (*models.UserProfile, error)
}

type Handler struct {
	logger  *logrus.Entry
	auth    *auth.Authenticator
	service SettingsService
}

func NewHandler(logger *logrus.Entry, authenticator *auth.Authenticator, service SettingsService) (*Handler, error) {
	if authenticator == nil || service == nil {
		return nil, errors.New("authenticator and service are required")
	}
	return &Handler{
		logger:  logger,
		auth:    authenticator,
		service: service,
	}, nil
}

type SettingsResponse struct {
	Success bool                `json:"success"`
	Profile *models.UserProfile `json:"profile"`
}

// EventHandler serves PUT /profile/settings.
func (h *Handler) EventHandler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return httpapi.JSON(http.StatusOK, map[string]string{}), nil
	}

	userID, err := h.auth.UserID(request)
	if err != nil {
		return httpapi.Error(h.logger, err), nil
	}
	logger := h.logger.WithField("userId", userID)

	var settings models.ProfileSettings
	if err := json.Unmarshal([]byte(request.Body), &settings); err != nil {
		logger.WithError(err).Info("Failed to parse request body")
		return httpapi.BadRequest("Invalid request body"), nil
	}

	profile, err := h.service.UpdateSettings(ctx, userID, settings)
	if err != nil {
		return httpapi.Error(logger, err), nil
	}

	logger.Info("Settings updated")
	return httpapi.JSON(http.StatusOK, SettingsResponse{Success: true, Profile: profile}), nil
}
