package main

import (
	"context"
	"daily-rep/internal/auth"
	"daily-rep/internal/dailyrep"
	"daily-rep/internal/httpapi"
	"daily-rep/internal/models"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type ProgressService interface {
	TodaysRep(ctx context.Context, userID string) (*dailyrep.Result, error)
	Complete(ctx context.Context, userID, assignmentID string) (*models.DailyRepAssignment, error)
	Skip(ctx context.Context, userID, assignmentID string) (*models.DailyRepAssignment, error)
}

type Handler struct {
	logger  *logrus.Entry
	auth    *auth.Authenticator
	service ProgressService
}

func NewHandler(logger *logrus.Entry, authenticator *auth.Authenticator, service ProgressService) (*Handler, error) {
	if authenticator == nil || service == nil {
		return nil, errors.New("authenticator and service are required")
	}
	return &Handler{
		logger:  logger,
		auth:    authenticator,
		service: service,
	}, nil
}

type AssignmentResponse struct {
	Success    bool                       `json:"success"`
	Assignment *models.DailyRepAssignment `json:"assignment"`
}

// EventHandler serves GET /daily-rep/today, POST /daily-rep/{assignmentId}/complete and
// POST /daily-rep/{assignmentId}/skip.
func (h *Handler) EventHandler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return httpapi.JSON(http.StatusOK, map[string]string{}), nil
	}

	userID, err := h.auth.UserID(request)
	if err != nil {
		return httpapi.Error(h.logger, err), nil
	}
	logger := h.logger.WithFields(logrus.Fields{
		"userId": userID,
		"method": request.HTTPMethod,
		"path":   request.Path,
	})

	if request.HTTPMethod == http.MethodGet {
		result, err := h.service.TodaysRep(ctx, userID)
		if err != nil {
			return httpapi.Error(logger, err), nil
		}
		return httpapi.JSON(http.StatusOK, result), nil
	}

	if request.HTTPMethod != http.MethodPost {
		return httpapi.JSON(http.StatusMethodNotAllowed, httpapi.ErrorBody{Error: "METHOD_NOT_ALLOWED"}), nil
	}

	assignmentID := request.PathParameters["assignmentId"]
	if assignmentID == "" {
		return httpapi.BadRequest("assignmentId is required"), nil
	}

	var assignment *models.DailyRepAssignment
	switch {
	case strings.HasSuffix(request.Path, "/complete"):
		assignment, err = h.service.Complete(ctx, userID, assignmentID)
	case strings.HasSuffix(request.Path, "/skip"):
		assignment, err = h.service.Skip(ctx, userID, assignmentID)
	default:
		return httpapi.JSON(http.StatusNotFound, httpapi.ErrorBody{Error: "NOT_FOUND"}), nil
	}
	if err != nil {
		return httpapi.Error(logger, err), nil
	}

	logger.WithField("status", assignment.Status).Info("Assignment updated")
	return httpapi.JSON(http.StatusOK, AssignmentResponse{Success: true, Assignment: assignment}), nil
}
