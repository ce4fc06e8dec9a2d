// Package httpapi renders API Gateway proxy responses for the HTTP functions.
package httpapi

import (
	"daily-rep/internal/auth"
	"daily-rep/internal/reperr"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type ErrorBody struct {
	Error           string `json:"error"`
	Message         string `json:"message,omitempty"`
	RetryAfterDays  int    `json:"retryAfterDays,omitempty"`
	RequiresUpgrade bool   `json:"requiresUpgrade,omitempty"`
	Retryable       bool   `json:"retryable,omitempty"`
}

var statusByKind = map[reperr.Kind]int{
	reperr.KindWeeklyLimitReached:        http.StatusForbidden,
	reperr.KindProfileNotFound:           http.StatusNotFound,
	reperr.KindAssignmentNotFound:        http.StatusNotFound,
	reperr.KindNoFocusAreas:              http.StatusUnprocessableEntity,
	reperr.KindNoEligibleReps:            http.StatusUnprocessableEntity,
	reperr.KindGenerationRateLimited:     http.StatusTooManyRequests,
	reperr.KindGenerationPaymentRequired: http.StatusPaymentRequired,
	reperr.KindGenerationTimeout:         http.StatusGatewayTimeout,
	reperr.KindInvalidGenerationResponse: http.StatusBadGateway,
	reperr.KindInvalidInput:              http.StatusBadRequest,
}

func JSON(statusCode int, v interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}
}

// Error maps err onto a status code and body. Unclassified errors become a 500 without details.
func Error(logger *logrus.Entry, err error) events.APIGatewayProxyResponse {
	if errors.Is(err, auth.ErrUnauthenticated) {
		logger.WithError(err).Info("Rejected unauthenticated request")
		return JSON(http.StatusUnauthorized, ErrorBody{Error: "UNAUTHENTICATED", Message: "Missing or invalid credentials"})
	}

	var rerr *reperr.Error
	if !errors.As(err, &rerr) {
		logger.WithError(err).Error("Request failed")
		return JSON(http.StatusInternalServerError, ErrorBody{Error: "INTERNAL", Message: "Internal server error"})
	}

	status, ok := statusByKind[rerr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	body := ErrorBody{
		Error:     string(rerr.Kind),
		Message:   rerr.Message,
		Retryable: reperr.Retryable(err),
	}
	if rerr.Kind == reperr.KindWeeklyLimitReached {
		body.RetryAfterDays = rerr.RetryAfterDays
		body.RequiresUpgrade = true
	}

	entry := logger.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request denied")
	}
	return JSON(status, body)
}

// BadRequest reports a malformed request body or path.
func BadRequest(message string) events.APIGatewayProxyResponse {
	return JSON(http.StatusBadRequest, ErrorBody{Error: string(reperr.KindInvalidInput), Message: message})
}
