package httpapi

import (
	"daily-rep/internal/auth"
	"daily-rep/internal/reperr"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{reperr.New(reperr.KindProfileNotFound, "no profile"), http.StatusNotFound, "PROFILE_NOT_FOUND"},
		{reperr.New(reperr.KindAssignmentNotFound, "gone"), http.StatusNotFound, "ASSIGNMENT_NOT_FOUND"},
		{reperr.New(reperr.KindNoFocusAreas, "none"), http.StatusUnprocessableEntity, "NO_FOCUS_AREAS"},
		{reperr.New(reperr.KindNoEligibleReps, "none"), http.StatusUnprocessableEntity, "NO_ELIGIBLE_REPS"},
		{reperr.New(reperr.KindGenerationRateLimited, "slow"), http.StatusTooManyRequests, "GENERATION_RATE_LIMITED"},
		{reperr.New(reperr.KindGenerationPaymentRequired, "pay"), http.StatusPaymentRequired, "GENERATION_PAYMENT_REQUIRED"},
		{reperr.New(reperr.KindGenerationTimeout, "late"), http.StatusGatewayTimeout, "GENERATION_TIMEOUT"},
		{reperr.New(reperr.KindInvalidGenerationResponse, "junk"), http.StatusBadGateway, "INVALID_GENERATION_RESPONSE"},
		{reperr.New(reperr.KindInvalidInput, "bad"), http.StatusBadRequest, "INVALID_INPUT"},
		{fmt.Errorf("wrapped: %w", reperr.New(reperr.KindNoFocusAreas, "none")), http.StatusUnprocessableEntity, "NO_FOCUS_AREAS"},
		{auth.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{errors.New("dynamo exploded"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			resp := Error(testLogger(), tt.err)
			assert.Equal(t, tt.status, resp.StatusCode)
			var body ErrorBody
			require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
			assert.Equal(t, tt.kind, body.Error)
		})
	}
}

func TestWeeklyLimitBody(t *testing.T) {
	resp := Error(testLogger(), reperr.WeeklyLimit(4))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "WEEKLY_LIMIT_REACHED", body["error"])
	assert.Equal(t, float64(4), body["retryAfterDays"])
	assert.Equal(t, true, body["requiresUpgrade"])
}

func TestInternalErrorHidesDetails(t *testing.T) {
	resp := Error(testLogger(), errors.New("table arn:aws:dynamodb:secret"))
	assert.NotContains(t, resp.Body, "arn:aws")
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}
