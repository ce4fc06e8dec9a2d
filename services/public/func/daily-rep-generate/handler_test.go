package main

import (
	"context"
	"daily-rep/internal/auth"
	"daily-rep/internal/dailyrep"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	userIDs []string
	result  *dailyrep.Result
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, userID string) (*dailyrep.Result, error) {
	f.userIDs = append(f.userIDs, userID)
	return f.result, f.err
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func authorized(userID string) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/daily-rep/generate"}
	req.RequestContext.Authorizer = map[string]interface{}{"sub": userID}
	return req
}

func newTestHandler(t *testing.T, gen *fakeGenerator) *Handler {
	t.Helper()
	h, err := NewHandler(testLogger(), auth.NewAuthenticator(""), gen)
	require.NoError(t, err)
	return h
}

func TestGenerate(t *testing.T) {
	gen := &fakeGenerator{result: &dailyrep.Result{
		Rep:        &models.Rep{ID: "r1", Title: "Stair sprint"},
		Assignment: &models.DailyRepAssignment{ID: "a1", RepID: "r1", AssignedDate: "2024-01-05"},
		FocusArea:  "Fitness",
		Access:     dailyrep.AccessTrial,
	}}
	h := newTestHandler(t, gen)

	resp, err := h.EventHandler(context.Background(), authorized("u1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"u1"}, gen.userIDs)

	var body GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Stair sprint", body.Rep.Title)
	assert.Equal(t, "a1", body.Assignment.ID)
	assert.Equal(t, "Fitness", body.FocusArea)
}

func TestGenerateErrors(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{err: reperr.WeeklyLimit(2)})

	resp, err := h.EventHandler(context.Background(), authorized("u1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, resp.Body, `"requiresUpgrade":true`)
	assert.Contains(t, resp.Body, `"retryAfterDays":2`)

	gen := &fakeGenerator{}
	h = newTestHandler(t, gen)
	resp, err = h.EventHandler(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, gen.userIDs)
}
