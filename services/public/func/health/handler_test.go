package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	h := NewHandler(logrus.NewEntry(l), SERVICENAME)

	resp, err := h.EventHandler(events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"service":"daily-rep-health","status":"ok"}`, resp.Body)
}
