package main

import (
	"context"
	"daily-rep/internal/dailyrep"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatch struct {
	report *dailyrep.BatchReport
	err    error
}

func (f *fakeBatch) AutoGenerate(context.Context) (*dailyrep.BatchReport, error) {
	return f.report, f.err
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestEventHandler(t *testing.T) {
	hour := 9
	report := &dailyrep.BatchReport{
		Date:          "2024-01-05",
		Hour:          &hour,
		TotalUsers:    2,
		AssignedCount: 1,
		Results: []dailyrep.BatchResult{
			{UserID: "u1", Status: dailyrep.BatchSuccess, RepID: "r1"},
			{UserID: "u2", Status: dailyrep.BatchSkipped, Reason: "WEEKLY_LIMIT_REACHED"},
		},
	}
	h, err := NewHandler(testLogger(), &fakeBatch{report: report})
	require.NoError(t, err)

	got, err := h.EventHandler(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report, got)

	h, err = NewHandler(testLogger(), &fakeBatch{err: errors.New("scan failed")})
	require.NoError(t, err)
	_, err = h.EventHandler(context.Background())
	assert.ErrorContains(t, err, "scan failed")
}
