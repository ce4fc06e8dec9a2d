package main

import (
	"context"
	"daily-rep/internal/dailyrep"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type BatchRunner interface {
	AssignDaily(ctx context.Context) (*dailyrep.BatchReport, error)
}

type Handler struct {
	logger  *logrus.Entry
	service BatchRunner
}

func NewHandler(logger *logrus.Entry, service BatchRunner) (*Handler, error) {
	if service == nil {
		return nil, errors.New("service is required")
	}
	return &Handler{
		logger:  logger,
		service: service,
	}, nil
}

// EventHandler runs the daily assignment batch. It is triggered by a schedule, so the
// payload is ignored.
func (h *Handler) EventHandler(ctx context.Context) (*dailyrep.BatchReport, error) {
	h.logger.Info("Starting daily rep assignment")

	report, err := h.service.AssignDaily(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Daily rep assignment failed")
		return nil, fmt.Errorf("failed to assign daily reps: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"date":          report.Date,
		"totalUsers":    report.TotalUsers,
		"assignedCount": report.AssignedCount,
	}).Info("Daily rep assignment complete")
	return report, nil
}
