package main

import (
	"context"
	"daily-rep/internal/dailyrep"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type BatchRunner interface {
	AutoGenerate(ctx context.Context) (*dailyrep.BatchReport, error)
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

// EventHandler generates reps for users whose delivery hour is the current UTC hour. It runs
// hourly on a schedule.
func (h *Handler) EventHandler(ctx context.Context) (*dailyrep.BatchReport, error) {
	h.logger.Info("Starting auto-generation")

	report, err := h.service.AutoGenerate(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Auto-generation failed")
		return nil, fmt.Errorf("failed to auto-generate reps: %w", err)
	}

	fields := logrus.Fields{
		"date":          report.Date,
		"totalUsers":    report.TotalUsers,
		"assignedCount": report.AssignedCount,
	}
	if report.Hour != nil {
		fields["hour"] = *report.Hour
	}
	h.logger.WithFields(fields).Info("Auto-generation complete")
	return report, nil
}
