package main

import (
	"context"
	"daily-rep/internal/notify"
	"daily-rep/internal/reperr"
	"errors"

	"github.com/sirupsen/logrus"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req notify.Request) (*notify.Result, error)
}

type Handler struct {
	logger     *logrus.Entry
	dispatcher Dispatcher
}

func NewHandler(logger *logrus.Entry, dispatcher Dispatcher) (*Handler, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	return &Handler{
		logger:     logger,
		dispatcher: dispatcher,
	}, nil
}

// HandleNotify is invoked asynchronously with {userId, repId, repTitle}. Failures are reported in
// the result rather than returned so the runtime does not redeliver a partially sent push.
func (h *Handler) HandleNotify(ctx context.Context, request notify.Request) (map[string]interface{}, error) {
	logger := h.logger.WithFields(logrus.Fields{
		"userId": request.UserID,
		"repId":  request.RepID,
	})
	logger.Info("Received notify request")

	result, err := h.dispatcher.Dispatch(ctx, request)
	if err != nil {
		kind := reperr.KindOf(err)
		if kind == "" {
			kind = "INTERNAL"
		}
		logger.WithError(err).Error("Failed to notify user")
		response := map[string]interface{}{
			"success": false,
			"error":   string(kind),
			"message": err.Error(),
		}
		if result != nil {
			response["data"] = result
		}
		return response, nil
	}

	if result.Skipped != "" {
		return map[string]interface{}{
			"success": false,
			"message": "Notification skipped",
			"reason":  result.Skipped,
		}, nil
	}

	return map[string]interface{}{
		"success": true,
		"message": "Notification sent successfully",
		"data":    result,
	}, nil
}
