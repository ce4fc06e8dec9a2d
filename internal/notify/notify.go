// Package notify delivers "new rep" notifications to a user's push destinations.
package notify

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"daily-rep/internal/utils"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	NewRepTitle   = "🎯 Your Daily Rep is Ready!"
	NewRepType    = "new_rep"
	maxTitleRunes = 100
	maxBodyRunes  = 500
)

// Request is the payload the notify function is invoked with.
type Request struct {
	UserID   string `json:"userId"`
	RepID    string `json:"repId"`
	RepTitle string `json:"repTitle"`
}

func (r Request) Validate() error {
	if r.UserID == "" || r.RepID == "" || r.RepTitle == "" {
		return reperr.New(reperr.KindInvalidInput, "missing required fields")
	}
	if _, err := uuid.Parse(r.UserID); err != nil {
		return reperr.Wrap(reperr.KindInvalidInput, err, "invalid userId format")
	}
	if _, err := uuid.Parse(r.RepID); err != nil {
		return reperr.Wrap(reperr.KindInvalidInput, err, "invalid repId format")
	}
	if utf8.RuneCountInString(r.RepTitle) > maxBodyRunes {
		return reperr.New(reperr.KindInvalidInput, "repTitle longer than %d characters", maxBodyRunes)
	}
	return nil
}

// Message is what every transport renders.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (m Message) Validate() error {
	if m.Title == "" || m.Body == "" {
		return reperr.New(reperr.KindInvalidInput, "title and body are required")
	}
	if utf8.RuneCountInString(m.Title) > maxTitleRunes || utf8.RuneCountInString(m.Body) > maxBodyRunes {
		return reperr.New(reperr.KindInvalidInput, "invalid title or body length")
	}
	return nil
}

// NewRepMessage builds the notification announcing a new rep.
func NewRepMessage(repID, repTitle string) Message {
	return Message{
		Title: NewRepTitle,
		Body:  repTitle,
		Data: map[string]string{
			"type":  NewRepType,
			"repId": repID,
		},
	}
}

// Transport sends a message to one kind of destination. Send reports false without error when
// the profile has no destination of that kind.
type Transport interface {
	Name() string
	Send(ctx context.Context, profile *models.UserProfile, msg Message) (bool, error)
}

type Result struct {
	Delivered []string          `json:"delivered"`
	Failed    map[string]string `json:"failed,omitempty"`
	Skipped   string            `json:"skipped,omitempty"`
}

// Dispatcher sends to every transport a user is reachable on.
type Dispatcher struct {
	logger     *logrus.Entry
	profiles   utils.ProfileRepository
	transports []Transport
}

func NewDispatcher(logger *logrus.Entry, profiles utils.ProfileRepository, transports ...Transport) *Dispatcher {
	return &Dispatcher{
		logger:     logger,
		profiles:   profiles,
		transports: transports,
	}
}

// Dispatch delivers the new rep notification. It fails only when the request is invalid, the
// profile is missing, or every destination the user has failed.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	msg := NewRepMessage(req.RepID, req.RepTitle)
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	logger := d.logger.WithFields(logrus.Fields{
		"userId": req.UserID,
		"repId":  req.RepID,
	})

	profile, err := d.profiles.GetProfile(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, reperr.New(reperr.KindProfileNotFound, "no profile for user %s", req.UserID)
	}

	result := &Result{Delivered: []string{}}
	if !profile.PushEnabled {
		logger.Info("Push notifications not enabled for user")
		result.Skipped = "push_disabled"
		return result, nil
	}

	var errs []error
	for _, t := range d.transports {
		sent, err := t.Send(ctx, profile, msg)
		if err != nil {
			logger.WithError(err).WithField("transport", t.Name()).Warn("Failed to send notification")
			if result.Failed == nil {
				result.Failed = map[string]string{}
			}
			result.Failed[t.Name()] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			continue
		}
		if sent {
			result.Delivered = append(result.Delivered, t.Name())
		}
	}

	if len(result.Delivered) == 0 && len(errs) > 0 {
		return result, reperr.Wrap(reperr.KindNotificationFailed, errors.Join(errs...), "no destination accepted the notification")
	}
	if len(result.Delivered) == 0 {
		result.Skipped = "no_destination"
	}

	logger.WithField("delivered", result.Delivered).Info("Notification dispatched")
	return result, nil
}
