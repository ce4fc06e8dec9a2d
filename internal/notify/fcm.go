package notify

import (
	"context"
	"daily-rep/internal/models"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// FCMSender is the subset of the Firebase messaging client used for mobile pushes.
type FCMSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMTransport struct {
	client FCMSender
}

// NewFCMClient builds a messaging client from application default credentials.
func NewFCMClient(ctx context.Context, projectID string) (FCMSender, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}
	return client, nil
}

func NewFCMTransport(client FCMSender) *FCMTransport {
	return &FCMTransport{client: client}
}

func (t *FCMTransport) Name() string { return "fcm" }

func (t *FCMTransport) Send(ctx context.Context, profile *models.UserProfile, msg Message) (bool, error) {
	if profile.PushToken == "" {
		return false, nil
	}

	_, err := t.client.Send(ctx, &messaging.Message{
		Token: profile.PushToken,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	})
	if err != nil {
		if messaging.IsUnregistered(err) {
			return true, fmt.Errorf("push token is no longer registered: %w", err)
		}
		return true, fmt.Errorf("failed to send fcm message: %w", err)
	}
	return true, nil
}
