package notify

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/utils"
	"fmt"
)

// LineTransport pushes a text message to users who linked a LINE account.
type LineTransport struct {
	client utils.LinebotAPI
}

func NewLineTransport(client utils.LinebotAPI) *LineTransport {
	return &LineTransport{client: client}
}

func (t *LineTransport) Name() string { return "line" }

func (t *LineTransport) Send(_ context.Context, profile *models.UserProfile, msg Message) (bool, error) {
	if profile.LineUserID == "" {
		return false, nil
	}
	if err := t.client.PushMessage(profile.LineUserID, msg.Title+"\n"+msg.Body); err != nil {
		return true, fmt.Errorf("failed to push line message: %w", err)
	}
	return true, nil
}
