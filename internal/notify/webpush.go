package notify

import (
	"context"
	"daily-rep/internal/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
)

const (
	webPushIcon = "/favicon.ico"
	webPushTTL  = 24 * 60 * 60
)

type VAPIDConfig struct {
	Subject    string
	PublicKey  string
	PrivateKey string
}

type webPushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon"`
	Badge string            `json:"badge"`
	Data  map[string]string `json:"data,omitempty"`
}

type WebPushTransport struct {
	vapid      VAPIDConfig
	httpClient *http.Client
}

// NewWebPushTransport sends with http.DefaultClient when httpClient is nil.
func NewWebPushTransport(vapid VAPIDConfig, httpClient *http.Client) *WebPushTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	// webpush-go adds the mailto: scheme itself
	vapid.Subject = strings.TrimPrefix(vapid.Subject, "mailto:")
	return &WebPushTransport{
		vapid:      vapid,
		httpClient: httpClient,
	}
}

func (t *WebPushTransport) Name() string { return "webpush" }

func (t *WebPushTransport) Send(ctx context.Context, profile *models.UserProfile, msg Message) (bool, error) {
	sub := profile.WebPushSubscription
	if sub == nil || sub.Endpoint == "" {
		return false, nil
	}

	payload, err := json.Marshal(webPushPayload{
		Title: msg.Title,
		Body:  msg.Body,
		Icon:  webPushIcon,
		Badge: webPushIcon,
		Data:  msg.Data,
	})
	if err != nil {
		return true, fmt.Errorf("failed to marshal web push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Keys.Auth,
			P256dh: sub.Keys.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      t.httpClient,
		Subscriber:      t.vapid.Subject,
		VAPIDPublicKey:  t.vapid.PublicKey,
		VAPIDPrivateKey: t.vapid.PrivateKey,
		TTL:             webPushTTL,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return true, fmt.Errorf("failed to send web push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			return true, fmt.Errorf("web push subscription expired (%d)", resp.StatusCode)
		}
		return true, fmt.Errorf("web push rejected with status %d: %s", resp.StatusCode, body)
	}
	return true, nil
}
