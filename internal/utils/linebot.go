package utils

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

type LinebotAPI interface {
	PushMessage(to string, message string) error
}

type LineBotClient struct {
	client *linebot.Client
	sender string
}

func NewLineBotClient(channelSecret string, channelToken string, senderName string, options ...linebot.ClientOption) (LinebotAPI, error) {
	client, err := linebot.New(channelSecret, channelToken, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create line bot client: %w", err)
	}
	return &LineBotClient{
		client: client,
		sender: senderName,
	}, nil
}

func (c *LineBotClient) PushMessage(to string, message string) error {
	var msg linebot.SendingMessage = linebot.NewTextMessage(message)
	if c.sender != "" {
		msg = msg.WithSender(&linebot.Sender{Name: c.sender})
	}
	_, err := c.client.PushMessage(to, msg).Do()
	return err
}
