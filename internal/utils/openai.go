package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type OpenaiClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient talks to any OpenAI-compatible chat completions endpoint.
func NewOpenAIClient(apiKey string, baseUrl string, model string) (TextGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	config := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		config.BaseURL = baseUrl
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenaiClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (c *OpenaiClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: req.SystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.UserPrompt,
				},
			},
			Temperature: req.Temperature,
		},
	)
	if err != nil {
		return "", classifyGenerationError(ctx, openaiStatusCode(err), fmt.Errorf("OpenAI API error: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func openaiStatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
