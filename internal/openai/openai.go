package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI is a provider for OpenAI
type OpenAI struct {
	apiKey string
	client *goopenai.Client
}

// New returns a new OpenAI provider. baseURL may be empty.
func New(apiKey, baseURL string) *OpenAI {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		apiKey: apiKey,
		client: goopenai.NewClientWithConfig(cfg),
	}
}

// Name returns the provider name
func (o *OpenAI) Name() string {
	return "openai"
}

// Generate sends the prompt, and the image when present, as one user message
func (o *OpenAI) Generate(ctx context.Context, config providers.Config) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	msg := goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser}
	if config.Image != nil {
		msg.MultiContent = []goopenai.ChatMessagePart{
			{
				Type: goopenai.ChatMessagePartTypeText,
				Text: config.Prompt,
			},
			{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    "data:" + config.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(config.Image.Data),
					Detail: goopenai.ImageURLDetailAuto,
				},
			},
		}
	} else {
		msg.Content = config.Prompt
	}

	req := goopenai.ChatCompletionRequest{
		Model:    config.Model,
		Messages: []goopenai.ChatCompletionMessage{msg},
	}
	if gen := config.Generation; gen != nil {
		req.Temperature = gen.Temperature
		req.TopP = gen.TopP
		req.MaxTokens = int(gen.MaxOutputTokens)
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", classify(err))
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &providers.StatusError{Provider: "openai", Code: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &providers.StatusError{Provider: "openai", Code: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}
