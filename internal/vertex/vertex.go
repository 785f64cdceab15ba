// Package vertex talks to Gemini through the google.golang.org/genai SDK,
// which serves both the Gemini Developer API and Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	"google.golang.org/genai"
)

// Config selects the backend. A Project switches to Vertex AI, otherwise
// APIKey is used against the Gemini Developer API.
type Config struct {
	APIKey   string
	Project  string
	Location string
	// BaseURL overrides the service endpoint.
	BaseURL string
}

// Vertex is a provider backed by google.golang.org/genai
type Vertex struct {
	client *genai.Client
}

// New returns a new Vertex provider
func New(ctx context.Context, cfg Config) (*Vertex, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.Project != "":
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		if cc.Location == "" {
			cc.Location = "us-central1"
		}
	case cfg.APIKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT or GEMINI_API_KEY must be set")
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Vertex{client: client}, nil
}

// Name returns the provider name
func (v *Vertex) Name() string {
	return "vertex"
}

// Generate sends the prompt, and the image when present, to the model
func (v *Vertex) Generate(ctx context.Context, config providers.Config) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if config.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(config.Image.Data, config.Image.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(config.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := v.client.Models.GenerateContent(ctx, config.Model, contents, generateConfig(config.Generation))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", classify(err))
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty content returned from genai")
	}
	return text, nil
}

func generateConfig(gen *providers.Generation) *genai.GenerateContentConfig {
	if gen == nil {
		return nil
	}
	cfg := &genai.GenerateContentConfig{}
	if gen.Temperature > 0 {
		cfg.Temperature = genai.Ptr(gen.Temperature)
	}
	if gen.TopP > 0 {
		cfg.TopP = genai.Ptr(gen.TopP)
	}
	if gen.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(gen.TopK))
	}
	if gen.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = gen.MaxOutputTokens
	}
	return cfg
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &providers.StatusError{Provider: "vertex", Code: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &providers.StatusError{Provider: "vertex", Code: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return err
}
