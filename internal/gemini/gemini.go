package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	client *genai.Client
}

// New returns a new Gemini provider
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	return &Gemini{client: client}, nil
}

// Name returns the provider name
func (g *Gemini) Name() string {
	return "gemini"
}

// Close releases the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate sends the prompt, and the image when present, to Gemini
func (g *Gemini) Generate(ctx context.Context, config providers.Config) (string, error) {
	model := g.client.GenerativeModel(config.Model)
	if gen := config.Generation; gen != nil {
		if gen.Temperature > 0 {
			model.SetTemperature(gen.Temperature)
		}
		if gen.TopP > 0 {
			model.SetTopP(gen.TopP)
		}
		if gen.TopK > 0 {
			model.SetTopK(gen.TopK)
		}
		if gen.MaxOutputTokens > 0 {
			model.SetMaxOutputTokens(gen.MaxOutputTokens)
		}
	}

	parts := make([]genai.Part, 0, 2)
	if config.Image != nil {
		parts = append(parts, genai.Blob{MIMEType: config.Image.MIMEType, Data: config.Image.Data})
	}
	parts = append(parts, genai.Text(config.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", classify(err))
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return sb.String(), nil
}

// classify turns SDK errors into a providers.StatusError when a status is known.
func classify(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &providers.StatusError{Provider: "gemini", Code: gErr.Code, Message: gErr.Message, Err: err}
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPCode()
		if code <= 0 && apiErr.GRPCStatus() != nil {
			code = httpCodeFromGRPC(apiErr.GRPCStatus().Code())
		}
		if code > 0 {
			return &providers.StatusError{Provider: "gemini", Code: code, Message: apiErr.Reason(), Err: err}
		}
	}

	return err
}

func httpCodeFromGRPC(c codes.Code) int {
	switch c {
	case codes.ResourceExhausted:
		return 429
	case codes.NotFound:
		return 404
	case codes.InvalidArgument:
		return 400
	case codes.PermissionDenied:
		return 403
	case codes.Unavailable:
		return 503
	default:
		return 0
	}
}
