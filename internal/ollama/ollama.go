package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
)

// Ollama is a provider for Ollama
type Ollama struct {
	baseURL string
	client  *http.Client
}

// New returns a new Ollama provider
func New(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Ollama{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Name returns the provider name
func (o *Ollama) Name() string {
	return "ollama"
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// Generate sends the prompt to the Ollama generate endpoint
func (o *Ollama) Generate(ctx context.Context, config providers.Config) (string, error) {
	body := generateRequest{
		Model:  config.Model,
		Prompt: config.Prompt,
		Stream: false,
	}
	if config.Image != nil {
		body.Images = []string{base64.StdEncoding.EncodeToString(config.Image.Data)}
	}
	if gen := config.Generation; gen != nil {
		body.Options = map[string]any{}
		if gen.Temperature > 0 {
			body.Options["temperature"] = gen.Temperature
		}
		if gen.TopP > 0 {
			body.Options["top_p"] = gen.TopP
		}
		if gen.TopK > 0 {
			body.Options["top_k"] = gen.TopK
		}
		if gen.MaxOutputTokens > 0 {
			body.Options["num_predict"] = gen.MaxOutputTokens
		}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &providers.StatusError{Provider: "ollama", Code: resp.StatusCode, Message: string(respBody)}
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
