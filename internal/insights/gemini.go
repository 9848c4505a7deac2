package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const (
	DefaultModel = "gemini-1.5-flash"

	defaultEndpoint  = "https://generativelanguage.googleapis.com/v1beta/"
	maxResponseBytes = 1 << 20
)

// GeminiClient calls generateContent on the Generative Language REST API.
// The API key is attached by the transport.
type GeminiClient struct {
	client   *http.Client
	endpoint string
	model    string
}

// NewGeminiClient builds a client authenticated with apiKey. Extra options are
// applied after the key, e.g. option.WithHTTPClient in tests.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w: no API key", ErrUnavailable)
	}
	if model == "" {
		model = DefaultModel
	}
	hc, _, err := htransport.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini http client: %w", err)
	}
	return &GeminiClient{client: hc, endpoint: defaultEndpoint, model: model}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimSuffix(c.endpoint, "/") + "/" + modelName(c.model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer googleapi.CloseBody(res)
	if err := googleapi.CheckResponse(res); err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return responseText(&out), nil
}

func modelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// responseText concatenates the text parts of the first candidate that has any.
func responseText(resp *generateResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		var b strings.Builder
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
