package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// openaiAdapter speaks the OpenAI embeddings API format. It covers both
// api.openai.com and any OpenAI-compatible server via Model.BaseURL.
type openaiAdapter struct {
	httpClient *http.Client
}

func newOpenAIAdapter() *openaiAdapter {
	// The embedding call is the dominant latency source; the timeout
	// lives here in the transport, not in the Embed contract.
	return &openaiAdapter{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *openaiAdapter) Embed(ctx context.Context, m Model, texts []string) ([][]float32, error) {
	if m.APIKey == "" {
		return nil, &RequestBuildError{ModelID: m.ID, Reason: "missing API key"}
	}
	if m.Name == "" {
		return nil, &RequestBuildError{ModelID: m.ID, Reason: "missing model name"}
	}

	cfg := openai.DefaultConfig(m.APIKey)
	if m.BaseURL != "" {
		cfg.BaseURL = m.BaseURL
	}
	cfg.HTTPClient = a.httpClient
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(m.Name),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Code: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, &StatusError{Code: reqErr.HTTPStatusCode, Body: reqErr.Error()}
		}
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	// Place each vector by the Index the API reports rather than by
	// slice position; the server may return the batch out of order.
	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("openai embed: bad datum index %d: %w", d.Index, ErrInvalidResponse)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
