package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaHost = "http://localhost:11434"

// ollamaAdapter speaks the Ollama /api/embed format.
type ollamaAdapter struct {
	httpClient *http.Client
}

func newOllamaAdapter() *ollamaAdapter {
	return &ollamaAdapter{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ollamaEmbedRequest is the request body for the Ollama embed API.
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse is the response from the Ollama embed API.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (a *ollamaAdapter) Embed(ctx context.Context, m Model, texts []string) ([][]float32, error) {
	if m.Name == "" {
		return nil, &RequestBuildError{ModelID: m.ID, Reason: "missing model name"}
	}

	host := strings.TrimRight(m.BaseURL, "/")
	if host == "" {
		host = defaultOllamaHost
	}

	body, err := json.Marshal(ollamaEmbedRequest{
		Model: m.Name,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, &RequestBuildError{ModelID: m.ID, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", ErrInvalidResponse)
	}
	return result.Embeddings, nil
}
