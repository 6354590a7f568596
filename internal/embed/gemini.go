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

const defaultGeminiBase = "https://generativelanguage.googleapis.com"

// geminiAdapter speaks the Gemini batchEmbedContents REST format.
type geminiAdapter struct {
	httpClient *http.Client
}

func newGeminiAdapter() *geminiAdapter {
	return &geminiAdapter{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type geminiEmbedPart struct {
	Text string `json:"text"`
}

type geminiEmbedContent struct {
	Parts []geminiEmbedPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model   string             `json:"model"`
	Content geminiEmbedContent `json:"content"`
}

type geminiBatchEmbedRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiBatchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func (a *geminiAdapter) Embed(ctx context.Context, m Model, texts []string) ([][]float32, error) {
	if m.APIKey == "" {
		return nil, &RequestBuildError{ModelID: m.ID, Reason: "missing API key"}
	}
	if m.Name == "" {
		return nil, &RequestBuildError{ModelID: m.ID, Reason: "missing model name"}
	}

	base := strings.TrimRight(m.BaseURL, "/")
	if base == "" {
		base = defaultGeminiBase
	}

	batch := geminiBatchEmbedRequest{
		Requests: make([]geminiEmbedRequest, len(texts)),
	}
	for i, text := range texts {
		batch.Requests[i] = geminiEmbedRequest{
			Model:   "models/" + m.Name,
			Content: geminiEmbedContent{Parts: []geminiEmbedPart{{Text: text}}},
		}
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embed marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:batchEmbedContents?key=%s", base, m.Name, m.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestBuildError{ModelID: m.ID, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var result geminiBatchEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("gemini embed decode: %w", ErrInvalidResponse)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}
