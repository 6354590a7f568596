// Package embed converts batches of text into embedding vectors via a
// configured remote model, with one provider adapter per API format.
package embed

import (
	"context"
	"fmt"
)

// Provider API format constants. A format names the request/response
// shape of an embeddings endpoint, not a specific vendor: any
// OpenAI-compatible server is reachable through the "openai" format
// with a custom base URL.
const (
	FormatOpenAI = "openai"
	FormatOllama = "ollama"
	FormatGemini = "gemini"
)

// Model is one configured embedding model. It is supplied by the
// configuration collaborator, not owned by this package.
type Model struct {
	ID      string `toml:"id"`
	Format  string `toml:"format"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Name    string `toml:"model"`
}

// Source supplies the configured embedding models in a stable order.
// Stable ordering matters: when no preferred model is given, the first
// entry is used, and that choice must not vary between calls.
type Source interface {
	EmbeddingModels() []Model
}

// Adapter translates an embedding batch to and from one provider API
// format. Implementations issue exactly one network call per batch.
type Adapter interface {
	Embed(ctx context.Context, m Model, texts []string) ([][]float32, error)
}

// Client resolves a model from its Source and dispatches embedding
// batches through the adapter registered for the model's format.
type Client struct {
	source   Source
	adapters map[string]Adapter
}

// NewClient creates a Client with the built-in adapters registered.
func NewClient(source Source) *Client {
	c := &Client{
		source:   source,
		adapters: make(map[string]Adapter),
	}
	c.Register(FormatOpenAI, newOpenAIAdapter())
	c.Register(FormatOllama, newOllamaAdapter())
	c.Register(FormatGemini, newGeminiAdapter())
	return c
}

// Register installs an adapter for a provider API format, replacing any
// previous adapter for that format.
func (c *Client) Register(format string, a Adapter) {
	c.adapters[format] = a
}

// Embed converts texts into one vector per input, in input order.
//
// The model is resolved deterministically: preferredModelID if it names
// a configured model, otherwise the first configured model. The batch
// is sent in a single request. A response with a different number of
// vectors than inputs is a contract violation and fails with
// CountMismatchError, never truncated or padded.
func (c *Client) Embed(ctx context.Context, texts []string, preferredModelID string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	m, err := c.resolve(preferredModelID)
	if err != nil {
		return nil, err
	}

	adapter, ok := c.adapters[m.Format]
	if !ok {
		return nil, &AdapterMissingError{Format: m.Format}
	}

	vectors, err := adapter.Embed(ctx, m, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: model %q: %w", m.ID, err)
	}

	if len(vectors) != len(texts) {
		return nil, &CountMismatchError{Expected: len(texts), Actual: len(vectors)}
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("embed: model %q: vector %d is empty: %w", m.ID, i, ErrInvalidResponse)
		}
	}
	return vectors, nil
}

// ActiveModelID reports which configured model Embed would use for the
// given preference. Used to stamp the vector index with an advisory
// model identifier.
func (c *Client) ActiveModelID(preferredModelID string) (string, error) {
	m, err := c.resolve(preferredModelID)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (c *Client) resolve(preferredModelID string) (Model, error) {
	models := c.source.EmbeddingModels()
	if len(models) == 0 {
		return Model{}, ErrNoModel
	}
	if preferredModelID != "" {
		for _, m := range models {
			if m.ID == preferredModelID {
				return m, nil
			}
		}
	}
	return models[0], nil
}
