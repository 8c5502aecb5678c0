package rag

import (
	"context"
	"time"

	"github.com/ollama/ollama/api"
)

const EmbeddingModel = "nomic-embed-text"
const EmbeddingDimensions = 768

// Embedder turns text into a vector. Satisfied by OllamaEmbedder in
// production and by fakes in tests.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder embeds text through a local Ollama server.
type OllamaEmbedder struct {
	client *api.Client
}

func NewOllamaEmbedder(client *api.Client) *OllamaEmbedder {
	return &OllamaEmbedder{client: client}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &api.EmbeddingRequest{
		Model:     EmbeddingModel,
		Prompt:    text,
		KeepAlive: &api.Duration{Duration: 60 * time.Minute}, // keep model loaded between calls
	}
	resp, err := e.client.Embeddings(ctx, req)
	if err != nil {
		return nil, err
	}

	emb64 := resp.Embedding
	emb32 := make([]float32, len(emb64))
	for i, v := range emb64 {
		emb32[i] = float32(v)
	}
	return emb32, nil
}
