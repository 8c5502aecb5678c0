package rag

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vytalcare/health-navigator/schema"
)

const defaultTopK = 3

// Retriever resolves a chat query against the knowledge corpus. Its Retrieve
// method matches the chat flow's retrieval hook signature.
type Retriever struct {
	embedder Embedder
	store    *VectorStore
	topK     int
}

func NewRetriever(embedder Embedder, store *VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store, topK: defaultTopK}
}

// Retrieve embeds the query and returns the most similar knowledge sections
// as ranked documents, highest similarity first.
func (r *Retriever) Retrieve(ctx context.Context, query string) (any, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "embed query: %v", err)
	}

	ranked := r.store.Search(ctx, embedding, r.topK)

	docs := make([]schema.RetrievedDocument, 0, len(ranked))
	for _, chunk := range ranked {
		docs = append(docs, schema.RetrievedDocument{
			Title:   chunkTitle(chunk),
			URL:     chunk.SourceURL,
			Summary: chunk.Body,
		})
	}
	return docs, nil
}

func chunkTitle(chunk Chunk) string {
	if len(chunk.SectionPath) > 0 {
		return strings.Join(chunk.SectionPath, " / ")
	}
	if chunk.Title != "" {
		return chunk.Title
	}
	return "Unknown"
}
