package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vytalcare/health-navigator/schema"
)

func TestRetriever_Retrieve(t *testing.T) {
	store := NewVectorStore()
	store.Store([]Chunk{
		{ID: "a", SectionPath: []string{"Fever"}, SourceURL: "file://fever.md", Body: "Fever facts.", Embedding: []float32{1, 0, 0}},
		{ID: "b", SectionPath: []string{"Fever", "When to worry"}, SourceURL: "file://fever.md", Body: "Above 39.5C.", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "c", SectionPath: []string{"Hydration"}, SourceURL: "file://water.md", Body: "Drink water.", Embedding: []float32{0, 1, 0}},
	})

	embedder := &staticEmbedder{vector: []float32{1, 0, 0}}
	retriever := NewRetriever(embedder, store)

	result, err := retriever.Retrieve(context.Background(), "fever question")
	require.NoError(t, err)

	docs, ok := result.([]schema.RetrievedDocument)
	require.True(t, ok)
	require.Len(t, docs, 3)

	assert.Equal(t, "Fever", docs[0].Title)
	assert.Equal(t, "file://fever.md", docs[0].URL)
	assert.Equal(t, "Fever facts.", docs[0].Summary)
	assert.Equal(t, "Fever / When to worry", docs[1].Title)
}

func TestRetriever_EmbedFailure(t *testing.T) {
	retriever := NewRetriever(&fakeEmbedder{err: fmt.Errorf("ollama down")}, NewVectorStore())

	_, err := retriever.Retrieve(context.Background(), "fever")

	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

type staticEmbedder struct {
	vector []float32
}

func (s *staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, nil
}
