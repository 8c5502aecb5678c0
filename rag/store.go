package rag

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/SaiNageswarS/go-collection-boot/linq"
)

// Chunk is one embedded section of a knowledge document.
type Chunk struct {
	ID          string
	Title       string
	SourceURL   string
	SectionPath []string
	Body        string
	Embedding   []float32
}

// VectorStore is an in-memory cosine-similarity index over knowledge chunks.
// The corpus is small and loaded at startup; there is no eviction.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string]Chunk
}

func NewVectorStore() *VectorStore {
	return &VectorStore{chunks: make(map[string]Chunk)}
}

func (s *VectorStore) Store(chunks []Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
}

func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search returns the topK chunks most similar to the query embedding,
// highest score first. A min-heap keeps memory bounded by topK.
func (s *VectorStore) Search(ctx context.Context, embedding []float32, topK int) []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type pair struct {
		chunk Chunk
		score float64
	}

	h := ds.NewMinHeap(func(a, b pair) bool { return a.score < b.score })
	for _, chunk := range s.chunks {
		h.Push(pair{chunk, cosineSimilarity(embedding, chunk.Embedding)})
		if h.Len() > topK {
			h.Pop()
		}
	}

	ranked, _ := linq.Pipe2(
		linq.FromSlice(ctx, h.ToSortedSlice()),
		linq.Select(func(p pair) Chunk { return p.chunk }),
		linq.ToSlice[Chunk](),
	)
	slices.Reverse(ranked) // highest score first
	return ranked
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
