// Package embeddings provides the text-embedding boundary used by the
// novelty index (C4). The real embedding source is the external inference
// endpoint (spec §6); when it is unavailable this package falls back to a
// deterministic, dependency-free vectorizer so the rest of the core can
// still run and be tested without a live model.
package embeddings

import (
	"context"
	"hash/fnv"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed generates an embedding for a single piece of text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int

	// Provider returns the provider name, e.g. "inference-endpoint" or
	// "ngram-hash-fallback".
	Provider() string
}

// NgramHashEmbedder is the deterministic fallback described in spec §4.4: it
// derives a length-normalized vector from character trigram hashes, with no
// external calls and no randomness, so near-duplicate prompts land close
// together in cosine space.
type NgramHashEmbedder struct {
	dimension int
	n         int
}

// NewNgramHashEmbedder builds a fallback embedder with the given vector
// dimension and n-gram length (3, matching "character n-gram hash" in
// spec §4.4, is the expected default).
func NewNgramHashEmbedder(dimension, n int) *NgramHashEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	if n <= 0 {
		n = 3
	}
	return &NgramHashEmbedder{dimension: dimension, n: n}
}

// Embed hashes every n-gram of text into a bucket of the output vector and
// length-normalizes the result. It never errors and never consults ctx;
// both are present to satisfy the Embedder interface's external-call shape.
func (e *NgramHashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	runes := []rune(text)
	if len(runes) == 0 {
		return vec, nil
	}
	n := e.n
	if len(runes) < n {
		n = len(runes)
	}
	for i := 0; i+n <= len(runes); i++ {
		gram := string(runes[i : i+n])
		h := fnv.New32a()
		_, _ = h.Write([]byte(gram))
		bucket := int(h.Sum32()) % e.dimension
		if bucket < 0 {
			bucket += e.dimension
		}
		vec[bucket]++
	}
	return NormalizeVector(vec), nil
}

func (e *NgramHashEmbedder) Dimension() int { return e.dimension }
func (e *NgramHashEmbedder) Provider() string { return "ngram-hash-fallback" }
