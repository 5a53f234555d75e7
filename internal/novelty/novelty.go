// Package novelty implements the bounded recent-prompt similarity index
// (C4): embed a prompt, query max similarity against the recent-history
// store, then add it, evicting the oldest entry once the store is at
// capacity. It generalizes the teacher's chromem-go-backed VectorStore
// (internal/knowledge/vector_store.go), which maps named collections to
// arbitrary entity embeddings, down to a single fixed "recent-prompts"
// collection with strict FIFO eviction layered on top — chromem-go itself
// has no native capacity cap.
package novelty

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"coevolve/internal/embeddings"
)

// Capacity is the maximum number of prompt embeddings retained, per spec §3.
const Capacity = 200

const collectionName = "recent-prompts"

// Index is a bounded FIFO store of recent prompt embeddings, queryable for
// maximum cosine similarity.
type Index struct {
	mu       sync.Mutex
	db       *chromem.DB
	embedder embeddings.Embedder
	order    []string             // insertion order, oldest first, for FIFO eviction
	vectors  map[string][]float32 // id -> stored vector, for CosineSimilarity queries
	seq      int
}

// New constructs an empty, in-memory novelty index backed by the given
// embedder (the real inference endpoint's embed() call, or the n-gram-hash
// fallback when it is unavailable).
func New(embedder embeddings.Embedder) *Index {
	db := chromem.NewDB()
	// The collection gets no metadata and no embedding function: every
	// document added to it carries its own precomputed embedding.
	if _, err := db.CreateCollection(collectionName, nil, nil); err != nil {
		// CreateCollection on a fresh in-memory DB only fails on a bad name;
		// the fixed name above is always valid.
		panic(fmt.Sprintf("novelty: unexpected collection creation failure: %v", err))
	}
	return &Index{db: db, embedder: embedder, vectors: make(map[string][]float32)}
}

// Embed produces a vector for text via the configured embedder.
func (idx *Index) Embed(ctx context.Context, text string) ([]float32, error) {
	return idx.embedder.Embed(ctx, text)
}

// MaxSimilarity returns the highest cosine similarity between vec and any
// vector currently stored, mapped into [0,1]. Returns 0 on an empty index.
// chromem-go remains the durable backing store (Add/eviction go through
// it), but the similarity score itself is computed by
// embeddings.CosineSimilarity over the retained vectors directly, per
// spec §4.4.
func (idx *Index) MaxSimilarity(ctx context.Context, vec []float32) float64 {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(idx.order) == 0 {
		return 0
	}

	best := 0.0
	for _, id := range idx.order {
		stored, ok := idx.vectors[id]
		if !ok {
			continue
		}
		sim := embeddings.CosineSimilarity(vec, stored)
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}
		if sim > best {
			best = sim
		}
	}
	return best
}

// Add inserts vec into the index, evicting the oldest entry first if the
// index is already at Capacity.
func (idx *Index) Add(ctx context.Context, vec []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	coll := idx.db.GetCollection(collectionName, nil)
	if coll == nil {
		return
	}

	if len(idx.order) >= Capacity {
		oldest := idx.order[0]
		idx.order = idx.order[1:]
		_ = coll.Delete(ctx, nil, nil, oldest)
		delete(idx.vectors, oldest)
	}

	idx.seq++
	id := fmt.Sprintf("p%d", idx.seq)
	_ = coll.AddDocument(ctx, chromem.Document{ID: id, Embedding: vec})
	idx.vectors[id] = vec
	idx.order = append(idx.order, id)
}

// Size reports the current number of retained entries.
func (idx *Index) Size() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.order)
}
