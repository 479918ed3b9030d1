package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

// EmbeddingRetriever ranks chunks by cosine similarity of embeddings
// computed by an external Embedder.
type EmbeddingRetriever struct {
	embedder domain.Embedder
	splitter *Splitter
}

func NewEmbeddingRetriever(embedder domain.Embedder, splitter *Splitter) *EmbeddingRetriever {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &EmbeddingRetriever{embedder: embedder, splitter: splitter}
}

type vectorIndex struct {
	*indexInfo
	vectors [][]float32
}

func (r *EmbeddingRetriever) Index(ctx context.Context, docs []domain.Document) (domain.IndexHandle, error) {
	info, err := buildChunks(ctx, docs, r.splitter)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(info.chunks))
	for i, c := range info.chunks {
		texts[i] = c.Text
	}

	vectors, err := r.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding chunks: got %d vectors for %d chunks", len(vectors), len(texts))
	}

	return &vectorIndex{indexInfo: info, vectors: vectors}, nil
}

func (r *EmbeddingRetriever) Search(ctx context.Context, handle domain.IndexHandle, query string, k int) ([]string, error) {
	if handle == nil {
		return nil, domain.ErrEmptyIndex
	}
	idx, ok := handle.(*vectorIndex)
	if !ok {
		return nil, errForeignHandle
	}
	if idx == nil || len(idx.vectors) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	q, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	type scored struct {
		pos   int
		score float64
	}
	hits := make([]scored, 0, len(idx.vectors))
	for i, v := range idx.vectors {
		s, ok := cosineSimilarity(q, v)
		if !ok {
			continue
		}
		hits = append(hits, scored{pos: i, score: s})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, idx.chunks[h.pos].Text)
	}
	return out, nil
}

// cosineSimilarity reports false for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, am, bm float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		am += float64(a[i]) * float64(a[i])
		bm += float64(b[i]) * float64(b[i])
	}
	if am == 0 || bm == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(am) * math.Sqrt(bm)), true
}
