package llm

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

const (
	DefaultEmbeddingModel = "gemini-embedding-001"

	// embedBatchSize is the largest batch the embed endpoint accepts.
	embedBatchSize = 100
	// embedParallelism bounds concurrent batch requests.
	embedParallelism = 4
)

// GeminiEmbedder implements domain.Embedder with EmbedContent.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(ctx context.Context, cfg GeminiConfig, model string) (*GeminiEmbedder, error) {
	client, _, err := newGenAIClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// EmbedDocuments embeds chunks for storage in the index. Batches run
// concurrently; results keep the input order.
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(embedParallelism)
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		eg.Go(func() error {
			vecs, err := e.embed(egCtx, texts[start:end], "RETRIEVAL_DOCUMENT")
			if err != nil {
				return err
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EmbedQuery embeds a search query.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *GeminiEmbedder) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	res, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: taskType,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed content: got %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		vecs[i] = emb.Values
	}
	return vecs, nil
}
