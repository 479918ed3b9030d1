// Package retrieval implements domain.Retriever over uploaded documents.
// Every Index call builds a new immutable index; searches against a handle
// always see that complete index.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

var (
	errNoDocuments   = errors.New("no documents to index")
	errForeignHandle = errors.New("index handle was not built by this retriever")
)

type chunk struct {
	Document string
	Text     string
}

// indexInfo carries what every index kind shares.
type indexInfo struct {
	id        string
	documents int
	chunks    []chunk
	builtAt   time.Time
}

func (i *indexInfo) IndexID() string    { return i.id }
func (i *indexInfo) DocumentCount() int { return i.documents }
func (i *indexInfo) ChunkCount() int    { return len(i.chunks) }
func (i *indexInfo) BuiltAt() time.Time { return i.builtAt }

// buildChunks loads and splits every document. Any failure aborts the whole
// batch so a partial index is never produced.
func buildChunks(ctx context.Context, docs []domain.Document, splitter *Splitter) (*indexInfo, error) {
	if len(docs) == 0 {
		return nil, errNoDocuments
	}

	log := observability.LoggerFromContext(ctx)

	var chunks []chunk
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("indexing cancelled: %w", err)
		}

		text, err := LoadText(d)
		if err != nil {
			log.Warn("document rejected", "document", d.Name, "error", err)
			return nil, err
		}

		parts := splitter.Split(text)
		for _, p := range parts {
			chunks = append(chunks, chunk{Document: d.Name, Text: p})
		}
		log.Debug("document split", "document", d.Name, "chunks", len(parts))
	}

	return &indexInfo{
		id:        uuid.NewString(),
		documents: len(docs),
		chunks:    chunks,
		builtAt:   time.Now(),
	}, nil
}
