package domain

import (
	"context"
	"time"
)

// PromptRole tags messages sent to the completion backend.
type PromptRole string

const (
	PromptRoleUser      PromptRole = "user"
	PromptRoleAssistant PromptRole = "assistant"
)

// PromptMessage is a role-tagged message as the model sees it.
type PromptMessage struct {
	Role    PromptRole
	Content string
}

// CompletionGateway defines how the core obtains a generated reply.
// Failures must be returned as *CompletionError.
type CompletionGateway interface {
	Complete(ctx context.Context, messages []PromptMessage, systemPrompt string) (string, error)
}

// Document is one raw uploaded file.
type Document struct {
	Name string
	Data []byte
}

// IndexHandle identifies a complete, searchable document index.
type IndexHandle interface {
	IndexID() string
	DocumentCount() int
	ChunkCount() int
	BuiltAt() time.Time
}

// Retriever indexes documents and searches them.
// Search with a nil handle returns ErrEmptyIndex.
type Retriever interface {
	Index(ctx context.Context, docs []Document) (IndexHandle, error)
	Search(ctx context.Context, handle IndexHandle, query string, k int) ([]string, error)
}

// Embedder turns texts into vectors; used by the semantic retriever.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
}
