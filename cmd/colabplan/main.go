package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/llm"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/retrieval"
	firestorestore "github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/storage/firestore"
	memstore "github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/storage/memory"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/conversation"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/journal"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/config"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired services.
type app struct {
	cfg     *config.Config
	svc     *conversation.Service
	journal *journal.Service
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// buildApp picks the completion backend, retriever and storage from cfg.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := observability.Logger()
	a := &app{cfg: cfg}

	geminiCfg := llm.GeminiConfig{
		APIKey:      cfg.GoogleAPIKey,
		Project:     cfg.GCPProjectID,
		Location:    cfg.GCPLocation,
		Model:       cfg.ModelName,
		Temperature: cfg.Temperature,
	}

	var llmClient domain.CompletionGateway
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		client, err := llm.NewGeminiClient(ctx, geminiCfg)
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini client: %w", err)
		}
		log.Info("using Gemini LLM client", "model", cfg.ModelName)
		llmClient = client
	}

	splitter := retrieval.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	var retriever domain.Retriever
	switch cfg.RetrievalBackend {
	case config.RetrievalEmbedding:
		embedder, err := llm.NewGeminiEmbedder(ctx, geminiCfg, cfg.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("initializing embedder: %w", err)
		}
		log.Info("using embedding retrieval", "model", cfg.EmbeddingModel)
		retriever = retrieval.NewEmbeddingRetriever(embedder, splitter)
	default:
		log.Info("using lexical retrieval")
		retriever = retrieval.NewLexicalRetriever(splitter)
	}

	var sessionStore domain.SessionStore
	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		a.closers = append(a.closers, fsStore)
		sessionStore = fsStore
	default:
		log.Info("using in-memory storage")
		sessionStore = memstore.NewSessionStore()
	}

	a.svc = conversation.NewService(llmClient, retriever, sessionStore,
		conversation.WithMaxDocuments(cfg.MaxDocuments),
		conversation.WithSearchK(cfg.SearchK),
	)
	a.journal = journal.NewService(sessionStore)

	return a, nil
}
