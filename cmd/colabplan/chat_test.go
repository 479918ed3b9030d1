package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/llm"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/retrieval"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/storage/memory"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/conversation"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/journal"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/config"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

func TestRunChatSession(t *testing.T) {
	store := memory.NewSessionStore()
	svc := conversation.NewService(llm.NewMockLLM(), retrieval.NewLexicalRetriever(nil), store)
	js := journal.NewService(store)

	in := strings.NewReader(strings.Join([]string{
		"Precisamos de palestras",
		"/stage review",
		"Revise o plano",
		"/stage planning",
		"/board",
		"/log",
		"/nope",
		"/quit",
		"ignored",
	}, "\n"))
	var out bytes.Buffer

	err := runChat(context.Background(), in, &out, svc, js, "ana", domain.StageBrainstorm)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Plano da Semana da Computação")
	assert.Contains(t, text, "etapa: Revisão final")
	assert.Contains(t, text, "Revisão do plano")
	assert.Contains(t, text, "invalid stage")
	assert.Contains(t, text, "ana (review): Revise o plano")
	assert.Contains(t, text, "comando desconhecido")
	assert.Contains(t, text, "ana: 2 mensagem(ns)")
	assert.NotContains(t, text, "ignored")

	logIdx := strings.Index(text, "(review): Revise o plano")
	firstIdx := strings.Index(text, "(brainstorm): Precisamos de palestras")
	assert.Less(t, logIdx, firstIdx, "log is newest first")
}

func TestRunChatStopsAtEOF(t *testing.T) {
	store := memory.NewSessionStore()
	svc := conversation.NewService(llm.NewMockLLM(), nil, store)

	var out bytes.Buffer
	err := runChat(context.Background(), strings.NewReader(""), &out, svc, journal.NewService(store), DefaultAuthor, domain.StageDraft)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Rascunho do plano")
}

func TestBuildAppWithDefaults(t *testing.T) {
	cfg := &config.Config{
		UseMockLLM:       true,
		StorageBackend:   config.StorageMemory,
		RetrievalBackend: config.RetrievalLexical,
		ChunkSize:        1000,
		ChunkOverlap:     200,
		SearchK:          4,
		MaxDocuments:     5,
		MaxUploadBytes:   1 << 20,
	}

	a, err := buildApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.svc.IngestDocuments(context.Background(), make([]domain.Document, 6))
	assert.ErrorIs(t, err, domain.ErrTooManyDocuments)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["chat"])
}
