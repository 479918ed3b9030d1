package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/storage/memory"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()

	sess := &domain.Session{ID: "s1", Title: "Semana", CreatedAt: time.Now(), State: domain.NewSessionState()}
	require.NoError(t, store.CreateSession(ctx, sess))
	assert.ErrorIs(t, store.CreateSession(ctx, sess), domain.ErrSessionExists)

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Semana", got.Title)

	got.State.Board = "novo plano"
	got.State.Messages = append(got.State.Messages, domain.NewUserMessage("ana", "oi"))

	again, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.State.Board, "store must not alias returned sessions")
	assert.Empty(t, again.State.Messages)

	require.NoError(t, store.UpdateSession(ctx, got))
	again, err = store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "novo plano", again.State.Board)
	assert.Len(t, again.State.Messages, 1)

	_, err = store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.UpdateSession(ctx, &domain.Session{ID: "missing"}), domain.ErrSessionNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []domain.SessionID{"a", "b", "c"} {
		require.NoError(t, store.CreateSession(ctx, &domain.Session{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			State:     domain.NewSessionState(),
		}))
	}

	all, err := store.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.SessionID("c"), all[0].ID)

	two, err := store.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}
