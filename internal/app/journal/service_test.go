package journal_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/storage/memory"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/journal"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

func seed(t *testing.T, n int) (*journal.Service, domain.SessionID) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewSessionStore()

	state := domain.NewSessionState()
	for i := 0; i < n; i++ {
		author := "ana"
		if i%2 == 1 {
			author = "bruno"
		}
		state.Actions = append(state.Actions, domain.ActionLogEntry{
			AuthorID:  author,
			Action:    domain.ActionMessage,
			Message:   fmt.Sprintf("msg %d", i),
			Stage:     domain.StageBrainstorm,
			Timestamp: "2025-10-20T14:30:00Z",
		})
	}
	require.NoError(t, store.CreateSession(ctx, &domain.Session{ID: "s1", State: state}))
	return journal.NewService(store), "s1"
}

func TestRecentActionsDefaultsToFifteenNewestFirst(t *testing.T) {
	svc, id := seed(t, 20)

	got, err := svc.RecentActions(context.Background(), id, 0)
	require.NoError(t, err)
	require.Len(t, got, journal.DefaultLimit)
	assert.Equal(t, "msg 19", got[0].Message)
	assert.Equal(t, "msg 5", got[len(got)-1].Message)

	got, err = svc.RecentActions(context.Background(), id, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRecentActionsUnknownSession(t *testing.T) {
	svc, _ := seed(t, 0)

	_, err := svc.RecentActions(context.Background(), "missing", 0)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAuthorCounts(t *testing.T) {
	svc, id := seed(t, 5)

	counts, err := svc.AuthorCounts(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ana": 3, "bruno": 2}, counts)
}
