package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

func TestMessageDocRoundTripKeepsVariant(t *testing.T) {
	user := domain.NewUserMessage("ana", "oi")
	asst := domain.NewAssistantMessage("plano")

	assert.Equal(t, user, fromMessageDoc(toMessageDoc(0, user)))
	assert.Equal(t, asst, fromMessageDoc(toMessageDoc(1, asst)))
	assert.Equal(t, "00000007", seqID(7))
}

func TestFromSessionDocDefaultsUnknownStage(t *testing.T) {
	s := fromSessionDoc("s1", sessionDoc{Title: "x", Board: "b", Stage: "bogus"})
	assert.Equal(t, domain.StageBrainstorm, s.State.Stage)
	assert.Equal(t, "b", s.State.Board)
}

// Runs against the Firestore emulator only.
func TestStoreAgainstEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, "colabplan-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Now().UTC().Truncate(time.Millisecond)
	sess := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		Title:     "Semana",
		CreatedAt: now,
		UpdatedAt: now,
		State:     domain.NewSessionState(),
	}
	require.NoError(t, store.CreateSession(ctx, sess))
	assert.ErrorIs(t, store.CreateSession(ctx, sess), domain.ErrSessionExists)

	sess.State.Messages = append(sess.State.Messages,
		domain.NewUserMessage("ana", "Vamos planejar palestras"),
		domain.NewAssistantMessage("Plano v1"),
	)
	sess.State.Actions = append(sess.State.Actions, domain.ActionLogEntry{
		AuthorID: "ana", Action: domain.ActionMessage, Message: "Vamos planejar palestras",
		Stage: domain.StageBrainstorm, Timestamp: now.Format(domain.TimestampLayout),
	})
	sess.State.Board = "Plano v1"
	require.NoError(t, store.UpdateSession(ctx, sess))

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.State, got.State)

	shorter := *sess
	shorter.State = domain.NewSessionState()
	assert.Error(t, store.UpdateSession(ctx, &shorter))

	_, err = store.GetSession(ctx, "missing-session")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
