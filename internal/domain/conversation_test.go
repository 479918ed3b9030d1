package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionState(t *testing.T) {
	s := NewSessionState()
	assert.Empty(t, s.Messages)
	assert.Empty(t, s.Board)
	assert.Equal(t, StageBrainstorm, s.Stage)
	assert.Empty(t, s.Actions)
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := NewSessionState()
	s.Messages = append(s.Messages, NewUserMessage("ana", "oi"))
	s.Actions = append(s.Actions, ActionLogEntry{AuthorID: "ana"})

	c := s.Clone()
	if diff := cmp.Diff(s, c); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}
	c.Messages[0].Content = "mudado"
	c.Actions[0].AuthorID = "bia"
	c.Messages = append(c.Messages, NewAssistantMessage("x"))

	assert.Equal(t, "oi", s.Messages[0].Content)
	assert.Equal(t, "ana", s.Actions[0].AuthorID)
	assert.Len(t, s.Messages, 1)
}

func TestLastUserMessage(t *testing.T) {
	s := NewSessionState()
	_, ok := s.LastUserMessage()
	assert.False(t, ok)

	s.Messages = append(s.Messages,
		NewUserMessage("ana", "primeira"),
		NewUserMessage("bia", "segunda"),
		NewAssistantMessage("resposta"),
	)
	m, ok := s.LastUserMessage()
	require.True(t, ok)
	assert.Equal(t, "bia", m.AuthorID)
	assert.Equal(t, "segunda", m.Content)
}

func TestRecentActionsNewestFirst(t *testing.T) {
	s := NewSessionState()
	for _, msg := range []string{"a", "b", "c"} {
		s.Actions = append(s.Actions, ActionLogEntry{Message: msg})
	}

	got := s.RecentActions(2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Message)
	assert.Equal(t, "b", got[1].Message)
	assert.Len(t, s.RecentActions(0), 3)
	assert.Len(t, s.RecentActions(10), 3)
}

func TestParseStage(t *testing.T) {
	for _, st := range Stages {
		got, err := ParseStage(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	got, err := ParseStage(" Research ")
	require.NoError(t, err)
	assert.Equal(t, StageResearch, got)

	_, err = ParseStage("planning")
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestStageLabel(t *testing.T) {
	assert.Equal(t, "Pesquisa (usar PDFs)", StageResearch.Label())
	assert.Equal(t, "x", Stage("x").Label())
}

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("timeout")

	var ce error = &CompletionError{Backend: "vertex", Err: cause}
	assert.ErrorIs(t, ce, cause)
	assert.Contains(t, ce.Error(), "vertex")

	var ie error = &IngestionError{Document: "edital.pdf", Err: ErrUnsupportedFormat}
	assert.ErrorIs(t, ie, ErrUnsupportedFormat)
	assert.Contains(t, ie.Error(), "edital.pdf")
}
