package journal

import (
	"context"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

// DefaultLimit is how many action log entries a view shows.
const DefaultLimit = 15

// Service reads a session's action log.
type Service struct {
	store domain.SessionStore
}

// NewService creates a journal service from a SessionStore
func NewService(store domain.SessionStore) *Service {
	return &Service{
		store: store,
	}
}

// RecentActions returns the last `limit` action log entries of a session,
// newest first. If limit <= 0, DefaultLimit is used.
func (s *Service) RecentActions(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) ([]domain.ActionLogEntry, error) {

	if limit <= 0 {
		limit = DefaultLimit
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return session.State.RecentActions(limit), nil
}

// AuthorCounts tallies logged messages per author.
func (s *Service) AuthorCounts(ctx context.Context, sessionID domain.SessionID) (map[string]int, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int)
	for _, a := range session.State.Actions {
		if a.Action == domain.ActionMessage {
			out[a.AuthorID]++
		}
	}
	return out, nil
}
