package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

// Store persists sessions as one document plus two append-only
// subcollections (messages, actions) keyed by a zero-padded sequence.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (COLAB_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(id domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(id).Collection("messages")
}

func (s *Store) actionsCol(id domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(id).Collection("actions")
}

func seqID(seq int) string {
	return fmt.Sprintf("%08d", seq)
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	Title        string    `firestore:"title"`
	Board        string    `firestore:"board"`
	Stage        string    `firestore:"stage"`
	MessageCount int       `firestore:"message_count"`
	ActionCount  int       `firestore:"action_count"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

type messageDoc struct {
	Seq      int    `firestore:"seq"`
	Kind     string `firestore:"kind"`
	AuthorID string `firestore:"author_id,omitempty"`
	Content  string `firestore:"content"`
}

type actionDoc struct {
	Seq       int    `firestore:"seq"`
	AuthorID  string `firestore:"author_id"`
	Action    string `firestore:"action"`
	Message   string `firestore:"message"`
	Stage     string `firestore:"stage"`
	Timestamp string `firestore:"timestamp"`
}

func toSessionDoc(session *domain.Session) sessionDoc {
	return sessionDoc{
		Title:        session.Title,
		Board:        session.State.Board,
		Stage:        string(session.State.Stage),
		MessageCount: len(session.State.Messages),
		ActionCount:  len(session.State.Actions),
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
}

func toMessageDoc(seq int, m domain.Message) messageDoc {
	return messageDoc{Seq: seq, Kind: string(m.Kind), AuthorID: m.AuthorID, Content: m.Content}
}

func fromMessageDoc(d messageDoc) domain.Message {
	switch domain.MessageKind(d.Kind) {
	case domain.MessageAssistant:
		return domain.NewAssistantMessage(d.Content)
	default:
		return domain.NewUserMessage(d.AuthorID, d.Content)
	}
}

func toActionDoc(seq int, a domain.ActionLogEntry) actionDoc {
	return actionDoc{
		Seq:       seq,
		AuthorID:  a.AuthorID,
		Action:    a.Action,
		Message:   a.Message,
		Stage:     string(a.Stage),
		Timestamp: a.Timestamp,
	}
}

func fromActionDoc(d actionDoc) domain.ActionLogEntry {
	return domain.ActionLogEntry{
		AuthorID:  d.AuthorID,
		Action:    d.Action,
		Message:   d.Message,
		Stage:     domain.Stage(d.Stage),
		Timestamp: d.Timestamp,
	}
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(s.sessionDoc(session.ID), toSessionDoc(session)); err != nil {
			return err
		}
		return s.appendItems(tx, session, 0, 0)
	})
	if status.Code(err) == codes.AlreadyExists {
		return domain.ErrSessionExists
	}
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

// UpdateSession writes the session document and only the messages and
// actions added since the stored counts, in one transaction. Histories
// shorter than what is stored are rejected.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(s.sessionDoc(session.ID))
		if err != nil {
			return err
		}

		var stored sessionDoc
		if err := snap.DataTo(&stored); err != nil {
			return fmt.Errorf("decode sessionDoc: %w", err)
		}
		if len(session.State.Messages) < stored.MessageCount || len(session.State.Actions) < stored.ActionCount {
			return fmt.Errorf("session %s: history is append-only", session.ID)
		}

		if err := s.appendItems(tx, session, stored.MessageCount, stored.ActionCount); err != nil {
			return err
		}
		return tx.Set(s.sessionDoc(session.ID), toSessionDoc(session))
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) appendItems(tx *firestore.Transaction, session *domain.Session, fromMsg, fromAction int) error {
	for i := fromMsg; i < len(session.State.Messages); i++ {
		ref := s.messagesCol(session.ID).Doc(seqID(i))
		if err := tx.Set(ref, toMessageDoc(i, session.State.Messages[i])); err != nil {
			return err
		}
	}
	for i := fromAction; i < len(session.State.Actions); i++ {
		ref := s.actionsCol(session.ID).Doc(seqID(i))
		if err := tx.Set(ref, toActionDoc(i, session.State.Actions[i])); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	session := fromSessionDoc(id, doc)

	msgs, err := s.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	actions, err := s.loadActions(ctx, id)
	if err != nil {
		return nil, err
	}
	session.State.Messages = msgs
	session.State.Actions = actions

	return session, nil
}

// ListSessions returns session metadata, newest first. Board and stage are
// filled; messages and actions are not loaded.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	q := s.sessionsCol().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListSessions: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}
		out = append(out, fromSessionDoc(domain.SessionID(snap.Ref.ID), doc))
	}
	return out, nil
}

func fromSessionDoc(id domain.SessionID, doc sessionDoc) *domain.Session {
	state := domain.NewSessionState()
	state.Board = doc.Board
	if st := domain.Stage(doc.Stage); st.Valid() {
		state.Stage = st
	}

	return &domain.Session{
		ID:        id,
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		State:     state,
	}
}

func (s *Store) loadMessages(ctx context.Context, id domain.SessionID) ([]domain.Message, error) {
	iter := s.messagesCol(id).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := []domain.Message{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore load messages: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		out = append(out, fromMessageDoc(doc))
	}
	return out, nil
}

func (s *Store) loadActions(ctx context.Context, id domain.SessionID) ([]domain.ActionLogEntry, error) {
	iter := s.actionsCol(id).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := []domain.ActionLogEntry{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore load actions: %w", err)
		}

		var doc actionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode actionDoc: %w", err)
		}
		out = append(out, fromActionDoc(doc))
	}
	return out, nil
}
