package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/pipeline"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

const (
	// DefaultMaxDocuments caps one ingestion call.
	DefaultMaxDocuments = 5
	// DefaultTitle names sessions started without a title.
	DefaultTitle = "Semana da Computação"
)

// Service owns the planning sessions and the process-wide document index.
// Turns on the same session are serialized; different sessions run in
// parallel.
type Service struct {
	pipeline     *pipeline.Pipeline
	retriever    domain.Retriever
	sessionStore domain.SessionStore
	now          func() time.Time
	maxDocuments int

	// ingestMu serializes index builds; indexMu guards the published handle.
	ingestMu sync.Mutex
	indexMu  sync.RWMutex
	index    domain.IndexHandle

	locksMu sync.Mutex
	locks   map[domain.SessionID]*sessionLock
}

// sessionLock is dropped from the map once nobody holds or waits for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*options)

type options struct {
	maxDocuments int
	searchK      int
	now          func() time.Time
}

func WithMaxDocuments(n int) Option {
	return func(o *options) { o.maxDocuments = n }
}

func WithSearchK(k int) Option {
	return func(o *options) { o.searchK = k }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService wires the turn pipeline. retriever may be nil, in which case
// research turns fall back to the empty-index placeholder and ingestion is
// rejected.
func NewService(
	llm domain.CompletionGateway,
	retriever domain.Retriever,
	sessionStore domain.SessionStore,
	opts ...Option,
) *Service {
	o := options{
		maxDocuments: DefaultMaxDocuments,
		searchK:      pipeline.DefaultSearchK,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDocuments <= 0 {
		o.maxDocuments = DefaultMaxDocuments
	}

	return &Service{
		pipeline:     pipeline.New(llm, retriever, pipeline.WithSearchK(o.searchK), pipeline.WithClock(o.now)),
		retriever:    retriever,
		sessionStore: sessionStore,
		now:          o.now,
		maxDocuments: o.maxDocuments,
		locks:        make(map[domain.SessionID]*sessionLock),
	}
}

type StartSessionInput struct {
	Title string
}

type StartSessionOutput struct {
	Session *domain.Session
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	session := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		State:     domain.NewSessionState(),
	}

	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)
	log.Info("starting new session", "title", title)

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	return &StartSessionOutput{Session: session}, nil
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return s.sessionStore.GetSession(ctx, id)
}

func (s *Service) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	return s.sessionStore.ListSessions(ctx, limit)
}

type SendMessageInput struct {
	SessionID domain.SessionID
	AuthorID  string
	Text      string
	// Stage is parsed with domain.ParseStage; empty keeps the session's
	// current stage.
	Stage string
}

type SendMessageOutput struct {
	Session *domain.Session
	Reply   string
}

// SendMessage runs one turn and persists the resulting state. A failed turn
// persists nothing.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	unlock := s.lockSession(in.SessionID)
	defer unlock()

	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	stage := session.State.Stage
	if strings.TrimSpace(in.Stage) != "" {
		if stage, err = domain.ParseStage(in.Stage); err != nil {
			return nil, err
		}
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"author_id", in.AuthorID,
		"stage", stage,
	)
	log.Info("sending message")

	next, err := s.pipeline.RunTurn(ctx, session.ID, session.State, pipeline.UserInput{
		AuthorID: in.AuthorID,
		Content:  in.Text,
	}, stage, s.CurrentIndex())
	if err != nil {
		log.Error("turn failed", "error", err)
		return nil, err
	}

	session.State = next
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	reply := ""
	if n := len(next.Messages); n > 0 {
		reply = next.Messages[n-1].Content
	}

	log.Info("send message completed", "messages", len(next.Messages))
	return &SendMessageOutput{Session: session, Reply: reply}, nil
}

// IngestDocuments builds a new index from docs and swaps it in. More than
// the configured maximum is rejected before any parsing; any failure leaves
// the previous index in place. An empty batch is a no-op. Builds run one at
// a time and each published index fully replaces the previous one.
func (s *Service) IngestDocuments(ctx context.Context, docs []domain.Document) (domain.IndexHandle, error) {
	log := observability.LoggerFromContext(ctx).With("documents", len(docs))

	if len(docs) > s.maxDocuments {
		return nil, fmt.Errorf("%w: got %d, max %d", domain.ErrTooManyDocuments, len(docs), s.maxDocuments)
	}
	if len(docs) == 0 {
		return s.CurrentIndex(), nil
	}
	if s.retriever == nil {
		return nil, fmt.Errorf("document retrieval is not configured")
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	start := time.Now()
	handle, err := s.retriever.Index(ctx, docs)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		return nil, err
	}

	s.indexMu.Lock()
	s.index = handle
	s.indexMu.Unlock()

	log.Info("documents indexed",
		"index_id", handle.IndexID(),
		"chunks", handle.ChunkCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return handle, nil
}

// CurrentIndex returns the active index, or nil before the first ingestion.
func (s *Service) CurrentIndex() domain.IndexHandle {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	return s.index
}

func (s *Service) lockSession(id domain.SessionID) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}
