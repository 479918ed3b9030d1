package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

// Turn is what flows between steps: the state snapshot plus values that
// only live for the current turn.
type Turn struct {
	SessionID domain.SessionID
	State     domain.SessionState
	Index     domain.IndexHandle

	Branch           Branch
	RetrievedContext string
	Reply            string
}

// Step is one stage of the turn pipeline. Steps receive a Turn by value and
// return the updated copy.
type Step interface {
	Name() string
	Run(ctx context.Context, t Turn) (Turn, error)
}

// logStep records the newest user message in the action log.
type logStep struct {
	now func() time.Time
}

func (s logStep) Name() string { return "log" }

func (s logStep) Run(_ context.Context, t Turn) (Turn, error) {
	msg, ok := t.State.LastUserMessage()
	if !ok {
		return t, nil
	}

	author := msg.AuthorID
	if author == "" {
		author = domain.AnonymousAuthor
	}

	t.State.Actions = append(t.State.Actions, domain.ActionLogEntry{
		AuthorID:  author,
		Action:    domain.ActionMessage,
		Message:   msg.Content,
		Stage:     t.State.Stage,
		Timestamp: s.now().Format(domain.TimestampLayout),
	})
	return t, nil
}

type routeStep struct{}

func (routeStep) Name() string { return "route" }

func (routeStep) Run(_ context.Context, t Turn) (Turn, error) {
	t.Branch = Route(t.State.Stage)
	return t, nil
}

// retrieveStep searches the indexed documents with the newest user message.
type retrieveStep struct {
	retriever domain.Retriever
	k         int
}

func (s retrieveStep) Name() string { return "retrieve" }

func (s retrieveStep) Run(ctx context.Context, t Turn) (Turn, error) {
	log := observability.LoggerFromContext(ctx).With("step", s.Name())

	msg, ok := t.State.LastUserMessage()
	if !ok {
		t.RetrievedContext = NoQuestionPlaceholder
		return t, nil
	}

	if s.retriever == nil || t.Index == nil {
		log.Info("no index available")
		t.RetrievedContext = EmptyIndexPlaceholder
		return t, nil
	}

	snippets, err := s.retriever.Search(ctx, t.Index, msg.Content, s.k)
	if errors.Is(err, domain.ErrEmptyIndex) {
		log.Info("index is empty")
		t.RetrievedContext = EmptyIndexPlaceholder
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("searching documents: %w", err)
	}

	log.Info("retrieved snippets", "count", len(snippets), "index_id", t.Index.IndexID())
	t.RetrievedContext = FormatSnippets(snippets)
	return t, nil
}

// synthesizeStep builds the collaborative reply, optionally grounded on the
// retrieved context.
type synthesizeStep struct {
	llm domain.CompletionGateway
}

func (s synthesizeStep) Name() string { return "synthesize" }

func (s synthesizeStep) Run(ctx context.Context, t Turn) (Turn, error) {
	p := BuildSynthesisPrompt(t.State, t.RetrievedContext)

	reply, err := s.llm.Complete(ctx, p.Messages, p.System)
	if err != nil {
		return t, err
	}
	t.Reply = reply
	return t, nil
}

// reviewStep asks the model to check the current board.
type reviewStep struct {
	llm domain.CompletionGateway
}

func (s reviewStep) Name() string { return "review" }

func (s reviewStep) Run(ctx context.Context, t Turn) (Turn, error) {
	p := BuildReviewPrompt(t.State)

	reply, err := s.llm.Complete(ctx, p.Messages, p.System)
	if err != nil {
		return t, err
	}
	t.Reply = reply
	return t, nil
}

// commitStep appends the reply and makes it the new board.
type commitStep struct{}

func (commitStep) Name() string { return "commit" }

func (commitStep) Run(_ context.Context, t Turn) (Turn, error) {
	t.State.Messages = append(t.State.Messages, domain.NewAssistantMessage(t.Reply))
	t.State.Board = t.Reply
	return t, nil
}
