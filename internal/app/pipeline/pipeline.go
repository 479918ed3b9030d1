package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

// DefaultSearchK is how many snippets a research turn asks for.
const DefaultSearchK = 4

// UserInput is one incoming participant message.
type UserInput struct {
	AuthorID string
	Content  string
}

// Pipeline runs LOG -> ROUTE -> [RETRIEVE] -> SYNTHESIZE|REVIEW -> COMMIT.
type Pipeline struct {
	llm       domain.CompletionGateway
	retriever domain.Retriever
	searchK   int
	now       func() time.Time
}

type Option func(*Pipeline)

func WithSearchK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.searchK = k
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New builds a pipeline. retriever may be nil; research turns then get the
// empty-index placeholder.
func New(llm domain.CompletionGateway, retriever domain.Retriever, opts ...Option) *Pipeline {
	p := &Pipeline{
		llm:       llm,
		retriever: retriever,
		searchK:   DefaultSearchK,
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// RunTurn appends the user message under the given stage and runs the
// pipeline. On any error the original state is returned untouched: the
// user message and the action log entry of a failed turn are dropped too.
func (p *Pipeline) RunTurn(
	ctx context.Context,
	sessionID domain.SessionID,
	state domain.SessionState,
	in UserInput,
	stage domain.Stage,
	index domain.IndexHandle,
) (domain.SessionState, error) {
	if !stage.Valid() {
		return state, fmt.Errorf("%w: %q", domain.ErrInvalidStage, stage)
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return state, domain.ErrEmptyMessage
	}

	next := state.Clone()
	next.Stage = stage
	next.Messages = append(next.Messages, domain.NewUserMessage(strings.TrimSpace(in.AuthorID), content))

	out, err := p.Run(ctx, sessionID, next, index)
	if err != nil {
		return state, err
	}
	return out, nil
}

// Run executes the steps in order against a copy of state. Each turn ends
// after commit; nothing loops back to log or route.
func (p *Pipeline) Run(
	ctx context.Context,
	sessionID domain.SessionID,
	state domain.SessionState,
	index domain.IndexHandle,
) (domain.SessionState, error) {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"stage", state.Stage,
	)
	log.Info("turn started", "messages", len(state.Messages))

	t := Turn{
		SessionID: sessionID,
		State:     state.Clone(),
		Index:     index,
	}

	var err error
	for _, st := range []Step{logStep{now: p.now}, routeStep{}} {
		if t, err = p.runStep(ctx, st, t); err != nil {
			return state, err
		}
	}

	log = log.With("branch", t.Branch.String())
	for _, st := range p.branchSteps(t.Branch) {
		if t, err = p.runStep(ctx, st, t); err != nil {
			log.Error("turn aborted", "step", st.Name(), "error", err)
			return state, err
		}
	}

	log.Info("turn completed", "messages", len(t.State.Messages), "board_len", len(t.State.Board))
	return t.State, nil
}

func (p *Pipeline) branchSteps(b Branch) []Step {
	switch b {
	case BranchRetrieve:
		return []Step{
			retrieveStep{retriever: p.retriever, k: p.searchK},
			synthesizeStep{llm: p.llm},
			commitStep{},
		}
	case BranchReview:
		return []Step{reviewStep{llm: p.llm}, commitStep{}}
	default:
		return []Step{synthesizeStep{llm: p.llm}, commitStep{}}
	}
}

func (p *Pipeline) runStep(ctx context.Context, st Step, t Turn) (Turn, error) {
	log := observability.LoggerFromContext(ctx)

	start := time.Now()
	out, err := st.Run(ctx, t)
	if err != nil {
		return t, fmt.Errorf("step %s failed: %w", st.Name(), err)
	}

	log.Debug("step end", "step", st.Name(), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
