package domain

import (
	"fmt"
	"strings"
	"time"
)

type SessionID string

type Stage string

const (
	StageBrainstorm Stage = "brainstorm" // Initial ideas
	StageResearch   Stage = "research"   // Uses the indexed documents
	StageDraft      Stage = "draft"      // Plan draft
	StageReview     Stage = "review"     // Final review
)

// Stages lists every stage in workflow order.
var Stages = []Stage{StageBrainstorm, StageResearch, StageDraft, StageReview}

// ParseStage accepts exactly the four stage names (case and surrounding
// spaces are ignored).
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return st, nil
}

func (s Stage) Valid() bool {
	switch s {
	case StageBrainstorm, StageResearch, StageDraft, StageReview:
		return true
	default:
		return false
	}
}

// Label is the human readable name shown to participants.
func (s Stage) Label() string {
	switch s {
	case StageBrainstorm:
		return "Brainstorm (ideias iniciais)"
	case StageResearch:
		return "Pesquisa (usar PDFs)"
	case StageDraft:
		return "Rascunho do plano"
	case StageReview:
		return "Revisão final"
	default:
		return string(s)
	}
}

type Timestamp = time.Time

// TimestampLayout is the ISO-8601 layout used in the action log.
const TimestampLayout = time.RFC3339
