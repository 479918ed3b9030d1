package pipeline

import "github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"

// Branch is the processing path chosen for a turn.
type Branch int

const (
	BranchSynthesize Branch = iota
	BranchRetrieve
	BranchReview
)

func (b Branch) String() string {
	switch b {
	case BranchRetrieve:
		return "retrieve"
	case BranchReview:
		return "review"
	default:
		return "synthesize"
	}
}

// Route maps a stage to its branch. Only research retrieves; unknown
// stages fall back to synthesis.
func Route(stage domain.Stage) Branch {
	switch stage {
	case domain.StageResearch:
		return BranchRetrieve
	case domain.StageReview:
		return BranchReview
	case domain.StageBrainstorm, domain.StageDraft:
		return BranchSynthesize
	default:
		return BranchSynthesize
	}
}
