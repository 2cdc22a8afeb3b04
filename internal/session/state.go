package session

import "github.com/Veraticus/hscode/internal/model"

// State is the current step of a session. Each implementation carries
// exactly the data that exists in that step.
type State interface {
	Name() string
	isState()
}

// Stage names the operation a Failed state came from.
type Stage string

// Failure stages.
const (
	StagePredict Stage = "predict"
	StageRefine  Stage = "refine"
)

// Empty is a session without an image.
type Empty struct{}

// ImageReady holds a decoded image awaiting prediction.
type ImageReady struct {
	Image model.Image
}

// Predicting is a prediction in flight.
type Predicting struct {
	Image model.Image
}

// CandidatesReady holds candidates for which no clarification was offered.
type CandidatesReady struct {
	Image      model.Image
	Candidates []model.ClassificationRecord
}

// AwaitingClarification holds candidates and the question that separates them.
type AwaitingClarification struct {
	Image         model.Image
	Clarification model.ClarificationRequest
	Candidates    []model.ClassificationRecord
}

// Refining is a refinement in flight for the chosen answer.
type Refining struct {
	Image         model.Image
	Clarification model.ClarificationRequest
	Answer        string
	Candidates    []model.ClassificationRecord
}

// Refined holds the final record.
type Refined struct {
	Image         model.Image
	Clarification model.ClarificationRequest
	Answer        string
	Candidates    []model.ClassificationRecord
	Final         model.ClassificationRecord
}

// Failed records a failed prediction or refinement. A failed refinement
// keeps its candidates and question so the user can answer again.
type Failed struct {
	Err           error
	Clarification *model.ClarificationRequest
	Image         model.Image
	Stage         Stage
	Answer        string
	Candidates    []model.ClassificationRecord
}

// Recoverable reports whether the question can be answered again in place.
func (f Failed) Recoverable() bool {
	return f.Stage == StageRefine && f.Clarification != nil && len(f.Candidates) > 0
}

func (Empty) Name() string                 { return "empty" }
func (ImageReady) Name() string            { return "image_ready" }
func (Predicting) Name() string            { return "predicting" }
func (CandidatesReady) Name() string       { return "candidates_ready" }
func (AwaitingClarification) Name() string { return "awaiting_clarification" }
func (Refining) Name() string              { return "refining" }
func (Refined) Name() string               { return "refined" }
func (Failed) Name() string                { return "failed" }

func (Empty) isState()                 {}
func (ImageReady) isState()            {}
func (Predicting) isState()            {}
func (CandidatesReady) isState()       {}
func (AwaitingClarification) isState() {}
func (Refining) isState()              {}
func (Refined) isState()               {}
func (Failed) isState()                {}
