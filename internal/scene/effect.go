package scene

import "github.com/NativeSquare/Cadence-sub000/internal/interview"

// Effect is an external action requested by a transition. The caller runs it
// and reports the outcome back (NameSubmitted, ConnectResolved).
type Effect interface {
	effect()
}

// SubmitName asks the caller to persist the confirmed name.
type SubmitName struct {
	Name string
}

// SectionFlowComplete carries the finalized answers. It is emitted once.
type SectionFlowComplete struct {
	Responses interview.Responses
}

// Connect asks the caller to connect a wearable provider.
type Connect struct {
	Provider string
}

// InterviewComplete is emitted by the handoff terminal action.
type InterviewComplete struct {
	Responses interview.Responses
}

func (SubmitName) effect()          {}
func (SectionFlowComplete) effect() {}
func (Connect) effect()             {}
func (InterviewComplete) effect()   {}
