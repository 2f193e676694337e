package flow

import (
	"errors"
	"fmt"

	"github.com/NativeSquare/Cadence-sub000/internal/interview"
)

var (
	ErrNotAtIntro    = errors.New("flow is not at a section intro")
	ErrNotAtQuestion = errors.New("flow is not at a question")
	ErrNotAtReaction = errors.New("flow is not at a section reaction")
	ErrAtStart       = errors.New("flow is at the first section intro")
	ErrComplete      = errors.New("section flow is complete")
	ErrInvalidPhase  = errors.New("phase is out of range")
	ErrNoSections    = errors.New("no sections")
)

// Flow is the section flow state machine. It owns the Response Map while the
// interview is in progress. Flow is not safe for concurrent use.
//
// Back navigation never deletes answers: an answer whose question becomes
// hidden again after an earlier answer is edited stays in the map. This is
// accepted behaviour.
type Flow struct {
	sections  []interview.Section
	responses interview.Responses
	phase     Phase
	complete  bool
}

// New starts a flow at the first section intro. responses may be nil.
func New(sections []interview.Section, responses interview.Responses) (*Flow, error) {
	return Restore(sections, responses, Intro(0))
}

// Restore recreates a flow at phase, for resuming an interview.
func Restore(sections []interview.Section, responses interview.Responses, phase Phase) (*Flow, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	if responses == nil {
		responses = interview.NewResponses()
	}
	f := &Flow{sections: sections, responses: responses}
	if phase.Section < 0 || phase.Section >= len(sections) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPhase, phase)
	}
	if phase.Kind == KindQuestion {
		n := len(interview.VisibleQuestions(sections[phase.Section], responses))
		if phase.Question < 0 || phase.Question >= n {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPhase, phase)
		}
	}
	f.phase = phase
	return f, nil
}

func (f *Flow) Phase() Phase { return f.phase }

func (f *Flow) Sections() []interview.Section { return f.sections }

// Complete reports whether the last section's reaction has finished.
func (f *Flow) Complete() bool { return f.complete }

func (f *Flow) Section() interview.Section { return f.sections[f.phase.Section] }

// Visible recomputes the visible questions of the current section.
func (f *Flow) Visible() []interview.Question {
	return interview.VisibleQuestions(f.Section(), f.responses)
}

// Current returns the question being asked, if the flow is at one.
func (f *Flow) Current() (interview.Question, bool) {
	if f.phase.Kind != KindQuestion {
		return interview.Question{}, false
	}
	visible := f.Visible()
	if f.phase.Question >= len(visible) {
		return interview.Question{}, false
	}
	return visible[f.phase.Question], true
}

// Responses returns a copy of the answers given so far.
func (f *Flow) Responses() interview.Responses { return f.responses.Clone() }

// Pending returns the stored answer of the current question, if any, so a
// revisited question can show its previous answer.
func (f *Flow) Pending() (interview.Answer, bool) {
	q, ok := f.Current()
	if !ok {
		return interview.Answer{}, false
	}
	return f.responses.Get(q.ID)
}

// IntroDone moves from the section intro to its first visible question. A
// section with no visible question goes straight to its reaction.
func (f *Flow) IntroDone() error {
	if f.complete {
		return ErrComplete
	}
	if f.phase.Kind != KindIntro {
		return ErrNotAtIntro
	}
	if len(f.Visible()) == 0 {
		f.phase = Reaction(f.phase.Section)
		return nil
	}
	f.phase = AtQuestion(f.phase.Section, 0)
	return nil
}

// Answer records a for the current question and moves to the question that
// now follows it. The follower is found by the answered question's id in the
// freshly recomputed visible set, never by reusing the old index.
func (f *Flow) Answer(a interview.Answer) error {
	if f.complete {
		return ErrComplete
	}
	q, ok := f.Current()
	if !ok {
		return ErrNotAtQuestion
	}
	if err := CheckAnswer(q, a); err != nil {
		return err
	}
	f.responses.Set(q.ID, a)

	next, ok := interview.NextAfter(f.Section(), f.responses, q.ID)
	if !ok {
		f.phase = Reaction(f.phase.Section)
		return nil
	}
	f.phase = AtQuestion(f.phase.Section, next)
	return nil
}

// ReactionDone leaves the section reaction. It returns true when that was
// the last section and the flow is now complete.
func (f *Flow) ReactionDone() (bool, error) {
	if f.complete {
		return true, ErrComplete
	}
	if f.phase.Kind != KindReaction {
		return false, ErrNotAtReaction
	}
	if f.phase.Section+1 < len(f.sections) {
		f.phase = Intro(f.phase.Section + 1)
		return false, nil
	}
	f.complete = true
	return true, nil
}

// Back steps to the previous phase without touching any answer.
func (f *Flow) Back() error {
	if f.complete {
		return ErrComplete
	}
	p := f.phase
	switch p.Kind {
	case KindQuestion:
		if p.Question > 0 {
			f.phase = AtQuestion(p.Section, p.Question-1)
		} else {
			f.phase = Intro(p.Section)
		}
	case KindIntro:
		if p.Section == 0 {
			return ErrAtStart
		}
		f.phase = Reaction(p.Section - 1)
	case KindReaction:
		n := len(f.Visible())
		if n == 0 {
			f.phase = Intro(p.Section)
		} else {
			f.phase = AtQuestion(p.Section, n-1)
		}
	}
	return nil
}
