package flow

import "github.com/NativeSquare/Cadence-sub000/internal/interview"

// Progress returns the completed fraction of the whole questionnaire in
// [0, 1].
//
// Every section's size is its visible-question count under the current
// responses, including sections not reached yet. Their conditional
// questions resolve as if unanswered, so a later section may be under- or
// over-counted until it is reached.
func Progress(sections []interview.Section, responses interview.Responses, phase Phase) float64 {
	var answered, total int
	for i, s := range sections {
		n := len(interview.VisibleQuestions(s, responses))
		total += n
		switch {
		case i < phase.Section:
			answered += n
		case i == phase.Section && phase.Kind == KindQuestion:
			answered += min(phase.Question, n)
		case i == phase.Section && phase.Kind == KindReaction:
			answered += n
		}
	}
	if total == 0 {
		return 0
	}
	return min(float64(answered)/float64(total), 1)
}

// Progress reports the flow's completion fraction.
func (f *Flow) Progress() float64 {
	if f.complete {
		return 1
	}
	return Progress(f.sections, f.responses, f.phase)
}
