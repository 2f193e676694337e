package interview

import "slices"

// VisibleQuestions returns the questions of s that are shown under r, in
// static order. It is a single filter pass and must be called again after
// every change to r; visibility is never cached.
func VisibleQuestions(s Section, r Responses) []Question {
	visible := make([]Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		if q.Visible(r) {
			visible = append(visible, q)
		}
	}
	return visible
}

// IndexOf returns the position of id in visible, or -1.
func IndexOf(visible []Question, id string) int {
	return slices.IndexFunc(visible, func(q Question) bool { return q.ID == id })
}

// NextAfter resolves the question that follows id in the visible set of s
// under r. It re-anchors on id rather than on a numeric index, because the
// visible set may have grown or shrunk since id was shown. ok is false when
// id was the last visible question.
func NextAfter(s Section, r Responses, id string) (index int, ok bool) {
	visible := VisibleQuestions(s, r)
	j := IndexOf(visible, id) + 1
	if j <= 0 || j >= len(visible) {
		if j <= 0 && len(visible) > 0 {
			// id is hidden under r; fall back to the first visible question
			// that comes after it statically.
			return nextStatic(s, visible, id)
		}
		return len(visible), false
	}
	return j, true
}

func nextStatic(s Section, visible []Question, id string) (int, bool) {
	pos := slices.IndexFunc(s.Questions, func(q Question) bool { return q.ID == id })
	if pos < 0 {
		return len(visible), false
	}
	for _, q := range s.Questions[pos+1:] {
		if k := IndexOf(visible, q.ID); k >= 0 {
			return k, true
		}
	}
	return len(visible), false
}
