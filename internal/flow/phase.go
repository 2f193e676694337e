// Package flow sequences the questions of the interview one section at a
// time: section intro, each visible question, then the section reaction.
package flow

import (
	"encoding/json"
	"fmt"
)

type PhaseKind string

const (
	KindIntro    PhaseKind = "intro"
	KindQuestion PhaseKind = "question"
	KindReaction PhaseKind = "reaction"
)

// Phase is the flow's position. For KindQuestion, Question indexes the
// currently visible questions of Section, not the static list.
type Phase struct {
	Kind     PhaseKind `json:"kind"`
	Section  int       `json:"section"`
	Question int       `json:"question"`
}

func Intro(section int) Phase { return Phase{Kind: KindIntro, Section: section} }

func AtQuestion(section, question int) Phase {
	return Phase{Kind: KindQuestion, Section: section, Question: question}
}

func Reaction(section int) Phase { return Phase{Kind: KindReaction, Section: section} }

func (p Phase) String() string {
	switch p.Kind {
	case KindQuestion:
		return fmt.Sprintf("question(%d,%d)", p.Section, p.Question)
	default:
		return fmt.Sprintf("%s(%d)", p.Kind, p.Section)
	}
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	type raw Phase
	var v raw
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case KindIntro, KindQuestion, KindReaction:
	default:
		return fmt.Errorf("unknown phase kind %q", v.Kind)
	}
	*p = Phase(v)
	return nil
}
