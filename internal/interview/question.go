package interview

import "slices"

type InputKind string

const (
	KindSingleSelect InputKind = "single-select"
	KindMultiSelect  InputKind = "multi-select"
	KindFreeText     InputKind = "free-text"
	KindPace         InputKind = "pace"
	KindDistance     InputKind = "distance"
	KindDate         InputKind = "date"
)

func (k InputKind) Valid() bool {
	switch k {
	case KindSingleSelect, KindMultiSelect, KindFreeText, KindPace, KindDistance, KindDate:
		return true
	}
	return false
}

// IsSelect reports whether answers are picked from the question's options.
func (k InputKind) IsSelect() bool {
	return k == KindSingleSelect || k == KindMultiSelect
}

// NoneValue is the exclusive "none of these" option of multi-select questions.
const NoneValue = "none"

// SkipValue is stored when a skippable question is skipped.
const SkipValue = "skip"

type Option struct {
	Value     string `yaml:"value" json:"value"`
	Label     string `yaml:"label" json:"label"`
	Exclusive bool   `yaml:"exclusive,omitempty" json:"exclusive,omitempty"`
}

type Question struct {
	ID        string     `yaml:"id" json:"id"`
	Prompt    string     `yaml:"prompt" json:"prompt"`
	Kind      InputKind  `yaml:"kind" json:"kind"`
	Options   []Option   `yaml:"options,omitempty" json:"options,omitempty"`
	SkipLabel string     `yaml:"skipLabel,omitempty" json:"skipLabel,omitempty"`
	Condition *Condition `yaml:"condition,omitempty" json:"-"`
}

// Visible reports whether q is shown under r. A nil condition is always true.
func (q Question) Visible(r Responses) bool {
	return q.Condition == nil || q.Condition.Eval(r)
}

func (q Question) Skippable() bool { return q.SkipLabel != "" }

func (q Question) Option(value string) (Option, bool) {
	i := slices.IndexFunc(q.Options, func(o Option) bool { return o.Value == value })
	if i < 0 {
		return Option{}, false
	}
	return q.Options[i], true
}

// LabelFor returns the display label of value, or value itself for
// free-form kinds and unknown options.
func (q Question) LabelFor(value string) string {
	if o, ok := q.Option(value); ok && o.Label != "" {
		return o.Label
	}
	return value
}

// Section is one ordered block of questions. Sections follow a fixed order;
// there is no branching between them.
type Section struct {
	ID        string     `yaml:"id" json:"id"`
	Title     string     `yaml:"title" json:"title"`
	Intro     string     `yaml:"intro" json:"intro"`
	Questions []Question `yaml:"questions" json:"questions"`
	Reaction  RuleTable  `yaml:"reaction" json:"-"`
}

// ReactionText renders the section's closing reaction for r.
func (s Section) ReactionText(r Responses, name string) string {
	return s.Reaction.Eval(r, name)
}

func (s Section) Question(id string) (Question, bool) {
	i := slices.IndexFunc(s.Questions, func(q Question) bool { return q.ID == id })
	if i < 0 {
		return Question{}, false
	}
	return s.Questions[i], true
}
