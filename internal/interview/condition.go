package interview

import "slices"

// Condition is a pure predicate over Responses. A leaf condition tests the
// answer of one earlier question; All and Any combine nested conditions.
// Every populated field of a leaf must hold.
type Condition struct {
	Question string   `yaml:"question,omitempty"`
	In       []string `yaml:"in,omitempty"`
	NotIn    []string `yaml:"notIn,omitempty"`
	Includes []string `yaml:"includes,omitempty"`
	Answered *bool    `yaml:"answered,omitempty"`

	All []Condition `yaml:"all,omitempty"`
	Any []Condition `yaml:"any,omitempty"`
}

// Is holds when id was answered with one of vs.
func Is(id string, vs ...string) *Condition {
	return &Condition{Question: id, In: vs}
}

// IsNot holds when id was not answered with any of vs, including when it
// was not answered at all.
func IsNot(id string, vs ...string) *Condition {
	return &Condition{Question: id, NotIn: vs}
}

// Has holds when id's answer contains any of vs. Meant for multi-select.
func Has(id string, vs ...string) *Condition {
	return &Condition{Question: id, Includes: vs}
}

func Answered(id string) *Condition {
	t := true
	return &Condition{Question: id, Answered: &t}
}

func AllOf(cs ...*Condition) *Condition {
	return &Condition{All: deref(cs)}
}

func AnyOf(cs ...*Condition) *Condition {
	return &Condition{Any: deref(cs)}
}

func deref(cs []*Condition) []Condition {
	out := make([]Condition, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

func (c *Condition) Eval(r Responses) bool {
	if c == nil {
		return true
	}
	if c.Question != "" && !c.evalLeaf(r) {
		return false
	}
	for i := range c.All {
		if !c.All[i].Eval(r) {
			return false
		}
	}
	if len(c.Any) > 0 && !slices.ContainsFunc(c.Any, func(sub Condition) bool { return sub.Eval(r) }) {
		return false
	}
	return true
}

func (c *Condition) evalLeaf(r Responses) bool {
	a, ok := r.Get(c.Question)
	if c.Answered != nil && ok != *c.Answered {
		return false
	}
	if len(c.In) > 0 {
		if !ok || !slices.ContainsFunc(c.In, a.Contains) {
			return false
		}
	}
	if len(c.NotIn) > 0 && ok && slices.ContainsFunc(c.NotIn, a.Contains) {
		return false
	}
	if len(c.Includes) > 0 {
		if !ok || !slices.ContainsFunc(c.Includes, a.Contains) {
			return false
		}
	}
	return true
}

// Refs lists every question id the condition reads, in traversal order.
func (c *Condition) Refs() []string {
	if c == nil {
		return nil
	}
	var refs []string
	if c.Question != "" {
		refs = append(refs, c.Question)
	}
	for i := range c.All {
		refs = append(refs, c.All[i].Refs()...)
	}
	for i := range c.Any {
		refs = append(refs, c.Any[i].Refs()...)
	}
	return refs
}

func (c *Condition) empty() bool {
	return c.Question == "" && len(c.All) == 0 && len(c.Any) == 0
}
