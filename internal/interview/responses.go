// Package interview defines the onboarding questionnaire domain: answers,
// questions, sections, visibility conditions and narrative rule tables.
// It has no external dependencies beyond YAML decoding of catalogs.
package interview

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Answer is a single token or, for multi-select questions, an ordered list
// of tokens.
type Answer struct {
	values []string
	multi  bool
}

func Single(v string) Answer {
	return Answer{values: []string{v}}
}

func Multi(vs ...string) Answer {
	return Answer{values: slices.Clone(vs), multi: true}
}

func (a Answer) IsMulti() bool { return a.multi }

// Value returns the single token, or the first token of a multi answer.
func (a Answer) Value() string {
	if len(a.values) == 0 {
		return ""
	}
	return a.values[0]
}

func (a Answer) Values() []string { return slices.Clone(a.values) }

func (a Answer) Contains(v string) bool { return slices.Contains(a.values, v) }

func (a Answer) IsZero() bool { return len(a.values) == 0 }

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		vs := a.values
		if vs == nil {
			vs = []string{}
		}
		return json.Marshal(vs)
	}
	return json.Marshal(a.Value())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Single(s)
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("answer must be a string or a list of strings: %w", err)
	}
	*a = Multi(vs...)
	return nil
}

// Responses accumulates interview answers keyed by question id. A later
// answer for the same id replaces the earlier one; nothing is ever removed.
type Responses map[string]Answer

func NewResponses() Responses { return make(Responses) }

func (r Responses) Get(id string) (Answer, bool) {
	a, ok := r[id]
	return a, ok
}

func (r Responses) Has(id string) bool {
	_, ok := r[id]
	return ok
}

func (r Responses) Set(id string, a Answer) { r[id] = a }

// Equals reports whether id holds a single answer equal to v.
func (r Responses) Equals(id, v string) bool {
	a, ok := r[id]
	return ok && !a.multi && a.Value() == v
}

// Includes reports whether id's answer contains v, single or multi.
func (r Responses) Includes(id, v string) bool {
	a, ok := r[id]
	return ok && a.Contains(v)
}

func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for k, v := range r {
		out[k] = Answer{values: slices.Clone(v.values), multi: v.multi}
	}
	return out
}
