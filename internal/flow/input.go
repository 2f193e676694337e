package flow

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/NativeSquare/Cadence-sub000/internal/interview"
)

var (
	ErrInvalidAnswer = errors.New("invalid answer")
	ErrNotSkippable  = errors.New("question cannot be skipped")
	ErrNothingChosen = errors.New("no option selected")
)

const maxFreeText = 500

var (
	paceRe     = regexp.MustCompile(`^(\d{1,2}):([0-5]\d)\s*(?:/\s*(km|mi))?$`)
	distanceRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(km|mi)?$`)
)

// CheckAnswer verifies that a is a well-formed answer to q.
func CheckAnswer(q interview.Question, a interview.Answer) error {
	if a.IsZero() {
		return fmt.Errorf("%w: empty answer for %q", ErrInvalidAnswer, q.ID)
	}
	switch q.Kind {
	case interview.KindSingleSelect:
		if a.IsMulti() {
			return fmt.Errorf("%w: %q takes a single option", ErrInvalidAnswer, q.ID)
		}
		if _, ok := q.Option(a.Value()); !ok {
			return fmt.Errorf("%w: %q is not an option of %q", ErrInvalidAnswer, a.Value(), q.ID)
		}
	case interview.KindMultiSelect:
		if !a.IsMulti() {
			return fmt.Errorf("%w: %q takes a list of options", ErrInvalidAnswer, q.ID)
		}
		vs := a.Values()
		for _, v := range vs {
			o, ok := q.Option(v)
			if !ok {
				return fmt.Errorf("%w: %q is not an option of %q", ErrInvalidAnswer, v, q.ID)
			}
			if o.Exclusive && len(vs) > 1 {
				return fmt.Errorf("%w: %q excludes other options", ErrInvalidAnswer, v)
			}
		}
	default:
		if a.IsMulti() {
			return fmt.Errorf("%w: %q takes a single value", ErrInvalidAnswer, q.ID)
		}
		if a.Value() == interview.SkipValue && q.Skippable() {
			return nil
		}
		if _, err := ParseInput(q, a.Value()); err != nil {
			return err
		}
	}
	return nil
}

// ParseInput validates and normalises raw text for a free-form question.
func ParseInput(q interview.Question, raw string) (interview.Answer, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return interview.Answer{}, fmt.Errorf("%w: %q requires a value", ErrInvalidAnswer, q.ID)
	}
	switch q.Kind {
	case interview.KindFreeText:
		if utf8.RuneCountInString(raw) > maxFreeText {
			return interview.Answer{}, fmt.Errorf("%w: answer longer than %d characters", ErrInvalidAnswer, maxFreeText)
		}
		return interview.Single(raw), nil

	case interview.KindPace:
		m := paceRe.FindStringSubmatch(strings.ToLower(raw))
		if m == nil {
			return interview.Answer{}, fmt.Errorf("%w: pace must look like 5:30 or 5:30/km", ErrInvalidAnswer)
		}
		mins, _ := strconv.Atoi(m[1])
		if mins == 0 {
			return interview.Answer{}, fmt.Errorf("%w: pace is too fast", ErrInvalidAnswer)
		}
		out := fmt.Sprintf("%d:%s", mins, m[2])
		if m[3] != "" {
			out += "/" + m[3]
		}
		return interview.Single(out), nil

	case interview.KindDistance:
		m := distanceRe.FindStringSubmatch(strings.ToLower(raw))
		if m == nil {
			return interview.Answer{}, fmt.Errorf("%w: distance must be a number, optionally followed by km or mi", ErrInvalidAnswer)
		}
		d, err := strconv.ParseFloat(m[1], 64)
		if err != nil || d <= 0 {
			return interview.Answer{}, fmt.Errorf("%w: distance must be positive", ErrInvalidAnswer)
		}
		out := strconv.FormatFloat(d, 'f', -1, 64)
		if m[2] != "" {
			out += " " + m[2]
		}
		return interview.Single(out), nil

	case interview.KindDate:
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return interview.Answer{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidAnswer)
		}
		return interview.Single(d.Format(time.DateOnly)), nil

	case interview.KindSingleSelect:
		if _, ok := q.Option(raw); !ok {
			return interview.Answer{}, fmt.Errorf("%w: %q is not an option of %q", ErrInvalidAnswer, raw, q.ID)
		}
		return interview.Single(raw), nil
	}
	return interview.Answer{}, fmt.Errorf("%w: %q does not take typed input", ErrInvalidAnswer, q.ID)
}

// SkipAnswer returns the sentinel answer for a skippable question.
func SkipAnswer(q interview.Question) (interview.Answer, error) {
	if !q.Skippable() {
		return interview.Answer{}, fmt.Errorf("%w: %q", ErrNotSkippable, q.ID)
	}
	return interview.Single(interview.SkipValue), nil
}

// Selection holds the in-progress choices of a multi-select question. An
// exclusive option such as "none" clears every other choice and is cleared
// by choosing anything else.
type Selection struct {
	q      interview.Question
	chosen []string
}

func NewSelection(q interview.Question) *Selection {
	return &Selection{q: q}
}

// Seed pre-fills the selection from a previous answer.
func (s *Selection) Seed(a interview.Answer) {
	s.chosen = nil
	for _, v := range a.Values() {
		if _, ok := s.q.Option(v); ok {
			s.chosen = append(s.chosen, v)
		}
	}
}

func (s *Selection) QuestionID() string { return s.q.ID }

func (s *Selection) Toggle(value string) error {
	o, ok := s.q.Option(value)
	if !ok {
		return fmt.Errorf("%w: %q is not an option of %q", ErrInvalidAnswer, value, s.q.ID)
	}
	if i := slices.Index(s.chosen, value); i >= 0 {
		s.chosen = slices.Delete(s.chosen, i, i+1)
		return nil
	}
	if o.Exclusive {
		s.chosen = []string{value}
		return nil
	}
	s.chosen = slices.DeleteFunc(s.chosen, func(v string) bool {
		other, _ := s.q.Option(v)
		return other.Exclusive
	})
	s.chosen = append(s.chosen, value)
	s.sort()
	return nil
}

// sort keeps choices in the question's option order.
func (s *Selection) sort() {
	order := make(map[string]int, len(s.q.Options))
	for i, o := range s.q.Options {
		order[o.Value] = i
	}
	slices.SortFunc(s.chosen, func(a, b string) int { return order[a] - order[b] })
}

func (s *Selection) Chosen() []string { return slices.Clone(s.chosen) }

func (s *Selection) CanConfirm() bool { return len(s.chosen) > 0 }

func (s *Selection) Answer() (interview.Answer, error) {
	if !s.CanConfirm() {
		return interview.Answer{}, ErrNothingChosen
	}
	return interview.Multi(s.chosen...), nil
}
