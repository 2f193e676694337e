package interview

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrUnknownQuestion  = errors.New("condition references unknown question")
	ErrForwardReference = errors.New("condition references a later or cross-section question")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrNoFallback       = errors.New("rule table has no catch-all rule")
	ErrNoOptions        = errors.New("select question has no options")
	ErrEmptySection     = errors.New("section may resolve to no visible questions")
	ErrInvalidKind      = errors.New("invalid input kind")
	// ErrInvalidText is returned for display text that is not valid UTF-8.
	// Revealed text is stepped rune by rune and must round-trip unchanged.
	ErrInvalidText = errors.New("text is not valid UTF-8")
)

// Validate checks a questionnaire for configuration defects. These are not
// user-recoverable and should stop the process at startup.
func Validate(sections []Section) error {
	var errs []error
	sectionIDs := make(map[string]bool)
	owner := make(map[string]string)

	for _, s := range sections {
		for _, q := range s.Questions {
			owner[q.ID] = s.ID
		}
	}

	for _, s := range sections {
		if s.ID == "" {
			errs = append(errs, errors.New("section without id"))
		}
		if sectionIDs[s.ID] {
			errs = append(errs, fmt.Errorf("section %q: %w", s.ID, ErrDuplicateID))
		}
		sectionIDs[s.ID] = true
		if !utf8.ValidString(s.Title) || !utf8.ValidString(s.Intro) {
			errs = append(errs, fmt.Errorf("section %q: %w", s.ID, ErrInvalidText))
		}

		seen := make(map[string]bool)
		unconditional := false
		for _, q := range s.Questions {
			if seen[q.ID] || owner[q.ID] != s.ID {
				errs = append(errs, fmt.Errorf("question %q: %w", q.ID, ErrDuplicateID))
			}
			if !q.Kind.Valid() {
				errs = append(errs, fmt.Errorf("question %q kind %q: %w", q.ID, q.Kind, ErrInvalidKind))
			}
			if !utf8.ValidString(q.Prompt) || !utf8.ValidString(q.SkipLabel) {
				errs = append(errs, fmt.Errorf("question %q: %w", q.ID, ErrInvalidText))
			}
			for _, o := range q.Options {
				if !utf8.ValidString(o.Label) {
					errs = append(errs, fmt.Errorf("question %q option %q: %w", q.ID, o.Value, ErrInvalidText))
				}
			}
			if q.Kind.IsSelect() && len(q.Options) == 0 {
				errs = append(errs, fmt.Errorf("question %q: %w", q.ID, ErrNoOptions))
			}
			for _, ref := range q.Condition.Refs() {
				switch {
				case owner[ref] == "":
					errs = append(errs, fmt.Errorf("question %q -> %q: %w", q.ID, ref, ErrUnknownQuestion))
				case owner[ref] != s.ID || !seen[ref]:
					errs = append(errs, fmt.Errorf("question %q -> %q: %w", q.ID, ref, ErrForwardReference))
				}
			}
			if q.Condition == nil || q.Condition.empty() {
				unconditional = true
			}
			seen[q.ID] = true
		}
		if !unconditional {
			errs = append(errs, fmt.Errorf("section %q: %w", s.ID, ErrEmptySection))
		}
		if err := s.Reaction.validate(); err != nil {
			errs = append(errs, fmt.Errorf("section %q reaction: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}
