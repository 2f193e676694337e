package interview

import (
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// Rule pairs a predicate with a text template. A nil When always matches.
type Rule struct {
	When *Condition `yaml:"when,omitempty"`
	Text string     `yaml:"text"`
}

// RuleTable is an ordered list of rules evaluated first-match-wins. The last
// rule must be an unconditional catch-all so every table yields content.
type RuleTable struct {
	Name  string `yaml:"name,omitempty"`
	Rules []Rule `yaml:"rules"`
}

func Table(name string, rules ...Rule) RuleTable {
	return RuleTable{Name: name, Rules: rules}
}

func When(c *Condition, text string) Rule { return Rule{When: c, Text: text} }

func Otherwise(text string) Rule { return Rule{Text: text} }

// Eval renders the first matching rule. Rules that render to blank text are
// passed over so a table never produces empty content.
func (t RuleTable) Eval(r Responses, name string) string {
	data := TemplateData{Name: name, responses: r}
	for _, rule := range t.Rules {
		if !rule.When.Eval(r) {
			continue
		}
		if out := strings.TrimSpace(render(rule.Text, data)); out != "" {
			return out
		}
	}
	return ""
}

// TemplateData is the dot value of rule templates.
type TemplateData struct {
	Name      string
	responses Responses
}

// Answer returns the single answer of id, or the first token of a multi answer.
func (d TemplateData) Answer(id string) string {
	a, _ := d.responses.Get(id)
	return a.Value()
}

// List joins a multi answer with commas.
func (d TemplateData) List(id string) string {
	a, _ := d.responses.Get(id)
	return strings.Join(a.Values(), ", ")
}

func (d TemplateData) Has(id, v string) bool {
	return d.responses.Includes(id, v)
}

func (d TemplateData) Count(id string) int {
	a, _ := d.responses.Get(id)
	return len(a.Values())
}

func parseRule(text string) (*template.Template, error) {
	return template.New("rule").Option("missingkey=zero").Parse(text)
}

func render(text string, data TemplateData) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	tmpl, err := parseRule(text)
	if err != nil {
		return text
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return text
	}
	return b.String()
}

func (t RuleTable) validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("rule table %q: %w", t.Name, ErrNoFallback)
	}
	last := t.Rules[len(t.Rules)-1]
	if last.When != nil && !last.When.empty() {
		return fmt.Errorf("rule table %q: %w", t.Name, ErrNoFallback)
	}
	if strings.TrimSpace(last.Text) == "" {
		return fmt.Errorf("rule table %q: catch-all text is empty: %w", t.Name, ErrNoFallback)
	}
	for i, rule := range t.Rules {
		if !utf8.ValidString(rule.Text) {
			return fmt.Errorf("rule table %q rule %d: %w", t.Name, i, ErrInvalidText)
		}
		if _, err := parseRule(rule.Text); err != nil {
			return fmt.Errorf("rule table %q rule %d: %w", t.Name, i, err)
		}
	}
	return nil
}

// Validate reports a table without a catch-all, with a broken template or
// with text that is not valid UTF-8.
func (t RuleTable) Validate() error { return t.validate() }
