// Package stream implements the typewriter reveal used to pace narrative
// text: a pure Reveal sequencer and a timer-driven Runner around it.
package stream

// State is a snapshot of a reveal. Revealed is always a prefix of Text and
// Done holds iff Revealed == Text.
type State struct {
	Gen      uint64 `json:"-"`
	Text     string `json:"text"`
	Revealed string `json:"revealed"`
	Started  bool   `json:"started"`
	Done     bool   `json:"done"`
}

// Reveal steps through text one rune at a time. It has no notion of time;
// Runner supplies the ticks.
type Reveal struct {
	text    []rune
	n       int
	started bool
	done    bool
}

// NewReveal steps through text by rune. Invalid UTF-8 bytes become U+FFFD,
// so callers pass validated text; catalog and rule validation reject
// anything else.
func NewReveal(text string) *Reveal {
	return &Reveal{text: []rune(text)}
}

// Start marks the reveal started. Empty text is done immediately.
func (r *Reveal) Start() {
	r.started = true
	if len(r.text) == 0 {
		r.done = true
	}
}

// Tick reveals one more rune. It returns false when nothing changed.
func (r *Reveal) Tick() bool {
	if !r.started || r.done {
		return false
	}
	r.n++
	if r.n >= len(r.text) {
		r.n = len(r.text)
		r.done = true
	}
	return true
}

// Finish reveals the remaining text at once.
func (r *Reveal) Finish() {
	r.started = true
	r.n = len(r.text)
	r.done = true
}

func (r *Reveal) Started() bool { return r.started }

func (r *Reveal) Done() bool { return r.done }

func (r *Reveal) State() State {
	return State{
		Text:     string(r.text),
		Revealed: string(r.text[:r.n]),
		Started:  r.started,
		Done:     r.done,
	}
}
