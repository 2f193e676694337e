package stream

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type Options struct {
	// Interval between revealed runes.
	Interval time.Duration
	// StartDelay before the first rune.
	StartDelay time.Duration
}

// DefaultOptions matches the pacing of the coach's typed lines.
func DefaultOptions() Options {
	return Options{Interval: 30 * time.Millisecond, StartDelay: 250 * time.Millisecond}
}

// Runner drives one Reveal at a time on a clock. Every Play or Stop starts a
// new generation; ticks scheduled by an older generation are dropped.
//
// onUpdate is only called from timer goroutines, one call at a time and in
// reveal order, never from Play, Stop or Finish; those return the resulting
// State instead so callers holding their own lock cannot deadlock. onUpdate
// runs without the runner's lock and may observe a state that a concurrent
// Stop has superseded. Callers that must not act on stale states compare
// State.Gen with IsCurrent under their own lock.
type Runner struct {
	clk      clock.Clock
	opts     Options
	onUpdate func(State)

	// deliver serializes onUpdate calls. Lock order: deliver, then mu.
	deliver sync.Mutex

	mu     sync.Mutex
	gen    uint64
	reveal *Reveal
	timer  *clock.Timer
}

func NewRunner(clk clock.Clock, opts Options, onUpdate func(State)) *Runner {
	if clk == nil {
		clk = clock.New()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultOptions().Interval
	}
	if onUpdate == nil {
		onUpdate = func(State) {}
	}
	return &Runner{clk: clk, opts: opts, onUpdate: onUpdate}
}

// Play resets the runner and reveals text from scratch: after StartDelay the
// reveal starts, then one rune appears per Interval until done. Empty text
// is started and done on return, with no timer scheduled.
func (r *Runner) Play(text string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
	r.reveal = NewReveal(text)
	g := r.gen

	if text == "" {
		r.reveal.Start()
		return r.stateLocked()
	}

	r.timer = r.clk.AfterFunc(r.opts.StartDelay, func() { r.start(g) })
	return r.stateLocked()
}

// Stop cancels any pending timer and returns the runner to the inactive state.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.cancelLocked()
	r.reveal = nil
	r.mu.Unlock()
}

// Finish reveals the rest of the current text immediately. changed is false
// when there was nothing left to reveal.
func (r *Runner) Finish() (st State, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reveal == nil || r.reveal.Done() {
		return r.stateLocked(), false
	}
	r.stopTimerLocked()
	r.reveal.Finish()
	return r.stateLocked(), true
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// IsCurrent reports whether gen is the generation currently playing.
func (r *Runner) IsCurrent(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reveal != nil && gen == r.gen
}

func (r *Runner) start(g uint64) {
	r.deliver.Lock()
	defer r.deliver.Unlock()

	r.mu.Lock()
	if g != r.gen || r.reveal == nil {
		r.mu.Unlock()
		return
	}
	r.reveal.Start()
	r.scheduleLocked(g)
	st := r.stateLocked()
	r.mu.Unlock()
	r.onUpdate(st)
}

func (r *Runner) tick(g uint64) {
	r.deliver.Lock()
	defer r.deliver.Unlock()

	r.mu.Lock()
	if g != r.gen || r.reveal == nil {
		r.mu.Unlock()
		return
	}
	if !r.reveal.Tick() {
		r.mu.Unlock()
		return
	}
	r.scheduleLocked(g)
	st := r.stateLocked()
	r.mu.Unlock()
	r.onUpdate(st)
}

func (r *Runner) scheduleLocked(g uint64) {
	r.timer = nil
	if r.reveal.Done() {
		return
	}
	r.timer = r.clk.AfterFunc(r.opts.Interval, func() { r.tick(g) })
}

func (r *Runner) cancelLocked() {
	r.stopTimerLocked()
	r.gen++
}

func (r *Runner) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Runner) stateLocked() State {
	if r.reveal == nil {
		return State{Gen: r.gen}
	}
	st := r.reveal.State()
	st.Gen = r.gen
	return st
}
