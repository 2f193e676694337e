// Package session runs one live interview: it reveals the orchestrator's
// cues on a clock, applies user actions and executes external effects.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/flow"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
	"github.com/NativeSquare/Cadence-sub000/internal/stream"
)

var (
	ErrClosed        = errors.New("session is closed")
	ErrNoQuestion    = errors.New("no question is being asked")
	ErrNotSelectable = errors.New("question has no options")
	ErrNeedsConfirm  = errors.New("multi-select answers are confirmed, not submitted")
)

type Options struct {
	ID    string
	Scene scene.Options
	// Stream paces the text reveal.
	Stream stream.Options
	Clock  clock.Clock
	Logger *slog.Logger

	Connector device.Connector
	// SubmitName persists a confirmed name. Nil accepts every name.
	SubmitName func(ctx context.Context, name string) error
	// EffectTimeout bounds each external effect. Zero means no bound.
	EffectTimeout time.Duration

	OnSectionFlowComplete func(interview.Responses)
	OnInterviewComplete   func(interview.Responses)
	// OnChange receives a snapshot after every state change.
	OnChange func(Snapshot)
	// OnReveal receives every reveal update of the current cue.
	OnReveal func(Reveal)
}

// Session is safe for concurrent use. Callbacks and effects run without the
// session lock held.
type Session struct {
	id     string
	opts   Options
	clk    clock.Clock
	logger *slog.Logger
	runner *stream.Runner

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	orch      *scene.Orchestrator
	cue       scene.Cue
	reveal    stream.State
	pause     *clock.Timer
	autoTimer *clock.Timer
	selection *flow.Selection
	tapped    string
	version   uint64
	closed    bool
}

func New(opts Options) (*Session, error) {
	orch, err := scene.New(opts.Scene)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     opts.ID,
		opts:   opts,
		clk:    opts.Clock,
		logger: opts.Logger.With("interview", opts.ID),
		orch:   orch,
		ctx:    ctx,
		cancel: cancel,
	}
	s.runner = stream.NewRunner(opts.Clock, opts.Stream, s.onReveal)

	s.mu.Lock()
	rv := s.syncLocked()
	s.mu.Unlock()
	s.after(rv, nil)
	return s, nil
}

func (s *Session) ID() string { return s.id }

// syncLocked plays the orchestrator's cue if it changed since the last call.
// It returns the reveal update to publish, if any.
func (s *Session) syncLocked() *Reveal {
	c, ok := s.orch.Cue()
	if !ok {
		s.stopTimersLocked()
		s.runner.Stop()
		s.cue = scene.Cue{}
		s.reveal = stream.State{}
		return nil
	}
	if c.Key == s.cue.Key {
		return nil
	}
	s.stopTimersLocked()
	s.cue = c
	s.tapped = ""
	s.selection = nil
	if q, ok := s.currentQuestionLocked(); ok && q.Kind == interview.KindMultiSelect {
		s.selection = flow.NewSelection(q)
		if f, ok := s.orch.Flow(); ok {
			if a, ok := f.Pending(); ok {
				s.selection.Seed(a)
			}
		}
	}
	st := s.runner.Play(c.Text)
	s.reveal = st
	if st.Done {
		s.revealDoneLocked()
	}
	s.logger.Debug("cue", "scene", s.orch.Scene().ID(), "key", c.Key)
	return &Reveal{Key: c.Key, State: st}
}

func (s *Session) stopTimersLocked() {
	if s.pause != nil {
		s.pause.Stop()
		s.pause = nil
	}
	if s.autoTimer != nil {
		s.autoTimer.Stop()
		s.autoTimer = nil
	}
}

// revealDoneLocked waits the cue's pause and then reports it done.
func (s *Session) revealDoneLocked() {
	key := s.cue.Key
	if s.pause != nil {
		s.pause.Stop()
	}
	s.pause = s.clk.AfterFunc(s.cue.Pause, func() { s.cueElapsed(key) })
}

func (s *Session) onReveal(st stream.State) {
	s.mu.Lock()
	if s.closed || !s.runner.IsCurrent(st.Gen) {
		s.mu.Unlock()
		return
	}
	s.reveal = st
	if st.Done {
		s.revealDoneLocked()
	}
	key := s.cue.Key
	s.mu.Unlock()
	if s.opts.OnReveal != nil {
		s.opts.OnReveal(Reveal{Key: key, State: st})
	}
	if st.Done {
		s.notify()
	}
}

func (s *Session) cueElapsed(key string) {
	s.mu.Lock()
	if s.closed || key != s.cue.Key {
		s.mu.Unlock()
		return
	}
	effects, err := s.orch.CueDone(key)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("cue done", "key", key, "error", err)
		return
	}
	rv := s.syncLocked()
	s.mu.Unlock()
	s.after(rv, effects)
}

// after publishes a new reveal, runs effects and broadcasts the new state.
func (s *Session) after(rv *Reveal, effects []scene.Effect) {
	s.publish(rv)
	s.run(effects)
	s.notify()
}

func (s *Session) publish(rv *Reveal) {
	if rv == nil || s.opts.OnReveal == nil {
		return
	}
	s.opts.OnReveal(*rv)
}

// notify bumps the version and hands the new snapshot to OnChange.
func (s *Session) notify() {
	s.mu.Lock()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if s.opts.OnChange != nil {
		s.opts.OnChange(snap)
	}
}

// do applies fn to the orchestrator under the lock, then syncs the cue and
// runs any effects.
func (s *Session) do(fn func() ([]scene.Effect, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	effects, err := fn()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	rv := s.syncLocked()
	s.mu.Unlock()
	s.after(rv, effects)
	return nil
}

func (s *Session) currentQuestionLocked() (interview.Question, bool) {
	f, ok := s.orch.Flow()
	if !ok {
		return interview.Question{}, false
	}
	return f.Current()
}

func (s *Session) ConfirmName(name string, edited bool) error {
	return s.do(func() ([]scene.Effect, error) { return s.orch.ConfirmName(name, edited) })
}

// Select taps an option. A single-select answer is recorded after the
// auto-advance delay; tapping another option first replaces it. A
// multi-select option is toggled and waits for Confirm.
func (s *Session) Select(value string) error {
	return s.do(func() ([]scene.Effect, error) {
		q, ok := s.currentQuestionLocked()
		if !ok {
			return nil, ErrNoQuestion
		}
		switch q.Kind {
		case interview.KindMultiSelect:
			return nil, s.selection.Toggle(value)
		case interview.KindSingleSelect:
		default:
			return nil, ErrNotSelectable
		}
		if _, ok := q.Option(value); !ok {
			return nil, fmt.Errorf("%w: %q is not an option of %s", flow.ErrInvalidAnswer, value, q.ID)
		}
		if s.autoTimer != nil {
			s.autoTimer.Stop()
		}
		s.tapped = value
		key := s.cue.Key
		s.autoTimer = s.clk.AfterFunc(s.orch.Timing().AutoAdvance, func() { s.autoAnswer(key, value) })
		return nil, nil
	})
}

func (s *Session) autoAnswer(key, value string) {
	err := s.do(func() ([]scene.Effect, error) {
		if key != s.cue.Key {
			return nil, scene.ErrStaleCue
		}
		return nil, s.orch.Answer(interview.Single(value))
	})
	if err != nil && !errors.Is(err, scene.ErrStaleCue) && !errors.Is(err, ErrClosed) {
		s.logger.Warn("auto answer", "value", value, "error", err)
	}
}

// Confirm records the multi-select choice.
func (s *Session) Confirm() error {
	return s.do(func() ([]scene.Effect, error) {
		if s.selection == nil {
			return nil, ErrNoQuestion
		}
		a, err := s.selection.Answer()
		if err != nil {
			return nil, err
		}
		return nil, s.orch.Answer(a)
	})
}

// Submit records typed input for a free-text, pace, distance or date
// question.
func (s *Session) Submit(raw string) error {
	return s.do(func() ([]scene.Effect, error) {
		q, ok := s.currentQuestionLocked()
		if !ok {
			return nil, ErrNoQuestion
		}
		if q.Kind == interview.KindMultiSelect {
			return nil, ErrNeedsConfirm
		}
		a, err := flow.ParseInput(q, raw)
		if err != nil {
			return nil, err
		}
		return nil, s.orch.Answer(a)
	})
}

func (s *Session) Skip() error {
	return s.do(func() ([]scene.Effect, error) {
		q, ok := s.currentQuestionLocked()
		if !ok {
			return nil, ErrNoQuestion
		}
		a, err := flow.SkipAnswer(q)
		if err != nil {
			return nil, err
		}
		return nil, s.orch.Answer(a)
	})
}

func (s *Session) Back() error {
	return s.do(func() ([]scene.Effect, error) { return nil, s.orch.Back() })
}

// FinishReveal shows the rest of the current cue at once.
func (s *Session) FinishReveal() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	st, changed := s.runner.Finish()
	if !changed {
		s.mu.Unlock()
		return nil
	}
	s.reveal = st
	s.revealDoneLocked()
	rv := &Reveal{Key: s.cue.Key, State: st}
	s.mu.Unlock()
	s.after(rv, nil)
	return nil
}

// Connect starts a wearable connection. While the connector reports itself
// unavailable the call fails with device.ErrUnavailable and the scene is left
// as it was.
func (s *Session) Connect(provider string) error {
	return s.do(func() ([]scene.Effect, error) {
		if a, ok := s.opts.Connector.(device.Availability); ok && s.canConnectLocked() {
			if err := a.Available(); err != nil {
				return nil, fmt.Errorf("connect %s: %w", provider, err)
			}
		}
		return s.orch.BeginConnect(provider)
	})
}

func (s *Session) SkipConnect() error {
	return s.do(func() ([]scene.Effect, error) { return nil, s.orch.SkipConnect() })
}

func (s *Session) canConnectLocked() bool {
	if s.orch.Scene() != scene.Wearable {
		return false
	}
	st := s.orch.Connection().Status
	return st == scene.ConnectIdle || st == scene.ConnectFailed
}

// Complete runs the handoff terminal action.
func (s *Session) Complete() error {
	return s.do(s.orch.Complete)
}

func (s *Session) run(effects []scene.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case scene.SubmitName:
			s.spawn(func(ctx context.Context) { s.submitName(ctx, e.Name) })
		case scene.Connect:
			s.spawn(func(ctx context.Context) { s.connect(ctx, e.Provider) })
		case scene.SectionFlowComplete:
			s.logger.Info("section flow complete", "answers", len(e.Responses))
			if s.opts.OnSectionFlowComplete != nil {
				s.opts.OnSectionFlowComplete(e.Responses)
			}
		case scene.InterviewComplete:
			s.logger.Info("interview complete")
			if s.opts.OnInterviewComplete != nil {
				s.opts.OnInterviewComplete(e.Responses)
			}
		}
	}
}

func (s *Session) spawn(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		ctx := s.ctx
		if s.opts.EffectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.EffectTimeout)
			defer cancel()
		}
		fn(ctx)
	}()
}

func (s *Session) submitName(ctx context.Context, name string) {
	var err error
	if s.opts.SubmitName != nil {
		err = s.opts.SubmitName(ctx, name)
	}
	if err != nil {
		s.logger.Warn("submit name failed", "error", err)
	}
	resolveErr := s.do(func() ([]scene.Effect, error) { return s.orch.NameSubmitted(err) })
	if resolveErr != nil && !errors.Is(resolveErr, ErrClosed) {
		s.logger.Warn("name resolution dropped", "error", resolveErr)
	}
}

func (s *Session) connect(ctx context.Context, provider string) {
	var (
		res *device.ConnectionResult
		err error
	)
	if s.opts.Connector == nil {
		err = fmt.Errorf("%w: no connector configured", device.ErrUnavailable)
	} else {
		res, err = s.opts.Connector.Connect(ctx, provider)
	}
	if err != nil {
		s.logger.Warn("device connect failed", "provider", provider, "error", err)
	}
	resolveErr := s.do(func() ([]scene.Effect, error) { return nil, s.orch.ConnectResolved(res, err) })
	if errors.Is(resolveErr, scene.ErrNotPending) {
		s.logger.Info("late device connection ignored", "provider", provider)
	}
}

// ResumeState returns the data needed to rebuild this session later.
func (s *Session) ResumeState() (scene.Resume, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch.ResumeState()
}

func (s *Session) Responses() interview.Responses {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch.Responses()
}

// Close stops all timers and waits for running effects to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimersLocked()
	s.runner.Stop()
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
