package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/flow"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
	"github.com/NativeSquare/Cadence-sub000/internal/session"
	"github.com/NativeSquare/Cadence-sub000/internal/stream"
)

var errInterviewComplete = errors.New("interview is already complete")

const storeTimeout = 5 * time.Second

// Engine holds what every session of this process shares.
type Engine struct {
	Sections  []interview.Section
	Timing    scene.Timing
	Stream    stream.Options
	Connector device.Connector
	// Providers lists the device providers clients may connect.
	Providers     []string
	Clock         clock.Clock
	EffectTimeout time.Duration
}

// Registry owns the live interview sessions of this process.
type Registry struct {
	store  Store
	broker *Broker
	engine Engine
	logger *slog.Logger

	mu   sync.RWMutex
	live map[string]*session.Session
}

func NewRegistry(store Store, broker *Broker, engine Engine, logger *slog.Logger) *Registry {
	if engine.Clock == nil {
		engine.Clock = clock.New()
	}
	return &Registry{
		store:  store,
		broker: broker,
		engine: engine,
		logger: logger,
		live:   make(map[string]*session.Session),
	}
}

type CreateInterviewRequest struct {
	Name        string `json:"name"`
	AutoConnect string `json:"autoConnect,omitempty"`
}

// Create persists a new interview and starts its session.
func (r *Registry) Create(ctx context.Context, req CreateInterviewRequest) (*session.Session, error) {
	if req.AutoConnect != "" && !r.KnownProvider(req.AutoConnect) {
		return nil, fmt.Errorf("%w: %q", device.ErrUnknownProvider, req.AutoConnect)
	}
	rec := InterviewRecord{
		ID:          uuid.NewString(),
		Status:      StatusActive,
		Name:        req.Name,
		AutoConnect: req.AutoConnect,
	}
	if err := r.store.CreateInterview(ctx, rec); err != nil {
		return nil, err
	}

	s, err := r.start(rec)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.live[rec.ID] = s
	r.mu.Unlock()
	r.logger.Info("interview created", "interview", rec.ID)
	return s, nil
}

// Get returns the live session for id.
func (r *Registry) Get(id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.live[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Resume returns the live session for id, restarting it from its stored
// checkpoint when the process no longer holds it.
func (r *Registry) Resume(ctx context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	s, ok := r.live[id]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if s, ok := r.live[id]; ok {
		return s, nil
	}

	rec, err := r.store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == StatusComplete {
		return nil, errInterviewComplete
	}
	s, err = r.start(rec)
	if err != nil {
		return nil, err
	}
	r.live[id] = s
	r.logger.Info("interview resumed", "interview", id, "checkpoint", rec.Checkpoint != nil)
	return s, nil
}

// Release stops the live session for id. The stored interview is kept.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	s, ok := r.live[id]
	delete(r.live, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

func (r *Registry) KnownProvider(p string) bool {
	return len(r.engine.Providers) == 0 || slices.Contains(r.engine.Providers, p)
}

func (r *Registry) Providers() []string { return slices.Clone(r.engine.Providers) }

func (r *Registry) Close() error {
	r.mu.Lock()
	live := r.live
	r.live = make(map[string]*session.Session)
	r.mu.Unlock()

	for _, s := range live {
		s.Close()
	}
	return nil
}

func (r *Registry) start(rec InterviewRecord) (*session.Session, error) {
	id := rec.ID
	logger := r.logger.With("interview", id)
	cp := &checkpointer{store: r.store, id: id, logger: logger, clk: r.engine.Clock}
	// A connection restored from the checkpoint is already recorded.
	if c := rec.Checkpoint; c != nil && c.Connection != nil {
		cp.connected = c.Connection.Status == scene.ConnectConnected
	}

	s, err := session.New(session.Options{
		ID: id,
		Scene: scene.Options{
			Sections:    r.engine.Sections,
			Timing:      r.engine.Timing,
			Name:        rec.Name,
			AutoConnect: rec.AutoConnect,
			Resume:      rec.Checkpoint,
		},
		Stream:        r.engine.Stream,
		Clock:         r.engine.Clock,
		Logger:        r.logger,
		Connector:     r.engine.Connector,
		EffectTimeout: r.engine.EffectTimeout,
		SubmitName: func(ctx context.Context, name string) error {
			return r.store.SaveName(ctx, id, name)
		},
		OnSectionFlowComplete: func(resp interview.Responses) {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if err := r.store.SaveResponses(ctx, id, resp); err != nil {
				logger.Error("saving responses", "error", err)
			}
		},
		OnInterviewComplete: func(resp interview.Responses) {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if err := r.store.CompleteInterview(ctx, id, resp); err != nil {
				logger.Error("completing interview", "error", err)
			}
		},
		OnChange: func(snap session.Snapshot) {
			r.broker.Publish(id, Event{Type: EventState, State: &snap})
			cp.observe(snap)
		},
		OnReveal: func(rv session.Reveal) {
			r.broker.Publish(id, Event{Type: EventReveal, Reveal: &rv})
		},
	})
	if err != nil {
		return nil, err
	}
	cp.sess.Store(s)
	// The first snapshot was published before the session existed.
	cp.observe(s.Snapshot())
	return s, nil
}

// checkpointer persists the resume position whenever the interview moves to
// a new scene, phase or narrative block, and records device connections.
type checkpointer struct {
	store  Store
	id     string
	logger *slog.Logger
	clk    clock.Clock
	sess   atomic.Pointer[session.Session]

	mu        sync.Mutex
	version   uint64
	position  string
	connected bool
}

func position(snap session.Snapshot) string {
	var phase flow.Phase
	if snap.Phase != nil {
		phase = *snap.Phase
	}
	return fmt.Sprintf("%s/%s/%d/%d/%d/%s", snap.Scene.ID(), phase.Kind, phase.Section, phase.Question, snap.Block, snap.Connection.Status)
}

func (c *checkpointer) observe(snap session.Snapshot) {
	s := c.sess.Load()
	if s == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if snap.Version < c.version {
		return
	}
	c.version = snap.Version

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if snap.Connection.Status == scene.ConnectConnected && !c.connected {
		c.connected = true
		res := device.ConnectionResult{
			Provider:    snap.Connection.Provider,
			DeviceName:  snap.Connection.Device,
			ConnectedAt: c.clk.Now(),
		}
		if err := c.store.RecordConnection(ctx, c.id, res); err != nil {
			c.logger.Error("recording device connection", "error", err)
		}
	}

	pos := position(snap)
	if pos == c.position {
		return
	}
	resume, ok := s.ResumeState()
	if !ok {
		return
	}
	if err := c.store.SaveCheckpoint(ctx, c.id, resume); err != nil {
		c.logger.Error("saving checkpoint", "error", err)
		return
	}
	c.position = pos
	c.logger.Debug("checkpoint saved", "scene", resume.Scene.ID())
}
