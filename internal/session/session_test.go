package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/flow"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
	"github.com/NativeSquare/Cadence-sub000/internal/stream"
)

func testSections() []interview.Section {
	return []interview.Section{
		{
			ID: "one", Title: "One", Intro: "First.",
			Questions: []interview.Question{
				{ID: "goal", Prompt: "Goal?", Kind: interview.KindSingleSelect, Options: []interview.Option{
					{Value: "race", Label: "Race"}, {Value: "fitness", Label: "Fitness"},
				}},
				{ID: "days", Prompt: "Days?", Kind: interview.KindMultiSelect, Options: []interview.Option{
					{Value: "mon"}, {Value: "tue"}, {Value: interview.NoneValue, Exclusive: true},
				}},
			},
			Reaction: interview.Table("one", interview.Otherwise("Nice.")),
		},
		{
			ID: "two", Title: "Two", Intro: "Second.",
			Questions: []interview.Question{
				{ID: "pace", Prompt: "Pace?", Kind: interview.KindPace, SkipLabel: "Not sure"},
			},
			Reaction: interview.Table("two", interview.Otherwise("Done.")),
		},
	}
}

type harness struct {
	t    *testing.T
	mock *clock.Mock
	s    *Session

	mu          sync.Mutex
	flowDone    []interview.Responses
	completed   []interview.Responses
	reveals     []Reveal
	lastVersion uint64
}

func newHarness(t *testing.T, configure func(*Options)) *harness {
	t.Helper()
	h := &harness{t: t, mock: clock.NewMock()}
	opts := Options{
		ID: "test",
		Scene: scene.Options{
			Sections: testSections(),
			Name:     "Sam",
			Timing: scene.Timing{
				BlockPause:     100 * time.Millisecond,
				SettleDelay:    100 * time.Millisecond,
				AutoAdvance:    400 * time.Millisecond,
				ConnectAdvance: 200 * time.Millisecond,
			},
		},
		Stream: stream.Options{Interval: 10 * time.Millisecond},
		Clock:  h.mock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnSectionFlowComplete: func(r interview.Responses) {
			h.mu.Lock()
			h.flowDone = append(h.flowDone, r)
			h.mu.Unlock()
		},
		OnInterviewComplete: func(r interview.Responses) {
			h.mu.Lock()
			h.completed = append(h.completed, r)
			h.mu.Unlock()
		},
		OnReveal: func(rv Reveal) {
			h.mu.Lock()
			h.reveals = append(h.reveals, rv)
			h.mu.Unlock()
		},
		OnChange: func(snap Snapshot) {
			h.mu.Lock()
			if snap.Version > h.lastVersion {
				h.lastVersion = snap.Version
			}
			h.mu.Unlock()
		},
	}
	if configure != nil {
		configure(&opts)
	}
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	h.s = s
	return h
}

// until advances the mock clock and skips reveals until cond holds.
func (h *harness) until(cond func(Snapshot) bool) Snapshot {
	h.t.Helper()
	var snap Snapshot
	require.Eventually(h.t, func() bool {
		_ = h.s.FinishReveal()
		h.mock.Add(50 * time.Millisecond)
		snap = h.s.Snapshot()
		return cond(snap)
	}, 10*time.Second, time.Millisecond)
	return snap
}

func atQuestion(id string) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Question != nil && s.Question.ID == id }
}

func inScene(sc scene.Scene) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Scene == sc }
}

func selected(q *QuestionView) []string {
	var out []string
	for _, o := range q.Options {
		if o.Selected {
			out = append(out, o.Value)
		}
	}
	return out
}

func TestSessionWalkthrough(t *testing.T) {
	h := newHarness(t, nil)
	snap := h.s.Snapshot()
	assert.Equal(t, scene.WelcomeIntro, snap.Scene)
	require.NotNil(t, snap.Cue)
	assert.Contains(t, snap.Cue.Text, "Sam")

	require.NoError(t, h.s.ConfirmName("Sam", false))
	h.until(atQuestion("goal"))

	require.NoError(t, h.s.Select("race"))
	snap = h.s.Snapshot()
	assert.Equal(t, []string{"race"}, selected(snap.Question))
	assert.ErrorIs(t, h.s.Select("walk"), flow.ErrInvalidAnswer)
	h.until(atQuestion("days"))

	require.NoError(t, h.s.Select("mon"))
	require.NoError(t, h.s.Select(interview.NoneValue))
	snap = h.s.Snapshot()
	assert.Equal(t, []string{interview.NoneValue}, selected(snap.Question))
	assert.True(t, snap.Question.CanConfirm)
	assert.ErrorIs(t, h.s.Submit("mon"), ErrNeedsConfirm)
	require.NoError(t, h.s.Confirm())

	snap = h.until(atQuestion("pace"))
	assert.Equal(t, "two", snap.Section.ID)
	assert.InDelta(t, 2.0/3, snap.Progress, 1e-9)

	assert.ErrorIs(t, h.s.Submit("fast"), flow.ErrInvalidAnswer)
	assert.ErrorIs(t, h.s.Select("fast"), ErrNotSelectable)
	require.NoError(t, h.s.Skip())

	snap = h.until(inScene(scene.Wearable))
	assert.Equal(t, 1.0, snap.Progress)
	h.mu.Lock()
	require.Len(t, h.flowDone, 1)
	r := h.flowDone[0]
	h.mu.Unlock()
	assert.Equal(t, "race", r["goal"].Value())
	assert.Equal(t, []string{interview.NoneValue}, r["days"].Values())
	assert.Equal(t, interview.SkipValue, r["pace"].Value())

	require.NoError(t, h.s.SkipConnect())
	h.until(func(s Snapshot) bool { return s.Scene == scene.Handoff && s.Cue != nil && s.Cue.Done })

	require.Eventually(t, func() bool {
		h.mock.Add(50 * time.Millisecond)
		return h.s.Complete() == nil
	}, 5*time.Second, time.Millisecond)

	snap = h.s.Snapshot()
	assert.True(t, snap.Complete)
	assert.Nil(t, snap.Cue)
	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.completed, 1)
	assert.Equal(t, r, h.completed[0])
	assert.Len(t, h.flowDone, 1, "section flow completes once")
	assert.Positive(t, h.lastVersion)
}

func resumeAt(sc scene.Scene, phase *flow.Phase) func(*Options) {
	return func(o *Options) {
		o.Scene.Resume = &scene.Resume{Scene: sc, Responses: interview.NewResponses(), Name: "Sam", Phase: phase}
	}
}

func TestRetapRestartsAutoAdvance(t *testing.T) {
	p := flow.AtQuestion(0, 0)
	h := newHarness(t, resumeAt(scene.Questions, &p))

	require.NoError(t, h.s.Select("race"))
	h.mock.Add(300 * time.Millisecond)
	require.NoError(t, h.s.Select("fitness"))
	h.mock.Add(300 * time.Millisecond)
	assert.Equal(t, "goal", h.s.Snapshot().Question.ID)

	h.until(atQuestion("days"))
	assert.Equal(t, "fitness", h.s.Responses()["goal"].Value())
}

func TestBackCancelsAutoAdvance(t *testing.T) {
	p := flow.AtQuestion(0, 1)
	h := newHarness(t, resumeAt(scene.Questions, &p))

	require.NoError(t, h.s.Back())
	require.NoError(t, h.s.Select("race"))
	require.NoError(t, h.s.Back())
	assert.Equal(t, flow.Intro(0), *h.s.Snapshot().Phase)

	// The intro replays and leads back to the first question, untapped.
	snap := h.until(atQuestion("goal"))
	assert.Empty(t, selected(snap.Question))
	h.mock.Add(time.Second)
	assert.False(t, h.s.Responses().Has("goal"))
}

func TestRevisitedMultiSelectIsSeeded(t *testing.T) {
	p := flow.AtQuestion(0, 1)
	h := newHarness(t, func(o *Options) {
		r := interview.NewResponses()
		r.Set("goal", interview.Single("race"))
		r.Set("days", interview.Multi("tue"))
		o.Scene.Resume = &scene.Resume{Scene: scene.Questions, Responses: r, Phase: &p}
	})
	q := h.s.Snapshot().Question
	require.NotNil(t, q)
	assert.Equal(t, []string{"tue"}, selected(q))
	require.NotNil(t, q.Previous)
	assert.Equal(t, []string{"tue"}, q.Previous.Values())
}

func TestConnectSucceeds(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		resumeAt(scene.Wearable, nil)(o)
		o.Connector = device.ConnectorFunc(func(_ context.Context, provider string) (*device.ConnectionResult, error) {
			return &device.ConnectionResult{Provider: provider, DeviceName: "Garmin"}, nil
		})
	})

	require.NoError(t, h.s.Connect("garmin"))
	snap := h.until(func(s Snapshot) bool { return s.Connection.Status == scene.ConnectConnected })
	assert.Equal(t, "Garmin", snap.Connection.Device)
	assert.Contains(t, snap.Cue.Text, "Garmin")

	h.until(inScene(scene.ThinkingStream))
}

func TestConnectFailureWaitsForUser(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		resumeAt(scene.Wearable, nil)(o)
		o.Connector = device.ConnectorFunc(func(context.Context, string) (*device.ConnectionResult, error) {
			return nil, errors.New("oauth denied")
		})
	})

	require.NoError(t, h.s.Connect("garmin"))
	snap := h.until(func(s Snapshot) bool { return s.Connection.Status == scene.ConnectFailed })
	assert.Equal(t, "oauth denied", snap.Connection.Error)

	h.mock.Add(5 * time.Second)
	assert.Equal(t, scene.Wearable, h.s.Snapshot().Scene)

	require.NoError(t, h.s.SkipConnect())
	assert.Equal(t, scene.ThinkingStream, h.s.Snapshot().Scene)
}

type closedConnector struct {
	device.ConnectorFunc
}

func (closedConnector) Available() error { return device.ErrUnavailable }

func TestConnectRejectedWhileUnavailable(t *testing.T) {
	var calls int
	var mu sync.Mutex
	h := newHarness(t, func(o *Options) {
		resumeAt(scene.Wearable, nil)(o)
		o.Connector = closedConnector{func(context.Context, string) (*device.ConnectionResult, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil, device.ErrUnavailable
		}}
	})

	assert.ErrorIs(t, h.s.Connect("garmin"), device.ErrUnavailable)

	snap := h.s.Snapshot()
	assert.Equal(t, scene.Wearable, snap.Scene)
	assert.Equal(t, scene.ConnectIdle, snap.Connection.Status)
	h.mock.Add(time.Second)
	mu.Lock()
	assert.Zero(t, calls)
	mu.Unlock()
}

func TestNameFailureStaysOnWelcome(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.SubmitName = func(context.Context, string) error { return errors.New("profile service down") }
	})

	require.NoError(t, h.s.ConfirmName("Sam", false))
	snap := h.until(func(s Snapshot) bool { return s.Name.Error != "" })
	assert.Equal(t, scene.WelcomeIntro, snap.Scene)
	assert.False(t, snap.Name.Pending)
}

func TestRevealUpdatesCarryCueKey(t *testing.T) {
	h := newHarness(t, nil)
	key := h.s.Snapshot().Cue.Key

	var last Reveal
	require.Eventually(t, func() bool {
		h.mock.Add(20 * time.Millisecond)
		h.mu.Lock()
		defer h.mu.Unlock()
		if len(h.reveals) == 0 {
			return false
		}
		last = h.reveals[len(h.reveals)-1]
		return last.Done
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, key, last.Key)
	assert.True(t, last.Done)
	assert.Equal(t, last.Text, last.Revealed)
}

func TestClosedSessionRejectsActions(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Close()
	h.s.Close()
	assert.ErrorIs(t, h.s.ConfirmName("Sam", false), ErrClosed)
	assert.ErrorIs(t, h.s.FinishReveal(), ErrClosed)
}

func TestResumeStateFromSession(t *testing.T) {
	p := flow.AtQuestion(0, 1)
	h := newHarness(t, resumeAt(scene.Questions, &p))
	rs, ok := h.s.ResumeState()
	require.True(t, ok)
	assert.Equal(t, scene.Questions, rs.Scene)
	require.NotNil(t, rs.Phase)
	assert.Equal(t, p, *rs.Phase)
	assert.Equal(t, "Sam", rs.Name)
}
