package stream

import (
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevealTicksOneRuneAtATime(t *testing.T) {
	r := NewReveal("héllo")
	assert.False(t, r.Tick(), "tick before start must be a no-op")

	r.Start()
	prev := 0
	for !r.Done() {
		require.True(t, r.Tick())
		st := r.State()
		n := utf8.RuneCountInString(st.Revealed)
		assert.Equal(t, prev+1, n)
		assert.Equal(t, st.Done, st.Revealed == st.Text)
		prev = n
	}
	assert.Equal(t, "héllo", r.State().Revealed)
	assert.False(t, r.Tick(), "tick after done must be a no-op")
}

func TestRevealEmptyTextIsDoneOnStart(t *testing.T) {
	r := NewReveal("")
	r.Start()
	st := r.State()
	assert.True(t, st.Started)
	assert.True(t, st.Done)
}

type recorder struct {
	mu      sync.Mutex
	updates []State
}

func (r *recorder) record(st State) {
	r.mu.Lock()
	r.updates = append(r.updates, st)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.updates...)
}

func (r *recorder) last() State {
	u := r.snapshot()
	if len(u) == 0 {
		return State{}
	}
	return u[len(u)-1]
}

const (
	interval = 10 * time.Millisecond
	delay    = 50 * time.Millisecond
)

func newTestRunner() (*Runner, *clock.Mock, *recorder) {
	mock := clock.NewMock()
	rec := &recorder{}
	return NewRunner(mock, Options{Interval: interval, StartDelay: delay}, rec.record), mock, rec
}

func advanceUntil(t *testing.T, mock *clock.Mock, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		if cond() {
			return true
		}
		mock.Add(interval)
		return cond()
	}, 2*time.Second, time.Millisecond)
}

func TestRunnerRevealsAfterStartDelay(t *testing.T) {
	r, mock, rec := newTestRunner()

	r.Play("run")
	st := r.State()
	assert.False(t, st.Started)
	assert.Equal(t, "", st.Revealed)

	mock.Add(delay - time.Millisecond)
	assert.False(t, r.State().Started)

	advanceUntil(t, mock, func() bool { return r.State().Done })
	assert.Equal(t, "run", r.State().Revealed)

	// Every update after the start grows the revealed prefix by one rune.
	prev := -1
	for _, u := range rec.snapshot() {
		if !u.Started {
			continue
		}
		n := len(u.Revealed)
		if prev >= 0 {
			assert.Equal(t, prev+1, n)
		}
		prev = n
	}
	assert.True(t, rec.last().Done)
}

func TestRunnerStopCancelsTicks(t *testing.T) {
	r, mock, rec := newTestRunner()

	r.Play("a longer line of coaching text")
	advanceUntil(t, mock, func() bool { return len(r.State().Revealed) >= 2 })

	r.Stop()
	// Let a tick that passed its generation check before Stop land.
	time.Sleep(10 * time.Millisecond)
	before := len(rec.snapshot())
	for i := 0; i < 20; i++ {
		mock.Add(interval)
	}
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, before, len(rec.snapshot()), "no update may fire after Stop")
	st := r.State()
	assert.False(t, st.Started)
	assert.False(t, st.Done)
	assert.Equal(t, "", st.Revealed)
}

func TestRunnerPlayResets(t *testing.T) {
	r, mock, _ := newTestRunner()

	r.Play("abc")
	advanceUntil(t, mock, func() bool { return r.State().Done })

	r.Play("xy")
	st := r.State()
	assert.Equal(t, "xy", st.Text)
	assert.Equal(t, "", st.Revealed)
	assert.False(t, st.Started)
	assert.False(t, st.Done)

	advanceUntil(t, mock, func() bool { return r.State().Done })
	assert.Equal(t, "xy", r.State().Revealed)
}

func TestRunnerEmptyTextCompletesWithoutTimers(t *testing.T) {
	r, _, rec := newTestRunner()

	st := r.Play("")
	assert.True(t, st.Started)
	assert.True(t, st.Done)
	assert.Equal(t, st, r.State())
	assert.Empty(t, rec.snapshot(), "empty text must not schedule a timer")
}

func TestRunnerFinish(t *testing.T) {
	r, _, rec := newTestRunner()

	r.Play("skip ahead")
	st, changed := r.Finish()
	require.True(t, changed)
	assert.True(t, st.Done)
	assert.Equal(t, "skip ahead", st.Revealed)
	assert.Equal(t, st, r.State())
	assert.Empty(t, rec.snapshot(), "Finish reports through its return value")

	_, changed = r.Finish()
	assert.False(t, changed, "finishing a done reveal is a no-op")
}

func TestRunnerGenerations(t *testing.T) {
	r, _, _ := newTestRunner()

	r.Play("one")
	g := r.State().Gen
	assert.True(t, r.IsCurrent(g))

	r.Play("two")
	assert.False(t, r.IsCurrent(g))
	assert.True(t, r.IsCurrent(r.State().Gen))

	r.Stop()
	assert.False(t, r.IsCurrent(r.State().Gen))
}
