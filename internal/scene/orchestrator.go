package scene

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/flow"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
)

var (
	ErrWrongScene    = errors.New("action not available in this scene")
	ErrStaleCue      = errors.New("cue is no longer current")
	ErrPending       = errors.New("an external action is still pending")
	ErrNotPending    = errors.New("no external action is pending")
	ErrNotReady      = errors.New("closing text has not been revealed")
	ErrEmptyName     = errors.New("name is empty")
	ErrInvalidResume = errors.New("invalid resume state")
	ErrComplete      = errors.New("interview is complete")
)

// Cue is the text the orchestrator currently wants revealed. Key changes on
// every transition, so a completion report for an older cue can be told
// apart from the current one.
type Cue struct {
	Key  string `json:"key"`
	Text string `json:"text"`
	// Advance is true when the end of the reveal moves the interview on by
	// itself. Otherwise it waits for user input.
	Advance bool `json:"advance"`
	// Pause is how long to wait after the reveal before reporting CueDone.
	Pause time.Duration `json:"-"`
}

type ConnectStatus string

const (
	ConnectIdle      ConnectStatus = "idle"
	ConnectPending   ConnectStatus = "pending"
	ConnectConnected ConnectStatus = "connected"
	ConnectFailed    ConnectStatus = "failed"
	ConnectSkipped   ConnectStatus = "skipped"
)

type Connection struct {
	Status   ConnectStatus `json:"status"`
	Provider string        `json:"provider,omitempty"`
	Device   string        `json:"device,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Resume places a new orchestrator directly in a scene. Phase is used for
// the questions scene, Block for the narrative scenes and Connection for a
// wearable scene whose device is already linked.
type Resume struct {
	Scene      Scene               `json:"scene"`
	Responses  interview.Responses `json:"responses"`
	Name       string              `json:"name,omitempty"`
	Phase      *flow.Phase         `json:"phase,omitempty"`
	Block      int                 `json:"block,omitempty"`
	Connection *Connection         `json:"connection,omitempty"`
}

type Options struct {
	Sections []interview.Section
	Timing   Timing
	// Name is the prefilled account name shown in the greeting.
	Name string
	// AutoConnect, when set, starts a connection to this provider as soon
	// as the wearable scene is entered.
	AutoConnect string
	Resume      *Resume
}

// Orchestrator is the top-level scene state machine. It performs no I/O and
// keeps no timers: callers reveal the current Cue, report CueDone, and run
// the Effects returned by transitions. It is not safe for concurrent use.
type Orchestrator struct {
	sections    []interview.Section
	timing      Timing
	autoConnect string

	scene Scene
	step  int
	name  string

	pendingName string
	nameEdited  bool
	namePending bool
	nameErr     string

	flow      *flow.Flow
	responses interview.Responses

	blocks []string
	block  int

	conn Connection

	revealedKey string
	completed   bool
}

func New(opts Options) (*Orchestrator, error) {
	if len(opts.Sections) == 0 {
		return nil, flow.ErrNoSections
	}
	o := &Orchestrator{
		sections:    opts.Sections,
		timing:      opts.Timing,
		autoConnect: opts.AutoConnect,
		name:        strings.TrimSpace(opts.Name),
		conn:        Connection{Status: ConnectIdle},
	}
	if opts.Resume == nil {
		o.scene = WelcomeIntro
		return o, nil
	}
	if err := o.resume(*opts.Resume); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) resume(rs Resume) error {
	if !rs.Scene.Resumable() {
		return fmt.Errorf("%w: cannot start in %s", ErrInvalidResume, rs.Scene)
	}
	if n := strings.TrimSpace(rs.Name); n != "" {
		o.name = n
	}
	responses := rs.Responses.Clone()
	if responses == nil {
		responses = interview.NewResponses()
	}

	switch {
	case rs.Scene < Questions:
	case rs.Scene == Questions:
		phase := flow.Intro(0)
		if rs.Phase != nil {
			phase = *rs.Phase
		}
		f, err := flow.Restore(o.sections, responses, phase)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidResume, err)
		}
		o.flow = f
	default:
		o.responses = responses
	}

	// Entrance effects are not returned here, so resuming into the wearable
	// scene never starts a connection.
	o.enter(rs.Scene)
	if rs.Scene.Narrative() {
		if rs.Block < 0 || rs.Block >= len(o.blocks) {
			return fmt.Errorf("%w: block %d of %s", ErrInvalidResume, rs.Block, rs.Scene)
		}
		o.block = rs.Block
	}
	if c := rs.Connection; c != nil && rs.Scene == Wearable {
		if c.Status != ConnectConnected {
			return fmt.Errorf("%w: connection %s", ErrInvalidResume, c.Status)
		}
		o.conn = *c
	}
	return nil
}

func (o *Orchestrator) Scene() Scene { return o.scene }

func (o *Orchestrator) Name() string { return o.name }

func (o *Orchestrator) Timing() Timing { return o.timing }

// Completed reports whether the handoff terminal action has run.
func (o *Orchestrator) Completed() bool { return o.completed }

func (o *Orchestrator) Connection() Connection { return o.conn }

// NameStatus reports a name submission in flight and the last failure.
func (o *Orchestrator) NameStatus() (pending bool, lastErr string) {
	return o.namePending, o.nameErr
}

// Flow exposes the section flow while in the questions scene.
func (o *Orchestrator) Flow() (*flow.Flow, bool) {
	if o.scene != Questions || o.flow == nil {
		return nil, false
	}
	return o.flow, true
}

// Block returns the index and count of narrative blocks in the current scene.
func (o *Orchestrator) Block() (index, count int) { return o.block, len(o.blocks) }

// Responses returns a copy of the answers: live during the questions scene,
// frozen afterwards.
func (o *Orchestrator) Responses() interview.Responses {
	if o.flow != nil && o.scene == Questions {
		return o.flow.Responses()
	}
	return o.responses.Clone()
}

func (o *Orchestrator) Progress() float64 {
	switch {
	case o.scene < Questions:
		return 0
	case o.scene == Questions:
		return o.flow.Progress()
	}
	return 1
}

// Revealed reports whether the current cue has been fully shown.
func (o *Orchestrator) Revealed() bool {
	c, ok := o.Cue()
	return ok && o.revealedKey == c.Key
}

// Cue returns the text to reveal now. It is false once the interview is
// complete.
func (o *Orchestrator) Cue() (Cue, bool) {
	if o.completed {
		return Cue{}, false
	}
	key := func(parts ...any) string {
		return fmt.Sprintf("%d:%s", o.step, fmt.Sprint(parts...))
	}
	switch o.scene {
	case WelcomeIntro:
		return Cue{Key: key("welcome-intro"), Text: Greeting(o.name)}, true
	case WelcomeGotIt:
		return Cue{Key: key("welcome-got-it"), Text: GotIt(o.name), Advance: true, Pause: o.timing.BlockPause}, true
	case WelcomeTransition:
		return Cue{Key: key("welcome-transition"), Text: Transition(o.name), Advance: true, Pause: o.timing.BlockPause}, true
	case Questions:
		return o.questionCue(key), true
	case Wearable:
		if o.conn.Status == ConnectConnected {
			return Cue{Key: key("wearable/connected"), Text: Connected(o.conn.Device), Advance: true, Pause: o.timing.ConnectAdvance}, true
		}
		return Cue{Key: key("wearable"), Text: WearablePrompt()}, true
	case Handoff:
		return Cue{Key: key("handoff"), Text: HandoffText(o.responses, o.name)}, true
	}
	return Cue{
		Key:     key(o.scene.ID(), "/", o.block),
		Text:    o.blocks[o.block],
		Advance: true,
		Pause:   o.timing.BlockPause,
	}, true
}

func (o *Orchestrator) questionCue(key func(...any) string) Cue {
	p := o.flow.Phase()
	s := o.flow.Section()
	switch p.Kind {
	case flow.KindIntro:
		return Cue{Key: key("intro/", s.ID), Text: s.Intro, Advance: true}
	case flow.KindReaction:
		return Cue{Key: key("reaction/", s.ID), Text: s.ReactionText(o.flow.Responses(), o.name), Advance: true, Pause: o.timing.SettleDelay}
	}
	q, _ := o.flow.Current()
	return Cue{Key: key("question/", q.ID), Text: q.Prompt}
}

// CueDone reports that the cue with key finished revealing and its pause
// elapsed. Advancing cues move the interview on.
func (o *Orchestrator) CueDone(key string) ([]Effect, error) {
	c, ok := o.Cue()
	if !ok || c.Key != key {
		return nil, ErrStaleCue
	}
	o.revealedKey = key
	if !c.Advance {
		return nil, nil
	}

	switch o.scene {
	case WelcomeGotIt:
		o.enter(WelcomeTransition)
	case WelcomeTransition:
		o.enter(Questions)
	case Questions:
		return o.flowCueDone()
	case Wearable:
		o.enter(ThinkingStream)
	default:
		if o.block+1 < len(o.blocks) {
			o.block++
			o.step++
		} else {
			o.enter(o.scene + 1)
		}
	}
	return nil, nil
}

func (o *Orchestrator) flowCueDone() ([]Effect, error) {
	switch o.flow.Phase().Kind {
	case flow.KindIntro:
		if err := o.flow.IntroDone(); err != nil {
			return nil, err
		}
		o.step++
		return nil, nil
	case flow.KindReaction:
		complete, err := o.flow.ReactionDone()
		if err != nil {
			return nil, err
		}
		if !complete {
			o.step++
			return nil, nil
		}
		o.responses = o.flow.Responses()
		effects := []Effect{SectionFlowComplete{Responses: o.responses.Clone()}}
		return append(effects, o.enterWearable()...), nil
	}
	return nil, nil
}

// enter switches to s. It never runs entrance effects; see enterWearable.
func (o *Orchestrator) enter(s Scene) {
	o.scene = s
	o.step++
	o.block = 0
	o.blocks = nil
	switch {
	case s == Questions && o.flow == nil:
		// flow.New only fails without sections, which New rejects.
		o.flow, _ = flow.New(o.sections, nil)
	case s.Narrative():
		o.blocks = Blocks(s, o.responses, o.name)
	}
}

// enterWearable is enter(Wearable) plus the auto-connect entrance effect.
func (o *Orchestrator) enterWearable() []Effect {
	o.enter(Wearable)
	if o.autoConnect == "" {
		return nil
	}
	o.conn = Connection{Status: ConnectPending, Provider: o.autoConnect}
	return []Effect{Connect{Provider: o.autoConnect}}
}

// ConfirmName starts the name submission. edited is true when the user
// corrected the prefilled name, which routes through the got-it line.
func (o *Orchestrator) ConfirmName(name string, edited bool) ([]Effect, error) {
	if o.scene != WelcomeIntro {
		return nil, ErrWrongScene
	}
	if o.namePending {
		return nil, ErrPending
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	o.pendingName = name
	o.nameEdited = edited
	o.namePending = true
	o.nameErr = ""
	return []Effect{SubmitName{Name: name}}, nil
}

// NameSubmitted resolves the submission started by ConfirmName. A failure
// leaves the scene in place so the user can try again.
func (o *Orchestrator) NameSubmitted(err error) ([]Effect, error) {
	if o.scene != WelcomeIntro || !o.namePending {
		return nil, ErrNotPending
	}
	o.namePending = false
	if err != nil {
		o.nameErr = err.Error()
		return nil, nil
	}
	o.name = o.pendingName
	if o.nameEdited {
		o.enter(WelcomeGotIt)
	} else {
		o.enter(WelcomeTransition)
	}
	return nil, nil
}

// Answer records an answer for the current question.
func (o *Orchestrator) Answer(a interview.Answer) error {
	if o.scene != Questions {
		return ErrWrongScene
	}
	if err := o.flow.Answer(a); err != nil {
		return err
	}
	o.step++
	return nil
}

func (o *Orchestrator) Back() error {
	if o.scene != Questions {
		return ErrWrongScene
	}
	if err := o.flow.Back(); err != nil {
		return err
	}
	o.step++
	return nil
}

// BeginConnect starts a connection attempt. It is also how a failed or
// cancelled attempt is retried.
func (o *Orchestrator) BeginConnect(provider string) ([]Effect, error) {
	if o.scene != Wearable {
		return nil, ErrWrongScene
	}
	switch o.conn.Status {
	case ConnectPending:
		return nil, ErrPending
	case ConnectConnected:
		return nil, ErrWrongScene
	}
	if provider == "" {
		return nil, fmt.Errorf("%w: provider is empty", device.ErrUnknownProvider)
	}
	o.conn = Connection{Status: ConnectPending, Provider: provider}
	return []Effect{Connect{Provider: provider}}, nil
}

// ConnectResolved settles the pending connection. A nil result without an
// error means the user backed out. A resolution that arrives after the user
// skipped is rejected with ErrNotPending.
func (o *Orchestrator) ConnectResolved(res *device.ConnectionResult, err error) error {
	if o.scene != Wearable || o.conn.Status != ConnectPending {
		return ErrNotPending
	}
	switch {
	case err != nil:
		o.conn.Status = ConnectFailed
		o.conn.Error = err.Error()
	case res == nil:
		o.conn.Status = ConnectIdle
	default:
		o.conn.Status = ConnectConnected
		o.conn.Device = res.DeviceName
		o.step++
	}
	return nil
}

// SkipConnect leaves the wearable scene without a device, even while an
// attempt is still pending.
func (o *Orchestrator) SkipConnect() error {
	if o.scene != Wearable {
		return ErrWrongScene
	}
	if o.conn.Status == ConnectConnected {
		return ErrWrongScene
	}
	o.conn.Status = ConnectSkipped
	o.enter(ThinkingStream)
	return nil
}

// Complete is the handoff terminal action.
func (o *Orchestrator) Complete() ([]Effect, error) {
	if o.completed {
		return nil, ErrComplete
	}
	if o.scene != Handoff {
		return nil, ErrWrongScene
	}
	if !o.Revealed() {
		return nil, ErrNotReady
	}
	o.completed = true
	return []Effect{InterviewComplete{Responses: o.responses.Clone()}}, nil
}

// ResumeState returns data from which New can rebuild the orchestrator. It
// is false before the name is confirmed.
func (o *Orchestrator) ResumeState() (Resume, bool) {
	rs := Resume{Scene: o.scene, Name: o.name, Responses: o.Responses()}
	switch o.scene {
	case WelcomeIntro:
		return Resume{}, false
	case WelcomeGotIt:
		rs.Scene = WelcomeTransition
	case Questions:
		p := o.flow.Phase()
		rs.Phase = &p
	}
	if o.scene.Narrative() {
		rs.Block = o.block
	}
	if o.scene == Wearable && o.conn.Status == ConnectConnected {
		c := o.conn
		rs.Connection = &c
	}
	return rs, true
}
