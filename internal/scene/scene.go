// Package scene sequences the onboarding narrative from the welcome lines
// through the questionnaire to the coach's synthesis and handoff.
package scene

import (
	"fmt"
	"time"
)

type Scene int

const (
	WelcomeIntro Scene = iota
	WelcomeGotIt
	WelcomeTransition
	Questions
	Wearable
	ThinkingStream
	CoachingResponse
	HonestLimits
	Synthesis
	Handoff
)

var sceneIDs = [...]string{
	WelcomeIntro:      "welcome-intro",
	WelcomeGotIt:      "welcome-got-it",
	WelcomeTransition: "welcome-transition",
	Questions:         "questions",
	Wearable:          "wearable",
	ThinkingStream:    "thinking-stream",
	CoachingResponse:  "coaching-response",
	HonestLimits:      "honest-limits",
	Synthesis:         "synthesis",
	Handoff:           "handoff",
}

var sceneLabels = [...]string{
	WelcomeIntro:      "Welcome",
	WelcomeGotIt:      "Welcome",
	WelcomeTransition: "Welcome",
	Questions:         "Questions",
	Wearable:          "Connect a device",
	ThinkingStream:    "Thinking",
	CoachingResponse:  "Coaching",
	HonestLimits:      "Honest limits",
	Synthesis:         "Your plan",
	Handoff:           "All set",
}

func AllScenes() []Scene {
	out := make([]Scene, 0, len(sceneIDs))
	for s := range sceneIDs {
		out = append(out, Scene(s))
	}
	return out
}

func (s Scene) Valid() bool { return s >= WelcomeIntro && s <= Handoff }

// ID is the stable identifier used in resume data and the API.
func (s Scene) ID() string {
	if !s.Valid() {
		return fmt.Sprintf("scene(%d)", int(s))
	}
	return sceneIDs[s]
}

func (s Scene) Label() string {
	if !s.Valid() {
		return ""
	}
	return sceneLabels[s]
}

func (s Scene) String() string { return s.ID() }

// Narrative reports whether the scene is a sequence of generated blocks.
func (s Scene) Narrative() bool { return s >= ThinkingStream && s <= Synthesis }

// Resumable reports whether an orchestrator may start directly in s.
func (s Scene) Resumable() bool { return s.Valid() && s != WelcomeIntro && s != WelcomeGotIt }

func ParseScene(id string) (Scene, error) {
	for i, v := range sceneIDs {
		if v == id {
			return Scene(i), nil
		}
	}
	return 0, fmt.Errorf("unknown scene %q", id)
}

func (s Scene) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid scene %d", int(s))
	}
	return []byte(s.ID()), nil
}

func (s *Scene) UnmarshalText(b []byte) error {
	v, err := ParseScene(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Timing holds the fixed pauses of the narrative.
type Timing struct {
	// BlockPause separates consecutive narrative blocks and welcome lines.
	BlockPause time.Duration
	// SettleDelay follows a section reaction before the next section.
	SettleDelay time.Duration
	// AutoAdvance is the delay between a single-select tap and the answer.
	AutoAdvance time.Duration
	// ConnectAdvance follows a successful device connection.
	ConnectAdvance time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		BlockPause:     700 * time.Millisecond,
		SettleDelay:    900 * time.Millisecond,
		AutoAdvance:    400 * time.Millisecond,
		ConnectAdvance: 1200 * time.Millisecond,
	}
}
