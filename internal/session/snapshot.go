package session

import (
	"slices"

	"github.com/NativeSquare/Cadence-sub000/internal/flow"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
	"github.com/NativeSquare/Cadence-sub000/internal/stream"
)

// Reveal is one reveal update of the cue identified by Key.
type Reveal struct {
	Key string `json:"key"`
	stream.State
}

type CueView struct {
	Key      string `json:"key"`
	Text     string `json:"text"`
	Revealed string `json:"revealed"`
	Done     bool   `json:"done"`
	Advance  bool   `json:"advance"`
}

type SectionView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Index int    `json:"index"`
	Count int    `json:"count"`
}

type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type QuestionView struct {
	ID        string              `json:"id"`
	Prompt    string              `json:"prompt"`
	Kind      interview.InputKind `json:"kind"`
	Options   []OptionView        `json:"options,omitempty"`
	SkipLabel string              `json:"skipLabel,omitempty"`
	// Previous is the stored answer when the question is revisited.
	Previous   *interview.Answer `json:"previous,omitempty"`
	CanConfirm bool              `json:"canConfirm,omitempty"`
}

type NameView struct {
	Value   string `json:"value"`
	Pending bool   `json:"pending"`
	Error   string `json:"error,omitempty"`
}

// Snapshot is the serializable view of a session. Version grows with every
// change so clients can drop out-of-order snapshots.
type Snapshot struct {
	ID         string           `json:"id"`
	Version    uint64           `json:"version"`
	Scene      scene.Scene      `json:"scene"`
	SceneLabel string           `json:"sceneLabel"`
	Name       NameView         `json:"name"`
	Progress   float64          `json:"progress"`
	Cue        *CueView         `json:"cue,omitempty"`
	Phase      *flow.Phase      `json:"phase,omitempty"`
	Section    *SectionView     `json:"section,omitempty"`
	Question   *QuestionView    `json:"question,omitempty"`
	Block      int              `json:"block"`
	Blocks     int              `json:"blocks"`
	Connection scene.Connection `json:"connection"`
	Complete   bool             `json:"complete"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	o := s.orch
	pending, nameErr := o.NameStatus()
	snap := Snapshot{
		ID:         s.id,
		Version:    s.version,
		Scene:      o.Scene(),
		SceneLabel: o.Scene().Label(),
		Name:       NameView{Value: o.Name(), Pending: pending, Error: nameErr},
		Progress:   o.Progress(),
		Connection: o.Connection(),
		Complete:   o.Completed(),
	}
	snap.Block, snap.Blocks = o.Block()

	if s.cue.Key != "" {
		snap.Cue = &CueView{
			Key:      s.cue.Key,
			Text:     s.cue.Text,
			Revealed: s.reveal.Revealed,
			Done:     s.reveal.Done,
			Advance:  s.cue.Advance,
		}
	}

	f, ok := o.Flow()
	if !ok {
		return snap
	}
	phase := f.Phase()
	snap.Phase = &phase
	sec := f.Section()
	snap.Section = &SectionView{ID: sec.ID, Title: sec.Title, Index: phase.Section, Count: len(f.Sections())}

	q, ok := f.Current()
	if !ok {
		return snap
	}
	qv := &QuestionView{ID: q.ID, Prompt: q.Prompt, Kind: q.Kind, SkipLabel: q.SkipLabel}
	prev, answered := f.Pending()
	if answered {
		qv.Previous = &prev
	}
	for _, opt := range q.Options {
		ov := OptionView{Value: opt.Value, Label: q.LabelFor(opt.Value)}
		switch {
		case s.selection != nil:
			ov.Selected = slices.Contains(s.selection.Chosen(), opt.Value)
		case s.tapped != "":
			ov.Selected = s.tapped == opt.Value
		case answered:
			ov.Selected = prev.Contains(opt.Value)
		}
		qv.Options = append(qv.Options, ov)
	}
	if s.selection != nil {
		qv.CanConfirm = s.selection.CanConfirm()
	}
	snap.Question = qv
	return snap
}
