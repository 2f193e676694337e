package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NativeSquare/Cadence-sub000/internal/interview"
)

func TestNarrativeTablesAreValid(t *testing.T) {
	require.NoError(t, ValidateNarrative())
}

func TestNarrativeFallbacksWithNoAnswers(t *testing.T) {
	for _, s := range AllScenes() {
		if !s.Narrative() {
			continue
		}
		blocks := Blocks(s, interview.NewResponses(), "")
		require.NotEmpty(t, blocks, s.ID())
		for i, b := range blocks {
			assert.NotEmpty(t, b, "%s block %d", s.ID(), i)
			assert.NotContains(t, b, "{{", "%s block %d", s.ID(), i)
		}
	}
	assert.Nil(t, Blocks(Handoff, nil, ""))
}

func TestCoachingChallengeRules(t *testing.T) {
	tests := []struct {
		challenge string
		want      string
	}{
		{"pacing", "pacing is hard"},
		{"consistency", "Consistency is the whole game"},
		{"motivation", "Motivation comes and goes"},
		{"time", "Time is tight"},
		{"injury", "Getting hurt"},
		{"plateau", "A plateau"},
		{"", "Whatever gets in your way"},
	}
	for _, tt := range tests {
		t.Run(tt.challenge, func(t *testing.T) {
			r := interview.NewResponses()
			if tt.challenge != "" {
				r.Set(interview.QBiggestChallenge, interview.Single(tt.challenge))
			}
			blocks := CoachingResponseBlocks(r, "")
			assert.Contains(t, blocks[0], tt.want)
		})
	}
}

func TestNarrativeUsesAnswersAndName(t *testing.T) {
	r := interview.NewResponses()
	r.Set(interview.QGoal, interview.Single("race"))
	r.Set(interview.QRaceDistance, interview.Single("half"))
	r.Set(interview.QRaceDate, interview.Single("2027-04-18"))
	r.Set(interview.QWhy, interview.Single("my dad ran one"))

	thinking := ThinkingStreamBlocks(r, "Sam")
	assert.Contains(t, thinking[0], "Sam")
	assert.Contains(t, thinking[1], "2027-04-18")

	assert.Contains(t, CoachingResponseBlocks(r, "")[2], "my dad ran one")
	assert.Contains(t, SynthesisBlocks(r, "Sam")[0], "half build")
}

func TestNarrativeIsPure(t *testing.T) {
	r := interview.NewResponses()
	r.Set(interview.QInjuryStatus, interview.Single("active"))
	r.Set(interview.QDaysPerWeek, interview.Single("4"))
	before := r.Clone()

	first := HonestLimitsBlocks(r, "Sam")
	assert.Equal(t, first, HonestLimitsBlocks(r, "Sam"))
	assert.Equal(t, before, r)
	assert.Contains(t, first[1], "get it looked at")
}

func TestSceneIDs(t *testing.T) {
	for _, s := range AllScenes() {
		got, err := ParseScene(s.ID())
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.NotEmpty(t, s.Label())
	}
	_, err := ParseScene("lobby")
	assert.Error(t, err)

	b, err := json.Marshal(struct{ S Scene }{HonestLimits})
	require.NoError(t, err)
	assert.JSONEq(t, `{"S":"honest-limits"}`, string(b))

	var v struct{ S Scene }
	require.NoError(t, json.Unmarshal([]byte(`{"S":"handoff"}`), &v))
	assert.Equal(t, Handoff, v.S)
}
