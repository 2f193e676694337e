package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NativeSquare/Cadence-sub000/internal/interview"
)

func multiQuestion() interview.Question {
	return interview.Question{ID: "struggles", Kind: interview.KindMultiSelect, Options: []interview.Option{
		{Value: "boredom"}, {Value: "burnout"}, {Value: "injuries"},
		{Value: interview.NoneValue, Exclusive: true},
	}}
}

func TestSelectionNoneIsExclusive(t *testing.T) {
	s := NewSelection(multiQuestion())
	require.NoError(t, s.Toggle("burnout"))
	require.NoError(t, s.Toggle("boredom"))
	assert.Equal(t, []string{"boredom", "burnout"}, s.Chosen())

	require.NoError(t, s.Toggle(interview.NoneValue))
	assert.Equal(t, []string{interview.NoneValue}, s.Chosen())

	a, err := s.Answer()
	require.NoError(t, err)
	assert.True(t, a.IsMulti())
	assert.Equal(t, []string{interview.NoneValue}, a.Values())
}

func TestSelectionOtherOptionClearsNone(t *testing.T) {
	s := NewSelection(multiQuestion())
	require.NoError(t, s.Toggle(interview.NoneValue))
	require.NoError(t, s.Toggle("injuries"))
	assert.Equal(t, []string{"injuries"}, s.Chosen())
}

func TestSelectionRequiresChoiceToConfirm(t *testing.T) {
	s := NewSelection(multiQuestion())
	assert.False(t, s.CanConfirm())
	_, err := s.Answer()
	assert.ErrorIs(t, err, ErrNothingChosen)

	require.NoError(t, s.Toggle("boredom"))
	require.NoError(t, s.Toggle("boredom"))
	assert.False(t, s.CanConfirm(), "toggling twice deselects")

	assert.ErrorIs(t, s.Toggle("nope"), ErrInvalidAnswer)
}

func TestSelectionSeed(t *testing.T) {
	s := NewSelection(multiQuestion())
	s.Seed(interview.Multi("burnout", "bogus"))
	assert.Equal(t, []string{"burnout"}, s.Chosen())
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		kind    interview.InputKind
		raw     string
		want    string
		wantErr bool
	}{
		{interview.KindPace, "5:30", "5:30", false},
		{interview.KindPace, " 05:07 / KM ", "5:07/km", false},
		{interview.KindPace, "5:75", "", true},
		{interview.KindPace, "0:45", "", true},
		{interview.KindDistance, "25", "25", false},
		{interview.KindDistance, "12.50 mi", "12.5 mi", false},
		{interview.KindDistance, "0", "", true},
		{interview.KindDistance, "far", "", true},
		{interview.KindDate, "2027-04-18", "2027-04-18", false},
		{interview.KindDate, "18/04/2027", "", true},
		{interview.KindFreeText, "  to feel strong ", "to feel strong", false},
		{interview.KindFreeText, "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.raw, func(t *testing.T) {
			a, err := ParseInput(interview.Question{ID: "q", Kind: tt.kind}, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAnswer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Value())
		})
	}
}

func TestSkipAnswer(t *testing.T) {
	pace := interview.Question{ID: "pace", Kind: interview.KindPace, SkipLabel: "Not sure"}
	a, err := SkipAnswer(pace)
	require.NoError(t, err)
	assert.Equal(t, interview.SkipValue, a.Value())
	assert.NoError(t, CheckAnswer(pace, a))

	_, err = SkipAnswer(interview.Question{ID: "date", Kind: interview.KindDate})
	assert.ErrorIs(t, err, ErrNotSkippable)
}

func TestCheckAnswerRejectsMixedNone(t *testing.T) {
	err := CheckAnswer(multiQuestion(), interview.Multi("boredom", interview.NoneValue))
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}
