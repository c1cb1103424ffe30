package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestQualityForResult(t *testing.T) {
	assert.Equal(t, QualityCorrectHesitation, QualityForResult(true))
	assert.Equal(t, QualityIncorrect, QualityForResult(false))
}

func TestAdvance_FirstReviewCorrect(t *testing.T) {
	// New question, first review, correct answer: one repetition, shortest
	// interval, ease unchanged for grade 4 (2.5 + (0.1 - 1*(0.08+1*0.02)) = 2.5).
	next := Advance(NewState(), QualityForResult(true), testNow)

	assert.Equal(t, 1, next.Repetitions)
	assert.Equal(t, 1, next.IntervalDays)
	assert.InDelta(t, 2.5, next.EaseFactor, 1e-9)
	assert.Equal(t, testNow, next.LastReviewedAt)
	assert.Equal(t, testNow.AddDate(0, 0, 1), next.NextReviewAt)
}

func TestAdvance_SecondReviewCorrect(t *testing.T) {
	first := Advance(NewState(), QualityForResult(true), testNow)
	second := Advance(first, QualityForResult(true), testNow.AddDate(0, 0, 1))

	assert.Equal(t, 2, second.Repetitions)
	assert.Equal(t, 6, second.IntervalDays, "second successful review uses the fixed bootstrap step")
	assert.InDelta(t, 2.5, second.EaseFactor, 1e-9)
	assert.Equal(t, second.LastReviewedAt.AddDate(0, 0, 6), second.NextReviewAt)
}

func TestAdvance_ThirdReviewCorrect(t *testing.T) {
	// From interval=6, ease=2.5 a third pass enters the exponential phase:
	// round(6 * 2.5) = 15 days.
	state := State{EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2}
	next := Advance(state, QualityForResult(true), testNow)

	assert.Equal(t, 3, next.Repetitions)
	assert.Equal(t, 15, next.IntervalDays)
	assert.Equal(t, testNow.AddDate(0, 0, 15), next.NextReviewAt)
}

func TestAdvance_FailureResetsProgress(t *testing.T) {
	state := State{EaseFactor: 2.6, IntervalDays: 20, Repetitions: 5}
	next := Advance(state, QualityForResult(false), testNow)

	assert.Equal(t, 0, next.Repetitions)
	assert.Equal(t, 1, next.IntervalDays, "failure always puts the question back on the shortest cycle")
	assert.Less(t, next.EaseFactor, 2.6, "failure lowers the ease factor")
	assert.Equal(t, testNow.AddDate(0, 0, 1), next.NextReviewAt)
}

func TestAdvance_EaseFactorNeverBelowFloor(t *testing.T) {
	state := NewState()
	for i := 0; i < 20; i++ {
		state = Advance(state, QualityForResult(false), testNow.AddDate(0, 0, i))
		require.GreaterOrEqual(t, state.EaseFactor, MinEaseFactor)
		require.GreaterOrEqual(t, state.IntervalDays, 1)
	}
	assert.InDelta(t, MinEaseFactor, state.EaseFactor, 1e-9)
}

func TestAdvance_QualityClamped(t *testing.T) {
	tests := []struct {
		name    string
		quality Quality
	}{
		{name: "below scale", quality: Quality(-3)},
		{name: "above scale", quality: Quality(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Advance(NewState(), tt.quality, testNow)
			assert.GreaterOrEqual(t, next.EaseFactor, MinEaseFactor)
			assert.GreaterOrEqual(t, next.IntervalDays, 1)
		})
	}
}

func TestAdvance_InvariantsHoldAcrossOutcomeSequences(t *testing.T) {
	sequences := [][]bool{
		{true, true, true, true, true},
		{false, false, false, false},
		{true, false, true, true, false, true},
		{true, true, false, true, true, true, true},
	}

	for _, seq := range sequences {
		state := NewState()
		now := testNow
		prevReps := state.Repetitions
		for _, correct := range seq {
			state = Advance(state, QualityForResult(correct), now)

			require.GreaterOrEqual(t, state.EaseFactor, MinEaseFactor)
			require.GreaterOrEqual(t, state.IntervalDays, 1)
			require.Equal(t, state.LastReviewedAt.AddDate(0, 0, state.IntervalDays), state.NextReviewAt)
			if correct {
				require.Equal(t, prevReps+1, state.Repetitions)
			} else {
				require.Equal(t, 0, state.Repetitions)
			}

			prevReps = state.Repetitions
			now = state.NextReviewAt
		}
	}
}

func TestAdvance_Deterministic(t *testing.T) {
	// Replaying the same outcome sequence from the default state always yields
	// an identical final state: the algorithm has no hidden randomness.
	seq := []bool{true, true, false, true, true, true}

	run := func() State {
		state := NewState()
		now := testNow
		for _, correct := range seq {
			state = Advance(state, QualityForResult(correct), now)
			now = state.NextReviewAt
		}
		return state
	}

	assert.Equal(t, run(), run())
}
