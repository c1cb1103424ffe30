// Package srs implements the SuperMemo-2 spaced-repetition scheduling algorithm
// used to decide when a question should next be shown to a learner.
//
// The package is pure: it has no storage or clock dependencies, so the interval
// arithmetic can be tested in isolation. Persistence of the resulting state is
// the review repository's job.
package srs

import (
	"math"
	"time"
)

// Quality is a recall grade on the standard SM-2 scale of 0 to 5.
type Quality int

const (
	// QualityBlackout means a complete failure to recall
	QualityBlackout Quality = 0
	// QualityIncorrect means an incorrect response, remembered once the answer was shown
	QualityIncorrect Quality = 1
	// QualityIncorrectFamiliar means an incorrect response where the answer felt familiar
	QualityIncorrectFamiliar Quality = 2
	// QualityCorrectDifficult means a correct response that required significant effort
	QualityCorrectDifficult Quality = 3
	// QualityCorrectHesitation means a correct response after some hesitation
	QualityCorrectHesitation Quality = 4
	// QualityPerfect means a perfect response with no hesitation
	QualityPerfect Quality = 5
)

// PassThreshold is the lowest grade that counts as a successful recall.
// Grades below it reset the review cycle.
const PassThreshold Quality = QualityCorrectDifficult

const (
	// DefaultEaseFactor is the ease assigned to a question on its first review
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which ease never drops, so intervals
	// keep growing even for the hardest questions
	MinEaseFactor = 1.3

	// First and second successful reviews use fixed bootstrap intervals before
	// the exponential phase starts.
	firstIntervalDays  = 1
	secondIntervalDays = 6
)

// State is the scheduling portion of a review record
type State struct {
	EaseFactor     float64
	IntervalDays   int
	Repetitions    int
	LastReviewedAt time.Time
	NextReviewAt   time.Time
}

// NewState returns the state assigned to a question that has never been reviewed
func NewState() State {
	return State{
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: firstIntervalDays,
		Repetitions:  0,
	}
}

// QualityForResult maps a binary answer outcome to an SM-2 grade: a correct
// answer grades as "correct after hesitation" (4), an incorrect one as "barely
// recalled" (1).
//
// Collapsing the 6-point scale to two values is deliberate; if the product ever
// captures a richer signal (confidence, response time) only this function needs
// to change.
func QualityForResult(isCorrect bool) Quality {
	if isCorrect {
		return QualityCorrectHesitation
	}
	return QualityIncorrect
}

// Advance computes the state after grading a review at the given time.
//
// The ease factor is recomputed from the grade and clamped to MinEaseFactor. A
// failing grade resets the repetition counter and puts the question back on the
// shortest cycle regardless of prior history. A passing grade steps through the
// fixed 1-day and 6-day bootstrap intervals, then grows the interval by the new
// ease factor. The returned state always satisfies EaseFactor >= 1.3,
// IntervalDays >= 1 and NextReviewAt == now + IntervalDays days.
func Advance(prev State, quality Quality, now time.Time) State {
	if quality < QualityBlackout {
		quality = QualityBlackout
	}
	if quality > QualityPerfect {
		quality = QualityPerfect
	}

	// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q)*0.02))
	q := float64(quality)
	ease := prev.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	next := State{
		EaseFactor:     ease,
		LastReviewedAt: now,
	}

	if quality >= PassThreshold {
		next.Repetitions = prev.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = firstIntervalDays
		case 2:
			next.IntervalDays = secondIntervalDays
		default:
			next.IntervalDays = int(math.Round(float64(prev.IntervalDays) * ease))
		}
	} else {
		next.Repetitions = 0
		next.IntervalDays = firstIntervalDays
	}

	if next.IntervalDays < 1 {
		next.IntervalDays = 1
	}

	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	return next
}
