package models

import "time"

// ReviewRecord represents the spaced-repetition state for one user and one question.
//
// A record is created on the first review of a (user, question) pair and mutated on
// every review after that. The scheduler never deletes records.
type ReviewRecord struct {
	UserID         string    `json:"userId"`
	QuestionID     string    `json:"questionId"`
	LastReviewedAt time.Time `json:"lastReviewedAt"`
	NextReviewAt   time.Time `json:"nextReviewAt"`
	EaseFactor     float64   `json:"easeFactor"`     // >= 1.3
	IntervalDays   int       `json:"intervalDays"`   // >= 1
	Repetitions    int       `json:"repetitions"`    // consecutive passes since last failure
	TimesSeen      int       `json:"timesSeen"`      // lifetime counters, TimesSeen == TimesCorrect + TimesIncorrect
	TimesCorrect   int       `json:"timesCorrect"`
	TimesIncorrect int       `json:"timesIncorrect"`
}

// ReviewOutcome represents a single answer outcome submitted for scheduling
type ReviewOutcome struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
}

// ReviewStats aggregates a user's review state for the dashboard
//
// AvgAccuracy is the mean of each question's own times_correct/times_seen ratio,
// not the pooled event accuracy, so rarely seen questions weigh the same as
// frequently seen ones.
type ReviewStats struct {
	DueCount      int     `json:"dueCount"`
	TotalReviewed int     `json:"totalReviewed"`
	AvgAccuracy   float64 `json:"avgAccuracy"`
}

// UserDueCount pairs a user with the number of reviews currently due, used by
// the reminder scheduler
type UserDueCount struct {
	UserID   string `json:"userId"`
	DueCount int    `json:"dueCount"`
}
