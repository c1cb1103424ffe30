package models

import "time"

// StudySession represents one completed quiz or review session.
// Sessions hold aggregate counts only; per-question scheduling state lives in
// ReviewRecord.
type StudySession struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	TotalQuestions int       `json:"totalQuestions"`
	Correct        int       `json:"correct"`
	Incorrect      int       `json:"incorrect"`
	XPEarned       int       `json:"xpEarned"`
}

// QuizResult is returned to the client after a quiz submission
type QuizResult struct {
	TotalQuestions int `json:"totalQuestions"`
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`
	XPEarned       int `json:"xpEarned"`
}

// LeaderboardEntry represents one row of the XP leaderboard
type LeaderboardEntry struct {
	UserID   string `json:"userId"`
	XP       int    `json:"xp"`
	Sessions int    `json:"sessions"`
}

// Notification represents a pending due-review reminder for a user.
// Delivery itself (email, push) is handled by an external sender that marks
// SentAt when done.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"userId"`
	DueCount  int        `json:"dueCount"`
	CreatedAt time.Time  `json:"createdAt"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}
