package domain

import (
	"context"
	"time"
)

// StreakHistoryDays is how far back the streak read path looks.
const StreakHistoryDays = 31

// StreakState is the per-user streak counter.
type StreakState struct {
	Streak    int
	UpdatedAt *time.Time
}

// UpdatedOn reports whether the last update falls on the same local
// calendar day as t.
func (s StreakState) UpdatedOn(t time.Time) bool {
	if s.UpdatedAt == nil {
		return false
	}
	return LocalDay(*s.UpdatedAt) == LocalDay(t)
}

// Advance applies a goal-met event at now. A second event on the same day
// fails with ErrStreakAlreadyUpdated and leaves the state unchanged.
// A missed day does not reset the counter.
func (s StreakState) Advance(now time.Time) (StreakState, error) {
	if s.UpdatedOn(now) {
		return s, ErrStreakAlreadyUpdated
	}
	at := now
	return StreakState{Streak: s.Streak + 1, UpdatedAt: &at}, nil
}

// StreakEvent records that the goal was met on a day.
type StreakEvent struct {
	UserID     string    `json:"user_id"`
	StreakDate string    `json:"streak_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// StreakRepository is the port for the streak event log.
type StreakRepository interface {
	// AddStreakEvent is idempotent per (user, day).
	AddStreakEvent(ctx context.Context, userID, day string, at time.Time) error
	// ListStreakDays returns event dates in [from, to], newest first.
	ListStreakDays(ctx context.Context, userID, from, to string) ([]string, error)
}
