package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// AddStreakEvent records a goal-met day. Repeats for the same day are ignored.
func (d *DB) AddStreakEvent(ctx context.Context, userID, day string, at time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO user_streaks(user_id, streak_date, created_at) VALUES($1, $2, $3);",
		userID, day, at.UTC(),
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return nil
	}
	return err
}

// ListStreakDays returns event dates in [from, to], newest first.
func (d *DB) ListStreakDays(ctx context.Context, userID, from, to string) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT to_char(streak_date, 'YYYY-MM-DD') FROM user_streaks WHERE user_id=$1 AND streak_date >= $2 AND streak_date <= $3 ORDER BY streak_date DESC;",
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}
