package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"macrolens/internal/domain"
)

const foodColumns = "id, user_id, name, emoji, protein, carbs, fats, calories, portion, photo_path, created_at"

func scanFood(row interface{ Scan(...any) error }) (domain.ConsumedFood, error) {
	var f domain.ConsumedFood
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Emoji, &f.Protein, &f.Carbs, &f.Fats,
		&f.Calories, &f.Portion, &f.PhotoPath, &f.CreatedAt)
	return f, err
}

func optionalFood(f domain.ConsumedFood, err error) (*domain.ConsumedFood, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// AddFood inserts a consumed-food record.
func (d *DB) AddFood(ctx context.Context, f domain.ConsumedFood) (*domain.ConsumedFood, error) {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	if f.Portion == 0 {
		f.Portion = 1
	}
	row := d.sql.QueryRowContext(ctx, `
		INSERT INTO foods_consumed(user_id, name, emoji, protein, carbs, fats, calories, portion, photo_path, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+foodColumns+";",
		f.UserID, f.Name, f.Emoji, f.Protein, f.Carbs, f.Fats, f.Calories, f.Portion, f.PhotoPath, f.CreatedAt.UTC(),
	)
	return optionalFood(scanFood(row))
}

// GetFood returns the record id owned by userID, or nil.
func (d *DB) GetFood(ctx context.Context, userID string, id int64) (*domain.ConsumedFood, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+foodColumns+" FROM foods_consumed WHERE id=$1 AND user_id=$2;", id, userID)
	return optionalFood(scanFood(row))
}

// UpdateFood applies the non-nil fields of patch.
func (d *DB) UpdateFood(ctx context.Context, userID string, id int64, patch domain.FoodPatch) (*domain.ConsumedFood, error) {
	if patch.Empty() {
		return d.GetFood(ctx, userID, id)
	}

	var (
		sets []string
		args = []any{id, userID}
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Emoji != nil {
		set("emoji", *patch.Emoji)
	}
	if patch.Protein != nil {
		set("protein", *patch.Protein)
	}
	if patch.Carbs != nil {
		set("carbs", *patch.Carbs)
	}
	if patch.Fats != nil {
		set("fats", *patch.Fats)
	}
	if patch.Calories != nil {
		set("calories", *patch.Calories)
	}
	if patch.Portion != nil {
		set("portion", *patch.Portion)
	}

	row := d.sql.QueryRowContext(ctx,
		"UPDATE foods_consumed SET "+strings.Join(sets, ", ")+" WHERE id=$1 AND user_id=$2 RETURNING "+foodColumns+";",
		args...)
	return optionalFood(scanFood(row))
}

// DeleteFood removes the record id owned by userID.
func (d *DB) DeleteFood(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM foods_consumed WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListFoodsBetween returns records created in [start, end), newest first.
func (d *DB) ListFoodsBetween(ctx context.Context, userID string, start, end time.Time, limit, offset int) ([]domain.ConsumedFood, error) {
	q := "SELECT " + foodColumns + " FROM foods_consumed WHERE user_id=$1 AND created_at >= $2 AND created_at < $3 ORDER BY created_at DESC, id DESC"
	return d.listFoods(ctx, q, []any{userID, start.UTC(), end.UTC()}, limit, offset)
}

// ListFoods returns all records of userID, newest first.
func (d *DB) ListFoods(ctx context.Context, userID string, limit, offset int) ([]domain.ConsumedFood, error) {
	q := "SELECT " + foodColumns + " FROM foods_consumed WHERE user_id=$1 ORDER BY created_at DESC, id DESC"
	return d.listFoods(ctx, q, []any{userID}, limit, offset)
}

func (d *DB) listFoods(ctx context.Context, q string, args []any, limit, offset int) ([]domain.ConsumedFood, error) {
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := d.sql.QueryContext(ctx, q+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ConsumedFood{}
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
