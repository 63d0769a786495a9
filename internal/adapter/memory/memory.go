// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"macrolens/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	profiles map[string]*domain.UserProfile
	foods    []domain.ConsumedFood
	streaks  map[string]map[string]time.Time

	foodIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[string]*domain.UserProfile),
		streaks:  make(map[string]map[string]time.Time),
	}
}

// Ensure interfaces are met.
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.FoodRepository = (*DB)(nil)
var _ domain.StreakRepository = (*DB)(nil)

// --- ProfileRepository ---

// GetProfile returns a copy of the stored profile.
func (db *DB) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// UpsertProfile stores onboarding data and targets, keeping streak state.
func (db *DB) UpsertProfile(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	next := *p
	existing, ok := db.profiles[p.UserID]
	if ok {
		next.Streak = existing.Streak
		next.StreakUpdatedAt = existing.StreakUpdatedAt
		next.CreatedAt = existing.CreatedAt
	} else {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	db.profiles[p.UserID] = &next

	cp := next
	return &cp, !ok, nil
}

// UpdateTargets overwrites stored targets.
func (db *DB) UpdateTargets(ctx context.Context, userID string, t domain.DailyTargets, at time.Time) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}
	p.SetTargets(t)
	p.UpdatedAt = at.UTC()
	cp := *p
	return &cp, nil
}

// AdvanceStreak sets the streak if it was not already updated since notBefore.
func (db *DB) AdvanceStreak(ctx context.Context, userID string, streak int, at, notBefore time.Time) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return false, nil
	}
	if p.StreakUpdatedAt != nil && !p.StreakUpdatedAt.Before(notBefore) {
		return false, nil
	}
	ts := at.UTC()
	p.Streak = streak
	p.StreakUpdatedAt = &ts
	p.UpdatedAt = ts
	return true, nil
}

// --- FoodRepository ---

// AddFood stores a new record and assigns its ID.
func (db *DB) AddFood(ctx context.Context, f domain.ConsumedFood) (*domain.ConsumedFood, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.foodIDCounter++
	f.ID = db.foodIDCounter
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	f.CreatedAt = f.CreatedAt.UTC()
	if f.Portion == 0 {
		f.Portion = 1
	}
	db.foods = append(db.foods, f)
	return &f, nil
}

// GetFood returns an owned record.
func (db *DB) GetFood(ctx context.Context, userID string, id int64) (*domain.ConsumedFood, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if i := db.indexOf(userID, id); i >= 0 {
		f := db.foods[i]
		return &f, nil
	}
	return nil, nil
}

// UpdateFood applies a patch to an owned record.
func (db *DB) UpdateFood(ctx context.Context, userID string, id int64, patch domain.FoodPatch) (*domain.ConsumedFood, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexOf(userID, id)
	if i < 0 {
		return nil, nil
	}
	db.foods[i] = patch.Apply(db.foods[i])
	f := db.foods[i]
	return &f, nil
}

// DeleteFood removes an owned record.
func (db *DB) DeleteFood(ctx context.Context, userID string, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexOf(userID, id)
	if i < 0 {
		return false, nil
	}
	db.foods = slices.Delete(db.foods, i, i+1)
	return true, nil
}

// ListFoodsBetween returns records created in [start, end), newest first.
func (db *DB) ListFoodsBetween(ctx context.Context, userID string, start, end time.Time, limit, offset int) ([]domain.ConsumedFood, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.ConsumedFood
	for _, f := range db.foods {
		if f.UserID == userID && !f.CreatedAt.Before(start) && f.CreatedAt.Before(end) {
			result = append(result, f)
		}
	}
	return page(newestFirst(result), limit, offset), nil
}

// ListFoods returns all records of a user, newest first.
func (db *DB) ListFoods(ctx context.Context, userID string, limit, offset int) ([]domain.ConsumedFood, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.ConsumedFood
	for _, f := range db.foods {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	return page(newestFirst(result), limit, offset), nil
}

func (db *DB) indexOf(userID string, id int64) int {
	for i, f := range db.foods {
		if f.ID == id && f.UserID == userID {
			return i
		}
	}
	return -1
}

func newestFirst(foods []domain.ConsumedFood) []domain.ConsumedFood {
	sort.SliceStable(foods, func(i, j int) bool {
		if foods[i].CreatedAt.Equal(foods[j].CreatedAt) {
			return foods[i].ID > foods[j].ID
		}
		return foods[i].CreatedAt.After(foods[j].CreatedAt)
	})
	return foods
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// --- StreakRepository ---

// AddStreakEvent records a goal-met day. Repeats for the same day are ignored.
func (db *DB) AddStreakEvent(ctx context.Context, userID, day string, at time.Time) error {
	if _, err := time.Parse(domain.DateLayout, day); err != nil {
		return fmt.Errorf("streak day %q: %w", day, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	days, ok := db.streaks[userID]
	if !ok {
		days = make(map[string]time.Time)
		db.streaks[userID] = days
	}
	if _, exists := days[day]; !exists {
		days[day] = at.UTC()
	}
	return nil
}

// ListStreakDays returns event days within [from, to], newest first.
func (db *DB) ListStreakDays(ctx context.Context, userID, from, to string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []string{}
	for day := range db.streaks[userID] {
		// ISO dates compare correctly as strings.
		if day >= from && day <= to {
			out = append(out, day)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}
