package app_test

import (
	"context"
	"time"

	"macrolens/internal/domain"
)

type mockProfileRepo struct {
	getFn     func(ctx context.Context, userID string) (*domain.UserProfile, error)
	upsertFn  func(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, bool, error)
	targetsFn func(ctx context.Context, userID string, t domain.DailyTargets, at time.Time) (*domain.UserProfile, error)
	advanceFn func(ctx context.Context, userID string, streak int, at, notBefore time.Time) (bool, error)
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepo) UpsertProfile(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, p)
	}
	return p, true, nil
}

func (m *mockProfileRepo) UpdateTargets(ctx context.Context, userID string, t domain.DailyTargets, at time.Time) (*domain.UserProfile, error) {
	if m.targetsFn != nil {
		return m.targetsFn(ctx, userID, t, at)
	}
	return nil, nil
}

func (m *mockProfileRepo) AdvanceStreak(ctx context.Context, userID string, streak int, at, notBefore time.Time) (bool, error) {
	if m.advanceFn != nil {
		return m.advanceFn(ctx, userID, streak, at, notBefore)
	}
	return true, nil
}

type mockFoodRepo struct {
	addFn     func(ctx context.Context, f domain.ConsumedFood) (*domain.ConsumedFood, error)
	getFn     func(ctx context.Context, userID string, id int64) (*domain.ConsumedFood, error)
	updateFn  func(ctx context.Context, userID string, id int64, p domain.FoodPatch) (*domain.ConsumedFood, error)
	deleteFn  func(ctx context.Context, userID string, id int64) (bool, error)
	betweenFn func(ctx context.Context, userID string, start, end time.Time, limit, offset int) ([]domain.ConsumedFood, error)
	listFn    func(ctx context.Context, userID string, limit, offset int) ([]domain.ConsumedFood, error)
}

func (m *mockFoodRepo) AddFood(ctx context.Context, f domain.ConsumedFood) (*domain.ConsumedFood, error) {
	if m.addFn != nil {
		return m.addFn(ctx, f)
	}
	f.ID = 1
	return &f, nil
}

func (m *mockFoodRepo) GetFood(ctx context.Context, userID string, id int64) (*domain.ConsumedFood, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockFoodRepo) UpdateFood(ctx context.Context, userID string, id int64, p domain.FoodPatch) (*domain.ConsumedFood, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, p)
	}
	return nil, nil
}

func (m *mockFoodRepo) DeleteFood(ctx context.Context, userID string, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return true, nil
}

func (m *mockFoodRepo) ListFoodsBetween(ctx context.Context, userID string, start, end time.Time, limit, offset int) ([]domain.ConsumedFood, error) {
	if m.betweenFn != nil {
		return m.betweenFn(ctx, userID, start, end, limit, offset)
	}
	return nil, nil
}

func (m *mockFoodRepo) ListFoods(ctx context.Context, userID string, limit, offset int) ([]domain.ConsumedFood, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

type mockStreakRepo struct {
	addFn  func(ctx context.Context, userID, day string, at time.Time) error
	listFn func(ctx context.Context, userID, from, to string) ([]string, error)
}

func (m *mockStreakRepo) AddStreakEvent(ctx context.Context, userID, day string, at time.Time) error {
	if m.addFn != nil {
		return m.addFn(ctx, userID, day, at)
	}
	return nil
}

func (m *mockStreakRepo) ListStreakDays(ctx context.Context, userID, from, to string) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, from, to)
	}
	return nil, nil
}

type mockPhotoStore struct {
	uploadFn   func(ctx context.Context, path string, img domain.Image) error
	downloadFn func(ctx context.Context, path string) (domain.Image, error)
	signFn     func(ctx context.Context, path string, ttl time.Duration) (string, error)
	deleteFn   func(ctx context.Context, path string) error
}

func (m *mockPhotoStore) Upload(ctx context.Context, path string, img domain.Image) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, path, img)
	}
	return nil
}

func (m *mockPhotoStore) Download(ctx context.Context, path string) (domain.Image, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, path)
	}
	return domain.Image{Data: []byte("img"), ContentType: "image/jpeg"}, nil
}

func (m *mockPhotoStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if m.signFn != nil {
		return m.signFn(ctx, path, ttl)
	}
	return "https://storage.example/" + path, nil
}

func (m *mockPhotoStore) Delete(ctx context.Context, path string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, path)
	}
	return nil
}

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, img domain.Image, description string) (*domain.FoodAnalysis, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, img domain.Image, description string) (*domain.FoodAnalysis, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, img, description)
	}
	return &domain.FoodAnalysis{Name: "Salad", Emoji: "🥗", Protein: 5, Carbs: 10, Fats: 7, Calories: 120}, nil
}
