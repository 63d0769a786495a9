package app

import (
	"context"
	"strings"
	"time"

	"macrolens/internal/domain"
)

// ProfileInput is the onboarding payload.
type ProfileInput struct {
	domain.TargetsInput
	TrackingDifficulty string `json:"tracking_difficulty"`
	ExperienceLevel    string `json:"experience_level"`
}

// ProfileService encapsulates onboarding and target computation use cases.
type ProfileService struct {
	repo domain.ProfileRepository
}

// NewProfileService creates a ProfileService backed by the given repository.
func NewProfileService(repo domain.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Save validates the onboarding answers, computes daily targets and stores
// the profile. It reports whether the profile was newly created.
func (s *ProfileService) Save(ctx context.Context, userID string, in ProfileInput) (*domain.UserProfile, bool, error) {
	missing := missingTargetFields(in.TargetsInput)
	if strings.TrimSpace(in.TrackingDifficulty) == "" {
		missing = append(missing, "tracking_difficulty")
	}
	if strings.TrimSpace(in.ExperienceLevel) == "" {
		missing = append(missing, "experience_level")
	}
	if len(missing) > 0 {
		return nil, false, domain.Invalid("Missing required fields", "Missing: "+strings.Join(missing, ", "))
	}

	b, err := domain.ParseBiometrics(in.TargetsInput)
	if err != nil {
		return nil, false, err
	}

	p := &domain.UserProfile{
		UserID:              userID,
		Gender:              b.Gender,
		ActivityLevel:       b.ActivityLevel,
		TrackingDifficulty:  strings.TrimSpace(in.TrackingDifficulty),
		ExperienceLevel:     strings.TrimSpace(in.ExperienceLevel),
		HeightUnit:          b.HeightUnit,
		HeightValue:         b.HeightValue,
		WeightUnit:          b.WeightUnit,
		WeightValue:         b.WeightValue,
		DateOfBirth:         b.DateOfBirth.Format(domain.DateLayout),
		MainGoal:            b.MainGoal,
		DietaryPreference:   b.DietaryPreference,
		OnboardingCompleted: true,
	}
	if in.HeightInches.IsSet() {
		inches := b.HeightInches
		p.HeightInches = &inches
	}
	p.SetTargets(domain.CalculateTargets(b, time.Now()))

	saved, created, err := s.repo.UpsertProfile(ctx, p)
	if err != nil {
		return nil, false, domain.Upstream("Failed to save profile", err)
	}
	return saved, created, nil
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, domain.Upstream("Failed to load profile", err)
	}
	if p == nil {
		return nil, domain.NotFound("Profile not found", "Create a profile first")
	}
	return p, nil
}

// Recalculate recomputes targets from the stored biometrics, e.g. after a
// birthday changes the age term.
func (s *ProfileService) Recalculate(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := p.Biometrics()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	updated, err := s.repo.UpdateTargets(ctx, userID, domain.CalculateTargets(b, now), now)
	if err != nil {
		return nil, domain.Upstream("Failed to update targets", err)
	}
	if updated == nil {
		return nil, domain.NotFound("Profile not found", "Create a profile first")
	}
	return updated, nil
}

// Preview computes targets without storing anything.
func (s *ProfileService) Preview(in domain.TargetsInput) (domain.DailyTargets, error) {
	if missing := missingTargetFields(in); len(missing) > 0 {
		return domain.DailyTargets{}, domain.Invalid("Missing required fields", "Missing: "+strings.Join(missing, ", "))
	}
	b, err := domain.ParseBiometrics(in)
	if err != nil {
		return domain.DailyTargets{}, err
	}
	return domain.CalculateTargets(b, time.Now()), nil
}

func missingTargetFields(in domain.TargetsInput) []string {
	fields := []struct {
		name string
		set  bool
	}{
		{"gender", strings.TrimSpace(in.Gender) != ""},
		{"activity_level", strings.TrimSpace(in.ActivityLevel) != ""},
		{"height_unit", strings.TrimSpace(in.HeightUnit) != ""},
		{"height_value", in.HeightValue.IsSet()},
		{"weight_unit", strings.TrimSpace(in.WeightUnit) != ""},
		{"weight_value", in.WeightValue.IsSet()},
		{"date_of_birth", strings.TrimSpace(in.DateOfBirth) != ""},
		{"main_goal", strings.TrimSpace(in.MainGoal) != ""},
		{"dietary_preference", strings.TrimSpace(in.DietaryPreference) != ""},
	}
	var missing []string
	for _, f := range fields {
		if !f.set {
			missing = append(missing, f.name)
		}
	}
	return missing
}
