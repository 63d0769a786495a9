package domain

import (
	"context"
	"time"
)

// Nutrition defaults for fields the vision model leaves out.
const (
	DefaultFoodName  = "Unknown Food"
	DefaultFoodEmoji = "🍽️"

	// MaxNutrientValue bounds any single stored macro or calorie value.
	MaxNutrientValue = 100000
)

// ConsumedFood is one logged food item.
type ConsumedFood struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fats      float64   `json:"fats"`
	Calories  float64   `json:"calories"`
	Portion   float64   `json:"portion"`
	PhotoPath string    `json:"photo_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FoodPatch lists the editable fields of a ConsumedFood. Nil means unchanged.
type FoodPatch struct {
	Name     *string
	Emoji    *string
	Protein  *float64
	Carbs    *float64
	Fats     *float64
	Calories *float64
	Portion  *float64
}

// Empty reports whether the patch changes nothing.
func (p FoodPatch) Empty() bool {
	return p.Name == nil && p.Emoji == nil && p.Protein == nil && p.Carbs == nil &&
		p.Fats == nil && p.Calories == nil && p.Portion == nil
}

// Apply returns a copy of f with the patch applied.
func (p FoodPatch) Apply(f ConsumedFood) ConsumedFood {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Emoji != nil {
		f.Emoji = *p.Emoji
	}
	if p.Protein != nil {
		f.Protein = *p.Protein
	}
	if p.Carbs != nil {
		f.Carbs = *p.Carbs
	}
	if p.Fats != nil {
		f.Fats = *p.Fats
	}
	if p.Calories != nil {
		f.Calories = *p.Calories
	}
	if p.Portion != nil {
		f.Portion = *p.Portion
	}
	return f
}

// FoodAnalysis is the nutritional estimate produced by the vision model.
type FoodAnalysis struct {
	Name     string  `json:"name"`
	Emoji    string  `json:"emoji"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Calories float64 `json:"calories"`
}

// Patch converts an analysis into a full overwrite of the nutritional fields.
func (a FoodAnalysis) Patch() FoodPatch {
	return FoodPatch{
		Name:     &a.Name,
		Emoji:    &a.Emoji,
		Protein:  &a.Protein,
		Carbs:    &a.Carbs,
		Fats:     &a.Fats,
		Calories: &a.Calories,
	}
}

// Image is an encoded image ready to send to storage or a model.
type Image struct {
	Data        []byte
	ContentType string
}

// FoodRepository is the port for consumed-food persistence. Every method is
// scoped to the owning user; records owned by others behave as missing.
type FoodRepository interface {
	AddFood(ctx context.Context, f ConsumedFood) (*ConsumedFood, error)
	GetFood(ctx context.Context, userID string, id int64) (*ConsumedFood, error)
	UpdateFood(ctx context.Context, userID string, id int64, patch FoodPatch) (*ConsumedFood, error)
	DeleteFood(ctx context.Context, userID string, id int64) (bool, error)
	// ListFoodsBetween returns records with start <= created_at < end,
	// newest first. A limit <= 0 means no limit.
	ListFoodsBetween(ctx context.Context, userID string, start, end time.Time, limit, offset int) ([]ConsumedFood, error)
	ListFoods(ctx context.Context, userID string, limit, offset int) ([]ConsumedFood, error)
}

// PhotoStore is the port for the object store holding meal photos.
type PhotoStore interface {
	Upload(ctx context.Context, path string, img Image) error
	Download(ctx context.Context, path string) (Image, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}

// FoodAnalyzer estimates nutrition from a photo and an optional description.
type FoodAnalyzer interface {
	Analyze(ctx context.Context, img Image, description string) (*FoodAnalysis, error)
}
