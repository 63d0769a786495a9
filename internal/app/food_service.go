package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"macrolens/internal/domain"
	"macrolens/internal/imageproc"
)

// Paging limits for food listings.
const (
	DefaultRecentLimit  = 3
	DefaultHistoryLimit = 20
	MaxListLimit        = 100
	MaxDailyLimit       = 20
)

// FoodConfig tunes FoodService.
type FoodConfig struct {
	MaxUploadBytes int64
	PhotoURLTTL    time.Duration
}

// FoodService encapsulates meal logging use cases.
type FoodService struct {
	foods    domain.FoodRepository
	photos   domain.PhotoStore
	analyzer domain.FoodAnalyzer
	log      *zap.Logger
	cfg      FoodConfig
}

// NewFoodService creates a FoodService.
func NewFoodService(foods domain.FoodRepository, photos domain.PhotoStore, analyzer domain.FoodAnalyzer, log *zap.Logger, cfg FoodConfig) *FoodService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.PhotoURLTTL <= 0 {
		cfg.PhotoURLTTL = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FoodService{foods: foods, photos: photos, analyzer: analyzer, log: log, cfg: cfg}
}

// MaxUploadBytes is the largest accepted photo.
func (s *FoodService) MaxUploadBytes() int64 { return s.cfg.MaxUploadBytes }

// FoodView is a record plus a short-lived URL for its photo.
type FoodView struct {
	domain.ConsumedFood
	PhotoURL string `json:"photo_url,omitempty"`
}

// PhotoUpload is a received meal photo.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

// FileInfo describes a stored upload.
type FileInfo struct {
	OriginalFilename string    `json:"original_filename"`
	StoragePath      string    `json:"storage_path"`
	FileSize         int       `json:"file_size"`
	FileType         string    `json:"file_type"`
	UploadedAt       time.Time `json:"uploaded_at"`
	PhotoURL         string    `json:"photo_url,omitempty"`
}

// UploadResult is returned by AnalyzeUpload.
type UploadResult struct {
	FileInfo FileInfo            `json:"file_info"`
	Analysis domain.FoodAnalysis `json:"nutritional_analysis"`
	Record   domain.ConsumedFood `json:"database_record"`
}

// AnalyzeUpload validates and stores a meal photo, asks the model for a
// nutritional estimate and records the result. Validation happens before
// any external call.
func (s *FoodService) AnalyzeUpload(ctx context.Context, userID string, up PhotoUpload) (*UploadResult, error) {
	if strings.TrimSpace(up.Filename) == "" {
		return nil, domain.Invalid("No file selected", "Please select a photo to upload")
	}
	if !imageproc.AllowedFilename(up.Filename) {
		return nil, domain.Invalid("Invalid file type", "Allowed types: png, jpg, jpeg, gif, webp")
	}
	if int64(len(up.Data)) > s.cfg.MaxUploadBytes {
		return nil, domain.Invalid("File too large", fmt.Sprintf("Maximum file size is %dMB", s.cfg.MaxUploadBytes>>20))
	}
	if len(up.Data) == 0 {
		return nil, domain.Invalid("No file selected", "Uploaded file is empty")
	}
	img, err := imageproc.Normalize(up.Data)
	if errors.Is(err, imageproc.ErrTooManyPixels) {
		return nil, domain.Invalid("Image too large", fmt.Sprintf("Image dimensions must not exceed %d megapixels", imageproc.MaxPixels/1_000_000))
	}
	if err != nil {
		return nil, domain.Invalid("Invalid image", "The uploaded file could not be read as an image")
	}

	path := fmt.Sprintf("food-photos/%s/%s.%s", userID, uuid.NewString(), imageproc.Extension)
	if err := s.photos.Upload(ctx, path, img); err != nil {
		return nil, domain.Upstream("Failed to upload photo to storage", err)
	}

	analysis, err := s.analyze(ctx, img, "")
	if err != nil {
		s.log.Warn("analysis failed after upload", zap.String("user_id", userID), zap.String("path", path), zap.Error(err))
		return nil, err
	}

	rec, err := s.foods.AddFood(ctx, domain.ConsumedFood{
		UserID:    userID,
		Name:      analysis.Name,
		Emoji:     analysis.Emoji,
		Protein:   analysis.Protein,
		Carbs:     analysis.Carbs,
		Fats:      analysis.Fats,
		Calories:  analysis.Calories,
		Portion:   1,
		PhotoPath: path,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, domain.Upstream("Failed to save to database", err)
	}

	return &UploadResult{
		FileInfo: FileInfo{
			OriginalFilename: up.Filename,
			StoragePath:      path,
			FileSize:         len(img.Data),
			FileType:         img.ContentType,
			UploadedAt:       rec.CreatedAt,
			PhotoURL:         s.signedURL(ctx, path),
		},
		Analysis: *analysis,
		Record:   *rec,
	}, nil
}

// ManualFood is a food entered without a photo.
type ManualFood struct {
	Name     string        `json:"name"`
	Emoji    string        `json:"emoji"`
	Protein  domain.Number `json:"protein"`
	Carbs    domain.Number `json:"carbs"`
	Fats     domain.Number `json:"fats"`
	Calories domain.Number `json:"calories"`
	Portion  domain.Number `json:"portion"`
}

// AddManual records a food without a photo.
func (s *FoodService) AddManual(ctx context.Context, userID string, in ManualFood) (*domain.ConsumedFood, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("Missing required fields", "Missing: name")
	}
	f := domain.ConsumedFood{UserID: userID, Name: name, Emoji: strings.TrimSpace(in.Emoji), Portion: 1, CreatedAt: time.Now()}
	if f.Emoji == "" {
		f.Emoji = domain.DefaultFoodEmoji
	}

	nums := []struct {
		field string
		in    domain.Number
		out   *float64
	}{
		{"protein", in.Protein, &f.Protein},
		{"carbs", in.Carbs, &f.Carbs},
		{"fats", in.Fats, &f.Fats},
		{"calories", in.Calories, &f.Calories},
		{"portion", in.Portion, &f.Portion},
	}
	for _, n := range nums {
		if !n.in.IsSet() {
			continue
		}
		v, err := validNutrient(n.field, n.in)
		if err != nil {
			return nil, err
		}
		*n.out = v
	}

	rec, err := s.foods.AddFood(ctx, f)
	if err != nil {
		return nil, domain.Upstream("Failed to save to database", err)
	}
	return rec, nil
}

// Get returns one owned record.
func (s *FoodService) Get(ctx context.Context, userID string, id int64) (*FoodView, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	v := s.view(ctx, *rec)
	return &v, nil
}

// FoodEdit is a manual partial update. Unset fields are left alone.
type FoodEdit struct {
	Name     *string       `json:"name"`
	Protein  domain.Number `json:"protein"`
	Carbs    domain.Number `json:"carbs"`
	Fats     domain.Number `json:"fats"`
	Calories domain.Number `json:"calories"`
	Portion  domain.Number `json:"portion"`
}

// Edit applies a manual edit and returns the updated record along with the
// names of the fields that changed.
func (s *FoodService) Edit(ctx context.Context, userID string, id int64, in FoodEdit) (*domain.ConsumedFood, []string, error) {
	var patch domain.FoodPatch
	var fields []string

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, nil, domain.Invalid("Invalid value for name", "name must not be empty")
		}
		patch.Name = &name
		fields = append(fields, "name")
	}
	nums := []struct {
		field string
		in    domain.Number
		out   **float64
	}{
		{"protein", in.Protein, &patch.Protein},
		{"carbs", in.Carbs, &patch.Carbs},
		{"fats", in.Fats, &patch.Fats},
		{"calories", in.Calories, &patch.Calories},
		{"portion", in.Portion, &patch.Portion},
	}
	for _, n := range nums {
		if !n.in.IsSet() {
			continue
		}
		v, err := validNutrient(n.field, n.in)
		if err != nil {
			return nil, nil, err
		}
		*n.out = &v
		fields = append(fields, n.field)
	}
	if patch.Empty() {
		return nil, nil, domain.Invalid("No valid fields to update", "Provide at least one of: name, protein, carbs, fats, calories, portion")
	}

	rec, err := s.foods.UpdateFood(ctx, userID, id, patch)
	if err != nil {
		return nil, nil, domain.Upstream("Failed to update food record", err)
	}
	if rec == nil {
		return nil, nil, foodNotFound()
	}
	return rec, fields, nil
}

// ReanalysisResult is returned by EditWithAI.
type ReanalysisResult struct {
	FoodID          int64               `json:"food_id"`
	TextDescription string              `json:"text_description"`
	PhotoURL        string              `json:"photo_url,omitempty"`
	Original        domain.FoodAnalysis `json:"original_analysis"`
	Updated         domain.FoodAnalysis `json:"updated_analysis"`
	Record          domain.ConsumedFood `json:"database_record"`
}

// EditWithAI re-analyzes a record's stored photo with an extra text
// description and overwrites its nutritional values.
func (s *FoodService) EditWithAI(ctx context.Context, userID string, id int64, description string) (*ReanalysisResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.Invalid("Missing required fields", "Missing: text_description")
	}
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rec.PhotoPath == "" {
		return nil, domain.Invalid("No photo available", "This food record has no photo to re-analyze")
	}

	img, err := s.photos.Download(ctx, rec.PhotoPath)
	if err != nil {
		return nil, domain.Upstream("Failed to retrieve image", err)
	}
	analysis, err := s.analyze(ctx, img, description)
	if err != nil {
		return nil, err
	}

	updated, err := s.foods.UpdateFood(ctx, userID, id, analysis.Patch())
	if err != nil {
		return nil, domain.Upstream("Failed to update database", err)
	}
	if updated == nil {
		return nil, foodNotFound()
	}

	return &ReanalysisResult{
		FoodID:          id,
		TextDescription: description,
		PhotoURL:        s.signedURL(ctx, rec.PhotoPath),
		Original: domain.FoodAnalysis{
			Name: rec.Name, Emoji: rec.Emoji,
			Protein: rec.Protein, Carbs: rec.Carbs, Fats: rec.Fats, Calories: rec.Calories,
		},
		Updated: *analysis,
		Record:  *updated,
	}, nil
}

// DeleteResult is returned by Delete.
type DeleteResult struct {
	FoodID       int64               `json:"food_id"`
	Deleted      domain.ConsumedFood `json:"deleted_record"`
	PhotoDeleted bool                `json:"photo_deleted"`
}

// Delete removes an owned record. Removing its photo is best effort.
func (s *FoodService) Delete(ctx context.Context, userID string, id int64) (*DeleteResult, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.foods.DeleteFood(ctx, userID, id)
	if err != nil {
		return nil, domain.Upstream("Failed to delete food record", err)
	}
	if !ok {
		return nil, foodNotFound()
	}

	res := &DeleteResult{FoodID: id, Deleted: *rec}
	if rec.PhotoPath != "" {
		if err := s.photos.Delete(ctx, rec.PhotoPath); err != nil {
			s.log.Warn("could not delete photo", zap.String("path", rec.PhotoPath), zap.Error(err))
		} else {
			res.PhotoDeleted = true
		}
	}
	return res, nil
}

// DayFoods lists the records of one day.
type DayFoods struct {
	Date  string     `json:"date"`
	Foods []FoodView `json:"foods"`
	Count int        `json:"count"`
}

// RecentForDay lists a day's records, newest first.
func (s *FoodService) RecentForDay(ctx context.Context, userID, day string, limit, offset int) (*DayFoods, error) {
	start, end, err := domain.DayBounds(day)
	if err != nil {
		return nil, err
	}
	foods, err := s.foods.ListFoodsBetween(ctx, userID, start, end, ClampLimit(limit, DefaultRecentLimit, MaxListLimit), max(offset, 0))
	if err != nil {
		return nil, domain.Upstream("Failed to fetch food records", err)
	}
	views := s.views(ctx, foods)
	return &DayFoods{Date: day, Foods: views, Count: len(views)}, nil
}

// History lists all records, newest first.
func (s *FoodService) History(ctx context.Context, userID string, limit, offset int) ([]FoodView, error) {
	foods, err := s.foods.ListFoods(ctx, userID, ClampLimit(limit, DefaultHistoryLimit, MaxListLimit), max(offset, 0))
	if err != nil {
		return nil, domain.Upstream("Failed to fetch food history", err)
	}
	return s.views(ctx, foods), nil
}

// DayFoodsWithTotals is one day of the weekly listing.
type DayFoodsWithTotals struct {
	Foods       []FoodView    `json:"foods"`
	Count       int           `json:"count"`
	DailyTotals domain.Macros `json:"daily_totals"`
}

// WeeklyFoods lists recent records for each of the last WeeklyDays days.
type WeeklyFoods struct {
	Days      map[string]DayFoodsWithTotals `json:"weekly_foods"`
	DateRange domain.DateRange              `json:"date_range"`
}

// WeeklyRecent returns up to dailyLimit records per day for the last
// WeeklyDays days. Totals cover the listed records only.
func (s *FoodService) WeeklyRecent(ctx context.Context, userID string, dailyLimit int) (*WeeklyFoods, error) {
	dailyLimit = ClampLimit(dailyLimit, DefaultRecentLimit, MaxDailyLimit)
	days := domain.RecentDays(time.Now(), domain.WeeklyDays)

	out := &WeeklyFoods{
		Days:      make(map[string]DayFoodsWithTotals, len(days)),
		DateRange: domain.DateRange{StartDate: days[0], EndDate: days[len(days)-1]},
	}
	for _, day := range days {
		start, end, err := domain.DayBounds(day)
		if err != nil {
			return nil, err
		}
		foods, err := s.foods.ListFoodsBetween(ctx, userID, start, end, dailyLimit, 0)
		if err != nil {
			return nil, domain.Upstream("Failed to fetch weekly food records", err)
		}
		totals := domain.SumFoods(foods)
		out.Days[day] = DayFoodsWithTotals{
			Foods: s.views(ctx, foods),
			Count: len(foods),
			DailyTotals: domain.Macros{
				Calories: domain.Round(totals.Calories, 2),
				Protein:  domain.Round(totals.Protein, 2),
				Carbs:    domain.Round(totals.Carbs, 2),
				Fats:     domain.Round(totals.Fats, 2),
			},
		}
	}
	return out, nil
}

func (s *FoodService) analyze(ctx context.Context, img domain.Image, description string) (*domain.FoodAnalysis, error) {
	a, err := s.analyzer.Analyze(ctx, img, description)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, domain.Upstream("AI analysis failed", err)
	}
	return a, nil
}

func (s *FoodService) owned(ctx context.Context, userID string, id int64) (*domain.ConsumedFood, error) {
	rec, err := s.foods.GetFood(ctx, userID, id)
	if err != nil {
		return nil, domain.Upstream("Failed to fetch food record", err)
	}
	if rec == nil {
		return nil, foodNotFound()
	}
	return rec, nil
}

func (s *FoodService) signedURL(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}
	u, err := s.photos.SignedURL(ctx, path, s.cfg.PhotoURLTTL)
	if err != nil {
		s.log.Warn("could not sign photo url", zap.String("path", path), zap.Error(err))
		return ""
	}
	return u
}

func (s *FoodService) view(ctx context.Context, f domain.ConsumedFood) FoodView {
	return FoodView{ConsumedFood: f, PhotoURL: s.signedURL(ctx, f.PhotoPath)}
}

func (s *FoodService) views(ctx context.Context, foods []domain.ConsumedFood) []FoodView {
	out := make([]FoodView, 0, len(foods))
	for _, f := range foods {
		out = append(out, s.view(ctx, f))
	}
	return out
}

func foodNotFound() error {
	return domain.NotFound("Food record not found", "Food record does not exist or you do not have permission to access it")
}

func validNutrient(field string, n domain.Number) (float64, error) {
	v, err := n.Float64()
	if err != nil || v < 0 || (field == "portion" && v == 0) {
		return 0, domain.Invalid("Invalid value for "+field, field+" must be a non-negative number")
	}
	if v > domain.MaxNutrientValue {
		return 0, domain.Invalid("Invalid value for "+field, fmt.Sprintf("%s must not exceed %d", field, domain.MaxNutrientValue))
	}
	return v, nil
}

// ClampLimit applies fallback to non-positive limits and caps the rest at ceiling.
func ClampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, ceiling)
}
