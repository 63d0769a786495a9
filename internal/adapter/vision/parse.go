package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"macrolens/internal/domain"
)

var leadingNumber = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

type rawAnalysis struct {
	Name     *string       `json:"name"`
	Emoji    *string       `json:"emoji"`
	Protein  domain.Number `json:"protein"`
	Carbs    domain.Number `json:"carbs"`
	Fats     domain.Number `json:"fats"`
	Calories domain.Number `json:"calories"`
}

// Parse decodes model output into an analysis. Markdown code fences are
// stripped, numeric strings such as "12" or "12 g" are accepted, and missing
// fields take their defaults. Unparseable output is reported as an upstream
// error carrying the raw text.
func Parse(raw string) (*domain.FoodAnalysis, error) {
	var r rawAnalysis
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &r); err != nil {
		return nil, parseError(raw, fmt.Errorf("AI response was not valid JSON: %w", err))
	}

	a := &domain.FoodAnalysis{Name: domain.DefaultFoodName, Emoji: domain.DefaultFoodEmoji}
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		a.Name = strings.TrimSpace(*r.Name)
	}
	if r.Emoji != nil && strings.TrimSpace(*r.Emoji) != "" {
		a.Emoji = strings.TrimSpace(*r.Emoji)
	}

	fields := []struct {
		name string
		in   domain.Number
		out  *float64
	}{
		{"protein", r.Protein, &a.Protein},
		{"carbs", r.Carbs, &a.Carbs},
		{"fats", r.Fats, &a.Fats},
		{"calories", r.Calories, &a.Calories},
	}
	for _, f := range fields {
		v, err := number(f.in)
		if err != nil {
			return nil, parseError(raw, fmt.Errorf("%s: %w", f.name, err))
		}
		*f.out = v
	}
	return a, nil
}

// StripCodeFence removes a surrounding ``` or ```json block.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func number(n domain.Number) (float64, error) {
	if !n.IsSet() {
		return 0, nil
	}
	v, err := n.Float64()
	if errors.Is(err, domain.ErrNotFinite) {
		return 0, err
	}
	if err != nil {
		m := leadingNumber.FindString(string(n))
		if m == "" {
			return 0, fmt.Errorf("not a number: %q", string(n))
		}
		if v, err = strconv.ParseFloat(m, 64); err != nil {
			return 0, err
		}
	}
	if v < 0 || v > domain.MaxNutrientValue {
		return 0, fmt.Errorf("out of range: %v", v)
	}
	return v, nil
}

func parseError(raw string, err error) error {
	return domain.Upstream("Failed to parse nutritional data", err).WithRaw(raw)
}
