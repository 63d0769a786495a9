package vision

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrolens/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.FoodAnalysis
	}{
		{
			name: "plain json",
			raw:  `{"name":"Apple","emoji":"🍎","protein":0.5,"carbs":25,"fats":0.3,"calories":95}`,
			want: domain.FoodAnalysis{Name: "Apple", Emoji: "🍎", Protein: 0.5, Carbs: 25, Fats: 0.3, Calories: 95},
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"name\":\"Toast\",\"emoji\":\"🍞\",\"protein\":\"3\",\"carbs\":\"15\",\"fats\":\"1\",\"calories\":\"80\"}\n```",
			want: domain.FoodAnalysis{Name: "Toast", Emoji: "🍞", Protein: 3, Carbs: 15, Fats: 1, Calories: 80},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"name\":\"Rice\",\"calories\":200}\n```",
			want: domain.FoodAnalysis{Name: "Rice", Emoji: domain.DefaultFoodEmoji, Calories: 200},
		},
		{
			name: "units in values",
			raw:  `{"name":"Steak","protein":"62 g","carbs":"0g","fats":"30.5 g","calories":"540 kcal"}`,
			want: domain.FoodAnalysis{Name: "Steak", Emoji: domain.DefaultFoodEmoji, Protein: 62, Fats: 30.5, Calories: 540},
		},
		{
			name: "defaults",
			raw:  `{}`,
			want: domain.FoodAnalysis{Name: domain.DefaultFoodName, Emoji: domain.DefaultFoodEmoji},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestParse_InvalidKeepsRaw(t *testing.T) {
	for _, raw := range []string{
		"I think this is a sandwich",
		`{"calories":"lots"}`,
		`{"calories":"Inf"}`,
		`{"protein":"NaN"}`,
		`{"fats":1e400}`,
		`{"carbs":"-5 g"}`,
		`{"calories":"250000 kcal"}`,
	} {
		_, err := Parse(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUpstream))

		var derr *domain.Error
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, raw, derr.Raw)
		assert.Equal(t, "Failed to parse nutritional data", derr.Title)
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}

func TestClientAnalyze(t *testing.T) {
	var got struct {
		Model          string `json:"model"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []json.RawMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/openai/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Contains(t, string(body), "data:image/jpeg;base64,")
		assert.Contains(t, string(body), "Additional context: two slices")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"`+
			"```json\\n{\\\"name\\\":\\\"Pizza\\\",\\\"emoji\\\":\\\"🍕\\\",\\\"protein\\\":24,\\\"carbs\\\":66,\\\"fats\\\":20,\\\"calories\\\":560}\\n```"+
			`"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1beta/openai/", "test-key", "gemini-2.0-flash")
	a, err := c.Analyze(context.Background(), domain.Image{Data: []byte{0xff, 0xd8}, ContentType: "image/jpeg"}, "two slices")
	require.NoError(t, err)
	assert.Equal(t, "Pizza", a.Name)
	assert.Equal(t, 560.0, a.Calories)
	assert.Equal(t, "gemini-2.0-flash", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Len(t, got.Messages, 2)
}

func TestClientAnalyze_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", "m")
	_, err := c.Analyze(context.Background(), domain.Image{Data: []byte("x")}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.True(t, strings.Contains(err.Error(), "AI analysis failed"))
}
