// Package vision implements domain.FoodAnalyzer against an OpenAI-compatible
// chat completions endpoint with image input.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"macrolens/internal/domain"
)

const systemPrompt = `Analyze the image and determine if it contains traditionally recognizable food items. Return nutritional information in valid JSON format.

Return ONLY a JSON object with these exact fields:
{
    "name": "food name or item name",
    "emoji": "emoji related to the item",
    "protein": "protein content in grams",
    "carbs": "carbohydrate content in grams",
    "fats": "fat content in grams",
    "calories": "calorie content"
}

IMPORTANT RULES:
- Return a single JSON object, not a list. If the image contains several items, report their totals.
- If the image contains recognizable food (fruits, vegetables, cooked meals, snacks, beverages), estimate a typical serving.
- If the image does NOT contain food, set ALL nutritional values to 0 and name the item you see.
- Use only numbers for nutritional values (no units).
- Be conservative: if unsure whether something is food, use 0 values.`

const descriptionPrompt = `Analyze the food in the image and return nutritional information in valid JSON format.
Use the provided text description to better understand portion sizes, ingredients and cooking methods.
Return ONLY a JSON object with these exact fields:
{
    "name": "food name",
    "emoji": "emoji related to food name",
    "protein": "protein content in grams",
    "carbs": "carbohydrate content in grams",
    "fats": "fat content in grams",
    "calories": "calorie content"
}
Use only numbers for nutritional values (no units).`

const userPrompt = "Analyze this food and provide nutritional information in the specified JSON format."

// Client calls the vision model.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a Client for the given OpenAI-compatible base URL.
func New(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

var _ domain.FoodAnalyzer = (*Client)(nil)

// Analyze sends the photo (and optional description) to the model and
// parses its estimate.
func (c *Client) Analyze(ctx context.Context, img domain.Image, description string) (*domain.FoodAnalysis, error) {
	system, text := systemPrompt, userPrompt
	if description = strings.TrimSpace(description); description != "" {
		system = descriptionPrompt
		text = userPrompt + " Additional context: " + description
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		// go-openai omits a zero temperature; this is the closest value that
		// is still sent.
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: text},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL(img),
					Detail: openai.ImageURLDetailAuto,
				}},
			}},
		},
	})
	if err != nil {
		return nil, domain.Upstream("AI analysis failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.Upstream("AI analysis failed", errors.New("model returned no choices"))
	}
	return Parse(resp.Choices[0].Message.Content)
}

func dataURL(img domain.Image) string {
	ct := img.ContentType
	if ct == "" {
		ct = "image/jpeg"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
