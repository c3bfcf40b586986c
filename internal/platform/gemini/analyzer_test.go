package gemini

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platesnap/platesnap-api/internal/analysis"
	"github.com/platesnap/platesnap-api/internal/config"
	"github.com/platesnap/platesnap-api/internal/domain"
)

func validLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:      "test-api-key",
		ModelName:         "gemini-2.0-flash",
		MaxRetries:        1,
		RetryDelaySeconds: 1,
		TimeoutSeconds:    5,
	}
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestDecodeResult_Valid(t *testing.T) {
	t.Parallel()
	text := `{
		"calories": 520.5,
		"explanation": "A bowl of ramen with pork and egg.",
		"confidence": "medium",
		"foodItems": ["ramen", "pork", "egg"]
	}`

	result, err := decodeResult(text)
	require.NoError(t, err)
	require.NotNil(t, result.Calories)
	assert.Equal(t, 520.5, *result.Calories)
	assert.Equal(t, "A bowl of ramen with pork and egg.", result.Explanation)
	assert.Equal(t, domain.ConfidenceMedium, result.Confidence)
	assert.Equal(t, []string{"ramen", "pork", "egg"}, result.FoodItems)
}

func TestDecodeResult_NullCalories(t *testing.T) {
	t.Parallel()
	text := `{
		"calories": null,
		"explanation": "Image too blurry to estimate portions.",
		"confidence": "low",
		"foodItems": []
	}`

	result, err := decodeResult(text)
	require.NoError(t, err)
	assert.Nil(t, result.Calories)
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
}

func TestDecodeResult_MissingFoodItems(t *testing.T) {
	t.Parallel()
	text := `{
		"calories": 120,
		"explanation": "A single banana.",
		"confidence": "high"
	}`

	result, err := decodeResult(text)
	require.NoError(t, err)
	// Absent list normalizes to empty, never nil
	require.NotNil(t, result.FoodItems)
	assert.Empty(t, result.FoodItems)
}

func TestDecodeResult_Malformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
	}{
		{"not json", "I think this is about 500 calories."},
		{"empty string", ""},
		{"wrong calorie type", `{"calories": "lots", "explanation": "x", "confidence": "high"}`},
		{"missing explanation", `{"calories": 100, "confidence": "high", "foodItems": []}`},
		{"bad confidence", `{"calories": 100, "explanation": "x", "confidence": "certain"}`},
		{"negative calories", `{"calories": -5, "explanation": "x", "confidence": "low"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := decodeResult(tc.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, analysis.ErrMalformedOutput)
		})
	}
}

func TestNewAnalyzer_InvalidConfig(t *testing.T) {
	t.Parallel()
	// Keeping construction-time validation independent of the network:
	// both failures are rejected before any client call is attempted.
	ctx := context.Background()

	_, err := NewAnalyzer(ctx, nil, validLLMConfig())
	require.Error(t, err)

	cfg := validLLMConfig()
	cfg.GeminiAPIKey = ""
	_, err = NewAnalyzer(ctx, testLogger(), cfg)
	assert.ErrorIs(t, err, analysis.ErrInvalidConfig)

	cfg = validLLMConfig()
	cfg.ModelName = ""
	_, err = NewAnalyzer(ctx, testLogger(), cfg)
	assert.ErrorIs(t, err, analysis.ErrInvalidConfig)
}
