package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/platesnap/platesnap-api/internal/analysis"
	"github.com/platesnap/platesnap-api/internal/config"
	"github.com/platesnap/platesnap-api/internal/domain"
)

// defaultMIMEType is assumed when the uploader declared no MIME type.
const defaultMIMEType = "image/jpeg"

// GeminiAnalyzer implements the analysis.Analyzer interface using
// Google's Gemini API to estimate calories from food photographs.
type GeminiAnalyzer struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure GeminiAnalyzer implements analysis.Analyzer interface
var _ analysis.Analyzer = (*GeminiAnalyzer)(nil)

// NewAnalyzer creates a new instance of GeminiAnalyzer with the provided
// dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and retry settings
//
// Returns a properly initialized GeminiAnalyzer or an error if
// initialization fails.
func NewAnalyzer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiAnalyzer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", analysis.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", analysis.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			analysis.ErrInvalidConfig, err)
	}

	return &GeminiAnalyzer{
		logger: logger,
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Analyze implements analysis.Analyzer.Analyze.
//
// The call is bounded by the configured request timeout per attempt and
// retried with exponential backoff for transient API failures. Responses
// are schema-validated; validation failures surface as ErrMalformedOutput
// so the caller can degrade instead of failing the image.
func (a *GeminiAnalyzer) Analyze(
	ctx context.Context,
	imageData []byte,
	mimeType string,
) (*domain.AnalysisResult, error) {
	if len(imageData) == 0 {
		return nil, analysis.ErrEmptyImage
	}

	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	text, err := a.callGeminiWithRetry(ctx, imageData, mimeType)
	if err != nil {
		return nil, err
	}

	result, err := decodeResult(text)
	if err != nil {
		a.logger.WarnContext(ctx, "model response failed schema validation",
			"error", err,
			"response_length", len(text))
		return nil, err
	}

	return result, nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential
// backoff retry logic.
//
// It attempts the call up to config.MaxRetries+1 times, using exponential
// backoff with jitter between retries for transient errors. Permanent
// errors (content blocked by safety filters, empty responses) are returned
// immediately without retrying. Retry exhaustion is reported as an
// invocation failure.
func (a *GeminiAnalyzer) callGeminiWithRetry(
	ctx context.Context,
	imageData []byte,
	mimeType string,
) (string, error) {
	maxRetries := a.config.MaxRetries
	baseDelaySeconds := a.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Validate retry configuration
	if maxRetries < 0 {
		a.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		a.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(imageData, mimeType),
			genai.NewPartFromText(analysisPrompt),
		}, genai.RoleUser),
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1
		a.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"model", a.model)

		text, isTransient, err := a.generateOnce(ctx, contents, genConfig)
		if err == nil {
			a.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return text, nil
		}

		a.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !isTransient {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				analysis.ErrInvocationFailed, maxRetries, err)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		a.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", analysis.ErrInvocationFailed, ctx.Err())
		}

		attempt++
	}

	return "", fmt.Errorf("%w: failed after %d attempts", analysis.ErrInvocationFailed, attempt)
}

// generateOnce performs a single bounded GenerateContent call and
// classifies its outcome. The second return value reports whether the
// failure is transient and worth retrying.
func (a *GeminiAnalyzer) generateOnce(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
) (string, bool, error) {
	timeout := time.Duration(a.config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := a.client.Models.GenerateContent(callCtx, a.model, contents, genConfig)
	if err != nil {
		// Transport, auth, quota, and timeout errors; assume transient.
		return "", true, fmt.Errorf("%w: %v", analysis.ErrInvocationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", analysis.ErrInvocationFailed)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: content blocked by safety filters", analysis.ErrInvocationFailed)
	}

	text := resp.Text()
	if text == "" {
		return "", false, fmt.Errorf("%w: empty content in response", analysis.ErrInvocationFailed)
	}

	return text, false, nil
}

// decodeResult parses and validates the model's JSON output against the
// AnalysisResult schema. The output is untrusted input: any structural or
// semantic deviation yields ErrMalformedOutput rather than a partially
// trusted result.
func decodeResult(text string) (*domain.AnalysisResult, error) {
	var schema resultSchema
	if err := json.Unmarshal([]byte(text), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			analysis.ErrMalformedOutput, err)
	}

	result := &domain.AnalysisResult{
		Calories:    schema.Calories,
		Explanation: schema.Explanation,
		Confidence:  domain.Confidence(schema.Confidence),
		FoodItems:   schema.FoodItems,
	}

	if result.FoodItems == nil {
		result.FoodItems = []string{}
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrMalformedOutput, err)
	}

	return result, nil
}
