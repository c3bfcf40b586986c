package domain

import "errors"

// Confidence expresses how certain the vision model is about a calorie
// estimate.
type Confidence string

// Possible confidence values
const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// Common validation errors for AnalysisResult
var (
	ErrEmptyExplanation  = errors.New("analysis explanation cannot be empty")
	ErrInvalidConfidence = errors.New("invalid analysis confidence")
	ErrNegativeCalories  = errors.New("calorie estimate cannot be negative")
)

// AnalysisResult is the structured calorie estimate produced by the
// Analyzer for a single image. It is immutable once attached to an Image
// and is present exactly when the image status is "completed".
//
// Calories is nil when the model could not produce an estimate. The JSON
// field names match the wire format consumed by clients.
type AnalysisResult struct {
	Calories    *float64   `json:"calories"`
	Explanation string     `json:"explanation"`
	Confidence  Confidence `json:"confidence"`
	FoodItems   []string   `json:"foodItems"`
}

// Validate checks if the AnalysisResult has valid data.
// Returns an error if any field fails validation.
func (r *AnalysisResult) Validate() error {
	if r.Explanation == "" {
		return ErrEmptyExplanation
	}

	if !isValidConfidence(r.Confidence) {
		return ErrInvalidConfidence
	}

	if r.Calories != nil && *r.Calories < 0 {
		return ErrNegativeCalories
	}

	return nil
}

// DegradedAnalysisResult returns the placeholder result recorded when the
// model responded but its output could not be parsed into the expected
// structure. The image still completes; the degradation is visible only in
// the result body.
func DegradedAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Calories:    nil,
		Explanation: "Failed to parse structured response from the vision model",
		Confidence:  ConfidenceUnknown,
		FoodItems:   []string{},
	}
}

// isValidConfidence checks if the given value is a valid Confidence.
func isValidConfidence(c Confidence) bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceUnknown:
		return true
	default:
		return false
	}
}
