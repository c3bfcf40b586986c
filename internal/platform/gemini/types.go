package gemini

// resultSchema represents the expected structure of the model's JSON
// response before validation. Field names match the structure the prompt
// asks for.
type resultSchema struct {
	// Calories is the estimated calorie count, null when unknown
	Calories *float64 `json:"calories"`

	// Explanation is a brief justification of the estimate
	Explanation string `json:"explanation"`

	// Confidence is the model's self-reported confidence level
	Confidence string `json:"confidence"`

	// FoodItems lists the foods identified in the image
	FoodItems []string `json:"foodItems"`
}
