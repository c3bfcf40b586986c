package gemini

// analysisPrompt instructs the model to return a strict JSON object
// matching resultSchema. The response MIME type is additionally pinned to
// application/json in the request config.
const analysisPrompt = `Analyze this food image and provide the following structured information:
- calories: number of calories (null if unknown)
- explanation: brief explanation of the estimate
- confidence: your confidence level (high, medium, low, unknown)
- foodItems: array of food items in the image

Provide the response as a single valid JSON object with exactly those keys and no additional text.`
