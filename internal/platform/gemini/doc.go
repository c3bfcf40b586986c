// Package gemini implements the analysis.Analyzer interface using
// Google's Gemini API with vision input. The model's output is treated as
// untrusted and schema-validated before it is surfaced as an
// AnalysisResult.
package gemini
