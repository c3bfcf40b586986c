// Package analysis defines the boundary contract for the external vision
// model that estimates calories from food photographs. The concrete
// Gemini-backed implementation lives in internal/platform/gemini.
package analysis
