package analysis

import (
	"context"

	"github.com/platesnap/platesnap-api/internal/domain"
)

// Analyzer defines the interface for producing a structured calorie
// estimate from raw image bytes. This interface serves as a boundary
// between the application core and external vision-model services,
// following the hexagonal architecture pattern.
type Analyzer interface {
	// Analyze inspects the given image and returns a validated
	// AnalysisResult.
	//
	// Parameters:
	//   - ctx: Context for the operation; the call is expected to honor
	//     cancellation and deadlines
	//   - imageData: the raw image bytes
	//   - mimeType: the declared MIME type of the image
	//
	// Returns ErrMalformedOutput (possibly wrapped) when the model
	// responded but its output failed schema validation, and
	// ErrInvocationFailed for transport, auth, timeout, or model errors.
	Analyze(ctx context.Context, imageData []byte, mimeType string) (*domain.AnalysisResult, error)
}
