package analysis

import "errors"

// Common errors returned by Analyzer implementations
var (
	// ErrInvocationFailed is returned when the vision model could not be
	// invoked successfully: transport errors, authentication failures,
	// timeouts, or the model reporting an error. Recorded by the worker as
	// a terminal image error.
	ErrInvocationFailed = errors.New("vision model invocation failed")

	// ErrMalformedOutput is returned when the model responded but its
	// output could not be parsed and validated against the expected result
	// schema. The worker degrades such results instead of failing the image.
	ErrMalformedOutput = errors.New("malformed output from vision model")

	// ErrEmptyImage is returned when the image payload is empty.
	ErrEmptyImage = errors.New("image data cannot be empty")

	// ErrInvalidConfig is returned when the analyzer configuration is invalid.
	ErrInvalidConfig = errors.New("invalid analyzer configuration")
)
