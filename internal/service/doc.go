// Package service implements the producer-side use cases of the pipeline:
// creating entries, ingesting image batches, and assembling the entry read
// view. Services depend on the store interfaces only, never on a concrete
// backend.
package service
