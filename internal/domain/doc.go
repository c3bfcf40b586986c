// Package domain defines the core business entities of the calorie
// analysis pipeline: entries, their uploaded images, and the structured
// analysis results produced by the vision model. Entities validate
// themselves at construction and carry no persistence concerns.
package domain
