// Package store defines the persistence interfaces used by the rest of
// the application. Implementations live under internal/platform; services
// and the worker depend only on these interfaces, keeping the storage
// backend swappable and the call sites testable.
package store
