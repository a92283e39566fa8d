// Package store defines the persistence interfaces for projects, task
// records, and users, along with the sentinel errors store
// implementations return. Implementations live in
// internal/platform/postgres.
package store
