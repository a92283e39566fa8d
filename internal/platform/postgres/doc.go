// Package postgres implements the store interfaces against PostgreSQL,
// using database/sql over the pgx driver. Each store maps driver errors
// to the sentinel errors defined in internal/store.
package postgres
