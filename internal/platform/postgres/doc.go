// Package postgres provides PostgreSQL implementations of the store
// interfaces. Studies keep their card deck and profiles as JSONB columns;
// sessions keep demographics and the group forest the same way, since the
// analysis engine always reads them whole.
//
// The schema lives in the embedded migrations directory and is applied with
// goose.
package postgres
