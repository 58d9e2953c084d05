// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests using it carry the integration build tag and
// are skipped when CARDSORT_TEST_DATABASE_URL (or DATABASE_URL) is unset.
//
// Each test runs inside a transaction that is rolled back afterwards, so
// tests can share one migrated database and run in parallel.
package testdb
