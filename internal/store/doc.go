// Package store defines the persistence interfaces for users, studies and
// sessions, the errors implementations must return and a transaction
// helper. Implementations live in platform/postgres.
package store
