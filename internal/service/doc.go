// Package service contains the application use cases. It coordinates domain
// objects, the store interfaces and the analysis engine: studies and their
// decks, recorded sessions, analysis runs and category suggestions.
//
// Services enforce study ownership, run multi-store writes inside a single
// transaction and wrap failures in ServiceError so the API layer can map them
// with errors.Is.
package service
