// Package gemini names card-sort categories with Google's Gemini API.
//
// Namer implements service.CategoryNamer. It renders the card labels of each
// cluster into a prompt, asks the model for a JSON list of names and retries
// transport failures with exponential backoff and jitter. Answers blocked by
// safety filters or that do not parse are returned as permanent errors so the
// caller can fall back to a local naming strategy.
package gemini
