// Package auth issues and validates HS256 access tokens and verifies bcrypt
// password hashes.
package auth
