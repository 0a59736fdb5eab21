// Package common defines shared constants, sentinel errors and small helpers
// used across passvault layers. Callers should use errors.Is to match the
// error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage error")

	// Crypto errors. ErrDecryption covers both malformed envelopes and
	// envelopes sealed under a different key.
	ErrDecryption = errors.New("decryption failed")

	// Vault state errors.
	ErrIntegrity      = errors.New("vault integrity error")
	ErrNotInitialized = errors.New("vault is not initialized")

	// Input errors.
	ErrValidation    = errors.New("validation error")
	ErrAlreadyExists = errors.New("already exists")

	// Auth errors.
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAuthAttemptsExhausted = errors.New("too many failed authentication attempts")

	// Backup errors.
	ErrBackupFormat     = errors.New("unsupported backup format")
	ErrChecksumMismatch = errors.New("backup checksum mismatch")
)
