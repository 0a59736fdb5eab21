package services

import (
	"time"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
)

// timeNow is a test seam for timestamps written to records.
var timeNow = func() time.Time { return time.Now().UTC() }

// Options are the security settings services need from configuration.
type Options struct {
	// Cipher seals new envelopes.
	Cipher cryptox.Cipher
	// NewKDFParams returns parameters with a fresh salt. It is called at
	// onboarding and on every rotation.
	NewKDFParams func() cryptox.KDFParams
	// MaxAuthAttempts bounds master code attempts per authentication.
	MaxAuthAttempts int
	// MinMasterCodeLength applies to newly chosen master codes.
	MinMasterCodeLength int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Cipher:              cryptox.CipherAESGCM,
		NewKDFParams:        cryptox.DefaultKDFParams,
		MaxAuthAttempts:     3,
		MinMasterCodeLength: 8,
	}
}
