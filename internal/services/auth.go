// Package services contains the application services of passvault.
// This file defines the authentication gate: onboarding, unlock at startup
// and re-authentication before sensitive operations.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
)

// CodePrompt asks the user for a master code. attempt starts at 1.
// Returning an error aborts the authentication.
type CodePrompt func(attempt, maxAttempts int) ([]byte, error)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - IsInitialized: whether a profile exists.
//   - Onboard: create the profile with a fresh salt and verifier.
//   - Unlock: startup login through the gate, then an integrity check.
//   - Authenticate: re-run the gate for a sensitive operation.
//   - Verify: check one candidate against a profile, no side effects.
//   - UpdateSettings: persist user preferences.
//
// Gate failures return common.ErrAuthAttemptsExhausted and change nothing.
type AuthService interface {
	IsInitialized(ctx context.Context) (bool, error)
	Onboard(ctx context.Context, name string, masterCode []byte) (*Session, error)
	Unlock(ctx context.Context, ask CodePrompt) (*Session, error)
	Authenticate(ctx context.Context, s *Session, ask CodePrompt) error
	Verify(profile *models.UserProfile, candidate []byte) (*cryptox.Encryptor, bool)
	UpdateSettings(ctx context.Context, s *Session, settings models.Settings) error
}

type authService struct {
	repo vault.Repository
	opts Options
	log  logging.Logger
}

// NewAuthService constructs an AuthService over the vault repository.
func NewAuthService(repo vault.Repository, opts Options, log logging.Logger) AuthService {
	return &authService{repo: repo, opts: opts, log: log.With("component", "auth")}
}

func (a *authService) IsInitialized(ctx context.Context) (bool, error) {
	return a.repo.Initialized(ctx)
}

// Onboard validates name and master code, derives the key with a fresh salt
// and stores the profile with its verifier. The master code itself is never
// written.
func (a *authService) Onboard(ctx context.Context, name string, masterCode []byte) (*Session, error) {
	ok, err := a.repo.Initialized(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, fmt.Errorf("vault profile: %w", common.ErrAlreadyExists)
	}

	if err := models.ValidateUserName(name); err != nil {
		return nil, err
	}
	if err := models.ValidateMasterCode(string(masterCode), a.opts.MinMasterCodeLength); err != nil {
		return nil, err
	}

	params := a.opts.NewKDFParams()
	enc, err := cryptox.Open(masterCode, params, a.opts.Cipher)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	verifier, err := cryptox.MakeVerifier(enc)
	if err != nil {
		return nil, fmt.Errorf("make verifier: %w", err)
	}

	now := timeNow()
	profile := models.UserProfile{
		Name:               name,
		KDF:                params,
		MasterCodeVerifier: verifier,
		CreatedAt:          now,
		LastLogin:          now,
		Settings:           models.DefaultSettings(),
	}

	if err := a.repo.SaveAll(ctx, &profile, []models.PasswordEntry{}); err != nil {
		return nil, err
	}

	a.log.Info(ctx, "vault created", "kdf", params.Algorithm, "key", enc.Fingerprint())
	return NewSession(profile, enc), nil
}

// Unlock loads the profile, runs the gate and refreshes lastLogin. Entries
// the verified key cannot open are reported through
// Session.IntegrityIssues; they do not prevent unlocking.
func (a *authService) Unlock(ctx context.Context, ask CodePrompt) (*Session, error) {
	profile, err := a.repo.LoadProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: stored profile: %v", common.ErrIntegrity, err)
	}

	enc, err := a.gate(ctx, profile, ask)
	if err != nil {
		return nil, err
	}

	s := NewSession(*profile, enc)
	if err := a.touch(ctx, s); err != nil {
		return nil, err
	}

	if err := CheckIntegrity(ctx, a.repo, s); err != nil {
		if !errors.Is(err, common.ErrIntegrity) {
			return nil, err
		}
		a.log.Warn(ctx, "entries do not open under the verified key", "count", len(s.IntegrityIssues()))
	}

	a.log.Info(ctx, "vault unlocked", "key", enc.Fingerprint())
	return s, nil
}

// Authenticate re-verifies the master code for a sensitive operation. A
// failure leaves the session usable; only the operation is aborted.
func (a *authService) Authenticate(ctx context.Context, s *Session, ask CodePrompt) error {
	profile := s.Profile()
	if _, err := a.gate(ctx, &profile, ask); err != nil {
		return err
	}
	return a.touch(ctx, s)
}

func (a *authService) Verify(profile *models.UserProfile, candidate []byte) (*cryptox.Encryptor, bool) {
	if len(candidate) == 0 {
		return nil, false
	}
	enc, err := cryptox.Open(candidate, profile.KDF, a.opts.Cipher)
	if err != nil {
		return nil, false
	}
	if !cryptox.CheckVerifier(enc, profile.MasterCodeVerifier) {
		return nil, false
	}
	return enc, true
}

func (a *authService) UpdateSettings(ctx context.Context, s *Session, settings models.Settings) error {
	profile := s.Profile()
	profile.Settings = settings
	if err := a.repo.SaveProfile(ctx, &profile); err != nil {
		return err
	}
	s.setProfile(profile)
	return nil
}

// gate asks for the master code at most MaxAuthAttempts times.
func (a *authService) gate(ctx context.Context, profile *models.UserProfile, ask CodePrompt) (*cryptox.Encryptor, error) {
	limit := a.opts.MaxAuthAttempts
	if limit < 1 {
		limit = 1
	}

	for attempt := 1; attempt <= limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		code, err := ask(attempt, limit)
		if err != nil {
			return nil, err
		}
		enc, ok := a.Verify(profile, code)
		common.WipeByteArray(code)

		if ok {
			return enc, nil
		}
		a.log.Warn(ctx, "master code rejected", "attempt", attempt, "max", limit)
	}

	return nil, common.ErrAuthAttemptsExhausted
}

// touch stamps lastLogin and stores the profile.
func (a *authService) touch(ctx context.Context, s *Session) error {
	profile := s.Profile()
	profile.LastLogin = timeNow()
	if err := a.repo.SaveProfile(ctx, &profile); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	s.setProfile(profile)
	return nil
}

// IsAuthFailure reports whether err came from the gate rejecting codes.
func IsAuthFailure(err error) bool {
	return errors.Is(err, common.ErrAuthAttemptsExhausted) || errors.Is(err, common.ErrUnauthorized)
}
