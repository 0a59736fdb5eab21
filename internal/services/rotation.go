package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
)

// RotationService re-encrypts the whole vault under a new master code.
type RotationService interface {
	ChangeMasterCode(ctx context.Context, s *Session, oldCode, newCode []byte) (int, error)
}

type rotationService struct {
	repo vault.Repository
	opts Options
	log  logging.Logger
}

func NewRotationService(repo vault.Repository, opts Options, log logging.Logger) RotationService {
	return &rotationService{repo: repo, opts: opts, log: log.With("component", "rotation")}
}

// ChangeMasterCode replaces the vault key and returns the number of entries
// re-encrypted.
//
// Every entry is decrypted with the old key before anything is written. Any
// failure up to and including the commit leaves both the stored records and
// the session exactly as they were. The session switches to the new key only
// after the profile and entries were committed in one transaction.
func (r *rotationService) ChangeMasterCode(ctx context.Context, s *Session, oldCode, newCode []byte) (int, error) {
	if bytes.Equal(oldCode, newCode) {
		return 0, fmt.Errorf("%w: new master code must differ from the current one", common.ErrValidation)
	}
	if err := models.ValidateMasterCode(string(newCode), r.opts.MinMasterCodeLength); err != nil {
		return 0, err
	}

	// load
	profile, err := r.repo.LoadProfile(ctx)
	if err != nil {
		return 0, err
	}
	entries, err := r.repo.LoadEntries(ctx)
	if err != nil {
		return 0, err
	}

	// old and new keys
	oldEnc, err := cryptox.Open(oldCode, profile.KDF, r.opts.Cipher)
	if err != nil {
		return 0, fmt.Errorf("derive current key: %w", err)
	}
	if !cryptox.CheckVerifier(oldEnc, profile.MasterCodeVerifier) {
		return 0, common.ErrUnauthorized
	}
	newParams := r.opts.NewKDFParams()
	newEnc, err := cryptox.Open(newCode, newParams, r.opts.Cipher)
	if err != nil {
		return 0, fmt.Errorf("derive new key: %w", err)
	}

	// decrypt everything before touching anything
	plaintexts := make([][]byte, len(entries))
	defer func() {
		for _, pt := range plaintexts {
			common.WipeByteArray(pt)
		}
	}()
	var broken []string
	for i, e := range entries {
		pt, err := oldEnc.Decrypt(e.Value)
		if err != nil {
			broken = append(broken, e.Nickname)
			continue
		}
		plaintexts[i] = pt
	}
	if err := integrityError(broken); err != nil {
		r.log.Error(ctx, "rotation aborted, nothing changed", "undecryptable", len(broken))
		return 0, fmt.Errorf("%w (%w)", err, common.ErrDecryption)
	}

	// re-encrypt
	now := timeNow()
	rotated := make([]models.PasswordEntry, len(entries))
	for i, e := range entries {
		value, err := newEnc.Encrypt(plaintexts[i])
		if err != nil {
			return 0, fmt.Errorf("re-encrypt %q: %w", e.Nickname, err)
		}
		e.Value = value
		e.UpdatedAt = now
		rotated[i] = e
	}

	verifier, err := cryptox.MakeVerifier(newEnc)
	if err != nil {
		return 0, fmt.Errorf("make verifier: %w", err)
	}
	newProfile := *profile
	newProfile.KDF = newParams
	newProfile.MasterCodeVerifier = verifier
	newProfile.LastLogin = now

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := r.repo.SaveAll(ctx, &newProfile, rotated); err != nil {
		r.log.Error(ctx, "rotation not persisted, nothing changed", "error", err)
		return 0, err
	}

	s.swap(newProfile, newEnc)
	s.setIntegrityIssues(nil)

	r.log.Info(ctx, "master code changed", "entries", len(rotated), "old_key", oldEnc.Fingerprint(), "new_key", newEnc.Fingerprint())
	return len(rotated), nil
}
