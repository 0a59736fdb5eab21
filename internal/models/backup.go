package models

import (
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
)

const (
	BackupVersion      = "1.0"
	SealedBackupFormat = "passvault-sealed"
)

// BackupUser is the non-secret part of the profile written to backups.
type BackupUser struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// Backup is the plain export format. Entry values stay encrypted under the
// key derived from KDF and the master code at export time; neither the
// master code nor the verifier is included.
type Backup struct {
	Version    string            `json:"version"`
	ExportDate time.Time         `json:"exportDate"`
	UserData   BackupUser        `json:"userData"`
	KDF        cryptox.KDFParams `json:"kdf"`
	Cipher     cryptox.Cipher    `json:"cipher"`
	Passwords  []PasswordEntry   `json:"passwords"`
	Checksum   string            `json:"checksum"`
}

// SealedBackup wraps an encrypted Backup. Its KDF parameters let the file be
// opened with the master code alone.
type SealedBackup struct {
	Format  string            `json:"format"`
	Version string            `json:"version"`
	KDF     cryptox.KDFParams `json:"kdf"`
	Cipher  cryptox.Cipher    `json:"cipher"`
	Payload string            `json:"payload"`
}

// ComputeChecksum hashes the JSON encoding of the passwords list.
func (b *Backup) ComputeChecksum() (string, error) {
	data, err := json.Marshal(b.Passwords)
	if err != nil {
		return "", err
	}
	return cryptox.Checksum(data), nil
}

// Seal fills in the checksum.
func (b *Backup) Seal() error {
	if b.Passwords == nil {
		b.Passwords = []PasswordEntry{}
	}
	sum, err := b.ComputeChecksum()
	if err != nil {
		return err
	}
	b.Checksum = sum
	return nil
}

// Validate checks the version, the shape of every entry and the checksum.
func (b *Backup) Validate() error {
	if b.Version != BackupVersion {
		return fmt.Errorf("%w: version %q", common.ErrBackupFormat, b.Version)
	}

	err := validation.ValidateStruct(b,
		validation.Field(&b.Passwords, validation.NotNil),
		validation.Field(&b.Checksum, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
	}
	if err := b.KDF.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
	}
	if err := validCipher(b.Cipher); err != nil {
		return err
	}

	sum, err := b.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
	}
	if sum != b.Checksum {
		return common.ErrChecksumMismatch
	}
	return nil
}

// Validate checks the envelope of a sealed backup.
func (s *SealedBackup) Validate() error {
	if s.Format != SealedBackupFormat || s.Version != BackupVersion {
		return fmt.Errorf("%w: %s %s", common.ErrBackupFormat, s.Format, s.Version)
	}
	if s.Payload == "" {
		return fmt.Errorf("%w: empty payload", common.ErrBackupFormat)
	}
	if err := s.KDF.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
	}
	return validCipher(s.Cipher)
}

// validCipher allows an empty name, since every envelope carries its own
// cipher id.
func validCipher(c cryptox.Cipher) error {
	if c == "" {
		return nil
	}
	if _, err := cryptox.ParseCipher(string(c)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
	}
	return nil
}
