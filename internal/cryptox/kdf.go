package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KeySize is the length of every derived key. Both supported AEADs use
// 256-bit keys.
const KeySize = 32

// SaltSize is the length of a freshly generated KDF salt.
const SaltSize = 32

// KDFAlgorithm names a password-based key derivation function.
type KDFAlgorithm string

const (
	KDFArgon2id KDFAlgorithm = "argon2id"
	KDFPBKDF2   KDFAlgorithm = "pbkdf2-sha256"
)

// KDFParams fully describes how a key is derived from a master code. They are
// persisted next to the verifier so the same key can be derived after a
// restart.
type KDFParams struct {
	Algorithm  KDFAlgorithm `json:"algorithm"`
	Salt       []byte       `json:"salt"`
	Iterations uint32       `json:"iterations"`
	MemoryKiB  uint32       `json:"memoryKiB,omitempty"`
	Threads    uint8        `json:"threads,omitempty"`
}

// DefaultKDFParams returns argon2id parameters with a fresh random salt.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Algorithm:  KDFArgon2id,
		Salt:       common.GenerateRandByteArray(SaltSize),
		Iterations: 1,
		MemoryKiB:  64 * 1024,
		Threads:    4,
	}
}

// WithFreshSalt returns a copy of p with a new random salt. Costs are kept.
func (p KDFParams) WithFreshSalt() KDFParams {
	p.Salt = common.GenerateRandByteArray(SaltSize)
	return p
}

// Validate reports whether p can be used for derivation.
func (p KDFParams) Validate() error {
	if len(p.Salt) == 0 {
		return errors.New("kdf: empty salt")
	}
	if p.Iterations == 0 {
		return errors.New("kdf: iterations must be positive")
	}
	switch p.Algorithm {
	case KDFArgon2id:
		if p.MemoryKiB == 0 || p.Threads == 0 {
			return errors.New("kdf: argon2id needs memory and threads")
		}
	case KDFPBKDF2:
	default:
		return fmt.Errorf("kdf: unknown algorithm %q", p.Algorithm)
	}
	return nil
}

// DeriveKey derives a KeySize-byte key from masterCode using p.
// The result is deterministic for equal inputs.
func DeriveKey(masterCode []byte, p KDFParams) ([]byte, error) {
	if len(masterCode) == 0 {
		return nil, errors.New("kdf: empty master code")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p.Algorithm {
	case KDFPBKDF2:
		return pbkdf2.Key(masterCode, p.Salt, int(p.Iterations), KeySize, sha256.New), nil
	default:
		return argon2.IDKey(masterCode, p.Salt, p.Iterations, p.MemoryKiB, p.Threads, KeySize), nil
	}
}
