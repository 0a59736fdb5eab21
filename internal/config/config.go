package config

import (
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	appValidation "github.com/dmitrijs2005/passvault/internal/validation"
	validation "github.com/jellydator/validation"
)

// Config holds runtime settings for passvault.
//
// KDF fields describe the cost used when a new salt is generated, that is at
// onboarding and on every master code rotation. Existing vaults keep the
// parameters stored next to their verifier.
type Config struct {
	DBPath              string
	BackupDir           string
	LogLevel            string
	Cipher              string
	KDFAlgorithm        string
	KDFIterations       uint32
	KDFMemoryKiB        uint32
	KDFThreads          uint8
	MaxAuthAttempts     int
	MinMasterCodeLength int
}

// DefaultDBPath places the vault under the user config directory, falling
// back to the working directory when it is unknown.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return common.AppName + ".db"
	}
	return filepath.Join(dir, common.AppName, "vault.db")
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	d := cryptox.DefaultKDFParams()

	c.DBPath = DefaultDBPath()
	c.BackupDir = "."
	c.LogLevel = "warn"
	c.Cipher = string(cryptox.CipherAESGCM)
	c.KDFAlgorithm = string(d.Algorithm)
	c.KDFIterations = d.Iterations
	c.KDFMemoryKiB = d.MemoryKiB
	c.KDFThreads = d.Threads
	c.MaxAuthAttempts = 3
	c.MinMasterCodeLength = 8
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags. Later sources take precedence
// over earlier ones. It panics on unreadable JSON or malformed flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// Validate checks ranges and names. The error wraps common.ErrValidation.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Cipher, validation.Required,
			validation.In(string(cryptox.CipherAESGCM), string(cryptox.CipherChaCha20Poly1305))),
		validation.Field(&c.KDFAlgorithm, validation.Required,
			validation.In(string(cryptox.KDFArgon2id), string(cryptox.KDFPBKDF2))),
		validation.Field(&c.KDFIterations, validation.Required),
		validation.Field(&c.MaxAuthAttempts, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.MinMasterCodeLength, validation.Required, validation.Min(6), validation.Max(128)),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	if err := c.NewKDFParams().Validate(); err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}

// CipherName returns the configured cipher. Call after Validate.
func (c *Config) CipherName() cryptox.Cipher {
	return cryptox.Cipher(c.Cipher)
}

// NewKDFParams returns KDF parameters with the configured cost and a fresh
// random salt.
func (c *Config) NewKDFParams() cryptox.KDFParams {
	p := cryptox.KDFParams{
		Algorithm:  cryptox.KDFAlgorithm(c.KDFAlgorithm),
		Iterations: c.KDFIterations,
	}
	if p.Algorithm == cryptox.KDFArgon2id {
		p.MemoryKiB = c.KDFMemoryKiB
		p.Threads = c.KDFThreads
	}
	return p.WithFreshSalt()
}
