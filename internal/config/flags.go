package config

import (
	"flag"

	"github.com/dmitrijs2005/passvault/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Arguments this package
// does not know about are dropped before parsing, so -c/-config and any
// foreign flags do not cause errors. Malformed values panic.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to the vault database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.BackupDir, "backup-dir", cfg.BackupDir, "default directory for exported backups")
	fs.StringVar(&cfg.Cipher, "cipher", cfg.Cipher, "cipher for new envelopes (aes-gcm, chacha20-poly1305)")
	fs.StringVar(&cfg.KDFAlgorithm, "kdf", cfg.KDFAlgorithm, "key derivation function (argon2id, pbkdf2-sha256)")
	iterations := fs.Uint("kdf-iterations", uint(cfg.KDFIterations), "KDF time cost or iteration count")
	fs.IntVar(&cfg.MaxAuthAttempts, "attempts", cfg.MaxAuthAttempts, "master code attempts before a hard stop")

	if err := fs.Parse(flagx.FilterArgs(args, flagx.Names(fs))); err != nil {
		panic(err)
	}

	cfg.KDFIterations = uint32(*iterations)
}
