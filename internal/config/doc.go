// Package config loads runtime configuration for passvault.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string            path to the vault database
//	-l string            log level: debug, info, warn, error
//	-backup-dir string   default directory for exported backups
//	-cipher string       aes-gcm or chacha20-poly1305
//	-kdf string          argon2id or pbkdf2-sha256
//	-kdf-iterations uint argon2 time cost or PBKDF2 iteration count
//	-attempts int        master code attempts before a hard stop
//
// # JSON schema
//
// Every key is optional; absent keys keep the default:
//
//	{
//	  "db_path": "/home/me/.config/passvault/vault.db",
//	  "backup_dir": "/home/me/backups",
//	  "log_level": "info",
//	  "cipher": "chacha20-poly1305",
//	  "kdf": {"algorithm": "argon2id", "iterations": 2, "memory_kib": 65536, "threads": 4},
//	  "max_auth_attempts": 3,
//	  "min_master_code_length": 8
//	}
//
// Flags are passed only to configure the process; the program itself is
// driven by an interactive menu.
package config
