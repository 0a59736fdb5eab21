package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/passvault/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values, so a partial file only
// overrides what it mentions.
type JsonConfig struct {
	DBPath              *string  `json:"db_path"`
	BackupDir           *string  `json:"backup_dir"`
	LogLevel            *string  `json:"log_level"`
	Cipher              *string  `json:"cipher"`
	KDF                 *JsonKDF `json:"kdf"`
	MaxAuthAttempts     *int     `json:"max_auth_attempts"`
	MinMasterCodeLength *int     `json:"min_master_code_length"`
}

type JsonKDF struct {
	Algorithm  *string `json:"algorithm"`
	Iterations *uint32 `json:"iterations"`
	MemoryKiB  *uint32 `json:"memory_kib"`
	Threads    *uint8  `json:"threads"`
}

// parseJson overlays cfg with values loaded from the JSON file named by -c or
// -config in args. Without either flag it does nothing. Read or unmarshal
// errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.DBPath, jc.DBPath)
	set(&cfg.BackupDir, jc.BackupDir)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.Cipher, jc.Cipher)
	set(&cfg.MaxAuthAttempts, jc.MaxAuthAttempts)
	set(&cfg.MinMasterCodeLength, jc.MinMasterCodeLength)
	if jc.KDF != nil {
		set(&cfg.KDFAlgorithm, jc.KDF.Algorithm)
		set(&cfg.KDFIterations, jc.KDF.Iterations)
		set(&cfg.KDFMemoryKiB, jc.KDF.MemoryKiB)
		set(&cfg.KDFThreads, jc.KDF.Threads)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
