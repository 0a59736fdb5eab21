package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
	"github.com/google/uuid"
)

// ImportResult summarises a merge.
type ImportResult struct {
	Imported int
	Skipped  int
	Renamed  int
}

// BackupService exports the vault to a backup file and merges backup files
// back in.
type BackupService interface {
	Export(ctx context.Context, s *Session, w io.Writer, sealed bool) (int, error)
	Import(ctx context.Context, s *Session, r io.Reader, backupCode []byte) (*ImportResult, error)
}

type backupService struct {
	repo vault.Repository
	opts Options
	log  logging.Logger
}

func NewBackupService(repo vault.Repository, opts Options, log logging.Logger) BackupService {
	return &backupService{repo: repo, opts: opts, log: log.With("component", "backup")}
}

// Export writes every entry, still encrypted, with the non-secret profile
// fields and a checksum. When sealed is set the whole document is encrypted
// again under the session key.
func (b *backupService) Export(ctx context.Context, s *Session, w io.Writer, sealed bool) (int, error) {
	if err := ensureIntact(s); err != nil {
		return 0, err
	}

	entries, err := b.repo.LoadEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("load entries: %w", err)
	}

	profile := s.Profile()
	backup := models.Backup{
		Version:    models.BackupVersion,
		ExportDate: timeNow(),
		UserData: models.BackupUser{
			Name:      profile.Name,
			CreatedAt: profile.CreatedAt,
			LastLogin: profile.LastLogin,
		},
		KDF:       profile.KDF,
		Cipher:    s.Encryptor().Cipher(),
		Passwords: entries,
	}
	if err := backup.Seal(); err != nil {
		return 0, fmt.Errorf("checksum: %w", err)
	}

	var doc any = backup
	if sealed {
		plain, err := json.Marshal(backup)
		if err != nil {
			return 0, fmt.Errorf("encode backup: %w", err)
		}
		payload, err := s.Encryptor().Encrypt(plain)
		common.WipeByteArray(plain)
		if err != nil {
			return 0, fmt.Errorf("seal backup: %w", err)
		}
		doc = models.SealedBackup{
			Format:  models.SealedBackupFormat,
			Version: models.BackupVersion,
			KDF:     profile.KDF,
			Cipher:  s.Encryptor().Cipher(),
			Payload: payload,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("write backup: %w", err)
	}

	b.log.Info(ctx, "backup exported", "entries", len(entries), "sealed", sealed)
	return len(entries), nil
}

// Import reads a plain or sealed backup made with backupCode, re-encrypts
// its entries under the session key and merges them in one write.
//
// Entries whose nickname (case-insensitive) and URL both match an existing
// entry are skipped. An entry whose nickname alone clashes is renamed
// "<nickname> (imported)". A single entry that fails to decrypt aborts the
// whole import with nothing written.
func (b *backupService) Import(ctx context.Context, s *Session, r io.Reader, backupCode []byte) (*ImportResult, error) {
	if err := ensureIntact(s); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	backup, backupEnc, err := b.decode(data, backupCode)
	if err != nil {
		return nil, err
	}
	if err := backup.Validate(); err != nil {
		return nil, err
	}
	if backupEnc == nil {
		if backupEnc, err = cryptox.Open(backupCode, backup.KDF, b.opts.Cipher); err != nil {
			return nil, fmt.Errorf("derive backup key: %w", err)
		}
	}

	// re-encrypt everything up front so a bad entry aborts before the merge
	incoming := make([]models.PasswordEntry, len(backup.Passwords))
	for i, e := range backup.Passwords {
		pt, err := backupEnc.Decrypt(e.Value)
		if err != nil {
			return nil, fmt.Errorf("backup entry %q: %w (wrong master code for this backup?)", e.Nickname, err)
		}
		value, err := s.Encryptor().Encrypt(pt)
		common.WipeByteArray(pt)
		if err != nil {
			return nil, fmt.Errorf("re-encrypt %q: %w", e.Nickname, err)
		}
		e.Value = value
		e.UpdatedAt = timeNow()
		incoming[i] = e
	}

	existing, err := b.repo.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	merged, res := mergeEntries(existing, incoming)
	if res.Imported == 0 {
		return res, nil
	}
	if err := b.repo.SaveEntries(ctx, merged); err != nil {
		return nil, fmt.Errorf("save entries: %w", err)
	}

	b.log.Info(ctx, "backup imported", "imported", res.Imported, "skipped", res.Skipped, "renamed", res.Renamed)
	return res, nil
}

// decode parses a plain backup, or opens a sealed one with backupCode. For
// sealed files it also returns the encryptor, already proven by the payload.
func (b *backupService) decode(data, backupCode []byte) (*models.Backup, *cryptox.Encryptor, error) {
	var probe struct {
		Format string `json:"format"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
	}

	var enc *cryptox.Encryptor
	if probe.Format != "" {
		var sealed models.SealedBackup
		if err := json.Unmarshal(data, &sealed); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
		}
		if err := sealed.Validate(); err != nil {
			return nil, nil, err
		}

		var err error
		if enc, err = cryptox.Open(backupCode, sealed.KDF, b.opts.Cipher); err != nil {
			return nil, nil, fmt.Errorf("derive backup key: %w", err)
		}
		if data, err = enc.Decrypt(sealed.Payload); err != nil {
			return nil, nil, fmt.Errorf("open sealed backup: %w", err)
		}
	}

	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrBackupFormat, err)
	}
	return &backup, enc, nil
}

func mergeEntries(existing, incoming []models.PasswordEntry) ([]models.PasswordEntry, *ImportResult) {
	res := &ImportResult{}
	merged := append([]models.PasswordEntry(nil), existing...)

	ids := make(map[string]struct{}, len(merged))
	nicknames := make(map[string]string, len(merged))
	for _, e := range merged {
		ids[e.ID] = struct{}{}
		nicknames[models.NicknameKey(e.Nickname)] = e.URL
	}

	for _, e := range incoming {
		key := models.NicknameKey(e.Nickname)
		if url, taken := nicknames[key]; taken {
			if url == e.URL {
				res.Skipped++
				continue
			}
			e.Nickname = freeNickname(nicknames, e.Nickname)
			key = models.NicknameKey(e.Nickname)
			res.Renamed++
		}
		if _, taken := ids[e.ID]; taken || e.ID == "" {
			e.ID = uuid.NewString()
		}

		ids[e.ID] = struct{}{}
		nicknames[key] = e.URL
		merged = append(merged, e)
		res.Imported++
	}
	return merged, res
}

// freeNickname returns the first "<nickname> (imported[ N])" not in taken.
// The nickname is shortened as needed to keep the result within
// models.MaxNicknameLength runes.
func freeNickname(taken map[string]string, nickname string) string {
	for n := 1; ; n++ {
		suffix := " (imported)"
		if n > 1 {
			suffix = fmt.Sprintf(" (imported %d)", n)
		}
		candidate := truncateRunes(nickname, models.MaxNicknameLength-utf8.RuneCountInString(suffix)) + suffix
		if _, ok := taken[models.NicknameKey(candidate)]; !ok {
			return candidate
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRightFunc(string(r[:n]), unicode.IsSpace)
}
