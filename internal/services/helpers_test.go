package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/database"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// cheapKDF keeps argon2 fast in tests while still drawing a new salt.
func cheapKDF() cryptox.KDFParams {
	return cryptox.KDFParams{Algorithm: cryptox.KDFArgon2id, Iterations: 1, MemoryKiB: 1024, Threads: 1}.WithFreshSalt()
}

func testOptions() Options {
	return Options{
		Cipher:              cryptox.CipherAESGCM,
		NewKDFParams:        cheapKDF,
		MaxAuthAttempts:     3,
		MinMasterCodeLength: 8,
	}
}

type fixture struct {
	db       *sql.DB
	repo     vault.Repository
	auth     AuthService
	entries  EntryService
	rotation RotationService
	backup   BackupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.InitDatabase(context.Background(), database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return newFixtureWithRepo(t, db, vault.NewSQLiteRepository(db))
}

func newFixtureWithRepo(t *testing.T, db *sql.DB, repo vault.Repository) *fixture {
	t.Helper()
	log := logging.NewNop()
	opts := testOptions()
	return &fixture{
		db:       db,
		repo:     repo,
		auth:     NewAuthService(repo, opts, log),
		entries:  NewEntryService(repo, log),
		rotation: NewRotationService(repo, opts, log),
		backup:   NewBackupService(repo, opts, log),
	}
}

// onboard creates a vault owned by Alice under code.
func (f *fixture) onboard(t *testing.T, code string) *Session {
	t.Helper()
	s, err := f.auth.Onboard(context.Background(), "Alice", []byte(code))
	require.NoError(t, err)
	return s
}

func (f *fixture) create(t *testing.T, s *Session, nickname, secret string) *models.PasswordEntry {
	t.Helper()
	e, err := f.entries.Create(context.Background(), s, models.EntryInput{
		Nickname:    nickname,
		Password:    secret,
		Description: "test entry " + nickname,
	})
	require.NoError(t, err)
	return e
}

// codes answers a gate with the given codes in order.
func codes(list ...string) (CodePrompt, *int) {
	calls := 0
	return func(attempt, maxAttempts int) ([]byte, error) {
		calls++
		if calls > len(list) {
			return nil, errors.New("no more codes")
		}
		return []byte(list[calls-1]), nil
	}, &calls
}

// freezeTime pins timeNow for the duration of a test.
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

// decryptAll opens every stored value with enc.
func decryptAll(t *testing.T, repo vault.Repository, enc *cryptox.Encryptor) (map[string]string, error) {
	t.Helper()
	entries, err := repo.LoadEntries(context.Background())
	require.NoError(t, err)

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		pt, err := enc.Decrypt(e.Value)
		if err != nil {
			return nil, err
		}
		out[e.Nickname] = string(pt)
	}
	return out, nil
}

func openWith(t *testing.T, code string, p cryptox.KDFParams) *cryptox.Encryptor {
	t.Helper()
	enc, err := cryptox.Open([]byte(code), p, cryptox.CipherAESGCM)
	require.NoError(t, err)
	return enc
}

// failingRepo wraps a repository and fails the selected writes. When
// saveAllTo is set, SaveAll goes there instead.
type failingRepo struct {
	vault.Repository
	saveAllTo      vault.Repository
	saveAllErr     error
	saveEntriesErr error
	saveProfileErr error
}

func (r *failingRepo) SaveAll(ctx context.Context, p *models.UserProfile, e []models.PasswordEntry) error {
	if r.saveAllErr != nil {
		return r.saveAllErr
	}
	if r.saveAllTo != nil {
		return r.saveAllTo.SaveAll(ctx, p, e)
	}
	return r.Repository.SaveAll(ctx, p, e)
}

func (r *failingRepo) SaveEntries(ctx context.Context, e []models.PasswordEntry) error {
	if r.saveEntriesErr != nil {
		return r.saveEntriesErr
	}
	return r.Repository.SaveEntries(ctx, e)
}

func (r *failingRepo) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if r.saveProfileErr != nil {
		return r.saveProfileErr
	}
	return r.Repository.SaveProfile(ctx, p)
}
