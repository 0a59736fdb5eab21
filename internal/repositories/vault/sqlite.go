// Package vault maps the vault model onto the record store: the profile
// lives under (vault, user) and the entry list under (vault, passwords),
// both as JSON.
package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/records"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) store(db dbx.DBTX) records.Repository {
	return records.NewSQLiteRepository(db)
}

func (r *SQLiteRepository) Initialized(ctx context.Context) (bool, error) {
	data, err := r.store(r.db).Read(ctx, common.VaultNamespace, common.UserKey)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// LoadProfile returns common.ErrNotInitialized when no profile exists yet.
// A record that does not decode wraps common.ErrIntegrity.
func (r *SQLiteRepository) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	data, err := r.store(r.db).Read(ctx, common.VaultNamespace, common.UserKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, common.ErrNotInitialized
	}

	var p models.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", common.ErrIntegrity, err)
	}
	return &p, nil
}

// LoadEntries returns an empty, non-nil slice when nothing is stored.
func (r *SQLiteRepository) LoadEntries(ctx context.Context) ([]models.PasswordEntry, error) {
	data, err := r.store(r.db).Read(ctx, common.VaultNamespace, common.PasswordsKey)
	if err != nil {
		return nil, err
	}

	entries := []models.PasswordEntry{}
	if data == nil {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode entries: %v", common.ErrIntegrity, err)
	}
	if entries == nil {
		entries = []models.PasswordEntry{}
	}
	return entries, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	return writeProfile(ctx, r.store(r.db), profile)
}

func (r *SQLiteRepository) SaveEntries(ctx context.Context, entries []models.PasswordEntry) error {
	return writeEntries(ctx, r.store(r.db), entries)
}

func (r *SQLiteRepository) SaveAll(ctx context.Context, profile *models.UserProfile, entries []models.PasswordEntry) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := r.store(tx)
		if err := writeEntries(ctx, store, entries); err != nil {
			return err
		}
		return writeProfile(ctx, store, profile)
	})
}

func writeProfile(ctx context.Context, store records.Repository, profile *models.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return store.Write(ctx, common.VaultNamespace, common.UserKey, data)
}

func writeEntries(ctx context.Context, store records.Repository, entries []models.PasswordEntry) error {
	if entries == nil {
		entries = []models.PasswordEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return store.Write(ctx, common.VaultNamespace, common.PasswordsKey, data)
}
