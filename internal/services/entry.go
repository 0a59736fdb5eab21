package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
	"github.com/google/uuid"
)

// EntryService manages password entries. Secret values are sealed and
// opened with the session encryptor; the collection is rewritten whole on
// every change.
type EntryService interface {
	List(ctx context.Context) ([]models.PasswordEntry, error)
	Search(ctx context.Context, query string) ([]models.PasswordEntry, error)
	Find(ctx context.Context, ref string) (*models.PasswordEntry, error)
	Reveal(ctx context.Context, s *Session, id string) (string, error)
	Create(ctx context.Context, s *Session, in models.EntryInput) (*models.PasswordEntry, error)
	Update(ctx context.Context, s *Session, id string, in models.EntryInput) (*models.PasswordEntry, error)
	Delete(ctx context.Context, s *Session, id string) error
}

type entryService struct {
	repo vault.Repository
	log  logging.Logger
}

func NewEntryService(repo vault.Repository, log logging.Logger) EntryService {
	return &entryService{repo: repo, log: log.With("component", "entries")}
}

func (s *entryService) List(ctx context.Context) ([]models.PasswordEntry, error) {
	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	models.SortEntries(entries)
	return entries, nil
}

func (s *entryService) Search(ctx context.Context, query string) ([]models.PasswordEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.PasswordEntry, 0, len(entries))
	for _, e := range entries {
		if e.Matches(query) {
			result = append(result, e)
		}
	}
	return result, nil
}

// Find looks an entry up by id or, case-insensitively, by nickname.
func (s *entryService) Find(ctx context.Context, ref string) (*models.PasswordEntry, error) {
	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	key := models.NicknameKey(ref)
	for i := range entries {
		if entries[i].ID == ref || models.NicknameKey(entries[i].Nickname) == key {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("entry %q: %w", ref, common.ErrNotFound)
}

// Reveal, Create and Update are refused while the session has integrity
// issues. Delete stays available so the broken entries can be removed.
func (s *entryService) Reveal(ctx context.Context, sess *Session, id string) (string, error) {
	if err := ensureIntact(sess); err != nil {
		return "", err
	}

	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return "", fmt.Errorf("load entries: %w", err)
	}
	i, err := indexByID(entries, id)
	if err != nil {
		return "", err
	}

	pt, err := sess.Encryptor().Decrypt(entries[i].Value)
	if err != nil {
		return "", fmt.Errorf("entry %q: %w", entries[i].Nickname, err)
	}
	defer common.WipeByteArray(pt)
	return string(pt), nil
}

func (s *entryService) Create(ctx context.Context, sess *Session, in models.EntryInput) (*models.PasswordEntry, error) {
	if err := ensureIntact(sess); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	if err := checkNickname(entries, in.Nickname, ""); err != nil {
		return nil, err
	}

	value, err := sess.Encryptor().Encrypt([]byte(in.Password))
	if err != nil {
		return nil, fmt.Errorf("encrypt value: %w", err)
	}

	now := timeNow()
	e := models.PasswordEntry{
		ID:        uuid.NewString(),
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(&e, in)

	if err := s.repo.SaveEntries(ctx, append(entries, e)); err != nil {
		return nil, fmt.Errorf("save entries: %w", err)
	}

	s.log.Info(ctx, "entry created", "id", e.ID)
	return &e, nil
}

// Update replaces the entry's fields with in. A new secret is sealed
// freshly; an empty Password keeps the stored envelope.
func (s *entryService) Update(ctx context.Context, sess *Session, id string, in models.EntryInput) (*models.PasswordEntry, error) {
	if err := ensureIntact(sess); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	i, err := indexByID(entries, id)
	if err != nil {
		return nil, err
	}
	if err := checkNickname(entries, in.Nickname, id); err != nil {
		return nil, err
	}

	e := entries[i]
	if in.Password != "" {
		value, err := sess.Encryptor().Encrypt([]byte(in.Password))
		if err != nil {
			return nil, fmt.Errorf("encrypt value: %w", err)
		}
		e.Value = value
	}
	applyInput(&e, in)
	e.UpdatedAt = timeNow()
	entries[i] = e

	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("save entries: %w", err)
	}

	s.log.Info(ctx, "entry updated", "id", e.ID, "secret_changed", in.Password != "")
	return &e, nil
}

// Delete removes the entry. When the session was flagged, the integrity
// check is rerun so removing the last broken entry lifts the restriction.
func (s *entryService) Delete(ctx context.Context, sess *Session, id string) error {
	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	i, err := indexByID(entries, id)
	if err != nil {
		return err
	}

	entries = append(entries[:i], entries[i+1:]...)
	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return fmt.Errorf("save entries: %w", err)
	}

	s.log.Info(ctx, "entry deleted", "id", id)

	if len(sess.IntegrityIssues()) == 0 {
		return nil
	}
	if err := CheckIntegrity(ctx, s.repo, sess); err != nil && !errors.Is(err, common.ErrIntegrity) {
		return fmt.Errorf("recheck integrity: %w", err)
	}
	return nil
}

func indexByID(entries []models.PasswordEntry, id string) (int, error) {
	for i := range entries {
		if entries[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("entry %q: %w", id, common.ErrNotFound)
}

// checkNickname enforces case-insensitive uniqueness, ignoring the entry
// with id exceptID.
func checkNickname(entries []models.PasswordEntry, nickname, exceptID string) error {
	key := models.NicknameKey(nickname)
	for _, e := range entries {
		if e.ID != exceptID && models.NicknameKey(e.Nickname) == key {
			return fmt.Errorf("%w: nickname %q %w", common.ErrValidation, nickname, common.ErrAlreadyExists)
		}
	}
	return nil
}

func applyInput(e *models.PasswordEntry, in models.EntryInput) {
	e.Nickname = in.Nickname
	e.Description = in.Description
	e.Username = in.Username
	e.URL = in.URL
	e.Category = in.Category
	e.Tags = in.Tags
	e.Favorite = in.Favorite
}
