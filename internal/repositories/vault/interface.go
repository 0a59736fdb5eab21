package vault

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/models"
)

// Repository reads and writes the vault's profile and entry collection as
// whole values on top of the record store.
type Repository interface {
	Initialized(ctx context.Context) (bool, error)
	LoadProfile(ctx context.Context) (*models.UserProfile, error)
	LoadEntries(ctx context.Context) ([]models.PasswordEntry, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	SaveEntries(ctx context.Context, entries []models.PasswordEntry) error
	// SaveAll writes the profile and entries in one transaction: either both
	// are stored or neither is.
	SaveAll(ctx context.Context, profile *models.UserProfile, entries []models.PasswordEntry) error
}
