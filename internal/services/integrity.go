package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
)

// findUndecryptable returns the nicknames of stored entries enc cannot open.
func findUndecryptable(ctx context.Context, repo vault.Repository, enc *cryptox.Encryptor) ([]string, error) {
	entries, err := repo.LoadEntries(ctx)
	if err != nil {
		return nil, err
	}

	var broken []string
	for _, e := range entries {
		pt, err := enc.Decrypt(e.Value)
		if err != nil {
			broken = append(broken, e.Nickname)
			continue
		}
		common.WipeByteArray(pt)
	}
	return broken, nil
}

// CheckIntegrity verifies that every stored entry opens under the session
// key. It never modifies anything. The result is remembered on the session.
func CheckIntegrity(ctx context.Context, repo vault.Repository, s *Session) error {
	broken, err := findUndecryptable(ctx, repo, s.Encryptor())
	if err != nil {
		return err
	}
	s.setIntegrityIssues(broken)
	return integrityError(broken)
}

func integrityError(broken []string) error {
	if len(broken) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d entries cannot be decrypted with the current master code: %s",
		common.ErrIntegrity, len(broken), strings.Join(broken, ", "))
}

// ensureIntact refuses sensitive operations while the last check found
// undecryptable entries.
func ensureIntact(s *Session) error {
	return integrityError(s.IntegrityIssues())
}
