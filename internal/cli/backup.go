package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/filex"
)

// backupFileName is stamped with the export time.
func backupFileName(sealed bool) string {
	kind := "backup"
	if sealed {
		kind = "sealed"
	}
	return fmt.Sprintf("%s-%s-%s.json", common.AppName, kind, timeNow().Format("20060102-150405"))
}

// Export writes a backup file into the configured backup directory after
// the gate. The file is created exclusively and with owner-only permissions.
func (a *App) Export(ctx context.Context) error {
	if err := a.authenticate(ctx); err != nil {
		return err
	}
	sealed, err := getYesNo(a.reader, "Encrypt the whole backup file?", false, a.out)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.BackupDir)
	if err != nil {
		return fmt.Errorf("backup dir: %w", err)
	}
	path := filepath.Join(dir, backupFileName(sealed))
	f, err := filex.CreateExclusive(path)
	if err != nil {
		return fmt.Errorf("backup file: %w", err)
	}

	n, err := a.backup.Export(ctx, a.session, f, sealed)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}

	fmt.Fprintf(a.out, "Exported %d entries to %s\n", n, path)
	return nil
}

// Import merges a backup file made with its own master code.
func (a *App) Import(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Backup file path", a.out)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	code, err := getSecret(a.reader, "Master code the backup was made with", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(code)
	if len(code) == 0 {
		return errors.New("a master code is required to read the backup")
	}

	res, err := a.backup.Import(ctx, a.session, f, code)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d entries (%d renamed), skipped %d duplicates.\n", res.Imported, res.Renamed, res.Skipped)
	return nil
}
