package cli

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/services"
)

// codePrompt asks for the master code, announcing retries.
func (a *App) codePrompt(label string) services.CodePrompt {
	return func(attempt, maxAttempts int) ([]byte, error) {
		if attempt > 1 {
			fmt.Fprintf(a.out, "Wrong master code. Attempt %d of %d.\n", attempt, maxAttempts)
		}
		return getSecret(a.reader, label, a.out)
	}
}

// authenticate re-runs the gate before a sensitive operation.
func (a *App) authenticate(ctx context.Context) error {
	return a.auth.Authenticate(ctx, a.session, a.codePrompt("Master code"))
}

// askNewMasterCode reads a new master code twice until it is valid and both
// entries match.
func (a *App) askNewMasterCode() ([]byte, error) {
	for {
		code, err := getSecret(a.reader, "New master code", a.out)
		if err != nil {
			return nil, err
		}
		if err := models.ValidateMasterCode(string(code), a.opts.MinMasterCodeLength); err != nil {
			common.WipeByteArray(code)
			fmt.Fprintln(a.out, describeError(err))
			continue
		}

		confirm, err := getSecret(a.reader, "Repeat new master code", a.out)
		if err != nil {
			common.WipeByteArray(code)
			return nil, err
		}
		match := subtle.ConstantTimeCompare(code, confirm) == 1
		common.WipeByteArray(confirm)
		if !match {
			common.WipeByteArray(code)
			fmt.Fprintln(a.out, "The codes do not match, try again.")
			continue
		}
		return code, nil
	}
}

// ChangeMaster verifies the current master code, asks for a new one and
// re-encrypts the vault.
func (a *App) ChangeMaster(ctx context.Context) error {
	var current []byte
	defer func() { common.WipeByteArray(current) }()

	prompt := a.codePrompt("Current master code")
	err := a.auth.Authenticate(ctx, a.session, func(attempt, maxAttempts int) ([]byte, error) {
		code, err := prompt(attempt, maxAttempts)
		if err != nil {
			return nil, err
		}
		// the gate wipes what it receives
		common.WipeByteArray(current)
		current = append([]byte(nil), code...)
		return code, nil
	})
	if err != nil {
		return err
	}

	for {
		next, err := a.askNewMasterCode()
		if err != nil {
			return err
		}

		n, err := a.rotation.ChangeMasterCode(ctx, a.session, current, next)
		common.WipeByteArray(next)
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, describeError(err))
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Master code changed. %d entries re-encrypted.\n", n)
		return nil
	}
}

// Settings toggles user preferences.
func (a *App) Settings(ctx context.Context) error {
	settings := a.session.Profile().Settings
	fmt.Fprintf(a.out, "Confirm deletions: %s\n", onOff(settings.ConfirmDeletions))

	confirm, err := getYesNo(a.reader, "Ask for confirmation before deleting entries?", settings.ConfirmDeletions, a.out)
	if err != nil {
		return err
	}
	if confirm == settings.ConfirmDeletions {
		fmt.Fprintln(a.out, "No changes.")
		return nil
	}

	settings.ConfirmDeletions = confirm
	if err := a.auth.UpdateSettings(ctx, a.session, settings); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Confirm deletions: %s\n", onOff(confirm))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
