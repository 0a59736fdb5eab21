package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/passgen"
)

// clearField typed at an edit prompt empties an optional field.
const clearField = "-"

func printEntries(w io.Writer, entries []models.PasswordEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNICKNAME\tUSERNAME\tURL\tCATEGORY\tTAGS")
	for _, e := range entries {
		star := ""
		if e.Favorite {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", star, e.Nickname, e.Username, e.URL, e.Category, strings.Join(e.Tags, ","))
	}
	tw.Flush()
}

func printEntry(w io.Writer, e *models.PasswordEntry) {
	fmt.Fprintf(w, "Nickname:    %s\n", e.Nickname)
	fmt.Fprintf(w, "Description: %s\n", e.Description)
	if e.Username != "" {
		fmt.Fprintf(w, "Username:    %s\n", e.Username)
	}
	if e.URL != "" {
		fmt.Fprintf(w, "URL:         %s\n", e.URL)
	}
	if e.Category != "" {
		fmt.Fprintf(w, "Category:    %s\n", e.Category)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "Tags:        %s\n", strings.Join(e.Tags, ", "))
	}
	fmt.Fprintf(w, "Updated:     %s\n", e.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

// View lists all entries and optionally reveals one after the gate.
func (a *App) View(ctx context.Context) error {
	entries, err := a.entries.List(ctx)
	if err != nil {
		return err
	}
	printEntries(a.out, entries)
	if len(entries) == 0 {
		return nil
	}
	return a.reveal(ctx)
}

// Search lists entries matching a query and optionally reveals one.
func (a *App) Search(ctx context.Context) error {
	query, err := getSimpleText(a.reader, "Search for", a.out)
	if err != nil {
		return err
	}
	entries, err := a.entries.Search(ctx, query)
	if err != nil {
		return err
	}
	printEntries(a.out, entries)
	if len(entries) == 0 {
		return nil
	}
	return a.reveal(ctx)
}

func (a *App) reveal(ctx context.Context) error {
	e, err := a.pickEntry(ctx, "Entry to reveal (nickname or id, empty to go back)")
	if err != nil || e == nil {
		return err
	}
	if err := a.authenticate(ctx); err != nil {
		return err
	}

	secret, err := a.entries.Reveal(ctx, a.session, e.ID)
	if err != nil {
		return err
	}
	printEntry(a.out, e)
	fmt.Fprintf(a.out, "Password:    %s\n", secret)
	return nil
}

// pickEntry asks for a nickname or id. It returns nil for an empty answer.
func (a *App) pickEntry(ctx context.Context, prompt string) (*models.PasswordEntry, error) {
	ref, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil || ref == "" {
		return nil, err
	}
	return a.entries.Find(ctx, ref)
}

// Create asks for a new entry until it passes validation.
func (a *App) Create(ctx context.Context) error {
	for {
		in, err := a.readEntryInput(nil)
		if err != nil {
			return err
		}

		e, err := a.entries.Create(ctx, a.session, in)
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, describeError(err))
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Entry %q saved.\n", e.Nickname)
		return nil
	}
}

// Edit changes an entry after the gate. Empty answers keep current values.
func (a *App) Edit(ctx context.Context) error {
	e, err := a.pickEntry(ctx, "Entry to edit (nickname or id, empty to go back)")
	if err != nil || e == nil {
		return err
	}
	if err := a.authenticate(ctx); err != nil {
		return err
	}

	for {
		in, err := a.readEntryInput(e)
		if err != nil {
			return err
		}

		updated, err := a.entries.Update(ctx, a.session, e.ID, in)
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, describeError(err))
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Entry %q updated.\n", updated.Nickname)
		return nil
	}
}

// Delete removes an entry after the gate, asking for confirmation when the
// profile says so.
func (a *App) Delete(ctx context.Context) error {
	e, err := a.pickEntry(ctx, "Entry to delete (nickname or id, empty to go back)")
	if err != nil || e == nil {
		return err
	}
	if err := a.authenticate(ctx); err != nil {
		return err
	}

	if a.session.Profile().Settings.ConfirmDeletions {
		ok, err := getYesNo(a.reader, fmt.Sprintf("Delete %q? This cannot be undone.", e.Nickname), false, a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	if err := a.entries.Delete(ctx, a.session, e.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Entry %q deleted.\n", e.Nickname)
	return nil
}

// readEntryInput collects entry fields. With a current entry, empty answers
// keep its values and the password is only asked for on request.
func (a *App) readEntryInput(current *models.PasswordEntry) (models.EntryInput, error) {
	var in models.EntryInput
	if current != nil {
		in = models.EntryInput{
			Nickname:    current.Nickname,
			Description: current.Description,
			Username:    current.Username,
			URL:         current.URL,
			Category:    current.Category,
			Tags:        current.Tags,
			Favorite:    current.Favorite,
		}
	}

	fields := []struct {
		label    string
		value    *string
		optional bool
	}{
		{"Nickname", &in.Nickname, false},
		{"Description", &in.Description, false},
		{"Username (optional)", &in.Username, true},
		{"URL (optional)", &in.URL, true},
		{"Category (optional)", &in.Category, true},
	}
	for _, f := range fields {
		v, err := a.askField(f.label, *f.value, f.optional && current != nil)
		if err != nil {
			return in, err
		}
		*f.value = v
	}

	tags, err := a.askField("Tags, comma separated (optional)", strings.Join(in.Tags, ","), current != nil)
	if err != nil {
		return in, err
	}
	in.Tags = models.ParseTags(tags)

	if in.Favorite, err = getYesNo(a.reader, "Mark as favorite?", in.Favorite, a.out); err != nil {
		return in, err
	}

	if current != nil {
		change, err := getYesNo(a.reader, "Change the password?", false, a.out)
		if err != nil || !change {
			return in, err
		}
	}
	in.Password, err = a.askEntryPassword()
	return in, err
}

// askField shows the current value in brackets; an empty answer keeps it.
func (a *App) askField(label, current string, clearable bool) (string, error) {
	prompt := label
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", label, current)
		if clearable {
			prompt += fmt.Sprintf(" ('%s' clears)", clearField)
		}
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	switch {
	case v == "":
		return current, nil
	case clearable && v == clearField:
		return "", nil
	}
	return v, nil
}

// askEntryPassword reads a secret or, on an empty answer, generates one.
func (a *App) askEntryPassword() (string, error) {
	secret, err := getSecret(a.reader, "Password (empty to generate one)", a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(secret)
	if len(secret) > 0 {
		return string(secret), nil
	}

	pw, err := passgen.Generate(passgen.DefaultOptions())
	if err != nil {
		return "", err
	}
	fmt.Fprintf(a.out, "Generated password: %s\n", pw)
	return pw, nil
}
