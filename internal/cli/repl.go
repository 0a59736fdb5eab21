package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the main menu needs. The real App
// type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	View(ctx context.Context) error
	Search(ctx context.Context) error
	Create(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Generate(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
	ChangeMaster(ctx context.Context) error
	Settings(ctx context.Context) error
}

// runREPL is the main menu loop.
//
// It reads a line from reader, resolves the first token with parseCommand
// and hands it to dispatch. Handler errors are reported and the loop goes
// on: an aborted operation never ends the session. The loop returns nil on
// EOF, on the exit command or when ctx is cancelled.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		printlnFn(fmt.Sprintf("pv %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd, ok := parseCommand(parts[0])
		if !ok {
			printlnFn("Unknown command:", parts[0], "(type 'help' for commands)")
			continue
		}

		exit, err := dispatch(ctx, a, cmd)
		if exit {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			printlnFn(describeError(err))
		}
	}
}

// dispatch runs cmd. It reports exit for CmdExit.
func dispatch(ctx context.Context, a execIface, cmd Command) (bool, error) {
	switch cmd {
	case CmdView:
		return false, a.View(ctx)
	case CmdSearch:
		return false, a.Search(ctx)
	case CmdCreate:
		return false, a.Create(ctx)
	case CmdEdit:
		return false, a.Edit(ctx)
	case CmdDelete:
		return false, a.Delete(ctx)
	case CmdGenerate:
		return false, a.Generate(ctx)
	case CmdExport:
		return false, a.Export(ctx)
	case CmdImport:
		return false, a.Import(ctx)
	case CmdChangeMaster:
		return false, a.ChangeMaster(ctx)
	case CmdSettings:
		return false, a.Settings(ctx)
	case CmdHelp:
		printlnFn(menuText())
		return false, nil
	case CmdExit:
		return true, nil
	}
	return false, fmt.Errorf("no handler for %s", cmd)
}

// describeError turns a handler error into a message for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrAuthAttemptsExhausted):
		return "Too many wrong master codes. The operation was cancelled."
	case errors.Is(err, common.ErrIntegrity):
		return "The vault is in an inconsistent state: " + err.Error() +
			"\nSensitive operations are disabled. Restore a backup or delete the affected entries; nothing is repaired automatically."
	case errors.Is(err, common.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, common.ErrChecksumMismatch):
		return "The backup file is corrupted or was modified."
	case errors.Is(err, common.ErrDecryption):
		return "Decryption failed: " + err.Error()
	}
	return "Error: " + err.Error()
}
