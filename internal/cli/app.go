package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/config"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/repositories/vault"
	"github.com/dmitrijs2005/passvault/internal/services"
)

// timeNow is a test seam for backup file names.
var timeNow = time.Now

// State is a node of the application state machine.
type State int

const (
	StateOnboarding State = iota
	StateLocked
	StateMainMenu
	StateExit
)

func (s State) String() string {
	switch s {
	case StateOnboarding:
		return "onboarding"
	case StateLocked:
		return "locked"
	case StateMainMenu:
		return "main-menu"
	case StateExit:
		return "exit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type App struct {
	config   *config.Config
	opts     services.Options
	repo     vault.Repository
	auth     services.AuthService
	entries  services.EntryService
	rotation services.RotationService
	backup   services.BackupService
	log      logging.Logger

	session *services.Session
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp wires services over repo using the security settings from c and
// reads from stdin.
func NewApp(c *config.Config, repo vault.Repository, log logging.Logger) *App {
	return newApp(c, repo, optionsFromConfig(c), log, os.Stdin, os.Stdout)
}

func newApp(c *config.Config, repo vault.Repository, opts services.Options, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		opts:     opts,
		repo:     repo,
		auth:     services.NewAuthService(repo, opts, log),
		entries:  services.NewEntryService(repo, log),
		rotation: services.NewRotationService(repo, opts, log),
		backup:   services.NewBackupService(repo, opts, log),
		log:      log.With("component", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func optionsFromConfig(c *config.Config) services.Options {
	return services.Options{
		Cipher:              c.CipherName(),
		NewKDFParams:        c.NewKDFParams,
		MaxAuthAttempts:     c.MaxAuthAttempts,
		MinMasterCodeLength: c.MinMasterCodeLength,
	}
}

// Run drives the state machine until the user exits, input ends or ctx is
// cancelled. It returns common.ErrAuthAttemptsExhausted when the startup
// unlock fails, so the caller can exit with a non-zero code.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintf(a.out, "Welcome to %s (type 'help' for commands)\n", common.AppName)

	state, err := a.initialState(ctx)
	for err == nil && state != StateExit {
		if ctx.Err() != nil {
			break
		}
		a.log.Debug(ctx, "entering state", "state", state)

		switch state {
		case StateOnboarding:
			state, err = a.onboard(ctx)
		case StateLocked:
			state, err = a.unlock(ctx)
		case StateMainMenu:
			state, err = a.mainMenu(ctx)
		default:
			err = fmt.Errorf("unexpected state %s", state)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Bye!")
	return nil
}

func (a *App) initialState(ctx context.Context) (State, error) {
	ok, err := a.auth.IsInitialized(ctx)
	if err != nil {
		return StateExit, err
	}
	if ok {
		return StateLocked, nil
	}
	return StateOnboarding, nil
}

func (a *App) onboard(ctx context.Context) (State, error) {
	fmt.Fprintln(a.out, "No vault found. Let's create one.")

	for {
		name, err := getSimpleText(a.reader, "Your name", a.out)
		if err != nil {
			return exitOnEOF(err)
		}
		code, err := a.askNewMasterCode()
		if err != nil {
			return exitOnEOF(err)
		}

		s, err := a.auth.Onboard(ctx, name, code)
		common.WipeByteArray(code)
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, describeError(err))
			continue
		}
		if err != nil {
			return StateExit, err
		}

		a.session = s
		fmt.Fprintf(a.out, "Vault created. Welcome, %s!\n", s.UserName())
		return StateMainMenu, nil
	}
}

func (a *App) unlock(ctx context.Context) (State, error) {
	s, err := a.auth.Unlock(ctx, a.codePrompt("Master code"))
	if err != nil {
		return exitOnEOF(err)
	}

	a.session = s
	fmt.Fprintf(a.out, "Welcome back, %s!\n", s.UserName())
	if issues := s.IntegrityIssues(); len(issues) > 0 {
		fmt.Fprintf(a.out, "Warning: %d entries cannot be decrypted with this master code: %s\n",
			len(issues), strings.Join(issues, ", "))
		fmt.Fprintln(a.out, "The vault is in an inconsistent state. Export, import and master code changes are disabled.")
	}
	return StateMainMenu, nil
}

func (a *App) mainMenu(ctx context.Context) (State, error) {
	printlnFn(menuText())
	if err := runREPL(ctx, a, a.getStatus, a.reader); err != nil {
		return StateExit, err
	}
	return StateExit, nil
}

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	s := "(" + a.session.UserName()
	if len(a.session.IntegrityIssues()) > 0 {
		s += " !integrity"
	}
	return s + ")"
}

// exitOnEOF treats closed input as a request to leave.
func exitOnEOF(err error) (State, error) {
	if errors.Is(err, io.EOF) {
		return StateExit, nil
	}
	return StateExit, err
}

var _ execIface = (*App)(nil)
