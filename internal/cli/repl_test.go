package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
	errs  map[string]error
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeExec) View(context.Context) error         { return f.record("view") }
func (f *fakeExec) Search(context.Context) error       { return f.record("search") }
func (f *fakeExec) Create(context.Context) error       { return f.record("create") }
func (f *fakeExec) Edit(context.Context) error         { return f.record("edit") }
func (f *fakeExec) Delete(context.Context) error       { return f.record("delete") }
func (f *fakeExec) Generate(context.Context) error     { return f.record("generate") }
func (f *fakeExec) Export(context.Context) error       { return f.record("export") }
func (f *fakeExec) Import(context.Context) error       { return f.record("import") }
func (f *fakeExec) ChangeMaster(context.Context) error { return f.record("change-master") }
func (f *fakeExec) Settings(context.Context) error     { return f.record("settings") }

// silence discards REPL output.
func silence(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

// capture collects REPL output lines.
func capture(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Commands(t *testing.T) {
	silence(t)

	input := strings.Join([]string{
		"help",
		"list",
		"",
		"search now",
		"3",
		"EDIT",
		"foobar",
		"gen",
		"settings",
		"exit",
		"view",
	}, "\n")

	exec := &fakeExec{}
	err := runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"view", "search", "create", "edit", "generate", "settings"}, exec.calls)
}

func TestRunREPL_EOFEnds(t *testing.T) {
	silence(t)

	exec := &fakeExec{}
	err := runREPL(context.Background(), exec, func() string { return "" }, rdr("view"))
	require.NoError(t, err)
	assert.Equal(t, []string{"view"}, exec.calls)
}

func TestRunREPL_HandlerErrorsAreReported(t *testing.T) {
	lines := capture(t)

	exec := &fakeExec{errs: map[string]error{
		"delete":        fmt.Errorf("gate: %w", common.ErrAuthAttemptsExhausted),
		"export":        fmt.Errorf("%w: 1 entries cannot be decrypted", common.ErrIntegrity),
		"change-master": errors.New("disk full"),
	}}
	err := runREPL(context.Background(), exec, func() string { return "(Alice)" }, rdr("delete\nexport\nchange-master\nview\nq\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"delete", "export", "change-master", "view"}, exec.calls)
	out := strings.Join(*lines, "\n")
	assert.Contains(t, out, "pv (Alice)> ")
	assert.Contains(t, out, "Too many wrong master codes")
	assert.Contains(t, out, "inconsistent state")
	assert.Contains(t, out, "Error: disk full")
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	lines := capture(t)

	exec := &fakeExec{}
	require.NoError(t, runREPL(context.Background(), exec, func() string { return "" }, rdr("sync\nexit\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, strings.Join(*lines, "\n"), "Unknown command: sync")
}

func TestRunREPL_CancelledContext(t *testing.T) {
	silence(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	require.NoError(t, runREPL(ctx, exec, func() string { return "" }, rdr("view\n")))
	assert.Empty(t, exec.calls)
}

func TestDescribeError(t *testing.T) {
	assert.Contains(t, describeError(fmt.Errorf("x: %w", common.ErrNotFound)), "Not found")
	assert.Contains(t, describeError(common.ErrChecksumMismatch), "corrupted")
	assert.Contains(t, describeError(fmt.Errorf("%w: bad", common.ErrDecryption)), "Decryption failed")
	assert.Equal(t, "Error: plain", describeError(errors.New("plain")))
}
