package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubTerminal(t *testing.T, tty bool, pw []byte, err error) {
	t.Helper()
	origTTY, origRead := isTerminal, readPassword
	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) { return pw, err }
	t.Cleanup(func() { isTerminal, readPassword = origTTY, origRead })
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGetSecret_Terminal(t *testing.T) {
	stubTerminal(t, true, []byte("s3cr3t"), nil)

	var out bytes.Buffer
	got, err := GetSecret(rdr("ignored\n"), "Master code", &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", string(got))
	assert.Equal(t, "Master code: \n", out.String())
}

func TestGetSecret_TerminalError(t *testing.T) {
	stubTerminal(t, true, nil, errors.New("boom"))

	var out bytes.Buffer
	_, err := GetSecret(rdr(""), "Master code", &out)
	assert.EqualError(t, err, "boom")
}

func TestGetSecret_Piped(t *testing.T) {
	stubTerminal(t, false, nil, nil)

	var out bytes.Buffer
	r := rdr(" padded code \r\nsecond\n")
	got, err := GetSecret(r, "Master code", &out)
	require.NoError(t, err)
	assert.Equal(t, " padded code ", string(got))

	got, err = GetSecret(r, "Master code", &out)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	_, err = GetSecret(r, "Master code", &out)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGetYesNo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"empty takes default yes", "\n", true, true},
		{"empty takes default no", "\n", false, false},
		{"yes", "y\n", false, true},
		{"YES", "YES\n", false, true},
		{"no", "no\n", true, false},
		{"retries on garbage", "maybe\ny\n", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetYesNo(rdr(tt.input), "Continue?", tt.def, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	var out bytes.Buffer
	_, err := GetYesNo(rdr("maybe\n"), "Continue?", true, &out)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out.String(), "[Y/n]")
	assert.Contains(t, out.String(), "Please answer y or n.")
}
