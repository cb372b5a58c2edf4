package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
	require.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetTextOr(t *testing.T) {
	var out bytes.Buffer
	got, err := GetTextOr(rdr("\n"), "Role", "Buyer", &out)
	require.NoError(t, err)
	require.Equal(t, "Buyer", got)
	require.Contains(t, out.String(), "Role [Buyer]")

	got, err = GetTextOr(rdr("Seller\n"), "Role", "Buyer", &out)
	require.NoError(t, err)
	require.Equal(t, "Seller", got)
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\nignored\n"), "Bio", &out)
	require.NoError(t, err)
	require.Equal(t, "a\nb", got)

	got, err = GetMultiline(rdr("only"), "Bio", &out)
	require.NoError(t, err)
	require.Equal(t, "only", got)
}

func stubTerminal(t *testing.T, terminal bool, pw func(int) ([]byte, error)) {
	t.Helper()
	oldTerm, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTerm, oldRead })
	isTerminal = func(int) bool { return terminal }
	readPassword = pw
}

func TestGetPassword_Terminal(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return []byte("s3cret"), nil })

	var out bytes.Buffer
	got, err := GetPassword(rdr("not used\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "s3cret", got)
}

func TestGetPassword_TerminalError(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return nil, errors.New("boom") })

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), &out)
	require.Error(t, err)
}

func TestGetPassword_Piped(t *testing.T) {
	stubTerminal(t, false, func(int) ([]byte, error) {
		t.Fatal("terminal must not be read when input is piped")
		return nil, nil
	})

	var out bytes.Buffer
	got, err := GetPassword(rdr("piped\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "piped", got)
}
