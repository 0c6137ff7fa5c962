package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	if err == nil {
		t.Fatal("expected EOF error on empty input")
	}
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	require.Equal(t, "a\nb", got)
}

func TestGetMultiline_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb"), "Enter text", &out)
	require.NoError(t, err)
	require.Equal(t, "a\nb", got)
}

func stubTerminal(t *testing.T, tty bool, pw []byte, err error) {
	t.Helper()
	origRead, origTTY := readPassword, isTerminal
	readPassword = func(int) ([]byte, error) { return pw, err }
	isTerminal = func(int) bool { return tty }
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTTY })
}

func TestGetPassword(t *testing.T) {
	t.Run("terminal", func(t *testing.T) {
		stubTerminal(t, true, []byte("s3cret"), nil)
		var out bytes.Buffer
		got, err := GetPassword(rdr(""), "Password", &out)
		require.NoError(t, err)
		require.Equal(t, "s3cret", got)
	})

	t.Run("terminal error", func(t *testing.T) {
		stubTerminal(t, true, nil, errors.New("boom"))
		var out bytes.Buffer
		_, err := GetPassword(rdr(""), "Password", &out)
		require.Error(t, err)
	})

	t.Run("piped input", func(t *testing.T) {
		stubTerminal(t, false, nil, nil)
		var out bytes.Buffer
		got, err := GetPassword(rdr("piped\n"), "Password", &out)
		require.NoError(t, err)
		require.Equal(t, "piped", got)
	})
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]string
		wantErr bool
	}{
		{"simple", []string{"Amount Owed=$500", "Due=2024-02-01"}, map[string]string{"Amount Owed": "$500", "Due": "2024-02-01"}, false},
		{"trims", []string{"  name =  value  "}, map[string]string{"name": "value"}, false},
		{"empty value", []string{"name="}, map[string]string{"name": ""}, false},
		{"value with equals", []string{"expr=a=b"}, map[string]string{"expr": "a=b"}, false},
		{"missing separator", []string{"oops"}, nil, true},
		{"missing name", []string{"=v"}, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFields(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestGetFields(t *testing.T) {
	var out bytes.Buffer
	got, err := GetFields(rdr("a=1\r\nb=2\r\n\r\n"), "Template fields", &out)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, got)

	got, err = GetFields(rdr("\n"), "Template fields", &out)
	require.NoError(t, err)
	require.Empty(t, got)
}
