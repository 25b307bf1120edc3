package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, dataDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "data_dir = \"" + filepath.ToSlash(dataDir) + "\"\n\n" +
		"[email_account]\n" +
		"email = \"me@example.com\"\n" +
		"imap_server = \"127.0.0.1\"\n" +
		"imap_port = 1\n" +
		"username = \"me\"\n" +
		"password_cmd = \"keyring:\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mailcheck "))
}

func TestCheckMissingConfig(t *testing.T) {
	_, err := execute(t, "check", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestCheckTooManyArgs(t *testing.T) {
	_, err := execute(t, "check", "a", "b")
	assert.Error(t, err)
}

func TestCheckCredentialFailurePrintsNothing(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeTestConfig(t, dataDir)

	out, err := execute(t, "check", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving password")
	assert.Empty(t, out)
}

func TestHistoryWithoutIndex(t *testing.T) {
	cfg := writeTestConfig(t, t.TempDir())

	_, err := execute(t, "history", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index")
}
