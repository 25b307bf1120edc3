package model

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
data_dir = "/tmp/mail"

[email_account]
email = "me@example.com"
imap_server = "imap.example.com"
imap_port = 993
smtp_server = "smtp.example.com"
smtp_port = 465
username = "me"
password_cmd = "pass show mail"
default_folder = "Archive"
use_tls = false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	acct := cfg.EmailAccount
	assert.Equal(t, "me@example.com", acct.Email)
	assert.Equal(t, "imap.example.com", acct.IMAPServer)
	assert.Equal(t, 993, acct.IMAPPort)
	assert.Equal(t, "smtp.example.com", acct.SMTPServer)
	assert.Equal(t, 465, acct.SMTPPort)
	assert.Equal(t, "me", acct.Username)
	assert.Equal(t, "pass show mail", acct.PasswordCmd)
	assert.Equal(t, "Archive", acct.DefaultFolder)
	assert.False(t, acct.UseTLS)
	assert.Equal(t, "/tmp/mail", cfg.DataDir)
	assert.True(t, cfg.Index)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
[email_account]
email = "me@example.com"
imap_server = "imap.example.com"
username = "me"
password_cmd = "echo secret"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.EmailAccount.UseTLS)
	assert.Equal(t, 993, cfg.EmailAccount.IMAPPort)
	assert.Empty(t, cfg.EmailAccount.DefaultFolder)
	assert.True(t, cfg.Index)
}

func TestLoadConfigMissingFields(t *testing.T) {
	path := writeConfig(t, `
[email_account]
email = "me@example.com"
imap_port = 70000
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email_account.imap_server is required")
	assert.Contains(t, err.Error(), "email_account.username is required")
	assert.Contains(t, err.Error(), "email_account.password_cmd is required")
	assert.Contains(t, err.Error(), "out of range")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestResolveFolder(t *testing.T) {
	tests := []struct {
		name     string
		def      string
		override string
		want     string
	}{
		{"override wins", "Archive", "Work", "Work"},
		{"account default", "Archive", "", "Archive"},
		{"fallback", "", "", "inbox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := AccountSettings{DefaultFolder: tt.def}
			assert.Equal(t, tt.want, acct.ResolveFolder(tt.override))
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	assert.Equal(t, "config.toml", filepath.Base(path))
	assert.Equal(t, AppDirName, filepath.Base(filepath.Dir(path)))
}

func TestDefaultDataDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_DATA_HOME only applies on Unix")
	}
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)

	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, AppDirName), dir)
}

func TestStorageRootOverride(t *testing.T) {
	cfg := &AppConfig{DataDir: "/srv/mail"}
	root, err := cfg.StorageRoot()
	require.NoError(t, err)
	assert.Equal(t, "/srv/mail", root)
}

func TestDefaultDataDirWindowsRoaming(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("APPDATA only applies on Windows")
	}
	t.Setenv("APPDATA", `C:\Users\me\AppData\Roaming`)
	t.Setenv("LOCALAPPDATA", `C:\Users\me\AppData\Local`)

	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(`C:\Users\me\AppData\Roaming`, AppDirName), dir)
}
