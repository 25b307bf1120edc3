package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// AppDirName is the directory name used under both the user config
// directory and the user data directory. Existing mail stores live under
// it, so it must not change.
const AppDirName = "rustmail"

// DefaultFolder is checked when neither the command line nor the account
// settings name a folder.
const DefaultFolder = "inbox"

// AccountSettings holds the configuration for the single mail account.
type AccountSettings struct {
	// Email is the account address. It names the account's storage directory.
	Email string `mapstructure:"email" toml:"email"`

	// IMAPServer and IMAPPort locate the retrieval server.
	IMAPServer string `mapstructure:"imap_server" toml:"imap_server"`
	IMAPPort   int    `mapstructure:"imap_port" toml:"imap_port"`

	// SMTPServer and SMTPPort locate the submission server.
	SMTPServer string `mapstructure:"smtp_server" toml:"smtp_server"`
	SMTPPort   int    `mapstructure:"smtp_port" toml:"smtp_port"`

	// Username is the login name presented to the IMAP server.
	Username string `mapstructure:"username" toml:"username"`

	// PasswordCmd is the credential instruction, either a shell command
	// printing the password or "keyring:<key>".
	PasswordCmd string `mapstructure:"password_cmd" toml:"password_cmd"`

	// DefaultFolder is checked when no folder is given. Empty means unset.
	DefaultFolder string `mapstructure:"default_folder" toml:"default_folder"`

	// UseTLS selects implicit TLS; false means STARTTLS. Defaults to true.
	UseTLS bool `mapstructure:"use_tls" toml:"use_tls"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	EmailAccount AccountSettings `mapstructure:"email_account" toml:"email_account"`

	// DataDir overrides the storage root (<data-root>/rustmail).
	DataDir string `mapstructure:"data_dir" toml:"data_dir"`

	// Index enables the SQLite index of stored messages and check runs.
	Index bool `mapstructure:"index" toml:"index"`
}

// ResolveFolder returns override when set, then the account default, then
// DefaultFolder.
func (a AccountSettings) ResolveFolder(override string) string {
	if override != "" {
		return override
	}
	if a.DefaultFolder != "" {
		return a.DefaultFolder
	}
	return DefaultFolder
}

// Validate reports missing required account settings.
func (a AccountSettings) Validate() error {
	var errs []error
	required := []struct {
		key   string
		value string
	}{
		{"email", a.Email},
		{"imap_server", a.IMAPServer},
		{"username", a.Username},
		{"password_cmd", a.PasswordCmd},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("email_account.%s is required", r.key))
		}
	}
	if a.IMAPPort <= 0 || a.IMAPPort > 65535 {
		errs = append(errs, fmt.Errorf("email_account.imap_port %d is out of range", a.IMAPPort))
	}
	return errors.Join(errs...)
}

// DefaultConfigPath returns the default path for the configuration file,
// <user-config-dir>/rustmail/config.toml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config.toml")
	}
	return filepath.Join(dir, AppDirName, "config.toml")
}

// DefaultDataDir returns the per-user application data directory with
// AppDirName appended: $XDG_DATA_HOME or ~/.local/share on Unix,
// ~/Library/Application Support on macOS and %APPDATA% on Windows.
func DefaultDataDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			return "", errors.New("%APPDATA% is not defined")
		}
	case "darwin", "ios":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving data directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" || !filepath.IsAbs(base) {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolving data directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, AppDirName), nil
}

// StorageRoot returns the configured data directory, or DefaultDataDir
// when none is configured.
func (c *AppConfig) StorageRoot() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return DefaultDataDir()
}

// LoadConfig reads configuration from the given TOML file path using Viper.
// It fails if the file is missing or the account settings are incomplete.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("toml")
	}

	v.SetDefault("email_account.use_tls", true)
	v.SetDefault("email_account.imap_port", 993)
	v.SetDefault("email_account.smtp_port", 465)
	v.SetDefault("index", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.EmailAccount.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
