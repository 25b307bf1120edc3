package credential

import (
	"context"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "mailcheck"

// KeyringPrefix marks an instruction as a keyring lookup rather than a
// shell command.
const KeyringPrefix = "keyring:"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + serviceName + "/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringProvider resolves "keyring:<key>" instructions against the system
// keyring.
type KeyringProvider struct {
	open func() (keyring.Keyring, error)
}

// NewKeyringProvider returns a provider backed by the system keyring.
func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{open: openKeyring}
}

// Retrieve looks up the key named by instruction. The "keyring:" prefix is
// optional.
func (p *KeyringProvider) Retrieve(_ context.Context, instruction string) (string, error) {
	key := strings.TrimSpace(strings.TrimPrefix(instruction, KeyringPrefix))
	if key == "" {
		return "", &CredentialError{Instruction: instruction, Reason: "empty keyring key"}
	}

	ring, err := p.open()
	if err != nil {
		return "", &CredentialError{Instruction: instruction, Reason: "keyring unavailable", Err: err}
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", &CredentialError{
			Instruction: instruction,
			Reason:      fmt.Sprintf("getting credential %q", key),
			Err:         err,
		}
	}

	return strings.TrimSpace(string(item.Data)), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}
