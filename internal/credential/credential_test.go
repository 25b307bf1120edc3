package credential

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use POSIX shell syntax")
	}
}

func TestCommandProviderTrimsOutput(t *testing.T) {
	skipOnWindows(t)

	got, err := NewCommandProvider().Retrieve(context.Background(), `printf '  hunter2 \n\n'`)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestCommandProviderNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	instruction := `echo hunter2; echo nope >&2; exit 3`
	_, err := NewCommandProvider().Retrieve(context.Background(), instruction)
	require.Error(t, err)

	var credErr *CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Equal(t, instruction, credErr.Instruction)
	assert.Contains(t, err.Error(), "status 3")
	assert.Contains(t, err.Error(), "nope")
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestCredentialErrorOmitsInstruction(t *testing.T) {
	err := &CredentialError{
		Instruction: "echo s3cret",
		Reason:      "launching command",
		Err:         errors.New("exec: not found"),
	}
	assert.Equal(t, "credential error: launching command: exec: not found", err.Error())
}

func TestCommandProviderInvalidUTF8(t *testing.T) {
	skipOnWindows(t)

	_, err := NewCommandProvider().Retrieve(context.Background(), `printf '\377\376'`)
	require.Error(t, err)
	assert.True(t, IsCredentialError(err))
	assert.Contains(t, err.Error(), "UTF-8")
}

func TestCommandProviderLaunchFailure(t *testing.T) {
	p := &CommandProvider{shell: []string{"/nonexistent/shell", "-c"}}

	_, err := p.Retrieve(context.Background(), "echo secret")
	require.Error(t, err)

	var credErr *CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Equal(t, "launching command", credErr.Reason)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestCommandProviderEmptyInstruction(t *testing.T) {
	_, err := NewCommandProvider().Retrieve(context.Background(), "   ")
	assert.True(t, IsCredentialError(err))
}

func newTestKeyringProvider(items ...keyring.Item) *KeyringProvider {
	ring := keyring.NewArrayKeyring(items)
	return &KeyringProvider{open: func() (keyring.Keyring, error) { return ring, nil }}
}

func TestKeyringProvider(t *testing.T) {
	p := newTestKeyringProvider(keyring.Item{Key: "imap-me", Data: []byte("s3cret\n")})

	got, err := p.Retrieve(context.Background(), "keyring:imap-me")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestKeyringProviderMissingKey(t *testing.T) {
	p := newTestKeyringProvider()

	_, err := p.Retrieve(context.Background(), "keyring:absent")
	require.Error(t, err)
	assert.True(t, IsCredentialError(err))
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestKeyringProviderEmptyKey(t *testing.T) {
	_, err := newTestKeyringProvider().Retrieve(context.Background(), "keyring:")
	assert.True(t, IsCredentialError(err))
}

func TestForInstruction(t *testing.T) {
	assert.IsType(t, &KeyringProvider{}, ForInstruction("keyring:imap"))
	assert.IsType(t, &CommandProvider{}, ForInstruction("pass show imap"))
}
