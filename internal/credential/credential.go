// Package credential retrieves the account password from an external
// source without ever logging or echoing it.
package credential

import (
	"context"
	"errors"
	"strings"
)

// Provider returns a plaintext credential for an opaque instruction.
type Provider interface {
	Retrieve(ctx context.Context, instruction string) (string, error)
}

// CredentialError reports a failed credential lookup. Instruction is kept
// for callers but left out of Error, since a command line may embed a secret.
type CredentialError struct {
	Instruction string
	Reason      string
	Err         error
}

func (e *CredentialError) Error() string {
	msg := "credential error: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// IsCredentialError reports whether err (or any error in its chain) is a
// CredentialError.
func IsCredentialError(err error) bool {
	var credErr *CredentialError
	return errors.As(err, &credErr)
}

// ForInstruction picks the provider that understands instruction:
// the keyring for "keyring:<key>", a shell command otherwise.
func ForInstruction(instruction string) Provider {
	if strings.HasPrefix(instruction, KeyringPrefix) {
		return NewKeyringProvider()
	}
	return NewCommandProvider()
}
