package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"unicode/utf8"
)

// maxStderr bounds how much of the child's stderr is kept for diagnostics.
const maxStderr = 256

// CommandProvider runs the instruction as a shell command and returns what
// it prints on stdout.
type CommandProvider struct {
	shell []string
}

// NewCommandProvider returns a provider using the platform shell.
func NewCommandProvider() *CommandProvider {
	if runtime.GOOS == "windows" {
		return &CommandProvider{shell: []string{"cmd", "/C"}}
	}
	return &CommandProvider{shell: []string{"sh", "-c"}}
}

// Retrieve executes instruction and returns its trimmed stdout.
func (p *CommandProvider) Retrieve(ctx context.Context, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", &CredentialError{Instruction: instruction, Reason: "empty command"}
	}

	args := append(append([]string{}, p.shell[1:]...), instruction)
	cmd := exec.CommandContext(ctx, p.shell[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CredentialError{
				Instruction: instruction,
				Reason:      fmt.Sprintf("command exited with status %d%s", exitErr.ExitCode(), stderrSuffix(stderr.Bytes())),
			}
		}
		return "", &CredentialError{Instruction: instruction, Reason: "launching command", Err: err}
	}

	out := stdout.Bytes()
	if !utf8.Valid(out) {
		return "", &CredentialError{Instruction: instruction, Reason: "command output is not valid UTF-8"}
	}

	return strings.TrimSpace(string(out)), nil
}

func stderrSuffix(b []byte) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return ""
	}
	if len(s) > maxStderr {
		s = s[:maxStderr] + "..."
	}
	return ": " + s
}
