package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcheck/internal/credential"
)

func newKeyringCmd() *cobra.Command {
	keyringCmd := &cobra.Command{
		Use:   "keyring",
		Short: "Manage passwords stored in the system keyring",
	}

	keyringCmd.AddCommand(&cobra.Command{
		Use:   "set <key>",
		Short: "Read a password from stdin and store it under key",
		Long: "Store a password for use with password_cmd = \"keyring:<key>\".\n" +
			"The first line of standard input is stored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading password from stdin: %w", err)
			}
			secret := strings.TrimRight(line, "\r\n")
			if secret == "" {
				return errors.New("empty password")
			}
			key := strings.TrimPrefix(args[0], credential.KeyringPrefix)
			if err := credential.Set(key, secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "stored %s%s\n", credential.KeyringPrefix, key)
			return nil
		},
	})

	return keyringCmd
}
