// Command mailcheck downloads unseen mail from an IMAP account into a local
// directory, one .eml file per message.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcheck/internal/model"
	"github.com/nhle/mailcheck/internal/version"
)

type globalOptions struct {
	configPath string
	verbose    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "mailcheck",
		Short:         "Fetch unseen mail into local .eml files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to config.toml")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "verbose output (repeatable)")

	rootCmd.AddCommand(
		newCheckCmd(opts),
		newHistoryCmd(opts),
		newKeyringCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "mailcheck", version.String())
			},
		},
	)

	return rootCmd
}
