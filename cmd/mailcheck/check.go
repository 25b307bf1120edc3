package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailcheck/internal/credential"
	"github.com/nhle/mailcheck/internal/model"
	"github.com/nhle/mailcheck/internal/source/email"
	"github.com/nhle/mailcheck/internal/store"
	"github.com/nhle/mailcheck/internal/sync"
)

// indexFile is the name of the SQLite index inside the storage root.
const indexFile = "index.db"

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [folder]",
		Short: "Check for new or unread mail",
		Long: "Download every unseen message in the folder (default: the account's\n" +
			"default_folder, else inbox) and print how many unseen messages were found.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var folder string
			if len(args) == 1 {
				folder = args[0]
			}
			return runCheck(cmd, opts, folder)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *globalOptions, folder string) error {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	root, err := cfg.StorageRoot()
	if err != nil {
		return err
	}
	files, err := store.NewFileStore(root)
	if err != nil {
		return err
	}

	checkerOpts := []sync.Option{sync.WithLogger(log)}
	if cfg.Index {
		idx, err := openIndex(files.Root())
		if err != nil {
			log.Warn("message index unavailable", zap.Error(err))
		} else {
			defer idx.Close()
			checkerOpts = append(checkerOpts, sync.WithIndex(idx))
		}
	}

	acct := cfg.EmailAccount
	checker := sync.New(
		acct,
		credential.ForInstruction(acct.PasswordCmd),
		email.NewDialer(log),
		files,
		checkerOpts...,
	)

	result, err := checker.Check(cmd.Context(), folder)
	if err != nil {
		return err
	}

	if n := len(result.Failures); n > 0 {
		log.Warn("some messages were not saved",
			zap.Int("failed", n), zap.Int("unseen", result.Unseen))
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Unseen)
	return nil
}

// openIndex opens the index in root, creating root if needed.
func openIndex(root string) (*store.SQLiteIndex, error) {
	if err := ensureDir(root); err != nil {
		return nil, err
	}
	return store.NewSQLiteIndex(filepath.Join(root, indexFile))
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
