package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcheck/internal/model"
	"github.com/nhle/mailcheck/internal/store"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent checks recorded in the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			root, err := cfg.StorageRoot()
			if err != nil {
				return err
			}

			path := filepath.Join(root, indexFile)
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no index at %s: %w", path, err)
			}
			idx, err := store.NewSQLiteIndex(path)
			if err != nil {
				return err
			}
			defer idx.Close()

			account := cfg.EmailAccount.Email
			runs, err := idx.GetChecks(cmd.Context(), store.CheckFilter{
				Account: &account,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tFOLDER\tUNSEEN\tSTORED\tSKIPPED\tFAILED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
					r.StartedAt.Local().Format(time.DateTime), r.Folder,
					r.Unseen, r.Stored, r.Skipped, r.Failed)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of checks to show")
	return cmd
}
