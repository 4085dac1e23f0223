package cliapp

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/LordOfPolls/BlackDwarf/internal/history"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent rewrite runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.History.Path == "" {
				return fmt.Errorf("run history is disabled: set history.path in %s", opts.configPath)
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			tbl := table.NewWriter()
			tbl.SetOutputMirror(cmd.OutOrStdout())
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"Started", "Target", "Mode", "Files", "Changed", "Failed", "Replaced", "Removed", "Kept", "Duration"})
			for _, r := range runs {
				mode := "write"
				if r.DryRun {
					mode = "dry-run"
				}
				tbl.AppendRow(table.Row{
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					displayPath(r.Root),
					mode,
					r.FilesProcessed,
					r.FilesChanged,
					r.FilesFailed,
					r.WildcardsReplaced,
					r.WildcardsRemoved,
					r.WildcardsKept,
					r.Duration.Round(time.Millisecond),
				})
			}
			tbl.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
