package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/history"
)

func init() {
	rootCmd.AddCommand(newHistoryCommand())
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past authoring sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.History.Disabled {
				return fmt.Errorf("session history is disabled in the config")
			}

			store, err := history.NewStore(config.ExpandPath(cfg.History.Path))
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions recorded yet.")
				return nil
			}

			for _, rec := range records {
				name := rec.SkillName
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(out, "%s  %-10s %-24s q=%d tokens=%d/%d  %s\n",
					rec.CreatedAt.Format("2006-01-02 15:04"), rec.Outcome, name,
					rec.QuestionsAsked, rec.InputTokens, rec.OutputTokens, rec.Intent)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of sessions to show")
	return cmd
}
