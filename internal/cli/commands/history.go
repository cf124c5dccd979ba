package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past questions and their SQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd.Context())

			svc, cleanup, err := buildService(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := svc.History(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no history)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"When", "Question", "SQL", "Rows"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.CreatedAt.Format("2006-01-02 15:04"), e.Question, e.SQL, e.RowCount})
			}
			t.Render()
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the query history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd.Context())

			svc, cleanup, err := buildService(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	})

	return cmd
}
