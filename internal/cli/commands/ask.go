package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askql/askql/internal/render"
)

// AskOptions holds options for the ask command.
type AskOptions struct {
	Format  string
	SQL     string
	Tables  []string
	DryRun  bool
	ShowSQL bool
}

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	opts := &AskOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a natural-language question",
		Long: `Ask a natural-language question against the connected database.

The question is turned into SQL, repaired, and executed read-only. When
invoked without arguments, enters interactive REPL mode.`,
		Example: `  # One-shot question
  askql ask "total sales by month in 2025"

  # Restrict the schema shown to the model
  askql ask "top customers" --tables customers,orders

  # Show the SQL without running it
  askql ask "average order value" --dry-run

  # Run hand-written SQL directly
  askql ask --sql "SELECT COUNT(*) FROM orders"

  # Interactive mode
  askql ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVar(&opts.SQL, "sql", "", "Run this SQL instead of generating it")
	cmd.Flags().StringSliceVar(&opts.Tables, "tables", nil, "Restrict the schema shown to the model")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the generated SQL without executing it")
	cmd.Flags().BoolVar(&opts.ShowSQL, "show-sql", false, "Print the generated SQL before the results")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string, opts *AskOptions) error {
	a := appFrom(cmd.Context())

	svc, cleanup, err := buildService(cmd.Context(), a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	question := strings.TrimSpace(strings.Join(args, " "))

	if question == "" && opts.SQL == "" {
		return runAskREPL(cmd, svc, opts)
	}

	sqlText := opts.SQL
	if sqlText == "" {
		sqlText, err = svc.GenerateSQL(cmd.Context(), question, opts.Tables)
		if err != nil {
			return err
		}
	}

	if opts.DryRun {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), sqlText)
		return nil
	}
	if opts.ShowSQL {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", sqlText)
	}

	res, err := svc.Run(cmd.Context(), question, sqlText)
	if err != nil {
		return err
	}

	return render.Result(cmd.OutOrStdout(), res, opts.Format)
}
