package commands

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/askql/askql/internal/render"
	"github.com/askql/askql/internal/service"
)

// Lines that look like SQL run directly; everything else is a question.
var replSQLRe = regexp.MustCompile(`(?i)^\s*select\b`)

func runAskREPL(cmd *cobra.Command, svc *service.Service, opts *AskOptions) error {
	completer := readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".history"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "askql> ",
		HistoryFile:     ".askql_repl_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "askql REPL (%s)\n", svc.Dialect())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Ask a question, or start with SELECT to run SQL directly.")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, svc, line); quit {
				break
			}
			continue
		}

		if err := answer(cmd, svc, line, opts); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func answer(cmd *cobra.Command, svc *service.Service, line string, opts *AskOptions) error {
	ctx := cmd.Context()

	var sqlText, question string
	if replSQLRe.MatchString(line) {
		sqlText = strings.TrimSuffix(line, ";")
	} else {
		question = line
		var err error
		sqlText, err = svc.GenerateSQL(ctx, question, opts.Tables)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", sqlText)
	}

	res, err := svc.Run(ctx, question, sqlText)
	if err != nil {
		return err
	}
	return render.Result(cmd.OutOrStdout(), res, opts.Format)
}

// handleDotCommand handles a REPL command. Returns true on quit.
func handleDotCommand(cmd *cobra.Command, svc *service.Service, line string) bool {
	ctx := cmd.Context()
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".tables":
		for _, t := range svc.Schema().Tables {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Name)
		}

	case ".schema":
		sc := svc.Schema()
		if len(parts) > 1 {
			sc = sc.Subset(parts[1:])
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), sc.PromptText())

	case ".history":
		entries, err := svc.History(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			break
		}
		for _, e := range entries {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n    %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Question, e.SQL)
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List tables in the connected database
  .schema [table]  Show the schema (optionally for one table)
  .history         Show past questions and their SQL
  .clear           Clear the screen
  .quit            Exit the REPL

Anything else is treated as a question. Lines starting with SELECT run
as SQL directly.
`
	_, _ = fmt.Fprintln(w, help)
}
