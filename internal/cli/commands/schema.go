package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema [table...]",
		Short: "Show the introspected schema",
		Long: `Show the schema of the connected database: tables, columns, types,
primary keys and foreign keys. With arguments, only the named tables
are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())

			svc, cleanup, err := buildService(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			sc := svc.Schema().Subset(args)

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sc)
			}

			for _, tab := range sc.Tables {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Table: %s\n", tab.Name)

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Column", "Type", "Key"})
				for _, col := range tab.Columns {
					key := ""
					if col.PrimaryKey {
						key = "PK"
					}
					if col.ForeignKey != "" {
						if key != "" {
							key += " "
						}
						key += "FK->" + col.ForeignKey
					}
					t.AppendRow(table.Row{col.Name, col.Type, key})
				}
				t.Render()
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}
