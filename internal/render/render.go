// Package render formats query results as tables, JSON, CSV, markdown and
// Excel workbooks.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"

	"github.com/askql/askql/internal/service"
)

// Formats lists the supported output format names.
var Formats = []string{"table", "json", "csv", "md"}

// Result writes res to w in the given format. Unknown formats fall back to
// the table renderer.
func Result(w io.Writer, res *service.Result, format string) error {
	switch format {
	case "json":
		return JSON(w, res)
	case "csv":
		return CSV(w, res)
	case "md", "markdown":
		return Markdown(w, res)
	default:
		return Table(w, res)
	}
}

// Table renders res as a bordered terminal table followed by a row count.
func Table(w io.Writer, res *service.Result) error {
	if res.RowCount == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, r := range res.Rows {
		row := make(table.Row, len(res.Columns))
		for i := range res.Columns {
			row[i] = formatValue(r[i])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", res.RowCount)
	return nil
}

// JSON renders res as an indented array of column-keyed objects.
func JSON(w io.Writer, res *service.Result) error {
	out := make([]map[string]any, 0, res.RowCount)
	for _, r := range res.Rows {
		row := make(map[string]any, len(res.Columns))
		for i, col := range res.Columns {
			row[col] = r[i]
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// CSV renders res with a header row.
func CSV(w io.Writer, res *service.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return err
	}
	record := make([]string, len(res.Columns))
	for _, r := range res.Rows {
		for i := range res.Columns {
			record[i] = csvValue(r[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Markdown renders res as a pipe table.
func Markdown(w io.Writer, res *service.Result) error {
	if res.RowCount == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(res.Columns, " | "))
	seps := make([]string, len(res.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range res.Rows {
		values := make([]string, len(res.Columns))
		for i := range res.Columns {
			values[i] = formatValue(r[i])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// Excel renders res as a single-sheet xlsx workbook written to w.
func Excel(w io.Writer, res *service.Result, sheet string) error {
	if sheet == "" {
		sheet = "Results"
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	header := make([]any, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for n, r := range res.Rows {
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", n+2, err)
		}
		row := make([]any, len(res.Columns))
		copy(row, r)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", n+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

// csvValue differs from formatValue only for NULL, which becomes an empty
// field rather than the literal string.
func csvValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
