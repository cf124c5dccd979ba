package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/askql/askql/internal/service"
)

func sampleResult() *service.Result {
	return &service.Result{
		SQL:     "SELECT region, total FROM t",
		Columns: []string{"region", "total"},
		Kinds:   []string{"text", "number"},
		Rows: [][]any{
			{"north", 42.5},
			{"south, east", nil},
		},
		RowCount: 2,
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "REGION")
	assert.Contains(t, out, "north")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, &service.Result{Columns: []string{"a"}}))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleResult()))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "north", rows[0]["region"])
	assert.Equal(t, 42.5, rows[0]["total"])
	assert.Nil(t, rows[1]["total"])
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleResult()))

	assert.Equal(t, "region,total\nnorth,42.5\n\"south, east\",\n", buf.String())
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "| region | total |")
	assert.Contains(t, out, "| --- | --- |")
	assert.Contains(t, out, "| north | 42.5 |")
}

func TestExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, sampleResult(), "Results"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	cell, err := f.GetCellValue("Results", "A1")
	require.NoError(t, err)
	assert.Equal(t, "region", cell)

	cell, err = f.GetCellValue("Results", "B2")
	require.NoError(t, err)
	assert.Equal(t, "42.5", cell)
}

func TestResultDispatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Result(&buf, sampleResult(), "bogus"))
	assert.Contains(t, buf.String(), "(2 rows)", "unknown format falls back to table")
}
