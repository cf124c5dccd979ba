package prompt

import (
	"testing"

	"github.com/askql/askql/internal/schema"
	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	sc := &schema.Schema{Tables: []schema.Table{
		{Name: "orders", Columns: []schema.Column{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "region", Type: "text"},
		}},
	}}

	got := Build("top regions by sales", sc, "postgresql")

	assert.Contains(t, got, "SCHEMA\norders")
	assert.Contains(t, got, "QUESTION\ntop regions by sales")
	assert.Contains(t, got, "Use ILIKE for case-insensitive string comparisons.")
	assert.Contains(t, got, "exactly ONE SQL SELECT statement")
}

func TestBuildCaseRuleByDialect(t *testing.T) {
	sc := &schema.Schema{}

	pg := Build("q", sc, "postgresql")
	assert.Contains(t, pg, "ILIKE")

	lite := Build("q", sc, "sqlite")
	assert.Contains(t, lite, "LOWER(column) = LOWER('literal')")
	assert.NotContains(t, lite, "ILIKE")
}
