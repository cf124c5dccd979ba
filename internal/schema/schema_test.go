package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() *Schema {
	return &Schema{Tables: []Table{
		{
			Name: "orders",
			Columns: []Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "customer_id", Type: "integer", ForeignKey: "customers.id"},
				{Name: "region", Type: "character varying"},
				{Name: "amount", Type: "numeric"},
				{Name: "sale_date", Type: "date"},
			},
		},
		{
			Name: "customers",
			Columns: []Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "name", Type: "text"},
				{Name: "signup_year", Type: "integer"},
			},
		},
	}}
}

func TestTextColumns(t *testing.T) {
	assert.Equal(t, []string{"region", "name"}, testSchema().TextColumns())
}

func TestDateLikeColumns(t *testing.T) {
	// sale_date matches on type, signup_year on name suffix
	assert.Equal(t, []string{"sale_date", "signup_year"}, testSchema().DateLikeColumns())
}

func TestSubset(t *testing.T) {
	s := testSchema()

	sub := s.Subset([]string{"customers"})
	assert.Len(t, sub.Tables, 1)
	assert.Equal(t, "customers", sub.Tables[0].Name)

	// empty filter returns everything
	assert.Equal(t, s, s.Subset(nil))

	// unknown table names drop out
	assert.Empty(t, s.Subset([]string{"nope"}).Tables)
}

func TestPromptText(t *testing.T) {
	got := testSchema().PromptText()

	assert.Contains(t, got, "orders\n")
	assert.Contains(t, got, "  - id : integer (PK)")
	assert.Contains(t, got, "  - customer_id : integer (FK->customers.id)")
	assert.Contains(t, got, "customers\n")

	// untyped columns render as TEXT
	s := &Schema{Tables: []Table{{Name: "t", Columns: []Column{{Name: "x"}}}}}
	assert.Contains(t, s.PromptText(), "  - x : TEXT")
}
