// Package schema holds the database schema descriptor shared by the prompt
// builder, the SQL rewrite pipeline, and the HTTP API.
package schema

import (
	"regexp"
	"strings"
)

// Column describes one column as introspection reports it.
type Column struct {
	// Name is the column name.
	Name string `json:"name"`

	// Type is the declared type as reported by the engine (e.g. "text",
	// "character varying", "timestamp without time zone").
	Type string `json:"type"`

	// PrimaryKey reports whether the column is part of the primary key.
	PrimaryKey bool `json:"pk"`

	// ForeignKey is "table.column" when the column references another
	// table, empty otherwise.
	ForeignKey string `json:"fk,omitempty"`
}

// Table is an ordered list of columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the ordered set of tables visible to query generation.
type Schema struct {
	Tables []Table `json:"tables"`
}

// dateNameRe marks columns whose name implies a calendar meaning even when
// the declared type is textual or numeric.
var dateNameRe = regexp.MustCompile(`(?i)(date|month|day|year)$`)

// Subset returns a schema restricted to the named tables, preserving
// order. An empty or nil list returns the schema unchanged.
func (s *Schema) Subset(tables []string) *Schema {
	if len(tables) == 0 {
		return s
	}
	wanted := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		wanted[t] = struct{}{}
	}
	out := &Schema{}
	for _, t := range s.Tables {
		if _, ok := wanted[t.Name]; ok {
			out.Tables = append(out.Tables, t)
		}
	}
	return out
}

// TextColumns returns the names of columns with a textual declared type.
// These are the dimension candidates for the non-blank filter.
func (s *Schema) TextColumns() []string {
	var cols []string
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			ctype := strings.ToLower(c.Type)
			if strings.Contains(ctype, "text") || strings.Contains(ctype, "char") || strings.Contains(ctype, "string") {
				cols = append(cols, c.Name)
			}
		}
	}
	return cols
}

// DateLikeColumns returns, in schema iteration order, the names of columns
// usable as a time-bucket axis: declared type contains "date" or
// "timestamp", or the name ends in date/month/day/year.
func (s *Schema) DateLikeColumns() []string {
	var cols []string
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			ctype := strings.ToLower(c.Type)
			if strings.Contains(ctype, "date") || strings.Contains(ctype, "timestamp") || dateNameRe.MatchString(c.Name) {
				cols = append(cols, c.Name)
			}
		}
	}
	return cols
}

// PromptText renders the schema block of the generation prompt:
//
//	orders
//	  - id : INTEGER (PK)
//	  - customer_id : INTEGER (FK->customers.id)
//	  - amount : NUMERIC
func (s *Schema) PromptText() string {
	var b strings.Builder
	for i, t := range s.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.Name)
		b.WriteString("\n")
		for _, c := range t.Columns {
			ctype := c.Type
			if ctype == "" {
				ctype = "TEXT"
			}
			b.WriteString("  - " + c.Name + " : " + ctype)
			if c.PrimaryKey {
				b.WriteString(" (PK)")
			}
			if c.ForeignKey != "" {
				b.WriteString(" (FK->" + c.ForeignKey + ")")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
