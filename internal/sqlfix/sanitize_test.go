package sqlfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "sql code fence is unwrapped",
			raw:  "```sql\nSELECT * FROM orders\n```",
			want: "SELECT * FROM orders",
		},
		{
			name: "plain code fence is unwrapped",
			raw:  "```\nSELECT * FROM orders\n```",
			want: "SELECT * FROM orders",
		},
		{
			name: "leading commentary before SELECT is discarded",
			raw:  "Here is the query you asked for:\nSELECT id FROM users",
			want: "SELECT id FROM users",
		},
		{
			name: "line comments and blank lines are dropped",
			raw:  "SELECT id\n-- pick the key\n\nFROM users",
			want: "SELECT id\nFROM users",
		},
		{
			name: "trailing semicolon and whitespace are trimmed",
			raw:  "SELECT id FROM users;  \n",
			want: "SELECT id FROM users",
		},
		{
			name: "glued FROM after closing paren",
			raw:  "SELECT region, SUM(sales)FROM orders GROUP BY region",
			want: "SELECT region, SUM(sales) FROM orders GROUP BY region",
		},
		{
			name: "glued GROUP BY after digit",
			raw:  "SELECT x FROM t WHERE n > 0GROUP BY x",
			want: "SELECT x FROM t WHERE n > 0 GROUP BY x",
		},
		{
			name: "consecutive spaces collapse",
			raw:  "SELECT  id   FROM    users",
			want: "SELECT id FROM users",
		},
		{
			name: "identifier containing keyword is untouched",
			raw:  "SELECT date_from FROM bookings",
			want: "SELECT date_from FROM bookings",
		},
		{
			name: "lowercase select is found",
			raw:  "The answer:\nselect 1",
			want: "select 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"```sql\nSELECT region, SUM(sales)FROM orders GROUP BY region;\n```",
		"SELECT a, b FROM t WHERE a > 1 ORDER BY b LIMIT 5",
	}
	for _, raw := range inputs {
		once := Sanitize(raw)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestSanitizePreservesFencedSQL(t *testing.T) {
	raw := "```sql\nSELECT id, name FROM customers WHERE name ILIKE '%a%'\n```"
	assert.Equal(t, "SELECT id, name FROM customers WHERE name ILIKE '%a%'", Sanitize(raw))
}
