package sqlfix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupByColumns(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "single column",
			sql:  "SELECT region, SUM(x) FROM t GROUP BY region",
			want: []string{"region"},
		},
		{
			name: "multiple columns with qualifier",
			sql:  "SELECT * FROM t GROUP BY t.region, category ORDER BY 1",
			want: []string{"region", "category"},
		},
		{
			name: "ordinals are skipped",
			sql:  "SELECT a, SUM(b) FROM t GROUP BY 1",
			want: nil,
		},
		{
			name: "function-wrapped expressions are skipped",
			sql:  "SELECT UPPER(region) FROM t GROUP BY UPPER(region)",
			want: nil,
		},
		{
			name: "quoted identifier",
			sql:  `SELECT "region" FROM t GROUP BY "region" LIMIT 10`,
			want: []string{"region"},
		},
		{
			name: "no group by",
			sql:  "SELECT COUNT(*) FROM t",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, groupByColumns(tt.sql))
		})
	}
}

func TestInjectNonBlankFilter(t *testing.T) {
	textCols := []string{"region", "category"}

	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "inserts where before group by",
			sql:  "SELECT region, SUM(x) FROM t GROUP BY region",
			want: `SELECT region, SUM(x) FROM t  WHERE "region" IS NOT NULL AND LENGTH(TRIM("region")) > 0 GROUP BY region`,
		},
		{
			name: "conjoins into existing where",
			sql:  "SELECT region, SUM(x) FROM t WHERE x > 0 GROUP BY region",
			want: `SELECT region, SUM(x) FROM t WHERE "region" IS NOT NULL AND LENGTH(TRIM("region")) > 0 AND  x > 0 GROUP BY region`,
		},
		{
			name: "numeric dimension gets no filter",
			sql:  "SELECT year, SUM(x) FROM t GROUP BY year",
			want: "SELECT year, SUM(x) FROM t GROUP BY year",
		},
		{
			name: "two text dimensions conjoined",
			sql:  "SELECT region, category, SUM(x) FROM t GROUP BY region, category",
			want: `SELECT region, category, SUM(x) FROM t  WHERE "region" IS NOT NULL AND LENGTH(TRIM("region")) > 0 AND "category" IS NOT NULL AND LENGTH(TRIM("category")) > 0 GROUP BY region, category`,
		},
		{
			name: "no group by is a no-op",
			sql:  "SELECT SUM(x) FROM t",
			want: "SELECT SUM(x) FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InjectNonBlankFilter(tt.sql, textCols))
		})
	}
}

func TestInjectNonBlankFilterOnce(t *testing.T) {
	// The injected predicate must appear exactly once even though the stage
	// pre-check fires for both GROUP BY and SUM.
	sql := "SELECT region, SUM(x) FROM t GROUP BY region"
	out := InjectNonBlankFilter(sql, []string{"region"})
	assert.Equal(t, 1, strings.Count(out, `"region" IS NOT NULL`))
}
