// Package prompt builds the generation prompt: a fixed rule block with a
// dialect-specific case rule, the rendered schema, and the question.
package prompt

import (
	"strings"

	"github.com/askql/askql/internal/schema"
)

const bucketRule = `7) If the question mentions daily/weekly/monthly/quarterly/yearly, return TWO columns:
   period (time bucket as ISO string 'YYYY-MM-DD') and value (the aggregated measure).
   In PostgreSQL, use TO_CHAR(DATE_TRUNC('bucket', "date_col")::date, 'YYYY-MM-DD') AS period,
   then GROUP BY 1 and ORDER BY 1 ASC.`

// rulesText returns the instruction block. Only the case-comparison rule
// varies by dialect.
func rulesText(dialect string) string {
	caseRule := "- Use LOWER(column) = LOWER('literal') for case-insensitive comparisons."
	if strings.HasPrefix(strings.ToLower(dialect), "postgres") {
		caseRule = "- Use ILIKE for case-insensitive string comparisons."
	}

	return strings.Join([]string{
		"You are a careful SQL generator. Return exactly ONE SQL SELECT statement and nothing else.",
		"",
		"RULES",
		"1) Use only the tables/columns shown in the schema. Quote identifiers with double-quotes.",
		"2) SELECT only. No DDL/DML, no comments, no markdown.",
		"3) " + caseRule,
		`4) For superlatives like "highest/lowest/top/bottom" by a dimension:`,
		"   - Aggregate numeric measures with SUM(COALESCE(col,0)) or COUNT(*).",
		"   - GROUP BY the dimension column(s).",
		"   - Filter out NULL/blank dimension values using:",
		"     column IS NOT NULL AND LENGTH(TRIM(column)) > 0",
		"   - ORDER BY the aggregated value (DESC for highest) and add LIMIT as needed.",
		"5) Use ISO 'YYYY-MM-DD' for dates; do not quote pure numbers.",
		"6) Prefer LIMIT over vendor-specific TOP/OFFSET forms.",
		"7) Always alias aggregate expressions with informative, distinct names.",
		"   Examples: AVG(age) AS avg_age, SUM(actual_spends) AS total_spends.",
		bucketRule,
	}, "\n")
}

// Build assembles the full prompt for one question.
func Build(question string, sc *schema.Schema, dialect string) string {
	return strings.Join([]string{
		rulesText(dialect),
		"",
		"SCHEMA",
		sc.PromptText(),
		"",
		"QUESTION",
		question,
		"",
		"Return a single SQL SELECT statement using the schema above. No commentary.",
	}, "\n")
}
