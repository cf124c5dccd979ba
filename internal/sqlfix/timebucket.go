package sqlfix

import (
	"fmt"
	"regexp"
	"strings"
)

// bucketCues maps periodicity phrasing in the question to a bucket unit.
// Checked in order; the first match wins when a question carries several.
var bucketCues = []struct {
	unit string
	re   *regexp.Regexp
}{
	{"month", regexp.MustCompile(`\b(monthly|per month|by month|each month)\b`)},
	{"day", regexp.MustCompile(`\b(daily|per day|by day|each day)\b`)},
	{"week", regexp.MustCompile(`\b(weekly|per week|by week|each week)\b`)},
	{"quarter", regexp.MustCompile(`\b(quarterly|per quarter|by quarter)\b`)},
	{"year", regexp.MustCompile(`\b(yearly|per year|by year|annual|annually)\b`)},
}

var (
	selectListRe = regexp.MustCompile(`(?is)\bselect\s+(.*?)\s+from\b`)
	sumOpenRe    = regexp.MustCompile(`(?i)\bsum\s*\(`)
)

// sqliteBucketFormats renders buckets as the first day of the period so the
// output is always an ISO date string.
var sqliteBucketFormats = map[string]string{
	"day":   "%Y-%m-%d",
	"week":  "%Y-%W-01",
	"month": "%Y-%m-01",
	"year":  "%Y-01-01",
}

// detectBucket returns the bucket unit implied by the question, or "".
func detectBucket(question string) string {
	q := strings.ToLower(question)
	for _, c := range bucketCues {
		if c.re.MatchString(q) {
			return c.unit
		}
	}
	return ""
}

// bucketExpr builds the dialect-specific grouping expression for col.
// Postgres renders an ISO date string so no raw timestamp (and no time
// zone) leaks into the period column. Unknown dialects fall back to a plain
// date cast.
func bucketExpr(dialect, unit, col string) string {
	qcol := col
	if !strings.HasPrefix(qcol, `"`) {
		qcol = `"` + qcol + `"`
	}

	d := strings.ToLower(dialect)
	switch {
	case strings.HasPrefix(d, "postgres"):
		return fmt.Sprintf("TO_CHAR(DATE_TRUNC('%s', %s)::date, 'YYYY-MM-DD')", unit, qcol)
	case strings.HasPrefix(d, "sqlite"):
		if unit == "quarter" {
			// strftime has no quarter directive; build a YYYY-Qn label
			// rather than silently regrouping by month.
			return fmt.Sprintf("(strftime('%%Y', %s) || '-Q' || ((CAST(strftime('%%m', %s) AS INTEGER) + 2) / 3))", qcol, qcol)
		}
		return fmt.Sprintf("strftime('%s', %s)", sqliteBucketFormats[unit], qcol)
	default:
		return fmt.Sprintf("CAST(%s AS DATE)", qcol)
	}
}

// firstSumExpr returns the first SUM(...) call in the SELECT list, scanning
// parentheses by depth so an already coalesced argument is carried whole.
func firstSumExpr(selectList string) (string, bool) {
	loc := sumOpenRe.FindStringIndex(selectList)
	if loc == nil {
		return "", false
	}
	depth := 0
	for i := loc[1] - 1; i < len(selectList); i++ {
		switch selectList[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return selectList[loc[0] : i+1], true
			}
		}
	}
	return "", false
}

// RewriteTimeBucket rewrites sql into a canonical (period, value) aggregate
// when the question asks for per-period results and the query is not
// already grouped. dateColumns is the schema's date-like columns in
// iteration order; a column literally named "month" is preferred. When no
// cue or no date column is found the query passes through unchanged.
func RewriteTimeBucket(sql, question string, dateColumns []string, dialect string) string {
	unit := detectBucket(question)
	if unit == "" || groupByRe.MatchString(sql) {
		return sql
	}
	if len(dateColumns) == 0 {
		return sql
	}

	dateCol := dateColumns[0]
	for _, c := range dateColumns {
		if strings.EqualFold(c, "month") {
			dateCol = c
			break
		}
	}

	// Keep everything from FROM onward; replace the SELECT list with the
	// bucket and the first SUM, or a row-count surrogate.
	sumExpr := "SUM(1)"
	rest := sql
	if m := selectListRe.FindStringSubmatchIndex(sql); m != nil {
		if s, ok := firstSumExpr(sql[m[2]:m[3]]); ok {
			sumExpr = s
		}
		rest = sql[m[1]:]
	}

	out := "SELECT " + bucketExpr(dialect, unit, dateCol) + " AS period, " + sumExpr + " AS value FROM " + rest

	if !groupByRe.MatchString(out) {
		cut := len(out)
		if loc := orderByRe.FindStringIndex(out); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
		if loc := limitRe.FindStringIndex(out); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
		out = out[:cut] + " GROUP BY 1 " + out[cut:]
	}
	if !orderByRe.MatchString(out) {
		out += " ORDER BY 1"
	}
	return out
}
