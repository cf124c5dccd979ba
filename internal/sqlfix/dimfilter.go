package sqlfix

import (
	"regexp"
	"strings"
)

var (
	groupByRe     = regexp.MustCompile(`(?i)\bgroup\s+by\b`)
	orderByRe     = regexp.MustCompile(`(?i)\border\s+by\b`)
	limitRe       = regexp.MustCompile(`(?i)\blimit\b`)
	whereRe       = regexp.MustCompile(`(?i)\bwhere\b`)
	fromRe        = regexp.MustCompile(`(?i)\bfrom\b`)
	groupByListRe = regexp.MustCompile(`(?is)\bgroup\s+by\b(.*?)(?:\border\s+by\b|\blimit\b|\z)`)

	ordinalRe       = regexp.MustCompile(`^\d+$`)
	trailingIdentRe = regexp.MustCompile(`"?([A-Za-z_][A-Za-z0-9_]*)"?$`)

	// first clause boundary after the FROM expression
	postFromClauseRe = regexp.MustCompile(`(?i)\bwhere\b|\bgroup\s+by\b|\border\s+by\b|\blimit\b`)
)

// groupByColumns extracts bare column identifiers from the GROUP BY list.
// Ordinals (GROUP BY 1) are skipped, and so are function-wrapped
// expressions like UPPER(region): a non-blank filter on the underlying
// column would filter something the query does not group by directly.
func groupByColumns(sql string) []string {
	m := groupByListRe.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}
	var cols []string
	for _, tok := range strings.Split(m[1], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || ordinalRe.MatchString(tok) || strings.Contains(tok, "(") {
			continue
		}
		if mm := trailingIdentRe.FindStringSubmatch(tok); mm != nil {
			cols = append(cols, mm[1])
		}
	}
	return cols
}

// InjectNonBlankFilter adds a NULL/blank guard to the WHERE clause for every
// GROUP BY column that the schema marks as textual. No matching dimension
// means no change.
func InjectNonBlankFilter(sql string, textColumns []string) string {
	gbCols := groupByColumns(sql)
	if len(gbCols) == 0 {
		return sql
	}

	textSet := make(map[string]struct{}, len(textColumns))
	for _, c := range textColumns {
		textSet[c] = struct{}{}
	}
	var parts []string
	for _, c := range gbCols {
		if _, ok := textSet[c]; !ok {
			continue
		}
		part := `"` + c + `" IS NOT NULL AND LENGTH(TRIM("` + c + `")) > 0`
		// already guarded, e.g. on a second pipeline run over its own output
		if strings.Contains(sql, part) {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return sql
	}
	predicate := strings.Join(parts, " AND ")

	// Existing WHERE: conjoin the predicate right after the keyword so it
	// applies before whatever the model already filtered on.
	if loc := whereRe.FindStringIndex(sql); loc != nil {
		return sql[:loc[0]] + "WHERE " + predicate + " AND " + sql[loc[1]:]
	}

	// No WHERE: insert one after the FROM expression, before the next
	// clause if any.
	fromLoc := fromRe.FindStringIndex(sql)
	if fromLoc == nil {
		return sql + " WHERE " + predicate + " "
	}
	cut := len(sql)
	if loc := postFromClauseRe.FindStringIndex(sql[fromLoc[1]:]); loc != nil {
		cut = fromLoc[1] + loc[0]
	}
	return sql[:cut] + " WHERE " + predicate + " " + sql[cut:]
}
