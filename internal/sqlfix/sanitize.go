// Package sqlfix repairs and rewrites SQL text produced by a language
// model. The stages here are deliberately not a SQL parser: they anchor on
// the major clause keywords and splice text around them, so they stay total
// on malformed input. Parentheses or string literals containing
// keyword-like substrings are a documented blind spot.
package sqlfix

import (
	"regexp"
	"strings"
)

// majorKeywords are the clause boundaries the package knows how to anchor on.
var majorKeywords = []string{"SELECT", "FROM", "WHERE", "GROUP BY", "HAVING", "ORDER BY", "LIMIT"}

var (
	fencedSQLRe = regexp.MustCompile("(?is)```sql(.*?)```")
	fencedRe    = regexp.MustCompile("(?is)```(.*?)```")
	selectRe    = regexp.MustCompile(`(?i)\bselect\b`)

	hspaceRe  = regexp.MustCompile(`[ \t]+`)
	spaceNLRe = regexp.MustCompile(`[ \t]+\n`)
	nlSpaceRe = regexp.MustCompile(`\n[ \t\n]+`)
)

// glueRes fixes a clause keyword concatenated directly onto the preceding
// token. Two shapes per keyword: a non-word character glued to the keyword
// (")FROM") and a digit glued to the keyword ("> 0GROUP BY"). Requiring a
// non-identifier prefix keeps identifiers like date_from intact.
var glueRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(majorKeywords)*2)
	for _, kw := range majorKeywords {
		pat := strings.ReplaceAll(kw, " ", `\s+`)
		res = append(res,
			regexp.MustCompile(`(?i)([^\w\s])(`+pat+`)\b`),
			regexp.MustCompile(`(?i)(\d)(`+pat+`)\b`),
		)
	}
	return res
}()

// stripFences unwraps Markdown code fences, keeping the inner content.
func stripFences(text string) string {
	text = fencedSQLRe.ReplaceAllString(text, "$1")
	text = fencedRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// fixKeywordGlue guarantees a single space before each major clause keyword
// and collapses whitespace noise.
func fixKeywordGlue(sql string) string {
	for _, re := range glueRes {
		sql = re.ReplaceAllString(sql, "$1 $2")
	}
	sql = hspaceRe.ReplaceAllString(sql, " ")
	sql = spaceNLRe.ReplaceAllString(sql, "\n")
	sql = nlSpaceRe.ReplaceAllString(sql, "\n")
	return strings.TrimSpace(sql)
}

// Sanitize normalizes raw model output into a single bare SELECT statement:
// code fences are unwrapped, anything before the first SELECT is discarded,
// blank lines and -- comments are dropped, trailing semicolons and
// whitespace are trimmed, and keyword glue is repaired.
func Sanitize(raw string) string {
	text := stripFences(raw)

	if loc := selectRe.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")
	text = strings.TrimRight(text, "; \n\t")

	return fixKeywordGlue(text)
}
