package sqlfix

import "regexp"

var (
	sumCallRe  = regexp.MustCompile(`(?is)\bsum\s*\(\s*([^)]+?)\s*\)`)
	coalesceRe = regexp.MustCompile(`(?i)\bcoalesce\s*\(`)
	numericRe  = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// WrapSumsWithCoalesce rewrites every SUM(expr) into the null-safe
// SUM(COALESCE(expr, 0)) unless expr already contains a COALESCE call or is
// a bare numeric literal (SUM(1) cannot yield NULL rows, and leaving it
// alone keeps the full pipeline a fixed point of itself). The argument is
// scanned up to the first closing parenthesis, so a nested call carrying a
// literal ")" inside the SUM argument is left imprecise on purpose.
func WrapSumsWithCoalesce(sql string) string {
	return sumCallRe.ReplaceAllStringFunc(sql, func(m string) string {
		inner := sumCallRe.FindStringSubmatch(m)[1]
		if coalesceRe.MatchString(inner) || numericRe.MatchString(inner) {
			return m
		}
		return "SUM(COALESCE(" + inner + ", 0))"
	})
}
