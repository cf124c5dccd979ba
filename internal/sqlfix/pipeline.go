package sqlfix

// Context carries the side inputs the rewrite stages consult. The SQL text
// itself flows through the stages; nothing here is mutated.
type Context struct {
	// Question is the original natural-language question. Only the
	// time-bucket stage reads it.
	Question string

	// Dialect is the SQL dialect tag, e.g. "postgresql" or "sqlite".
	Dialect string

	// TextColumns are the schema's textual column names.
	TextColumns []string

	// DateColumns are the schema's date-like column names in schema
	// iteration order.
	DateColumns []string
}

// Stage is one named transformation. Stages are total: they never fail on
// arbitrary input, degrading to pass-through when a precondition is unmet.
type Stage struct {
	Name  string
	Apply func(Context, string) string
}

// Stages returns the pipeline in its required order. The ordering is part
// of the contract: sums must be coalesced before the time-bucket rewrite
// copies one into the new SELECT list, the dimension filter must see the
// model's GROUP BY before the rewrite replaces it, and rewrites can
// reintroduce glue errors that only a final sanitize pass cleans up.
func Stages() []Stage {
	return []Stage{
		{Name: "sanitize", Apply: func(_ Context, sql string) string {
			return Sanitize(sql)
		}},
		{Name: "coalesce-sums", Apply: func(_ Context, sql string) string {
			return WrapSumsWithCoalesce(sql)
		}},
		{Name: "dimension-filter", Apply: func(c Context, sql string) string {
			if !groupByRe.MatchString(sql) && !sumOpenRe.MatchString(sql) {
				return sql
			}
			return InjectNonBlankFilter(sql, c.TextColumns)
		}},
		{Name: "time-bucket", Apply: func(c Context, sql string) string {
			return RewriteTimeBucket(sql, c.Question, c.DateColumns, c.Dialect)
		}},
		{Name: "sanitize-final", Apply: func(_ Context, sql string) string {
			return Sanitize(sql)
		}},
	}
}

// Apply runs the full pipeline over raw model output and returns the final
// SQL text.
func Apply(ctx Context, raw string) string {
	sql := raw
	for _, st := range Stages() {
		sql = st.Apply(ctx, sql)
	}
	return sql
}
