package nlq

import "fmt"

// The events.date_time column is text in the fixed 'DD/MM/YYYY,HH:MM'
// layout, not a native temporal type. Every comparison goes through the
// same recomposition to ISO 'YYYY-MM-DD' so plain string ordering is
// chronological ordering.
const (
	NormalizedDateExpr = "substr(date_time, 7, 4) || '-' || substr(date_time, 4, 2) || '-' || substr(date_time, 1, 2)"
	monthOfDateExpr    = "CAST(substr(date_time, 4, 2) AS INTEGER)"
	yearOfDateExpr     = "CAST(substr(date_time, 7, 4) AS INTEGER)"

	eventsBasePrefix = "SELECT * FROM events WHERE "

	// RowLimit caps every generated query, rule-based or model-generated.
	RowLimit = 10
)

const isoDate = "2006-01-02"

// BuildDateSQL emits a bounded SELECT for the given date expression, or ""
// when no expression is available and the caller should defer to the model
// fallback. Range endpoints are emitted exactly as given, never swapped.
func BuildDateSQL(expr DateExpression) string {
	switch expr.Kind {
	case ExactDate:
		return fmt.Sprintf("%s%s = '%s' LIMIT %d",
			eventsBasePrefix, NormalizedDateExpr, expr.Date.Format(isoDate), RowLimit)
	case DateRange:
		return fmt.Sprintf("%s%s BETWEEN '%s' AND '%s' LIMIT %d",
			eventsBasePrefix, NormalizedDateExpr,
			expr.Start.Format(isoDate), expr.End.Format(isoDate), RowLimit)
	case MonthYear:
		return fmt.Sprintf("%s%s = %d AND %s = %d LIMIT %d",
			eventsBasePrefix, monthOfDateExpr, int(expr.Month),
			yearOfDateExpr, expr.Year, RowLimit)
	default:
		return ""
	}
}
