package nlq

import (
	"errors"
	"strconv"
	"strings"
)

// Guard for model-generated SQL. The pipeline never executes generated
// text that does not pass this check; it is the only barrier between the
// model and the database, so it must stay strict.

var (
	// ErrNotSelect marks generated output that is not a SELECT statement.
	ErrNotSelect = errors.New("generated query is not a SELECT statement")
	// ErrMultiStatement marks output carrying more than one statement.
	ErrMultiStatement = errors.New("generated query contains more than one statement")
)

// SanitizeGeneratedSQL strips markdown code fences and surrounding
// quote/backtick characters the model tends to wrap its answer in.
func SanitizeGeneratedSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.Trim(s, "`\"'")
	return strings.TrimSpace(s)
}

// ValidateSelect confirms the sanitized text is exactly one SELECT
// statement: one optional trailing semicolon is allowed, any other
// semicolon means a second statement and is rejected. This is a shape
// check, not a SQL parser; it blocks the obvious injection shapes only.
func ValidateSelect(sql string) error {
	stmt := strings.TrimSpace(sql)
	stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	if stmt == "" {
		return ErrNotSelect
	}
	if strings.Contains(stmt, ";") {
		return ErrMultiStatement
	}
	if first := strings.Fields(stmt)[0]; !strings.EqualFold(first, "select") {
		return ErrNotSelect
	}
	return nil
}

// RewriteStaleYear replaces the literal year 2022 with the reference
// year. The model was observed to fall back to its training-data year in
// date literals; this is a drift mitigation for that one constant, not a
// general correction.
func RewriteStaleYear(sql string, year int) string {
	return strings.ReplaceAll(sql, "2022", strconv.Itoa(year))
}
