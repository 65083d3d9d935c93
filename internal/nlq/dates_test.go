package nlq

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refClock = time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)

func TestParseDateExpression_DayMonthOrderSymmetry(t *testing.T) {
	for day := 1; day <= 30; day++ {
		dayFirst, ok1 := ParseDateExpression(fmt.Sprintf("events on %d june", day), refClock)
		monthFirst, ok2 := ParseDateExpression(fmt.Sprintf("events on june %d", day), refClock)
		require.True(t, ok1, "day %d (day first)", day)
		require.True(t, ok2, "day %d (month first)", day)
		assert.Equal(t, ExactDate, dayFirst.Kind)
		assert.Equal(t, dayFirst.Date, monthFirst.Date, "day %d", day)
		assert.Equal(t, time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC), dayFirst.Date)
	}
}

func TestParseDateExpression_Range(t *testing.T) {
	expr, ok := ParseDateExpression("events between 1 June and 10 June", refClock)
	require.True(t, ok)
	assert.Equal(t, DateRange, expr.Kind)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), expr.Start)
	assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), expr.End)
}

func TestParseDateExpression_FromToRange(t *testing.T) {
	expr, ok := ParseDateExpression("shows from 5th july to 12th july", refClock)
	require.True(t, ok)
	assert.Equal(t, DateRange, expr.Kind)
	assert.Equal(t, time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC), expr.Start)
	assert.Equal(t, time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC), expr.End)
}

func TestParseDateExpression_ReversedRangeKeptAsGiven(t *testing.T) {
	expr, ok := ParseDateExpression("events between 10 june and 1 june", refClock)
	require.True(t, ok)
	assert.Equal(t, DateRange, expr.Kind)
	assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), expr.Start)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), expr.End)
}

func TestParseDateExpression_HalfParseableRangeFallsThrough(t *testing.T) {
	// Neither endpoint is a date, so the range rule is discarded and the
	// bare month name still resolves.
	expr, ok := ParseDateExpression("anything between morning and evening in june", refClock)
	require.True(t, ok)
	assert.Equal(t, MonthYear, expr.Kind)
	assert.Equal(t, time.June, expr.Month)
	assert.Equal(t, 2025, expr.Year)
}

func TestParseDateExpression_SingleDateWithOrdinal(t *testing.T) {
	expr, ok := ParseDateExpression("what is on the 5th July", refClock)
	require.True(t, ok)
	assert.Equal(t, ExactDate, expr.Kind)
	assert.Equal(t, time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC), expr.Date)
}

func TestParseDateExpression_InvalidDayFallsBackToMonth(t *testing.T) {
	// June has 30 days; "31 june" cannot resolve to an exact date but the
	// month name still matches.
	expr, ok := ParseDateExpression("events on 31 june", refClock)
	require.True(t, ok)
	assert.Equal(t, MonthYear, expr.Kind)
	assert.Equal(t, time.June, expr.Month)
}

func TestParseDateExpression_ThisMonth(t *testing.T) {
	expr, ok := ParseDateExpression("what's on this month", refClock)
	require.True(t, ok)
	assert.Equal(t, MonthYear, expr.Kind)
	assert.Equal(t, time.June, expr.Month)
	assert.Equal(t, 2025, expr.Year)
}

func TestParseDateExpression_NextMonth(t *testing.T) {
	expr, ok := ParseDateExpression("shows next month", refClock)
	require.True(t, ok)
	assert.Equal(t, MonthYear, expr.Kind)
	assert.Equal(t, time.July, expr.Month)
	assert.Equal(t, 2025, expr.Year)
}

func TestParseDateExpression_NextMonthYearRollover(t *testing.T) {
	december := time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)
	expr, ok := ParseDateExpression("shows next month", december)
	require.True(t, ok)
	assert.Equal(t, MonthYear, expr.Kind)
	assert.Equal(t, time.January, expr.Month)
	assert.Equal(t, 2026, expr.Year)
}

func TestParseDateExpression_BareMonthName(t *testing.T) {
	expr, ok := ParseDateExpression("any good concerts in march", refClock)
	require.True(t, ok)
	assert.Equal(t, MonthYear, expr.Kind)
	assert.Equal(t, time.March, expr.Month)
	assert.Equal(t, 2025, expr.Year)
}

func TestParseDateExpression_MonthAbbreviation(t *testing.T) {
	expr, ok := ParseDateExpression("events on 3 sept", refClock)
	require.True(t, ok)
	assert.Equal(t, ExactDate, expr.Kind)
	assert.Equal(t, time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC), expr.Date)
}

func TestParseDateExpression_MonthNeedsWordBoundary(t *testing.T) {
	_, ok := ParseDateExpression("maybe something fun", refClock)
	assert.False(t, ok, "'may' inside 'maybe' must not match")
}

func TestParseDateExpression_NoExpression(t *testing.T) {
	_, ok := ParseDateExpression("cheap rock concerts", refClock)
	assert.False(t, ok)
}
