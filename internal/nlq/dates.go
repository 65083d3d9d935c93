package nlq

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateKind discriminates the calendar constraints a query can carry.
type DateKind int

const (
	DateNone DateKind = iota
	ExactDate
	DateRange
	MonthYear
)

// DateExpression is a fully resolved calendar constraint. Only the fields
// relevant to Kind are set: Date for ExactDate, Start/End for DateRange,
// Month/Year for MonthYear.
type DateExpression struct {
	Kind  DateKind
	Date  time.Time
	Start time.Time
	End   time.Time
	Month time.Month
	Year  int
}

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	rangePattern      = regexp.MustCompile(`(?:between|from)\s+(.+?)\s+(?:and|to)\s+(.+)`)
	dayFirstPattern   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)`)
	monthFirstPattern = regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	monthNamePatterns = buildMonthNamePatterns()
)

// buildMonthNamePatterns compiles one word-boundary pattern per calendar
// month so that e.g. "may" never fires inside "maybe".
func buildMonthNamePatterns() map[time.Month]*regexp.Regexp {
	alternatives := make(map[time.Month][]string)
	for name, month := range monthsByName {
		alternatives[month] = append(alternatives[month], name)
	}
	patterns := make(map[time.Month]*regexp.Regexp, 12)
	for month, names := range alternatives {
		// Longest name first so "september" wins over "sep".
		sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
		patterns[month] = regexp.MustCompile(`\b(?:` + strings.Join(names, "|") + `)\b`)
	}
	return patterns
}

// ParseDateExpression recognizes at most one calendar expression in the
// utterance, resolved against the reference instant now. Rules are tried in
// a fixed precedence order and a rule either yields a fully resolved
// expression or is skipped entirely; a half-parseable range does not fail
// the utterance.
func ParseDateExpression(utterance string, now time.Time) (DateExpression, bool) {
	text := strings.ToLower(utterance)
	year := now.Year()

	// Range phrases: "between X and Y", "from X to Y".
	if m := rangePattern.FindStringSubmatch(text); m != nil {
		start, okStart := parseDayMonth(m[1], year)
		end, okEnd := parseDayMonth(m[2], year)
		if okStart && okEnd {
			return DateExpression{Kind: DateRange, Start: start, End: end}, true
		}
	}

	// Single dates: "15 june", "june 15", ordinal suffixes allowed.
	if date, ok := parseDayMonth(text, year); ok {
		return DateExpression{Kind: ExactDate, Date: date}, true
	}

	if strings.Contains(text, "this month") {
		return DateExpression{Kind: MonthYear, Month: now.Month(), Year: now.Year()}, true
	}

	if strings.Contains(text, "next month") {
		next := int(now.Month())%12 + 1
		nextYear := now.Year()
		if next == 1 {
			nextYear++
		}
		return DateExpression{Kind: MonthYear, Month: time.Month(next), Year: nextYear}, true
	}

	// A bare month name anywhere in the text.
	for month := time.January; month <= time.December; month++ {
		if monthNamePatterns[month].MatchString(text) {
			return DateExpression{Kind: MonthYear, Month: month, Year: year}, true
		}
	}

	return DateExpression{}, false
}

// parseDayMonth scans text for a day-number/month-name pair in either order
// and anchors it to the given year. Candidates whose word is not a month
// name or whose day does not exist in that month are skipped.
func parseDayMonth(text string, year int) (time.Time, bool) {
	for _, m := range dayFirstPattern.FindAllStringSubmatch(text, -1) {
		if date, ok := resolveDayMonth(m[1], m[2], year); ok {
			return date, true
		}
	}
	for _, m := range monthFirstPattern.FindAllStringSubmatch(text, -1) {
		if date, ok := resolveDayMonth(m[2], m[1], year); ok {
			return date, true
		}
	}
	return time.Time{}, false
}

func resolveDayMonth(dayToken, monthToken string, year int) (time.Time, bool) {
	month, ok := monthsByName[monthToken]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayToken)
	if err != nil || day < 1 || day > daysIn(month, year) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
