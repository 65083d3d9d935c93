package nlq

import (
	"fmt"
	"strings"
)

// Category maps a spoken keyword to the fixed category_id it stands for.
// The mapping is static for the system's lifetime and every SQL-generating
// path must honor it.
type Category struct {
	Keyword string
	ID      int
}

// Categories is ordered so prompt rendering is deterministic.
var Categories = []Category{
	{"music", 6},
	{"sports", 3},
	{"art", 4},
	{"education", 5},
	{"tech", 2},
	{"food", 7},
}

// CategoryPromptLines renders the mapping as bullet lines for the SQL
// translation prompt.
func CategoryPromptLines() string {
	var b strings.Builder
	for _, c := range Categories {
		fmt.Fprintf(&b, "    - %s -> %d\n", c.Keyword, c.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}
