package store

import (
	"fmt"
	"time"
)

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

// Event is one row of the events table as seeded. date_time is text in the
// fixed 'DD/MM/YYYY,HH:MM' layout; the schema stores it as-is and every
// query normalizes it the same way.
type Event struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Address       string  `json:"address"`
	Lat           float64 `json:"lat"`
	Long          float64 `json:"long"`
	DateTime      string  `json:"date_time"`
	About         string  `json:"about"`
	CategoryID    int64   `json:"category_id"`
	Rating        float64 `json:"rating"`
	UserID        int64   `json:"user_id"`
	CreatedAt     string  `json:"created_at"`
	Link          string  `json:"link"`
	VisibleDate   string  `json:"visible_date"`
	Recurring     string  `json:"recurring"`
	EndDate       string  `json:"end_date"`
	Weekdays      string  `json:"weekdays"`
	Dates         string  `json:"dates"`
	AllTime       string  `json:"all_time"`
	SelectedWeeks string  `json:"selected_weeks"`
}

// EventRecord is one result row of a generated SELECT, keyed by column
// name. Generated queries choose their own column list, so rows are maps
// rather than a fixed struct.
type EventRecord map[string]any

// Field renders the named column as text, degrading a missing, NULL or
// empty value to the literal "N/A".
func (r EventRecord) Field(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return "N/A"
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return "N/A"
	}
	return s
}

// Exchange is one logged request/response pair.
type Exchange struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"user_id"`
	Query     string    `json:"query"`
	Intent    string    `json:"intent"`
	SQL       string    `json:"sql,omitempty"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}
