package nlq

import (
	"fmt"
	"strings"

	"amuseapp.com/event-assistant/internal/store"
)

// NoMatchMessage is the reply for an empty result set. It is a distinct
// outcome, never to be confused with a fault.
const NoMatchMessage = "❌ No matching event details found. Try different keywords, dates, or categories."

// AboutMaxChars caps the about field wherever event rows are rendered into
// a model prompt.
const AboutMaxChars = 300

// FormatEvents renders rows as numbered per-event blocks with a fixed
// field order. Missing fields degrade to "N/A"; the line is never omitted.
func FormatEvents(records []store.EventRecord) string {
	if len(records) == 0 {
		return NoMatchMessage
	}

	blocks := make([]string, 0, len(records))
	for i, record := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "📅 *Event %d*\n", i+1)
		fmt.Fprintf(&b, "• *Title:* %s\n", record.Field("title"))
		fmt.Fprintf(&b, "• *Date & Time:* %s\n", record.Field("date_time"))
		fmt.Fprintf(&b, "• *Location:* %s\n", record.Field("address"))
		fmt.Fprintf(&b, "• *Link:* %s\n", record.Field("link"))
		fmt.Fprintf(&b, "• *Rating:* %s/5\n", record.Field("rating"))
		fmt.Fprintf(&b, "• *About:* %s\n", record.Field("about"))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// TruncateAbout shortens an about value to AboutMaxChars runes.
func TruncateAbout(about string) string {
	runes := []rune(about)
	if len(runes) <= AboutMaxChars {
		return about
	}
	return string(runes[:AboutMaxChars])
}

// RenderRecordsForPrompt flattens rows into the plain-text payload handed
// to the summarizing model, with the about field truncated.
func RenderRecordsForPrompt(records []store.EventRecord) string {
	var b strings.Builder
	for i, record := range records {
		fmt.Fprintf(&b, "Event %d: title=%s; date_time=%s; address=%s; link=%s; rating=%s; about=%s\n",
			i+1,
			record.Field("title"),
			record.Field("date_time"),
			record.Field("address"),
			record.Field("link"),
			record.Field("rating"),
			TruncateAbout(record.Field("about")))
	}
	return b.String()
}
