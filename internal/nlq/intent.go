package nlq

import (
	"regexp"
	"strings"
)

// IntentLabel classifies a single utterance.
type IntentLabel int

const (
	IntentSearch IntentLabel = iota
	IntentInformational
	IntentGreeting
	IntentFarewell
)

func (l IntentLabel) String() string {
	switch l {
	case IntentGreeting:
		return "greeting"
	case IntentFarewell:
		return "farewell"
	case IntentInformational:
		return "informational"
	default:
		return "search"
	}
}

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hola": {}, "hii": {}, "hiii": {}, "greetings": {},
}

var farewells = map[string]struct{}{
	"ok": {}, "bye": {}, "goodbye": {}, "thank you": {}, "thanks": {}, "see you": {},
}

// searchIndicatorPattern holds the temporal/locational keywords whose
// presence forces a database search regardless of informational-looking
// phrasing.
var searchIndicatorPattern = regexp.MustCompile(
	`\b(on|at|in|near|around|next|today|tomorrow|weekend|` +
		`january|february|march|april|may|june|july|august|september|october|november|december|` +
		`20\d{2})\b`)

var informationalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwhat\s+(happens|is|are|do|does|happening)\b`),
	regexp.MustCompile(`\btell\s+me\s+about\b`),
	regexp.MustCompile(`\bhow\s+(do|can|to)\b.*\b(add|organize|create)\b`),
	regexp.MustCompile(`\bfields?\b.*\bevents?\b`),
	regexp.MustCompile(`\bparameters\b.*\bevents?\b`),
	regexp.MustCompile(`\bdescribe\b.*\b(event|festival)`),
	regexp.MustCompile(`\b(event|festival)\s+details\b`),
}

// Classifier decides how an utterance is routed. The zero value gives
// search indicators precedence over informational patterns; setting
// InformationalFirst checks informational phrasing before that override,
// which is the ordering one of the legacy entry points used.
type Classifier struct {
	InformationalFirst bool
}

// Classify labels one utterance. Greeting and farewell are exact matches
// on the trimmed, lowercased text and win over everything; when nothing
// matches the default is search, so the system always attempts a database
// answer before giving up.
func (c Classifier) Classify(utterance string) IntentLabel {
	text := strings.ToLower(strings.TrimSpace(utterance))

	if _, ok := greetings[text]; ok {
		return IntentGreeting
	}
	if _, ok := farewells[text]; ok {
		return IntentFarewell
	}

	informational := matchesInformational(text)
	if c.InformationalFirst {
		if informational {
			return IntentInformational
		}
		return IntentSearch
	}

	if searchIndicatorPattern.MatchString(text) {
		return IntentSearch
	}
	if informational {
		return IntentInformational
	}
	return IntentSearch
}

func matchesInformational(text string) bool {
	for _, p := range informationalPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
