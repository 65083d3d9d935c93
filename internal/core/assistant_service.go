package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"amuseapp.com/event-assistant/internal/nlq"
	"amuseapp.com/event-assistant/internal/store"
)

// Canned replies for the short-circuit and expected-failure outcomes.
const (
	greetingReply = "👋 Hello! I'm your event assistant. Ask things like 'Events in June', 'Concerts in Delhi', or 'What happens in Holi events?'"
	farewellReply = "👋 Thank you! Have a great day. I'm here if you need help with events later!"

	cannotUnderstandReply = "❓ Sorry, I couldn't understand your request. Try something like:\n" +
		"• Show events happening in June\n" +
		"• Events between 5th and 10th July\n" +
		"• Music shows next month 🎶"
)

// ApologyMessage is the only text a caller sees when a downstream fault
// occurs. Raw error internals never ride along.
const ApologyMessage = "⚠️ Something went wrong. Try again or ask in a different way."

// EventSearcher runs an already-validated SELECT against the events table.
type EventSearcher interface {
	SearchEvents(query string) ([]store.EventRecord, error)
}

// Translator is the narrow generative-backend surface the orchestrator
// depends on.
type Translator interface {
	TranslateToSQL(ctx context.Context, utterance string) (string, error)
	SummarizeEvents(ctx context.Context, records []store.EventRecord) (string, error)
	AnswerInformational(ctx context.Context, question string) (string, error)
}

// ExchangeLog records answered requests. Logging is best-effort and never
// fails a request.
type ExchangeLog interface {
	CreateExchange(ex *store.Exchange) error
}

// Answer is the user-facing outcome of one utterance. Expected non-answers
// (can't understand, no matching events) are Answers, not errors; only
// downstream faults travel as errors.
type Answer struct {
	Message string              `json:"message"`
	SQL     string              `json:"sql,omitempty"`
	Results []store.EventRecord `json:"results,omitempty"`
}

type AssistantService struct {
	searcher   EventSearcher
	llm        Translator
	history    ExchangeLog
	classifier nlq.Classifier
	now        func() time.Time
}

func NewAssistantService(searcher EventSearcher, llm Translator, history ExchangeLog) *AssistantService {
	return &AssistantService{
		searcher: searcher,
		llm:      llm,
		history:  history,
		now:      time.Now,
	}
}

// UseInformationalFirst switches classification to the legacy ordering
// that checks informational phrasing before the search-keyword override.
func (s *AssistantService) UseInformationalFirst(enabled bool) {
	s.classifier.InformationalFirst = enabled
}

// Ask runs the full pipeline for one utterance: classify, resolve SQL
// (rules first, model fallback), execute, format. The reference clock is
// captured once so every date computation in the request agrees on "now".
func (s *AssistantService) Ask(ctx context.Context, userID int64, utterance string) (*Answer, error) {
	utterance = strings.TrimSpace(utterance)
	now := s.now()
	intent := s.classifier.Classify(utterance)

	var answer *Answer
	var err error
	switch intent {
	case nlq.IntentGreeting:
		answer = &Answer{Message: greetingReply}
	case nlq.IntentFarewell:
		answer = &Answer{Message: farewellReply}
	case nlq.IntentInformational:
		answer, err = s.answerInformational(ctx, utterance)
	default:
		answer, err = s.answerSearch(ctx, utterance, now)
	}
	if err != nil {
		return nil, err
	}

	s.logExchange(userID, utterance, intent, answer)
	return answer, nil
}

func (s *AssistantService) answerInformational(ctx context.Context, utterance string) (*Answer, error) {
	text, err := s.llm.AnswerInformational(ctx, utterance)
	if err != nil {
		return nil, fmt.Errorf("informational answer failed: %w", err)
	}
	return &Answer{Message: text}, nil
}

func (s *AssistantService) answerSearch(ctx context.Context, utterance string, now time.Time) (*Answer, error) {
	var sqlText string
	ruleBased := false
	if expr, ok := nlq.ParseDateExpression(utterance, now); ok {
		sqlText = nlq.BuildDateSQL(expr)
		ruleBased = sqlText != ""
	}

	if sqlText == "" {
		raw, err := s.llm.TranslateToSQL(ctx, utterance)
		if err != nil {
			return nil, fmt.Errorf("query translation failed: %w", err)
		}
		sqlText = nlq.SanitizeGeneratedSQL(raw)
		if err := nlq.ValidateSelect(sqlText); err != nil {
			// Expected outcome, not a fault: the generated text is
			// discarded and never executed.
			log.Printf("Rejected generated query (%v): %.120q", err, sqlText)
			return &Answer{Message: cannotUnderstandReply}, nil
		}
		sqlText = nlq.RewriteStaleYear(sqlText, now.Year())
	}

	records, err := s.searcher.SearchEvents(sqlText)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	if len(records) == 0 {
		return &Answer{Message: nlq.NoMatchMessage, SQL: sqlText, Results: []store.EventRecord{}}, nil
	}

	if ruleBased {
		return &Answer{Message: nlq.FormatEvents(records), SQL: sqlText, Results: records}, nil
	}

	formatted, err := s.llm.SummarizeEvents(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("result summary failed: %w", err)
	}
	return &Answer{Message: formatted, SQL: sqlText, Results: records}, nil
}

func (s *AssistantService) logExchange(userID int64, utterance string, intent nlq.IntentLabel, answer *Answer) {
	if s.history == nil {
		return
	}
	ex := store.Exchange{
		UserID: userID,
		Query:  utterance,
		Intent: intent.String(),
		SQL:    answer.SQL,
		Reply:  answer.Message,
	}
	if err := s.history.CreateExchange(&ex); err != nil {
		log.Printf("Failed to log exchange for user %d: %v", userID, err)
	}
}
