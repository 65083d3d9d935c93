package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"amuseapp.com/event-assistant/internal/nlq"
	"amuseapp.com/event-assistant/internal/store"
)

const defaultChatModelName = "gemini-1.5-flash-latest"

// Sampling temperatures per flow: SQL structure must be reproducible,
// summaries get some variety, informational answers a little more.
const (
	sqlTemperature     = 0.0
	summaryTemperature = 0.5
	infoTemperature    = 0.7
)

var sqlSystemInstruction = fmt.Sprintf(`You convert natural language questions about events into SQLite SELECT queries.

The database has a table named events with these columns:
id, title, address, lat, long, date_time, about, category_id, rating, user_id, created_at, link, visible_date, recurring, end_date, weekdays, dates, all_time, selected_weeks.

Rules:
- date_time is a string like '20/06/2025,20:30'
- For date comparisons use the expression: %s
- category_id is an integer, never compare it to a category name. Mappings:
%s
- Return only a single valid SELECT statement. No markdown, no comments.
- Always use LIMIT %d.`, nlq.NormalizedDateExpr, nlq.CategoryPromptLines(), nlq.RowLimit)

const summarySystemInstruction = "You are an assistant that formats a list of event data into a friendly summary. " +
	"For every event include, in this order: Title, Date & Time, Location, Link (if available), Rating, About. " +
	"Use line breaks between events. No JSON, no markdown."

const infoSystemInstruction = "You are an assistant that answers general questions about events. " +
	"Answer with informative and friendly detail, 300 words maximum."

type LLMService struct {
	client *genai.Client
}

// NewLLMService builds the Gemini-backed generative service. The client is
// injected into the orchestrator rather than held as ambient state.
func NewLLMService(ctx context.Context, apiKey string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

func (s *LLMService) generate(ctx context.Context, system string, temperature float32, prompt string) (string, error) {
	model := s.client.GenerativeModel(defaultChatModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	temp := temperature
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: &temp,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text parts")
	}
	return strings.TrimSpace(text.String()), nil
}

// TranslateToSQL asks the model for exactly one SELECT statement for the
// utterance. The raw reply is returned as-is; the caller sanitizes and
// validates it before anything touches the database.
func (s *LLMService) TranslateToSQL(ctx context.Context, utterance string) (string, error) {
	prompt := fmt.Sprintf("User query: %q", utterance)
	return s.generate(ctx, sqlSystemInstruction, sqlTemperature, prompt)
}

// SummarizeEvents renders result rows as a natural-language summary.
func (s *LLMService) SummarizeEvents(ctx context.Context, records []store.EventRecord) (string, error) {
	prompt := "Data:\n" + nlq.RenderRecordsForPrompt(records)
	return s.generate(ctx, summarySystemInstruction, summaryTemperature, prompt)
}

// AnswerInformational answers a general question about events without
// touching the database.
func (s *LLMService) AnswerInformational(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf("User question: %q", question)
	return s.generate(ctx, infoSystemInstruction, infoTemperature, prompt)
}
