package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amuseapp.com/event-assistant/internal/nlq"
	"amuseapp.com/event-assistant/internal/store"
)

type fakeSearcher struct {
	queries []string
	records []store.EventRecord
	err     error
}

func (f *fakeSearcher) SearchEvents(query string) ([]store.EventRecord, error) {
	f.queries = append(f.queries, query)
	return f.records, f.err
}

type fakeTranslator struct {
	sqlReply     string
	sqlErr       error
	summaryReply string
	infoReply    string

	translateCalls int
	summaryCalls   int
	infoCalls      int
}

func (f *fakeTranslator) TranslateToSQL(_ context.Context, _ string) (string, error) {
	f.translateCalls++
	return f.sqlReply, f.sqlErr
}

func (f *fakeTranslator) SummarizeEvents(_ context.Context, _ []store.EventRecord) (string, error) {
	f.summaryCalls++
	return f.summaryReply, nil
}

func (f *fakeTranslator) AnswerInformational(_ context.Context, _ string) (string, error) {
	f.infoCalls++
	return f.infoReply, nil
}

type fakeLog struct {
	entries []store.Exchange
	err     error
}

func (f *fakeLog) CreateExchange(ex *store.Exchange) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *ex)
	return nil
}

func newTestService(searcher *fakeSearcher, llm *fakeTranslator, history *fakeLog) *AssistantService {
	s := NewAssistantService(searcher, llm, history)
	s.now = func() time.Time {
		return time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestAsk_GreetingShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeTranslator{}
	history := &fakeLog{}
	s := newTestService(searcher, llm, history)

	answer, err := s.Ask(context.Background(), 1, "  HELLO  ")
	require.NoError(t, err)
	assert.Equal(t, greetingReply, answer.Message)
	assert.Empty(t, answer.SQL)

	// No database or model calls for a greeting.
	assert.Empty(t, searcher.queries)
	assert.Zero(t, llm.translateCalls+llm.summaryCalls+llm.infoCalls)

	require.Len(t, history.entries, 1)
	assert.Equal(t, "greeting", history.entries[0].Intent)
}

func TestAsk_FarewellShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeTranslator{}
	s := newTestService(searcher, llm, &fakeLog{})

	answer, err := s.Ask(context.Background(), 1, "thanks")
	require.NoError(t, err)
	assert.Equal(t, farewellReply, answer.Message)
	assert.Empty(t, searcher.queries)
	assert.Zero(t, llm.translateCalls+llm.summaryCalls+llm.infoCalls)
}

func TestAsk_RuleBasedSearchUsesDeterministicFormatting(t *testing.T) {
	records := []store.EventRecord{{"title": "Open Air", "rating": 4.0}}
	searcher := &fakeSearcher{records: records}
	llm := &fakeTranslator{}
	history := &fakeLog{}
	s := newTestService(searcher, llm, history)

	answer, err := s.Ask(context.Background(), 7, "events between 1 June and 10 June")
	require.NoError(t, err)

	require.Len(t, searcher.queries, 1)
	assert.Contains(t, searcher.queries[0], "BETWEEN '2025-06-01' AND '2025-06-10'")
	assert.Equal(t, searcher.queries[0], answer.SQL)
	assert.Equal(t, records, answer.Results)
	assert.Equal(t, nlq.FormatEvents(records), answer.Message)

	// The rule-based flow never touches the model.
	assert.Zero(t, llm.translateCalls)
	assert.Zero(t, llm.summaryCalls)

	require.Len(t, history.entries, 1)
	assert.Equal(t, "search", history.entries[0].Intent)
	assert.Equal(t, answer.SQL, history.entries[0].SQL)
}

func TestAsk_FallbackTranslationSanitizedAndYearRewritten(t *testing.T) {
	records := []store.EventRecord{{"title": "Synth Night"}}
	searcher := &fakeSearcher{records: records}
	llm := &fakeTranslator{
		sqlReply:     "```sql\nSELECT * FROM events WHERE category_id = 6 AND CAST(substr(date_time, 7, 4) AS INTEGER) = 2022 LIMIT 10\n```",
		summaryReply: "Found one synth event.",
	}
	s := newTestService(searcher, llm, &fakeLog{})

	answer, err := s.Ask(context.Background(), 7, "cheap music concerts")
	require.NoError(t, err)

	require.Len(t, searcher.queries, 1)
	executed := searcher.queries[0]
	assert.NotContains(t, executed, "```")
	assert.NotContains(t, executed, "2022")
	assert.Contains(t, executed, "= 2025")

	assert.Equal(t, 1, llm.translateCalls)
	assert.Equal(t, 1, llm.summaryCalls)
	assert.Equal(t, "Found one synth event.", answer.Message)
	assert.Equal(t, executed, answer.SQL)
}

func TestAsk_InvalidGeneratedSQLNeverExecuted(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeTranslator{sqlReply: "I'm sorry, I can't write that query."}
	s := newTestService(searcher, llm, &fakeLog{})

	answer, err := s.Ask(context.Background(), 7, "do something impossible")
	require.NoError(t, err, "an unusable translation is an expected outcome, not a fault")
	assert.Equal(t, cannotUnderstandReply, answer.Message)
	assert.Empty(t, searcher.queries)
}

func TestAsk_MultiStatementGeneratedSQLRejected(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeTranslator{sqlReply: "SELECT * FROM events LIMIT 10; DROP TABLE events"}
	s := newTestService(searcher, llm, &fakeLog{})

	answer, err := s.Ask(context.Background(), 7, "anything fun")
	require.NoError(t, err)
	assert.Equal(t, cannotUnderstandReply, answer.Message)
	assert.Empty(t, searcher.queries)
}

func TestAsk_EmptyResultSetIsDistinctOutcome(t *testing.T) {
	searcher := &fakeSearcher{records: nil}
	llm := &fakeTranslator{}
	s := newTestService(searcher, llm, &fakeLog{})

	answer, err := s.Ask(context.Background(), 7, "events between 1 June and 10 June")
	require.NoError(t, err)
	assert.Equal(t, nlq.NoMatchMessage, answer.Message)
	assert.NotEmpty(t, answer.SQL)
	assert.NotNil(t, answer.Results)
	assert.Empty(t, answer.Results)
}

func TestAsk_DatabaseFaultSurfacesAsError(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("database is locked")}
	llm := &fakeTranslator{}
	s := newTestService(searcher, llm, &fakeLog{})

	answer, err := s.Ask(context.Background(), 7, "events between 1 June and 10 June")
	require.Error(t, err)
	assert.Nil(t, answer)
}

func TestAsk_TranslatorFaultSurfacesAsError(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeTranslator{sqlErr: errors.New("backend unavailable")}
	s := newTestService(searcher, llm, &fakeLog{})

	answer, err := s.Ask(context.Background(), 7, "cheap music concerts")
	require.Error(t, err)
	assert.Nil(t, answer)
	assert.Empty(t, searcher.queries)
}

func TestAsk_InformationalSkipsDatabase(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeTranslator{infoReply: "Festivals usually run over a weekend..."}
	history := &fakeLog{}
	s := newTestService(searcher, llm, history)

	answer, err := s.Ask(context.Background(), 7, "tell me about festivals")
	require.NoError(t, err)
	assert.Equal(t, llm.infoReply, answer.Message)
	assert.Empty(t, answer.SQL)
	assert.Empty(t, searcher.queries)
	assert.Equal(t, 1, llm.infoCalls)
	assert.Zero(t, llm.translateCalls)

	require.Len(t, history.entries, 1)
	assert.Equal(t, "informational", history.entries[0].Intent)
}

func TestAsk_InformationalFirstChangesRouting(t *testing.T) {
	q := "what happens in June events"

	// Default ordering: the date keywords force a search.
	searcher := &fakeSearcher{records: []store.EventRecord{{"title": "x"}}}
	llm := &fakeTranslator{}
	s := newTestService(searcher, llm, &fakeLog{})
	_, err := s.Ask(context.Background(), 7, q)
	require.NoError(t, err)
	assert.NotEmpty(t, searcher.queries)
	assert.Zero(t, llm.infoCalls)

	// Legacy ordering: informational phrasing wins.
	searcher = &fakeSearcher{}
	llm = &fakeTranslator{infoReply: "events are..."}
	s = newTestService(searcher, llm, &fakeLog{})
	s.UseInformationalFirst(true)
	answer, err := s.Ask(context.Background(), 7, q)
	require.NoError(t, err)
	assert.Equal(t, llm.infoReply, answer.Message)
	assert.Empty(t, searcher.queries)
	assert.Equal(t, 1, llm.infoCalls)
}

func TestAsk_ExchangeLogFailureDoesNotFailRequest(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeTranslator{}
	history := &fakeLog{err: errors.New("disk full")}
	s := newTestService(searcher, llm, history)

	answer, err := s.Ask(context.Background(), 7, "hello")
	require.NoError(t, err)
	assert.Equal(t, greetingReply, answer.Message)
}

func TestAsk_NilExchangeLogIsAllowed(t *testing.T) {
	s := NewAssistantService(&fakeSearcher{}, &fakeTranslator{}, nil)
	s.now = func() time.Time {
		return time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)
	}

	answer, err := s.Ask(context.Background(), 7, "hello")
	require.NoError(t, err)
	assert.Equal(t, greetingReply, answer.Message)
}
