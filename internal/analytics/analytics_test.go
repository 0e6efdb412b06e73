package analytics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"lead-assistant/internal/storage"
)

func TestAnalyzeDailyLogs(t *testing.T) {
	testDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	events := []storage.Event{
		{Timestamp: testDate.Add(2 * time.Hour), UserID: 123, Route: storage.RouteKnowledge, UserMessage: "цены", AssistantResponse: "прайс"},
		{Timestamp: testDate.Add(4 * time.Hour), UserID: 123, Route: storage.RouteModel, UserMessage: "мой телефон 89161234567", AssistantResponse: "спасибо", ContactCaptured: true},
		{Timestamp: testDate.Add(6 * time.Hour), UserID: 456, Route: storage.RouteModelFailed, UserMessage: "привет", AssistantResponse: "извините"},
		// next day
		{Timestamp: testDate.AddDate(0, 0, 1), UserID: 789, Route: storage.RouteModel, UserMessage: "завтра", AssistantResponse: "ok"},
		// contact card, a lead but not a turn
		{Timestamp: testDate.Add(8 * time.Hour), UserID: 123, Route: storage.RouteContactCard, ContactCaptured: true},
	}

	stats := AnalyzeDailyLogs(events, testDate.Add(13*time.Hour))

	if stats.Date != "2024-01-15" {
		t.Errorf("Expected date '2024-01-15', got '%s'", stats.Date)
	}
	if stats.Turns != 3 {
		t.Errorf("Expected 3 turns, got %d", stats.Turns)
	}
	if stats.UniqueUsers != 2 {
		t.Errorf("Expected 2 unique users, got %d", stats.UniqueUsers)
	}
	if stats.ContactsCaptured != 2 {
		t.Errorf("Expected 2 contacts, got %d", stats.ContactsCaptured)
	}
	if stats.ByRoute[storage.RouteModel] != 1 || stats.ByRoute[storage.RouteKnowledge] != 1 || stats.ByRoute[storage.RouteModelFailed] != 1 {
		t.Errorf("Unexpected routes: %+v", stats.ByRoute)
	}
	if _, ok := stats.ByRoute[storage.RouteContactCard]; ok {
		t.Errorf("contact cards must not count as a route: %+v", stats.ByRoute)
	}
	if u := stats.UserStats[123]; u.Turns != 2 || u.Contacts != 2 {
		t.Errorf("Unexpected stats for user 123: %+v", u)
	}
}

func TestGenerateReportSummary(t *testing.T) {
	stats := &DailyStats{
		Date:             "2024-01-15",
		Turns:            5,
		UniqueUsers:      2,
		ContactsCaptured: 1,
		ByRoute:          map[storage.Route]int{storage.RouteModel: 3, storage.RouteKnowledge: 2},
	}
	summary := stats.GenerateReportSummary()

	for _, want := range []string{"2024-01-15", "Диалогов: 5", "Уникальных пользователей: 2", "Контактов получено: 1", "ответ из базы знаний: 2", "ответ модели: 3"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary should contain %q:\n%s", want, summary)
		}
	}
	if strings.Index(summary, "базы знаний") > strings.Index(summary, "ответ модели") {
		t.Errorf("routes must be sorted:\n%s", summary)
	}
}

func TestGenerateReportSummary_Empty(t *testing.T) {
	stats := AnalyzeDailyLogs(nil, time.Now())
	if strings.Contains(stats.GenerateReportSummary(), "По типам ответа") {
		t.Errorf("empty day must not list routes")
	}
}

func TestToJSON(t *testing.T) {
	stats := &DailyStats{Date: "2024-01-15", Turns: 1, ByRoute: map[storage.Route]int{storage.RouteModel: 1}}
	js, err := stats.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !strings.Contains(js, `"turns": 1`) || !strings.Contains(js, `"model": 1`) {
		t.Errorf("unexpected JSON: %s", js)
	}
}

type fakeLoader struct {
	events []storage.Event
	err    error
}

func (f fakeLoader) LoadInteractions() ([]storage.Event, error) { return f.events, f.err }

func TestSummary(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s, err := Summary(fakeLoader{events: []storage.Event{{Timestamp: now, UserID: 1, Route: storage.RouteModel, UserMessage: "x"}}}, now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(s, "Диалогов: 1") {
		t.Errorf("unexpected summary: %s", s)
	}

	boom := errors.New("disk")
	if _, err := Summary(fakeLoader{err: boom}, now); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
