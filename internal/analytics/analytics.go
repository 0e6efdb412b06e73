package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lead-assistant/internal/storage"
)

// DailyStats is the activity of one calendar day.
type DailyStats struct {
	Date             string                `json:"date"`
	Turns            int                   `json:"turns"`
	UniqueUsers      int                   `json:"unique_users"`
	ContactsCaptured int                   `json:"contacts_captured"`
	ByRoute          map[storage.Route]int `json:"by_route"`
	UserStats        map[int64]UserStats   `json:"user_stats"`
}

type UserStats struct {
	UserID   int64 `json:"user_id"`
	Turns    int   `json:"turns"`
	Contacts int   `json:"contacts"`
}

// AnalyzeDailyLogs aggregates the events that fall on targetDate in its location.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByRoute:   make(map[storage.Route]int),
		UserStats: make(map[int64]UserStats),
	}

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		us := stats.UserStats[event.UserID]
		us.UserID = event.UserID
		// contact cards carry no user text: a lead, not a turn
		if event.UserMessage != "" {
			stats.Turns++
			stats.ByRoute[event.Route]++
			us.Turns++
		}
		if event.ContactCaptured {
			us.Contacts++
			stats.ContactsCaptured++
		}
		stats.UserStats[event.UserID] = us
	}

	stats.UniqueUsers = len(stats.UserStats)
	return stats
}

var routeTitles = map[storage.Route]string{
	storage.RouteConsultation: "запрос консультации",
	storage.RouteKnowledge:    "ответ из базы знаний",
	storage.RouteModel:        "ответ модели",
	storage.RouteModelFailed:  "ошибка модели",
}

// GenerateReportSummary renders the stats for the operator.
func (ds *DailyStats) GenerateReportSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 Активность за %s\n\n", ds.Date)
	fmt.Fprintf(&sb, "💬 Диалогов: %d\n", ds.Turns)
	fmt.Fprintf(&sb, "👥 Уникальных пользователей: %d\n", ds.UniqueUsers)
	fmt.Fprintf(&sb, "📱 Контактов получено: %d", ds.ContactsCaptured)

	if len(ds.ByRoute) == 0 {
		return sb.String()
	}
	routes := make([]string, 0, len(ds.ByRoute))
	for r := range ds.ByRoute {
		routes = append(routes, string(r))
	}
	sort.Strings(routes)

	sb.WriteString("\n\nПо типам ответа:")
	for _, r := range routes {
		title, ok := routeTitles[storage.Route(r)]
		if !ok {
			title = r
		}
		fmt.Fprintf(&sb, "\n- %s: %d", title, ds.ByRoute[storage.Route(r)])
	}
	return sb.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EventLoader is the read side of the interaction log.
type EventLoader interface {
	LoadInteractions() ([]storage.Event, error)
}

// Summary loads the interaction log and renders the activity of now's day.
func Summary(loader EventLoader, now time.Time) (string, error) {
	events, err := loader.LoadInteractions()
	if err != nil {
		return "", fmt.Errorf("load interactions: %w", err)
	}
	return AnalyzeDailyLogs(events, now).GenerateReportSummary(), nil
}
