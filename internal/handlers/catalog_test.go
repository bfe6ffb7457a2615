package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
)

func TestReports_FilterAndDaily(t *testing.T) {
	env := newTestEnv(t)

	weekly := decodeBody[[]map[string]any](t, env.do(t, http.MethodGet, "/api/reports?type=weekly", nil))
	if len(weekly) != 1 || weekly[0]["summary"] != "Week 41" {
		t.Errorf("expected weekly report only, got %v", weekly)
	}

	daily := decodeBody[map[string]any](t, env.do(t, http.MethodGet, "/api/reports/daily", nil))
	if daily["summary"] != "Tuesday" {
		t.Errorf("expected last daily report, got %v", daily)
	}
}

func TestScheduledCategories(t *testing.T) {
	env := newTestEnv(t)

	categories := decodeBody[[]map[string]any](t, env.do(t, http.MethodGet, "/api/contexts/scheduled/categories", nil))

	if len(categories) != 1 || categories[0]["name"] != "Deep work" {
		t.Errorf("unexpected categories %v", categories)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	if strings.TrimSpace(recorder.Body.String()) != `{"status":"healthy"}` {
		t.Errorf("unexpected health body %q", recorder.Body.String())
	}
}

func TestCalendarFeed_QueryToken(t *testing.T) {
	env := newTestEnv(t)

	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/calendar.ics?token="+env.token, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !strings.HasPrefix(recorder.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("unexpected content type %q", recorder.Header().Get("Content-Type"))
	}

	calendar, err := ics.ParseCalendar(strings.NewReader(recorder.Body.String()))
	if err != nil {
		t.Fatalf("parsing feed: %v", err)
	}
	summaries := map[string]bool{}
	for _, event := range calendar.Events() {
		if prop := event.GetProperty(ics.ComponentPropertySummary); prop != nil {
			summaries[prop.Value] = true
		}
	}
	if len(summaries) != 2 || !summaries["Ship it"] || !summaries["Sprint review"] {
		t.Errorf("expected due task and dated event, got %v", summaries)
	}
}

func TestCalendarFeed_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/calendar.ics", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", recorder.Code)
	}
}
