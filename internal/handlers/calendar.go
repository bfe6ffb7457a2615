package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/store"
	ics "github.com/arran4/golang-ical"
)

const calendarName = "Coreterra"

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

type CalendarHandler struct {
	taskRepo    repository.TaskRepository
	catalogRepo repository.CatalogRepository
	now         func() time.Time
}

func NewCalendarHandler(taskRepo repository.TaskRepository, catalogRepo repository.CatalogRepository) *CalendarHandler {
	return &CalendarHandler{taskRepo: taskRepo, catalogRepo: catalogRepo, now: time.Now}
}

// Feed serves tasks with a due date and dated calendar events as an
// iCalendar document. Dates without a time become all-day events.
func (handler *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasks, err := handler.taskRepo.FindAll(ctx, repository.TaskFilter{})
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	events, err := handler.catalogRepo.CalendarEvents(ctx)
	if err != nil {
		slog.Error("finding calendar events for ical", "error", err)
	}

	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId("-//" + calendarName + "//" + calendarName + "//EN")
	calendar.SetXWRCalName(calendarName)
	stamp := handler.now().UTC()

	for _, task := range tasks {
		if task.DueDate == nil || task.Status == models.TaskStatusTrash {
			continue
		}
		due, allDay, ok := parseDate(*task.DueDate)
		if !ok {
			slog.Debug("skipping task with unparseable due date", "task_id", task.ID, "due_date", *task.DueDate)
			continue
		}
		event := calendar.AddEvent(fmt.Sprintf("task-%d@coreterra", task.ID))
		event.SetDtStampTime(stamp)
		summary := task.Title
		if task.Status == models.TaskStatusCompleted {
			summary = "[Done] " + summary
		}
		event.SetSummary(summary)
		if task.Description != nil && *task.Description != "" {
			event.SetDescription(*task.Description)
		}
		setWhen(event, due, allDay)
	}

	for _, record := range events {
		date, _ := record["date"].(string)
		when, allDay, ok := parseDate(date)
		if !ok {
			continue
		}
		event := calendar.AddEvent(fmt.Sprintf("event-%s@coreterra", store.IDString(record.ID())))
		event.SetDtStampTime(stamp)
		title, _ := record["title"].(string)
		event.SetSummary(title)
		setWhen(event, when, allDay)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=coreterra.ics")
	w.Write([]byte(calendar.Serialize()))
}

func setWhen(event *ics.VEvent, when time.Time, allDay bool) {
	if allDay {
		event.SetAllDayStartAt(when)
		event.SetAllDayEndAt(when.AddDate(0, 0, 1))
		return
	}
	event.SetStartAt(when)
	event.SetEndAt(when.Add(time.Hour))
}

func parseDate(value string) (time.Time, bool, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, layout == "2006-01-02", true
		}
	}
	return time.Time{}, false, false
}
