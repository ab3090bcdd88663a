// Package calendar reads iCalendar feeds to prefill time descriptions.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
)

type Event struct {
	Summary   string
	StartTime time.Time
	EndTime   time.Time
	AllDay    bool
}

func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Fetch retrieves and parses iCalendar events from a URL or file path,
// returning events that overlap with the given window, earliest first.
func Fetch(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]Event, error) {
	r, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	events, err := decode(r, windowStart.Location(), windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening calendar file: %w", err)
	}
	return f, nil
}

func decode(r io.Reader, loc *time.Location, windowStart, windowEnd time.Time) ([]Event, error) {
	dec := ical.NewDecoder(r)
	var events []Event

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(loc)
			if err != nil {
				continue // skip malformed events
			}
			end, err := event.DateTimeEnd(loc)
			if err != nil {
				continue
			}

			if !start.Before(windowEnd) || !end.After(windowStart) {
				continue
			}
			summary, _ := event.Props.Text(ical.PropSummary)
			if strings.TrimSpace(summary) == "" {
				continue
			}
			allDay := false
			if p := event.Props.Get(ical.PropDateTimeStart); p != nil {
				allDay = p.ValueType() == ical.ValueDate
			}
			events = append(events, Event{
				Summary:   strings.TrimSpace(summary),
				StartTime: start,
				EndTime:   end,
				AllDay:    allDay,
			})
		}
	}

	return events, nil
}

// DayPrefill fetches the events of day and formats them as a starting
// description for the log prompt. All-day events are left out.
func DayPrefill(ctx context.Context, source string, day time.Time) (string, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	events, err := Fetch(ctx, source, start, start.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}
	return FormatPrefill(events), nil
}

// FormatPrefill renders timed events as "15:00-16:30 Design review (1.5h)"
// joined with "; " so the model can read durations.
func FormatPrefill(events []Event) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		if e.AllDay {
			continue
		}
		hours := strconv.FormatFloat(e.Duration().Hours(), 'f', -1, 64)
		parts = append(parts, fmt.Sprintf("%s-%s %s (%sh)",
			e.StartTime.Format("15:04"), e.EndTime.Format("15:04"), e.Summary, hours))
	}
	return strings.Join(parts, "; ")
}
