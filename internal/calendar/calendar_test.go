package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//hourly//test//EN
BEGIN:VEVENT
UID:1@test
DTSTAMP:20261001T000000Z
DTSTART:20261015T130000Z
DTEND:20261015T143000Z
SUMMARY:Design review
END:VEVENT
BEGIN:VEVENT
UID:2@test
DTSTAMP:20261001T000000Z
DTSTART:20261015T090000Z
DTEND:20261015T091500Z
SUMMARY:Standup
END:VEVENT
BEGIN:VEVENT
UID:3@test
DTSTAMP:20261001T000000Z
DTSTART;VALUE=DATE:20261015
DTEND;VALUE=DATE:20261016
SUMMARY:Company offsite
END:VEVENT
BEGIN:VEVENT
UID:4@test
DTSTAMP:20261001T000000Z
DTSTART:20261016T090000Z
DTEND:20261016T100000Z
SUMMARY:Tomorrow
END:VEVENT
BEGIN:VEVENT
UID:5@test
DTSTAMP:20261001T000000Z
DTSTART:20261015T100000Z
DTEND:20261015T110000Z
SUMMARY:
END:VEVENT
END:VCALENDAR
`

func writeICS(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(testICS, "\n", "\r\n")), 0o644))
	return path
}

var day = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func TestFetch_FiltersAndSorts(t *testing.T) {
	path := writeICS(t)
	start := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	events, err := Fetch(context.Background(), path, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Company offsite", events[0].Summary)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, "Standup", events[1].Summary)
	assert.Equal(t, "Design review", events[2].Summary)
	assert.Equal(t, 90*time.Minute, events[2].Duration())
}

func TestDayPrefill(t *testing.T) {
	got, err := DayPrefill(context.Background(), writeICS(t), day)
	require.NoError(t, err)
	assert.Equal(t, "09:00-09:15 Standup (0.25h); 13:00-14:30 Design review (1.5h)", got)
}

func TestDayPrefill_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(strings.ReplaceAll(testICS, "\n", "\r\n")))
	}))
	defer srv.Close()

	got, err := DayPrefill(context.Background(), srv.URL+"/cal.ics", day)
	require.NoError(t, err)
	assert.Contains(t, got, "Standup")
}

func TestFetch_Errors(t *testing.T) {
	_, err := Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.ics"), day, day)
	assert.ErrorContains(t, err, "opening calendar file")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	_, err = Fetch(context.Background(), srv.URL, day, day)
	assert.ErrorContains(t, err, "status 403")
}

func TestFormatPrefill_Empty(t *testing.T) {
	assert.Empty(t, FormatPrefill(nil))
}
