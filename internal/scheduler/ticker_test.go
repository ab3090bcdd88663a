package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/hourly/internal/config"
)

func at(day, hour, minute int) time.Time {
	// October 2026: the 12th is a Monday.
	return time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
}

func TestNextAlignedTick(t *testing.T) {
	tests := []struct {
		now      time.Time
		interval time.Duration
		want     time.Time
	}{
		{at(12, 9, 0), time.Hour, at(12, 10, 0)},
		{at(12, 9, 59), time.Hour, at(12, 10, 0)},
		{at(12, 9, 10), 30 * time.Minute, at(12, 9, 30)},
		{at(12, 9, 45), 30 * time.Minute, at(12, 10, 0)},
		{at(12, 10, 5), 90 * time.Minute, at(12, 10, 30)},
		{at(12, 23, 30), time.Hour, at(13, 0, 0)},
		{at(12, 9, 10), 0, at(12, 10, 0)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextAlignedTick(tt.now, tt.interval), "now=%s interval=%s", tt.now, tt.interval)
	}
}

func TestIsWorkTime(t *testing.T) {
	cfg := config.DefaultConfig()
	s := New(&cfg, nil, nil)

	assert.True(t, s.isWorkTime(at(12, 9, 0)))
	assert.True(t, s.isWorkTime(at(16, 17, 0)))
	assert.False(t, s.isWorkTime(at(12, 8, 59)))
	assert.False(t, s.isWorkTime(at(12, 17, 1)))
	assert.False(t, s.isWorkTime(at(17, 12, 0)), "saturday")
	assert.False(t, s.isWorkTime(at(18, 12, 0)), "sunday")

	cfg.Schedule.WorkDays = []int{7}
	cfg.Schedule.WorkStart = "bogus"
	s = New(&cfg, nil, nil)
	assert.True(t, s.isWorkTime(at(18, 9, 0)))
}

func TestTick(t *testing.T) {
	cfg := config.DefaultConfig()

	var prompted [][2]time.Time
	var notes []string
	s := New(&cfg, func(ctx context.Context, start, end time.Time) error {
		prompted = append(prompted, [2]time.Time{start, end})
		return errors.New("user closed the window")
	}, nil)
	s.notifier = func(title, message string) error {
		notes = append(notes, message)
		return nil
	}

	s.tick(context.Background(), at(12, 11, 0))
	s.tick(context.Background(), at(17, 11, 0))

	require.Len(t, prompted, 1)
	assert.Equal(t, [2]time.Time{at(12, 10, 0), at(12, 11, 0)}, prompted[0])
	assert.Equal(t, []string{"What did you work on since 10:00?"}, notes)
}

func TestTick_NotificationsDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notifications.Enabled = false

	calls := 0
	s := New(&cfg, func(ctx context.Context, start, end time.Time) error { return nil }, nil)
	s.notifier = func(title, message string) error {
		calls++
		return nil
	}

	s.tick(context.Background(), at(13, 10, 0))
	assert.Zero(t, calls)
}
