package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/christopherklint97/hourly/internal/config"
)

// PromptFunc asks the user what they worked on during [start, end).
type PromptFunc func(ctx context.Context, start, end time.Time) error

type Scheduler struct {
	cfg      config.ScheduleConfig
	notify   bool
	prompt   PromptFunc
	logger   *slog.Logger
	notifier func(title, message string) error
}

func New(cfg *config.Config, prompt PromptFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		cfg:      cfg.Schedule,
		notify:   cfg.Notifications.Enabled,
		prompt:   prompt,
		logger:   logger,
		notifier: sendNotification,
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer s.removePID()

	interval := s.interval()

	s.logger.Info("scheduler started",
		"interval", interval, "work_start", s.cfg.WorkStart, "work_end", s.cfg.WorkEnd)

	for {
		nextTick := nextAlignedTick(time.Now(), interval)
		s.logger.Info("next prompt scheduled", "at", nextTick.Format("15:04"))

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-time.After(time.Until(nextTick)):
		}

		s.tick(ctx, nextTick)
	}
}

func (s *Scheduler) interval() time.Duration {
	mins := s.cfg.IntervalMinutes
	if mins <= 0 {
		mins = 60
	}
	return time.Duration(mins) * time.Minute
}

// tick prompts for the interval ending at t when t falls in working hours.
func (s *Scheduler) tick(ctx context.Context, t time.Time) {
	if !s.isWorkTime(t) {
		return
	}

	if s.notify {
		if err := s.notifier("hourly", "What did you work on since "+t.Add(-s.interval()).Format("15:04")+"?"); err != nil {
			s.logger.Warn("sending notification", "error", err)
		}
	}

	if err := s.prompt(ctx, t.Add(-s.interval()), t); err != nil {
		s.logger.Error("prompting for time entry", "error", err)
	}
}

func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	mins := int(interval.Minutes())
	if mins <= 0 {
		mins = 60
	}

	currentMinute := now.Hour()*60 + now.Minute()
	nextMinute := ((currentMinute / mins) + 1) * mins

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.Add(time.Duration(nextMinute) * time.Minute)
}

func (s *Scheduler) isWorkTime(t time.Time) bool {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	if !slices.Contains(s.cfg.WorkDays, weekday) {
		return false
	}

	startH, startM, ok := config.ParseClock(s.cfg.WorkStart)
	if !ok {
		startH, startM = 9, 0
	}
	endH, endM, ok := config.ParseClock(s.cfg.WorkEnd)
	if !ok {
		endH, endM = 17, 0
	}

	nowMins := t.Hour()*60 + t.Minute()
	return nowMins >= startH*60+startM && nowMins <= endH*60+endM
}

func sendNotification(title, message string) error {
	return beeep.Notify(title, message, "")
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hourly.pid"), nil
}

func (s *Scheduler) writePID() error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	path, err := pidPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (s *Scheduler) removePID() {
	if path, err := pidPath(); err == nil {
		os.Remove(path)
	}
}

// ReadPID returns the process id of a running scheduler.
func ReadPID() (int, error) {
	path, err := pidPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running scheduler found")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}

	return pid, nil
}
