package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/hourly/internal/ai"
	"github.com/christopherklint97/hourly/internal/auth"
	"github.com/christopherklint97/hourly/internal/calendar"
	"github.com/christopherklint97/hourly/internal/config"
	"github.com/christopherklint97/hourly/internal/mcp"
	"github.com/christopherklint97/hourly/internal/scheduler"
	"github.com/christopherklint97/hourly/internal/server"
	"github.com/christopherklint97/hourly/internal/store"
	"github.com/christopherklint97/hourly/internal/timesheet"
	"github.com/christopherklint97/hourly/internal/tui"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "hourly",
	Short:         "Natural-language timesheet assistant",
	Long:          "hourly turns plain-English descriptions of your work into timesheet entries, over HTTP, MCP or an interactive terminal.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a time entry interactively",
	RunE:  runLog,
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Prompt for time entries on a schedule during working hours",
	RunE:  runRemind,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running reminder scheduler",
	RunE:  runStop,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve timesheet tools to MCP clients over stdio",
	RunE:  runMCP,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	RunE:  runProjects,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/hourly/config.toml)")
	serveCmd.Flags().Bool("dev", false, "Accept every caller as the dev user when no Supabase URL is set")
	logCmd.Flags().String("project", "", "Preselect a project by id")
	logCmd.Flags().Bool("no-calendar", false, "Do not prefill from the calendar")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// app bundles what every command needs once the config is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *store.DB
	svc    *timesheet.Service
}

func setup(ctx context.Context, withService bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db}
	if withService {
		a.svc, err = newService(ctx, cfg, db, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	a.db.Close()
}

// newService builds the interpretation service. A missing API key is not
// fatal: the service reports it on each call.
func newService(ctx context.Context, cfg *config.Config, db *store.DB, logger *slog.Logger) (*timesheet.Service, error) {
	opts := []timesheet.Option{
		timesheet.WithLogger(logger.With("component", "timesheet")),
		timesheet.WithTimeout(time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second),
		timesheet.WithTemperature(cfg.AI.Temperature),
	}

	provider, err := ai.New(ctx, cfg.AI, logger.With("component", "ai"))
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn("AI provider not configured, interpretation requests will fail", "error", err)
		return timesheet.NewService(nil, db, append(opts, timesheet.WithProviderError(err))...), nil
	case err != nil:
		return nil, fmt.Errorf("creating AI provider: %w", err)
	}
	return timesheet.NewService(provider, db, opts...), nil
}

// localUser is the identity of the terminal and stdio surfaces.
func localUser(cfg *config.Config) *auth.User {
	return &auth.User{ID: auth.DevUserID(cfg.Auth)}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	dev, _ := cmd.Flags().GetBool("dev")

	ctx, cancel := signalContext()
	defer cancel()

	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	if dev {
		a.cfg.Auth.DevMode = true
	}
	authn := auth.FromConfig(a.cfg.Auth, a.logger.With("component", "auth"))
	h := server.NewHandlers(a.svc, a.db, authn, a.logger)
	srv := server.New(a.cfg.Server.Addr, server.NewMux(h, a.cfg.Server.CORSOrigins), a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	}
}

func runLog(cmd *cobra.Command, args []string) error {
	projectID, _ := cmd.Flags().GetString("project")
	noCalendar, _ := cmd.Flags().GetBool("no-calendar")

	ctx := context.Background()
	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	prefill := ""
	if !noCalendar {
		prefill = calendarPrefill(ctx, a.cfg, a.logger, time.Now())
	}
	return a.runTUI(ctx, projectID, prefill)
}

func calendarPrefill(ctx context.Context, cfg *config.Config, logger *slog.Logger, day time.Time) string {
	if !cfg.Calendar.Enabled || cfg.Calendar.Source == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	prefill, err := calendar.DayPrefill(ctx, cfg.Calendar.Source, day)
	if err != nil {
		logger.Warn("reading calendar", "error", err)
		return ""
	}
	return prefill
}

func (a *app) runTUI(ctx context.Context, projectID, prefill string) error {
	projects, err := a.db.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("fetching projects: %w", err)
	}

	m := tui.NewApp(a.svc, a.db, tui.Options{
		User:      localUser(a.cfg),
		Projects:  projects,
		ProjectID: projectID,
		Prefill:   prefill,
		Timeout:   time.Duration(a.cfg.Server.RequestTimeoutSeconds) * time.Second,
	})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	result := m.GetResult()
	switch {
	case result == nil:
	case result.Skipped:
		fmt.Println("Entry skipped.")
	case result.Entry != nil:
		fmt.Printf("Logged %.2fh on %s: %s\n", result.Entry.Hours, result.Entry.Date, result.Entry.Description)
	}
	return nil
}

func runRemind(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	sched := scheduler.New(a.cfg, func(ctx context.Context, start, end time.Time) error {
		return a.runTUI(ctx, "", calendarWindowPrefill(ctx, a, start, end))
	}, a.logger.With("component", "scheduler"))
	return sched.Run(ctx)
}

func calendarWindowPrefill(ctx context.Context, a *app, start, end time.Time) string {
	if !a.cfg.Calendar.Enabled || a.cfg.Calendar.Source == "" {
		return ""
	}
	events, err := calendar.Fetch(ctx, a.cfg.Calendar.Source, start, end)
	if err != nil {
		a.logger.Warn("reading calendar", "error", err)
		return ""
	}
	return calendar.FormatPrefill(events)
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := scheduler.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to hourly (PID %d)\n", pid)
	return nil
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	h := mcp.NewHandlers(a.svc, a.db, localUser(a.cfg), a.logger.With("component", "mcp"))
	return mcp.Run(h, version)
}

func runProjects(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	projects, err := a.db.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("fetching projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	fmt.Printf("Found %d projects:\n\n", len(projects))
	for _, p := range projects {
		line := fmt.Sprintf("  %s  %s", p.ID, p.Name)
		if p.JobNumber != "" {
			line += "  [" + p.JobNumber + "]"
		}
		if p.ClientName != "" {
			line += "  (" + p.ClientName + ")"
		}
		fmt.Println(line)
	}

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.db.Migrate(ctx); err != nil {
		return err
	}
	fmt.Printf("Schema up to date (%s).\n", a.db.Driver())
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := config.DefaultFile()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", path, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, path}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", path)
		return nil
	}
	_, err = process.Wait()
	return err
}
