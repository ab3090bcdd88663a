package timesheet

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/christopherklint97/hourly/internal/ai"
	"github.com/christopherklint97/hourly/internal/auth"
	"github.com/christopherklint97/hourly/internal/store"
	"github.com/christopherklint97/hourly/internal/textutil"
)

const (
	recentEntryLimit   = 5
	defaultTimeout     = 15 * time.Second
	defaultTemperature = 0.2
)

// Source supplies the reference data the model is grounded on.
type Source interface {
	ListProjects(ctx context.Context) ([]store.Project, error)
	ListRecentEntries(ctx context.Context, userID string, limit int) ([]store.RecentEntry, error)
}

// Request is one interpretation call.
type Request struct {
	Input     string `json:"input"`
	ProjectID string `json:"projectId,omitempty"`
}

// Service turns free-text work descriptions into timesheet drafts. It holds
// no per-request state and is safe for concurrent use.
type Service struct {
	provider    ai.Provider
	providerErr error
	source      Source
	logger      *slog.Logger
	now         func() time.Time
	timeout     time.Duration
	temperature float32
}

type Option func(*Service)

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithTemperature(t float32) Option {
	return func(s *Service) { s.temperature = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProviderError records why no provider is available; it is reported
// as the cause of every configuration error.
func WithProviderError(err error) Option {
	return func(s *Service) { s.providerErr = err }
}

// NewService builds a Service. provider may be nil, in which case every
// call fails with a configuration error.
func NewService(provider ai.Provider, source Source, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		source:      source,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		timeout:     defaultTimeout,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Configured reports a configuration error when no provider is available.
func (s *Service) Configured() error {
	if s.provider == nil {
		return NewNotConfigured(s.providerErr)
	}
	return nil
}

// Interpret runs the pipeline for one utterance. Errors are always *Error.
func (s *Service) Interpret(ctx context.Context, req Request, user *auth.User) (*Result, error) {
	if err := s.Configured(); err != nil {
		return nil, err
	}

	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, NewInputRequired()
	}
	if user == nil || user.ID == "" {
		return nil, NewAuthRequired(nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	projects, err := s.source.ListProjects(ctx)
	if err != nil {
		s.logger.Error("listing projects", "error", err)
		return nil, NewProjectsUnavailable(err)
	}

	recent, err := s.source.ListRecentEntries(ctx, user.ID, recentEntryLimit)
	if err != nil {
		s.logger.Warn("listing recent entries, continuing without them", "user", user.ID, "error", err)
		recent = nil
	}

	now := s.now()
	prompt := BuildPrompt(PromptContext{
		Today:                now,
		Input:                input,
		PreselectedProjectID: strings.TrimSpace(req.ProjectID),
		Projects:             projects,
		RecentEntries:        recent,
	})

	s.logger.Debug("calling model", "provider", s.provider.Name(), "prompt_len", len(prompt))
	start := time.Now()
	raw, err := s.provider.Complete(ctx, prompt, ai.Options{
		JSON:        true,
		Temperature: s.temperature,
		Safety:      ai.SafetyModerate,
		Schema:      suggestion{},
	})
	if err != nil {
		s.logger.Error("model call failed", "provider", s.provider.Name(), "elapsed", time.Since(start), "error", err)
		return nil, NewInternal(err)
	}
	s.logger.Debug("model response", "elapsed", time.Since(start), "text", textutil.Truncate(raw, 500))

	if strings.TrimSpace(raw) == "" {
		return nil, NewEmptyResponse()
	}

	sug, err := parseSuggestion(raw)
	if err != nil {
		s.logger.Warn("unparseable model response", "error", err, "text", textutil.Truncate(raw, 200))
		return nil, err
	}

	ix := newProjectIndex(projects)

	if sug.ClarificationNeeded {
		return &Result{Clarification: clarify(sug, ix)}, nil
	}

	ref, err := resolveProject(sug, ix, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return &Result{Draft: finalize(sug, ref, input, now)}, nil
}
