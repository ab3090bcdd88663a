package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/christopherklint97/hourly/internal/config"
)

// ErrNotConfigured is returned by New when the selected provider lacks
// credentials. Callers keep serving and report it per request.
var ErrNotConfigured = errors.New("ai provider not configured")

// Safety is the content filtering threshold requested from the provider.
type Safety int

const (
	SafetyDefault  Safety = iota
	SafetyLow             // block only high-probability harm
	SafetyModerate        // block medium and above
	SafetyStrict          // block low and above
)

type Options struct {
	// JSON asks for a bare JSON object response.
	JSON        bool
	Temperature float32
	Safety      Safety
	// Schema is a Go value whose reflected JSON schema describes the
	// expected response, for providers that accept one.
	Schema any
}

// Provider sends one prompt and returns the model's text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// New builds the provider selected in cfg.
func New(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch cfg.Provider {
	case "", "gemini":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", ErrNotConfigured)
		}
		return NewGemini(ctx, cfg.APIKey, cfg.Model, logger)
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", ErrNotConfigured)
		}
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, logger), nil
	case "claude-cli":
		return NewClaudeCLI(cfg.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
