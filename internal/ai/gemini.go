package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/christopherklint97/hourly/internal/textutil"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini wraps the official genai client. The client is safe for
// concurrent use, so one instance serves the whole process.
type Gemini struct {
	cli    *genai.Client
	model  string
	logger *slog.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: model, logger: logger}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SafetySettings: geminiSafety(opts.Safety),
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	temp := opts.Temperature
	cfg.Temperature = &temp

	g.logger.Debug("invoking gemini",
		"model", g.model,
		"prompt_len", len(prompt),
		"temperature", temp,
		"json", opts.JSON,
	)

	start := time.Now()
	resp, err := g.cli.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	elapsed := time.Since(start)
	if err != nil {
		g.logger.Error("gemini request failed", "error", err, "elapsed", elapsed)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}
	text := sb.String()

	g.logger.Debug("gemini response",
		"elapsed", elapsed,
		"candidates", len(resp.Candidates),
		"text", textutil.Truncate(text, 2000),
	)
	return text, nil
}

var geminiHarmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

func geminiSafety(level Safety) []*genai.SafetySetting {
	var threshold genai.HarmBlockThreshold
	switch level {
	case SafetyLow:
		threshold = genai.HarmBlockThresholdBlockOnlyHigh
	case SafetyModerate:
		threshold = genai.HarmBlockThresholdBlockMediumAndAbove
	case SafetyStrict:
		threshold = genai.HarmBlockThresholdBlockLowAndAbove
	default:
		return nil
	}

	settings := make([]*genai.SafetySetting, 0, len(geminiHarmCategories))
	for _, c := range geminiHarmCategories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: threshold})
	}
	return settings
}
