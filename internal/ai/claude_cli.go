package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/christopherklint97/hourly/internal/textutil"
)

// cleanEnv returns os.Environ() with Claude Code session vars removed
// so the subprocess doesn't get blocked by the nested-session check.
func cleanEnv() []string {
	blocked := map[string]bool{
		"CLAUDECODE":                           true,
		"CLAUDE_CODE_ENTRYPOINT":               true,
		"CLAUDE_CODE_EXPERIMENTAL_AGENT_TEAMS": true,
	}

	var env []string
	for _, e := range os.Environ() {
		key, _, _ := strings.Cut(e, "=")
		if !blocked[key] {
			env = append(env, e)
		}
	}
	return env
}

// ClaudeCLI shells out to a locally authenticated `claude` binary. Useful
// for the terminal surfaces when no API key is at hand.
type ClaudeCLI struct {
	Model  string
	Binary string
	logger *slog.Logger
}

func NewClaudeCLI(model string, logger *slog.Logger) *ClaudeCLI {
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = "sonnet"
	}
	return &ClaudeCLI{Model: model, Binary: "claude", logger: logger}
}

func (c *ClaudeCLI) Name() string { return "claude-cli:" + c.Model }

// Complete ignores Temperature and Safety; the CLI exposes neither.
func (c *ClaudeCLI) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	args := []string{
		"-p", prompt,
		"--output-format", "json",
		"--model", c.Model,
		"--no-session-persistence",
	}
	if opts.Schema != nil {
		schema, err := schemaJSON(opts.Schema)
		if err != nil {
			return "", err
		}
		args = append(args, "--json-schema", schema)
	}

	c.logger.Debug("invoking claude CLI",
		"model", c.Model,
		"prompt_len", len(prompt),
		"schema", opts.Schema != nil,
	)

	return c.run(ctx, args)
}

func schemaJSON(v any) (string, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	data, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return "", fmt.Errorf("marshaling response schema: %w", err)
	}
	return string(data), nil
}

func (c *ClaudeCLI) run(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Env = cleanEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()
	err := cmd.Run()
	elapsed := time.Since(startTime)

	c.logger.Debug("claude CLI finished",
		"elapsed", elapsed,
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len(),
		"error", err,
	)

	if err != nil {
		c.logger.Error("claude CLI failed",
			"error", err,
			"elapsed", elapsed,
			"stderr", stderr.String(),
		)
		if ctx.Err() != nil {
			return "", fmt.Errorf("claude CLI: %w", ctx.Err())
		}
		return "", fmt.Errorf("running claude CLI: %w (stderr: %s)", err, textutil.Truncate(stderr.String(), 500))
	}

	return unwrapEnvelope(stdout.Bytes(), c.logger), nil
}

// unwrapEnvelope extracts the model text from claude's --output-format json
// envelope, preferring structured_output (typed JSON from --json-schema)
// over result. Anything that is not an envelope is returned as-is.
func unwrapEnvelope(out []byte, logger *slog.Logger) string {
	var wrapper struct {
		Type             string          `json:"type"`
		Result           json.RawMessage `json:"result"`
		StructuredOutput json.RawMessage `json:"structured_output"`
	}
	if err := json.Unmarshal(out, &wrapper); err != nil || wrapper.Type == "" {
		logger.Debug("no claude envelope, using raw output")
		return string(out)
	}

	if len(wrapper.StructuredOutput) > 0 && wrapper.StructuredOutput[0] == '{' {
		return string(wrapper.StructuredOutput)
	}

	if len(wrapper.Result) > 0 {
		// result is usually a JSON string holding the model text
		var s string
		if err := json.Unmarshal(wrapper.Result, &s); err == nil {
			return s
		}
		if wrapper.Result[0] == '{' || wrapper.Result[0] == '[' {
			return string(wrapper.Result)
		}
	}
	return ""
}
