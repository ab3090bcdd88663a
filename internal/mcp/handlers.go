package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/christopherklint97/hourly/internal/auth"
	"github.com/christopherklint97/hourly/internal/store"
	"github.com/christopherklint97/hourly/internal/timesheet"
)

// Handlers runs tool calls as a single configured user; stdio clients have
// no session to authenticate.
type Handlers struct {
	svc    *timesheet.Service
	source timesheet.Source
	user   *auth.User
	logger *slog.Logger
}

func NewHandlers(svc *timesheet.Service, source timesheet.Source, user *auth.User, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handlers{svc: svc, source: source, user: user, logger: logger}
}

type ProcessTimesheetRequest struct {
	Input     string `json:"input"`
	ProjectID string `json:"project_id,omitempty"`
}

func (h *Handlers) HandleProcessTimesheet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProcessTimesheetRequest](req)
	if err != nil {
		return errorResult(timesheet.NewInvalidBody(err)), nil
	}

	res, err := h.svc.Interpret(ctx, timesheet.Request{Input: input.Input, ProjectID: input.ProjectID}, h.user)
	if err != nil {
		h.logger.Warn("process_timesheet failed", "error", err)
		return errorResult(err), nil
	}
	return successResult(res)
}

func (h *Handlers) HandleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := h.source.ListProjects(ctx)
	if err != nil {
		h.logger.Warn("list_projects failed", "error", err)
		return errorResult(timesheet.NewProjectsUnavailable(err)), nil
	}
	if projects == nil {
		projects = []store.Project{}
	}
	return successResult(map[string]any{"projects": projects})
}

// errorResult reports failures as IsError results so clients show them to
// the model. Causes are logged, never sent.
func errorResult(err error) *mcp.CallToolResult {
	te := timesheet.AsError(err)
	payload := map[string]any{
		"error": map[string]any{
			"kind":    te.Kind,
			"message": te.Message,
			"status":  te.Status,
		},
	}
	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

// decode maps tool arguments onto a typed request.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}
