package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/christopherklint97/hourly/internal/auth"
	"github.com/christopherklint97/hourly/internal/store"
	"github.com/christopherklint97/hourly/internal/timesheet"
)

const (
	maxBodyBytes       = 64 << 10
	defaultEntryLimit  = 5
	maxEntryLimit      = 50
	msgInvalidEntry    = "Invalid timesheet entry"
	msgUnknownProject  = "Unknown project"
	msgEntriesFailed   = "Failed to fetch timesheet entries"
	msgSaveEntryFailed = "Failed to save timesheet entry"
)

// Store is the persistence the HTTP surface needs beyond interpretation.
type Store interface {
	timesheet.Source
	GetProject(ctx context.Context, id string) (*store.Project, error)
	InsertEntry(ctx context.Context, e *store.Entry) error
}

type Handlers struct {
	svc      *timesheet.Service
	store    Store
	auth     auth.Authenticator
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandlers(svc *timesheet.Service, st Store, authn auth.Authenticator, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handlers{
		svc:      svc,
		store:    st,
		auth:     authn,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HandleProcessTimesheet interprets one utterance. Configuration is checked
// before the body is read so a misconfigured deployment fails uniformly.
func (h *Handlers) HandleProcessTimesheet(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Configured(); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req timesheet.Request
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, timesheet.NewInvalidBody(err))
		return
	}

	res, err := h.svc.Interpret(r.Context(), req, h.currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": res})
}

func (h *Handlers) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	if h.requireUser(w, r) == nil {
		return
	}
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		h.writeError(w, r, timesheet.NewProjectsUnavailable(err))
		return
	}
	if projects == nil {
		projects = []store.Project{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handlers) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	limit := defaultEntryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a positive integer"))
			return
		}
		limit = min(n, maxEntryLimit)
	}

	entries, err := h.store.ListRecentEntries(r.Context(), user.ID, limit)
	if err != nil {
		h.logger.Error("listing entries", "user", user.ID, "error", err, "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgEntriesFailed))
		return
	}
	if entries == nil {
		entries = []store.RecentEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// createEntryRequest is a reviewed draft submitted for saving.
type createEntryRequest struct {
	ProjectID   string  `json:"project_id" validate:"max=128"`
	Hours       float64 `json:"hours" validate:"gt=0,lte=24"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Billable    *bool   `json:"billable"`
	Description string  `json:"description" validate:"required,max=2000"`
	TaskType    string  `json:"task_type" validate:"max=64"`
}

func (h *Handlers) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	var req createEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(timesheet.MsgInvalidBody))
		return
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	req.Description = strings.TrimSpace(req.Description)
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(validationMessage(err)))
		return
	}

	if req.ProjectID != "" {
		if _, err := h.store.GetProject(r.Context(), req.ProjectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusBadRequest, errorBody(msgUnknownProject))
				return
			}
			h.writeError(w, r, timesheet.NewProjectsUnavailable(err))
			return
		}
	}

	entry := &store.Entry{
		UserID:      user.ID,
		ProjectID:   req.ProjectID,
		Hours:       req.Hours,
		Date:        req.Date,
		Billable:    req.Billable == nil || *req.Billable,
		Description: req.Description,
		TaskType:    strings.TrimSpace(req.TaskType),
	}
	if err := h.store.InsertEntry(r.Context(), entry); err != nil {
		h.logger.Error("saving entry", "user", user.ID, "error", err, "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgSaveEntryFailed))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// currentUser resolves the bearer token, returning nil when the caller
// cannot be identified.
func (h *Handlers) currentUser(r *http.Request) *auth.User {
	user, err := h.auth.Authenticate(r.Context(), auth.BearerToken(r))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			h.logger.Warn("resolving user", "error", err, "request_id", RequestID(r.Context()))
		}
		return nil
	}
	return user
}

func (h *Handlers) requireUser(w http.ResponseWriter, r *http.Request) *auth.User {
	user := h.currentUser(r)
	if user == nil {
		h.writeError(w, r, timesheet.NewAuthRequired(nil))
	}
	return user
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	te := timesheet.AsError(err)
	attrs := []any{"kind", te.Kind, "status", te.Status, "error", err, "request_id", RequestID(r.Context())}
	if te.Status >= 500 {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Info("request rejected", attrs...)
	}
	writeJSON(w, te.Status, errorBody(te.Message))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidEntry
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return msgInvalidEntry + ": " + strings.Join(parts, ", ")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
