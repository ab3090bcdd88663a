package server

import (
	"log/slog"
	"net/http"
)

func NewMux(h *Handlers, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /process-timesheet", h.HandleProcessTimesheet)
	mux.HandleFunc("GET /projects", h.HandleListProjects)
	mux.HandleFunc("GET /timesheet-entries", h.HandleListEntries)
	mux.HandleFunc("POST /timesheet-entries", h.HandleCreateEntry)
	mux.HandleFunc("GET /healthz", h.HandleHealth)

	var handler http.Handler = mux
	handler = cors(corsOrigins, handler)
	handler = accessLog(h.logger.With(slog.String("component", "http")), handler)
	return withRequestID(handler)
}
