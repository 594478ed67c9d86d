// Package httpapi exposes the collections and the credit pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/caspermolin/website-sub000/internal/application/handlers"
	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/domain/services"
	"github.com/caspermolin/website-sub000/internal/logging"
)

const maxBodyBytes = 10 << 20

// Handlers groups the application handlers served by the API. History may
// be nil.
type Handlers struct {
	Collections *handlers.CollectionHandler
	Sync        *handlers.SyncHandler
	Normalize   *handlers.NormalizeHandler
	Backups     *handlers.BackupHandler
	History     *handlers.HistoryHandler
}

// Server is the HTTP API server.
type Server struct {
	bind     string
	logger   *slog.Logger
	handlers Handlers
	mux      *http.ServeMux
	server   *http.Server
}

// New creates a server listening on bind once Run is called.
func New(bind string, h Handlers, logger *slog.Logger) *Server {
	s := &Server{
		bind:     strings.TrimSpace(bind),
		logger:   logging.NewComponentLogger(logger, "api"),
		handlers: h,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/collections/{name}", s.handleListCollection)
	s.mux.HandleFunc("GET /api/collections/{name}/{id}", s.handleGetRecord)
	s.mux.HandleFunc("POST /api/collections/{name}", s.handleCollectionAction)
	s.mux.HandleFunc("GET /api/names", s.handleNames)
	s.mux.HandleFunc("POST /api/sync/{mode}", s.handleSync)
	s.mux.HandleFunc("POST /api/normalize", s.handleNormalize)
	s.mux.HandleFunc("GET /api/backups", s.handleListBackups)
	s.mux.HandleFunc("POST /api/backups", s.handleCreateBackup)
	s.mux.HandleFunc("POST /api/backups/{backup}/restore", s.handleRestoreBackup)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)

	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is required")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		s.logger.Info("api server stopped")
		return nil
	}
}

func (s *Server) handleListCollection(w http.ResponseWriter, r *http.Request) {
	recs, err := s.handlers.Collections.HandleList(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if recs == nil {
		recs = []entities.Record{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.handlers.Collections.HandleGet(r.Context(), r.PathValue("name"), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCollectionAction(w http.ResponseWriter, r *http.Request) {
	var req handlers.ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	result, err := s.handlers.Collections.HandleAction(r.Context(), r.PathValue("name"), req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	names := s.handlers.Sync.HandleNames(r.Context())
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.handlers.Sync.Handle(r.Context(), r.PathValue("mode"), dryRun(r))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	report, err := s.handlers.Normalize.Handle(r.Context(), dryRun(r))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	infos, err := s.handlers.Backups.HandleList(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if infos == nil {
		infos = []entities.BackupInfo{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	info, err := s.handlers.Backups.HandleCreate(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, handlers.ActionResult{Success: true, Data: info})
}

func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	restored, err := s.handlers.Backups.HandleRestore(r.Context(), r.PathValue("backup"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, handlers.ActionResult{Success: true, Data: restored})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.handlers.History == nil {
		s.writeFailure(w, handlers.ErrNoAuditLog)
		return
	}
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.handlers.History.Handle(r.Context(), strings.TrimSpace(query.Get("action")), limit)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if entries == nil {
		entries = []entities.AuditEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func dryRun(r *http.Request) bool {
	value := r.URL.Query().Get("dryRun")
	return value == "1" || strings.EqualFold(value, "true")
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrUnknownCollection), errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidRecord),
		errors.Is(err, ports.ErrInvalidInput),
		errors.Is(err, handlers.ErrUnknownAction),
		errors.Is(err, services.ErrUnknownSyncMode):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrDuplicateID), errors.Is(err, services.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, handlers.ErrNoAuditLog):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
