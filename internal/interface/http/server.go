// Package http exposes the classroom over a JSON API for the presentation
// layer: read endpoints render selectors over the latest state, write
// endpoints invoke actions.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/classroom-hub/internal/application/command"
	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	redisstore "github.com/alem-hub/classroom-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/classroom-hub/internal/interface/http/handlers"
	"github.com/alem-hub/classroom-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// MaxBodyBytes - maximum size of request bodies.
	MaxBodyBytes int64

	// AllowedOrigins - allowed origins for CORS.
	AllowedOrigins []string

	// EnablePurchases - register the rewards store purchase endpoint.
	EnablePurchases bool

	// Version - reported by the status endpoints.
	Version string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxBodyBytes:    1 << 20, // 1 MB
		AllowedOrigins:  []string{"*"},
		EnablePurchases: true,
		Version:         "v1",
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// StateReader returns the latest classroom state.
type StateReader interface {
	State() classroom.State
}

// LeaderboardReader serves the ranking from a projection.
type LeaderboardReader interface {
	Top(limit int) []classroom.LeaderboardEntry
}

// OperationDispatcher applies named operations straight to the state tree.
type OperationDispatcher interface {
	Dispatch(ops ...classroom.Operation) classroom.State
	Version() uint64
}

// MirrorReader reads back the leaderboard mirrored to Redis.
type MirrorReader interface {
	Top(ctx context.Context, n int) ([]classroom.LeaderboardEntry, error)
	Meta(ctx context.Context) (*redisstore.LeaderboardMeta, error)
}

// JobRunner lists and triggers background jobs.
type JobRunner interface {
	ListJobs() []scheduler.JobInfo
	RunNow(ctx context.Context, name string) (scheduler.JobResult, error)
}

// Dependencies contains all dependencies required by HTTP handlers.
type Dependencies struct {
	// Actions (write side)
	Commands *command.Handler

	// Latest state (read side)
	State StateReader

	// Leaderboard projection; selectors are used when nil
	Leaderboard LeaderboardReader

	// Raw operation replay; the endpoint answers 503 when nil
	Operations OperationDispatcher

	// Redis mirror; the mirror endpoint answers 503 when nil
	Mirror MirrorReader

	// Background jobs; the job endpoints answer 503 when nil
	Jobs JobRunner

	// Health checks
	HealthChecker handlers.HealthChecker

	// Logger
	Logger *slog.Logger

	// Clock for the "today" view (defaults to time.Now)
	Clock func() time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	logger     *slog.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.deps.Clock == nil {
		s.deps.Clock = time.Now
	}
	if s.deps.HealthChecker == nil {
		s.deps.HealthChecker = handlers.NewCompositeHealthChecker(config.Version)
	}

	s.setupRoutes()
	s.handler = s.buildMiddlewareChain(s.router)

	s.httpServer = &http.Server{
		Addr:         config.Address(),
		Handler:      s.handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)
	s.router.HandleFunc("GET /{$}", s.handleRoot)

	// ─────────────────────────────────────────────────────────────────────────
	// Read Side
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/state", s.handleGetState)
	s.router.HandleFunc("GET /api/v1/students", s.handleListStudents)
	s.router.HandleFunc("GET /api/v1/students/current", s.handleGetCurrentStudent)
	s.router.HandleFunc("GET /api/v1/students/{id}", s.handleGetStudent)
	s.router.HandleFunc("GET /api/v1/leaderboard", s.handleGetLeaderboard)
	s.router.HandleFunc("GET /api/v1/leaderboard/mirror", s.handleGetLeaderboardMirror)
	s.router.HandleFunc("GET /api/v1/store", s.handleGetStore)
	s.router.HandleFunc("GET /api/v1/seating", s.handleGetSeating)
	s.router.HandleFunc("GET /api/v1/syllabus", s.handleGetSyllabus)
	s.router.HandleFunc("GET /api/v1/schedule", s.handleGetSchedule)
	s.router.HandleFunc("GET /api/v1/schedule/today", s.handleGetScheduleToday)
	s.router.HandleFunc("GET /api/v1/schedule/cells/{day}/{slot}", s.handleGetScheduleCell)
	s.router.HandleFunc("GET /api/v1/logbook/{week}/{day}/{slot}", s.handleGetLogbookEntry)
	s.router.HandleFunc("GET /api/v1/announcements", s.handleListAnnouncements)
	s.router.HandleFunc("GET /api/v1/toasts", s.handleListToasts)

	// ─────────────────────────────────────────────────────────────────────────
	// Actions
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("PUT /api/v1/session/role", s.handleSwitchRole)
	s.router.HandleFunc("PUT /api/v1/session/student", s.handleSelectStudent)

	s.router.HandleFunc("POST /api/v1/students/{id}/points", s.handleAwardPoints)
	s.router.HandleFunc("POST /api/v1/students/{id}/attendance", s.handleRecordAttendance)
	s.router.HandleFunc("PUT /api/v1/students/{id}/seat", s.handleMoveSeat)
	s.router.HandleFunc("POST /api/v1/students/{id}/messages", s.handleSendMessage)
	if s.config.EnablePurchases {
		s.router.HandleFunc("POST /api/v1/students/{id}/purchases", s.handlePurchaseItem)
	}

	s.router.HandleFunc("POST /api/v1/syllabus/weeks/{week}/subjects/{subject}/lessons", s.handleUpsertLesson)
	s.router.HandleFunc("PATCH /api/v1/syllabus/weeks/{week}/subjects/{subject}/lessons/{lesson}", s.handleUpsertLesson)
	s.router.HandleFunc("DELETE /api/v1/syllabus/weeks/{week}/subjects/{subject}/lessons/{lesson}", s.handleDeleteLesson)

	s.router.HandleFunc("PUT /api/v1/schedule/week", s.handleSetScheduleWeek)
	s.router.HandleFunc("PUT /api/v1/schedule/cells/{day}/{slot}", s.handleSetScheduleCell)
	s.router.HandleFunc("DELETE /api/v1/schedule/cells/{day}/{slot}", s.handleClearScheduleCell)

	s.router.HandleFunc("PUT /api/v1/logbook/{week}/{day}/{slot}", s.handleSaveLogbookEntry)
	s.router.HandleFunc("POST /api/v1/logbook/{week}/{day}/{slot}/sign", s.handleSignLogbookEntry)

	s.router.HandleFunc("POST /api/v1/announcements", s.handlePostAnnouncement)
	s.router.HandleFunc("POST /api/v1/slides", s.handleGenerateSlides)
	s.router.HandleFunc("DELETE /api/v1/toasts/{id}", s.handleDismissToast)

	// ─────────────────────────────────────────────────────────────────────────
	// Operations
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/v1/operations/{name}", s.handleApplyOperation)
	s.router.HandleFunc("GET /api/v1/jobs", s.handleListJobs)
	s.router.HandleFunc("POST /api/v1/jobs/{name}/run", s.handleRunJob)
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE CHAIN
// ══════════════════════════════════════════════════════════════════════════════

// buildMiddlewareChain wraps the router with all middleware.
func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	return handlers.Chain(
		s.corsMiddleware,
		s.recoveryMiddleware,
		s.loggingMiddleware,
		s.requestIDMiddleware,
		handlers.SecurityHeadersMiddleware,
		handlers.NoCacheMiddleware,
		handlers.StateVersionMiddleware(s.versioner()),
		handlers.RequireJSONMiddleware,
		handlers.RequestSizeLimitMiddleware(s.config.MaxBodyBytes),
	)(handler)
}

// versioner returns the state reader as a Versioner when it tracks versions.
func (s *Server) versioner() handlers.Versioner {
	if v, ok := s.deps.State.(handlers.Versioner); ok {
		return v
	}
	return nil
}

// requestIDMiddleware adds a unique request ID to each request.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		ctx = logger.WithContext(ctx, s.logger.With(logger.RequestID(requestID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs all HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", rw.Header().Get("X-Request-ID"),
		)
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, o := range s.config.AllowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", "address", s.config.Address())

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      any           `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
	TotalCount int       `json:"total_count,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	writeJSONWithMeta(w, status, data, nil)
}

// writeJSONWithMeta writes a JSON response with custom metadata.
func writeJSONWithMeta(w http.ResponseWriter, status int, data any, meta *ResponseMeta) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if meta == nil {
		meta = &ResponseMeta{}
	}
	meta.Timestamp = time.Now().UTC()
	meta.Version = "v1"

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Meta:      meta,
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

// writeJSONError writes an error JSON response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSONErrorWithDetails(w, status, code, message, "")
}

// writeJSONErrorWithDetails writes an error JSON response with details.
func writeJSONErrorWithDetails(w http.ResponseWriter, status int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta:      &ResponseMeta{Timestamp: time.Now().UTC()},
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER TYPES AND FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getQueryParamInt extracts an integer query parameter with a default value.
func getQueryParamInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

// pathInts parses integer path values in order.
func pathInts(r *http.Request, names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		v, err := strconv.Atoi(strings.TrimSpace(r.PathValue(name)))
		if err != nil {
			return nil, fmt.Errorf("path parameter %q must be an integer", name)
		}
		out[i] = v
	}
	return out, nil
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
