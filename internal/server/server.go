// Package server exposes the report engine as a JSON HTTP API. The UI does
// no computation of its own: every endpoint returns a fully assembled
// report for the requested window and filters.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sadopc/teamtrack/internal/analytics"
)

const (
	readTimeout    = 30 * time.Second
	writeTimeout   = 30 * time.Second
	requestTimeout = 15 * time.Second
)

type Server struct {
	engine *analytics.Engine
	logger *slog.Logger
	loc    *time.Location

	// Per-IP rate limiting.
	rateLimit  int
	rateBurst  int
	ipLimiters map[string]*rate.Limiter
	limitersMu sync.Mutex
}

func New(engine *analytics.Engine, logger *slog.Logger, loc *time.Location, rateLimit, rateBurst int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Server{
		engine:     engine,
		logger:     logger,
		loc:        loc,
		rateLimit:  rateLimit,
		rateBurst:  rateBurst,
		ipLimiters: make(map[string]*rate.Limiter),
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/reports/summary", s.getSummary)
	mux.HandleFunc("GET /api/v1/reports/projects", s.getProjects)
	mux.HandleFunc("GET /api/v1/reports/projects/{id}", s.getProjectDetail)
	mux.HandleFunc("GET /api/v1/reports/users", s.getUsers)
	mux.HandleFunc("GET /api/v1/reports/users/{id}", s.getUserDetail)
	mux.HandleFunc("GET /api/v1/reports/patterns", s.getPatterns)
	mux.HandleFunc("GET /health", s.healthCheck)
}

// Handler wraps the routed mux with logging, CORS and rate limiting.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logMiddleware(s.rateLimitMiddleware(corsMiddleware(mux)))
}

// ListenAndServe runs the API until ctx is cancelled, then drains with a
// graceful shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("server started", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// --- Handlers ---

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	window, filters, _, err := parseQuery(r, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rep, err := s.engine.Summary(ctx, window, filters)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Data: rep})
}

func (s *Server) getProjects(w http.ResponseWriter, r *http.Request) {
	window, filters, sortKey, err := parseQuery(r, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rep, err := s.engine.Projects(ctx, window, filters, sortKey)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Data: rep})
}

func (s *Server) getProjectDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}
	window, _, _, err := parseQuery(r, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rep, err := s.engine.ProjectDetail(ctx, window, id)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Data: rep})
}

func (s *Server) getUsers(w http.ResponseWriter, r *http.Request) {
	window, filters, sortKey, err := parseQuery(r, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rep, err := s.engine.Users(ctx, window, filters, sortKey)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Data: rep})
}

func (s *Server) getUserDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid user id"))
		return
	}
	window, _, _, err := parseQuery(r, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rep, err := s.engine.UserDetail(ctx, window, id)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Data: rep})
}

func (s *Server) getPatterns(w http.ResponseWriter, r *http.Request) {
	window, filters, _, err := parseQuery(r, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rep, err := s.engine.Patterns(ctx, window, filters)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Data: rep})
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var fetchErr *analytics.DataFetchError
	switch {
	case errors.Is(err, analytics.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, analytics.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &fetchErr):
		s.logger.Error("report build failed", "path", r.URL.Path, "source", fetchErr.Source, "error", err)
		writeError(w, http.StatusBadGateway, errors.New("data fetch failed"))
	default:
		s.logger.Error("report build failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

// --- Query parsing ---

// parseQuery resolves the report window, filters and sort key from the
// request. Either range=day|week|month|quarter|year or explicit RFC3339
// from/to select the window; range wins when both are present.
func parseQuery(r *http.Request, loc *time.Location) (analytics.Window, analytics.Filters, analytics.SortKey, error) {
	q := r.URL.Query()

	var window analytics.Window
	if rng := q.Get("range"); rng != "" {
		window = analytics.WindowForRange(analytics.Range(rng), time.Now(), loc)
	} else {
		from, err := time.Parse(time.RFC3339, q.Get("from"))
		if err != nil {
			return window, analytics.Filters{}, "", errors.New("missing or invalid from")
		}
		to := time.Now()
		if v := q.Get("to"); v != "" {
			to, err = time.Parse(time.RFC3339, v)
			if err != nil {
				return window, analytics.Filters{}, "", errors.New("invalid to")
			}
		}
		window = analytics.Window{Start: from, End: to}
	}
	if err := window.Validate(); err != nil {
		return window, analytics.Filters{}, "", err
	}

	var filters analytics.Filters
	if v := q.Get("project"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return window, filters, "", errors.New("invalid project filter")
		}
		filters.ProjectID = &id
	}
	if v := q.Get("user"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return window, filters, "", errors.New("invalid user filter")
		}
		filters.UserID = &id
	}

	sortKey := analytics.SortKey(q.Get("sort"))
	if sortKey == "" {
		sortKey = analytics.SortHours
	}
	return window, filters, sortKey, nil
}

// --- Response helpers ---

type APIResponse struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, APIResponse{Error: err.Error()})
}

// --- Middleware ---

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiterFor(clientIP(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiterFor(ip string) *rate.Limiter {
	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()
	l, ok := s.ipLimiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.rateLimit), s.rateBurst)
		s.ipLimiters[ip] = l
	}
	return l
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
