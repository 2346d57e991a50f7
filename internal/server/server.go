// Package server provides the Flower Resume HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/ai"
	"github.com/jonathan/flower-resume/internal/assets"
	"github.com/jonathan/flower-resume/internal/config"
	"github.com/jonathan/flower-resume/internal/logging"
	"github.com/jonathan/flower-resume/internal/resumes"
	"github.com/jonathan/flower-resume/internal/server/middleware"
	"github.com/jonathan/flower-resume/internal/server/ratelimit"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Users   UserStore
	Resumes *resumes.Service
	AI      *ai.Service
	Assets  *assets.Service
	Limiter *ratelimit.Limiter
	DB      Pinger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	cfg         *config.Config
	logger      *zap.Logger
	db          Pinger
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	resumes     *resumes.Service
	ai          *ai.Service
	assets      *assets.Service
}

// New creates a new server instance
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Users == nil || deps.Resumes == nil {
		return nil, errors.New("server: user store and resume service are required")
	}
	logger := deps.Logger
	logger = logging.OrNop(logger)
	cfg := deps.Config

	s := &Server{
		cfg:         cfg,
		logger:      logger,
		db:          deps.DB,
		rateLimiter: deps.Limiter,
		resumes:     deps.Resumes,
		ai:          deps.AI,
		assets:      deps.Assets,
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.FromConfig(cfg.RateLimit), nil, logger)
	}
	if s.assets == nil {
		s.assets = assets.NewService(nil, 0, logger)
	}

	s.jwtService = NewJWTService(&cfg.JWT)
	userService := NewUserService(deps.Users, &cfg.Password)
	s.authHandler = NewAuthHandler(userService, s.jwtService, logger)

	auth := middleware.AuthMiddleware(s.jwtService, logger)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/templates", s.handleListTemplates)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/me", protected(s.authHandler.Me))
	mux.Handle("PATCH /api/auth/me", protected(s.authHandler.UpdateAccount))
	mux.Handle("DELETE /api/auth/me", protected(s.authHandler.DeleteAccount))
	mux.Handle("PUT /api/auth/password", protected(s.authHandler.UpdatePassword))

	// Default profile
	mux.Handle("GET /api/profile", protected(s.handleGetProfile))
	mux.Handle("PUT /api/profile", protected(s.handleReplaceProfile))
	mux.Handle("POST /api/profile/sync/{id}", protected(s.handleSyncProfile))

	// Resumes
	mux.Handle("GET /api/resumes", protected(s.handleListResumes))
	mux.Handle("POST /api/resumes", protected(s.handleCreateResume))
	mux.Handle("GET /api/resumes/{id}", protected(s.handleGetResume))
	mux.Handle("PATCH /api/resumes/{id}", protected(s.handleUpdateResume))
	mux.Handle("DELETE /api/resumes/{id}", protected(s.handleDeleteResume))
	mux.Handle("POST /api/resumes/{id}/duplicate", protected(s.handleDuplicateResume))
	mux.HandleFunc("GET /api/public/resumes/{id}", s.handleGetPublicResume)

	// AI
	mux.Handle("POST /api/ai/summary", protected(s.handleEnhanceSummary))
	mux.Handle("POST /api/ai/experience", protected(s.handleEnhanceExperience))
	mux.Handle("POST /api/ai/resumes/{id}/experience", protected(s.handleEnhanceAllExperience))
	mux.Handle("POST /api/ai/tailor", protected(s.handleTailor))
	mux.Handle("POST /api/ai/job-description", protected(s.handleFetchJobDescription))

	// Uploads
	mux.Handle("POST /api/uploads/image", protected(s.handleUploadImage))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.rateLimiter.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers for the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool)
	for _, origin := range s.cfg.Server.CORSAllowedOrigins {
		for _, o := range strings.Split(origin, ",") {
			o = strings.TrimSpace(o)
			if o == "*" {
				allowAll = true
			} else if o != "" {
				allowed[o] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(r.Context(), clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("request", fields...)
		} else {
			s.logger.Info("request", fields...)
		}
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.logger, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleError writes err with the status HTTPStatus maps it to.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, s.logger, err)
}

// requireUser returns the authenticated user ID, writing 401 when absent.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathResumeID parses the {id} path value.
func (s *Server) pathResumeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := resumes.ParseResumeID(r.PathValue("id"))
	if err != nil {
		s.handleError(w, r, err)
		return uuid.Nil, false
	}
	return id, true
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Info("rate limit exceeded",
		zap.String("client", clientID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
