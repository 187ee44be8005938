// Package web provides the HTTP JSON API consumed by the review
// front-end. Routing, sessions, and rate limiting live here; all
// workflow semantics stay in internal/core.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/imm-a8ub/backoffice/internal/config"
	"github.com/imm-a8ub/backoffice/internal/core"
	webmw "github.com/imm-a8ub/backoffice/internal/web/middleware"
)

// Server is the HTTP server for the back-office API.
type Server struct {
	service  *core.Service
	users    *userStore
	sessions *sessionManager
	router   *chi.Mux
	server   *http.Server
	cfg      *config.Config
}

// NewServer creates a Server wired to the given service and config.
func NewServer(service *core.Service, cfg *config.Config) (*Server, error) {
	users, err := newUserStore(cfg.Auth.AdminPassword, cfg.Auth.EmployeePassword)
	if err != nil {
		return nil, err
	}

	s := &Server{
		service: service,
		users:   users,
		sessions: &sessionManager{
			secret: []byte(cfg.Auth.SessionSecret),
			ttl:    cfg.Auth.SessionTTL,
		},
		router: chi.NewRouter(),
		cfg:    cfg,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes. The paths mirror what the
// front-end already calls.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Session management
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		// Everything else requires a valid session
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			// Collections
			r.Get("/admin_data", s.handleAdminData)
			r.Get("/employee_data", s.handleEmployeeData)
			r.Get("/validation_data", s.handleValidationData)
			r.Get("/get_json_data", s.handleBackingData)

			// Transitions
			r.Post("/send_to_employee", s.handleSendToEmployee)
			r.Post("/send_to_validation", s.handleSendToValidation)
			r.Post("/save_details", s.handleSaveDetails)
			r.Post("/delete_row", s.handleDeleteRow)
			r.Post("/delete_validation_row", s.handleDeleteValidationRow)

			// Side table, zones, and audit
			r.Get("/get_additional_details", s.handleGetAdditionalDetails)
			r.Get("/audit", s.handleAuditTrail)
			r.Get("/zones", s.handleZones)
			r.Get("/resolve_zone", s.handleResolveZone)

			// On-demand restructuring
			r.Post("/markdown", s.handleMarkdown)
			r.Post("/markdown_description", s.handleMarkdown)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
		ReadTimeout: s.cfg.Server.ReadTimeout,
		// WriteTimeout must outlast the restructure call; 0 disables it.
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			respondJSON(w, http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
