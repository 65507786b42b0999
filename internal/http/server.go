package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"clinicreport/internal/cache"
	"clinicreport/internal/events"
	applog "clinicreport/internal/log"
	"clinicreport/internal/middleware/ratelimit"
	"clinicreport/internal/middleware/security"
	"clinicreport/internal/middleware/trace"
	"clinicreport/internal/report"
	"clinicreport/internal/session"
	"clinicreport/internal/source"
	appweb "clinicreport/web"
)

// Config wires a Server.
type Config struct {
	Addr     string
	Source   source.Source
	Sessions session.Provider
	// Events is shared with the backend so delete outcomes reach the broker.
	Events *events.Bus

	Location        *time.Location
	ChartScope      report.ChartScope
	DefaultPageSize int
	SessionCookie   string

	// Controllers are kept per session, bounded by size and idle TTL.
	ControllerCacheSize int
	ControllerTTL       time.Duration

	RateLimit ratelimit.Config
	// Ready reports backend readiness for /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Clock  func() time.Time
	Logger *applog.Logger
}

type Server struct {
	http.Server
	cfg       Config
	templates *template.Template
	logger    *applog.Logger
	startedAt time.Time

	controllers *cache.LRUCache[*report.Controller]
	ctlMu       sync.Mutex
	caches      *cache.Manager
	limiter     *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Source == nil || cfg.Sessions == nil {
		return nil, errors.New("http: source and session provider are required")
	}
	if cfg.Events == nil {
		cfg.Events = events.NewBus()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.ChartScope == "" {
		cfg.ChartScope = report.ScopePage
	}
	if !report.ValidPageSize(cfg.DefaultPageSize) {
		cfg.DefaultPageSize = report.DefaultPageSize
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "session"
	}
	if cfg.ControllerCacheSize <= 0 {
		cfg.ControllerCacheSize = 256
	}
	if cfg.ControllerTTL <= 0 {
		cfg.ControllerTTL = 30 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = applog.Discard()
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	clientIP, err := security.NewClientIP()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		cfg:       cfg,
		templates: t,
		logger:    logger,
		startedAt: cfg.Clock(),
		controllers: cache.NewLRUCache[*report.Controller](cfg.ControllerCacheSize, cfg.ControllerTTL).
			OnEvict(func(_ string, c *report.Controller) { c.Close() }),
		caches:  cache.NewManager(cfg.Logger),
		limiter: ratelimit.NewLimiter(cfg.RateLimit, cfg.Logger),
		tracer:  trace.NewMiddleware(cfg.Logger, clientIP.Extract),
	}
	s.caches.Register(s.controllers)
	s.caches.StartCleanup(time.Minute)

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/expenses", http.StatusFound)
	})
	mux.HandleFunc("GET /admin/expenses", s.handleView)
	mux.HandleFunc("GET /admin/expenses/{id}/delete", s.handleConfirmDelete)
	mux.HandleFunc("POST /admin/expenses/{id}/delete", s.handleDelete)
	mux.HandleFunc("GET /api/expenses", s.handleAPIExpenses)
	mux.HandleFunc("GET /api/doctors", s.handleAPIDoctors)
	mux.HandleFunc("GET /signin", s.handleSignin)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var h http.Handler = mux
	h = s.withSession(h)
	h = s.limiter.Middleware(clientIP.Extract)(h)
	h = security.Headers(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// withSession stores the caller's session token in the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := sessionToken(r, s.cfg.SessionCookie); token != "" {
			r = r.WithContext(session.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// controllerFor returns the caller's controller, creating it on first use.
// It fails with report.ErrUnauthenticated when no session is active.
func (s *Server) controllerFor(ctx context.Context) (*report.Controller, error) {
	sess, err := s.cfg.Sessions.Current(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, report.ErrUnauthenticated
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	key := sess.UserID + "|" + session.TokenFrom(ctx)

	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()
	if c, ok := s.controllers.Get(key); ok {
		return c, nil
	}

	c, err := report.NewController(report.Deps{
		Source:     s.cfg.Source,
		Sessions:   s.cfg.Sessions,
		Events:     s.cfg.Events,
		Clock:      s.cfg.Clock,
		Normalizer: report.Normalizer{Location: s.cfg.Location},
		ChartScope: s.cfg.ChartScope,
		Pagination: report.Pagination{Page: report.DefaultPage, PageSize: s.cfg.DefaultPageSize},
		Logger:     s.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	s.controllers.Set(key, c)
	s.logger.DebugContext(ctx, "Report controller created", applog.FieldUserID, sess.UserID)
	return c, nil
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
