package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/ports"
	"github.com/emiliopalmerini/abadmin/internal/service"
	"github.com/emiliopalmerini/abadmin/internal/web/middleware"
)

//go:embed static/*
var staticFiles embed.FS

type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	// BaseURL is the externally visible origin used in invitation links.
	BaseURL       string
	Services      *service.Services
	Authenticator *auth.Authenticator
	Metrics       ports.MetricsRecorder
	Logger        *zap.Logger
}

type Server struct {
	router          *http.ServeMux
	handler         http.Handler
	addr            string
	shutdownTimeout time.Duration
	baseURL         string
	services        *service.Services
	authn           *auth.Authenticator
	metrics         ports.MetricsRecorder
	logger          *zap.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	shutdown := opts.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}
	s := &Server{
		router:          http.NewServeMux(),
		addr:            opts.Addr,
		shutdownTimeout: shutdown,
		baseURL:         opts.BaseURL,
		services:        opts.Services,
		authn:           opts.Authenticator,
		metrics:         opts.Metrics,
		logger:          logger,
	}
	s.setupRoutes()
	s.handler = middleware.Chain(s.router,
		middleware.Recover(logger),
		middleware.HTMX,
		s.authn.Identify,
		middleware.AccessLog(logger, s.metrics),
	)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) setupRoutes() {
	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Session handoff
	s.router.HandleFunc("GET /auth/login", s.handleLogin)
	s.router.HandleFunc("POST /auth/callback", s.handleAuthCallback)
	s.router.HandleFunc("POST /auth/signout", s.handleSignOut)

	// Organizations
	s.protect("GET /{$}", s.handleOrgPicker)
	s.protect("POST /orgs", s.handleCreateOrg)
	s.protect("GET /orgs/{org}", s.handleDashboard)
	s.protect("GET /orgs/{org}/settings", s.handleSettings)
	s.protect("POST /orgs/{org}/settings", s.handleRenameOrg)
	s.protect("DELETE /orgs/{org}", s.handleDeleteOrg)

	// Tests
	s.protect("GET /orgs/{org}/tests", s.handleTests)
	s.protect("GET /orgs/{org}/tests/new", s.handleNewTest)
	s.protect("POST /orgs/{org}/tests", s.handleCreateTest)
	s.protect("GET /orgs/{org}/tests/{id}", s.handleTestDetail)
	s.protect("GET /orgs/{org}/tests/{id}/edit", s.handleEditTest)
	s.protect("POST /orgs/{org}/tests/{id}", s.handleUpdateTest)
	s.protect("POST /orgs/{org}/tests/{id}/status", s.handleChangeStatus)
	s.protect("DELETE /orgs/{org}/tests/{id}", s.handleDeleteTest)

	// Versions
	s.protect("POST /orgs/{org}/tests/{id}/versions", s.handleCreateVersion)
	s.protect("GET /orgs/{org}/tests/{id}/versions/{version}", s.handleVersion)

	// Analysis and hypotheses
	s.protect("POST /orgs/{org}/tests/{id}/metrics", s.handleImportMetrics)
	s.protect("POST /orgs/{org}/tests/{id}/analyze", s.handleAnalyze)
	s.protect("POST /orgs/{org}/tests/{id}/hypotheses", s.handleHypotheses)

	// Members and invitations
	s.protect("GET /orgs/{org}/members", s.handleMembers)
	s.protect("POST /orgs/{org}/invitations", s.handleInvite)
	s.protect("DELETE /orgs/{org}/invitations/{id}", s.handleRevokeInvitation)
	s.protect("POST /orgs/{org}/members/{user}/role", s.handleAssignRole)
	s.protect("DELETE /orgs/{org}/members/{user}", s.handleRemoveMember)
	s.protect("GET /invitations/{token}", s.handleInvitation)
	s.protect("POST /invitations/{token}/accept", s.handleAcceptInvitation)

	// Roles
	s.protect("GET /orgs/{org}/roles", s.handleRoles)
	s.protect("POST /orgs/{org}/roles", s.handleCreateRole)
	s.protect("POST /orgs/{org}/roles/{id}", s.handleUpdateRole)
	s.protect("DELETE /orgs/{org}/roles/{id}", s.handleDeleteRole)
}

func (s *Server) protect(pattern string, h http.HandlerFunc) {
	s.router.Handle(pattern, s.authn.Middleware(h))
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", s.addr))

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
