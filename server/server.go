package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oesukam/r-incident-query-webapp/auth"
	"github.com/oesukam/r-incident-query-webapp/config"
	"github.com/oesukam/r-incident-query-webapp/extract"
	"github.com/oesukam/r-incident-query-webapp/threatintel"
)

// Server wires the HTTP surface: auth endpoints, incident pass-throughs and
// the extraction/export endpoints, all behind the session cookie middleware.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	verifier *auth.CredentialVerifier
	sessions *auth.SessionCodec
	client   *threatintel.Client
	extracts *extract.Service
}

func New(cfg *config.Config, client *threatintel.Client, extracts *extract.Service) *Server {
	app := fiber.New(fiber.Config{
		AppName: "incident-query-webapp",
	})
	app.Use(logger.New())

	s := &Server{
		app:      app,
		cfg:      cfg,
		verifier: auth.NewCredentialVerifier(cfg.Auth.Username, cfg.Auth.Password),
		sessions: auth.NewSessionCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionMaxAge),
		client:   client,
		extracts: extracts,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.healthz)
	if s.cfg.Metrics.Enabled {
		s.app.Get(s.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := s.app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", s.login)
	authGroup.Post("/logout", s.logout)

	incidents := api.Group("/incidents", s.requireSession)
	incidents.Get("/search", s.search)
	incidents.Get("/detail", s.detail)
	incidents.Get("/download", s.download)
	incidents.Get("/emails", s.emails)
	incidents.Get("/export", s.export)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
