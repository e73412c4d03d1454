package monitoring

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/config"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

//go:embed dashboard.html
var dashboardHTML string

// Server provides HTTP endpoints for monitoring a running station
type Server struct {
	config  *config.MonitoringConfig
	session *session.Session
	server  *http.Server
	logger  *slog.Logger
}

// NewServer creates a new monitoring server
func NewServer(cfg *config.MonitoringConfig, instanceID, version string, sess *session.Session, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler(instanceID, version, sess)
	mux.Handle("/health", healthHandler)

	metricsHandler := NewMetricsHandler(sess)
	mux.Handle("/metrics", metricsHandler)

	samplesHandler := NewSamplesHandler(sess)
	mux.Handle("/api/samples", samplesHandler)

	portsHandler := NewPortsHandler()
	mux.Handle("/api/ports", portsHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, dashboardHTML)
	})

	return &Server{
		config:  cfg,
		session: sess,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the monitoring server
func (s *Server) Start() error {
	s.logger.Info("starting monitoring server", "port", s.config.Port)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("monitoring server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the monitoring server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping monitoring server")
	return s.server.Shutdown(ctx)
}
