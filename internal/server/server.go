package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nunoplanning/advisor/internal/advisor"
	"github.com/nunoplanning/advisor/internal/audit"
	"github.com/nunoplanning/advisor/internal/llm/adapter"
	"github.com/nunoplanning/advisor/internal/middleware"
)

// Version of the advisor service.
const Version = "1.0.0"

// Server represents the planning advisor HTTP server
type Server struct {
	config *Config

	// Core components
	service *advisor.Service
	auditor audit.Logger

	// HTTP server
	httpServer  *http.Server
	rateLimiter *middleware.RateLimiter

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// State
	mu      sync.RWMutex
	running bool
}

// NewServer creates a new advisor server. A missing backend credential
// does not fail construction: the server starts degraded and advisory
// routes answer 503 until the backend is configured.
func NewServer(cfg *Config, auditor audit.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config:  cfg,
		auditor: auditor,
		ctx:     ctx,
		cancel:  cancel,
		running: false,
	}

	if err := srv.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return srv, nil
}

// initializeComponents initializes the reasoning backend and the
// advisory service around it.
func (s *Server) initializeComponents() error {
	if s.config.RateLimitEnabled {
		s.rateLimiter = middleware.NewRateLimiter(s.config.RequestsPerMinute, s.config.RateLimitBurst)
	}

	backendCfg := &adapter.Config{
		Provider: adapter.ProviderType(s.config.LLMProvider),
		APIKey:   s.config.LLMAPIKey,
		Model:    s.config.LLMModel,
		BaseURL:  s.config.OllamaBaseURL,
	}

	backend, err := adapter.New(backendCfg)
	if err != nil {
		if errors.Is(err, adapter.ErrConfiguration) {
			s.auditor.App().Warn("reasoning backend not configured, starting degraded",
				zap.String("provider", s.config.LLMProvider),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	s.service = advisor.NewService(backend, s.auditor)

	return nil
}

// Start starts the server
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.mu.Unlock()

	mux := http.NewServeMux()
	s.registerHandlers(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		// Analysis calls can hold the connection for minutes
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var err error
		if s.config.TLSEnabled {
			err = s.httpServer.ListenAndServeTLS(s.config.TLSCertPath, s.config.TLSKeyPath)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.auditor.App().Error("HTTP server error", zap.Error(err))
		}
	}()

	_ = s.auditor.Log(s.ctx, audit.NewEvent(audit.EventServerStarted).
		WithResult(audit.ResultSuccess).
		WithDescription(fmt.Sprintf("Listening on %s:%d", s.config.Host, s.config.Port)))

	s.auditor.App().Info("advisor server started",
		zap.String("host", s.config.Host),
		zap.Int("port", s.config.Port),
		zap.String("llm_provider", s.config.LLMProvider),
		zap.Bool("llm_configured", s.IsConfigured()),
	)

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is not running")
	}
	s.running = false
	s.mu.Unlock()

	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.auditor.App().Error("error shutting down HTTP server", zap.Error(err))
		}
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.cancel()
	s.wg.Wait()

	_ = s.auditor.Log(context.Background(), audit.NewEvent(audit.EventServerShutdown).
		WithResult(audit.ResultSuccess).
		WithDescription("Server stopped"))

	return nil
}

// Wait blocks until the server is stopped
func (s *Server) Wait() {
	<-s.ctx.Done()
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// IsConfigured reports whether a reasoning backend is available.
func (s *Server) IsConfigured() bool {
	return s.service.IsConfigured()
}

// registerHandlers registers HTTP handlers
func (s *Server) registerHandlers(mux *http.ServeMux) {
	// Service info and probes
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Advisory API
	mux.HandleFunc("/api/v1/analyze-planning", s.apiChain(s.handleAnalyzePlanning))
	mux.HandleFunc("/api/v1/quick-advice", s.apiChain(s.handleQuickAdvice))
	mux.HandleFunc("/api/v1/supported-providers", s.apiChain(s.handleSupportedProviders))

	// WebSocket streaming
	mux.HandleFunc("/ws/quick-advice", middleware.Correlation(s.handleQuickAdviceWS))
}

// apiChain wraps an API handler with the standard middleware stack.
func (s *Server) apiChain(h http.HandlerFunc) http.HandlerFunc {
	h = middleware.APIKeyAuth(s.config.APIKey, h)
	if s.rateLimiter != nil {
		h = s.rateLimiter.Middleware(h)
	}
	h = middleware.CORS(s.config.AllowedOrigins, h)
	return middleware.Correlation(h)
}
