// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/service"
	"github.com/airdrop-scanner/internal/storage"
)

// Service interfaces for dependency injection and testing

// AirdropServiceInterface defines the interface for airdrop catalog operations
type AirdropServiceInterface interface {
	List(ctx context.Context, filters *storage.AirdropFilters) ([]*models.Airdrop, error)
	Get(ctx context.Context, id string) (*models.Airdrop, error)
	Update(ctx context.Context, id string, update *service.AirdropUpdate) (*models.Airdrop, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*storage.StoreStats, error)
}

// DiscoveryServiceInterface defines the interface for the discovery orchestrator
type DiscoveryServiceInterface interface {
	Run(ctx context.Context, opts service.RunOptions) (*models.RunSummary, error)
	LastRun(ctx context.Context) (*models.RunSummary, bool)
	NextScheduledRun(ctx context.Context) time.Time
	RunHistory(ctx context.Context, limit int) ([]storage.DiscoveryRunRow, error)
}

// EligibilityServiceInterface defines the interface for eligibility evaluation
type EligibilityServiceInterface interface {
	Evaluate(activity *models.WalletActivity, airdrop *models.Airdrop) models.EligibilityResult
	EvaluateAll(activity *models.WalletActivity, airdrops []*models.Airdrop) []models.EligibilityResult
}

// WalletScannerInterface defines the external wallet activity scanner contract
type WalletScannerInterface interface {
	Configured() bool
	Scan(ctx context.Context, address string) (*models.WalletActivity, error)
}

// Server represents the HTTP API server.
type Server struct {
	router             *mux.Router
	httpServer         *http.Server
	airdropService     AirdropServiceInterface
	discoveryService   DiscoveryServiceInterface
	eligibilityService EligibilityServiceInterface
	scanner            WalletScannerInterface
	config             *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AdminToken      string
	RateLimitRPS    int
	RateLimitBurst  int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	airdropService AirdropServiceInterface,
	discoveryService DiscoveryServiceInterface,
	eligibilityService EligibilityServiceInterface,
	scanner WalletScannerInterface,
) *Server {
	s := &Server{
		router:             mux.NewRouter(),
		airdropService:     airdropService,
		discoveryService:   discoveryService,
		eligibilityService: eligibilityService,
		scanner:            scanner,
		config:             config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Public catalog endpoints
	api.HandleFunc("/airdrops", s.handleListAirdrops).Methods("GET")
	api.HandleFunc("/airdrops/{id}", s.handleGetAirdrop).Methods("GET")

	// Eligibility endpoints
	api.HandleFunc("/eligibility/check", s.handleCheckEligibility).Methods("POST")

	// Scraper status endpoint
	api.HandleFunc("/scraper/run", s.handleScraperStatus).Methods("GET")

	// Administrative endpoints
	admin := api.NewRoute().Subrouter()
	admin.Use(AdminAuthMiddleware(s.config.AdminToken))
	admin.HandleFunc("/airdrops/{id}", s.handleUpdateAirdrop).Methods("PUT")
	admin.HandleFunc("/airdrops/{id}", s.handleDeleteAirdrop).Methods("DELETE")
	admin.HandleFunc("/scraper/run", s.handleTriggerScraper).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "airdrop-scanner",
	})
}

// Router returns the configured router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
