// Package api exposes the TrustVerifier REST surface: trust verification,
// provenance pass-through, agent profiles, the pilot endpoints, and the
// operational endpoints (health, metrics, event feed).
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trustverifier/backend/internal/circuitbreaker"
	"github.com/trustverifier/backend/internal/config"
	"github.com/trustverifier/backend/internal/core"
	"github.com/trustverifier/backend/internal/events"
	"github.com/trustverifier/backend/internal/metrics"
	"github.com/trustverifier/backend/internal/middleware"
	"github.com/trustverifier/backend/internal/pilot"
)

const (
	serviceName    = "TrustVerifier"
	serviceVersion = "0.1.0"
	parentAgent    = "Gerundium"
)

// TrustService performs the verify-trust operation.
type TrustService interface {
	VerifyTrust(ctx context.Context, req core.TrustRequest) (core.TrustReport, error)
}

// ProvenanceService forwards provenance claims to the evidence collaborator.
type ProvenanceService interface {
	Verify(ctx context.Context, req core.ProvenanceRequest) (core.ProvenanceReport, error)
}

// ProfileService resolves agent profiles.
type ProfileService interface {
	Resolve(ctx context.Context, agentID string) (core.AgentProfile, error)
}

// Server wires the services into HTTP routes.
type Server struct {
	cfg        *config.Config
	verifier   TrustService
	provenance ProvenanceService
	profiles   ProfileService
	pilot      *pilot.Service
	hub        *events.Hub
	breakers   *circuitbreaker.CollaboratorBreakers
	metrics    *metrics.Metrics
	cacheInfo  string // backend label for the health endpoint
}

// NewServer creates the API server. pilotSvc, hub, breakers, and m may be
// nil (the corresponding surface degrades gracefully); cfg, verifier,
// provenance, and profiles are required.
func NewServer(
	cfg *config.Config,
	verifier TrustService,
	provenance ProvenanceService,
	profiles ProfileService,
	pilotSvc *pilot.Service,
	hub *events.Hub,
	breakers *circuitbreaker.CollaboratorBreakers,
	m *metrics.Metrics,
	cacheInfo string,
) *Server {
	return &Server{
		cfg:        cfg,
		verifier:   verifier,
		provenance: provenance,
		profiles:   profiles,
		pilot:      pilotSvc,
		hub:        hub,
		breakers:   breakers,
		metrics:    m,
		cacheInfo:  cacheInfo,
	}
}

// Router builds the full route table with middleware applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)

	// Operational surface
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/donate", s.handleDonate).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if s.hub != nil {
		r.HandleFunc("/ws/events", s.hub.HandleWebSocket)
	}

	// Verification API, rate limited per agent
	limiter := middleware.NewRateLimiter(s.cfg.RateLimit)
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(limiter.Middleware)
	v1.HandleFunc("/verify-trust", s.handleVerifyTrust).Methods("POST")
	v1.HandleFunc("/verify-provenance", s.handleVerifyProvenance).Methods("POST")
	v1.HandleFunc("/agent/{agent_id}", s.handleAgentProfile).Methods("GET")

	// Pilot cohort endpoints
	if s.pilot != nil {
		pilot.RegisterRoutes(r.PathPrefix("/pilot").Subrouter(), s.pilot)
	}

	return r
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.Router()
}
