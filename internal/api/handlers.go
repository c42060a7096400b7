package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/trustverifier/backend/internal/core"
	"github.com/trustverifier/backend/internal/upstream"
)

// Donation wallet addresses for the service.
const (
	donateEVM = "0x1Ba5618Dc4a26e0495B089A569EFC64F9D2Ad689"
	donateSOL = "6KsvHjfHjW3UtqoFJcbdmy1byLDw99xrtV4ddwGu8qMk"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":     serviceName,
		"status":      "operational",
		"version":     serviceVersion,
		"parent":      parentAgent,
		"description": "Trust score verification and provenance auditing for autonomous agents",
		"donate": map[string]string{
			"evm": donateEVM,
			"sol": donateSOL,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"cache":     s.cacheInfo,
		"dependencies": map[string]string{
			"trust_score_api": s.cfg.Upstream.TrustScoreURL,
			"parent_agent":    s.cfg.Upstream.ParentAgentEmail,
		},
	}

	if s.breakers != nil {
		status, collaborators := s.breakers.HealthStatus()
		payload["collaborators"] = collaborators
		if status != "HEALTHY" {
			payload["status"] = "degraded"
		}
	}
	if s.hub != nil {
		payload["event_subscribers"] = s.hub.SubscriberCount()
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDonate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": serviceName,
		"message": "Support this open-source project with a donation!",
		"addresses": map[string]interface{}{
			"evm": map[string]string{
				"network": "Ethereum / EVM compatible (ETH, USDC, USDT, etc.)",
				"address": donateEVM,
			},
			"sol": map[string]string{
				"network": "Solana (SOL, USDC, etc.)",
				"address": donateSOL,
			},
		},
		"note": "All donations are voluntary and help fund continued development",
	})
}

func (s *Server) handleVerifyTrust(w http.ResponseWriter, r *http.Request) {
	var req core.TrustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := s.verifier.VerifyTrust(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAgentID):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, core.ErrInsufficientSignal):
			// No component scores obtainable right now; caller may retry.
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("❌ Trust verification failed: %v", err)
			writeError(w, http.StatusInternalServerError, "trust verification failed")
		}
		return
	}

	if s.hub != nil {
		s.hub.BroadcastVerification(report)
	}

	writeJSON(w, http.StatusOK, report)
}

// provenanceWire is the inbound shape of /verify-provenance; the action is
// decoded into its typed variant before leaving the handler.
type provenanceWire struct {
	Claim       string          `json:"claim"`
	AgentID     string          `json:"agent_id"`
	Action      json.RawMessage `json:"action"`
	EvidenceURL string          `json:"evidence_url,omitempty"`
}

func (s *Server) handleVerifyProvenance(w http.ResponseWriter, r *http.Request) {
	var wire provenanceWire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		s.recordProvenance("bad_request")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := upstream.ValidateAgentID(wire.AgentID); err != nil {
		s.recordProvenance("bad_request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if wire.Claim == "" {
		s.recordProvenance("bad_request")
		writeError(w, http.StatusBadRequest, "claim is required")
		return
	}
	if len(wire.Action) == 0 {
		s.recordProvenance("bad_request")
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	action, err := core.ParseAction(wire.Action)
	if err != nil {
		s.recordProvenance("bad_request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.provenance.Verify(r.Context(), core.ProvenanceRequest{
		Claim:       wire.Claim,
		AgentID:     wire.AgentID,
		Action:      action,
		EvidenceURL: wire.EvidenceURL,
	})
	if err != nil {
		s.recordProvenance("upstream_error")

		// Provenance errors are surfaced verbatim from the collaborator.
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":           "provenance service error",
				"upstream_status": statusErr.Status,
				"upstream_detail": statusErr.Body,
			})
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.recordProvenance("ok")
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAgentProfile(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent_id"]

	profile, err := s.profiles.Resolve(r.Context(), agentID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAgentID):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, core.ErrUpstreamUnavailable):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			log.Printf("❌ Profile lookup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "profile lookup failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) recordProvenance(result string) {
	if s.metrics != nil {
		s.metrics.RecordProvenance(result)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
