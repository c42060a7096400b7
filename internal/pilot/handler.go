package pilot

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the pilot endpoints on the given subrouter.
func RegisterRoutes(r *mux.Router, svc *Service) {
	h := &handler{svc: svc}

	r.HandleFunc("/ingest", h.ingest).Methods("POST")
	r.HandleFunc("/score/{agent_id}", h.score).Methods("GET")
	r.HandleFunc("/cohort", h.cohort).Methods("GET")
	r.HandleFunc("/snapshot/{agent_id}/{date}", h.snapshot).Methods("GET")
}

type handler struct {
	svc *Service
}

func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	var snap Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Ingest(r.Context(), snap); err != nil {
		if errors.Is(err, ErrNotInCohort) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ingested",
		"agent_id":  snap.AgentID,
		"date":      snap.Date,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) score(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent_id"]

	score, err := h.svc.Score(r.Context(), agentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotInCohort), errors.Is(err, ErrNoSnapshots):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, score)
}

func (h *handler) cohort(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.CohortStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	snap, err := h.svc.Snapshot(r.Context(), vars["agent_id"], vars["date"])
	if err != nil {
		switch {
		case errors.Is(err, ErrNotInCohort), errors.Is(err, ErrSnapshotNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
