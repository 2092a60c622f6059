package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"bishroute/internal/refresher"
	"bishroute/internal/streets"
)

type HealthHandler struct {
	refresher *refresher.Refresher
	streets   *streets.Cache
}

func NewHealthHandler(r *refresher.Refresher, c *streets.Cache) *HealthHandler {
	return &HealthHandler{
		refresher: r,
		streets:   c,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready        bool      `json:"ready"`
	StreetsFresh bool      `json:"streetsFresh"`
	ServerTime   time.Time `json:"serverTime"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := h.refresher.IsReady()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ReadyResponse{
		Ready:        ready,
		StreetsFresh: h.streets.Fresh(),
		ServerTime:   time.Now(),
	})
}
