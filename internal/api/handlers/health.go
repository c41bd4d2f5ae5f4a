package handlers

import (
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// An upstream guarded by a circuit breaker.
type Upstream interface {
	Name() string
	State() gobreaker.State
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Upstreams map[string]string `json:"upstreams,omitempty"`
}

type HealthHandler struct {
	Upstreams []Upstream
}

// Health is a liveness check. It reports breaker states and answers
// "degraded" while any breaker is open; the status code stays 200 because
// the optimizer still serves routes from closed-form estimates.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := HealthResponse{Status: "ok"}
	for _, u := range h.Upstreams {
		if res.Upstreams == nil {
			res.Upstreams = make(map[string]string, len(h.Upstreams))
		}
		state := u.State()
		res.Upstreams[u.Name()] = state.String()
		if state == gobreaker.StateOpen {
			res.Status = "degraded"
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}
