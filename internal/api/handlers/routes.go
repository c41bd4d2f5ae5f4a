package handlers

import (
	"context"
	"delivery-route-optimizer/internal/api/dto"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/services"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type RouteOptimizer interface {
	Optimize(ctx context.Context, req services.OptimizeRequest) (*services.OptimizeResult, error)
}

type RouteHandler struct {
	Optimizer RouteOptimizer
}

// Optimize decodes a delivery batch, runs the optimizer and returns the route.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req dto.OptimizeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON", err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "invalid JSON", "body must contain a single JSON object")
		return
	}

	deliveries, vehicle, err := req.ToDomain()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	in := services.OptimizeRequest{
		Deliveries: deliveries,
		Vehicle:    vehicle,
		StartTime:  time.Now(),
	}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}
	if req.ReferenceTime != nil {
		in.ReferenceTime = *req.ReferenceTime
	}

	res, err := h.Optimizer.Optimize(r.Context(), in)
	if err != nil {
		writeOptimizeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOptimizeResponse(res.Route, res.Unresolved, res.Duplicates))
}

func writeOptimizeError(w http.ResponseWriter, r *http.Request, err error) {
	var inErr *domain.InputError
	switch {
	case errors.Is(err, domain.ErrAllGeocodingFailed):
		writeError(w, r, http.StatusUnprocessableEntity, "no address could be geocoded", err.Error())
	case errors.As(err, &inErr):
		writeError(w, r, http.StatusBadRequest, "invalid request", inErr.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "request cancelled", "")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("optimize failed")
		writeError(w, r, http.StatusInternalServerError, "internal error", "")
	}
}
