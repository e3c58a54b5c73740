package restapi

import (
	"encoding/json"
	"errors"
	logger "log"
	"net/http"

	"github.com/OpenTransitTools/fleetsim/business/data/trip"
	"github.com/OpenTransitTools/fleetsim/business/data/vehicle"
	"github.com/OpenTransitTools/fleetsim/business/facade"
)

// handlers holds the shared dependencies every REST endpoint needs, matching the
// teacher's pattern of one struct per resource carrying its log and collaborators.
type handlers struct {
	log    *logger.Logger
	facade *facade.Facade
}

func (h *handlers) createVehicle(w http.ResponseWriter, r *http.Request) {
	var plan trip.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		h.badRequest(w, err)
		return
	}
	v, err := h.facade.CreateVehicle(r.Context(), plan)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func (h *handlers) createCrissCross(w http.ResponseWriter, r *http.Request) {
	var plan trip.CrissCrossPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		h.badRequest(w, err)
		return
	}
	vehicles, err := h.facade.CreateCrissCross(r.Context(), plan)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, vehicles)
}

func (h *handlers) getVehicleState(w http.ResponseWriter, r *http.Request) {
	v, err := h.facade.GetVehicle(r.Context(), pathID(r))
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func (h *handlers) getVehicleDirections(w http.ResponseWriter, r *http.Request) {
	d, err := h.facade.GetVehicleDirections(r.Context(), pathID(r), queryBool(r, "wait"))
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	if d == nil {
		// not yet loaded by this instance's cache; the caller may retry (spec.md §4.5).
		w.WriteHeader(http.StatusAccepted)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *handlers) getAllVehicleStates(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	pageSize := queryInt(r, "pageSize", 50)
	vehicles, err := h.facade.GetVehicleMap(r.Context(), page, pageSize)
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	if vehicles == nil {
		vehicles = []*vehicle.Vehicle{}
	}
	h.writeJSON(w, http.StatusOK, vehicles)
}

func (h *handlers) resetServer(w http.ResponseWriter, r *http.Request) {
	if err := h.facade.Reset(r.Context()); err != nil {
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handlers) getDirections(w http.ResponseWriter, r *http.Request) {
	var plan trip.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		h.badRequest(w, err)
		return
	}
	d, err := h.facade.GetDirectionsForPlan(r.Context(), plan)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *handlers) getPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID           string  `json:"id"`
		MetersOffset float64 `json:"metersOffset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, err)
		return
	}
	pos, err := h.facade.GetPositionAtOffset(r.Context(), req.ID, req.MetersOffset)
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pos)
}

// writeCreateError maps a create/query-path error to 400 (input validation) or
// 5xx (upstream unavailable / internal) per spec.md §7.
func (h *handlers) writeCreateError(w http.ResponseWriter, err error) {
	if errors.Is(err, facade.ErrInvalidInput) || errors.Is(err, trip.ErrTooFewStops) {
		h.badRequest(w, err)
		return
	}
	h.internalError(w, err)
}

// writeReadError maps a read-path error to 404 (unknown id) or 5xx per spec.md §7.
func (h *handlers) writeReadError(w http.ResponseWriter, err error) {
	if errors.Is(err, facade.ErrVehicleNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	h.internalError(w, err)
}

func (h *handlers) badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func (h *handlers) internalError(w http.ResponseWriter, err error) {
	h.log.Printf("restapi: error: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Printf("restapi: error writing response: %v", err)
	}
}
