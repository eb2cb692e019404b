package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"import-broker/internal/logger"
	"import-broker/internal/models"
)

// VehicleHandler manages the showcase inventory.
type VehicleHandler struct {
	vehicleService VehicleService
	log            *logger.Logger
}

// NewVehicleHandler creates the vehicle handler.
func NewVehicleHandler(vehicleService VehicleService, log *logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		log:            log,
	}
}

// CreateVehicle lists a new vehicle.
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create vehicle")
		return
	}

	writeJSONResponse(w, http.StatusCreated, vehicle)
}

// GetVehicle returns a vehicle by id.
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	vehicleID, err := extractUUIDFromPath(r.URL.Path, "/api/vehicles/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicleService.GetVehicle(r.Context(), vehicleID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get vehicle")
		return
	}

	writeJSONResponse(w, http.StatusOK, vehicle)
}

// ListVehicles returns inventory matching query filters.
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter := h.parseFilter(r)

	vehicles, err := h.vehicleService.ListVehicles(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list vehicles")
		return
	}

	writeJSONResponse(w, http.StatusOK, vehicles)
}

// UpdateAvailabilityRequest toggles a listing.
type UpdateAvailabilityRequest struct {
	Available bool `json:"available"`
}

// UpdateAvailability marks a vehicle as sold or back in stock.
func (h *VehicleHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	vehicleID, err := extractUUIDFromPath(r.URL.Path, "/api/vehicles/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	var req UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.vehicleService.SetAvailability(r.Context(), vehicleID, req.Available); err != nil {
		writeServiceError(w, h.log, err, "Failed to update vehicle availability")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"id":        vehicleID,
		"available": req.Available,
	})
}

func (h *VehicleHandler) parseFilter(r *http.Request) *models.VehicleFilter {
	q := r.URL.Query()
	filter := &models.VehicleFilter{
		Query:  q.Get("q"),
		Origin: q.Get("origin"),
	}

	if v, err := strconv.Atoi(q.Get("year_from")); err == nil {
		filter.YearFrom = v
	}
	if v, err := strconv.Atoi(q.Get("year_to")); err == nil {
		filter.YearTo = v
	}
	if v, err := strconv.ParseFloat(q.Get("price_min"), 64); err == nil {
		filter.PriceMin = v
	}
	if v, err := strconv.ParseFloat(q.Get("price_max"), 64); err == nil {
		filter.PriceMax = v
	}
	if raw := q.Get("available"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Available = &v
		}
	}

	filter.Limit, filter.Offset = parseLimitOffset(r, 0, 100)

	return filter
}
