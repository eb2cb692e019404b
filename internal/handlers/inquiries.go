package handlers

import (
	"encoding/json"
	"net/http"

	"import-broker/internal/logger"
	"import-broker/internal/models"

	"github.com/google/uuid"
)

// InquiryHandler manages customer inquiries.
type InquiryHandler struct {
	inquiryService InquiryService
	log            *logger.Logger
}

// NewInquiryHandler creates the inquiry handler.
func NewInquiryHandler(inquiryService InquiryService, log *logger.Logger) *InquiryHandler {
	return &InquiryHandler{
		inquiryService: inquiryService,
		log:            log,
	}
}

// CreateInquiry records a customer inquiry.
func (h *InquiryHandler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inquiry, err := h.inquiryService.CreateInquiry(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create inquiry")
		return
	}

	writeJSONResponse(w, http.StatusCreated, inquiry)
}

// GetInquiry returns an inquiry by id.
func (h *InquiryHandler) GetInquiry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	inquiryID, err := extractUUIDFromPath(r.URL.Path, "/api/inquiries/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid inquiry ID")
		return
	}

	inquiry, err := h.inquiryService.GetInquiry(r.Context(), inquiryID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get inquiry")
		return
	}

	writeJSONResponse(w, http.StatusOK, inquiry)
}

// ListInquiries returns inquiries, optionally filtered by vehicle.
func (h *InquiryHandler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var vehicleID *uuid.UUID
	if raw := r.URL.Query().Get("vehicle_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid vehicle_id")
			return
		}
		vehicleID = &id
	}

	limit, offset := parseLimitOffset(r, 50, 200)

	inquiries, err := h.inquiryService.ListInquiries(r.Context(), vehicleID, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list inquiries")
		return
	}

	writeJSONResponse(w, http.StatusOK, inquiries)
}
