package handlers

import (
	"net/http"

	"import-broker/internal/logger"
)

// ArrivalsHandler serves the landing-page vessel arrivals feed.
type ArrivalsHandler struct {
	arrivals ArrivalsProvider
	log      *logger.Logger
}

// NewArrivalsHandler creates the arrivals handler.
func NewArrivalsHandler(arrivals ArrivalsProvider, log *logger.Logger) *ArrivalsHandler {
	return &ArrivalsHandler{
		arrivals: arrivals,
		log:      log,
	}
}

// List returns the current arrivals snapshot.
func (h *ArrivalsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	snapshot := h.arrivals.Current()
	if snapshot == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Arrivals feed not loaded yet")
		return
	}

	writeJSONResponse(w, http.StatusOK, snapshot)
}
