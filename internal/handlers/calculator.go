package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"import-broker/internal/logger"
	"import-broker/internal/models"
)

// CalculatorHandler serves interactive cost estimation. Estimates are
// recomputed on every request; an incomplete declaration is a normal
// response, not an error.
type CalculatorHandler struct {
	quoteService QuoteService
	rates        RatesProvider
	log          *logger.Logger
}

// NewCalculatorHandler creates the calculator handler.
func NewCalculatorHandler(quoteService QuoteService, rates RatesProvider, log *logger.Logger) *CalculatorHandler {
	return &CalculatorHandler{
		quoteService: quoteService,
		rates:        rates,
		log:          log,
	}
}

// Estimate computes a cost breakdown for a (possibly partial) declaration.
func (h *CalculatorHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var decl models.VehicleDeclaration
	if err := json.NewDecoder(r.Body).Decode(&decl); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.quoteService.Estimate(&decl)
	writeJSONResponse(w, http.StatusOK, result)
}

// Rates returns the rate table currently in effect.
func (h *CalculatorHandler) Rates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	table := h.rates.Current()
	if table == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Rate table not loaded yet")
		return
	}

	writeJSONResponse(w, http.StatusOK, table)
}

// BandsResponse lists the band definitions for declaration form dropdowns.
type BandsResponse struct {
	EngineBands []models.EngineBand `json:"engine_bands"`
	AgeBands    []models.AgeBand    `json:"age_bands"`
	Origins     []string            `json:"origins"`
}

// Bands returns the engine and age bands plus known origin ports.
func (h *CalculatorHandler) Bands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	table := h.rates.Current()
	if table == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Rate table not loaded yet")
		return
	}

	origins := make([]string, 0, len(table.ShippingByOrigin))
	for origin := range table.ShippingByOrigin {
		origins = append(origins, origin)
	}
	sort.Strings(origins)

	writeJSONResponse(w, http.StatusOK, BandsResponse{
		EngineBands: table.EngineBands,
		AgeBands:    table.AgeBands,
		Origins:     origins,
	})
}
