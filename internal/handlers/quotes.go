package handlers

import (
	"encoding/json"
	"net/http"

	"import-broker/internal/logger"
	"import-broker/internal/models"
)

// QuoteHandler manages saved quotes.
type QuoteHandler struct {
	quoteService QuoteService
	log          *logger.Logger
}

// NewQuoteHandler creates the quote handler.
func NewQuoteHandler(quoteService QuoteService, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		log:          log,
	}
}

// CreateQuote saves a quote for a completed declaration.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quote, err := h.quoteService.CreateQuote(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create quote")
		return
	}

	writeJSONResponse(w, http.StatusCreated, quote)
}

// GetQuote returns a saved quote by id.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	quoteID, err := extractUUIDFromPath(r.URL.Path, "/api/quotes/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := h.quoteService.GetQuote(r.Context(), quoteID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get quote")
		return
	}

	writeJSONResponse(w, http.StatusOK, quote)
}

// ListQuotes returns saved quotes, newest first.
func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, offset := parseLimitOffset(r, 50, 200)

	quotes, err := h.quoteService.ListQuotes(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list quotes")
		return
	}

	writeJSONResponse(w, http.StatusOK, quotes)
}
