package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"import-broker/internal/apperror"
	"import-broker/internal/database"
	"import-broker/internal/logger"
	"import-broker/internal/models"

	"github.com/google/uuid"
)

// RatesProvider supplies the rate table in effect at computation time.
type RatesProvider interface {
	Current() *models.RateTable
}

// quotePublisher is the slice of the event producer the quote service needs.
type quotePublisher interface {
	PublishQuoteCreated(quote *models.Quote) error
}

// QuoteService computes estimates against the current rate table and
// persists saved quotes. Estimation itself stays pure; this layer adds the
// rate snapshot, fallback logging and storage.
type QuoteService struct {
	db       *database.DB
	rates    RatesProvider
	producer quotePublisher
	log      *logger.Logger
}

// NewQuoteService creates the quote service.
func NewQuoteService(db *database.DB, rates RatesProvider, producer quotePublisher, log *logger.Logger) *QuoteService {
	return &QuoteService{
		db:       db,
		rates:    rates,
		producer: producer,
		log:      log,
	}
}

// Estimate runs the estimator against the current rate table. A shipping
// fallback is logged so unknown origins stay observable without blocking the
// computation.
func (s *QuoteService) Estimate(decl *models.VehicleDeclaration) *models.EstimateResult {
	result := Estimate(decl, s.rates.Current())
	if result.Ready && result.Breakdown.ShippingFallback {
		s.log.WithField("origin", decl.Origin).Warn("Origin not in shipping table, default shipping cost substituted")
	}
	return result
}

// CreateQuote persists a quote for a completed declaration. An incomplete
// declaration is a validation error here, unlike interactive estimation.
func (s *QuoteService) CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, apperror.Validation("customer name is required", nil)
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, apperror.Validation("customer phone is required", nil)
	}

	result := s.Estimate(&req.Declaration)
	if !result.Ready {
		return nil, apperror.Validationf("declaration incomplete: %s", strings.Join(result.Missing, ", "))
	}

	quote := &models.Quote{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Declaration:   req.Declaration,
		Breakdown:     *result.Breakdown,
		CreatedAt:     time.Now(),
	}

	breakdown, err := json.Marshal(quote.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO quotes (id, customer_name, customer_phone, customer_email, declared_value, engine_band, age_band, origin, breakdown, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.ExecContext(ctx, query,
		quote.ID, quote.CustomerName, quote.CustomerPhone, quote.CustomerEmail,
		quote.Declaration.DeclaredValue, quote.Declaration.EngineBand, quote.Declaration.AgeBand, quote.Declaration.Origin,
		breakdown, quote.Breakdown.Total, quote.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"quote_id": quote.ID,
		"total":    quote.Breakdown.Total,
	}).Info("Quote created")

	if s.producer != nil {
		if err := s.producer.PublishQuoteCreated(quote); err != nil {
			s.log.WithError(err).WithField("quote_id", quote.ID).Warn("Failed to publish quote created event")
		}
	}

	return quote, nil
}

// GetQuote returns a saved quote by id.
func (s *QuoteService) GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	query := `
		SELECT id, customer_name, customer_phone, customer_email, declared_value, engine_band, age_band, origin, breakdown, created_at
		FROM quotes
		WHERE id = $1
	`

	quote := &models.Quote{}
	var breakdown []byte
	err := s.db.QueryRowContext(ctx, query, quoteID).Scan(
		&quote.ID, &quote.CustomerName, &quote.CustomerPhone, &quote.CustomerEmail,
		&quote.Declaration.DeclaredValue, &quote.Declaration.EngineBand, &quote.Declaration.AgeBand, &quote.Declaration.Origin,
		&breakdown, &quote.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("quote not found", err)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if err := json.Unmarshal(breakdown, &quote.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown for quote %s: %w", quoteID, err)
	}

	return quote, nil
}

// ListQuotes returns saved quotes, newest first.
func (s *QuoteService) ListQuotes(ctx context.Context, limit, offset int) ([]*models.Quote, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, customer_name, customer_phone, customer_email, declared_value, engine_band, age_band, origin, breakdown, created_at
		FROM quotes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q := &models.Quote{}
		var breakdown []byte
		if err := rows.Scan(
			&q.ID, &q.CustomerName, &q.CustomerPhone, &q.CustomerEmail,
			&q.Declaration.DeclaredValue, &q.Declaration.EngineBand, &q.Declaration.AgeBand, &q.Declaration.Origin,
			&breakdown, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		if err := json.Unmarshal(breakdown, &q.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown for quote %s: %w", q.ID, err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return quotes, nil
}
