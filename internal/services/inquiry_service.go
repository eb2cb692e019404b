package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"import-broker/internal/apperror"
	"import-broker/internal/database"
	"import-broker/internal/logger"
	"import-broker/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// inquiryPublisher is the slice of the event producer the inquiry service needs.
type inquiryPublisher interface {
	PublishInquiryCreated(inquiry *models.Inquiry) error
}

// InquiryService records customer questions about listed vehicles.
type InquiryService struct {
	db       *database.DB
	producer inquiryPublisher
	log      *logger.Logger
}

// NewInquiryService creates the inquiry service.
func NewInquiryService(db *database.DB, producer inquiryPublisher, log *logger.Logger) *InquiryService {
	return &InquiryService{
		db:       db,
		producer: producer,
		log:      log,
	}
}

// CreateInquiry stores an inquiry. VehicleID is optional; when present it must
// reference an existing vehicle.
func (s *InquiryService) CreateInquiry(ctx context.Context, req *models.CreateInquiryRequest) (*models.Inquiry, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("name is required", nil)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, apperror.Validation("phone is required", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperror.Validation("message is required", nil)
	}

	inquiry := &models.Inquiry{
		ID:        uuid.New(),
		VehicleID: req.VehicleID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO inquiries (id, vehicle_id, name, phone, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		inquiry.ID, inquiry.VehicleID, inquiry.Name, inquiry.Phone, inquiry.Email, inquiry.Message, inquiry.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, apperror.Validation("referenced vehicle does not exist", err)
		}
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"inquiry_id": inquiry.ID,
		"vehicle_id": inquiry.VehicleID,
	}).Info("Inquiry created")

	if s.producer != nil {
		if err := s.producer.PublishInquiryCreated(inquiry); err != nil {
			s.log.WithError(err).WithField("inquiry_id", inquiry.ID).Warn("Failed to publish inquiry created event")
		}
	}

	return inquiry, nil
}

// GetInquiry returns a single inquiry by id.
func (s *InquiryService) GetInquiry(ctx context.Context, inquiryID uuid.UUID) (*models.Inquiry, error) {
	query := `
		SELECT id, vehicle_id, name, phone, email, message, created_at
		FROM inquiries
		WHERE id = $1
	`

	inquiry := &models.Inquiry{}
	err := s.db.QueryRowContext(ctx, query, inquiryID).Scan(
		&inquiry.ID, &inquiry.VehicleID, &inquiry.Name, &inquiry.Phone, &inquiry.Email, &inquiry.Message, &inquiry.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("inquiry not found", err)
		}
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}

	return inquiry, nil
}

// ListInquiries returns inquiries, newest first, optionally scoped to a vehicle.
func (s *InquiryService) ListInquiries(ctx context.Context, vehicleID *uuid.UUID, limit, offset int) ([]*models.Inquiry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, vehicle_id, name, phone, email, message, created_at
		FROM inquiries
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if vehicleID != nil {
		query += fmt.Sprintf(" AND vehicle_id = $%d", argIndex)
		args = append(args, *vehicleID)
		argIndex++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []*models.Inquiry
	for rows.Next() {
		inq := &models.Inquiry{}
		if err := rows.Scan(
			&inq.ID, &inq.VehicleID, &inq.Name, &inq.Phone, &inq.Email, &inq.Message, &inq.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		inquiries = append(inquiries, inq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inquiries: %w", err)
	}

	return inquiries, nil
}
