package models

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry is a customer question about a listed vehicle or an import in general.
type Inquiry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Name      string     `json:"name" db:"name"`
	Phone     string     `json:"phone" db:"phone"`
	Email     *string    `json:"email,omitempty" db:"email"`
	Message   string     `json:"message" db:"message"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// CreateInquiryRequest is the payload for submitting an inquiry.
type CreateInquiryRequest struct {
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     *string    `json:"email,omitempty"`
	Message   string     `json:"message"`
}
