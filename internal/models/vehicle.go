package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a unit in the import showcase inventory.
type Vehicle struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Registration string    `json:"registration" db:"registration"`
	Make         string    `json:"make" db:"make"`
	Model        string    `json:"model" db:"model"`
	Year         int       `json:"year" db:"year"`
	EngineCC     int       `json:"engine_cc" db:"engine_cc"`
	Mileage      int       `json:"mileage" db:"mileage"`
	Price        float64   `json:"price" db:"price"`
	Origin       string    `json:"origin" db:"origin"`
	ImageURL     *string   `json:"image_url,omitempty" db:"image_url"`
	Available    bool      `json:"available" db:"available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CreateVehicleRequest is the payload for listing a new vehicle.
type CreateVehicleRequest struct {
	Registration string  `json:"registration"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	EngineCC     int     `json:"engine_cc"`
	Mileage      int     `json:"mileage"`
	Price        float64 `json:"price"`
	Origin       string  `json:"origin"`
	ImageURL     *string `json:"image_url,omitempty"`
}

// VehicleFilter narrows inventory listings.
type VehicleFilter struct {
	Query     string
	Origin    string
	YearFrom  int
	YearTo    int
	PriceMin  float64
	PriceMax  float64
	Available *bool
	Limit     int
	Offset    int
}
