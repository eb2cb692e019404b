package handlers

import (
	"context"

	"import-broker/internal/models"

	"github.com/google/uuid"
)

// ----- Calculator / Quotes -----

type QuoteService interface {
	Estimate(decl *models.VehicleDeclaration) *models.EstimateResult
	CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error)
	GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
	ListQuotes(ctx context.Context, limit, offset int) ([]*models.Quote, error)
}

type RatesProvider interface {
	Current() *models.RateTable
}

// ----- Vehicles -----

type VehicleService interface {
	CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error)
	GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, filter *models.VehicleFilter) ([]*models.Vehicle, error)
	SetAvailability(ctx context.Context, vehicleID uuid.UUID, available bool) error
}

// ----- Inquiries -----

type InquiryService interface {
	CreateInquiry(ctx context.Context, req *models.CreateInquiryRequest) (*models.Inquiry, error)
	GetInquiry(ctx context.Context, inquiryID uuid.UUID) (*models.Inquiry, error)
	ListInquiries(ctx context.Context, vehicleID *uuid.UUID, limit, offset int) ([]*models.Inquiry, error)
}

// ----- Arrivals -----

type ArrivalsProvider interface {
	Current() *models.ArrivalsSnapshot
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
