package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleDeclaration is the user-entered input to the cost estimator.
// All four fields are required before a breakdown can be computed.
type VehicleDeclaration struct {
	DeclaredValue float64 `json:"declared_value"`
	EngineBand    string  `json:"engine_band"`
	AgeBand       string  `json:"age_band"`
	Origin        string  `json:"origin"`
}

// CostBreakdown is the itemized result of a cost estimation. It is derived
// entirely from the declaration and the rate table in effect at computation
// time and is never updated retroactively; callers recompute explicitly.
// Values are unrounded; currency formatting is a presentation concern.
type CostBreakdown struct {
	DeclaredValue    float64     `json:"declared_value"`
	EngineBand       string      `json:"engine_band"`
	EngineMultiplier float64     `json:"engine_multiplier"`
	AgeBand          string      `json:"age_band"`
	AgeFactor        float64     `json:"age_factor"`
	Origin           string      `json:"origin"`
	AdjustedValue    float64     `json:"adjusted_value"`
	ImportDuty       float64     `json:"import_duty"`
	ExciseDuty       float64     `json:"excise_duty"`
	VAT              float64     `json:"vat"`
	ShippingCost     float64     `json:"shipping_cost"`
	ShippingFallback bool        `json:"shipping_fallback"`
	Fees             FeeSchedule `json:"fees"`
	FixedFeesTotal   float64     `json:"fixed_fees_total"`
	ServiceFee       float64     `json:"service_fee"`
	Total            float64     `json:"total"`
	RatesVersion     int64       `json:"rates_version"`
}

// EstimateResult is the explicit outcome variant of an estimation: either a
// full breakdown (Ready) or the list of inputs still missing or invalid.
// Incomplete input is an expected steady state while the user fills the
// form, not an error.
type EstimateResult struct {
	Ready     bool           `json:"ready"`
	Missing   []string       `json:"missing,omitempty"`
	Breakdown *CostBreakdown `json:"breakdown,omitempty"`
}

// Quote is a saved estimate tied to a customer contact.
type Quote struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	CustomerName  string             `json:"customer_name" db:"customer_name"`
	CustomerPhone string             `json:"customer_phone" db:"customer_phone"`
	CustomerEmail *string            `json:"customer_email,omitempty" db:"customer_email"`
	Declaration   VehicleDeclaration `json:"declaration"`
	Breakdown     CostBreakdown      `json:"breakdown"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
}

// CreateQuoteRequest is the payload for saving a quote.
type CreateQuoteRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	CustomerEmail *string            `json:"customer_email,omitempty"`
	Declaration   VehicleDeclaration `json:"declaration"`
}
