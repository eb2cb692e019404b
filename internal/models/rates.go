package models

import "time"

// EngineBand maps an engine displacement range to a value multiplier.
// Bands are ordered by MaxCC; multipliers are non-decreasing across bands.
type EngineBand struct {
	Code       string  `json:"code"`
	Label      string  `json:"label"`
	MaxCC      int     `json:"max_cc"` // 0 means open-ended top band
	Multiplier float64 `json:"multiplier"`
}

// AgeBand maps a vehicle age range to a depreciation factor in (0,1].
// Bands are ordered by MaxYears; factors are non-increasing across bands.
type AgeBand struct {
	Code     string  `json:"code"`
	Label    string  `json:"label"`
	MaxYears int     `json:"max_years"` // 0 means open-ended top band
	Factor   float64 `json:"factor"`
}

// FeeSchedule holds the fixed clearing charges applied to every import.
type FeeSchedule struct {
	Clearing      float64 `json:"clearing"`
	Inspection    float64 `json:"inspection"`
	Documentation float64 `json:"documentation"`
	TaxProcessing float64 `json:"tax_processing"`
	Registration  float64 `json:"registration"`
	PortHandling  float64 `json:"port_handling"`
}

// Total returns the sum of all fixed fees.
func (f FeeSchedule) Total() float64 {
	return f.Clearing + f.Inspection + f.Documentation + f.TaxProcessing + f.Registration + f.PortHandling
}

// RateTable is the set of tax rates, fees and shipping costs in effect at
// computation time. A table is immutable once published; each refresh of the
// rate provider produces a new instance with a higher Version.
type RateTable struct {
	Version             int64              `json:"version"`
	FetchedAt           time.Time          `json:"fetched_at"`
	ImportDutyRate      float64            `json:"import_duty_rate"`
	ExciseDutyRate      float64            `json:"excise_duty_rate"`
	VATRate             float64            `json:"vat_rate"`
	ServiceFeeRate      float64            `json:"service_fee_rate"`
	ShippingByOrigin    map[string]float64 `json:"shipping_by_origin"`
	DefaultShippingCost float64            `json:"default_shipping_cost"`
	Fees                FeeSchedule        `json:"fees"`
	EngineBands         []EngineBand       `json:"engine_bands"`
	AgeBands            []AgeBand          `json:"age_bands"`
}

// EngineBand resolves an engine band by code.
func (t *RateTable) EngineBand(code string) (EngineBand, bool) {
	for _, b := range t.EngineBands {
		if b.Code == code {
			return b, true
		}
	}
	return EngineBand{}, false
}

// AgeBand resolves an age band by code.
func (t *RateTable) AgeBand(code string) (AgeBand, bool) {
	for _, b := range t.AgeBands {
		if b.Code == code {
			return b, true
		}
	}
	return AgeBand{}, false
}

// ShippingCost returns the base shipping cost for an origin, falling back to
// DefaultShippingCost for origins missing from the table. The second return
// reports whether the fallback was used.
func (t *RateTable) ShippingCost(origin string) (float64, bool) {
	if cost, ok := t.ShippingByOrigin[origin]; ok {
		return cost, false
	}
	return t.DefaultShippingCost, true
}
