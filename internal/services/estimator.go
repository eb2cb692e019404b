package services

import "import-broker/internal/models"

// Declaration field names reported in EstimateResult.Missing.
const (
	FieldDeclaredValue = "declared_value"
	FieldEngineBand    = "engine_band"
	FieldAgeBand       = "age_band"
	FieldOrigin        = "origin"
	FieldRates         = "rates"
)

// Estimate computes an itemized import cost breakdown from a declaration and
// the rate table in effect. It is pure: no I/O, no clock, no mutation of its
// inputs. Incomplete or invalid input yields a not-ready result listing the
// offending fields; it is never an error, since the caller recomputes on
// every form change.
//
// An origin missing from the shipping table does not block computation: the
// table's default shipping cost is substituted and the breakdown's
// ShippingFallback flag is set so callers can surface it.
func Estimate(decl *models.VehicleDeclaration, rates *models.RateTable) *models.EstimateResult {
	if rates == nil {
		return &models.EstimateResult{Missing: []string{FieldRates}}
	}
	if decl == nil {
		return &models.EstimateResult{
			Missing: []string{FieldDeclaredValue, FieldEngineBand, FieldAgeBand, FieldOrigin},
		}
	}

	var missing []string
	if decl.DeclaredValue <= 0 {
		missing = append(missing, FieldDeclaredValue)
	}

	engine, engineOK := rates.EngineBand(decl.EngineBand)
	if !engineOK {
		missing = append(missing, FieldEngineBand)
	}

	age, ageOK := rates.AgeBand(decl.AgeBand)
	if !ageOK {
		missing = append(missing, FieldAgeBand)
	}

	if decl.Origin == "" {
		missing = append(missing, FieldOrigin)
	}

	if len(missing) > 0 {
		return &models.EstimateResult{Missing: missing}
	}

	adjusted := decl.DeclaredValue * engine.Multiplier * age.Factor
	importDuty := adjusted * rates.ImportDutyRate
	exciseDuty := adjusted * rates.ExciseDutyRate

	// VAT base deliberately includes duty and excise (cascading tax base).
	vat := (adjusted + importDuty + exciseDuty) * rates.VATRate

	shipping, fallback := rates.ShippingCost(decl.Origin)
	serviceFee := adjusted * rates.ServiceFeeRate
	fixedFees := rates.Fees.Total()

	total := adjusted + importDuty + exciseDuty + vat + shipping + fixedFees + serviceFee

	return &models.EstimateResult{
		Ready: true,
		Breakdown: &models.CostBreakdown{
			DeclaredValue:    decl.DeclaredValue,
			EngineBand:       engine.Code,
			EngineMultiplier: engine.Multiplier,
			AgeBand:          age.Code,
			AgeFactor:        age.Factor,
			Origin:           decl.Origin,
			AdjustedValue:    adjusted,
			ImportDuty:       importDuty,
			ExciseDuty:       exciseDuty,
			VAT:              vat,
			ShippingCost:     shipping,
			ShippingFallback: fallback,
			Fees:             rates.Fees,
			FixedFeesTotal:   fixedFees,
			ServiceFee:       serviceFee,
			Total:            total,
			RatesVersion:     rates.Version,
		},
	}
}
