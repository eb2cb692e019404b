package services

import (
	"math"
	"testing"

	"import-broker/internal/models"
)

func testRateTable() *models.RateTable {
	return &models.RateTable{
		Version:        7,
		ImportDutyRate: 0.25,
		ExciseDutyRate: 0.25,
		VATRate:        0.16,
		ServiceFeeRate: 0.03,
		ShippingByOrigin: map[string]float64{
			"japan":     150000,
			"uk":        220000,
			"uae":       180000,
			"singapore": 160000,
		},
		DefaultShippingCost: 150000,
		Fees: models.FeeSchedule{
			Clearing:      85000,
			Inspection:    15000,
			Documentation: 25000,
			TaxProcessing: 5000,
			Registration:  3000,
			PortHandling:  12000,
		},
		EngineBands: []models.EngineBand{
			{Code: "0-1000", Label: "Up to 1000cc", MaxCC: 1000, Multiplier: 1.0},
			{Code: "1001-1500", Label: "1001–1500cc", MaxCC: 1500, Multiplier: 1.1},
			{Code: "1501-2000", Label: "1501–2000cc", MaxCC: 2000, Multiplier: 1.2},
			{Code: "2001-3000", Label: "2001–3000cc", MaxCC: 3000, Multiplier: 1.35},
			{Code: "3001+", Label: "Above 3000cc", Multiplier: 1.5},
		},
		AgeBands: []models.AgeBand{
			{Code: "0-1", Label: "Under 1 year", MaxYears: 1, Factor: 1.0},
			{Code: "1-2", Label: "1–2 years", MaxYears: 2, Factor: 0.95},
			{Code: "2-4", Label: "2–4 years", MaxYears: 4, Factor: 0.85},
			{Code: "4-6", Label: "4–6 years", MaxYears: 6, Factor: 0.75},
			{Code: "6-8", Label: "6–8 years", MaxYears: 8, Factor: 0.65},
			{Code: "8+", Label: "Over 8 years", Factor: 0.5},
		},
	}
}

func testDeclaration() *models.VehicleDeclaration {
	return &models.VehicleDeclaration{
		DeclaredValue: 2500000,
		EngineBand:    "1501-2000",
		AgeBand:       "1-2",
		Origin:        "japan",
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEstimate_WorkedExample(t *testing.T) {
	result := Estimate(testDeclaration(), testRateTable())
	if !result.Ready {
		t.Fatalf("expected ready result, missing: %v", result.Missing)
	}

	b := result.Breakdown
	if !almostEqual(b.AdjustedValue, 2850000) {
		t.Fatalf("adjusted value: expected 2850000, got %f", b.AdjustedValue)
	}
	if !almostEqual(b.ImportDuty, 712500) {
		t.Fatalf("import duty: expected 712500, got %f", b.ImportDuty)
	}
	if !almostEqual(b.ExciseDuty, 712500) {
		t.Fatalf("excise duty: expected 712500, got %f", b.ExciseDuty)
	}
	if !almostEqual(b.VAT, 684000) {
		t.Fatalf("vat: expected 684000, got %f", b.VAT)
	}
	if !almostEqual(b.ShippingCost, 150000) {
		t.Fatalf("shipping: expected 150000, got %f", b.ShippingCost)
	}
	if b.ShippingFallback {
		t.Fatalf("did not expect shipping fallback for known origin")
	}
	if !almostEqual(b.FixedFeesTotal, 145000) {
		t.Fatalf("fixed fees: expected 145000, got %f", b.FixedFeesTotal)
	}
	if !almostEqual(b.ServiceFee, 85500) {
		t.Fatalf("service fee: expected 85500, got %f", b.ServiceFee)
	}
	if !almostEqual(b.Total, 5339500) {
		t.Fatalf("total: expected 5339500, got %f", b.Total)
	}
	if b.RatesVersion != 7 {
		t.Fatalf("expected rates version carried into breakdown")
	}
}

func TestEstimate_AdjustedValueFormula(t *testing.T) {
	rates := testRateTable()
	decl := testDeclaration()
	decl.DeclaredValue = 1234567
	decl.EngineBand = "2001-3000"
	decl.AgeBand = "4-6"

	result := Estimate(decl, rates)
	if !result.Ready {
		t.Fatalf("expected ready result")
	}
	want := 1234567 * 1.35 * 0.75
	if !almostEqual(result.Breakdown.AdjustedValue, want) {
		t.Fatalf("adjusted value: expected %f, got %f", want, result.Breakdown.AdjustedValue)
	}
}

func TestEstimate_VATIncludesDutyBase(t *testing.T) {
	result := Estimate(testDeclaration(), testRateTable())
	if !result.Ready {
		t.Fatalf("expected ready result")
	}

	b := result.Breakdown
	wantVAT := (b.AdjustedValue + b.ImportDuty + b.ExciseDuty) * 0.16
	if !almostEqual(b.VAT, wantVAT) {
		t.Fatalf("vat: expected cascading base %f, got %f", wantVAT, b.VAT)
	}

	naive := b.AdjustedValue * 0.16
	if almostEqual(b.VAT, naive) {
		t.Fatalf("vat must differ from naive adjusted-value base when duty rates are nonzero")
	}
}

func TestEstimate_TotalIsExactSumOfComponents(t *testing.T) {
	result := Estimate(testDeclaration(), testRateTable())
	if !result.Ready {
		t.Fatalf("expected ready result")
	}

	b := result.Breakdown
	sum := b.AdjustedValue + b.ImportDuty + b.ExciseDuty + b.VAT + b.ShippingCost + b.FixedFeesTotal + b.ServiceFee
	if b.Total != sum {
		t.Fatalf("total %f is not the exact sum of components %f", b.Total, sum)
	}

	fees := b.Fees
	feeSum := fees.Clearing + fees.Inspection + fees.Documentation + fees.TaxProcessing + fees.Registration + fees.PortHandling
	if b.FixedFeesTotal != feeSum {
		t.Fatalf("fixed fee total %f does not match itemized fees %f", b.FixedFeesTotal, feeSum)
	}
}

func TestEstimate_MissingFieldsIndependently(t *testing.T) {
	rates := testRateTable()

	cases := []struct {
		name   string
		mutate func(*models.VehicleDeclaration)
		field  string
	}{
		{"missing value", func(d *models.VehicleDeclaration) { d.DeclaredValue = 0 }, FieldDeclaredValue},
		{"negative value", func(d *models.VehicleDeclaration) { d.DeclaredValue = -1 }, FieldDeclaredValue},
		{"missing engine band", func(d *models.VehicleDeclaration) { d.EngineBand = "" }, FieldEngineBand},
		{"unknown engine band", func(d *models.VehicleDeclaration) { d.EngineBand = "9999cc" }, FieldEngineBand},
		{"missing age band", func(d *models.VehicleDeclaration) { d.AgeBand = "" }, FieldAgeBand},
		{"unknown age band", func(d *models.VehicleDeclaration) { d.AgeBand = "antique" }, FieldAgeBand},
		{"missing origin", func(d *models.VehicleDeclaration) { d.Origin = "" }, FieldOrigin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decl := testDeclaration()
			tc.mutate(decl)

			result := Estimate(decl, rates)
			if result.Ready {
				t.Fatalf("expected not ready")
			}
			if result.Breakdown != nil {
				t.Fatalf("expected no partial breakdown")
			}
			found := false
			for _, f := range result.Missing {
				if f == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s in missing fields, got %v", tc.field, result.Missing)
			}
		})
	}
}

func TestEstimate_NilInputs(t *testing.T) {
	if result := Estimate(nil, testRateTable()); result.Ready || len(result.Missing) != 4 {
		t.Fatalf("expected all four fields missing for nil declaration, got %+v", result)
	}
	if result := Estimate(testDeclaration(), nil); result.Ready || len(result.Missing) != 1 || result.Missing[0] != FieldRates {
		t.Fatalf("expected rates missing for nil table, got %+v", result)
	}
}

func TestEstimate_UnknownOriginFallsBack(t *testing.T) {
	decl := testDeclaration()
	decl.Origin = "atlantis"

	result := Estimate(decl, testRateTable())
	if !result.Ready {
		t.Fatalf("unknown origin must not block computation, missing: %v", result.Missing)
	}
	if !result.Breakdown.ShippingFallback {
		t.Fatalf("expected shipping fallback flag set")
	}
	if !almostEqual(result.Breakdown.ShippingCost, 150000) {
		t.Fatalf("expected documented fallback shipping 150000, got %f", result.Breakdown.ShippingCost)
	}
}

func TestEstimate_DepreciationNeverInflatesBelowMaxMultiplier(t *testing.T) {
	rates := testRateTable()
	decl := testDeclaration()
	decl.EngineBand = "0-1000" // multiplier 1.0
	decl.AgeBand = "8+"        // factor 0.5

	result := Estimate(decl, rates)
	if !result.Ready {
		t.Fatalf("expected ready result")
	}
	if result.Breakdown.AdjustedValue > decl.DeclaredValue {
		t.Fatalf("adjusted value %f exceeds declared value %f with unit multiplier", result.Breakdown.AdjustedValue, decl.DeclaredValue)
	}
}

func TestEstimate_InputsNotMutated(t *testing.T) {
	rates := testRateTable()
	decl := testDeclaration()
	before := *decl
	version := rates.Version

	_ = Estimate(decl, rates)

	if *decl != before {
		t.Fatalf("declaration mutated by estimate")
	}
	if rates.Version != version {
		t.Fatalf("rate table mutated by estimate")
	}
}
