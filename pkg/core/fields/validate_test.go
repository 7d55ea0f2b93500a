package fields

import (
	"testing"

	"finmodel/pkg/models"
)

func testInput(vals map[string]float64) models.PeriodInput {
	p := make(models.PeriodInput, len(vals))
	for k, v := range vals {
		c := v
		p[k] = &c
	}
	return p
}

func validPeriod() models.PeriodInput {
	return testInput(map[string]float64{
		"revenue":           1000000,
		"grossMarginPct":    45,
		"operatingExpenses": 300000,
	})
}

func TestValidateAllFieldsAcceptsValidInput(t *testing.T) {
	errs := ValidateAllFields([]models.PeriodInput{validPeriod(), validPeriod()})
	if len(errs) != 0 {
		t.Errorf("Expected no errors, got %+v", errs)
	}
}

func TestValidateAllFieldsMissingRequired(t *testing.T) {
	p := validPeriod()
	delete(p, "revenue")

	errs := ValidateAllFields([]models.PeriodInput{p})
	if len(errs) != 1 {
		t.Fatalf("Expected 1 period error, got %d", len(errs))
	}
	if errs[0].Period != 1 {
		t.Errorf("Expected period 1 (1-based), got %d", errs[0].Period)
	}
	if _, ok := errs[0].Fields["revenue"]; !ok {
		t.Errorf("Expected an error keyed 'revenue', got %+v", errs[0].Fields)
	}
}

func TestValidateAllFieldsUnknownKey(t *testing.T) {
	p := validPeriod()
	v := 42.0
	p["override_netPorfit"] = &v // misspelled override must not be a silent no-op

	errs := ValidateAllFields([]models.PeriodInput{p})
	if len(errs) != 1 {
		t.Fatalf("Expected 1 period error, got %d", len(errs))
	}
	if msg := errs[0].Fields["override_netPorfit"]; msg != "unknown field" {
		t.Errorf("Expected 'unknown field', got %q", msg)
	}
}

func TestValidateAllFieldsFirstPeriodOnly(t *testing.T) {
	second := validPeriod()
	v := 100000.0
	second["openingCash"] = &v

	errs := ValidateAllFields([]models.PeriodInput{validPeriod(), second})
	if len(errs) != 1 {
		t.Fatalf("Expected 1 period error, got %d", len(errs))
	}
	if errs[0].Period != 2 {
		t.Errorf("Expected period 2, got %d", errs[0].Period)
	}
	if msg := errs[0].Fields["openingCash"]; msg != "only applies to the first period" {
		t.Errorf("Unexpected message: %q", msg)
	}
}

func TestValidateAllFieldsRangeChecks(t *testing.T) {
	p := testInput(map[string]float64{
		"revenue":           -5,  // negative
		"grossMarginPct":    120, // above 100
		"operatingExpenses": 300000,
		"taxRatePct":        -1, // outside 0..100
	})

	errs := ValidateAllFields([]models.PeriodInput{p})
	if len(errs) != 1 {
		t.Fatalf("Expected 1 period error, got %d", len(errs))
	}
	fields := errs[0].Fields
	if fields["revenue"] != "must not be negative" {
		t.Errorf("Unexpected revenue message: %q", fields["revenue"])
	}
	if fields["grossMarginPct"] != "percentage cannot exceed 100" {
		t.Errorf("Unexpected margin message: %q", fields["grossMarginPct"])
	}
	if fields["taxRatePct"] != "percentage must be between 0 and 100" {
		t.Errorf("Unexpected tax rate message: %q", fields["taxRatePct"])
	}
}

func TestValidateAllFieldsErrorsPerPeriod(t *testing.T) {
	bad := validPeriod()
	delete(bad, "grossMarginPct")

	errs := ValidateAllFields([]models.PeriodInput{validPeriod(), bad, bad})
	if len(errs) != 2 {
		t.Fatalf("Expected 2 period errors, got %d", len(errs))
	}
	if errs[0].Period != 2 || errs[1].Period != 3 {
		t.Errorf("Expected periods 2 and 3, got %d and %d", errs[0].Period, errs[1].Period)
	}
}

func TestRegistryLookup(t *testing.T) {
	def, ok := Lookup(KeyOverrideNetProfit)
	if !ok {
		t.Fatal("Expected override_netProfit in the registry")
	}
	if def.Category != OverridePL {
		t.Errorf("Expected category %s, got %s", OverridePL, def.Category)
	}

	if _, ok := Lookup("nope"); ok {
		t.Error("Expected lookup miss for an unregistered key")
	}

	required := FieldKeys(DriverRequired)
	// revenue, grossMarginPct, operatingExpenses
	if len(required) != 3 {
		t.Errorf("Expected 3 required drivers, got %d: %v", len(required), required)
	}
}
