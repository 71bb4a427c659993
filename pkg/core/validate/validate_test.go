package validate

import (
	"errors"
	"testing"

	"financial_analyst/pkg/models"
)

func samplePeriod() models.FinancialPeriod {
	return models.FinancialPeriod{
		PeriodLabel:   "2023",
		Currency:      "PLN",
		ReportingUnit: models.UnitThousands,

		Revenue:   models.Float(1000),
		EBIT:      models.Float(150),
		NetIncome: models.Float(100),

		TotalAssets:        models.Float(2000),
		TotalLiabilities:   models.Float(1000),
		Equity:             models.Float(1000),
		TotalDebt:          models.Float(500),
		CashAndEquivalents: models.Float(100),
		SharesOutstanding:  models.Float(1_000_000),
	}
}

func TestValidPeriodPasses(t *testing.T) {
	v := New(DefaultOptions())
	if err := v.ValidatePeriod(samplePeriod()); err != nil {
		t.Fatalf("expected valid period, got %v", err)
	}
}

func TestAccountingEquationTolerance(t *testing.T) {
	v := New(DefaultOptions())

	// 4% gap: 2000 vs 1920. Within the 5% relative tolerance.
	p := samplePeriod()
	p.TotalLiabilities = models.Float(960)
	p.Equity = models.Float(960)
	if err := v.ValidatePeriod(p); err != nil {
		t.Errorf("4%% gap should pass: %v", err)
	}

	// 10% gap: 2000 vs 1800. Rejected, not corrected.
	p = samplePeriod()
	p.TotalLiabilities = models.Float(900)
	p.Equity = models.Float(900)
	err := v.ValidatePeriod(p)
	if err == nil {
		t.Fatal("10% gap should fail validation")
	}
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "total_assets" {
		t.Errorf("expected total_assets field, got %q", verr.Field)
	}
}

func TestMissingRequiredFields(t *testing.T) {
	v := New(DefaultOptions())

	cases := []struct {
		name  string
		mut   func(*models.FinancialPeriod)
		field string
	}{
		{"revenue", func(p *models.FinancialPeriod) { p.Revenue = nil }, "revenue"},
		{"ebit", func(p *models.FinancialPeriod) { p.EBIT = nil }, "ebit"},
		{"equity", func(p *models.FinancialPeriod) { p.Equity = nil }, "equity"},
		{"shares", func(p *models.FinancialPeriod) { p.SharesOutstanding = nil }, "shares_outstanding"},
		{"debt", func(p *models.FinancialPeriod) { p.TotalDebt = nil }, "total_debt"},
		{"cash", func(p *models.FinancialPeriod) { p.CashAndEquivalents = nil }, "cash_and_equivalents"},
	}

	for _, tc := range cases {
		p := samplePeriod()
		tc.mut(&p)
		err := v.ValidatePeriod(p)
		if err == nil {
			t.Errorf("%s: expected failure", tc.name)
			continue
		}
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %T", tc.name, err)
			continue
		}
		if verr.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, verr.Field)
		}
	}
}

func TestSharesMustBePositive(t *testing.T) {
	v := New(DefaultOptions())
	p := samplePeriod()
	p.SharesOutstanding = models.Float(0)
	if err := v.ValidatePeriod(p); err == nil {
		t.Error("zero shares_outstanding must fail when valuation is requested")
	}
}

func TestValuationFieldsOptionalWithoutValuation(t *testing.T) {
	v := New(Options{BalanceTolerance: DefaultBalanceTolerance})
	p := samplePeriod()
	p.SharesOutstanding = nil
	p.TotalDebt = nil
	p.CashAndEquivalents = nil
	if err := v.ValidatePeriod(p); err != nil {
		t.Errorf("valuation fields should be optional when no valuation is requested: %v", err)
	}
}

func TestUnknownReportingUnit(t *testing.T) {
	v := New(DefaultOptions())
	p := samplePeriod()
	p.ReportingUnit = "lakhs"
	err := v.ValidatePeriod(p)
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "reporting_unit" {
		t.Errorf("expected reporting_unit ValidationError, got %v", err)
	}
}

func TestSeriesFailsFast(t *testing.T) {
	v := New(DefaultOptions())
	good := samplePeriod()
	bad := samplePeriod()
	bad.PeriodLabel = "2024"
	bad.Revenue = nil

	err := v.ValidateSeries([]models.FinancialPeriod{good, bad})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.PeriodLabel != "2024" {
		t.Errorf("expected offending period 2024, got %q", verr.PeriodLabel)
	}
}
