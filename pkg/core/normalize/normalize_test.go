package normalize

import (
	"errors"
	"math"
	"testing"

	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/models"
)

func eurPeriod() models.FinancialPeriod {
	return models.FinancialPeriod{
		PeriodLabel:       "2024",
		Currency:          "EUR",
		ReportingUnit:     models.UnitThousands,
		Revenue:           models.Float(100),
		EBIT:              models.Float(30),
		NetIncome:         models.Float(24),
		TotalAssets:       models.Float(200),
		TotalLiabilities:  models.Float(100),
		Equity:            models.Float(100),
		SharesOutstanding: models.Float(100),
		TaxRate:           models.Float(0.19),
	}
}

func TestCurrencyConversionEURToPLN(t *testing.T) {
	rates := config.RateTable{"PLN": 1.0, "EUR": 4.3}

	n, err := Normalize(eurPeriod(), models.UnitThousands, "PLN", rates)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if n.Currency != "PLN" {
		t.Errorf("expected PLN, got %s", n.Currency)
	}
	if *n.Revenue != 430.0 {
		t.Errorf("expected revenue 430, got %f", *n.Revenue)
	}
	if *n.TotalAssets != 860.0 {
		t.Errorf("expected assets 860, got %f", *n.TotalAssets)
	}
	// Non-monetary fields keep their values.
	if *n.SharesOutstanding != 100 {
		t.Errorf("share count must not be converted, got %f", *n.SharesOutstanding)
	}
	if *n.TaxRate != 0.19 {
		t.Errorf("tax rate must not be converted, got %f", *n.TaxRate)
	}
}

func TestUnitRescaling(t *testing.T) {
	rates := config.RateTable{"PLN": 1.0}
	p := eurPeriod()
	p.Currency = "PLN"

	n, err := Normalize(p, models.UnitMillions, "PLN", rates)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	// thousands -> millions: divide by 1000.
	if *n.Revenue != 0.1 {
		t.Errorf("expected revenue 0.1, got %f", *n.Revenue)
	}
	if n.ReportingUnit != models.UnitMillions {
		t.Errorf("expected millions, got %s", n.ReportingUnit)
	}
}

func TestRoundTrip(t *testing.T) {
	rates := config.RateTable{"PLN": 1.0, "EUR": 4.3}
	src := eurPeriod()

	there, err := Normalize(src, models.UnitMillions, "PLN", rates)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	back, err := Normalize(models.FinancialPeriod(there), models.UnitThousands, "EUR", rates)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if math.Abs(*back.Revenue-*src.Revenue) > 1e-9 {
		t.Errorf("round trip drifted: %f vs %f", *back.Revenue, *src.Revenue)
	}
	if math.Abs(*back.Equity-*src.Equity) > 1e-9 {
		t.Errorf("round trip drifted: %f vs %f", *back.Equity, *src.Equity)
	}
}

func TestUnsupportedCurrencyNeverPassesThrough(t *testing.T) {
	rates := config.RateTable{"EUR": 4.3, "USD": 4.05, "PLN": 1.0}
	p := eurPeriod()
	p.Currency = "GBP"

	_, err := Normalize(p, models.UnitThousands, "PLN", rates)
	var uerr *UnsupportedCurrencyError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnsupportedCurrencyError, got %v", err)
	}
	if uerr.Currency != "GBP" {
		t.Errorf("expected GBP in error, got %q", uerr.Currency)
	}
}

func TestUnsupportedTargetCurrency(t *testing.T) {
	rates := config.RateTable{"EUR": 4.3}
	_, err := Normalize(eurPeriod(), models.UnitThousands, "CHF", rates)
	var uerr *UnsupportedCurrencyError
	if !errors.As(err, &uerr) || uerr.Currency != "CHF" {
		t.Errorf("expected UnsupportedCurrencyError for CHF, got %v", err)
	}
}

func TestUnknownFieldsStayUnknown(t *testing.T) {
	rates := config.RateTable{"EUR": 4.3, "PLN": 1.0}
	p := eurPeriod() // COGS, TotalDebt, Capex left nil

	n, err := Normalize(p, models.UnitThousands, "PLN", rates)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if n.COGS != nil || n.TotalDebt != nil || n.Capex != nil {
		t.Error("absent fields must remain nil, not become zero")
	}
}

func TestInputNotMutated(t *testing.T) {
	rates := config.RateTable{"EUR": 4.3, "PLN": 1.0}
	p := eurPeriod()

	if _, err := Normalize(p, models.UnitThousands, "PLN", rates); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if *p.Revenue != 100 || p.Currency != "EUR" {
		t.Error("source record was mutated")
	}
}
