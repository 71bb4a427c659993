// Package normalize rescales validated records to a single reporting unit
// and currency so the KPI engine, forecaster and valuation builder all work
// on one scale. Pure: no I/O, inputs are never mutated.
package normalize

import (
	"fmt"

	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/models"
)

// UnsupportedCurrencyError is returned when a record's currency (or the
// requested target) is absent from the injected rate table. A value must
// never pass through unconverted under the target currency's label.
type UnsupportedCurrencyError struct {
	Currency string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("currency %q is not in the rate table", e.Currency)
}

// Normalize converts one record to the target unit and currency. The result
// is a fresh NormalizedPeriod; the input is left untouched.
//
// Monetary fields scale by unit_multiplier(source)/unit_multiplier(target)
// and by rates[source]/rates[target]. Share counts and rates (tax_rate) are
// not monetary and keep their values.
func Normalize(p models.FinancialPeriod, targetUnit models.Unit, targetCurrency string, rates config.RateTable) (models.NormalizedPeriod, error) {
	srcMult, ok := p.ReportingUnit.Multiplier()
	if !ok {
		return models.NormalizedPeriod{}, &models.ValidationError{
			Field:       "reporting_unit",
			PeriodLabel: p.PeriodLabel,
			Reason:      "unknown reporting unit " + string(p.ReportingUnit),
		}
	}
	dstMult, ok := targetUnit.Multiplier()
	if !ok {
		return models.NormalizedPeriod{}, &models.ValidationError{
			Field:  "target_unit",
			Reason: "unknown target unit " + string(targetUnit),
		}
	}

	srcRate, ok := rates[p.Currency]
	if !ok {
		return models.NormalizedPeriod{}, &UnsupportedCurrencyError{Currency: p.Currency}
	}
	dstRate, ok := rates[targetCurrency]
	if !ok {
		return models.NormalizedPeriod{}, &UnsupportedCurrencyError{Currency: targetCurrency}
	}

	factor := (srcMult / dstMult) * (srcRate / dstRate)

	n := models.NormalizedPeriod{
		PeriodLabel:   p.PeriodLabel,
		Currency:      targetCurrency,
		ReportingUnit: targetUnit,

		Revenue:                  scale(p.Revenue, factor),
		COGS:                     scale(p.COGS, factor),
		EBIT:                     scale(p.EBIT, factor),
		DepreciationAmortization: scale(p.DepreciationAmortization, factor),
		NetIncome:                scale(p.NetIncome, factor),
		TaxRate:                  clone(p.TaxRate),

		TotalAssets:        scale(p.TotalAssets, factor),
		TotalLiabilities:   scale(p.TotalLiabilities, factor),
		Equity:             scale(p.Equity, factor),
		TotalDebt:          scale(p.TotalDebt, factor),
		CashAndEquivalents: scale(p.CashAndEquivalents, factor),
		SharesOutstanding:  clone(p.SharesOutstanding),

		Capex: scale(p.Capex, factor),
	}
	return n, nil
}

// NormalizeSeries converts every record, preserving order. It fails on the
// first record it cannot convert.
func NormalizeSeries(periods []models.FinancialPeriod, targetUnit models.Unit, targetCurrency string, rates config.RateTable) ([]models.NormalizedPeriod, error) {
	out := make([]models.NormalizedPeriod, 0, len(periods))
	for _, p := range periods {
		n, err := Normalize(p, targetUnit, targetCurrency, rates)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}

func clone(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
