// Package kpi derives margins, EBITDA, ROE and period-over-period growth
// from normalized records. Undefined results (division by zero, missing
// inputs) are nil, never zero and never an error; the undefined-vs-zero
// distinction lives in exactly one place, SafeDiv.
package kpi

import "financial_analyst/pkg/models"

// SafeDiv divides num by den, returning nil when the quotient is undefined.
// Every ratio in this package goes through it.
func SafeDiv(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	q := num / den
	return &q
}

// Compute returns one KpiSet per normalized period, parallel to the input.
//
// Formulas:
//
//	gross_margin       = (revenue - cogs) / revenue   (undefined without cogs)
//	ebitda             = ebit + d&a                   (missing d&a counts as 0)
//	ebitda_margin      = ebitda / revenue
//	ebit_margin        = ebit / revenue
//	net_margin         = net_income / revenue
//	roe                = net_income / equity
//	revenue_growth_yoy = (rev[i] - rev[i-1]) / rev[i-1], undefined at i = 0
func Compute(series []models.NormalizedPeriod) []models.KpiSet {
	out := make([]models.KpiSet, 0, len(series))

	for i, p := range series {
		set := models.KpiSet{PeriodLabel: p.PeriodLabel}

		if p.Revenue != nil {
			rev := *p.Revenue

			if p.COGS != nil {
				set.GrossMargin = SafeDiv(rev-*p.COGS, rev)
			}
			if p.EBIT != nil {
				// The one documented zero-safe default: a missing D&A
				// add-back contributes nothing to EBITDA.
				da := 0.0
				if p.DepreciationAmortization != nil {
					da = *p.DepreciationAmortization
				}
				ebitda := *p.EBIT + da
				set.EBITDA = &ebitda
				set.EBITDAMargin = SafeDiv(ebitda, rev)
				set.EBITMargin = SafeDiv(*p.EBIT, rev)
			}
			if p.NetIncome != nil {
				set.NetMargin = SafeDiv(*p.NetIncome, rev)
			}
		}

		if p.NetIncome != nil && p.Equity != nil {
			set.ROE = SafeDiv(*p.NetIncome, *p.Equity)
		}

		if i > 0 {
			prev := series[i-1]
			if p.Revenue != nil && prev.Revenue != nil {
				set.RevenueGrowthYoY = SafeDiv(*p.Revenue-*prev.Revenue, *prev.Revenue)
			}
		}

		out = append(out, set)
	}
	return out
}
