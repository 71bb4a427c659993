// Package valuation assembles a discounted-cash-flow model as a dependency
// graph of named cells over user-adjustable assumptions. Pure: no I/O, no
// shared state; safe to call concurrently with independent inputs.
package valuation

import (
	"fmt"
	"math"
	"strings"

	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/models"
)

// InvalidAssumptionError reports an assumption the DCF math cannot work
// with, e.g. WACC <= terminal growth (the Gordon denominator would be
// non-positive).
type InvalidAssumptionError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidAssumptionError) Error() string {
	return fmt.Sprintf("invalid assumption %s=%v: %s", e.Name, e.Value, e.Reason)
}

// NoForecastError is returned when a valuation is requested without a usable
// forecast. No partially-populated model is emitted; the caller decides
// whether to omit the valuation section entirely.
type NoForecastError struct{}

func (e *NoForecastError) Error() string {
	return "valuation requested without a usable revenue forecast"
}

// BuildDCF assembles the valuation model from the normalized history, the
// revenue forecast and the assumptions.
//
// Per forecast period n (1-based):
//
//	ebit_n  = revenue_n * ebit_margin
//	nopat_n = ebit_n * (1 - tax_rate)
//	fcf_n   = nopat_n + da_n - capex_n - wc_delta_n
//	wc_delta_n = wc_pct_of_revenue_delta * (revenue_n - revenue_{n-1})
//	discount_factor_n = 1 / (1 + wacc)^n
//	pv_n    = fcf_n * discount_factor_n
//
// then terminal_value = fcf_N * (1 + g) / (wacc - g), discounted at the
// final factor, enterprise value is the PV sum, and the equity bridge
// subtracts net debt from the latest historical period. The working-capital
// term is always present; it is zero only because the assumption says so.
func BuildDCF(history []models.NormalizedPeriod, fc *models.ForecastSeries, a config.Assumptions) (*ValuationModel, error) {
	if fc == nil || len(fc.Points) == 0 {
		return nil, &NoForecastError{}
	}
	if len(history) == 0 {
		return nil, &models.ValidationError{
			Field:  "history",
			Reason: "at least one historical period is required for the equity bridge",
		}
	}
	if a.WACC <= a.TerminalGrowth {
		return nil, &InvalidAssumptionError{
			Name:   "wacc",
			Value:  a.WACC,
			Reason: fmt.Sprintf("must exceed terminal growth %v", a.TerminalGrowth),
		}
	}

	latest := history[len(history)-1]

	if latest.SharesOutstanding == nil || *latest.SharesOutstanding <= 0 {
		return nil, &models.ValidationError{
			Field:       "shares_outstanding",
			PeriodLabel: latest.PeriodLabel,
			Reason:      "positive share count required for per-share valuation",
		}
	}
	if latest.TotalDebt == nil || latest.CashAndEquivalents == nil {
		return nil, &models.ValidationError{
			Field:       "total_debt",
			PeriodLabel: latest.PeriodLabel,
			Reason:      "total_debt and cash_and_equivalents required for the equity bridge",
		}
	}

	taxRate := resolveTaxRate(a, latest)
	ebitMargin, err := resolveEBITMargin(a, latest)
	if err != nil {
		return nil, err
	}
	daPct := resolveRatio(a.DAPctOfRevenue, latest.DepreciationAmortization, latest.Revenue)
	capexPct := resolveRatio(a.CapexPctOfRevenue, latest.Capex, latest.Revenue)

	unitMult, ok := a.TargetUnit.Multiplier()
	if !ok {
		return nil, &InvalidAssumptionError{Name: "target_unit", Reason: "unknown reporting unit " + string(a.TargetUnit)}
	}

	m := &ValuationModel{
		Assumptions:       a,
		Currency:          latest.Currency,
		ReportingUnit:     a.TargetUnit,
		SharesOutstanding: *latest.SharesOutstanding,
	}

	// Input cells: every assumption the formulas reference.
	m.addInput("wacc", a.WACC)
	m.addInput("terminal_growth", a.TerminalGrowth)
	m.addInput("tax_rate", taxRate)
	m.addInput("ebit_margin", ebitMargin)
	m.addInput("da_pct_of_revenue", daPct)
	m.addInput("capex_pct_of_revenue", capexPct)
	m.addInput("wc_pct_of_revenue_delta", a.WCPctOfRevenueDelta)
	m.addInput("unit_multiplier", unitMult)
	m.addInput("shares_outstanding", *latest.SharesOutstanding)
	m.addInput("total_debt", *latest.TotalDebt)
	m.addInput("cash_and_equivalents", *latest.CashAndEquivalents)

	// revenue_0 anchors the first working-capital delta.
	lastRevenue := 0.0
	if latest.Revenue != nil {
		lastRevenue = *latest.Revenue
	}
	m.addInput("revenue_0", lastRevenue)

	var pvSum float64
	var pvNames []string
	prevRevenue := lastRevenue
	n := len(fc.Points)

	for i, point := range fc.Points {
		idx := i + 1
		revenue := point.Revenue
		ebit := revenue * ebitMargin
		nopat := ebit * (1 - taxRate)
		da := revenue * daPct
		capex := revenue * capexPct
		wcDelta := a.WCPctOfRevenueDelta * (revenue - prevRevenue)
		fcf := nopat + da - capex - wcDelta
		df := 1 / math.Pow(1+a.WACC, float64(idx))
		pv := fcf * df

		rev := cellName("revenue", idx)
		m.addInput(rev, revenue)
		m.addDerived(cellName("ebit", idx), ebit,
			fmt.Sprintf("%s * ebit_margin", rev), rev, "ebit_margin")
		m.addDerived(cellName("nopat", idx), nopat,
			fmt.Sprintf("%s * (1 - tax_rate)", cellName("ebit", idx)), cellName("ebit", idx), "tax_rate")
		m.addDerived(cellName("da", idx), da,
			fmt.Sprintf("%s * da_pct_of_revenue", rev), rev, "da_pct_of_revenue")
		m.addDerived(cellName("capex", idx), capex,
			fmt.Sprintf("%s * capex_pct_of_revenue", rev), rev, "capex_pct_of_revenue")
		m.addDerived(cellName("wc_delta", idx), wcDelta,
			fmt.Sprintf("wc_pct_of_revenue_delta * (%s - %s)", rev, cellName("revenue", idx-1)),
			"wc_pct_of_revenue_delta", rev, cellName("revenue", idx-1))
		m.addDerived(cellName("fcf", idx), fcf,
			fmt.Sprintf("%s + %s - %s - %s",
				cellName("nopat", idx), cellName("da", idx), cellName("capex", idx), cellName("wc_delta", idx)),
			cellName("nopat", idx), cellName("da", idx), cellName("capex", idx), cellName("wc_delta", idx))
		m.addDerived(cellName("discount_factor", idx), df,
			fmt.Sprintf("1 / (1 + wacc)^%d", idx), "wacc")
		m.addDerived(cellName("pv", idx), pv,
			fmt.Sprintf("%s * %s", cellName("fcf", idx), cellName("discount_factor", idx)),
			cellName("fcf", idx), cellName("discount_factor", idx))

		m.Projection = append(m.Projection, CashFlowLine{
			PeriodLabel:         point.PeriodLabel,
			Revenue:             revenue,
			EBIT:                ebit,
			NOPAT:               nopat,
			DA:                  da,
			Capex:               capex,
			WorkingCapitalDelta: wcDelta,
			FCF:                 fcf,
			DiscountFactor:      df,
			PresentValue:        pv,
		})

		pvSum += pv
		pvNames = append(pvNames, cellName("pv", idx))
		prevRevenue = revenue
	}

	lastLine := m.Projection[n-1]
	m.TerminalValue = lastLine.FCF * (1 + a.TerminalGrowth) / (a.WACC - a.TerminalGrowth)
	m.addDerived("terminal_value", m.TerminalValue,
		fmt.Sprintf("%s * (1 + terminal_growth) / (wacc - terminal_growth)", cellName("fcf", n)),
		cellName("fcf", n), "terminal_growth", "wacc")

	m.PVTerminal = m.TerminalValue * lastLine.DiscountFactor
	m.addDerived("pv_terminal", m.PVTerminal,
		fmt.Sprintf("terminal_value * %s", cellName("discount_factor", n)),
		"terminal_value", cellName("discount_factor", n))

	m.EnterpriseValue = pvSum + m.PVTerminal
	m.addDerived("enterprise_value", m.EnterpriseValue,
		strings.Join(append(pvNames, "pv_terminal"), " + "),
		append(pvNames, "pv_terminal")...)

	m.NetDebt = *latest.TotalDebt - *latest.CashAndEquivalents
	m.addDerived("net_debt", m.NetDebt,
		"total_debt - cash_and_equivalents", "total_debt", "cash_and_equivalents")

	m.EquityValue = m.EnterpriseValue - m.NetDebt
	m.addDerived("equity_value", m.EquityValue,
		"enterprise_value - net_debt", "enterprise_value", "net_debt")

	// Shares are a raw count while the equity value carries the model's
	// reporting unit; the multiplier bridges the two scales.
	m.ImpliedSharePrice = m.EquityValue * unitMult / *latest.SharesOutstanding
	m.addDerived("implied_share_price", m.ImpliedSharePrice,
		"equity_value * unit_multiplier / shares_outstanding",
		"equity_value", "unit_multiplier", "shares_outstanding")

	return m, nil
}

func cellName(base string, idx int) string {
	return fmt.Sprintf("%s_%d", base, idx)
}

// resolveTaxRate: explicit assumption override wins, then the record's own
// effective rate, then the documented default.
func resolveTaxRate(a config.Assumptions, latest models.NormalizedPeriod) float64 {
	if a.TaxRate != nil {
		return *a.TaxRate
	}
	if latest.TaxRate != nil {
		return *latest.TaxRate
	}
	return config.DefaultTaxRate
}

// resolveEBITMargin: assumption override, else the latest observed margin.
// Underivable margins are an assumption problem, not a silent zero.
func resolveEBITMargin(a config.Assumptions, latest models.NormalizedPeriod) (float64, error) {
	if a.EBITMargin != nil {
		return *a.EBITMargin, nil
	}
	if latest.EBIT != nil && latest.Revenue != nil && *latest.Revenue != 0 {
		return *latest.EBIT / *latest.Revenue, nil
	}
	return 0, &InvalidAssumptionError{
		Name:   "ebit_margin",
		Reason: "no override given and the latest period has no derivable EBIT margin",
	}
}

// resolveRatio handles the zero-safe add-backs (D&A, capex): override, else
// the latest observed pct of revenue (capex as outflow magnitude), else 0.
func resolveRatio(override, observed, revenue *float64) float64 {
	if override != nil {
		return *override
	}
	if observed != nil && revenue != nil && *revenue != 0 {
		return math.Abs(*observed / *revenue)
	}
	return 0
}
