// Package models defines the canonical financial data structures shared by
// every pipeline stage. All types are plain serializable records with no
// behavior beyond small accessors; derived artifacts (NormalizedPeriod,
// KpiSet, ForecastSeries) are regenerated from the FinancialPeriod series,
// never patched in place.
package models

import "fmt"

// Unit is the scale in which monetary figures of a record are expressed.
type Unit string

const (
	UnitOnes      Unit = "units"
	UnitThousands Unit = "thousands"
	UnitMillions  Unit = "millions"
)

// Multiplier returns the factor that converts a figure in this unit into
// absolute currency units. ok is false for unknown units.
func (u Unit) Multiplier() (mult float64, ok bool) {
	switch u {
	case UnitOnes:
		return 1, true
	case UnitThousands:
		return 1_000, true
	case UnitMillions:
		return 1_000_000, true
	}
	return 0, false
}

// FinancialPeriod is one reporting period (typically a fiscal year) of one
// entity, as delivered by the extraction stage.
//
// Monetary fields are pointers: nil means "unknown", which is never the same
// as zero. The only place an absent value is treated as zero is the D&A
// add-back inside the EBITDA formula (see kpi package).
type FinancialPeriod struct {
	PeriodLabel   string `json:"period_label" validate:"required"`
	Currency      string `json:"currency" validate:"required"`
	ReportingUnit Unit   `json:"reporting_unit" validate:"required"`

	// Income statement
	Revenue                  *float64 `json:"revenue" validate:"required"`
	COGS                     *float64 `json:"cogs,omitempty"`
	EBIT                     *float64 `json:"ebit" validate:"required"`
	DepreciationAmortization *float64 `json:"depreciation_amortization,omitempty"`
	NetIncome                *float64 `json:"net_income" validate:"required"`
	TaxRate                  *float64 `json:"tax_rate,omitempty"`

	// Balance sheet
	TotalAssets        *float64 `json:"total_assets" validate:"required"`
	TotalLiabilities   *float64 `json:"total_liabilities" validate:"required"`
	Equity             *float64 `json:"equity" validate:"required"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents,omitempty"`
	SharesOutstanding  *float64 `json:"shares_outstanding,omitempty"`

	// Cash flow
	Capex *float64 `json:"capex,omitempty"`
}

// NormalizedPeriod is a FinancialPeriod rescaled to a single target unit and
// currency. Same shape, different scale. Treated as immutable once produced:
// downstream stages read it, they never write it.
type NormalizedPeriod FinancialPeriod

// CompanyReport is the container the extraction stage hands to the pipeline:
// one entity, ordered periods (oldest first).
type CompanyReport struct {
	CompanyName string            `json:"company_name"`
	Periods     []FinancialPeriod `json:"periods"`
}

// ValidationError reports a malformed or inconsistent input record. The
// engine never auto-corrects: the offending field and reason are returned to
// the caller and the dependent artifacts are not generated.
type ValidationError struct {
	Field       string `json:"field"`
	PeriodLabel string `json:"period_label,omitempty"`
	Reason      string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.PeriodLabel != "" {
		return fmt.Sprintf("validation failed for period %s, field %q: %s", e.PeriodLabel, e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Reason)
}

// Float is a convenience for building optional monetary values in callers
// and tests.
func Float(v float64) *float64 { return &v }
