// Package validate is the schema boundary of the pipeline: everything
// downstream of it only ever sees records that passed the structural and
// accounting checks. A failed check yields a field-level ValidationError,
// never a silent correction or a defaulted value.
package validate

import (
	"math"
	"reflect"
	"strings"

	"financial_analyst/pkg/models"

	"github.com/go-playground/validator/v10"
)

// DefaultBalanceTolerance is the allowed relative gap in the accounting
// equation Assets = Liabilities + Equity.
const DefaultBalanceTolerance = 0.05

// Options controls how strict a Validator is.
type Options struct {
	// BalanceTolerance is the relative tolerance for A = L + E.
	BalanceTolerance float64
	// RequireValuationFields adds the fields a per-share DCF needs:
	// shares_outstanding (> 0), total_debt, cash_and_equivalents.
	RequireValuationFields bool
}

// DefaultOptions returns the strict defaults used by the orchestrator.
func DefaultOptions() Options {
	return Options{
		BalanceTolerance:       DefaultBalanceTolerance,
		RequireValuationFields: true,
	}
}

// Validator checks FinancialPeriod records. It holds no mutable state after
// construction and is safe for concurrent use.
type Validator struct {
	opts  Options
	check *validator.Validate
}

// New builds a Validator. Struct-tag violations are reported under the
// field's json name so callers see wire-level names, not Go identifiers.
func New(opts Options) *Validator {
	if opts.BalanceTolerance <= 0 {
		opts.BalanceTolerance = DefaultBalanceTolerance
	}
	check := validator.New()
	check.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{opts: opts, check: check}
}

// ValidatePeriod runs all checks on a single record. Pure: no side effects,
// the record is never modified.
func (v *Validator) ValidatePeriod(p models.FinancialPeriod) error {
	// 1. Structural check: required fields present (nil pointers fail).
	if err := v.check.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return &models.ValidationError{
				Field:       verrs[0].Field(),
				PeriodLabel: p.PeriodLabel,
				Reason:      "required field is missing",
			}
		}
		return err
	}

	// 2. Reporting unit must be one the normalizer understands.
	if _, ok := p.ReportingUnit.Multiplier(); !ok {
		return &models.ValidationError{
			Field:       "reporting_unit",
			PeriodLabel: p.PeriodLabel,
			Reason:      "unknown reporting unit " + string(p.ReportingUnit),
		}
	}

	// 3. Accounting equation: |A - (L + E)| <= tolerance * |A|.
	assets := *p.TotalAssets
	liabEq := *p.TotalLiabilities + *p.Equity
	if math.Abs(assets-liabEq) > v.opts.BalanceTolerance*math.Abs(assets) {
		return &models.ValidationError{
			Field:       "total_assets",
			PeriodLabel: p.PeriodLabel,
			Reason:      "accounting equation violated: assets != liabilities + equity beyond tolerance",
		}
	}

	// 4. Valuation prerequisites, only when a valuation is requested.
	if v.opts.RequireValuationFields {
		if p.SharesOutstanding == nil {
			return &models.ValidationError{
				Field:       "shares_outstanding",
				PeriodLabel: p.PeriodLabel,
				Reason:      "required for per-share valuation",
			}
		}
		if *p.SharesOutstanding <= 0 {
			return &models.ValidationError{
				Field:       "shares_outstanding",
				PeriodLabel: p.PeriodLabel,
				Reason:      "must be positive for per-share valuation",
			}
		}
		if p.TotalDebt == nil {
			return &models.ValidationError{
				Field:       "total_debt",
				PeriodLabel: p.PeriodLabel,
				Reason:      "required for the equity bridge",
			}
		}
		if p.CashAndEquivalents == nil {
			return &models.ValidationError{
				Field:       "cash_and_equivalents",
				PeriodLabel: p.PeriodLabel,
				Reason:      "required for the equity bridge",
			}
		}
	}

	return nil
}

// ValidateSeries validates every record in order, failing fast on the first
// offending period.
func (v *Validator) ValidateSeries(periods []models.FinancialPeriod) error {
	for _, p := range periods {
		if err := v.ValidatePeriod(p); err != nil {
			return err
		}
	}
	return nil
}
