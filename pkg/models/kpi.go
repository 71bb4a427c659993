package models

// KpiSet holds the derived metrics for one normalized period. Ratio fields
// are pointers: nil means the metric is undefined for this period (division
// by zero or a missing input), which is reported as-is rather than collapsed
// to zero or raised as an error.
type KpiSet struct {
	PeriodLabel string `json:"period_label"`

	GrossMargin      *float64 `json:"gross_margin,omitempty"`
	EBITDA           *float64 `json:"ebitda,omitempty"`
	EBITDAMargin     *float64 `json:"ebitda_margin,omitempty"`
	EBITMargin       *float64 `json:"ebit_margin,omitempty"`
	NetMargin        *float64 `json:"net_margin,omitempty"`
	ROE              *float64 `json:"roe,omitempty"`
	RevenueGrowthYoY *float64 `json:"revenue_growth_yoy,omitempty"`
}

// ForecastPoint is one projected period. Negative is set when the fitted
// trend extrapolates below zero; the value is reported unclamped because a
// negative projection signals an unreliable trend, not a price of -X.
type ForecastPoint struct {
	PeriodLabel string  `json:"period_label"`
	Revenue     float64 `json:"revenue"`
	Negative    bool    `json:"negative,omitempty"`
}

// Index derivation rules used by the forecaster, recorded on the series so
// consumers can tell how x values were assigned.
const (
	IndexRuleYear     = "year"     // every label parsed as an integer year
	IndexRulePosition = "position" // fallback: enumeration position 0..n-1
)

// ForecastSeries is the ordered revenue projection plus fit diagnostics.
type ForecastSeries struct {
	Points    []ForecastPoint `json:"points"`
	Horizon   int             `json:"horizon"`
	IndexRule string          `json:"index_rule"`

	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	CAGR      float64 `json:"cagr"`
}
