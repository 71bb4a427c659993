// Package pipeline composes the engine stages into a linear sequence:
// Validator -> Normalizer -> KPI Engine -> Forecaster -> Valuation Builder.
// The orchestrator is a thin layer: each stage is a pure transformation and
// all configuration (rate table, assumptions, tolerances) is injected, so
// independent invocations share nothing and may run concurrently.
package pipeline

import (
	"errors"
	"fmt"

	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/core/forecast"
	"financial_analyst/pkg/core/kpi"
	"financial_analyst/pkg/core/normalize"
	"financial_analyst/pkg/core/validate"
	"financial_analyst/pkg/core/valuation"
	"financial_analyst/pkg/models"

	"github.com/rs/zerolog"
)

// Result bundles the derived artifacts of one run. Later artifacts may be
// nil when their stage failed while earlier ones succeeded; Run's error
// reports the first blocking failure so the caller can decide which
// sections to omit. Figures themselves are never logged here.
type Result struct {
	CompanyName string                    `json:"company_name,omitempty"`
	Normalized  []models.NormalizedPeriod `json:"normalized"`
	KPIs        []models.KpiSet           `json:"kpis"`
	Forecast    *models.ForecastSeries    `json:"forecast,omitempty"`
	Valuation   *valuation.ValuationModel `json:"valuation,omitempty"`
}

// Orchestrator runs the five engine stages with a fixed configuration.
type Orchestrator struct {
	assumptions config.Assumptions
	rates       config.RateTable
	opts        validate.Options
	log         zerolog.Logger
}

// New builds an orchestrator. The logger is used for stage progress only;
// extracted figures are never written to it.
func New(assumptions config.Assumptions, rates config.RateTable, opts validate.Options, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		assumptions: assumptions,
		rates:       rates,
		opts:        opts,
		log:         log,
	}
}

// Run executes the full pipeline over an ordered period series.
//
// A validation or normalization failure blocks everything and returns
// (nil, err). A forecast or valuation failure returns the artifacts that
// were produced together with the error, so the caller can render the
// historical analysis and omit the dependent sections.
func (o *Orchestrator) Run(periods []models.FinancialPeriod) (*Result, error) {
	o.log.Info().Int("periods", len(periods)).Msg("pipeline start")

	v := validate.New(o.opts)
	if err := v.ValidateSeries(periods); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			o.log.Warn().Str("field", verr.Field).Str("period", verr.PeriodLabel).Msg("validation failed")
		}
		return nil, err
	}

	normalized, err := normalize.NormalizeSeries(periods, o.assumptions.TargetUnit, o.assumptions.TargetCurrency, o.rates)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	o.log.Info().Int("periods", len(normalized)).Msg("normalized")

	res := &Result{
		Normalized: normalized,
		KPIs:       kpi.Compute(normalized),
	}

	fc, err := forecast.Forecast(revenuePoints(normalized), o.assumptions.ForecastHorizon)
	if err != nil {
		o.log.Warn().Err(err).Msg("forecast unavailable")
		return res, fmt.Errorf("forecast: %w", err)
	}
	res.Forecast = fc
	o.log.Info().Int("horizon", fc.Horizon).Str("index_rule", fc.IndexRule).Msg("forecast fitted")

	model, err := valuation.BuildDCF(normalized, fc, o.assumptions)
	if err != nil {
		o.log.Warn().Err(err).Msg("valuation unavailable")
		return res, fmt.Errorf("valuation: %w", err)
	}
	res.Valuation = model
	o.log.Info().Int("cells", len(model.Cells)).Msg("valuation built")

	return res, nil
}

// RunReport is the CompanyReport-shaped entry point used by the I/O layers.
func (o *Orchestrator) RunReport(report models.CompanyReport) (*Result, error) {
	res, err := o.Run(report.Periods)
	if res != nil {
		res.CompanyName = report.CompanyName
	}
	return res, err
}

func revenuePoints(series []models.NormalizedPeriod) []forecast.Point {
	points := make([]forecast.Point, 0, len(series))
	for _, p := range series {
		if p.Revenue == nil {
			continue
		}
		points = append(points, forecast.Point{Label: p.PeriodLabel, Revenue: *p.Revenue})
	}
	return points
}
